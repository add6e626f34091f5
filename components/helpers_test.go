package components

import (
	"testing"

	"github.com/relloyd/survey2sql/logger"
	"github.com/relloyd/survey2sql/rdbms"
	"github.com/relloyd/survey2sql/rdbms/shared"
	"github.com/relloyd/survey2sql/stream"
)

func newTestLogger() logger.Logger {
	return logger.NewLogger("survey2sql", "error", true)
}

func newTestSqlite(t *testing.T, log logger.Logger, ddl string) shared.Connector {
	db, err := rdbms.NewSqliteConnection(log, &shared.DsnConnectionDetails{Dsn: "sqlite3::memory:"})
	if err != nil {
		t.Fatal(err)
	}
	if ddl != "" {
		if _, err = db.Exec(ddl); err != nil {
			t.Fatal(err)
		}
	}
	return db
}

func newRecord(kv ...interface{}) stream.Record {
	rec := stream.NewRecord()
	for i := 0; i+1 < len(kv); i += 2 {
		rec.SetData(kv[i].(string), kv[i+1])
	}
	return rec
}

// fieldValue returns the value of name in rec, or nil when it is missing.
func fieldValue(rec stream.Record, name string) interface{} {
	v, _ := rec.Lookup(name)
	return v
}
