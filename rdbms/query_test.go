package rdbms

import (
	"context"
	"testing"

	"github.com/relloyd/survey2sql/logger"
	"github.com/relloyd/survey2sql/rdbms/shared"
)

type collectingHandler struct {
	header []interface{}
	rows   [][]interface{}
}

func (c *collectingHandler) HandleHeader(i []interface{}) error {
	c.header = i
	return nil
}

func (c *collectingHandler) HandleRow(i []interface{}) error {
	c.rows = append(c.rows, i)
	return nil
}

func openTestSqlite(t *testing.T) shared.Connector {
	log := logger.NewLogger("survey2sql", "error", false)
	db, err := NewSqliteConnection(log, &shared.DsnConnectionDetails{Dsn: "sqlite3::memory:"})
	if err != nil {
		t.Fatal(err)
	}
	return db
}

func TestSqlQuery(t *testing.T) {
	log := logger.NewLogger("survey2sql", "error", false)
	db := openTestSqlite(t)
	defer db.Close()
	if _, err := db.Exec("create table t (a text, b integer)"); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("insert into t (a, b) values (?, ?), (?, ?)", "x", 1, "y", 2); err != nil {
		t.Fatal(err)
	}
	h := &collectingHandler{}
	if err := SqlQuery(context.Background(), log, db, "select a, b from t order by b", h); err != nil {
		t.Fatal(err)
	}
	if len(h.header) != 2 || h.header[0] != "a" || h.header[1] != "b" {
		t.Fatalf("unexpected header %v", h.header)
	}
	if len(h.rows) != 2 {
		t.Fatalf("expected 2 rows; got %v", len(h.rows))
	}
	if h.rows[1][1] != int64(2) {
		t.Fatalf("unexpected value %#v", h.rows[1][1])
	}
}

func TestSqlQuerySingleValue(t *testing.T) {
	log := logger.NewLogger("survey2sql", "error", false)
	db := openTestSqlite(t)
	defer db.Close()
	if _, err := db.Exec("create table t (d text)"); err != nil {
		t.Fatal(err)
	}
	// Test 1, max over an empty table is a single NULL row.
	v, found, err := SqlQuerySingleValue(context.Background(), log, db, "select max(d) from t")
	if err != nil {
		t.Fatal(err)
	}
	if !found || v != nil {
		t.Fatalf("expected one NULL value; got found = %v, value = %#v", found, v)
	}
	// Test 2, no rows.
	_, found, err = SqlQuerySingleValue(context.Background(), log, db, "select d from t")
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Fatal("expected no rows")
	}
	// Test 3, bad SQL.
	if _, _, err = SqlQuerySingleValue(context.Background(), log, db, "select nope from missing"); err == nil {
		t.Fatal("expected an error for bad SQL")
	}
}

func TestGetDsnConnectionType(t *testing.T) {
	cases := map[string]string{
		"sqlserver://u:p@host:1433/db":           "sqlserver",
		"postgres://u:p@host/db?sslmode=disable": "postgres",
		"sqlite3::memory:":                       "sqlite3",
		"sqlite3:///tmp/x.db":                    "sqlite3",
		"snowflake://u:p@account/db/schema":      "snowflake",
		"netezza://u/p@//host:5480/db":           "netezza",
		"odbc+sqlserver://u:p@host/db":           "odbc+sqlserver",
	}
	for dsn, expected := range cases {
		got, err := GetDsnConnectionType(&shared.DsnConnectionDetails{Dsn: dsn})
		if err != nil {
			t.Fatalf("%v: %v", dsn, err)
		}
		if got != expected {
			t.Fatalf("%v: expected %v; got %v", dsn, expected, got)
		}
	}
}

func TestOpenDbConnection_Unsupported(t *testing.T) {
	log := logger.NewLogger("survey2sql", "error", false)
	_, err := OpenDbConnection(log, shared.ConnectionDetails{Type: "oracle", LogicalName: "x"})
	if err == nil {
		t.Fatal("expected an error for an unsupported database type")
	}
}
