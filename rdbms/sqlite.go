package rdbms

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/relloyd/survey2sql/constants"
	"github.com/relloyd/survey2sql/logger"
	"github.com/relloyd/survey2sql/rdbms/shared"
)

var sqliteDsnPrefixes = []string{"sqlite3://", "sqlite3:", "sqlite://", "sqlite:"}

func isSqliteDsn(dsn string) bool {
	for _, p := range sqliteDsnPrefixes {
		if strings.HasPrefix(dsn, p) {
			return true
		}
	}
	return false
}

// sqliteFileName strips the scheme from dsn, leaving a file name or ":memory:" as understood by go-sqlite3.
func sqliteFileName(dsn string) string {
	for _, p := range sqliteDsnPrefixes {
		if strings.HasPrefix(dsn, p) {
			return strings.TrimPrefix(dsn, p)
		}
	}
	return dsn
}

// NewSqliteConnection opens the SQLite database named in d.
// A single open connection is used so an in-memory database is shared by all statements.
func NewSqliteConnection(log logger.Logger, d *shared.DsnConnectionDetails) (shared.Connector, error) {
	name := sqliteFileName(d.Dsn)
	db, err := sql.Open("sqlite3", name)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info("Successful database connection to SQLite: ", name)
	return shared.NewDbConnection(db, constants.ConnectionTypeSqlite, shared.BindQuestionMark), nil
}

// SqliteConnectionDetails validates a sqlite3: DSN before it is saved.
type SqliteConnectionDetails struct {
	Dsn string `errorTxt:"SQLite DSN" mandatory:"yes"`
}

func (d SqliteConnectionDetails) Parse() error {
	if !isSqliteDsn(d.Dsn) || sqliteFileName(d.Dsn) == "" {
		return fmt.Errorf("unsupported SQLite DSN format, use sqlite3:<file name> or sqlite3::memory:")
	}
	return nil
}

func (d SqliteConnectionDetails) GetScheme() (string, error) {
	return constants.ConnectionTypeSqlite, nil
}

func (d SqliteConnectionDetails) GetMap(m map[string]string) map[string]string {
	return (&shared.DsnConnectionDetails{Dsn: d.Dsn}).GetMap(m)
}
