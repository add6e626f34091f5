package shared

import (
	"fmt"

	om "github.com/cevaris/ordered_map"
	"github.com/relloyd/survey2sql/constants"
	"github.com/relloyd/survey2sql/logger"
)

// BindStyle is the placeholder syntax understood by a database driver.
type BindStyle int

const (
	BindQuestionMark BindStyle = iota // ? (ODBC, SQLite, Snowflake)
	BindAtP                           // @p1 (go-mssqldb)
	BindDollar                        // $1 (lib/pq, nzgo)
)

// Placeholder returns the bind variable for the n'th value, counting from 1.
func (b BindStyle) Placeholder(n int) string {
	switch b {
	case BindAtP:
		return fmt.Sprintf("@p%v", n)
	case BindDollar:
		return fmt.Sprintf("$%v", n)
	default:
		return "?"
	}
}

func (b BindStyle) String() string {
	switch b {
	case BindAtP:
		return "@pN"
	case BindDollar:
		return "$N"
	default:
		return "?"
	}
}

// Statement limits per connection type.
const (
	sqlServerMaxParams    = 2100
	sqlServerMaxValueRows = 1000
	postgresMaxParams     = 65535
	sqliteMaxParams       = 32766
)

// MaxBatchRows returns the most rows of numCols values that one INSERT can carry
// for connection type dbType, or 0 when there is no known limit.
func MaxBatchRows(dbType string, numCols int) int {
	if numCols < 1 {
		return 0
	}
	switch dbType {
	case constants.ConnectionTypeSqlServer, constants.ConnectionTypeOdbcSqlServer, constants.ConnectionTypeMockSqlServer:
		n := (sqlServerMaxParams - 2) / numCols // sp_executesql takes two of the parameters.
		if n > sqlServerMaxValueRows {
			n = sqlServerMaxValueRows
		}
		return maxInt(n, 1)
	case constants.ConnectionTypePostgres:
		return maxInt(postgresMaxParams/numCols, 1)
	case constants.ConnectionTypeSqlite:
		return maxInt(sqliteMaxParams/numCols, 1)
	default:
		return 0
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// DmlGeneratorTxtBatch generates plain SQL text with bind variables in the configured style.
type DmlGeneratorTxtBatch struct {
	BindStyle BindStyle
}

type SqlStatementGeneratorConfig struct {
	Log             logger.Logger
	OutputSchema    string
	SchemaSeparator string
	OutputTable     string
	TargetCols      *om.OrderedMap // ordered map of: key = record field name; value = target table column name
}

// FixSqlStatementGeneratorConfig applies the schema separator.
func FixSqlStatementGeneratorConfig(cfg *SqlStatementGeneratorConfig) {
	if cfg.OutputSchema == "" {
		cfg.SchemaSeparator = ""
		cfg.Log.Debug("No output schema supplied; setting a blank separator.")
	} else if cfg.SchemaSeparator == "" {
		cfg.SchemaSeparator = "."
	}
}

type sqlCoreCfg struct {
	sqlStmt                string
	sqlStmtTemplate        string
	sqlValues              []interface{} // slice to hold data values for all rows in batch
	batchSize              int
	rowsInBatch            int
	previousNumRowsInBatch int
}
