package rdbms

import (
	"database/sql"
	"fmt"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/lib/pq"
	"github.com/relloyd/survey2sql/constants"
	"github.com/relloyd/survey2sql/logger"
	"github.com/relloyd/survey2sql/rdbms/shared"
	"github.com/xo/dburl"
)

// dsnBindStyles maps the connection types that open via dburl to the placeholder style of their driver.
// Snowflake, Netezza, SQLite and ODBC connections are handled explicitly so do not need to be here.
var dsnBindStyles = map[string]shared.BindStyle{
	constants.ConnectionTypeSqlServer: shared.BindAtP,
	constants.ConnectionTypePostgres:  shared.BindDollar,
}

// OpenDbConnection opens a database connection using the supplied ConnectionDetails struct in c.
func OpenDbConnection(log logger.Logger, c shared.ConnectionDetails) (db shared.Connector, err error) {
	log.Debug("opening connection type ", c.Type, " with logicalName ", c.LogicalName) // don't log password details in c.Data!
	switch c.Type {
	case constants.ConnectionTypeSnowflake:
		db, err = newSnowflakeConnection(log, shared.GetDsnConnectionDetails(&c))
	case constants.ConnectionTypeNetezza:
		db, err = newNetezzaConnection(log, shared.GetDsnConnectionDetails(&c))
	case constants.ConnectionTypeSqlite:
		db, err = NewSqliteConnection(log, shared.GetDsnConnectionDetails(&c))
	case constants.ConnectionTypeOdbcSqlServer:
		db, err = NewOdbcConnection(log, shared.GetDsnConnectionDetails(&c))
	case constants.ConnectionTypeMockSqlServer:
		db, _ = shared.NewMockConnectionWithMockTx(log, constants.ConnectionTypeSqlServer)
	default:
		bind, ok := dsnBindStyles[c.Type]
		if !ok { // if we have an unsupported database...
			return nil, fmt.Errorf("unsupported database type, %q", c.Type)
		}
		db, err = newConnectionWithDsn(log, shared.GetDsnConnectionDetails(&c), c.Type, bind)
	}
	return
}

// OpenDbConnectionWithDsn works out the connection type from the scheme of dsn and opens it.
func OpenDbConnectionWithDsn(log logger.Logger, logicalName string, dsn string) (shared.Connector, error) {
	d := &shared.DsnConnectionDetails{Dsn: dsn}
	scheme, err := GetDsnConnectionType(d)
	if err != nil {
		return nil, err
	}
	return OpenDbConnection(log, shared.ConnectionDetails{
		Type:        scheme,
		LogicalName: logicalName,
		Data:        d.GetMap(nil),
	})
}

// GetDsnConnectionType returns the connection type implied by the DSN scheme.
func GetDsnConnectionType(d *shared.DsnConnectionDetails) (string, error) {
	if isSnowflakeDsn(d.Dsn) {
		return constants.ConnectionTypeSnowflake, nil
	}
	if (shared.NetezzaConnectionDetails{Dsn: d.Dsn}).Parse() == nil {
		return constants.ConnectionTypeNetezza, nil
	}
	if isSqliteDsn(d.Dsn) {
		return constants.ConnectionTypeSqlite, nil
	}
	scheme, err := d.GetScheme()
	if err != nil {
		return "", err
	}
	switch scheme {
	case "mssql", "ms":
		scheme = constants.ConnectionTypeSqlServer
	case "postgresql", "pg", "pgsql":
		scheme = constants.ConnectionTypePostgres
	}
	return scheme, nil
}

func newConnectionWithDsn(log logger.Logger, d *shared.DsnConnectionDetails, dbType string, bind shared.BindStyle) (shared.Connector, error) {
	u, err := dburl.Parse(d.Dsn)
	if err != nil { // if the DSN could not be parsed...
		return nil, fmt.Errorf("error parsing DSN for connection type %v: %w", dbType, err)
	}
	log.Info("Opening database connection: ", u.Redacted())
	db, err := sql.Open(u.Driver, u.DSN)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil { // test the connection.
		_ = db.Close()
		return nil, err
	}
	log.Info("Successful connection to: ", u.Redacted())
	return shared.NewDbConnection(db, dbType, bind), nil
}
