package rdbms

import (
	"database/sql"

	_ "github.com/IBM/nzgo/v12"
	"github.com/relloyd/survey2sql/constants"
	"github.com/relloyd/survey2sql/logger"
	"github.com/relloyd/survey2sql/rdbms/shared"
)

// newNetezzaConnection opens the Netezza database connection specified in d.
func newNetezzaConnection(log logger.Logger, d *shared.DsnConnectionDetails) (shared.Connector, error) {
	n := shared.NetezzaConnectionDetails{Dsn: d.Dsn}
	dsn, err := n.GetNzgoConnectionString()
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("nzgo", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info("Successful database connection to Netezza: ", n)
	return shared.NewDbConnection(db, constants.ConnectionTypeNetezza, shared.BindDollar), nil
}
