package rdbms

import (
	"fmt"
	"reflect"

	"github.com/relloyd/survey2sql/constants"
	"github.com/relloyd/survey2sql/logger"
	pluginloader "github.com/relloyd/survey2sql/plugin-loader"
	"github.com/relloyd/survey2sql/rdbms/shared"
)

// NewOdbcConnection loads the ODBC plugin and opens the connection in d with it.
// The plugin keeps the cgo ODBC driver out of the main binary.
func NewOdbcConnection(log logger.Logger, d *shared.DsnConnectionDetails) (shared.Connector, error) {
	exports, err := pluginloader.LoadPluginExports(constants.S2sPluginOdbc)
	if err != nil {
		return nil, err
	}
	i, ok := exports.(shared.OdbcConnector)
	if !ok {
		r := reflect.TypeOf(exports)
		return nil, fmt.Errorf("plugin %v does not implement the required interface: OdbcConnector: %v", constants.S2sPluginOdbc, r.String())
	}
	return i.NewOdbcConnection(log, d)
}
