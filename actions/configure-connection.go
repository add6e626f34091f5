package actions

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/survey2sql/config"
	"github.com/relloyd/survey2sql/constants"
	"github.com/relloyd/survey2sql/helper"
	"github.com/relloyd/survey2sql/rdbms/shared"
)

type ConnectionConfig struct {
	ConfigFile  ConnectionGetterSetter
	LogicalName string
	Type        string
	ConnDetails ConnectionValidator // DsnConnectionDetails, NetezzaConnectionDetails, SnowflakeConnectionDetails or survey.Credentials
	Force       bool
	Out         io.Writer
}

func RunConnectionAdd(cfg *ConnectionConfig) error {
	connection := shared.ConnectionDetails{
		LogicalName: cfg.LogicalName,
		Type:        cfg.Type,
		Data:        make(map[string]string),
	}
	if err := helper.ValidateStructIsPopulated(connection); err != nil { // if the basics were not supplied...
		return err
	}
	if strings.Contains(cfg.LogicalName, ".") {
		return fmt.Errorf("connection name cannot contain period characters '.' as they're used to split <connection>.<object>")
	}
	var err error
	if err = cfg.ConnDetails.Parse(); err != nil {
		return errors.Wrap(err, "unable to create connection")
	}
	// Save the full connection type e.g. odbc+sqlserver, since pure sqlserver will be using the Go native module.
	if connection.Type, err = cfg.ConnDetails.GetScheme(); err != nil {
		return err
	}
	switch cfg.Type {
	case constants.ConnectionTypeOdbc: // type "odbc" is set by the caller and is replaced by the DSN scheme.
		if _, ok := getSupportedConnectionTypesMap(constants.ConnectionTypeOdbc)[connection.Type]; !ok {
			return fmt.Errorf("%v is an unsupported ODBC connection type, please use one of these: %v", connection.Type, GetSupportedOdbcConnectionTypes())
		}
	default:
		if !IsSupportedConnectionType(connection.Type) {
			return fmt.Errorf("%v is an unsupported connection type", connection.Type)
		}
	}
	cfg.ConnDetails.GetMap(connection.Data)
	// Check for an existing saved connection.
	tmpConn := shared.ConnectionDetails{}
	err = cfg.ConfigFile.Get(cfg.LogicalName, &tmpConn)
	if err != nil && !errors.Is(err, config.ErrKeyNotFound) {
		return err
	} else if err == nil && tmpConn.Type != "" && !cfg.Force { // if the connection exists, but we are not allowed to overwrite it...
		return fmt.Errorf("connection %q exists, use force to update the connection or remove it first", cfg.LogicalName)
	}
	if err = cfg.ConfigFile.Set(cfg.LogicalName, connection); err != nil {
		return fmt.Errorf("error writing connections config file after adding: %v", err)
	}
	fmt.Fprintf(cfg.out(), "Connection %q added\n", cfg.LogicalName)
	return nil
}

func RunConnectionRemove(cfg *ConnectionConfig) error {
	if cfg.LogicalName == "" {
		return fmt.Errorf("please supply values for connection name")
	}
	if err := cfg.ConfigFile.Delete(cfg.LogicalName); err != nil {
		return fmt.Errorf("unable to delete connection %q from config: %v", cfg.LogicalName, err)
	}
	fmt.Fprintf(cfg.out(), "Connection %q removed\n", cfg.LogicalName)
	return nil
}

// RunConnectionList prints every saved connection with secrets redacted.
func RunConnectionList(c ConnectionLister, out io.Writer) error {
	keys, err := c.GetAllKeys()
	if err != nil {
		return err
	}
	for _, k := range keys { // for each connection name...
		conn := shared.ConnectionDetails{}
		if err = c.Get(k, &conn); err != nil {
			return err
		}
		fmt.Fprintf(out, "%v:\n%v\n", k, conn)
	}
	return nil
}

func (cfg *ConnectionConfig) out() io.Writer {
	return out(cfg.Out)
}

// out defaults w to STDOUT.
func out(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}
