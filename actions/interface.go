package actions

import (
	"github.com/relloyd/survey2sql/rdbms/shared"
)

// ConnectionHandler resolves named connections from the config file or the environment.
type ConnectionHandler interface {
	GetConnectionType(connectionName string) (connectionType string, err error)
	GetConnectionDetails(connectionName string) (connectionDetails *shared.ConnectionDetails, err error)
}

type ConnectionLoader interface {
	LoadConnection(connectionName string) (shared.ConnectionDetails, error)
}

type ConnectionGetterSetter interface {
	Get(key string, out interface{}) error
	Set(key string, val interface{}) error
	Delete(key string) error
}

type ConnectionLister interface {
	GetAllKeys() ([]string, error)
	Get(key string, out interface{}) error
}

// ConnectionValidator is implemented by shared.DsnConnectionDetails, shared.NetezzaConnectionDetails,
// rdbms.SnowflakeConnectionDetails and survey.Credentials.
type ConnectionValidator interface {
	Parse() error
	GetMap(m map[string]string) map[string]string
	GetScheme() (string, error)
}
