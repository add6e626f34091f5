package config

import (
	"fmt"

	"github.com/relloyd/survey2sql/rdbms/shared"
)

// GetConnectionType returns the type saved with connectionName.
func (c *File) GetConnectionType(connectionName string) (connectionType string, err error) {
	d, err := c.GetConnectionDetails(connectionName)
	if err != nil {
		return "", err
	}
	return d.Type, nil
}

// GetConnectionDetails fetches generic connection details from the File c using connectionName to do the lookup.
// If the connection is not found then an error is produced.
func (c *File) GetConnectionDetails(connectionName string) (*shared.ConnectionDetails, error) {
	d := &shared.ConnectionDetails{}
	if err := c.Get(connectionName, d); err != nil {
		return nil, err
	}
	if d.Type == "" {
		return nil, fmt.Errorf("connection %q is not configured: use the 'config connections add' command to create it", connectionName)
	}
	if d.LogicalName == "" {
		d.LogicalName = connectionName
	}
	return d, nil
}

// LoadConnection satisfies shared.ConnectionGetter.
func (c *File) LoadConnection(connectionName string) (shared.ConnectionDetails, error) {
	d, err := c.GetConnectionDetails(connectionName)
	if err != nil {
		return shared.ConnectionDetails{}, err
	}
	return *d, nil
}

// SaveConnection stores d under its LogicalName.
func (c *File) SaveConnection(d *shared.ConnectionDetails) error {
	if d.LogicalName == "" {
		return fmt.Errorf("connection name is required")
	}
	if d.Type == "" {
		return fmt.Errorf("connection type is required for %q", d.LogicalName)
	}
	return c.Set(d.LogicalName, *d)
}
