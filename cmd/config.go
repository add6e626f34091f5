package cmd

import (
	"fmt"

	"github.com/relloyd/survey2sql/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configure connections and default flag values",
	Long: fmt.Sprintf(`Save connections and default flag values so they need not be supplied on each run:

- Connections are encrypted and stored in file %q
- Default flag values are encrypted and stored in file %q
- Set %v to change the directory holding these files`,
		config.Connections.FullPath, config.Main.FullPath, config.EnvVarHomeDir),
}

var configConnCmd = &cobra.Command{
	Use:     "connections",
	Aliases: []string{"conn", "connection"},
	Short:   "Add, list or remove named connections",
	Long: fmt.Sprintf(`Manage the named connections used by the load and pipe commands.
Connections are stored in file %q`, config.Connections.FullPath),
}

var configConnAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a connection",
	Long:  `Add a named Survey123 portal or database connection. Choose a subcommand for the connection type.`,
}

var configDefaultCmd = &cobra.Command{
	Use:     "defaults",
	Aliases: []string{"default"},
	Short:   "Add, list or remove default flag values",
	Long: fmt.Sprintf(`Manage default flag values, keyed by the long name of the flag e.g. log-level.
Defaults are stored in file %q`, config.Main.FullPath),
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configConnCmd)
	configConnCmd.AddCommand(configConnAddCmd)
	configCmd.AddCommand(configDefaultCmd)
}
