package cmd

import (
	"fmt"

	"github.com/relloyd/survey2sql/actions"
	"github.com/relloyd/survey2sql/config"
	"github.com/spf13/cobra"
)

var defaultAddCfg = actions.DefaultAddConfig{}

var configDefaultAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add or set a default flag value",
	Long:  fmt.Sprintf("Add a default flag value to config file %q", config.Main.FullPath),
	RunE: func(cmd *cobra.Command, args []string) error {
		defaultAddCfg.ConfigFile = config.Main
		defaultAddCfg.Out = cmd.OutOrStdout()
		return actions.RunDefaultAdd(&defaultAddCfg)
	},
}

var defaultRemoveCfg = actions.DefaultRemoveConfig{}

var configDefaultRemoveCmd = &cobra.Command{
	Use:     "remove",
	Aliases: []string{"rm", "del", "delete"},
	Short:   "Remove a default flag value",
	Long:    fmt.Sprintf("Remove a default flag value from config file %q", config.Main.FullPath),
	RunE: func(cmd *cobra.Command, args []string) error {
		defaultRemoveCfg.ConfigFile = config.Main
		defaultRemoveCfg.Out = cmd.OutOrStdout()
		return actions.RunDefaultRemove(&defaultRemoveCfg)
	},
}

var configDefaultListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Print all default flag values",
	Long:    fmt.Sprintf("List default flag values stored in config file %q", config.Main.FullPath),
	RunE: func(cmd *cobra.Command, args []string) error {
		return actions.RunDefaultList(config.Main, cmd.OutOrStdout())
	},
}

func init() {
	configDefaultCmd.AddCommand(configDefaultAddCmd, configDefaultListCmd, configDefaultRemoveCmd)
	configDefaultAddCmd.Flags().SortFlags = false
	configDefaultAddCmd.Flags().StringVarP(&defaultAddCfg.Key, "key", "k", "", "The key to set in config. Match the long name of a flag\n"+
		"to have this value take effect in commands e.g. log-level")
	configDefaultAddCmd.Flags().StringVarP(&defaultAddCfg.Value, "value", "v", "", "The default value to set")
	configDefaultAddCmd.Flags().BoolVarP(&defaultAddCfg.Force, "force", "f", false, "Overwrite existing values")
	_ = configDefaultAddCmd.MarkFlagRequired("key")
	_ = configDefaultAddCmd.MarkFlagRequired("value")
	configDefaultAddCmd.SilenceUsage = true
	configDefaultRemoveCmd.Flags().StringVarP(&defaultRemoveCfg.Key, "key", "k", "", "The key to remove from config")
	_ = configDefaultRemoveCmd.MarkFlagRequired("key")
	configDefaultRemoveCmd.SilenceUsage = true
}
