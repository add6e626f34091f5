package cmd

import (
	"github.com/relloyd/survey2sql/actions"
	"github.com/relloyd/survey2sql/constants"
	"github.com/spf13/cobra"
)

var pipeCmd = &cobra.Command{
	Use:   "pipe",
	Short: "Execute a load described in a YAML or JSON file",
	Long: `Execute a load described in a YAML or JSON file.
Use the 'output' flag of 'load delta' to generate the file. Connections without
credentials in the file are loaded from config by their logical name.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pipeConfig.Connections = getConnectionLoader()
		pipeConfig.StackDumpOnPanic = stackDumpOnPanic
		pipeConfig.Ctx = runCtx
		cmd.SilenceUsage = true
		return actions.RunJobFromFile(&pipeConfig)
	},
}

var pipeConfig = actions.JobConfig{}

func init() {
	rootCmd.AddCommand(pipeCmd)
	pipeCmd.Flags().SortFlags = false
	switches.addFlag(pipeCmd, &pipeConfig.JobFile, "file", "", true, "")
	_ = pipeCmd.MarkFlagFilename("file", "json", "yaml", "yml")
	switches.addFlag(pipeCmd, &pipeConfig.DryRun, "dry-run", "", false, "")
	switches.addFlag(pipeCmd, &pipeConfig.LogLevel, "log-level", constants.DefaultLogLevel, false, "")
	switches.addFlag(pipeCmd, &pipeConfig.JsonLogs, "json-logs", "", false, "")
}
