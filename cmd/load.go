package cmd

import (
	"fmt"
	"strconv"

	"github.com/relloyd/survey2sql/actions"
	"github.com/relloyd/survey2sql/constants"
	"github.com/spf13/cobra"
)

var loadCmd = &cobra.Command{
	Use:   constants.ActionFuncsCommandLoad,
	Short: "Load survey submissions into a target table",
	Long: `Load survey submissions from a Survey123 connection into a table in a target database connection.
See the subcommands for the load strategies available.`,
}

func init() {
	rootCmd.AddCommand(loadCmd)
	initLoadDelta()
}

func initLoadDelta() {
	loadCmd.AddCommand(loadDeltaCmd)
	loadDeltaCmd.Flags().SortFlags = false
	addFlagsLoadDelta(loadDeltaCmd, &loadDeltaCfg)
}

var loadDeltaCfg = actions.NewLoadConfig()
var loadDeltaCmd = &cobra.Command{
	Use:   constants.ActionFuncsSubCommandDelta + " " + argsDefinitionTxt,
	Short: "Load new survey submissions into <target-connection>.[<schema>.]<table>",
	Long: fmt.Sprintf(`Load survey submissions dated after the newest date found in the target table:

- The max value of the target date field is read first and used as the watermark
- When the target is empty, submissions after the start date are loaded
- Submissions dated today or later are skipped unless exclude-today is false
- One row is inserted per option chosen in the multi-select field
- Nothing is committed unless every row is inserted
- Supported <survey-connection>-<target-connection> combinations are:

%v
`, actions.GetSupportedLoadDeltaConnectionTypes()),
	Args: getConnectionsArgsFunc(&loadDeltaCfg.SourceString, &loadDeltaCfg.TargetString, ""),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runLoadDelta()
	},
}

func runLoadDelta() error {
	loadDeltaCfg.Connections = getConnectionHandler()
	loadDeltaCfg.StackDumpOnPanic = stackDumpOnPanic
	loadDeltaCfg.Ctx = runCtx
	// Get connection types.
	sourceType, err := loadDeltaCfg.Connections.GetConnectionType(loadDeltaCfg.SourceString.GetConnectionName())
	if err != nil {
		return err
	}
	targetType, err := loadDeltaCfg.Connections.GetConnectionType(loadDeltaCfg.TargetString.GetConnectionName())
	if err != nil {
		return err
	}
	return actions.ActionLauncher(&loadDeltaCfg, actions.GetLoadDeltaAction, sourceType, targetType)
}

func addFlagsLoadDelta(c *cobra.Command, cfg *actions.LoadConfig) {
	d := actions.NewSurveyDeltaJob()
	// Required.
	switches.addFlag(c, &cfg.SurveyDateField, "survey-date-field", "", true, "")
	switches.addFlag(c, &cfg.TargetDateField, "target-date-field", "", true, "")
	// Reshape.
	switches.addFlag(c, &cfg.ColumnMap, "column-map", "", false, "")
	switches.addFlag(c, &cfg.MultiSelectField, "multi-select-field", "", false, "")
	switches.addFlag(c, &cfg.OptionColumn, "option-column", d.OptionColumn, false, "")
	// Window.
	switches.addFlag(c, &cfg.ExcludeToday, "exclude-today", strconv.FormatBool(d.ExcludeToday), false, "")
	switches.addFlag(c, &cfg.StartDate, "start-date", d.StartDate, false, "")
	switches.addFlag(c, &cfg.TimeZone, "time-zone", d.TimeZone, false, "")
	switches.addFlag(c, &cfg.JsonLogicFilter, "filter", "", false, "")
	switches.addFlag(c, &cfg.AbortAfter, "abort-after", "0", false, "")
	// Source and sink tuning.
	switches.addFlag(c, &cfg.SurveyLayer, "survey-layer", strconv.Itoa(d.SurveyLayer), false, "")
	switches.addFlag(c, &cfg.SurveyPageSize, "page-size", strconv.Itoa(d.SurveyPageSize), false, "")
	switches.addFlag(c, &cfg.ExecBatchSize, "exec-batch-size", strconv.Itoa(d.ExecBatchSize), false, "")
	// General.
	switches.addFlag(c, &cfg.DryRun, "dry-run", "", false, "")
	switches.addFlag(c, &cfg.ExportConfigType, "output", "", false, "")
	switches.addFlag(c, &cfg.ExportIncludeConnections, "include-connections", "", false, "")
	switches.addFlag(c, &cfg.MetricsPushGateway, "metrics-push-gateway", "", false, "")
	switches.addFlag(c, &cfg.LogLevel, "log-level", constants.DefaultLogLevel, false, "")
	switches.addFlag(c, &cfg.JsonLogs, "json-logs", "", false, "")
}
