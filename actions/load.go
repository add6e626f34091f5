package actions

import "context"

// LoadConfig is populated by the CLI for 'load' subcommands before ActionLauncher
// converts it to the action-specific config.
type LoadConfig struct {
	SrcAndTgtConnections
	SurveyDeltaJob
	LogLevel                 string `errorTxt:"log level" mandatory:"yes"`
	StackDumpOnPanic         bool
	JsonLogs                 bool
	DryRun                   bool
	ExportConfigType         string
	ExportIncludeConnections bool
	Ctx                      context.Context
}

// NewLoadConfig returns a LoadConfig holding the default job options.
func NewLoadConfig() LoadConfig {
	return LoadConfig{SurveyDeltaJob: NewSurveyDeltaJob(), LogLevel: "info"}
}
