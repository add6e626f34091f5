package actions

import (
	"fmt"
	"reflect"

	"github.com/relloyd/survey2sql/constants"
)

type SrcAndTgtConnections struct {
	Connections  ConnectionHandler
	SourceString ConnectionObject // <survey connection>.<survey item id>
	TargetString ConnectionObject // <database connection>.[<schema>.]<table>
}

type Action struct {
	FnAction   func(actionCfg interface{}) error                         // the function to execute the action
	ActionCfg  interface{}                                               // the config struct to pass to the FnAction
	FnSetupCfg func(genericCfg interface{}, actionCfg interface{}) error // the function to convert generic cfg to action-specific config for the FnAction
}

// ActionLauncher will:
// 1) call the function fnActionGetter to find the Action{} based on the sourceType and targetType strings supplied.
// 2) Once it has the Action{}, it calls setup function Action.FnSetupCfg() to populate Action.ActionCfg{}.
// 3) Then it can start the action by calling Action.FnAction().
func ActionLauncher(
	cfg interface{},
	fnActionGetter func(sourceType string, targetType string) (Action, error),
	sourceType string,
	targetType string) error {
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Ptr {
		return fmt.Errorf("expected pointer to config in variable cfg to be supplied to ActionLauncher")
	}
	a, err := fnActionGetter(sourceType, targetType)
	if err != nil {
		return err
	}
	if err = a.FnSetupCfg(cfg, a.ActionCfg); err != nil {
		return err
	}
	return a.FnAction(a.ActionCfg)
}

func newSurveyDeltaAction() Action {
	return Action{FnAction: RunSurveyDelta, ActionCfg: &SurveyDeltaConfig{}, FnSetupCfg: SetupLoadSurveyDelta}
}

// ActionFuncs is a register of all supported actions keyed by command, subcommand and <source type>-<target type>.
// Keys in the final map are used to validate connection types before they are added. See RunConnectionAdd().
var ActionFuncs = map[string]map[string]map[string]Action{
	constants.ActionFuncsCommandLoad: {
		constants.ActionFuncsSubCommandDelta: {
			"survey123-sqlserver":      newSurveyDeltaAction(),
			"survey123-odbc+sqlserver": newSurveyDeltaAction(),
			"survey123-postgres":       newSurveyDeltaAction(),
			"survey123-netezza":        newSurveyDeltaAction(),
			"survey123-snowflake":      newSurveyDeltaAction(),
			"survey123-sqlite3":        newSurveyDeltaAction(),
		},
	},
}

// GetLoadDeltaAction returns the "load delta" Action based on sourceType and targetType supplied.
func GetLoadDeltaAction(sourceType string, targetType string) (Action, error) {
	retval, ok := ActionFuncs[constants.ActionFuncsCommandLoad][constants.ActionFuncsSubCommandDelta][sourceType+"-"+targetType]
	if !ok {
		return Action{}, fmt.Errorf("unsupported load delta action for source type %q and target type %q", sourceType, targetType)
	}
	// Each launch gets its own config struct.
	retval.ActionCfg = &SurveyDeltaConfig{}
	return retval, nil
}
