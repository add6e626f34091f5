package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/relloyd/survey2sql/actions"
	"github.com/relloyd/survey2sql/config"
	c "github.com/relloyd/survey2sql/constants"
	"github.com/relloyd/survey2sql/helper"
	"github.com/relloyd/survey2sql/logger"
	"github.com/relloyd/survey2sql/rdbms"
	"github.com/relloyd/survey2sql/rdbms/shared"
	"github.com/relloyd/survey2sql/survey"
)

// init will be called first due to the lexical order in which these functions are executed.
// This ensures the value of twelveFactorMode is set such that other init() functions that configure
// Cobra can process the environment variables that replace CLI flags.
func init() {
	setupTwelveFactorMode()
}

// setupTwelveFactorMode will enable or disable 12 factor mode based on environment variable.
func setupTwelveFactorMode() {
	mode := os.Getenv(envVarTwelveFactorMode)
	if mode != "" { // if variable for 12factor mode is set and we should read env vars to determine actions...
		twelveFactorMode = true
		lambdaMode = strings.ToLower(mode) == "lambda"
	} else { // else 12factor mode should be off...
		twelveFactorMode = false // explicitly turn off this mode since tests may have turned it on while others require it off.
		lambdaMode = false
	}
}

const (
	envVarTwelveFactorMode      = c.EnvVarPrefix + "_" + "12FACTOR_MODE"
	envVarCommand               = c.EnvVarPrefix + "_" + "COMMAND"
	envVarSubcommand            = c.EnvVarPrefix + "_" + "SUBCOMMAND"
	envVarSourceObject          = c.EnvVarPrefix + "_" + "SOURCE_OBJECT" // <survey item id>
	envVarTargetObject          = c.EnvVarPrefix + "_" + "TARGET_OBJECT" // [<schema>.]<table>
	envVarSourceType            = c.EnvVarPrefix + "_" + "SOURCE_TYPE"   // survey123
	envVarTargetType            = c.EnvVarPrefix + "_" + "TARGET_TYPE"   // sqlserver|postgres|etc
	envVarSourceUser            = c.EnvVarPrefix + "_" + "SOURCE_USER"
	envVarSourcePassword        = c.EnvVarPrefix + "_" + "SOURCE_PASSWORD"
	envVarLogLevel              = c.EnvVarPrefix + "_" + "LOG_LEVEL"
	envVarStackDump             = c.EnvVarPrefix + "_" + "STACK_DUMP"
	defaultConnectionNameSource = "SOURCE"
	defaultConnectionNameTarget = "TARGET"
)

var (
	twelveFactorMode bool // true if os env var envVarTwelveFactorMode is set
	lambdaMode       bool // true if os env var envVarTwelveFactorMode is "lambda"
	twelveFactorVars = map[string]string{
		envVarCommand:    "",
		envVarSubcommand: "",
		// Source
		envVarSourceType: "",
		helper.GetDsnEnvVarName(defaultConnectionNameSource): "", // the portal URL
		envVarSourceObject:   "",
		envVarSourceUser:     "",
		envVarSourcePassword: "",
		// Target
		envVarTargetType: "",
		helper.GetDsnEnvVarName(defaultConnectionNameTarget): "",
		envVarTargetObject: "",
		// Misc
		envVarLogLevel:  "",
		envVarStackDump: "",
	}
	twelveFactorVarsSensitive = map[string]string{ // used to flag some of the above variables as being sensitive.
		envVarSourcePassword: "",
		helper.GetDsnEnvVarName(defaultConnectionNameTarget): "",
	}
)

type twelveFactorAction struct {
	setupFunc  func(src string, tgt string)
	runnerFunc func() error
}

var twelveFactorActions = map[string]twelveFactorAction{
	c.ActionFuncsCommandLoad + "-" + c.ActionFuncsSubCommandDelta: {
		setupFunc: func(src string, tgt string) {
			loadDeltaCfg.SrcAndTgtConnections.SourceString.ConnectionObject = src
			loadDeltaCfg.SrcAndTgtConnections.TargetString.ConnectionObject = tgt
		},
		runnerFunc: runLoadDelta,
	},
}

func getConnectionHandler() actions.ConnectionHandler {
	if twelveFactorMode {
		return &TwelveFactorConnections{}
	}
	return config.Connections
}

func getConnectionLoader() actions.ConnectionLoader {
	if twelveFactorMode {
		return &TwelveFactorConnections{}
	}
	return config.Connections
}

func getConnectionGetterSetter() actions.ConnectionGetterSetter {
	if twelveFactorMode {
		fmt.Printf("Error: connections cannot be configured when %v is set (supply them using %v and %v instead)\n",
			envVarTwelveFactorMode,
			helper.GetDsnEnvVarName(defaultConnectionNameSource),
			helper.GetDsnEnvVarName(defaultConnectionNameTarget))
		os.Exit(1)
	}
	return config.Connections
}

func execute12FactorMode(acts map[string]twelveFactorAction) (err error) {
	logLevel := helper.ReadValueFromEnvWithDefault(envVarLogLevel, "warn") // not a persistent flag, so fetch it here for our own logging.
	log := logger.NewLogger(c.AppName, logLevel, stackDumpOnPanic)
	log.Info("s2s is running in 12 Factor mode...")
	// Save values for the required variables.
	for k := range twelveFactorVars { // for each env variable that we need...
		twelveFactorVars[k] = os.Getenv(k)
		if _, sensitive := twelveFactorVarsSensitive[k]; !sensitive { // if the env variable does not contain sensitive values...
			log.Debug(k, "=", twelveFactorVars[k])
		} else { // else output obfuscated value...
			log.Debug(k, "=", "<obfuscated>")
		}
	}
	// Use command and subcommand to fetch the appropriate action.
	action := fmt.Sprintf("%v-%v", twelveFactorVars[envVarCommand], twelveFactorVars[envVarSubcommand])
	a, ok := acts[action]
	if !ok {
		err = fmt.Errorf("invalid combination of command (%v) and subcommand (%v)", twelveFactorVars[envVarCommand], twelveFactorVars[envVarSubcommand])
		log.Error(err.Error())
		return
	}
	// Setup the connection source and target strings to include the object, as Cobra would have with CLI args.
	a.setupFunc(
		fmt.Sprintf("%v.%v", defaultConnectionNameSource, twelveFactorVars[envVarSourceObject]), // e.g. SOURCE.0123abcd
		fmt.Sprintf("%v.%v", defaultConnectionNameTarget, twelveFactorVars[envVarTargetObject]), // e.g. TARGET.dbo.inspections
	)
	if err = a.runnerFunc(); err != nil {
		log.Error("Error: ", err)
	}
	return err
}

type TwelveFactorConnections struct{} // implements interfaces in module, actions.

// GetConnectionType is for use when running in twelveFactorMode.
// It returns the value of envVarSourceType or envVarTargetType based on the supplied connectionName,
// where connectionName is expected to be either defaultConnectionNameSource or defaultConnectionNameTarget.
// It reads the global map twelveFactorVars[] which should have been setup using environment variables.
func (t *TwelveFactorConnections) GetConnectionType(connectionName string) (connectionType string, err error) {
	var k string
	switch connectionName {
	case defaultConnectionNameSource:
		k = envVarSourceType
	case defaultConnectionNameTarget:
		k = envVarTargetType
	default:
		return "", fmt.Errorf("unexpected connectionName %v while running in twelveFactorMode", connectionName)
	}
	connectionType = strings.TrimSpace(twelveFactorVars[k])
	if connectionType == "" {
		if connectionName == defaultConnectionNameSource { // if the source type is missing...
			return c.ConnectionTypeSurvey123, nil
		}
		return "", fmt.Errorf("missing value for %v", k)
	}
	return connectionType, nil
}

// GetConnectionDetails builds connection details from env variables by using the connectionName to do the lookup,
// where the connectionName is either source or target.
// The survey source reads the portal URL from the DSN variable plus optional user and password variables.
// Database targets are validated according to their type.
func (t *TwelveFactorConnections) GetConnectionDetails(connectionName string) (*shared.ConnectionDetails, error) {
	d, err := t.LoadConnection(connectionName)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// LoadConnection reads the connection DSN and type from the environment and returns the shared.ConnectionDetails.
// This mimics loading connections from the config file.
func (t *TwelveFactorConnections) LoadConnection(connectionName string) (shared.ConnectionDetails, error) {
	var vDsn string
	kDsn := helper.GetDsnEnvVarName(connectionName)
	vType, err := t.GetConnectionType(connectionName)
	if err != nil {
		return shared.ConnectionDetails{}, err
	}
	connectionDetails := shared.ConnectionDetails{
		Type:        vType,
		LogicalName: connectionName,
		Data:        make(map[string]string),
	}
	if vType == c.ConnectionTypeSurvey123 { // if we need a portal...
		creds := survey.Credentials{
			PortalURL: helper.ReadValueFromEnvWithDefault(kDsn, ""),
			Username:  helper.ReadValueFromEnvWithDefault(envVarSourceUser, ""),
			Password:  helper.ReadValueFromEnvWithDefault(envVarSourcePassword, ""),
		}
		if err := creds.Parse(); err != nil {
			return shared.ConnectionDetails{}, err
		}
		creds.GetMap(connectionDetails.Data)
		return connectionDetails, nil
	}
	// Else we have a database.
	if err := helper.ReadValueFromEnv(kDsn, &vDsn); err != nil { // if we cannot find the DSN in the environment...
		return shared.ConnectionDetails{}, fmt.Errorf("unable to find value for %v in the environment: %w", kDsn, err)
	}
	var v actions.ConnectionValidator
	switch vType {
	case c.ConnectionTypeSnowflake:
		v = rdbms.SnowflakeDsnConnectionDetails{Dsn: vDsn}
	case c.ConnectionTypeNetezza:
		v = shared.NetezzaConnectionDetails{Dsn: vDsn}
	case c.ConnectionTypeSqlite:
		v = rdbms.SqliteConnectionDetails{Dsn: vDsn}
	default: // fallback to the DSN connection type.
		if !actions.IsSupportedConnectionType(vType) {
			return shared.ConnectionDetails{}, fmt.Errorf("unsupported connection type %q for %v", vType, kDsn)
		}
		v = &shared.DsnConnectionDetails{Dsn: vDsn}
	}
	if err := v.Parse(); err != nil { // if the DSN was invalid...
		return shared.ConnectionDetails{}, err
	}
	v.GetMap(connectionDetails.Data)
	return connectionDetails, nil
}
