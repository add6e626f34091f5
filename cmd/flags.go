package cmd

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/relloyd/survey2sql/actions"
	"github.com/relloyd/survey2sql/config"
	"github.com/relloyd/survey2sql/constants"
	"github.com/relloyd/survey2sql/helper"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	argsDefinitionTxt = "<survey-connection>.<survey-item-id> <target-connection>.[<schema>.]<table>"
)

type cliFlag struct {
	name      string // name of flag
	val       string // default value
	shortHand string // single character name for the flag
	desc      string // description of the flag; the long text
}

type cliFlags map[string]cliFlag

var switches = cliFlags{
	"mock": cliFlag{name: "mock", shortHand: "m", desc: "mock switch for testing"},
	// Survey source
	"survey-date-field": cliFlag{name: "survey-date-field", shortHand: "s",
		desc: "The survey field holding the submission date. Values may be epoch milliseconds,\n" +
			"dates or strings starting YYYY-MM-DD"},
	"survey-layer": cliFlag{name: "survey-layer", shortHand: "L",
		desc: "The index of the feature service layer that holds the survey submissions"},
	"page-size": cliFlag{name: "page-size", shortHand: "p",
		desc: "The max number of submissions requested from the portal per query"},
	// Target
	"target-date-field": cliFlag{name: "target-date-field", shortHand: "t",
		desc: "The target table column that receives the survey date. Its max value is the watermark\n" +
			"used to find new submissions"},
	"column-map": cliFlag{name: "column-map", shortHand: "c",
		desc: "CSV of <survey field>:<target column> pairs to copy into each target row. A bare\n" +
			"<field> is loaded into a column of the same name"},
	"multi-select-field": cliFlag{name: "multi-select-field", shortHand: "M",
		desc: "The survey field holding comma separated options. One target row is written per option"},
	"option-column": cliFlag{name: "option-column", shortHand: "O",
		desc: "The target column that receives each multi-select option"},
	"exec-batch-size": cliFlag{name: "exec-batch-size", shortHand: "E",
		desc: "The number of rows combined into each INSERT statement"},
	// Window
	"exclude-today": cliFlag{name: "exclude-today", shortHand: "x",
		desc: "Skip submissions dated today or later in the chosen time zone"},
	"start-date": cliFlag{name: "start-date", shortHand: "S",
		desc: "Load submissions dated after this YYYY-MM-DD when the target table is empty"},
	"time-zone": cliFlag{name: "time-zone", shortHand: "z",
		desc: "IANA time zone used to convert survey timestamps to dates and to find today"},
	// Filters
	"filter": cliFlag{name: "filter", shortHand: "F",
		desc: "Optional JSON Logic rule (see jsonlogic.com) that submissions must satisfy to be loaded"},
	"abort-after": cliFlag{name: "abort-after", shortHand: "n",
		desc: "Abort without loading anything if more than this many submissions are new\n" +
			"(use 0 to load all)"},
	// General
	"dry-run": cliFlag{name: "dry-run", shortHand: "d",
		desc: "Print the INSERT statement and row count without changing the target"},
	"output": cliFlag{name: "output", shortHand: "o",
		desc: "Specify \"yaml\" or \"json\" to print the job definition instead of running it. Redirect\n" +
			"this output to a file for use with the \"pipe\" command"},
	"include-connections": cliFlag{name: "include-connections", shortHand: "I",
		desc: "Include connection details when using the 'output' flag"},
	"log-level": cliFlag{name: "log-level", shortHand: "l",
		desc: "Log level: \"error | warn | info | debug | trace\""},
	"json-logs": cliFlag{name: "json-logs", shortHand: "j",
		desc: "Write logs as JSON"},
	"metrics-push-gateway": cliFlag{name: "metrics-push-gateway", shortHand: "g",
		desc: "Optional Prometheus Pushgateway URL that receives the run statistics"},
	"file": cliFlag{name: "file", shortHand: "f",
		desc: "File containing the job definition (.yaml or .json)"},
	// Connections
	"connection-name": cliFlag{name: "connection-name", shortHand: "c",
		desc: "Connection name referred to by commands"},
	"dsn": cliFlag{name: "dsn", shortHand: "d",
		desc: "Database connect string"},
	"force-connection": cliFlag{name: "force", shortHand: "f",
		desc: "Allow overwrite of existing connections"},
	"portal-url": cliFlag{name: "portal-url", shortHand: "u",
		desc: "ArcGIS portal URL"},
	"user": cliFlag{name: "user", shortHand: "U",
		desc: "ArcGIS username (omit to read public surveys anonymously)"},
	"password": cliFlag{name: "password", shortHand: "P",
		desc: "ArcGIS password for the user"},
	"referer": cliFlag{name: "referer", shortHand: "r",
		desc: "Referer sent when requesting a token (defaults to the portal URL)"},
}

// addFlag adds a flag to cobra.Command c, based on the type of targetVar (which must be a pointer).
// The name of the flag is looked up in map, cliFlags.
// When running in twelveFactorMode, the targetVar is populated using the value of environment variable for the supplied
// name, or if not set then the supplied default value is used.
// When NOT running in twelveFactorMode, the default value is fetched from config if it exists else the supplied
// defaultValue is applied.
// The flag is marked as required in Cobra based on the value of required.
// Supply a value for desc2 to append to the existing description found in map cliFlags.
func (f *cliFlags) addFlag(c *cobra.Command, targetVar interface{}, name string, defaultValue string, required bool, desc2 string) {
	v := reflect.ValueOf(targetVar)
	if v.Kind() != reflect.Ptr {
		fmt.Println("error adding flag: targetVar must be a pointer")
		os.Exit(1)
	}
	sw := f.getCliFlag(name, defaultValue, config.Main.Get) // get the cliFlag details, with defaults taken from config or the supplied defaultValue
	desc := sw.desc + desc2
	switch p := targetVar.(type) {
	case *string:
		if twelveFactorMode {
			*p = sw.val
		} else {
			c.Flags().StringVarP(p, sw.name, sw.shortHand, sw.val, desc)
			// Signal that the flag was set so defaults take effect.
			if sw.val != "" { // if there is a value via config or default...
				mustSetFlag(c.Flags(), sw.name, sw.val)
			}
		}
	case *bool:
		b := helper.GetTrueFalseStringAsBool(sw.val)
		if twelveFactorMode {
			*p = b
		} else {
			c.Flags().BoolVarP(p, sw.name, sw.shortHand, b, desc)
			mustSetFlag(c.Flags(), sw.name, strconv.FormatBool(b))
		}
	case *int:
		defaultInt := 0
		if sw.val != "" {
			var err error
			if defaultInt, err = strconv.Atoi(sw.val); err != nil {
				fmt.Printf("the value for flag %q must be an integer: %v\n", sw.name, err)
				os.Exit(1)
			}
		}
		if twelveFactorMode {
			*p = defaultInt
		} else {
			c.Flags().IntVarP(p, sw.name, sw.shortHand, defaultInt, desc)
			if sw.val != "" { // if there is a value via config or default...
				mustSetFlag(c.Flags(), sw.name, sw.val)
			}
		}
	default:
		panic("Error: unhandled CLI flag target value type")
	}
	// Optionally mark the flag as mandatory.
	if required && !twelveFactorMode && sw.val == "" { // if the flag is required and has no default...
		_ = c.MarkFlagRequired(sw.name)
	}
}

// getCliFlag fetches the value of name from the environment, when running in twelveFactorMode,
// else read the Main config file to find it.
// If a value cannot be found then use the supplied defaultValue in its place.
func (f *cliFlags) getCliFlag(name string, defaultValue string, fnGetConfig func(key string, out interface{}) error) cliFlag {
	s, ok := (*f)[name]
	if !ok {
		panic(fmt.Sprintf("unregistered CLI flag, %q", name))
	}
	if twelveFactorMode { // if we should read env vars...
		if err := helper.ReadValueFromEnv(flagNameToEnvVar(s.name), &s.val); err != nil { // if there's no value for the env var...
			s.val = defaultValue
		}
	} else { // else check the config file or apply default...
		err := fnGetConfig(s.name, &s.val)
		if errors.Is(err, config.ErrKeyNotFound) || s.val == "" { // if there was no key found...
			s.val = defaultValue
		}
	}
	return s
}

// flagNameToEnvVar will form a sanitised environment variable name using constants.EnvVarPrefix.
func flagNameToEnvVar(name string) string {
	return constants.EnvVarPrefix + "_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

func mustSetFlag(f *pflag.FlagSet, name string, val string) {
	if err := f.Set(name, val); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// getConnectionsArgsFunc returns a func that cobra uses to validate that we have 2 args.
// It saves arg[0] as the src connection and arg[1] as the tgt connection.
func getConnectionsArgsFunc(src *actions.ConnectionObject, tgt *actions.ConnectionObject, customErrMsg string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != 2 {
			if customErrMsg != "" {
				return errors.New(customErrMsg)
			}
			return errors.New("requires " + argsDefinitionTxt)
		}
		*src = actions.ConnectionObject{ConnectionObject: args[0]}
		*tgt = actions.ConnectionObject{ConnectionObject: args[1]}
		return nil
	}
}
