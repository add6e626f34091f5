package cmd

import (
	"fmt"

	"github.com/relloyd/survey2sql/actions"
	"github.com/relloyd/survey2sql/config"
	"github.com/relloyd/survey2sql/constants"
	pluginloader "github.com/relloyd/survey2sql/plugin-loader"
	"github.com/relloyd/survey2sql/rdbms"
	"github.com/relloyd/survey2sql/rdbms/shared"
	"github.com/relloyd/survey2sql/survey"
	"github.com/spf13/cobra"
)

// dsnConnectionCommand describes a 'config connections add' subcommand that saves a database DSN.
type dsnConnectionCommand struct {
	use         string
	short       string
	connType    string
	dsnExamples string
	// newValidator wraps the DSN supplied by the user for RunConnectionAdd.
	newValidator func(dsn string) actions.ConnectionValidator
}

var dsnConnectionCommands = []dsnConnectionCommand{
	{
		use:         constants.ConnectionTypeSqlServer,
		short:       "Add a SQL Server connection",
		connType:    constants.ConnectionTypeSqlServer,
		dsnExamples: "sqlserver://<user>:<pass>@<host>[:<port>]?database=<dbname>[&<opt>=<value>...]",
		newValidator: func(dsn string) actions.ConnectionValidator {
			return &shared.DsnConnectionDetails{Dsn: dsn}
		},
	},
	{
		use:         constants.ConnectionTypePostgres,
		short:       "Add a PostgreSQL connection",
		connType:    constants.ConnectionTypePostgres,
		dsnExamples: "postgres://<user>:<pass>@<host>[:<port>]/<dbname>[?sslmode=disable]",
		newValidator: func(dsn string) actions.ConnectionValidator {
			return &shared.DsnConnectionDetails{Dsn: dsn}
		},
	},
	{
		use:      constants.ConnectionTypeOdbc,
		short:    "Add an ODBC connection",
		connType: constants.ConnectionTypeOdbc,
		dsnExamples: fmt.Sprintf(`odbc+sqlserver://<user>:<pass>@<host>[:<port>]/<dbname>[?<opt>=<value>...]

where the supported schemes are: %v

ODBC connections need the plugin %q in any of:
%v`, actions.GetSupportedOdbcConnectionTypes(), constants.S2sPluginOdbc, pluginloader.Locations),
		newValidator: func(dsn string) actions.ConnectionValidator {
			return &shared.DsnConnectionDetails{Dsn: dsn}
		},
	},
	{
		use:         constants.ConnectionTypeSnowflake,
		short:       "Add a Snowflake connection",
		connType:    constants.ConnectionTypeSnowflake,
		dsnExamples: "snowflake://<user>:<password>@<account>/<database-name>?schema=<schema>&warehouse=<warehouse>&role=<role>",
		newValidator: func(dsn string) actions.ConnectionValidator {
			return rdbms.SnowflakeDsnConnectionDetails{Dsn: dsn}
		},
	},
	{
		use:      constants.ConnectionTypeNetezza,
		short:    "Add a Netezza connection",
		connType: constants.ConnectionTypeNetezza,
		dsnExamples: `netezza://<user>:'<pass>'@<host>/<dbname>[?sslmode=<disable|require|verify-ca>&securityLevel=<0-3>]

See https://pkg.go.dev/github.com/IBM/nzgo for all parameters.`,
		newValidator: func(dsn string) actions.ConnectionValidator {
			return shared.NetezzaConnectionDetails{Dsn: dsn}
		},
	},
	{
		use:         "sqlite",
		short:       "Add a SQLite connection",
		connType:    constants.ConnectionTypeSqlite,
		dsnExamples: "sqlite3:<file name>",
		newValidator: func(dsn string) actions.ConnectionValidator {
			return rdbms.SqliteConnectionDetails{Dsn: dsn}
		},
	},
}

// newDsnConnectionAddCmd returns a cobra.Command that saves the DSN flag value as a connection of type d.connType.
func newDsnConnectionAddCmd(d dsnConnectionCommand) *cobra.Command {
	cfg := &actions.ConnectionConfig{}
	var dsn string
	c := &cobra.Command{
		Use:   d.use,
		Short: d.short,
		Long: fmt.Sprintf(`%v to the config store %q
by providing a DSN of the form:

%v
`, d.short, config.Connections.FullPath, d.dsnExamples),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Type = d.connType
			cfg.ConfigFile = getConnectionGetterSetter()
			cfg.ConnDetails = d.newValidator(dsn)
			cmd.SilenceUsage = true
			return actions.RunConnectionAdd(cfg)
		},
	}
	c.Flags().SortFlags = false
	switches.addFlag(c, &cfg.LogicalName, "connection-name", "", true, "")
	switches.addFlag(c, &cfg.Force, "force-connection", "", false, "")
	switches.addFlag(c, &dsn, "dsn", "", true, "")
	return c
}

var configConnAddSurveyCfg = &actions.ConnectionConfig{}
var surveyConn = survey.Credentials{}

var configConnAddSurveyCmd = &cobra.Command{
	Use:     constants.ConnectionTypeSurvey123,
	Aliases: []string{"survey", "arcgis"},
	Short:   "Add a Survey123 (ArcGIS portal) connection",
	Long: fmt.Sprintf(`Add an ArcGIS portal connection to the config store %q.
Omit the user to download public surveys anonymously.
The default portal is %v`,
		config.Connections.FullPath, constants.DefaultPortalURL),
	RunE: func(cmd *cobra.Command, args []string) error {
		configConnAddSurveyCfg.Type = constants.ConnectionTypeSurvey123
		configConnAddSurveyCfg.ConfigFile = getConnectionGetterSetter()
		configConnAddSurveyCfg.ConnDetails = &surveyConn
		cmd.SilenceUsage = true
		return actions.RunConnectionAdd(configConnAddSurveyCfg)
	},
}

var connRemoveCfg = actions.ConnectionConfig{}

var configConnRemoveCmd = &cobra.Command{
	Use:     "remove",
	Aliases: []string{"rm", "del", "delete"},
	Short:   "Remove a connection",
	Long:    fmt.Sprintf("Remove a connection from config file %q", config.Connections.FullPath),
	RunE: func(cmd *cobra.Command, args []string) error {
		connRemoveCfg.ConfigFile = getConnectionGetterSetter()
		return actions.RunConnectionRemove(&connRemoveCfg)
	},
}

var configConnListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Print all connections",
	Long: fmt.Sprintf(`List connections stored in config file %q
by printing them all to STDOUT with passwords redacted`,
		config.Connections.FullPath),
	RunE: func(cmd *cobra.Command, args []string) error {
		return actions.RunConnectionList(config.Connections, cmd.OutOrStdout())
	},
}

func init() {
	for _, d := range dsnConnectionCommands {
		configConnAddCmd.AddCommand(newDsnConnectionAddCmd(d))
	}
	// Survey123.
	configConnAddCmd.AddCommand(configConnAddSurveyCmd)
	configConnAddSurveyCmd.Flags().SortFlags = false
	switches.addFlag(configConnAddSurveyCmd, &configConnAddSurveyCfg.LogicalName, "connection-name", "", true, "")
	switches.addFlag(configConnAddSurveyCmd, &configConnAddSurveyCfg.Force, "force-connection", "", false, "")
	switches.addFlag(configConnAddSurveyCmd, &surveyConn.PortalURL, "portal-url", constants.DefaultPortalURL, false, "")
	switches.addFlag(configConnAddSurveyCmd, &surveyConn.Username, "user", "", false, "")
	switches.addFlag(configConnAddSurveyCmd, &surveyConn.Password, "password", "", false, "")
	switches.addFlag(configConnAddSurveyCmd, &surveyConn.Referer, "referer", "", false, "")
	// Remove and list.
	configConnCmd.AddCommand(configConnListCmd)
	configConnCmd.AddCommand(configConnRemoveCmd)
	switches.addFlag(configConnRemoveCmd, &connRemoveCfg.LogicalName, "connection-name", "", true, "")
	configConnRemoveCmd.SilenceUsage = true
}
