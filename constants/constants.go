package constants

// Component

const (
	DateFormat                  = "2006-01-02" // canonical survey date written to and compared against the target.
	DateFormatRegex             = "^[0-9]{4}-[0-9]{2}-[0-9]{2}"
	DefaultStartDate            = "1900-01-01"
	DefaultPortalURL            = "https://www.arcgis.com"
	DefaultPortalReferer        = "https://www.arcgis.com"
	DefaultSurveyLayer          = 0
	DefaultSurveyPageSize       = 2000
	DefaultTokenExpiryMinutes   = 60
	DefaultHttpTimeoutSeconds   = 300
	DefaultExecBatchSize        = 1
	DefaultOptionColumn         = "activity_col"
	DefaultLogLevel             = "info"
	MultiSelectSeparator        = ","
	TimeFormatYearSeconds       = "20060102T150405"
	TimeFormatYearSecondsTZ     = "20060102T150405-0700"
	EmojiBang                   = "\U0001F4A5"
	AppName                     = "s2s"
	ConfigDirName               = ".survey2sql"
	EnvVarPrefix                = "S2S" // prefixed for environment variables in twelveFactorMode
	S2sPluginOdbc               = "s2s-odbc-plugin.so"
	EnvVarPluginDir             = EnvVarPrefix + "_PLUGIN_DIR"
	ActionFuncsCommandLoad      = "load"
	ActionFuncsSubCommandDelta  = "delta"
	ConnectionTypeSurvey123     = "survey123"
	ConnectionTypeMockSqlServer = "mockSqlServer"
	ConnectionTypeSnowflake     = "snowflake"
	ConnectionTypeNetezza       = "netezza"
	ConnectionTypeOdbc          = "odbc" // this is not a real connection type, since we need a suffix to provide the driver name like sqlserver.
	ConnectionTypeOdbcSqlServer = "odbc+sqlserver"
	ConnectionTypeSqlServer     = "sqlserver"
	ConnectionTypePostgres      = "postgres"
	ConnectionTypeSqlite        = "sqlite3"
	MetricsJobName              = "survey2sql"
)
