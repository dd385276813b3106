package config

const (
	EnvPrefix = "SALESREPORT"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	EnvAppEnv   = "SALESREPORT_APP_ENV"
	EnvPort     = "SALESREPORT_APP_PORT"
	EnvLogLevel = "SALESREPORT_LOG_LEVEL"

	EnvDBDSN      = "SALESREPORT_DB_DSN"
	EnvDBDriver   = "SALESREPORT_DB_DRIVER"
	EnvDBHost     = "SALESREPORT_DB_HOST"
	EnvDBUser     = "SALESREPORT_DB_USER"
	EnvDBPassword = "SALESREPORT_DB_PASSWORD"
	EnvDBName     = "SALESREPORT_DB_NAME"

	EnvRedisURL = "SALESREPORT_REDIS_URL"

	EnvBonusFirstRate     = "SALESREPORT_BONUS_FIRST_RATE"
	EnvBonusTopThreeRate  = "SALESREPORT_BONUS_TOP_THREE_RATE"
	EnvBonusDefaultRate   = "SALESREPORT_BONUS_DEFAULT_RATE"
	EnvSkipInvalidRecords = "SALESREPORT_SKIP_INVALID_RECORDS"
	EnvReportCacheTTL     = "SALESREPORT_REPORT_CACHE_TTL"
	EnvReportRetention    = "SALESREPORT_REPORT_RETENTION"

	EnvInstanceID = "SALESREPORT_INSTANCE_ID"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
