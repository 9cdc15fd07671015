package config

// EnvPrefix is passed to envconfig; individual fields carry explicit names so
// the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv  = "LAUTECH_APP_ENV"
	EnvAppPort = "LAUTECH_APP_PORT"
	EnvDBDSN   = "LAUTECH_DB_DSN"
	EnvDBHost  = "LAUTECH_DB_HOST"
	EnvDBUser  = "LAUTECH_DB_USER"
	EnvDBName  = "LAUTECH_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
