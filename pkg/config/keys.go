package config

// EnvPrefix namespaces every variable read by Load.
const EnvPrefix = "JEWELMART"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv                 = "JEWELMART_APP_ENV"
	EnvPort                   = "JEWELMART_APP_PORT"
	EnvLogLevel               = "JEWELMART_LOG_LEVEL"
	EnvDBDSN                  = "JEWELMART_DB_DSN"
	EnvDBHost                 = "JEWELMART_DB_HOST"
	EnvDBUser                 = "JEWELMART_DB_USER"
	EnvDBPassword             = "JEWELMART_DB_PASSWORD"
	EnvDBName                 = "JEWELMART_DB_NAME"
	EnvRedisURL               = "JEWELMART_REDIS_URL"
	EnvJWTSecret              = "JEWELMART_JWT_SECRET"
	EnvJWTIssuer              = "JEWELMART_JWT_ISSUER"
	EnvJWTExpMins             = "JEWELMART_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "JEWELMART_REFRESH_TOKEN_TTL_MINUTES"
	EnvCORSAllowedOrigins     = "JEWELMART_CORS_ALLOWED_ORIGINS"
	EnvUseSQLite              = "JEWELMART_USE_SQLITE"
	EnvCatalogPublic          = "JEWELMART_CATALOG_PUBLIC"
	EnvGCPProjectID           = "JEWELMART_GCP_PROJECT_ID"
	EnvPubSubOrdersTopic      = "JEWELMART_PUBSUB_ORDERS_TOPIC"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const defaultSQLiteDSN = "file:jewelmart.db?cache=shared&_foreign_keys=on"

var dbPartEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
