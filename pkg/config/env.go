package config

// EnvPrefix is handed to envconfig; every field carries an explicit tag so it is
// only used for error messages.
const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	EnvAppEnv                 = "STOREFRONT_APP_ENV"
	EnvPort                   = "STOREFRONT_APP_PORT"
	EnvDBDSN                  = "STOREFRONT_DB_DSN"
	EnvDBHost                 = "STOREFRONT_DB_HOST"
	EnvDBUser                 = "STOREFRONT_DB_USER"
	EnvDBName                 = "STOREFRONT_DB_NAME"
	EnvUseSQLite              = "STOREFRONT_USE_SQLITE"
	EnvRedisURL               = "STOREFRONT_REDIS_URL"
	EnvJWTSecret              = "STOREFRONT_JWT_SECRET"
	EnvJWTIssuer              = "STOREFRONT_JWT_ISSUER"
	EnvJWTExpMins             = "STOREFRONT_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "STOREFRONT_REFRESH_TOKEN_TTL_MINUTES"
	EnvCartTTL                = "STOREFRONT_CART_TTL"
	EnvGCSBucket              = "STOREFRONT_GCS_BUCKET_NAME"
	EnvGCSUploadExpiry        = "STOREFRONT_GCS_UPLOAD_URL_EXPIRY"
	EnvAdminEmail             = "STOREFRONT_ADMIN_EMAIL"
	EnvAdminPassword          = "STOREFRONT_ADMIN_PASSWORD"
	EnvCORSAllowedOrigins     = "STOREFRONT_CORS_ALLOWED_ORIGINS"
)
