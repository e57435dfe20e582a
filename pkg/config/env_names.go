package config

// EnvPrefix is passed to envconfig; individual fields carry explicit names.
const EnvPrefix = "NEONSHOP"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags.
const (
	EnvAppEnv                 = "NEONSHOP_APP_ENV"
	EnvPort                   = "NEONSHOP_APP_PORT"
	EnvDBDSN                  = "NEONSHOP_DB_DSN"
	EnvDBHost                 = "NEONSHOP_DB_HOST"
	EnvDBUser                 = "NEONSHOP_DB_USER"
	EnvDBName                 = "NEONSHOP_DB_NAME"
	EnvRedisURL               = "NEONSHOP_REDIS_URL"
	EnvJWTSecret              = "NEONSHOP_JWT_SECRET"
	EnvJWTIssuer              = "NEONSHOP_JWT_ISSUER"
	EnvJWTExpMins             = "NEONSHOP_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "NEONSHOP_REFRESH_TOKEN_TTL_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
