package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GuestCart     GuestCartConfig
	Mail          MailConfig
	Tokens        TokenConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"NEONSHOP_APP_ENV" required:"true"`
	Port         string `envconfig:"NEONSHOP_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"NEONSHOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"NEONSHOP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"NEONSHOP_DB_DSN"`
	Driver string `envconfig:"NEONSHOP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"NEONSHOP_DB_HOST"`
	LegacyPort     int    `envconfig:"NEONSHOP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"NEONSHOP_DB_USER"`
	LegacyPassword string `envconfig:"NEONSHOP_DB_PASSWORD"`
	LegacyName     string `envconfig:"NEONSHOP_DB_NAME"`
	LegacySSLMode  string `envconfig:"NEONSHOP_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"NEONSHOP_SQLITE_PATH" default:"neonshop.db"`

	MaxOpenConns    int           `envconfig:"NEONSHOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"NEONSHOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"NEONSHOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"NEONSHOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"NEONSHOP_REDIS_URL" required:"true"`
	Address      string        `envconfig:"NEONSHOP_REDIS_ADDR"`
	Password     string        `envconfig:"NEONSHOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"NEONSHOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"NEONSHOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"NEONSHOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"NEONSHOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"NEONSHOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"NEONSHOP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"NEONSHOP_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"NEONSHOP_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"NEONSHOP_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"NEONSHOP_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"NEONSHOP_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"NEONSHOP_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"NEONSHOP_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"NEONSHOP_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"NEONSHOP_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"NEONSHOP_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"NEONSHOP_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"NEONSHOP_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"NEONSHOP_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"NEONSHOP_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"NEONSHOP_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"NEONSHOP_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"NEONSHOP_AUTO_MIGRATE" default:"false"`
}

// GuestCartConfig tunes the anonymous cart store. Guest carts never expire on
// their own; the key prefix is injectable so tests can isolate namespaces.
type GuestCartConfig struct {
	KeyName string `envconfig:"NEONSHOP_GUEST_CART_KEY" default:"neonshop_guest_cart"`
}

type MailConfig struct {
	FromAddress string `envconfig:"NEONSHOP_MAIL_FROM" default:"no-reply@neonshop.io"`
	MaxRetries  int    `envconfig:"NEONSHOP_MAIL_MAX_RETRIES" default:"3"`
}

// TokenConfig holds TTLs for single-use account tokens stored in Redis.
type TokenConfig struct {
	PasswordResetTTL     time.Duration `envconfig:"NEONSHOP_PASSWORD_RESET_TTL" default:"30m"`
	EmailVerificationTTL time.Duration `envconfig:"NEONSHOP_EMAIL_VERIFICATION_TTL" default:"24h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
