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
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Idempotency   IdempotencyConfig
	CORS          CORSConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Cron          CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if cfg.JWT.ExpirationMinutes <= 0 {
		return nil, fmt.Errorf("%s must be positive", EnvJWTExpMins)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"JEWELMART_APP_ENV" required:"true"`
	Port         string `envconfig:"JEWELMART_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"JEWELMART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"JEWELMART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"JEWELMART_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"JEWELMART_DB_DSN"`
	Driver string `envconfig:"JEWELMART_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"JEWELMART_DB_HOST"`
	Port     int    `envconfig:"JEWELMART_DB_PORT" default:"5432"`
	User     string `envconfig:"JEWELMART_DB_USER"`
	Password string `envconfig:"JEWELMART_DB_PASSWORD"`
	Name     string `envconfig:"JEWELMART_DB_NAME"`
	SSLMode  string `envconfig:"JEWELMART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"JEWELMART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"JEWELMART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"JEWELMART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"JEWELMART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"JEWELMART_REDIS_URL"`
	Address      string        `envconfig:"JEWELMART_REDIS_ADDR"`
	Password     string        `envconfig:"JEWELMART_REDIS_PASSWORD"`
	DB           int           `envconfig:"JEWELMART_REDIS_DB" default:"0"`
	Namespace    string        `envconfig:"JEWELMART_REDIS_NAMESPACE" default:"jm"`
	PoolSize     int           `envconfig:"JEWELMART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"JEWELMART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"JEWELMART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"JEWELMART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"JEWELMART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"JEWELMART_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"JEWELMART_JWT_ISSUER" default:"jewelmart"`
	ExpirationMinutes      int    `envconfig:"JEWELMART_JWT_EXPIRATION_MINUTES" default:"15"`
	RefreshTokenTTLMinutes int    `envconfig:"JEWELMART_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"JEWELMART_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"JEWELMART_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"JEWELMART_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"JEWELMART_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"JEWELMART_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow      time.Duration `envconfig:"JEWELMART_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit  int           `envconfig:"JEWELMART_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit     int           `envconfig:"JEWELMART_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	SignupWindow     time.Duration `envconfig:"JEWELMART_AUTH_RATE_LIMIT_SIGNUP_WINDOW" default:"5m"`
	SignupEmailLimit int           `envconfig:"JEWELMART_AUTH_RATE_LIMIT_SIGNUP_EMAIL_LIMIT" default:"3"`
	SignupIPLimit    int           `envconfig:"JEWELMART_AUTH_RATE_LIMIT_SIGNUP_IP_LIMIT" default:"20"`
}

type IdempotencyConfig struct {
	CheckoutTTL time.Duration `envconfig:"JEWELMART_IDEMPOTENCY_CHECKOUT_TTL" default:"24h"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"JEWELMART_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	MaxAgeSeconds  int      `envconfig:"JEWELMART_CORS_MAX_AGE_SECONDS" default:"300"`
}

type FeatureFlagsConfig struct {
	UseSQLite     bool `envconfig:"JEWELMART_USE_SQLITE" default:"false"`
	AutoMigrate   bool `envconfig:"JEWELMART_AUTO_MIGRATE" default:"false"`
	CatalogPublic bool `envconfig:"JEWELMART_CATALOG_PUBLIC" default:"true"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"JEWELMART_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"JEWELMART_PUBSUB_ORDERS_TOPIC" default:"jm-order-events"`
	OrdersSubscription string `envconfig:"JEWELMART_PUBSUB_ORDERS_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"JEWELMART_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"JEWELMART_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"JEWELMART_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type CronConfig struct {
	Interval            time.Duration `envconfig:"JEWELMART_CRON_INTERVAL" default:"24h"`
	LockTTL             time.Duration `envconfig:"JEWELMART_CRON_LOCK_TTL" default:"1h"`
	OutboxRetentionDays int           `envconfig:"JEWELMART_CRON_OUTBOX_RETENTION_DAYS" default:"30"`
	StaleCartDays       int           `envconfig:"JEWELMART_CRON_STALE_CART_DAYS" default:"30"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite {
		db.Driver = DriverSQLite
	}
	if db.DSN != "" {
		return nil
	}
	if useSQLite {
		db.DSN = defaultSQLiteDSN
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range dbPartEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
