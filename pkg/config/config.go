package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "MOSKETH"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	StorageDriverMemory   = "memory"
	StorageDriverSQLite   = "sqlite"
	StorageDriverPostgres = "postgres"
	StorageDriverRedis    = "redis"
)

const (
	EnvAppEnv        = "MOSKETH_APP_ENV"
	EnvPort          = "MOSKETH_APP_PORT"
	EnvLogLevel      = "MOSKETH_LOG_LEVEL"
	EnvStorageDriver = "MOSKETH_STORAGE_DRIVER"
	EnvSQLitePath    = "MOSKETH_SQLITE_PATH"
	EnvDBDSN         = "MOSKETH_DB_DSN"
	EnvRedisURL      = "MOSKETH_REDIS_URL"
	EnvRedisAddr     = "MOSKETH_REDIS_ADDR"
	EnvAPIBaseURL    = "MOSKETH_API_BASE_URL"
	EnvAPITimeout    = "MOSKETH_API_TIMEOUT"
	EnvSessionIdle   = "MOSKETH_SESSION_IDLE_TTL"
	EnvCORSOrigins   = "MOSKETH_CORS_ALLOWED_ORIGINS"
)

type Config struct {
	App     AppConfig
	Storage StorageConfig
	DB      DBConfig
	Redis   RedisConfig
	API     APIConfig
	Session SessionConfig
	CORS    CORSConfig
	Login   LoginRateLimitConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case StorageDriverMemory, StorageDriverSQLite:
	case StorageDriverPostgres:
		if c.DB.DSN == "" {
			return fmt.Errorf("%s is required for the postgres storage driver", EnvDBDSN)
		}
	case StorageDriverRedis:
		if c.Redis.URL == "" && c.Redis.Address == "" {
			return fmt.Errorf("either %s or %s is required for the redis storage driver", EnvRedisURL, EnvRedisAddr)
		}
	default:
		return fmt.Errorf("unsupported storage driver %q", c.Storage.Driver)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("%s must be positive", EnvAPITimeout)
	}
	return nil
}

type AppConfig struct {
	Env          string `envconfig:"MOSKETH_APP_ENV" required:"true"`
	Port         string `envconfig:"MOSKETH_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"MOSKETH_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MOSKETH_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"MOSKETH_LOG_FORMAT" default:"json"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// StorageConfig selects the durable medium backing cart, wishlist and auth snapshots.
type StorageConfig struct {
	Driver      string `envconfig:"MOSKETH_STORAGE_DRIVER" default:"sqlite"`
	SQLitePath  string `envconfig:"MOSKETH_SQLITE_PATH" default:"storefront.db"`
	AutoMigrate bool   `envconfig:"MOSKETH_AUTO_MIGRATE" default:"true"`

	// Retention prunes SQL snapshots untouched for longer than this. Redis keys expire via StateTTL.
	Retention time.Duration `envconfig:"MOSKETH_STATE_RETENTION" default:"720h"`
}

// UsesSQL reports whether the driver is served by the gorm-backed store.
func (s StorageConfig) UsesSQL() bool {
	return s.Driver == StorageDriverSQLite || s.Driver == StorageDriverPostgres
}

type DBConfig struct {
	DSN string `envconfig:"MOSKETH_DB_DSN"`

	MaxOpenConns    int           `envconfig:"MOSKETH_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"MOSKETH_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"MOSKETH_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MOSKETH_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MOSKETH_REDIS_URL"`
	Address      string        `envconfig:"MOSKETH_REDIS_ADDR"`
	Password     string        `envconfig:"MOSKETH_REDIS_PASSWORD"`
	DB           int           `envconfig:"MOSKETH_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MOSKETH_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MOSKETH_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MOSKETH_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MOSKETH_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"MOSKETH_REDIS_WRITE_TIMEOUT" default:"3s"`
	StateTTL     time.Duration `envconfig:"MOSKETH_REDIS_STATE_TTL" default:"720h"`
}

// APIConfig points at the storefront backend that owns orders, products and logins.
type APIConfig struct {
	BaseURL            string        `envconfig:"MOSKETH_API_BASE_URL" default:"http://localhost:5000/api"`
	Timeout            time.Duration `envconfig:"MOSKETH_API_TIMEOUT" default:"10s"`
	BreakerMaxFailures uint32        `envconfig:"MOSKETH_API_BREAKER_MAX_FAILURES" default:"5"`
	BreakerOpenTimeout time.Duration `envconfig:"MOSKETH_API_BREAKER_OPEN_TIMEOUT" default:"30s"`
}

type SessionConfig struct {
	CookieName    string        `envconfig:"MOSKETH_SESSION_COOKIE" default:"mosketh_session"`
	IdleTTL       time.Duration `envconfig:"MOSKETH_SESSION_IDLE_TTL" default:"30m"`
	SweepInterval time.Duration `envconfig:"MOSKETH_SESSION_SWEEP_INTERVAL" default:"1m"`
	SecureCookie  bool          `envconfig:"MOSKETH_SESSION_SECURE_COOKIE" default:"false"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"MOSKETH_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

// LoginRateLimitConfig throttles POST /api/auth/login. Counters live in redis,
// so the limit only applies when MOSKETH_REDIS_URL or MOSKETH_REDIS_ADDR is set.
type LoginRateLimitConfig struct {
	Window     time.Duration `envconfig:"MOSKETH_LOGIN_RATE_WINDOW" default:"15m"`
	IPLimit    int           `envconfig:"MOSKETH_LOGIN_RATE_IP_LIMIT" default:"30"`
	EmailLimit int           `envconfig:"MOSKETH_LOGIN_RATE_EMAIL_LIMIT" default:"5"`
}
