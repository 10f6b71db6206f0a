package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/multierr"
)

const (
	EnvPrefix = "OUTSIDE"

	EnvAppEnv            = "OUTSIDE_APP_ENV"
	EnvPort              = "OUTSIDE_APP_PORT"
	EnvLogLevel          = "OUTSIDE_LOG_LEVEL"
	EnvLogFormat         = "OUTSIDE_LOG_FORMAT"
	EnvCardDelay         = "OUTSIDE_CHECKOUT_CARD_DELAY"
	EnvWalletDelay       = "OUTSIDE_CHECKOUT_WALLET_DELAY"
	EnvSessionLockTTL    = "OUTSIDE_SESSION_LOCK_TTL"
	EnvSessionMaxCount   = "OUTSIDE_SESSION_MAX_COUNT"
	EnvCreateLimit       = "OUTSIDE_SESSION_CREATE_LIMIT"
	EnvCreateWindow      = "OUTSIDE_SESSION_CREATE_WINDOW"
	EnvRedisURL          = "OUTSIDE_REDIS_URL"
	EnvRedisAddr         = "OUTSIDE_REDIS_ADDR"
	EnvShutdownTimeout   = "OUTSIDE_APP_SHUTDOWN_TIMEOUT"
	EnvReadHeaderTimeout = "OUTSIDE_APP_READ_HEADER_TIMEOUT"
	EnvCORSOrigins       = "OUTSIDE_CORS_ORIGINS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App      AppConfig
	Checkout CheckoutConfig
	Session  SessionConfig
	Redis    RedisConfig
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
	var err error
	if c.Checkout.CardDelay < 0 {
		err = multierr.Append(err, fmt.Errorf("%s must not be negative", EnvCardDelay))
	}
	if c.Checkout.WalletDelay < 0 {
		err = multierr.Append(err, fmt.Errorf("%s must not be negative", EnvWalletDelay))
	}
	if c.Session.LockTTL <= 0 {
		err = multierr.Append(err, fmt.Errorf("%s must be positive", EnvSessionLockTTL))
	}
	if c.Session.MaxSessions < 0 {
		err = multierr.Append(err, fmt.Errorf("%s must not be negative", EnvSessionMaxCount))
	}
	if c.Session.CreateLimit < 0 {
		err = multierr.Append(err, fmt.Errorf("%s must not be negative", EnvCreateLimit))
	}
	if c.Session.CreateWindow < 0 {
		err = multierr.Append(err, fmt.Errorf("%s must not be negative", EnvCreateWindow))
	}
	if c.App.ShutdownTimeout <= 0 {
		err = multierr.Append(err, fmt.Errorf("%s must be positive", EnvShutdownTimeout))
	}
	return err
}

type AppConfig struct {
	Env               string        `envconfig:"OUTSIDE_APP_ENV" required:"true"`
	Port              string        `envconfig:"OUTSIDE_APP_PORT" default:"8080"`
	LogLevel          string        `envconfig:"OUTSIDE_LOG_LEVEL" default:"info"`
	LogFormat         string        `envconfig:"OUTSIDE_LOG_FORMAT" default:"json"`
	LogWarnStack      bool          `envconfig:"OUTSIDE_LOG_WARN_STACK" default:"false"`
	ShutdownTimeout   time.Duration `envconfig:"OUTSIDE_APP_SHUTDOWN_TIMEOUT" default:"10s"`
	ReadHeaderTimeout time.Duration `envconfig:"OUTSIDE_APP_READ_HEADER_TIMEOUT" default:"5s"`
	CORSOrigins       []string      `envconfig:"OUTSIDE_CORS_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// CheckoutConfig holds the simulated processing latency per payment method family.
type CheckoutConfig struct {
	CardDelay   time.Duration `envconfig:"OUTSIDE_CHECKOUT_CARD_DELAY" default:"2s"`
	WalletDelay time.Duration `envconfig:"OUTSIDE_CHECKOUT_WALLET_DELAY" default:"1500ms"`
}

// SessionConfig bounds in-memory sessions. CreateLimit applies per client IP
// within CreateWindow and only when Redis is configured.
type SessionConfig struct {
	LockTTL      time.Duration `envconfig:"OUTSIDE_SESSION_LOCK_TTL" default:"30s"`
	MaxSessions  int           `envconfig:"OUTSIDE_SESSION_MAX_COUNT" default:"10000"`
	CreateLimit  int           `envconfig:"OUTSIDE_SESSION_CREATE_LIMIT" default:"30"`
	CreateWindow time.Duration `envconfig:"OUTSIDE_SESSION_CREATE_WINDOW" default:"1m"`
}

// RedisConfig is optional; when neither URL nor Address is set, session locking stays in-process.
type RedisConfig struct {
	URL          string        `envconfig:"OUTSIDE_REDIS_URL"`
	Address      string        `envconfig:"OUTSIDE_REDIS_ADDR"`
	Password     string        `envconfig:"OUTSIDE_REDIS_PASSWORD"`
	DB           int           `envconfig:"OUTSIDE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"OUTSIDE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"OUTSIDE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"OUTSIDE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"OUTSIDE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"OUTSIDE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}
