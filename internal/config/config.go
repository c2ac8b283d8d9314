// Package config loads skillbuddy settings from an optional config file and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store drivers
const (
	DriverLocal    = "local"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverSQLite   = "sqlite"
)

// Config is the full server configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Store     StoreConfig     `mapstructure:"store"`
	Questions QuestionsConfig `mapstructure:"questions"`
	Log       LogConfig       `mapstructure:"log"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

// StoreConfig selects the remote backend. Local storage is always available as the fallback.
type StoreConfig struct {
	Driver         string        `mapstructure:"driver"`
	DatabaseURL    string        `mapstructure:"database_url"`
	MongoURI       string        `mapstructure:"mongo_uri"`
	MongoDatabase  string        `mapstructure:"mongo_database"`
	SQLitePath     string        `mapstructure:"sqlite_path"`
	LocalPath      string        `mapstructure:"local_path"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// QuestionsConfig points at an optional question catalog file. Empty uses the built-in catalog.
type QuestionsConfig struct {
	File string `mapstructure:"file"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// AuthConfig holds password hashing and token settings.
type AuthConfig struct {
	BcryptCost         int    `mapstructure:"bcrypt_cost"`
	PasswordPepper     string `mapstructure:"password_pepper"`
	JWTSecret          string `mapstructure:"jwt_secret"`
	JWTExpirationHours int    `mapstructure:"jwt_expiration_hours"`
}

// RateLimitConfig configures the per-client request limiter.
// Whitelist and Blacklist accept comma-separated client IPs from the environment.
type RateLimitConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	DefaultLimit    int           `mapstructure:"default_limit"`
	DefaultWindow   time.Duration `mapstructure:"default_window"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	Whitelist       []string      `mapstructure:"whitelist"`
	Blacklist       []string      `mapstructure:"blacklist"`
}

var envBindings = map[string]string{
	"server.port":                 "PORT",
	"server.shutdown_timeout":     "SHUTDOWN_TIMEOUT",
	"server.allowed_origins":      "ALLOWED_ORIGINS",
	"store.driver":                "STORE_DRIVER",
	"store.database_url":          "DATABASE_URL",
	"store.mongo_uri":             "MONGO_URI",
	"store.mongo_database":        "MONGO_DATABASE",
	"store.sqlite_path":           "SQLITE_PATH",
	"store.local_path":            "LOCAL_STORAGE_PATH",
	"store.connect_timeout":       "STORE_CONNECT_TIMEOUT",
	"questions.file":              "QUESTIONS_FILE",
	"log.level":                   "LOG_LEVEL",
	"log.pretty":                  "LOG_PRETTY",
	"auth.bcrypt_cost":            "BCRYPT_COST",
	"auth.password_pepper":        "PASSWORD_PEPPER",
	"auth.jwt_secret":             "JWT_SECRET",
	"auth.jwt_expiration_hours":   "JWT_EXPIRATION_HOURS",
	"rate_limit.enabled":          "RATE_LIMIT_ENABLED",
	"rate_limit.default_limit":    "RATE_LIMIT_DEFAULT_LIMIT",
	"rate_limit.default_window":   "RATE_LIMIT_DEFAULT_WINDOW",
	"rate_limit.cleanup_interval": "RATE_LIMIT_CLEANUP_INTERVAL",
	"rate_limit.whitelist":        "RATE_LIMIT_WHITELIST",
	"rate_limit.blacklist":        "RATE_LIMIT_BLACKLIST",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("store.driver", DriverLocal)
	v.SetDefault("store.mongo_database", "skillbuddy")
	v.SetDefault("store.sqlite_path", "skillbuddy.db")
	v.SetDefault("store.local_path", "local_storage")
	v.SetDefault("store.connect_timeout", 5*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("auth.bcrypt_cost", 12)
	v.SetDefault("auth.jwt_expiration_hours", 24)
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.default_limit", 1000)
	v.SetDefault("rate_limit.default_window", time.Minute)
	v.SetDefault("rate_limit.cleanup_interval", 5*time.Minute)
}

// Load reads configuration. path may be empty; otherwise it names a JSON or YAML file.
// Environment variables override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("config error: 'server.port' out of range: %d", c.Server.Port))
	}

	switch c.Store.Driver {
	case DriverLocal:
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			errs = append(errs, errors.New("config error: DATABASE_URL is required for the postgres driver"))
		}
	case DriverMongo:
		if c.Store.MongoURI == "" {
			errs = append(errs, errors.New("config error: MONGO_URI is required for the mongo driver"))
		}
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			errs = append(errs, errors.New("config error: SQLITE_PATH is required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("config error: unknown store driver %q", c.Store.Driver))
	}

	if c.Store.LocalPath == "" {
		errs = append(errs, errors.New("config error: 'store.local_path' must not be empty"))
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.DefaultLimit < 1 {
			errs = append(errs, fmt.Errorf("config error: 'rate_limit.default_limit' must be positive: %d", c.RateLimit.DefaultLimit))
		}
		if c.RateLimit.DefaultWindow <= 0 {
			errs = append(errs, errors.New("config error: 'rate_limit.default_window' must be positive"))
		}
	}

	return errors.Join(errs...)
}
