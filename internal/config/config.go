package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/powdermilkjuno/habit-tracker/internal/bmr"
)

type Config struct {
	Env      string `mapstructure:"APP_ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
	HTTPAddr string `mapstructure:"HTTP_ADDR"`

	RemoteBackend string `mapstructure:"REMOTE_BACKEND"`
	PostgresDSN   string `mapstructure:"POSTGRES_DSN"`
	SQLitePath    string `mapstructure:"SQLITE_PATH"`
	LogQueries    bool   `mapstructure:"LOG_QUERIES"`

	SnapshotBackend string `mapstructure:"SNAPSHOT_BACKEND"`
	SnapshotDir     string `mapstructure:"SNAPSHOT_DIR"`
	RedisAddr       string `mapstructure:"REDIS_ADDR"`
	RedisPassword   string `mapstructure:"REDIS_PASSWORD"`
	RedisDB         int    `mapstructure:"REDIS_DB"`

	AuthProvider   string        `mapstructure:"AUTH_PROVIDER"`
	AuthServiceURL string        `mapstructure:"AUTH_SERVICE_URL"`
	AuthAPIKey     string        `mapstructure:"AUTH_API_KEY"`
	JWTSecret      string        `mapstructure:"JWT_SECRET"`
	JWTTTL         time.Duration `mapstructure:"JWT_TTL"`

	BMRStrategy  string        `mapstructure:"BMR_STRATEGY"`
	HatchDelay   time.Duration `mapstructure:"HATCH_DELAY"`
	Timezone     string        `mapstructure:"TIMEZONE"`
	SyncOnToggle bool          `mapstructure:"SYNC_ON_TOGGLE"`

	RateLimitRequests int           `mapstructure:"RATE_LIMIT_REQUESTS"`
	RateLimitWindow   time.Duration `mapstructure:"RATE_LIMIT_WINDOW"`
}

var defaults = map[string]any{
	"APP_ENV":             "development",
	"LOG_LEVEL":           "info",
	"HTTP_ADDR":           ":8088",
	"REMOTE_BACKEND":      "memory",
	"POSTGRES_DSN":        "",
	"SQLITE_PATH":         "data/habits.db",
	"LOG_QUERIES":         false,
	"SNAPSHOT_BACKEND":    "file",
	"SNAPSHOT_DIR":        "data/snapshots",
	"REDIS_ADDR":          "localhost:6379",
	"REDIS_PASSWORD":      "",
	"REDIS_DB":            0,
	"AUTH_PROVIDER":       "local",
	"AUTH_SERVICE_URL":    "",
	"AUTH_API_KEY":        "",
	"JWT_SECRET":          "",
	"JWT_TTL":             "24h",
	"BMR_STRATEGY":        string(bmr.ActivityFactorStrategy),
	"HATCH_DELAY":         "3s",
	"TIMEZONE":            "Local",
	"SYNC_ON_TOGGLE":      false,
	"RATE_LIMIT_REQUESTS": 100,
	"RATE_LIMIT_WINDOW":   "15m",
}

var (
	cfg     *Config
	loadErr error
	once    sync.Once
)

// Load reads .env, an optional config.yaml and the environment once.
// Environment variables win over the file.
func Load() (*Config, error) {
	once.Do(func() {
		_ = godotenv.Load()
		cfg, loadErr = Read(viper.New(), "")
	})
	return cfg, loadErr
}

// Read builds a Config from v. An empty path looks for config.yaml in the
// working directory; a missing file is not an error.
func Read(v *viper.Viper, path string) (*Config, error) {
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	switch c.Env {
	case "development", "staging", "production":
	default:
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	switch c.RemoteBackend {
	case "memory", "sqlite":
	case "postgres":
		if c.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN is required when REMOTE_BACKEND=postgres")
		}
	default:
		return errors.New("REMOTE_BACKEND must be one of: memory, postgres, sqlite")
	}
	if c.RemoteBackend == "sqlite" && c.SQLitePath == "" {
		return errors.New("SQLITE_PATH is required when REMOTE_BACKEND=sqlite")
	}
	switch c.SnapshotBackend {
	case "file":
		if c.SnapshotDir == "" {
			return errors.New("SNAPSHOT_DIR is required when SNAPSHOT_BACKEND=file")
		}
	case "redis":
		if c.RedisAddr == "" {
			return errors.New("REDIS_ADDR is required when SNAPSHOT_BACKEND=redis")
		}
	default:
		return errors.New("SNAPSHOT_BACKEND must be one of: file, redis")
	}
	switch c.AuthProvider {
	case "local":
		if c.JWTSecret == "" && c.Env != "development" {
			return errors.New("JWT_SECRET is required outside development when AUTH_PROVIDER=local")
		}
	case "remote":
		if c.AuthServiceURL == "" {
			return errors.New("AUTH_SERVICE_URL is required when AUTH_PROVIDER=remote")
		}
	default:
		return errors.New("AUTH_PROVIDER must be one of: local, remote")
	}
	if _, err := bmr.ParseStrategy(c.BMRStrategy); err != nil {
		return fmt.Errorf("BMR_STRATEGY: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("TIMEZONE: %w", err)
	}
	if c.HatchDelay < 0 {
		return errors.New("HATCH_DELAY must not be negative")
	}
	if c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0 {
		return errors.New("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

// Location resolves TIMEZONE; "Local" and empty mean the host zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func (c *Config) Strategy() bmr.Strategy {
	s, _ := bmr.ParseStrategy(c.BMRStrategy)
	return s
}

// Secret returns JWT_SECRET, or a fixed development secret when unset.
func (c *Config) Secret() string {
	if c.JWTSecret == "" {
		return "development-only-secret"
	}
	return c.JWTSecret
}
