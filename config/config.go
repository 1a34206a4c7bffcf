// Package config loads application settings from config.yaml and APP_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-leaderboard-cache/cache"
	"github.com/goliatone/go-leaderboard-cache/store"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. APP_DATABASE_DSN.
const EnvPrefix = "APP"

type Database struct {
	Driver       string `mapstructure:"driver"`
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type Metrics struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
	Path    string `mapstructure:"path"`
}

// AppConfig is the root configuration of the leaderboard service.
type AppConfig struct {
	LogLevel string       `mapstructure:"log_level"`
	Database Database     `mapstructure:"database"`
	Metrics  Metrics      `mapstructure:"metrics"`
	Cache    cache.Config `mapstructure:"cache"`
}

func (c AppConfig) Validate() error {
	if err := validation.ValidateStruct(&c.Database,
		validation.Field(&c.Database.Driver, validation.Required, validation.In(store.DriverPostgres, store.DriverSQLite)),
		validation.Field(&c.Database.DSN, validation.Required),
		validation.Field(&c.Database.MaxOpenConns, validation.Min(0)),
	); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if c.Metrics.Enabled {
		if err := validation.ValidateStruct(&c.Metrics,
			validation.Field(&c.Metrics.Address, validation.Required),
			validation.Field(&c.Metrics.Path, validation.Required),
		); err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
	}
	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	defaults := cache.DefaultConfig()
	v.SetDefault("log_level", "info")
	v.SetDefault("database.driver", store.DriverSQLite)
	v.SetDefault("database.dsn", "file:leaderboard.db?cache=shared")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.address", ":9090")
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("cache.backend", defaults.Backend)
	v.SetDefault("cache.num_shards", defaults.NumShards)
	v.SetDefault("cache.ttl", defaults.TTL)
	v.SetDefault("cache.eviction_percentage", defaults.EvictionPercentage)
	v.SetDefault("cache.eviction_interval", defaults.EvictionInterval)
	v.SetDefault("cache.max_key_length", defaults.MaxKeyLength)
}

// Load reads config.yaml from the given directories, or from "." and
// "./config" when none are given. A missing file is not an error.
func Load(paths ...string) (AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./config"}
	}
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return AppConfig{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// NewLogger builds a console logger. Unknown levels fall back to info.
func NewLogger(level string) zerolog.Logger {
	return newLogger(os.Stdout, level)
}

func newLogger(out io.Writer, level string) zerolog.Logger {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: out, NoColor: true}).With().Timestamp().Logger()
	name := strings.ToLower(strings.TrimSpace(level))
	parsed, err := zerolog.ParseLevel(name)
	if err != nil || name == "" {
		logger = logger.Level(zerolog.InfoLevel)
		if err != nil {
			logger.Warn().Str("level", level).Msg("invalid log level, using info")
		}
		return logger
	}
	return logger.Level(parsed)
}
