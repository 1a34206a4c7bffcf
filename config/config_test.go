package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-leaderboard-cache/cache"
	"github.com/goliatone/go-leaderboard-cache/store"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600))
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	defaults := cache.DefaultConfig()
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, store.DriverSQLite, cfg.Database.Driver)
	assert.NotEmpty(t, cfg.Database.DSN)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, defaults.Backend, cfg.Cache.Backend)
	assert.Equal(t, defaults.TTL, cfg.Cache.TTL)
	assert.Equal(t, defaults.NumShards, cfg.Cache.NumShards)
}

func TestLoad_File(t *testing.T) {
	dir := writeConfig(t, `
log_level: debug
database:
  driver: postgres
  dsn: postgres://campus@localhost/campus?sslmode=disable
  max_open_conns: 4
metrics:
  enabled: true
  address: ":9100"
cache:
  backend: lru
  ttl: 30m
  capacities:
    user_positions: 50
`)
	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, store.DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 4, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, ":9100", cfg.Metrics.Address)
	assert.Equal(t, cache.BackendLRU, cfg.Cache.Backend)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 50, cfg.Cache.Capacity(cache.PartitionUserPositions))
	assert.Equal(t, cache.DefaultCapacities[cache.PartitionRewards], cfg.Cache.Capacity(cache.PartitionRewards))
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := writeConfig(t, "log_level: debug\ndatabase:\n  dsn: file:a.db\n")
	t.Setenv("APP_LOG_LEVEL", "warn")
	t.Setenv("APP_DATABASE_DSN", "file:b.db")
	t.Setenv("APP_CACHE_TTL", "5m")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "file:b.db", cfg.Database.DSN)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"driver", "database:\n  driver: mysql\n"},
		{"backend", "cache:\n  backend: redis\n"},
		{"partition", "cache:\n  capacities:\n    nope: 3\n"},
		{"metrics address", "metrics:\n  enabled: true\n  address: \"\"\n"},
		{"yaml", "database: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
		warn  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{" WARN ", zerolog.WarnLevel, false},
		{"", zerolog.InfoLevel, false},
		{"loud", zerolog.InfoLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.level)
			assert.Equal(t, tt.want, logger.GetLevel())
			assert.Equal(t, tt.warn, bytes.Contains(buf.Bytes(), []byte("invalid log level")))
		})
	}
}
