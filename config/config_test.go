package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_defaults(t *testing.T) {
	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, DriverPostgres, cfg.DatabaseDriver)
	assert.Equal(t, int32(10), cfg.MaxConnections)
	assert.Equal(t, 3*time.Minute, cfg.MaxConnIdleTime)
	assert.Equal(t, CacheNone, cfg.CacheBackend)
	assert.False(t, cfg.LegacyStatus)
	assert.True(t, cfg.MetricsEnabled)
}

func TestLoadConfig_envOverridesFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	content := "DATABASE_DRIVER=sqlite\nAPI_LEGACY_STATUS=true\nHTTP_ADDR=:7000\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("CACHE_TTL", "30s")

	cfg, err := LoadConfig(envFile, nil)
	require.NoError(t, err)

	assert.Equal(t, DriverSqlite, cfg.DatabaseDriver)
	assert.True(t, cfg.LegacyStatus)
	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
}

func TestLoadConfig_missingEnvFileIsIgnored(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"), nil)
	assert.NoError(t, err)
}

func TestLoadConfig_flagsWin(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("http-addr", ":8080", "")
	flags.String("log-level", "info", "")
	require.NoError(t, flags.Parse([]string{"--http-addr=:6000"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, ":6000", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "mysql")
	_, err := LoadConfig("", nil)
	assert.Error(t, err)

	t.Setenv("DATABASE_DRIVER", DriverPostgres)
	t.Setenv("CACHE_BACKEND", "memcached")
	_, err = LoadConfig("", nil)
	assert.Error(t, err)

	t.Setenv("CACHE_BACKEND", CacheMemory)
	t.Setenv("RATE_LIMIT_RPS", "-1")
	_, err = LoadConfig("", nil)
	assert.Error(t, err)
}
