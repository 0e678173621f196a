package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "checkout", cfg.AppName)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "./data/checkout.db", cfg.Storage.SQLitePath)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Redis.CacheTTL)
	assert.Equal(t, 30*time.Second, cfg.Buffer.SyncInterval)
	assert.Equal(t, 3, cfg.Buffer.MaxRetry)
	assert.Equal(t, 15*time.Second, cfg.Context.ShutdownTimeout)
	assert.Equal(t, "postgres://checkout:@localhost:5432/checkout?sslmode=disable", cfg.Database.URL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/shop")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("LOG_ENCODING", "console")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "postgres://u:p@db:5432/shop", cfg.Database.URL)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 90*time.Second, cfg.Redis.CacheTTL)
	assert.Equal(t, "console", cfg.Logger.Encoding)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{"unknown driver", "STORAGE_DRIVER", "mongo", "unknown STORAGE_DRIVER"},
		{"bad duration", "SYNC_INTERVAL", "soon", "parse env:"},
		{"zero interval", "SYNC_INTERVAL", "0s", "SYNC_INTERVAL"},
		{"negative retry", "MAX_RETRY_ATTEMPTS", "-1", "MAX_RETRY_ATTEMPTS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.want), err.Error())
		})
	}
}

func TestMustLoad_Panics(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "mongo")
	assert.Panics(t, func() { MustLoad() })
}
