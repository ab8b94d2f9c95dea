package config

import (
	"testing"
	"time"

	"dataviz/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"PORT", "GIN_MODE", "DB_DRIVER", "DATABASE_URL", "SQLITE_PATH", "UPLOAD_DIR",
		"MAX_UPLOAD_MB", "MAX_CONCURRENT_UPLOADS", "SESSION_TTL", "SESSION_COOKIE",
		"BLANK_POLICY", "LOG_LEVEL", "LOG_FORMAT", "PPROF_ENABLED", "PPROF_PORT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "dataviz.db", cfg.Database.DSN())
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, int64(50<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, int64(4), cfg.Server.MaxConcurrentUploads)
	assert.Equal(t, "./media", cfg.Storage.UploadDir)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "dataviz_session", cfg.Session.CookieName)
	assert.Equal(t, "zero", cfg.Data.BlankPolicy)
	assert.False(t, cfg.Profiling.Enabled)
}

func TestLoadInfersPostgres(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/dataviz?sslmode=disable")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "postgres://u:p@localhost/dataviz?sslmode=disable", cfg.Database.DSN())
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SQLITE_PATH", ":memory:")
	t.Setenv("MAX_UPLOAD_MB", "2")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("BLANK_POLICY", "missing")
	t.Setenv("PPROF_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":memory:", cfg.Database.DSN())
	assert.Equal(t, int64(2<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, "missing", cfg.Data.BlankPolicy)
	assert.True(t, cfg.Profiling.Enabled)
}

func TestLoadRejectsBadSettings(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"DB_DRIVER": "oracle"}},
		{"postgres without url", map[string]string{"DB_DRIVER": "postgres"}},
		{"zero uploads", map[string]string{"MAX_CONCURRENT_UPLOADS": "0"}},
		{"negative ttl", map[string]string{"SESSION_TTL": "-1h"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}
