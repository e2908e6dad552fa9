package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 16, cfg.Server.BodyLimitMB)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "reconciler", cfg.Storage.Bucket)
	assert.Equal(t, "records", cfg.Storage.RecordsPrefix)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 0.80, cfg.Matching.Thresholds.Match)
	assert.Equal(t, 10.0, cfg.Matching.Thresholds.AmountDecayDivisor)
	assert.Equal(t, "id", cfg.Matching.IDField)
	assert.Equal(t, 1, cfg.Matching.Workers)
	assert.Equal(t, "memory", cfg.Lock.Backend)
	assert.Equal(t, 60, cfg.Cache.TTLSeconds)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("MATCHING_THRESHOLDS_MATCH", "0.9")
	t.Setenv("MATCHING_WORKERS", "4")
	t.Setenv("LOCK_BACKEND", "redis")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 0.9, cfg.Matching.Thresholds.Match)
	assert.Equal(t, 4, cfg.Matching.Workers)
	assert.Equal(t, "redis", cfg.Lock.Backend)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	// Registered so the values written by the .env file are restored afterwards.
	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("DATABASE_NAME", "")

	dir := t.TempDir()
	content := "DATABASE_DRIVER=sqlite\nDATABASE_NAME=reconciler.db\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "reconciler.db", cfg.Database.Name)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		expectErr string
	}{
		{"Match threshold", func(c *Config) { c.Matching.Thresholds.Match = 1.5 }, "matching"},
		{"Negative workers", func(c *Config) { c.Matching.Workers = -1 }, "workers"},
		{"Lock backend", func(c *Config) { c.Lock.Backend = "etcd" }, "unknown backend"},
		{"Database driver", func(c *Config) { c.Database.Driver = "postgres" }, "unsupported driver"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(t.TempDir())
			require.NoError(t, err)

			tt.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectErr)
		})
	}
}
