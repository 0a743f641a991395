package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"port": 9090,
		"database_url": "postgres://localhost/tracker",
		"duplicate_threshold": 0.9,
		"stats_window_days": 60,
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "postgres://localhost/tracker", cfg.DatabaseURL)
	assert.Equal(t, 0.9, cfg.DuplicateThreshold)
	assert.Equal(t, 60, cfg.StatsWindowDays)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	content := `{ invalid json }`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestApplyEnv_OverridesFileValues(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env-host/tracker")
	t.Setenv("PORT", "7070")
	t.Setenv("DUPLICATE_THRESHOLD", "0.75")

	cfg := Config{Port: 8080, DatabaseURL: "postgres://file-host/tracker"}
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, "postgres://env-host/tracker", cfg.DatabaseURL)
	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, 0.75, cfg.DuplicateThreshold)
}

func TestApplyEnv_InvalidPort(t *testing.T) {
	t.Setenv("PORT", "not-a-port")

	cfg := Config{}
	err := cfg.ApplyEnv()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid PORT")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"defaults are valid", Default(), ""},
		{"threshold above one", Config{DuplicateThreshold: 1.5}, "duplicate_threshold"},
		{"negative threshold", Config{DuplicateThreshold: -0.1}, "duplicate_threshold"},
		{"port out of range", Config{Port: 70000}, "port"},
		{"negative window", Config{StatsWindowDays: -1}, "stats_window_days"},
		{"negative workers", Config{IntakeWorkers: -2}, "intake_workers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{Port: 9090, DatabaseURL: "postgres://localhost/tracker"}

	merged := cfg.MergeWithDefaults(Default())

	assert.Equal(t, 9090, merged.Port)
	assert.Equal(t, "postgres://localhost/tracker", merged.DatabaseURL)
	assert.Equal(t, 0.85, merged.DuplicateThreshold)
	assert.Equal(t, 30, merged.StatsWindowDays)
	assert.Equal(t, 5, merged.TopCompanies)
	assert.Equal(t, 4, merged.IntakeWorkers)
}
