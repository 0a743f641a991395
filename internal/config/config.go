// Package config provides configuration loading and validation for the
// tracker service.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config represents the service configuration. Values can come from a JSON
// file, environment variables, or CLI flags; later sources win.
type Config struct {
	// Server
	Port int `json:"port,omitempty"` // HTTP listen port

	// Storage
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL

	// Engine
	DuplicateThreshold float64 `json:"duplicate_threshold,omitempty"` // Similarity score at or above which a candidate is a duplicate (0.0-1.0)
	StatsWindowDays    int     `json:"stats_window_days,omitempty"`   // Default statistics window in days
	TopCompanies       int     `json:"top_companies,omitempty"`       // Number of companies in the statistics ranking
	IntakeWorkers      int     `json:"intake_workers,omitempty"`      // Bulk-creation worker pool size

	Verbose bool `json:"verbose,omitempty"` // Print detailed debug information
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:               8080,
		DuplicateThreshold: 0.85,
		StatsWindowDays:    30,
		TopCompanies:       5,
		IntakeWorkers:      4,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv overlays environment variables onto the config. Set variables
// win over file values.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config error: invalid PORT %q: %w", v, err)
		}
		c.Port = port
	}
	if v := os.Getenv("DUPLICATE_THRESHOLD"); v != "" {
		threshold, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config error: invalid DUPLICATE_THRESHOLD %q: %w", v, err)
		}
		c.DuplicateThreshold = threshold
	}
	return nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.DuplicateThreshold < 0 || c.DuplicateThreshold > 1 {
		return fmt.Errorf("config error: 'duplicate_threshold' must be between 0.0 and 1.0")
	}
	if c.StatsWindowDays < 0 {
		return fmt.Errorf("config error: 'stats_window_days' must be non-negative")
	}
	if c.TopCompanies < 0 {
		return fmt.Errorf("config error: 'top_companies' must be non-negative")
	}
	if c.IntakeWorkers < 0 {
		return fmt.Errorf("config error: 'intake_workers' must be non-negative")
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled from
// defaults. Bool fields are not merged; CLI flags always win for those.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.DuplicateThreshold == 0 {
		result.DuplicateThreshold = defaults.DuplicateThreshold
	}
	if result.StatsWindowDays == 0 {
		result.StatsWindowDays = defaults.StatsWindowDays
	}
	if result.TopCompanies == 0 {
		result.TopCompanies = defaults.TopCompanies
	}
	if result.IntakeWorkers == 0 {
		result.IntakeWorkers = defaults.IntakeWorkers
	}

	return result
}
