// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

package config

import (
	"fmt"
	"time"

	"github.com/fifthquarter/bandstand/internal/discover"
	"github.com/fifthquarter/bandstand/internal/validation"
)

// Config is the complete application configuration, populated by
// LoadWithKoanf from defaults, an optional YAML file, and environment
// variables.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Database    DatabaseConfig    `koanf:"database"`
	Logging     LoggingConfig     `koanf:"logging"`
	Attribution AttributionConfig `koanf:"attribution"`
	Discover    discover.Config   `koanf:"discover"`
	Cache       CacheConfig       `koanf:"cache"`
	API         APIConfig         `koanf:"api"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment" validate:"oneof=development production"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path                   string `koanf:"path" validate:"required"`
	MaxMemory              string `koanf:"max_memory"`
	Threads                int    `koanf:"threads" validate:"min=0"`
	PreserveInsertionOrder bool   `koanf:"preserve_insertion_order"`
	SeedMockData           bool   `koanf:"seed_mock_data"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// AttributionConfig holds settings for the periodic attribution batch
// service.
type AttributionConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Interval        time.Duration `koanf:"interval"`
	MinConfidence   int           `koanf:"min_confidence" validate:"min=0,max=100"`
	Limit           int           `koanf:"limit" validate:"min=0"`
	DryRun          bool          `koanf:"dry_run"`
	WritesPerSecond float64       `koanf:"writes_per_second" validate:"min=0"`
}

// CacheConfig holds recommendation cache settings.
type CacheConfig struct {
	Enabled bool `koanf:"enabled"`
}

// APIConfig holds API behavior settings.
type APIConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_requests" validate:"min=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by the config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8470,
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Database: DatabaseConfig{
			Path:                   "/data/bandstand.duckdb",
			MaxMemory:              "2GB",
			Threads:                0, // 0 = use runtime.NumCPU()
			PreserveInsertionOrder: true,
			SeedMockData:           false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Attribution: AttributionConfig{
			Enabled:         true,
			Interval:        15 * time.Minute,
			MinConfidence:   30,
			Limit:           0, // 0 = process all unattributed videos
			DryRun:          false,
			WritesPerSecond: 50,
		},
		Discover: *discover.DefaultConfig(),
		Cache: CacheConfig{
			Enabled: true,
		},
		API: APIConfig{
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
	}
}

// Validate checks the configuration for invalid combinations. Field-level
// constraints are enforced with go-playground/validator tags; cross-field
// rules are checked by hand.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return fmt.Errorf("invalid configuration: %w", verr)
	}

	if err := c.Discover.Validate(); err != nil {
		return fmt.Errorf("invalid discover configuration: %w", err)
	}

	if c.Attribution.Enabled && c.Attribution.Interval <= 0 {
		return fmt.Errorf("attribution.interval must be positive when attribution is enabled, got %s", c.Attribution.Interval)
	}

	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}

	if !c.API.RateLimitDisabled && c.API.RateLimitWindow <= 0 {
		return fmt.Errorf("api.rate_limit_window must be positive, got %s", c.API.RateLimitWindow)
	}

	return nil
}
