// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/bandstand/config.yaml",
	"/etc/bandstand/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "CONFIG_PATH"

// envMappings maps environment variable names (lowercased) to koanf paths.
// An explicit table avoids ambiguity between underscores that separate
// sections and underscores inside key names (e.g. min_confidence).
var envMappings = map[string]string{
	"server_host":        "server.host",
	"server_port":        "server.port",
	"server_timeout":     "server.timeout",
	"server_environment": "server.environment",

	"database_path":           "database.path",
	"database_max_memory":     "database.max_memory",
	"database_threads":        "database.threads",
	"database_seed_mock_data": "database.seed_mock_data",
	"database_preserve_order": "database.preserve_insertion_order",

	"log_level":  "logging.level",
	"log_format": "logging.format",

	"attribution_enabled":           "attribution.enabled",
	"attribution_interval":          "attribution.interval",
	"attribution_min_confidence":    "attribution.min_confidence",
	"attribution_limit":             "attribution.limit",
	"attribution_dry_run":           "attribution.dry_run",
	"attribution_writes_per_second": "attribution.writes_per_second",

	"discover_default_limit": "discover.default_limit",
	"discover_max_limit":     "discover.max_limit",
	"discover_max_per_org":   "discover.max_per_org",
	"discover_pool_factor":   "discover.pool_factor",
	"discover_section_count": "discover.section_count",
	"discover_section_size":  "discover.section_size",
	"discover_cache_ttl":     "discover.cache_ttl",

	"cache_enabled": "cache.enabled",

	"api_rate_limit_requests": "api.rate_limit_requests",
	"api_rate_limit_window":   "api.rate_limit_window",
	"api_rate_limit_disabled": "api.rate_limit_disabled",
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in sensible defaults
//  2. Config File: optional YAML config file (if it exists)
//  3. Environment Variables: override any setting
//
// Precedence is ENV > File > Defaults.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the path of the first config file found, or empty
// string if none exists.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envTransformFunc maps an environment variable name to a koanf path.
// Unknown variables are dropped so unrelated environment noise cannot
// override configuration.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
