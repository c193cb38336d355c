// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 8470 {
		t.Errorf("Server.Port = %d, want 8470", cfg.Server.Port)
	}
	if cfg.Attribution.MinConfidence != 30 {
		t.Errorf("Attribution.MinConfidence = %d, want 30", cfg.Attribution.MinConfidence)
	}
	if cfg.Discover.DefaultLimit != 10 {
		t.Errorf("Discover.DefaultLimit = %d, want 10", cfg.Discover.DefaultLimit)
	}
	if cfg.Discover.CacheTTL != 6*time.Hour {
		t.Errorf("Discover.CacheTTL = %s, want 6h", cfg.Discover.CacheTTL)
	}
	if !cfg.Cache.Enabled {
		t.Error("Cache.Enabled = false, want true by default")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("ATTRIBUTION_MIN_CONFIDENCE", "50")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DISCOVER_MAX_PER_ORG", "3")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Attribution.MinConfidence != 50 {
		t.Errorf("Attribution.MinConfidence = %d, want 50", cfg.Attribution.MinConfidence)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Discover.MaxPerOrg != 3 {
		t.Errorf("Discover.MaxPerOrg = %d, want 3", cfg.Discover.MaxPerOrg)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 8888
attribution:
  min_confidence: 60
  writes_per_second: 10
discover:
  default_limit: 25
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 8888 {
		t.Errorf("Server.Port = %d, want 8888 from file", cfg.Server.Port)
	}
	if cfg.Attribution.MinConfidence != 60 {
		t.Errorf("Attribution.MinConfidence = %d, want 60 from file", cfg.Attribution.MinConfidence)
	}
	if cfg.Discover.DefaultLimit != 25 {
		t.Errorf("Discover.DefaultLimit = %d, want 25 from file", cfg.Discover.DefaultLimit)
	}
	// Untouched keys keep defaults.
	if cfg.Database.MaxMemory != "2GB" {
		t.Errorf("Database.MaxMemory = %q, want default 2GB", cfg.Database.MaxMemory)
	}
}

func TestEnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 8888\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("SERVER_PORT", "9999")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, env should override file", cfg.Server.Port)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
		{"min confidence above 100", func(c *Config) { c.Attribution.MinConfidence = 150 }},
		{"negative min confidence", func(c *Config) { c.Attribution.MinConfidence = -1 }},
		{"empty database path", func(c *Config) { c.Database.Path = "" }},
		{"unknown log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"unknown environment", func(c *Config) { c.Server.Environment = "staging" }},
		{"zero attribution interval while enabled", func(c *Config) { c.Attribution.Interval = 0 }},
		{"zero max per org", func(c *Config) { c.Discover.MaxPerOrg = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	if err := defaultConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestEnvTransformDropsUnknownKeys(t *testing.T) {
	if got := envTransformFunc("PATH"); got != "" {
		t.Errorf("envTransformFunc(PATH) = %q, want empty", got)
	}
	if got := envTransformFunc("SERVER_PORT"); got != "server.port" {
		t.Errorf("envTransformFunc(SERVER_PORT) = %q", got)
	}
}
