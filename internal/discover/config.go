// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

package discover

import (
	"fmt"
	"time"
)

// Config contains recommendation engine parameters.
type Config struct {
	// DefaultLimit is the result count when a request does not specify one.
	DefaultLimit int `json:"default_limit" koanf:"default_limit"`

	// MaxLimit caps the requested result count.
	MaxLimit int `json:"max_limit" koanf:"max_limit"`

	// MaxPerOrg caps results per organization in the main list.
	MaxPerOrg int `json:"max_per_org" koanf:"max_per_org"`

	// PoolFactor sizes the candidate-pool fetch as limit * PoolFactor.
	PoolFactor int `json:"pool_factor" koanf:"pool_factor"`

	// SectionCount is the maximum number of "because you watched" sections.
	SectionCount int `json:"section_count" koanf:"section_count"`

	// SectionSize is the item count per section. Sections always use a
	// per-organization cap of one.
	SectionSize int `json:"section_size" koanf:"section_size"`

	// CacheTTL is how long anonymous responses stay cached.
	CacheTTL time.Duration `json:"cache_ttl" koanf:"cache_ttl"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() *Config {
	return &Config{
		DefaultLimit: 10,
		MaxLimit:     50,
		MaxPerOrg:    2,
		PoolFactor:   5,
		SectionCount: 5,
		SectionSize:  6,
		CacheTTL:     6 * time.Hour,
	}
}

// Validate checks config invariants.
func (c *Config) Validate() error {
	if c.DefaultLimit <= 0 {
		return fmt.Errorf("default limit must be positive, got %d", c.DefaultLimit)
	}
	if c.MaxLimit < c.DefaultLimit {
		return fmt.Errorf("max limit %d below default limit %d", c.MaxLimit, c.DefaultLimit)
	}
	if c.MaxPerOrg <= 0 {
		return fmt.Errorf("max per org must be positive, got %d", c.MaxPerOrg)
	}
	if c.PoolFactor <= 0 {
		return fmt.Errorf("pool factor must be positive, got %d", c.PoolFactor)
	}
	if c.SectionCount < 0 || c.SectionSize < 0 {
		return fmt.Errorf("section parameters must be non-negative")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache TTL must be non-negative, got %s", c.CacheTTL)
	}
	return nil
}
