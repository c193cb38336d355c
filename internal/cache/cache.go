// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/fifthquarter/bandstand/internal/metrics"
)

const cleanupInterval = 5 * time.Minute

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is a thread-safe in-memory byte cache with per-entry TTL. It backs
// the anonymous recommendation cache and satisfies the discover package's
// Cache contract.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	name    string
	stats   Stats
	done    chan struct{}
	once    sync.Once
}

// Stats tracks cache performance counters.
type Stats struct {
	mu          sync.RWMutex
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// NewMemory creates an in-memory cache. The name labels this cache's
// Prometheus series. A background goroutine sweeps expired entries every
// five minutes until Close is called.
func NewMemory(name string) *Memory {
	m := &Memory{
		entries: make(map[string]entry),
		name:    name,
		stats:   Stats{LastCleanup: time.Now()},
		done:    make(chan struct{}),
	}

	go m.cleanupLoop()

	return m
}

// Get retrieves a value by key. Expired entries are removed and reported as
// misses. The error return is always nil; it exists to satisfy the cache
// contract shared with remote backends.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	e, exists := m.entries[key]
	m.mu.RUnlock()

	if !exists {
		m.recordMiss()
		return nil, false, nil
	}

	if time.Now().After(e.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		m.recordMiss()
		m.recordEvictions(1)
		return nil, false, nil
	}

	m.recordHit()
	return e.value, true, nil
}

// Set stores a value with the given TTL, overwriting any existing entry.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	m.entries[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
	total := int64(len(m.entries))
	m.mu.Unlock()

	m.stats.mu.Lock()
	m.stats.TotalKeys = total
	m.stats.mu.Unlock()
	metrics.CacheSize.WithLabelValues(m.name).Set(float64(total))

	return nil
}

// DeleteByPrefix removes every entry whose key starts with prefix. Used for
// invalidating all cached variants of one source video.
func (m *Memory) DeleteByPrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	evicted := int64(0)
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
			evicted++
		}
	}
	total := int64(len(m.entries))
	m.mu.Unlock()

	m.recordEvictions(evicted)
	m.stats.mu.Lock()
	m.stats.TotalKeys = total
	m.stats.mu.Unlock()

	return nil
}

// Clear removes all entries in a single map swap.
func (m *Memory) Clear() {
	m.mu.Lock()
	evicted := int64(len(m.entries))
	m.entries = make(map[string]entry)
	m.mu.Unlock()

	m.recordEvictions(evicted)
	m.stats.mu.Lock()
	m.stats.TotalKeys = 0
	m.stats.mu.Unlock()
	metrics.CacheSize.WithLabelValues(m.name).Set(0)
}

// Close stops the background cleanup goroutine. Safe to call twice.
func (m *Memory) Close() {
	m.once.Do(func() { close(m.done) })
}

// GetStats returns a snapshot of the cache counters.
func (m *Memory) GetStats() Stats {
	m.stats.mu.RLock()
	defer m.stats.mu.RUnlock()

	return Stats{
		Hits:        m.stats.Hits,
		Misses:      m.stats.Misses,
		Evictions:   m.stats.Evictions,
		TotalKeys:   m.stats.TotalKeys,
		LastCleanup: m.stats.LastCleanup,
	}
}

// HitRate returns the cache hit rate as a percentage.
func (m *Memory) HitRate() float64 {
	stats := m.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

func (m *Memory) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.cleanup()
		}
	}
}

func (m *Memory) cleanup() {
	now := time.Now()
	m.mu.Lock()
	evicted := int64(0)
	for key, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, key)
			evicted++
		}
	}
	total := int64(len(m.entries))
	m.mu.Unlock()

	m.stats.mu.Lock()
	m.stats.Evictions += evicted
	m.stats.TotalKeys = total
	m.stats.LastCleanup = now
	m.stats.mu.Unlock()

	metrics.CacheEvictions.WithLabelValues(m.name).Add(float64(evicted))
	metrics.CacheSize.WithLabelValues(m.name).Set(float64(total))
}

func (m *Memory) recordHit() {
	m.stats.mu.Lock()
	m.stats.Hits++
	m.stats.mu.Unlock()
	metrics.CacheHits.WithLabelValues(m.name).Inc()
}

func (m *Memory) recordMiss() {
	m.stats.mu.Lock()
	m.stats.Misses++
	m.stats.mu.Unlock()
	metrics.CacheMisses.WithLabelValues(m.name).Inc()
}

func (m *Memory) recordEvictions(n int64) {
	if n == 0 {
		return
	}
	m.stats.mu.Lock()
	m.stats.Evictions += n
	m.stats.mu.Unlock()
	metrics.CacheEvictions.WithLabelValues(m.name).Add(float64(n))
}
