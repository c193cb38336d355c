// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

/*
Package cache provides thread-safe in-memory caching with TTL support.

The cache backs the anonymous recommendation path, keeping hot source videos
from recomputing the scoring pipeline on every request. Values are opaque
byte slices (serialized responses), so the same contract can be served by a
remote backend later without touching callers.

# Overview

The package provides:
  - Memory: a concurrent map with per-entry TTL, lazy expiration on Get,
    and a five-minute background sweep
  - Breaker: a circuit breaker wrapper (sony/gobreaker) so a failing cache
    backend degrades to recomputation instead of slowing requests
  - Hit/miss/eviction counters, exported both as a Stats snapshot and as
    Prometheus series labelled by cache name

# Usage

	backend := cache.NewMemory("recommendations")
	defer backend.Close()
	c := cache.NewBreaker(backend, "recommendations", logger)

	if value, ok, err := c.Get(ctx, key); err == nil && ok {
	    // serve cached bytes
	}

Callers must treat every cache error as a miss; the cache is an optimization,
never the source of truth.
*/
package cache
