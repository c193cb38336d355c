// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

package cache

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/fifthquarter/bandstand/internal/metrics"
)

// Backend is the byte cache contract the breaker wraps. *Memory satisfies
// it, as would any remote cache client.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

const (
	breakerMaxHalfOpenRequests = 3
	breakerInterval            = time.Minute
	breakerTimeout             = 30 * time.Second
	breakerTripFailures        = 5
)

type lookup struct {
	value []byte
	ok    bool
}

// Breaker wraps a cache backend with circuit breaker protection so that a
// failing backend cannot slow down request handling. Callers treat breaker
// errors the same as any cache error: recompute from the store of record.
//
// DETERMINISM NOTE: the breaker uses real time (via sony/gobreaker) for its
// interval and timeout calculations. The timing determines when to recover
// from failures, not data integrity; unit tests should exercise the wrapped
// backend directly rather than wait out breaker timeouts.
type Breaker struct {
	backend Backend
	cb      *gobreaker.CircuitBreaker[lookup]
	name    string
}

// NewBreaker wraps backend in a circuit breaker. The breaker opens after
// five consecutive failures and probes recovery after thirty seconds.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewBreaker(backend Backend, name string, logger zerolog.Logger) *Breaker {
	log := logger.With().Str("component", "cache-breaker").Str("breaker", name).Logger()

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[lookup](gobreaker.Settings{
		Name:        name,
		MaxRequests: breakerMaxHalfOpenRequests,
		Interval:    breakerInterval,
		Timeout:     breakerTimeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= breakerTripFailures
			if trip {
				log.Warn().
					Uint32("consecutive_failures", counts.ConsecutiveFailures).
					Msg("opening cache circuit")
			}
			return trip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)
			log.Info().Str("from", fromStr).Str("to", toStr).Msg("cache circuit state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &Breaker{backend: backend, cb: cb, name: name}
}

// Get retrieves a value through the breaker.
func (b *Breaker) Get(ctx context.Context, key string) ([]byte, bool, error) {
	result, err := b.execute(func() (lookup, error) {
		value, ok, err := b.backend.Get(ctx, key)
		return lookup{value: value, ok: ok}, err
	})
	if err != nil {
		return nil, false, err
	}
	return result.value, result.ok, nil
}

// Set stores a value through the breaker.
func (b *Breaker) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := b.execute(func() (lookup, error) {
		return lookup{}, b.backend.Set(ctx, key, value, ttl)
	})
	return err
}

// DeleteByPrefix removes entries through the breaker.
func (b *Breaker) DeleteByPrefix(ctx context.Context, prefix string) error {
	_, err := b.execute(func() (lookup, error) {
		return lookup{}, b.backend.DeleteByPrefix(ctx, prefix)
	})
	return err
}

func (b *Breaker) execute(fn func() (lookup, error)) (lookup, error) {
	result, err := b.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		}
		return lookup{}, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	return result, nil
}

// State reports the current breaker state for health checks.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
