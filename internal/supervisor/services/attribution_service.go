// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/fifthquarter/bandstand/internal/attribution"
	"github.com/fifthquarter/bandstand/internal/metrics"
)

// AttributionRunner is the batch runner the service drives. Defined here so
// the service can be tested without a store.
type AttributionRunner interface {
	Run(ctx context.Context, opts attribution.Options) (attribution.Result, error)
}

// AttributionServiceConfig controls the periodic attribution service.
type AttributionServiceConfig struct {
	// Interval is the time between batch runs.
	Interval time.Duration

	// RunOnStartup triggers a run as soon as the service starts.
	RunOnStartup bool

	// Options are passed to every run.
	Options attribution.Options
}

// AttributionService runs the attribution batch on a fixed interval. Run
// failures are logged and retried on the next tick; they never crash the
// service.
type AttributionService struct {
	runner AttributionRunner
	config AttributionServiceConfig
	logger zerolog.Logger
	name   string
}

// NewAttributionService creates the periodic attribution service.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewAttributionService(runner AttributionRunner, cfg AttributionServiceConfig, logger zerolog.Logger) *AttributionService {
	return &AttributionService{
		runner: runner,
		config: cfg,
		logger: logger.With().Str("service", "attribution").Logger(),
		name:   "attribution-service",
	}
}

// Serve implements suture.Service.
func (s *AttributionService) Serve(ctx context.Context) error {
	interval := s.config.Interval
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	s.logger.Info().
		Dur("interval", interval).
		Bool("run_on_startup", s.config.RunOnStartup).
		Msg("attribution service starting")

	if s.config.RunOnStartup {
		s.runOnce(ctx)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("attribution service shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// runOnce executes one batch and records its metrics.
func (s *AttributionService) runOnce(ctx context.Context) {
	start := time.Now()

	result, err := s.runner.Run(ctx, s.config.Options)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error().Err(err).Msg("attribution run failed")
		}
		return
	}

	metrics.RecordAttributionRun(time.Since(start),
		result.Processed, result.Attributed, result.Battles,
		result.NoMatch, result.Skipped, result.Failed)
}

// String identifies the service in supervision logs.
func (s *AttributionService) String() string {
	return s.name
}
