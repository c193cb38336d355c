// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

// Package main is the entry point for the Bandstand server.
//
// Bandstand is a self-hosted discovery platform for marching band videos.
// It attributes uploads to canonical band organizations by matching titles
// and descriptions against generated name aliases, detects battle videos,
// and serves similarity-ranked recommendations with per-organization
// diversity caps.
//
// # Startup order
//
//  1. Configuration: koanf v2 layering (defaults, config.yaml, env vars)
//  2. Logging: zerolog, level and format from config
//  3. Database: embedded DuckDB, schema initialization, optional mock seed
//  4. Cache: in-memory TTL cache behind a circuit breaker (optional)
//  5. Recommendation engine and attribution batch runner
//  6. Supervisor tree: periodic attribution service + HTTP server
//
// # Signal handling
//
// SIGINT and SIGTERM trigger a graceful shutdown: the HTTP server drains
// connections, the attribution service stops at its next tick, and the
// database is checkpointed on close.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fifthquarter/bandstand/internal/api"
	"github.com/fifthquarter/bandstand/internal/attribution"
	"github.com/fifthquarter/bandstand/internal/cache"
	"github.com/fifthquarter/bandstand/internal/config"
	"github.com/fifthquarter/bandstand/internal/database"
	"github.com/fifthquarter/bandstand/internal/discover"
	"github.com/fifthquarter/bandstand/internal/logging"
	"github.com/fifthquarter/bandstand/internal/metrics"
	"github.com/fifthquarter/bandstand/internal/supervisor"
	"github.com/fifthquarter/bandstand/internal/supervisor/services"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	logging.Info().
		Str("version", version).
		Str("db_path", cfg.Database.Path).
		Bool("attribution_enabled", cfg.Attribution.Enabled).
		Msg("Starting Bandstand")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	if cfg.Database.SeedMockData {
		if err := db.SeedMockData(context.Background()); err != nil {
			logging.Error().Err(err).Msg("Failed to seed mock data")
			return
		}
	}

	// The recommendation cache is optional; a nil cache disables caching
	// in the engine and skips invalidation in the API.
	var engineCache discover.Cache
	var apiCache api.Cache
	if cfg.Cache.Enabled {
		memory := cache.NewMemory("recommendations")
		defer memory.Close()
		breaker := cache.NewBreaker(memory, "recommendations", logging.Logger())
		engineCache = breaker
		apiCache = breaker
	}

	engine, err := discover.NewEngine(&cfg.Discover, db, engineCache, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create recommendation engine")
	}

	runner := attribution.NewRunner(db, logging.Logger(), cfg.Attribution.WritesPerSecond)

	metrics.SetAppInfo(version, runtime.Version())
	stopUptime := metrics.StartUptimeCounter()
	defer stopUptime()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())

	if cfg.Attribution.Enabled {
		tree.AddJobService(services.NewAttributionService(runner, services.AttributionServiceConfig{
			Interval:     cfg.Attribution.Interval,
			RunOnStartup: true,
			Options: attribution.Options{
				DryRun:        cfg.Attribution.DryRun,
				MinConfidence: cfg.Attribution.MinConfidence,
				Limit:         cfg.Attribution.Limit,
			},
		}, logging.Logger()))
	}

	router := api.NewRouter(api.NewHandler(db, engine, runner, apiCache), &cfg.API)
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain the error channel until the supervisor fully stops.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Bandstand stopped gracefully")
}
