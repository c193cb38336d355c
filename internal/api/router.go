// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fifthquarter/bandstand/internal/config"
)

// Router wires handlers and middleware into the HTTP surface.
type Router struct {
	handler *Handler
	cfg     *config.APIConfig
}

// NewRouter creates the router.
func NewRouter(handler *Handler, cfg *config.APIConfig) *Router {
	return &Router{
		handler: handler,
		cfg:     cfg,
	}
}

// Setup builds the chi handler tree.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order.
	r.Use(RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(RequestLogger)

	// Health endpoints stay outside the rate limiter so monitoring probes
	// are never rejected.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(RateLimit(router.cfg))
		r.Use(PrometheusMetrics)

		r.Get("/organizations", router.handler.Organizations)

		r.Route("/videos/{id}", func(r chi.Router) {
			r.Get("/", router.handler.GetVideo)
			r.Get("/recommendations", router.handler.Recommendations)
			r.Get("/attribution", router.handler.GetAttribution)
			r.Post("/watch", router.handler.RecordWatch)
		})

		r.Route("/attribution", func(r chi.Router) {
			r.Post("/run", router.handler.RunAttribution)
			r.Post("/reset", router.handler.ResetAttributions)
		})
	})

	// Prometheus scrape endpoint, unwrapped.
	r.Handle("/metrics", promhttp.Handler())

	return r
}
