// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"
	"github.com/google/uuid"

	"github.com/fifthquarter/bandstand/internal/config"
	"github.com/fifthquarter/bandstand/internal/logging"
	"github.com/fifthquarter/bandstand/internal/metrics"
)

// RequestID assigns each request an ID, honoring one supplied by an upstream
// proxy, and threads it through the response header and logging context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		w.Header().Set("X-Request-ID", requestID)
		ctx := logging.ContextWithRequestID(r.Context(), requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestLogger writes one structured access-log line per request.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &statusResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		logging.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapper.statusCode).
			Dur("duration", time.Since(start)).
			Str("request_id", logging.RequestIDFromContext(r.Context())).
			Msg("HTTP request")
	})
}

// PrometheusMetrics instruments every request with latency, status, and
// in-flight gauges.
func PrometheusMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		start := time.Now()
		wrapper := &statusResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		metrics.RecordAPIRequest(
			r.Method,
			r.URL.Path,
			strconv.Itoa(wrapper.statusCode),
			time.Since(start),
		)
	})
}

// RateLimit builds an IP-keyed rate limiter from config. Rejections are
// counted per endpoint and returned in the standard error envelope.
func RateLimit(cfg *config.APIConfig) func(http.Handler) http.Handler {
	if cfg.RateLimitDisabled {
		return func(next http.Handler) http.Handler { return next }
	}

	return httprate.Limit(
		cfg.RateLimitReqs,
		cfg.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			metrics.APIRateLimitHits.WithLabelValues(r.URL.Path).Inc()
			NewResponseWriter(w, r).Error(
				http.StatusTooManyRequests, ErrCodeTooManyRequests, "Rate limit exceeded")
		}),
	)
}

// statusResponseWriter captures the status code for logging and metrics.
type statusResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusResponseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}
