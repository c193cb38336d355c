// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - Database query performance (DuckDB)
// - API endpoint latency and throughput
// - Attribution batch runs
// - Recommendation engine latency and cache efficiency
// - Circuit breaker state

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	DBConnectionPoolSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "duckdb_connection_pool_size",
			Help: "Current number of database connections in use",
		},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_rate_limit_hits_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
		[]string{"endpoint"},
	)

	// Attribution Metrics
	AttributionRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "attribution_run_duration_seconds",
			Help:    "Duration of attribution batch runs in seconds",
			Buckets: []float64{.1, .5, 1, 5, 10, 30, 60, 300},
		},
	)

	AttributionVideosProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "attribution_videos_processed_total",
			Help: "Total number of videos examined by attribution runs",
		},
	)

	AttributionOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attribution_outcomes_total",
			Help: "Attribution outcomes by type",
		},
		[]string{"outcome"}, // "attributed", "no_match", "skipped", "failed"
	)

	AttributionBattles = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "attribution_battles_total",
			Help: "Total number of battle videos detected with an opponent recorded",
		},
	)

	AttributionLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "attribution_last_success_timestamp_seconds",
			Help: "Unix timestamp of the last successful attribution run",
		},
	)

	// Recommendation Metrics
	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_requests_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"viewer_type"}, // "anonymous", "identified"
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "Recommendation computation latency in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
	)

	RecommendationFallbackItems = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_fallback_items_total",
			Help: "Total number of popularity-fallback items served",
		},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of cache entries",
		},
		[]string{"cache"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions",
		},
		[]string{"cache"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Circuit breaker request outcomes",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Application Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bandstand_info",
			Help: "Application version information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bandstand_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordAttributionRun records the aggregate outcome of one attribution
// batch run.
func RecordAttributionRun(duration time.Duration, processed, attributed, battles, noMatch, skipped, failed int) {
	AttributionRunDuration.Observe(duration.Seconds())
	AttributionVideosProcessed.Add(float64(processed))
	AttributionOutcomes.WithLabelValues("attributed").Add(float64(attributed))
	AttributionOutcomes.WithLabelValues("no_match").Add(float64(noMatch))
	AttributionOutcomes.WithLabelValues("skipped").Add(float64(skipped))
	AttributionOutcomes.WithLabelValues("failed").Add(float64(failed))
	AttributionBattles.Add(float64(battles))
	if failed == 0 {
		AttributionLastSuccess.Set(float64(time.Now().Unix()))
	}
}

// RecordRecommendation records one recommendation request.
func RecordRecommendation(anonymous bool, duration time.Duration, fallbackItems int) {
	viewerType := "identified"
	if anonymous {
		viewerType = "anonymous"
	}
	RecommendationRequests.WithLabelValues(viewerType).Inc()
	RecommendationDuration.Observe(duration.Seconds())
	RecommendationFallbackItems.Add(float64(fallbackItems))
}

// SetAppInfo sets the application info metric
func SetAppInfo(version, goVersion string) {
	AppInfo.WithLabelValues(version, goVersion).Set(1)
}

// StartUptimeCounter starts updating the uptime gauge once per second until
// the returned stop function is called.
func StartUptimeCounter() func() {
	start := time.Now()
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				AppUptime.Set(time.Since(start).Seconds())
			}
		}
	}()

	return func() { close(done) }
}
