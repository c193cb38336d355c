// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

/*
Package metrics provides Prometheus metrics collection and export.

The package exposes instrumentation for:
  - HTTP request latency and throughput
  - Database query performance (DuckDB)
  - Attribution batch run outcomes
  - Recommendation engine latency and fallback usage
  - Cache hit/miss rates and circuit breaker state

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8470/metrics

All metrics are registered with the default Prometheus registry via promauto
at package initialization, so importing the package is sufficient to make
them available. Helper functions (RecordDBQuery, RecordAPIRequest,
RecordAttributionRun, RecordRecommendation) bundle the per-event label
bookkeeping so call sites stay one line.
*/
package metrics
