// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestRecordDBQuery tests database query metric recording
func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		table     string
		duration  time.Duration
		err       error
	}{
		{
			name:      "successful SELECT query",
			operation: "SELECT",
			table:     "videos",
			duration:  10 * time.Millisecond,
			err:       nil,
		},
		{
			name:      "successful UPDATE query",
			operation: "UPDATE",
			table:     "videos",
			duration:  5 * time.Millisecond,
			err:       nil,
		},
		{
			name:      "failed query with short error",
			operation: "SELECT",
			table:     "organizations",
			duration:  100 * time.Millisecond,
			err:       errors.New("connection refused"),
		},
		{
			name:      "failed query with long error truncated to 50 chars",
			operation: "INSERT",
			table:     "watch_history",
			duration:  50 * time.Millisecond,
			err:       errors.New("this is a very long error message that exceeds fifty characters and should be truncated"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.CollectAndCount(DBQueryDuration)
			RecordDBQuery(tt.operation, tt.table, tt.duration, tt.err)
			after := testutil.CollectAndCount(DBQueryDuration)
			if after < before {
				t.Errorf("histogram series count decreased: %d -> %d", before, after)
			}

			if tt.err != nil {
				errorType := tt.err.Error()
				if len(errorType) > 50 {
					errorType = errorType[:50]
				}
				got := testutil.ToFloat64(DBQueryErrors.WithLabelValues(tt.operation, tt.table, errorType))
				if got < 1 {
					t.Errorf("DBQueryErrors[%s,%s,%s] = %v, want >= 1", tt.operation, tt.table, errorType, got)
				}
			}
		})
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/videos/{id}/recommendations", "200"))

	RecordAPIRequest("GET", "/api/v1/videos/{id}/recommendations", "200", 15*time.Millisecond)

	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/videos/{id}/recommendations", "200"))
	if after != before+1 {
		t.Errorf("APIRequestsTotal = %v, want %v", after, before+1)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	base := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != base+1 {
		t.Errorf("after increment: %v, want %v", got, base+1)
	}

	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != base {
		t.Errorf("after decrement: %v, want %v", got, base)
	}
}

func TestRecordAttributionRun(t *testing.T) {
	attributedBefore := testutil.ToFloat64(AttributionOutcomes.WithLabelValues("attributed"))
	battlesBefore := testutil.ToFloat64(AttributionBattles)

	RecordAttributionRun(2*time.Second, 100, 40, 3, 50, 8, 2)

	if got := testutil.ToFloat64(AttributionOutcomes.WithLabelValues("attributed")); got != attributedBefore+40 {
		t.Errorf("attributed outcomes = %v, want %v", got, attributedBefore+40)
	}
	if got := testutil.ToFloat64(AttributionBattles); got != battlesBefore+3 {
		t.Errorf("battles = %v, want %v", got, battlesBefore+3)
	}
}

func TestRecordAttributionRunLastSuccess(t *testing.T) {
	// A run with failures must not move the last-success timestamp.
	RecordAttributionRun(time.Second, 10, 5, 0, 5, 0, 0)
	clean := testutil.ToFloat64(AttributionLastSuccess)
	if clean == 0 {
		t.Fatal("clean run did not set last success timestamp")
	}

	AttributionLastSuccess.Set(clean - 100)
	RecordAttributionRun(time.Second, 10, 5, 0, 4, 0, 1)
	if got := testutil.ToFloat64(AttributionLastSuccess); got != clean-100 {
		t.Errorf("failed run moved last success timestamp to %v", got)
	}
}

func TestRecordRecommendation(t *testing.T) {
	anonBefore := testutil.ToFloat64(RecommendationRequests.WithLabelValues("anonymous"))
	identBefore := testutil.ToFloat64(RecommendationRequests.WithLabelValues("identified"))
	fallbackBefore := testutil.ToFloat64(RecommendationFallbackItems)

	RecordRecommendation(true, 5*time.Millisecond, 2)
	RecordRecommendation(false, 8*time.Millisecond, 0)

	if got := testutil.ToFloat64(RecommendationRequests.WithLabelValues("anonymous")); got != anonBefore+1 {
		t.Errorf("anonymous requests = %v, want %v", got, anonBefore+1)
	}
	if got := testutil.ToFloat64(RecommendationRequests.WithLabelValues("identified")); got != identBefore+1 {
		t.Errorf("identified requests = %v, want %v", got, identBefore+1)
	}
	if got := testutil.ToFloat64(RecommendationFallbackItems); got != fallbackBefore+2 {
		t.Errorf("fallback items = %v, want %v", got, fallbackBefore+2)
	}
}

func TestSetAppInfo(t *testing.T) {
	SetAppInfo("test-version", "go1.25")
	if got := testutil.ToFloat64(AppInfo.WithLabelValues("test-version", "go1.25")); got != 1 {
		t.Errorf("AppInfo = %v, want 1", got)
	}
}

func TestMetricNamesAreConventional(t *testing.T) {
	// Counters end in _total per Prometheus naming conventions.
	counters := map[string]string{
		"http_requests_total":                 "APIRequestsTotal",
		"attribution_outcomes_total":          "AttributionOutcomes",
		"cache_hits_total":                    "CacheHits",
		"circuit_breaker_requests_total":      "CircuitBreakerRequests",
		"recommendation_requests_total":       "RecommendationRequests",
		"recommendation_fallback_items_total": "RecommendationFallbackItems",
	}
	for name, ident := range counters {
		if !strings.HasSuffix(name, "_total") {
			t.Errorf("%s (%s) does not follow the _total counter convention", name, ident)
		}
	}
}
