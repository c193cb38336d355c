// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fifthquarter/bandstand/internal/attribution"
	"github.com/fifthquarter/bandstand/internal/logging"
)

type countingRunner struct {
	mu       sync.Mutex
	runs     int
	lastOpts attribution.Options
	err      error
}

func (r *countingRunner) Run(_ context.Context, opts attribution.Options) (attribution.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs++
	r.lastOpts = opts
	if r.err != nil {
		return attribution.Result{}, r.err
	}
	return attribution.Result{Processed: 1, Attributed: 1}, nil
}

func (r *countingRunner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs
}

func TestAttributionServicePeriodicRuns(t *testing.T) {
	runner := &countingRunner{}
	svc := NewAttributionService(runner, AttributionServiceConfig{
		Interval:     10 * time.Millisecond,
		RunOnStartup: true,
		Options:      attribution.Options{MinConfidence: 40},
	}, logging.Logger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- svc.Serve(ctx)
	}()

	deadline := time.After(2 * time.Second)
	for runner.count() < 3 {
		select {
		case <-deadline:
			t.Fatalf("Expected at least 3 runs, got %d", runner.count())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}

	runner.mu.Lock()
	defer runner.mu.Unlock()
	if runner.lastOpts.MinConfidence != 40 {
		t.Errorf("Expected configured options to reach the runner, got %+v", runner.lastOpts)
	}
}

func TestAttributionServiceSurvivesRunErrors(t *testing.T) {
	runner := &countingRunner{err: errors.New("database locked")}
	svc := NewAttributionService(runner, AttributionServiceConfig{
		Interval: 10 * time.Millisecond,
	}, logging.Logger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- svc.Serve(ctx)
	}()

	deadline := time.After(2 * time.Second)
	for runner.count() < 2 {
		select {
		case <-deadline:
			t.Fatalf("Expected retries after failures, got %d runs", runner.count())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done
}

func TestAttributionServiceName(t *testing.T) {
	svc := NewAttributionService(&countingRunner{}, AttributionServiceConfig{}, logging.Logger())
	if svc.String() != "attribution-service" {
		t.Errorf("Unexpected service name %q", svc.String())
	}
}
