// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

package cache

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestMemorySetGet(t *testing.T) {
	m := NewMemory("test")
	defer m.Close()
	ctx := context.Background()

	if err := m.Set(ctx, "rec:1:10", []byte(`{"items":[]}`), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	value, ok, err := m.Get(ctx, "rec:1:10")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("Get() ok = false, want hit")
	}
	if !bytes.Equal(value, []byte(`{"items":[]}`)) {
		t.Errorf("Get() = %q", value)
	}
}

func TestMemoryMiss(t *testing.T) {
	m := NewMemory("test")
	defer m.Close()

	_, ok, err := m.Get(context.Background(), "absent")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Error("Get() ok = true for absent key")
	}
}

func TestMemoryExpiry(t *testing.T) {
	m := NewMemory("test")
	defer m.Close()
	ctx := context.Background()

	if err := m.Set(ctx, "short", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	time.Sleep(25 * time.Millisecond)

	_, ok, err := m.Get(ctx, "short")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Error("expired entry still served")
	}

	stats := m.GetStats()
	if stats.Evictions == 0 {
		t.Error("expired entry not counted as eviction")
	}
}

func TestMemoryDeleteByPrefix(t *testing.T) {
	m := NewMemory("test")
	defer m.Close()
	ctx := context.Background()

	keys := []string{"rec:7:10", "rec:7:25", "rec:8:10"}
	for _, k := range keys {
		if err := m.Set(ctx, k, []byte("v"), time.Minute); err != nil {
			t.Fatalf("Set(%q) error = %v", k, err)
		}
	}

	if err := m.DeleteByPrefix(ctx, "rec:7:"); err != nil {
		t.Fatalf("DeleteByPrefix() error = %v", err)
	}

	for _, k := range []string{"rec:7:10", "rec:7:25"} {
		if _, ok, _ := m.Get(ctx, k); ok {
			t.Errorf("key %q survived prefix delete", k)
		}
	}
	if _, ok, _ := m.Get(ctx, "rec:8:10"); !ok {
		t.Error("key rec:8:10 was removed by unrelated prefix delete")
	}
}

func TestMemoryClear(t *testing.T) {
	m := NewMemory("test")
	defer m.Close()
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if err := m.Set(ctx, fmt.Sprintf("k%d", i), []byte("v"), time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}

	m.Clear()

	if stats := m.GetStats(); stats.TotalKeys != 0 {
		t.Errorf("TotalKeys = %d after Clear, want 0", stats.TotalKeys)
	}
	if _, ok, _ := m.Get(ctx, "k0"); ok {
		t.Error("entry survived Clear")
	}
}

func TestMemoryHitRate(t *testing.T) {
	m := NewMemory("test")
	defer m.Close()
	ctx := context.Background()

	if rate := m.HitRate(); rate != 0.0 {
		t.Errorf("empty cache hit rate = %v, want 0", rate)
	}

	_ = m.Set(ctx, "k", []byte("v"), time.Minute)
	m.Get(ctx, "k")      // hit
	m.Get(ctx, "absent") // miss

	if rate := m.HitRate(); rate != 50.0 {
		t.Errorf("hit rate = %v, want 50.0", rate)
	}
}

func TestMemoryConcurrentAccess(t *testing.T) {
	m := NewMemory("test")
	defer m.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", n%4)
			for j := 0; j < 100; j++ {
				_ = m.Set(ctx, key, []byte("v"), time.Minute)
				m.Get(ctx, key)
				if j%10 == 0 {
					_ = m.DeleteByPrefix(ctx, key)
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestMemoryCloseIdempotent(t *testing.T) {
	m := NewMemory("test")
	m.Close()
	m.Close()
}
