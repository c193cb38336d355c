// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

package discover

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/fifthquarter/bandstand/internal/logging"
	"github.com/fifthquarter/bandstand/internal/models"
)

// engineStore is an in-memory Store that interprets PoolSpec the same way
// the database layer does.
type engineStore struct {
	videos  []models.Video
	history map[string][]int64
	recent  map[string][]models.Video
}

func (s *engineStore) GetVideo(_ context.Context, id int64) (*models.Video, error) {
	for i := range s.videos {
		if s.videos[i].ID == id {
			v := s.videos[i]
			return &v, nil
		}
	}
	return nil, ErrVideoNotFound
}

func (s *engineStore) FindCandidatePool(_ context.Context, spec PoolSpec) ([]models.Video, error) {
	excluded := make(map[int64]struct{}, len(spec.ExcludeVideoIDs))
	for _, id := range spec.ExcludeVideoIDs {
		excluded[id] = struct{}{}
	}

	out := make([]models.Video, 0, len(s.videos))
	for _, v := range s.videos {
		if v.IsHidden || !v.IsAttributed() || v.OrgID() == spec.ExcludeOrgID {
			continue
		}
		if _, skip := excluded[v.ID]; skip {
			continue
		}
		if !matchesAnyFilter(&v, spec.Filters) {
			continue
		}
		out = append(out, v)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ViewCount > out[j].ViewCount
	})
	if spec.Limit > 0 && len(out) > spec.Limit {
		out = out[:spec.Limit]
	}
	return out, nil
}

func (s *engineStore) WatchedVideoIDs(_ context.Context, viewerID string) ([]int64, error) {
	return s.history[viewerID], nil
}

func (s *engineStore) RecentlyWatched(_ context.Context, viewerID string, limit int) ([]models.Video, error) {
	recent := s.recent[viewerID]
	if len(recent) > limit {
		recent = recent[:limit]
	}
	return recent, nil
}

func matchesAnyFilter(v *models.Video, filters []Filter) bool {
	if len(filters) == 0 {
		return true
	}
	for _, f := range filters {
		switch f := f.(type) {
		case CategoryEquals:
			if v.CategoryID != nil && *v.CategoryID == f.ID {
				return true
			}
		case EventNameEquals:
			if strings.EqualFold(v.EventName, f.Name) {
				return true
			}
		case EventYearEquals:
			if v.EventYear == f.Year {
				return true
			}
		case TagsOverlap:
			for _, want := range f.Tags {
				for _, have := range v.Tags {
					if strings.EqualFold(want, have) {
						return true
					}
				}
			}
		}
	}
	return false
}

// memCache is a minimal in-memory Cache for engine tests.
type memCache struct {
	values   map[string][]byte
	getCalls int
	setCalls int
	fail     bool
}

func newMemCache() *memCache { return &memCache{values: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.getCalls++
	if c.fail {
		return nil, false, errors.New("cache down")
	}
	v, ok := c.values[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.setCalls++
	if c.fail {
		return errors.New("cache down")
	}
	c.values[key] = value
	return nil
}

func (c *memCache) DeleteByPrefix(_ context.Context, prefix string) error {
	for k := range c.values {
		if strings.HasPrefix(k, prefix) {
			delete(c.values, k)
		}
	}
	return nil
}

func attributedVideo(id, orgID int64, categoryID int64, viewCount int64) models.Video {
	return models.Video{
		ID:              id,
		AttributedOrgID: &orgID,
		CategoryID:      &categoryID,
		ViewCount:       viewCount,
	}
}

func eventVideo(id, orgID int64, eventName string, viewCount int64) models.Video {
	return models.Video{
		ID:              id,
		AttributedOrgID: &orgID,
		EventName:       eventName,
		ViewCount:       viewCount,
	}
}

func newTestEngine(t *testing.T, store Store, cache Cache) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultConfig(), store, cache, logging.Logger())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

func TestRecommendSourceNotFound(t *testing.T) {
	e := newTestEngine(t, &engineStore{}, nil)

	_, err := e.Recommend(context.Background(), Request{SourceID: 404})
	if !errors.Is(err, ErrVideoNotFound) {
		t.Errorf("error = %v, want ErrVideoNotFound", err)
	}
}

func TestRecommendFallbackCompleteness(t *testing.T) {
	// Two event-matched candidates from one org fill the primary list; the
	// popularity fallback supplies a third video from another org with a
	// zero score.
	store := &engineStore{
		videos: []models.Video{
			eventVideo(1, 1, "honda battle 2024", 500), // source
			eventVideo(2, 2, "honda battle 2024", 100),
			eventVideo(3, 2, "honda battle 2024", 90),
			eventVideo(4, 3, "", 80),
		},
	}
	e := newTestEngine(t, store, nil)

	resp, err := e.Recommend(context.Background(), Request{SourceID: 1, Limit: 4})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	if len(resp.Items) != 3 {
		t.Fatalf("items = %d, want 3 (min(limit, primary+fallback))", len(resp.Items))
	}

	seen := make(map[int64]struct{})
	for _, it := range resp.Items {
		if _, dup := seen[it.Video.ID]; dup {
			t.Errorf("duplicate video %d in results", it.Video.ID)
		}
		seen[it.Video.ID] = struct{}{}
	}

	last := resp.Items[2]
	if last.Video.ID != 4 {
		t.Errorf("fallback video = %d, want 4", last.Video.ID)
	}
	if last.Score != 0 {
		t.Errorf("fallback score = %.2f, want 0", last.Score)
	}
	if last.Reason != "Popular video" {
		t.Errorf("fallback reason = %q, want %q", last.Reason, "Popular video")
	}
}

func TestRecommendFallbackHonorsOrgCap(t *testing.T) {
	// All candidates share one org: the per-org cap holds across the
	// diversified list and the fallback top-up, even when that leaves the
	// response short of the requested limit.
	store := &engineStore{
		videos: []models.Video{
			attributedVideo(1, 1, 3, 500), // source
			attributedVideo(2, 2, 3, 100),
			attributedVideo(3, 2, 3, 90),
			attributedVideo(4, 2, 3, 80),
		},
	}
	e := newTestEngine(t, store, nil)

	resp, err := e.Recommend(context.Background(), Request{SourceID: 1, Limit: 4})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	maxPerOrg := DefaultConfig().MaxPerOrg
	if len(resp.Items) != maxPerOrg {
		t.Fatalf("items = %d, want %d (single org capped)", len(resp.Items), maxPerOrg)
	}
	perOrg := make(map[int64]int)
	for _, it := range resp.Items {
		perOrg[it.Video.OrgID()]++
	}
	for org, n := range perOrg {
		if n > maxPerOrg {
			t.Errorf("org %d appears %d times, cap is %d", org, n, maxPerOrg)
		}
	}
}

func TestRecommendExcludesWatched(t *testing.T) {
	store := &engineStore{
		videos: []models.Video{
			attributedVideo(1, 1, 3, 500),
			attributedVideo(2, 2, 3, 100),
			attributedVideo(3, 3, 3, 90),
		},
		history: map[string][]int64{"alice": {2}},
		recent:  map[string][]models.Video{},
	}
	e := newTestEngine(t, store, nil)

	resp, err := e.Recommend(context.Background(), Request{SourceID: 1, ViewerID: "alice", Limit: 5})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	for _, it := range resp.Items {
		if it.Video.ID == 2 {
			t.Error("watched video 2 appeared in recommendations")
		}
	}
	if len(resp.Items) != 1 || resp.Items[0].Video.ID != 3 {
		t.Errorf("items = %v, want only video 3", resp.Items)
	}
}

func TestRecommendAnonymousCached(t *testing.T) {
	store := &engineStore{
		videos: []models.Video{
			attributedVideo(1, 1, 3, 500),
			attributedVideo(2, 2, 3, 100),
		},
	}
	cache := newMemCache()
	e := newTestEngine(t, store, cache)

	first, err := e.Recommend(context.Background(), Request{SourceID: 1, Limit: 5})
	if err != nil {
		t.Fatalf("first Recommend() error = %v", err)
	}
	if first.CacheHit {
		t.Error("first response should not be a cache hit")
	}
	if cache.setCalls != 1 {
		t.Errorf("cache writes = %d, want 1", cache.setCalls)
	}

	second, err := e.Recommend(context.Background(), Request{SourceID: 1, Limit: 5})
	if err != nil {
		t.Fatalf("second Recommend() error = %v", err)
	}
	if !second.CacheHit {
		t.Error("second response should be served from cache")
	}
	if len(second.Items) != len(first.Items) {
		t.Errorf("cached items = %d, want %d", len(second.Items), len(first.Items))
	}
}

func TestRecommendPersonalizedNeverCached(t *testing.T) {
	store := &engineStore{
		videos: []models.Video{
			attributedVideo(1, 1, 3, 500),
			attributedVideo(2, 2, 3, 100),
		},
		history: map[string][]int64{},
		recent:  map[string][]models.Video{},
	}
	cache := newMemCache()
	e := newTestEngine(t, store, cache)

	if _, err := e.Recommend(context.Background(), Request{SourceID: 1, ViewerID: "alice"}); err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if cache.setCalls != 0 {
		t.Errorf("personalized response was cached (%d writes)", cache.setCalls)
	}
	if cache.getCalls != 0 {
		t.Errorf("personalized request read the cache (%d reads)", cache.getCalls)
	}
}

func TestRecommendCacheFailOpen(t *testing.T) {
	store := &engineStore{
		videos: []models.Video{
			attributedVideo(1, 1, 3, 500),
			attributedVideo(2, 2, 3, 100),
		},
	}
	cache := newMemCache()
	cache.fail = true
	e := newTestEngine(t, store, cache)

	resp, err := e.Recommend(context.Background(), Request{SourceID: 1, Limit: 5})
	if err != nil {
		t.Fatalf("Recommend() error = %v, cache outage must not surface", err)
	}
	if len(resp.Items) != 1 {
		t.Errorf("items = %d, want 1 computed from store of record", len(resp.Items))
	}
}

func TestRecommendSections(t *testing.T) {
	store := &engineStore{
		videos: []models.Video{
			attributedVideo(1, 1, 3, 500),  // source
			attributedVideo(20, 5, 3, 400), // recently watched
			attributedVideo(21, 6, 3, 300), // recently watched
			attributedVideo(30, 7, 3, 200),
			attributedVideo(31, 7, 3, 190),
			attributedVideo(32, 8, 3, 180),
		},
		history: map[string][]int64{"alice": {20, 21}},
		recent: map[string][]models.Video{"alice": {
			attributedVideo(20, 5, 3, 400),
			attributedVideo(21, 6, 3, 300),
		}},
	}
	e := newTestEngine(t, store, nil)

	resp, err := e.Recommend(context.Background(), Request{SourceID: 1, ViewerID: "alice", Limit: 5})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	if len(resp.Sections) == 0 {
		t.Fatal("expected at least one section")
	}

	usedOrgs := make(map[int64]int)
	for _, sec := range resp.Sections {
		perOrg := make(map[int64]int)
		for _, it := range sec.Items {
			perOrg[it.Video.OrgID()]++
			usedOrgs[it.Video.OrgID()]++
		}
		for org, n := range perOrg {
			if n > 1 {
				t.Errorf("section %d: org %d appears %d times, cap is 1", sec.SourceVideoID, org, n)
			}
		}
	}
	for org, n := range usedOrgs {
		if n > 1 {
			t.Errorf("org %d reused across sections %d times", org, n)
		}
	}
}

func TestRecommendLimitClamping(t *testing.T) {
	videos := []models.Video{attributedVideo(1, 1, 3, 500)}
	for i := int64(0); i < 100; i++ {
		videos = append(videos, attributedVideo(100+i, 100+i, 3, 100-i))
	}
	store := &engineStore{videos: videos}
	e := newTestEngine(t, store, nil)

	resp, err := e.Recommend(context.Background(), Request{SourceID: 1, Limit: 9999})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(resp.Items) > DefaultConfig().MaxLimit {
		t.Errorf("items = %d, want at most %d", len(resp.Items), DefaultConfig().MaxLimit)
	}

	resp, err = e.Recommend(context.Background(), Request{SourceID: 1})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(resp.Items) != DefaultConfig().DefaultLimit {
		t.Errorf("items = %d, want default limit %d", len(resp.Items), DefaultConfig().DefaultLimit)
	}
}
