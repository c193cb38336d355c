// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

package discover

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/fifthquarter/bandstand/internal/models"
)

// Engine orchestrates recommendation computation: candidate pool fetch,
// similarity scoring, diversification, popularity fallback, watch-history
// exclusion, and "because you watched" sections. It is safe for concurrent
// use; all mutable state lives in the store and cache collaborators.
type Engine struct {
	config *Config
	store  Store
	cache  Cache
	logger zerolog.Logger
}

// NewEngine creates a recommendation engine. The cache may be nil, which
// disables caching entirely.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewEngine(cfg *Config, store Store, cache Cache, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		config: cfg,
		store:  store,
		cache:  cache,
		logger: logger.With().Str("component", "discover").Logger(),
	}, nil
}

// Recommend computes recommendations for a source video. Anonymous requests
// (empty ViewerID) are served from and written to the cache keyed by
// (source, limit); personalized requests always recompute.
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	limit := e.clampLimit(req.Limit)
	anonymous := req.ViewerID == ""

	cacheKey := fmt.Sprintf("rec:%d:%d", req.SourceID, limit)
	if anonymous {
		if resp := e.cachedResponse(ctx, cacheKey); resp != nil {
			return resp, nil
		}
	}

	source, err := e.store.GetVideo(ctx, req.SourceID)
	if err != nil {
		return nil, fmt.Errorf("get source video %d: %w", req.SourceID, err)
	}

	watched, err := e.watchedIDs(ctx, req.ViewerID)
	if err != nil {
		return nil, fmt.Errorf("get watch history: %w", err)
	}

	items, err := e.recommendFor(ctx, source, watched, limit, e.config.MaxPerOrg)
	if err != nil {
		return nil, err
	}

	resp := &Response{
		SourceID:    source.ID,
		Items:       items,
		GeneratedAt: time.Now(),
	}

	if !anonymous {
		resp.Sections, err = e.buildSections(ctx, source, req.ViewerID, watched)
		if err != nil {
			return nil, err
		}
	}

	if anonymous {
		e.storeCached(ctx, cacheKey, resp)
	}

	e.logger.Debug().
		Int64("source_id", source.ID).
		Int("items", len(resp.Items)).
		Int("sections", len(resp.Sections)).
		Bool("anonymous", anonymous).
		Msg("recommendation computed")

	return resp, nil
}

// InvalidateSource drops cached anonymous results for a source video, for
// callers that just re-attributed or re-moderated it.
func (e *Engine) InvalidateSource(ctx context.Context, sourceID int64) {
	if e.cache == nil {
		return
	}
	prefix := fmt.Sprintf("rec:%d:", sourceID)
	if err := e.cache.DeleteByPrefix(ctx, prefix); err != nil {
		e.logger.Warn().Err(err).Str("prefix", prefix).Msg("cache invalidation failed")
	}
}

// recommendFor runs the scoring pipeline for one source video.
func (e *Engine) recommendFor(ctx context.Context, source *models.Video, watched []int64, limit, maxPerOrg int) ([]Scored, error) {
	exclude := append([]int64{source.ID}, watched...)

	pool, err := e.store.FindCandidatePool(ctx, PoolSpec{
		Filters:         filtersFor(source),
		ExcludeVideoIDs: exclude,
		ExcludeOrgID:    source.OrgID(),
		Limit:           limit * e.config.PoolFactor,
	})
	if err != nil {
		return nil, fmt.Errorf("find candidate pool: %w", err)
	}

	scored := scorePool(source, pool)
	selected := Diversify(scored, limit, maxPerOrg)

	return e.backfill(ctx, source, selected, exclude, limit, maxPerOrg)
}

// scorePool scores every candidate against the source and sorts by score
// descending, breaking ties by popularity and then ID for determinism.
func scorePool(source *models.Video, pool []models.Video) []Scored {
	scored := make([]Scored, 0, len(pool))
	for i := range pool {
		score, reason := Similarity(source, &pool[i])
		scored = append(scored, Scored{Video: pool[i], Score: score, Reason: reason})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if scored[i].Video.ViewCount != scored[j].Video.ViewCount {
			return scored[i].Video.ViewCount > scored[j].Video.ViewCount
		}
		return scored[i].Video.ID < scored[j].Video.ID
	})

	return scored
}

// backfill tops up a short result list from the popularity-ranked fallback
// pool: same category when known, otherwise any popular video, always a
// different organization than the source. Fallback items carry a zero
// similarity score and a generic reason, and count against the same
// per-organization cap as the primary list.
func (e *Engine) backfill(ctx context.Context, source *models.Video, selected []Scored, exclude []int64, limit, maxPerOrg int) ([]Scored, error) {
	need := limit - len(selected)
	if need <= 0 {
		return selected, nil
	}
	if maxPerOrg <= 0 {
		maxPerOrg = 1
	}

	var filters []Filter
	reason := "Popular video"
	if source.CategoryID != nil {
		filters = []Filter{CategoryEquals{ID: *source.CategoryID}}
		reason = "Popular in this category"
	}

	excludeAll := make([]int64, 0, len(exclude)+len(selected))
	excludeAll = append(excludeAll, exclude...)
	excludeAll = append(excludeAll, videoIDs(selected)...)

	// Over-fetch so cap skips do not leave the list short.
	pool, err := e.store.FindCandidatePool(ctx, PoolSpec{
		Filters:         filters,
		ExcludeVideoIDs: excludeAll,
		ExcludeOrgID:    source.OrgID(),
		Limit:           need * e.config.PoolFactor,
	})
	if err != nil {
		return nil, fmt.Errorf("find fallback pool: %w", err)
	}

	perOrg := make(map[int64]int, len(selected))
	for i := range selected {
		perOrg[selected[i].Video.OrgID()]++
	}

	for i := range pool {
		if len(selected) >= limit {
			break
		}
		org := pool[i].OrgID()
		if perOrg[org] >= maxPerOrg {
			continue
		}
		perOrg[org]++
		selected = append(selected, Scored{Video: pool[i], Score: 0, Reason: reason})
	}

	return selected, nil
}

// buildSections assembles up to SectionCount "because you watched" sections,
// one per distinct recently watched video. Each section is diversified with a
// per-organization cap of one, and organizations used by an earlier section
// are excluded from later ones.
func (e *Engine) buildSections(ctx context.Context, source *models.Video, viewerID string, watched []int64) ([]Section, error) {
	if e.config.SectionCount == 0 || e.config.SectionSize == 0 {
		return nil, nil
	}

	recent, err := e.store.RecentlyWatched(ctx, viewerID, e.config.SectionCount)
	if err != nil {
		return nil, fmt.Errorf("get recently watched: %w", err)
	}

	usedOrgs := make(map[int64]struct{})
	sections := make([]Section, 0, len(recent))

	for i := range recent {
		watchedVideo := &recent[i]
		if watchedVideo.ID == source.ID {
			continue
		}

		items, err := e.recommendFor(ctx, watchedVideo, watched, e.config.SectionSize*2, 1)
		if err != nil {
			return nil, err
		}

		kept := make([]Scored, 0, e.config.SectionSize)
		for j := range items {
			org := items[j].Video.OrgID()
			if _, used := usedOrgs[org]; used {
				continue
			}
			kept = append(kept, items[j])
			if len(kept) == e.config.SectionSize {
				break
			}
		}
		if len(kept) == 0 {
			continue
		}

		for k := range orgIDs(kept) {
			usedOrgs[k] = struct{}{}
		}
		sections = append(sections, Section{
			SourceVideoID: watchedVideo.ID,
			SourceTitle:   watchedVideo.Title,
			Items:         kept,
		})
	}

	return sections, nil
}

// filtersFor derives the candidate-pool filters from a source video: same
// category OR same event OR same year OR overlapping tags.
func filtersFor(source *models.Video) []Filter {
	filters := make([]Filter, 0, 4)
	if source.CategoryID != nil {
		filters = append(filters, CategoryEquals{ID: *source.CategoryID})
	}
	if source.EventName != "" {
		filters = append(filters, EventNameEquals{Name: source.EventName})
	}
	if source.EventYear != 0 {
		filters = append(filters, EventYearEquals{Year: source.EventYear})
	}
	if len(source.Tags) > 0 {
		filters = append(filters, TagsOverlap{Tags: source.Tags})
	}
	return filters
}

// watchedIDs fetches the watch-history exclusion set for identified viewers.
func (e *Engine) watchedIDs(ctx context.Context, viewerID string) ([]int64, error) {
	if viewerID == "" {
		return nil, nil
	}
	return e.store.WatchedVideoIDs(ctx, viewerID)
}

// clampLimit applies the default and maximum result counts.
func (e *Engine) clampLimit(limit int) int {
	if limit <= 0 {
		return e.config.DefaultLimit
	}
	if limit > e.config.MaxLimit {
		return e.config.MaxLimit
	}
	return limit
}

// cachedResponse returns a cached anonymous response, or nil. Cache errors
// are logged and treated as misses.
func (e *Engine) cachedResponse(ctx context.Context, key string) *Response {
	if e.cache == nil {
		return nil
	}

	value, ok, err := e.cache.Get(ctx, key)
	if err != nil {
		e.logger.Warn().Err(err).Str("key", key).Msg("cache read failed, recomputing")
		return nil
	}
	if !ok {
		return nil
	}

	var resp Response
	if err := json.Unmarshal(value, &resp); err != nil {
		e.logger.Warn().Err(err).Str("key", key).Msg("cache entry corrupt, recomputing")
		return nil
	}

	resp.CacheHit = true
	return &resp
}

// storeCached writes an anonymous response to the cache, ignoring failures.
func (e *Engine) storeCached(ctx context.Context, key string, resp *Response) {
	if e.cache == nil {
		return
	}

	value, err := json.Marshal(resp)
	if err != nil {
		e.logger.Warn().Err(err).Msg("cache marshal failed")
		return
	}
	if err := e.cache.Set(ctx, key, value, e.config.CacheTTL); err != nil {
		e.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}
