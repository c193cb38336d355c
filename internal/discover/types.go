// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

package discover

import (
	"context"
	"errors"
	"time"

	"github.com/fifthquarter/bandstand/internal/models"
)

// ErrVideoNotFound is returned when a recommendation source video does not
// exist. It is surfaced to the caller rather than producing an empty result.
var ErrVideoNotFound = errors.New("video not found")

// Filter is a tagged-variant candidate-pool predicate. The persistence layer
// interprets each variant; multiple filters combine as OR. This replaces
// dynamically shaped, untyped query objects with a small closed set of typed
// conditions.
type Filter interface {
	isFilter()
}

// CategoryEquals selects videos in the given category.
type CategoryEquals struct {
	ID int64
}

// EventNameEquals selects videos from the named event (case-insensitive).
type EventNameEquals struct {
	Name string
}

// EventYearEquals selects videos from the given event year.
type EventYearEquals struct {
	Year int
}

// TagsOverlap selects videos sharing at least one tag.
type TagsOverlap struct {
	Tags []string
}

func (CategoryEquals) isFilter()  {}
func (EventNameEquals) isFilter() {}
func (EventYearEquals) isFilter() {}
func (TagsOverlap) isFilter()     {}

// PoolSpec describes one candidate-pool query. Results are always attributed,
// visible videos ranked by popularity (view count descending).
type PoolSpec struct {
	// Filters combine as OR. An empty list selects any visible attributed
	// video, which is how the generic popularity fallback is expressed.
	Filters []Filter

	// ExcludeVideoIDs removes specific videos (the source, watch history,
	// already-selected results).
	ExcludeVideoIDs []int64

	// ExcludeOrgID removes the source video's own organization.
	ExcludeOrgID int64

	// Limit caps the number of rows returned.
	Limit int
}

// Store is the persistence collaborator for recommendation computation.
type Store interface {
	// GetVideo fetches one video, returning ErrVideoNotFound when absent.
	GetVideo(ctx context.Context, id int64) (*models.Video, error)

	// FindCandidatePool returns candidate videos matching the spec.
	FindCandidatePool(ctx context.Context, spec PoolSpec) ([]models.Video, error)

	// WatchedVideoIDs returns the viewer's full watch-history video IDs.
	WatchedVideoIDs(ctx context.Context, viewerID string) ([]int64, error)

	// RecentlyWatched returns the viewer's most recently watched videos,
	// newest first, deduplicated by video.
	RecentlyWatched(ctx context.Context, viewerID string, limit int) ([]models.Video, error)
}

// Cache is the caching collaborator. Implementations must be safe for
// concurrent use. The engine treats every cache error as a miss (fail-open):
// a cache outage never prevents computation from the store of record.
type Cache interface {
	// Get returns the cached value, or ok=false on a miss.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// DeleteByPrefix removes all keys with the given prefix.
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// Scored is a candidate video with its similarity score and a human-readable
// explanation of which signals fired.
type Scored struct {
	Video  models.Video `json:"video"`
	Score  float64      `json:"score"`
	Reason string       `json:"reason"`
}

// Request is one recommendation request.
type Request struct {
	// SourceID is the video recommendations are computed for.
	SourceID int64 `json:"source_id"`

	// ViewerID identifies the requesting viewer; empty means anonymous.
	// Anonymous results are cacheable, personalized results are not.
	ViewerID string `json:"viewer_id,omitempty"`

	// Limit is the number of recommendations to return. Defaults to
	// Config.DefaultLimit, clamped to Config.MaxLimit.
	Limit int `json:"limit,omitempty"`
}

// Section is one "because you watched" grouping.
type Section struct {
	// SourceVideoID is the recently watched video the section derives from.
	SourceVideoID int64 `json:"source_video_id"`

	// SourceTitle is that video's title, for display.
	SourceTitle string `json:"source_title"`

	// Items are the section's recommendations, at most one per organization.
	Items []Scored `json:"items"`
}

// Response is a recommendation response.
type Response struct {
	// SourceID is the request's source video.
	SourceID int64 `json:"source_id"`

	// Items is the ranked, diversified recommendation list.
	Items []Scored `json:"items"`

	// Sections are "because you watched" groupings, present only for
	// identified viewers with watch history.
	Sections []Section `json:"sections,omitempty"`

	// CacheHit indicates the response was served from cache.
	CacheHit bool `json:"cache_hit"`

	// GeneratedAt is when the response was computed.
	GeneratedAt time.Time `json:"generated_at"`
}
