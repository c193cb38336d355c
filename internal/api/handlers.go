// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/fifthquarter/bandstand/internal/attribution"
	"github.com/fifthquarter/bandstand/internal/discover"
	"github.com/fifthquarter/bandstand/internal/logging"
	"github.com/fifthquarter/bandstand/internal/metrics"
	"github.com/fifthquarter/bandstand/internal/models"
	"github.com/fifthquarter/bandstand/internal/validation"
)

// ErrUnknownTarget is returned when a batch run names an unregistered
// target. It is a caller error, reported distinctly from a run that finds
// no matches.
var ErrUnknownTarget = errors.New("unknown attribution target")

// recCachePrefix is the key prefix for cached recommendation responses.
const recCachePrefix = "rec:"

// Store is the persistence surface the handlers need.
type Store interface {
	Ping(ctx context.Context) error
	GetOrganizations(ctx context.Context) ([]models.Organization, error)
	CountByOrganization(ctx context.Context) (map[int64]int64, error)
	GetVideo(ctx context.Context, id int64) (*models.Video, error)
	GetAttribution(ctx context.Context, videoID int64) (*models.AttributionRecord, error)
	ResetAttributions(ctx context.Context) (int64, error)
	RecordWatch(ctx context.Context, viewerID string, videoID int64) error
}

// Recommender computes recommendation responses.
type Recommender interface {
	Recommend(ctx context.Context, req discover.Request) (*discover.Response, error)
	InvalidateSource(ctx context.Context, sourceID int64)
}

// BatchRunner executes one attribution batch.
type BatchRunner interface {
	Run(ctx context.Context, opts attribution.Options) (attribution.Result, error)
}

// Cache is the recommendation cache, used here only for invalidation after
// attribution state changes. May be nil when caching is disabled.
type Cache interface {
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// Handler holds the collaborators behind the HTTP surface.
type Handler struct {
	store  Store
	engine Recommender
	runner BatchRunner
	cache  Cache
}

// NewHandler creates the API handler set. cache may be nil.
func NewHandler(store Store, engine Recommender, runner BatchRunner, cache Cache) *Handler {
	return &Handler{
		store:  store,
		engine: engine,
		runner: runner,
		cache:  cache,
	}
}

// HealthLive reports process liveness. It always succeeds while the process
// can serve HTTP.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]string{"status": "alive"})
}

// HealthReady reports readiness to serve traffic, checking the database.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if err := h.store.Ping(r.Context()); err != nil {
		logging.Warn().Err(err).Msg("Readiness check failed")
		rw.ServiceUnavailable("Database not reachable")
		return
	}

	rw.Success(map[string]string{"status": "ready"})
}

// organizationSummary is one row of the organization listing.
type organizationSummary struct {
	models.Organization
	VideoCount int64 `json:"video_count"`
}

// Organizations lists the canonical organization catalog with attributed
// video counts.
func (h *Handler) Organizations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	ctx := r.Context()

	orgs, err := h.store.GetOrganizations(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to list organizations")
		rw.InternalError("Failed to list organizations")
		return
	}

	counts, err := h.store.CountByOrganization(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to count videos by organization")
		rw.InternalError("Failed to list organizations")
		return
	}

	summaries := make([]organizationSummary, 0, len(orgs))
	for _, org := range orgs {
		summaries = append(summaries, organizationSummary{
			Organization: org,
			VideoCount:   counts[org.ID],
		})
	}

	rw.Success(summaries)
}

// GetVideo returns one video with its tags and attribution state.
func (h *Handler) GetVideo(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, ok := pathID(rw, r)
	if !ok {
		return
	}

	video, err := h.store.GetVideo(r.Context(), id)
	if err != nil {
		if errors.Is(err, discover.ErrVideoNotFound) {
			rw.NotFound("Video not found")
			return
		}
		logging.Error().Err(err).Int64("video_id", id).Msg("Failed to get video")
		rw.InternalError("Failed to get video")
		return
	}

	rw.Success(video)
}

// recommendationsQuery is the validated query-string surface of the
// recommendations endpoint.
type recommendationsQuery struct {
	Limit  int    `validate:"omitempty,min=1,max=50"`
	Viewer string `validate:"omitempty,max=128"`
}

// Recommendations computes recommendations for one source video.
// `limit` bounds the result count; `viewer` personalizes the response and
// disables caching.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, ok := pathID(rw, r)
	if !ok {
		return
	}

	query := recommendationsQuery{Viewer: r.URL.Query().Get("viewer")}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			rw.BadRequest("Invalid limit parameter")
			return
		}
		query.Limit = limit
	}
	if verr := validation.ValidateStruct(query); verr != nil {
		rw.ValidationError("Invalid query parameters", verr.ToAPIError().Details)
		return
	}

	start := time.Now()
	resp, err := h.engine.Recommend(r.Context(), discover.Request{
		SourceID: id,
		ViewerID: query.Viewer,
		Limit:    query.Limit,
	})
	if err != nil {
		if errors.Is(err, discover.ErrVideoNotFound) {
			rw.NotFound("Video not found")
			return
		}
		logging.Error().Err(err).Int64("video_id", id).Msg("Failed to compute recommendations")
		rw.InternalError("Failed to compute recommendations")
		return
	}

	metrics.RecordRecommendation(query.Viewer == "", time.Since(start), countFallback(resp.Items))
	rw.Success(resp)
}

// GetAttribution returns the attribution audit record for one video,
// including the matched alias and match type moderators review.
func (h *Handler) GetAttribution(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, ok := pathID(rw, r)
	if !ok {
		return
	}

	rec, err := h.store.GetAttribution(r.Context(), id)
	if err != nil {
		logging.Error().Err(err).Int64("video_id", id).Msg("Failed to get attribution")
		rw.InternalError("Failed to get attribution")
		return
	}
	if rec == nil {
		rw.NotFound("Video not found")
		return
	}

	rw.Success(rec)
}

// watchRequest is the body of the watch-event endpoint.
type watchRequest struct {
	ViewerID string `json:"viewer_id" validate:"required,max=128"`
}

// RecordWatch appends a watch-history event for a viewer.
func (h *Handler) RecordWatch(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, ok := pathID(rw, r)
	if !ok {
		return
	}

	var req watchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("Invalid request body")
		return
	}
	if verr := validation.ValidateStruct(req); verr != nil {
		rw.ValidationError("Invalid watch request", verr.ToAPIError().Details)
		return
	}

	if _, err := h.store.GetVideo(r.Context(), id); err != nil {
		if errors.Is(err, discover.ErrVideoNotFound) {
			rw.NotFound("Video not found")
			return
		}
		logging.Error().Err(err).Int64("video_id", id).Msg("Failed to get video")
		rw.InternalError("Failed to record watch")
		return
	}

	if err := h.store.RecordWatch(r.Context(), req.ViewerID, id); err != nil {
		logging.Error().Err(err).Int64("video_id", id).Msg("Failed to record watch")
		rw.InternalError("Failed to record watch")
		return
	}

	// The view count moved, so this source's cached ordering is stale.
	h.engine.InvalidateSource(r.Context(), id)

	rw.Success(map[string]interface{}{"video_id": id, "recorded": true})
}

// attributionRunRequest is the batch control surface. Target selects a
// registered run scope; unknown targets are a caller error.
type attributionRunRequest struct {
	Target        string `json:"target"`
	DryRun        bool   `json:"dry_run"`
	MinConfidence int    `json:"min_confidence" validate:"omitempty,min=0,max=100"`
	Limit         int    `json:"limit" validate:"omitempty,min=0,max=10000"`
}

// runTargets maps registered batch targets to their option shaping. The
// registry exists so an unknown name fails loudly instead of silently
// running the default scope.
var runTargets = map[string]func(attributionRunRequest) attribution.Options{
	// videos: the unattributed backlog, bounded by the request limit.
	"videos": func(req attributionRunRequest) attribution.Options {
		return attribution.Options{
			DryRun:        req.DryRun,
			MinConfidence: req.MinConfidence,
			Limit:         req.Limit,
		}
	},
	// all: the entire backlog regardless of the request limit.
	"all": func(req attributionRunRequest) attribution.Options {
		return attribution.Options{
			DryRun:        req.DryRun,
			MinConfidence: req.MinConfidence,
		}
	},
}

// RunAttribution executes one attribution batch synchronously and returns
// the run accumulator.
func (h *Handler) RunAttribution(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req := attributionRunRequest{Target: "videos"}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			rw.BadRequest("Invalid request body")
			return
		}
	}
	if req.Target == "" {
		req.Target = "videos"
	}
	if verr := validation.ValidateStruct(req); verr != nil {
		rw.ValidationError("Invalid run request", verr.ToAPIError().Details)
		return
	}

	shape, ok := runTargets[req.Target]
	if !ok {
		rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeValidationFailed,
			ErrUnknownTarget.Error(),
			map[string]string{"target": req.Target})
		return
	}

	result, err := h.runner.Run(r.Context(), shape(req))
	if err != nil {
		logging.Error().Err(err).Str("target", req.Target).Msg("Attribution run failed")
		rw.InternalError("Attribution run failed")
		return
	}

	if !req.DryRun && result.Attributed > 0 {
		h.invalidateRecommendations(r.Context())
	}

	rw.Success(result)
}

// ResetAttributions clears every attribution so the pipeline can re-run
// after alias rule changes.
func (h *Handler) ResetAttributions(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	reset, err := h.store.ResetAttributions(r.Context())
	if err != nil {
		logging.Error().Err(err).Msg("Failed to reset attributions")
		rw.InternalError("Failed to reset attributions")
		return
	}

	if reset > 0 {
		h.invalidateRecommendations(r.Context())
	}

	rw.Success(map[string]int64{"reset": reset})
}

// invalidateRecommendations drops every cached recommendation response.
// Attribution changes alter candidate pools globally, so per-source
// invalidation is not enough.
func (h *Handler) invalidateRecommendations(ctx context.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.DeleteByPrefix(ctx, recCachePrefix); err != nil {
		logging.Warn().Err(err).Msg("Failed to invalidate recommendation cache")
	}
}

// pathID parses the {id} URL parameter, writing a 400 on failure.
func pathID(rw *ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		rw.BadRequest("Invalid video ID")
		return 0, false
	}
	return id, true
}

// countFallback counts zero-scored popularity-fallback items in a result.
func countFallback(items []discover.Scored) int {
	count := 0
	for _, item := range items {
		if item.Score == 0 {
			count++
		}
	}
	return count
}
