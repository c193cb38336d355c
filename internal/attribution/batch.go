// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

package attribution

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/fifthquarter/bandstand/internal/models"
)

// ErrAlreadyAttributed is returned by Store.WriteAttribution when the video
// was attributed between fetch and write. The batch never overwrites an
// existing attribution; bulk reset is a separate operational procedure.
var ErrAlreadyAttributed = errors.New("video is already attributed")

// Store is the persistence collaborator for attribution runs.
type Store interface {
	// GetOrganizations returns the full canonical organization catalog.
	GetOrganizations(ctx context.Context) ([]models.Organization, error)

	// FindUnattributedVideos returns up to limit videos with no attribution.
	FindUnattributedVideos(ctx context.Context, limit int) ([]models.Video, error)

	// WriteAttribution persists attribution fields for one video. It must
	// only write when the video is currently unattributed, returning
	// ErrAlreadyAttributed otherwise.
	WriteAttribution(ctx context.Context, a Attribution) error
}

// Attribution is the write-back record for one attributed video.
type Attribution struct {
	VideoID       int64     `json:"video_id"`
	OrgID         int64     `json:"org_id"`
	OpponentOrgID *int64    `json:"opponent_org_id,omitempty"`
	Confidence    int       `json:"confidence"`
	MatchedAlias  string    `json:"matched_alias"`
	MatchType     MatchType `json:"match_type"`
}

// DefaultMinConfidence is the acceptance threshold applied when Options
// leaves MinConfidence unset.
const DefaultMinConfidence = 30

// unboundedFetchSize caps a single backlog fetch when no limit is given.
const unboundedFetchSize = 10000

// Options are the batch control-surface parameters. They are passed
// explicitly by the scheduler or admin API; the runner reads no ambient
// configuration.
type Options struct {
	// DryRun computes attributions without writing them.
	DryRun bool `json:"dry_run"`

	// MinConfidence is the acceptance threshold (0-100). Zero means
	// DefaultMinConfidence.
	MinConfidence int `json:"min_confidence"`

	// Limit bounds the number of videos processed. Zero or negative means
	// unbounded (capped at unboundedFetchSize per run).
	Limit int `json:"limit"`
}

// Result is the accumulator for one batch run. It is an explicit value
// threaded through each step and merged by callers, so concurrent runs over
// disjoint video sets compose without shared mutable state.
type Result struct {
	// Processed is the number of videos examined.
	Processed int `json:"processed"`

	// Attributed is the number of videos attributed (or that would be, in
	// a dry run).
	Attributed int `json:"attributed"`

	// Battles is the number of attributed videos with an opponent.
	Battles int `json:"battles"`

	// NoMatch is the number of videos with no acceptable match, including
	// videos with empty searchable text.
	NoMatch int `json:"no_match"`

	// Skipped is the number of videos attributed concurrently by another
	// run between fetch and write.
	Skipped int `json:"skipped"`

	// Failed is the number of per-video write failures.
	Failed int `json:"failed"`
}

// Merge combines two accumulators.
func (r Result) Merge(other Result) Result {
	return Result{
		Processed:  r.Processed + other.Processed,
		Attributed: r.Attributed + other.Attributed,
		Battles:    r.Battles + other.Battles,
		NoMatch:    r.NoMatch + other.NoMatch,
		Skipped:    r.Skipped + other.Skipped,
		Failed:     r.Failed + other.Failed,
	}
}

// Runner executes attribution batches over the unattributed backlog.
type Runner struct {
	store   Store
	logger  zerolog.Logger
	limiter *rate.Limiter
}

// NewRunner creates a batch runner. writesPerSecond throttles attribution
// writes to the store; zero or negative disables throttling.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewRunner(store Store, logger zerolog.Logger, writesPerSecond float64) *Runner {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if writesPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(writesPerSecond), 1)
	}
	return &Runner{
		store:   store,
		logger:  logger.With().Str("component", "attribution").Logger(),
		limiter: limiter,
	}
}

// Run processes one batch of unattributed videos and returns the accumulator.
// Per-video write failures are logged and counted, never fatal to the run;
// only catalog/backlog fetch failures and context cancellation abort.
func (r *Runner) Run(ctx context.Context, opts Options) (Result, error) {
	var result Result

	if opts.MinConfidence == 0 {
		opts.MinConfidence = DefaultMinConfidence
	}
	if opts.MinConfidence < 0 || opts.MinConfidence > 100 {
		return result, fmt.Errorf("min confidence %d out of range [0,100]", opts.MinConfidence)
	}

	orgs, err := r.store.GetOrganizations(ctx)
	if err != nil {
		return result, fmt.Errorf("get organizations: %w", err)
	}
	matcher := NewMatcher(orgs)

	limit := opts.Limit
	if limit <= 0 {
		limit = unboundedFetchSize
	}

	videos, err := r.store.FindUnattributedVideos(ctx, limit)
	if err != nil {
		return result, fmt.Errorf("find unattributed videos: %w", err)
	}

	r.logger.Info().
		Int("backlog", len(videos)).
		Int("min_confidence", opts.MinConfidence).
		Bool("dry_run", opts.DryRun).
		Msg("starting attribution batch")

	for i := range videos {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result = result.Merge(r.processVideo(ctx, matcher, &videos[i], opts))
	}

	r.logger.Info().
		Int("processed", result.Processed).
		Int("attributed", result.Attributed).
		Int("battles", result.Battles).
		Int("no_match", result.NoMatch).
		Int("failed", result.Failed).
		Msg("attribution batch complete")

	return result, nil
}

// processVideo attributes a single video and returns its step accumulator.
func (r *Runner) processVideo(ctx context.Context, matcher *Matcher, video *models.Video, opts Options) Result {
	step := Result{Processed: 1}

	text := video.SearchableText()
	if strings.TrimSpace(text) == "" {
		step.NoMatch = 1
		return step
	}

	candidates := matcher.Match(text)
	accepted := acceptedCandidates(candidates, opts.MinConfidence)
	if len(accepted) == 0 {
		step.NoMatch = 1
		return step
	}

	top := accepted[0]
	attribution := Attribution{
		VideoID:      video.ID,
		OrgID:        top.OrgID,
		Confidence:   top.Score,
		MatchedAlias: top.MatchedAlias,
		MatchType:    top.MatchType,
	}

	// A battle needs the keyword signal and a second accepted organization.
	if IsBattleVideo(text) && len(accepted) >= 2 {
		opponent := accepted[1].OrgID
		attribution.OpponentOrgID = &opponent
		step.Battles = 1
	}

	if opts.DryRun {
		step.Attributed = 1
		return step
	}

	if err := r.limiter.Wait(ctx); err != nil {
		step.Failed = 1
		return step
	}

	switch err := r.store.WriteAttribution(ctx, attribution); {
	case err == nil:
		step.Attributed = 1
	case errors.Is(err, ErrAlreadyAttributed):
		step.Battles = 0
		step.Skipped = 1
	default:
		step.Battles = 0
		step.Failed = 1
		r.logger.Error().
			Err(err).
			Int64("video_id", video.ID).
			Int64("org_id", top.OrgID).
			Msg("attribution write failed")
	}

	return step
}

// acceptedCandidates filters candidates at or above the acceptance threshold.
// Candidates arrive sorted by score descending.
func acceptedCandidates(candidates []Candidate, minConfidence int) []Candidate {
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Score >= minConfidence {
			out = append(out, c)
		}
	}
	return out
}
