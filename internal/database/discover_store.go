// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fifthquarter/bandstand/internal/discover"
	"github.com/fifthquarter/bandstand/internal/metrics"
	"github.com/fifthquarter/bandstand/internal/models"
)

// FindCandidatePool returns attributed, visible videos matching the spec,
// most popular first. Filters combine as OR; an empty filter list selects
// any attributed video, which is how the popularity fallback is expressed.
func (db *DB) FindCandidatePool(ctx context.Context, spec discover.PoolSpec) ([]models.Video, error) {
	var (
		query strings.Builder
		args  []interface{}
	)

	query.WriteString(`SELECT ` + videoColumns + ` FROM videos
	 WHERE is_hidden = FALSE AND attributed_org_id IS NOT NULL`)

	if clause, filterArgs, err := buildFilterClause(spec.Filters); err != nil {
		return nil, err
	} else if clause != "" {
		query.WriteString(" AND (" + clause + ")")
		args = append(args, filterArgs...)
	}

	if spec.ExcludeOrgID != 0 {
		query.WriteString(" AND attributed_org_id <> ?")
		args = append(args, spec.ExcludeOrgID)
	}

	if len(spec.ExcludeVideoIDs) > 0 {
		query.WriteString(" AND id NOT IN (" + placeholderList(len(spec.ExcludeVideoIDs)) + ")")
		for _, id := range spec.ExcludeVideoIDs {
			args = append(args, id)
		}
	}

	query.WriteString(" ORDER BY view_count DESC, id LIMIT ?")
	args = append(args, spec.Limit)

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query.String(), args...)
	metrics.RecordDBQuery("SELECT", "videos", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidate pool: %w", err)
	}
	defer closeWithLog(rows, "videos rows")

	var videos []models.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate row: %w", err)
		}
		videos = append(videos, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read candidate pool: %w", err)
	}

	if err := db.attachTags(ctx, videos); err != nil {
		return nil, err
	}

	return videos, nil
}

// buildFilterClause renders the OR'd filter variants as SQL. Each variant
// maps to exactly one predicate; an unknown variant is a programming error.
func buildFilterClause(filters []discover.Filter) (string, []interface{}, error) {
	var (
		clauses []string
		args    []interface{}
	)

	for _, f := range filters {
		switch f := f.(type) {
		case discover.CategoryEquals:
			clauses = append(clauses, "category_id = ?")
			args = append(args, f.ID)
		case discover.EventNameEquals:
			clauses = append(clauses, "lower(event_name) = lower(?)")
			args = append(args, f.Name)
		case discover.EventYearEquals:
			clauses = append(clauses, "event_year = ?")
			args = append(args, f.Year)
		case discover.TagsOverlap:
			if len(f.Tags) == 0 {
				continue
			}
			clauses = append(clauses,
				"id IN (SELECT video_id FROM video_tags WHERE tag IN ("+placeholderList(len(f.Tags))+"))")
			for _, tag := range f.Tags {
				args = append(args, strings.ToLower(strings.TrimSpace(tag)))
			}
		default:
			return "", nil, fmt.Errorf("unsupported candidate filter %T", f)
		}
	}

	return strings.Join(clauses, " OR "), args, nil
}

// WatchedVideoIDs returns every video the viewer has watched.
func (db *DB) WatchedVideoIDs(ctx context.Context, viewerID string) ([]int64, error) {
	start := time.Now()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT DISTINCT video_id FROM watch_history WHERE viewer_id = ?`, viewerID)
	metrics.RecordDBQuery("SELECT", "watch_history", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query watch history for viewer %q: %w", viewerID, err)
	}
	defer closeWithLog(rows, "watch_history rows")

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan watch history row: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// RecentlyWatched returns the viewer's most recently watched videos, newest
// first, one row per video. Hidden videos are excluded so a since-hidden
// video cannot seed a section.
func (db *DB) RecentlyWatched(ctx context.Context, viewerID string, limit int) ([]models.Video, error) {
	start := time.Now()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+prefixColumns("v.", videoColumns)+`
		 FROM videos v
		 JOIN (SELECT video_id, max(watched_at) AS last_watched
		       FROM watch_history WHERE viewer_id = ?
		       GROUP BY video_id) h ON h.video_id = v.id
		 WHERE v.is_hidden = FALSE
		 ORDER BY h.last_watched DESC
		 LIMIT ?`, viewerID, limit)
	metrics.RecordDBQuery("SELECT", "watch_history", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query recently watched for viewer %q: %w", viewerID, err)
	}
	defer closeWithLog(rows, "watch_history rows")

	var videos []models.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recently watched row: %w", err)
		}
		videos = append(videos, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read recently watched: %w", err)
	}

	if err := db.attachTags(ctx, videos); err != nil {
		return nil, err
	}

	return videos, nil
}

// RecordWatch appends a watch-history event and bumps the video's view
// count. Every play is recorded; deduplication happens at query time.
func (db *DB) RecordWatch(ctx context.Context, viewerID string, videoID int64) error {
	start := time.Now()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO watch_history (id, viewer_id, video_id, watched_at)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP)`,
		uuid.NewString(), viewerID, videoID)
	metrics.RecordDBQuery("INSERT", "watch_history", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to record watch for viewer %q video %d: %w", viewerID, videoID, err)
	}

	start = time.Now()
	_, err = db.conn.ExecContext(ctx,
		`UPDATE videos SET view_count = view_count + 1 WHERE id = ?`, videoID)
	metrics.RecordDBQuery("UPDATE", "videos", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to bump view count for video %d: %w", videoID, err)
	}

	return nil
}

// placeholderList renders n comma-separated SQL placeholders.
func placeholderList(n int) string {
	placeholders := make([]string, n)
	for i := range placeholders {
		placeholders[i] = "?"
	}
	return strings.Join(placeholders, ", ")
}

// prefixColumns qualifies each column in a SELECT list with a table alias.
func prefixColumns(prefix, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = prefix + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
