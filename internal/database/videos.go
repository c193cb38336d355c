// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/fifthquarter/bandstand/internal/attribution"
	"github.com/fifthquarter/bandstand/internal/discover"
	"github.com/fifthquarter/bandstand/internal/metrics"
	"github.com/fifthquarter/bandstand/internal/models"
)

// videoColumns is the SELECT list matched by scanVideo.
const videoColumns = `id, title, description, channel_label,
	attributed_org_id, opponent_org_id, confidence_score,
	category_id, event_name, event_year, quality_score,
	view_count, is_hidden`

// scanVideo scans one row of videoColumns into a Video.
func scanVideo(rows *sql.Rows) (models.Video, error) {
	var (
		v          models.Video
		orgID      sql.NullInt64
		opponentID sql.NullInt64
		confidence sql.NullInt64
		categoryID sql.NullInt64
	)

	err := rows.Scan(&v.ID, &v.Title, &v.Description, &v.ChannelLabel,
		&orgID, &opponentID, &confidence,
		&categoryID, &v.EventName, &v.EventYear, &v.QualityScore,
		&v.ViewCount, &v.IsHidden)
	if err != nil {
		return models.Video{}, err
	}

	if orgID.Valid {
		v.AttributedOrgID = &orgID.Int64
	}
	if opponentID.Valid {
		v.OpponentOrgID = &opponentID.Int64
	}
	if confidence.Valid {
		c := int(confidence.Int64)
		v.ConfidenceScore = &c
	}
	if categoryID.Valid {
		v.CategoryID = &categoryID.Int64
	}

	return v, nil
}

// InsertVideo inserts a video and its tags, returning the new ID.
func (db *DB) InsertVideo(ctx context.Context, v *models.Video) (int64, error) {
	start := time.Now()

	var id int64
	err := db.conn.QueryRowContext(ctx,
		`INSERT INTO videos (title, description, channel_label, category_id,
			event_name, event_year, quality_score, view_count, is_hidden)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		v.Title, v.Description, v.ChannelLabel, nullableID(v.CategoryID),
		v.EventName, v.EventYear, v.QualityScore, v.ViewCount, v.IsHidden).Scan(&id)
	metrics.RecordDBQuery("INSERT", "videos", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("failed to insert video %q: %w", v.Title, err)
	}

	for _, tag := range v.Tags {
		tagStart := time.Now()
		_, err := db.conn.ExecContext(ctx,
			`INSERT INTO video_tags (video_id, tag) VALUES (?, ?) ON CONFLICT DO NOTHING`,
			id, strings.ToLower(strings.TrimSpace(tag)))
		metrics.RecordDBQuery("INSERT", "video_tags", time.Since(tagStart), err)
		if err != nil {
			return 0, fmt.Errorf("failed to insert tag %q for video %d: %w", tag, id, err)
		}
	}

	return id, nil
}

// GetVideo returns one video with its tags. Absence is reported as
// discover.ErrVideoNotFound so callers can map it to a 404 with errors.Is.
func (db *DB) GetVideo(ctx context.Context, id int64) (*models.Video, error) {
	start := time.Now()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+videoColumns+` FROM videos WHERE id = ?`, id)
	metrics.RecordDBQuery("SELECT", "videos", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query video %d: %w", id, err)
	}
	defer closeWithLog(rows, "videos rows")

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to read video %d: %w", id, err)
		}
		return nil, fmt.Errorf("video %d: %w", id, discover.ErrVideoNotFound)
	}

	v, err := scanVideo(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan video %d: %w", id, err)
	}

	videos := []models.Video{v}
	if err := db.attachTags(ctx, videos); err != nil {
		return nil, err
	}

	return &videos[0], nil
}

// FindUnattributedVideos returns up to limit visible videos that have no
// attribution yet, oldest first so the backlog drains in insertion order.
func (db *DB) FindUnattributedVideos(ctx context.Context, limit int) ([]models.Video, error) {
	start := time.Now()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+videoColumns+` FROM videos
		 WHERE attributed_org_id IS NULL AND is_hidden = FALSE
		 ORDER BY id
		 LIMIT ?`, limit)
	metrics.RecordDBQuery("SELECT", "videos", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query unattributed videos: %w", err)
	}
	defer closeWithLog(rows, "videos rows")

	var videos []models.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video row: %w", err)
		}
		videos = append(videos, v)
	}

	return videos, rows.Err()
}

// WriteAttribution persists attribution fields for one video. The guard
// `attributed_org_id IS NULL` makes the write first-wins: a video
// attributed by a concurrent run is reported as ErrAlreadyAttributed, never
// overwritten.
func (db *DB) WriteAttribution(ctx context.Context, a attribution.Attribution) error {
	start := time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE videos
		 SET attributed_org_id = ?, opponent_org_id = ?, confidence_score = ?,
		     matched_alias = ?, match_type = ?, attributed_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND attributed_org_id IS NULL`,
		a.OrgID, nullableID(a.OpponentOrgID), a.Confidence,
		a.MatchedAlias, string(a.MatchType), a.VideoID)
	metrics.RecordDBQuery("UPDATE", "videos", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to write attribution for video %d: %w", a.VideoID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected for video %d: %w", a.VideoID, err)
	}
	if affected == 0 {
		var exists bool
		if err := db.conn.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM videos WHERE id = ?)`, a.VideoID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check video %d: %w", a.VideoID, err)
		}
		if !exists {
			return fmt.Errorf("video %d not found", a.VideoID)
		}
		return attribution.ErrAlreadyAttributed
	}

	return nil
}

// ResetAttributions clears attribution state on every attributed video and
// returns the number of videos reset. Operational tool for re-running the
// pipeline after alias table changes.
func (db *DB) ResetAttributions(ctx context.Context) (int64, error) {
	start := time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE videos
		 SET attributed_org_id = NULL, opponent_org_id = NULL, confidence_score = NULL,
		     matched_alias = NULL, match_type = NULL, attributed_at = NULL
		 WHERE attributed_org_id IS NOT NULL`)
	metrics.RecordDBQuery("UPDATE", "videos", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("failed to reset attributions: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}

	return affected, nil
}

// GetAttribution returns the attribution audit record for one video, or
// nil when the video does not exist.
func (db *DB) GetAttribution(ctx context.Context, videoID int64) (*models.AttributionRecord, error) {
	start := time.Now()

	var (
		rec          models.AttributionRecord
		orgID        sql.NullInt64
		opponentID   sql.NullInt64
		confidence   sql.NullInt64
		matchedAlias sql.NullString
		matchType    sql.NullString
		attributedAt sql.NullTime
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, attributed_org_id, opponent_org_id, confidence_score,
		        matched_alias, match_type, attributed_at
		 FROM videos WHERE id = ?`, videoID).Scan(
		&rec.VideoID, &orgID, &opponentID, &confidence,
		&matchedAlias, &matchType, &attributedAt)
	metrics.RecordDBQuery("SELECT", "videos", time.Since(start), err)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query attribution for video %d: %w", videoID, err)
	}

	if orgID.Valid {
		rec.OrgID = &orgID.Int64
	}
	if opponentID.Valid {
		rec.OpponentOrgID = &opponentID.Int64
	}
	if confidence.Valid {
		c := int(confidence.Int64)
		rec.Confidence = &c
	}
	if matchedAlias.Valid {
		rec.MatchedAlias = &matchedAlias.String
	}
	if matchType.Valid {
		rec.MatchType = &matchType.String
	}
	if attributedAt.Valid {
		t := attributedAt.Time
		rec.AttributedAt = &t
	}

	return &rec, nil
}

// attachTags loads the tag rows for a batch of videos in one query.
func (db *DB) attachTags(ctx context.Context, videos []models.Video) error {
	if len(videos) == 0 {
		return nil
	}

	index := make(map[int64]int, len(videos))
	placeholders := make([]string, 0, len(videos))
	args := make([]interface{}, 0, len(videos))
	for i := range videos {
		index[videos[i].ID] = i
		placeholders = append(placeholders, "?")
		args = append(args, videos[i].ID)
	}

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT video_id, tag FROM video_tags WHERE video_id IN (`+strings.Join(placeholders, ", ")+`) ORDER BY video_id, tag`,
		args...)
	metrics.RecordDBQuery("SELECT", "video_tags", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to query video tags: %w", err)
	}
	defer closeWithLog(rows, "video_tags rows")

	for rows.Next() {
		var (
			videoID int64
			tag     string
		)
		if err := rows.Scan(&videoID, &tag); err != nil {
			return fmt.Errorf("failed to scan tag row: %w", err)
		}
		if i, ok := index[videoID]; ok {
			videos[i].Tags = append(videos[i].Tags, tag)
		}
	}

	return rows.Err()
}

// nullableID converts a *int64 to a driver-friendly value.
func nullableID(id *int64) interface{} {
	if id == nil {
		return nil
	}
	return *id
}
