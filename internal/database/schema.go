// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

/*
schema.go - Database Schema Management

Tables:
  - organizations: canonical band identities (canonical name, school, region)
  - videos: video metadata plus attribution audit columns
    (attributed_org_id, opponent_org_id, confidence_score, matched_alias,
    match_type, attributed_at)
  - video_tags: normalized tag rows, one per (video, tag)
  - watch_history: per-viewer watch events for exclusion and sections

Schema Strategy (Pre-Release):
All columns are defined in the initial CREATE TABLE statements. Versioned
migrations in migrations.go take over once released databases exist.

Index Strategy:
Indexes cover the hot paths: unattributed scans, candidate pool filters
(category, event, year), tag lookups, and per-viewer history.
*/
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}

// tableCreationQueries returns the table creation SQL statements
func tableCreationQueries() []string {
	return []string{
		`CREATE SEQUENCE IF NOT EXISTS organizations_id_seq;`,
		`CREATE TABLE IF NOT EXISTS organizations (
			id BIGINT PRIMARY KEY DEFAULT nextval('organizations_id_seq'),
			canonical_name TEXT NOT NULL UNIQUE,
			school_name TEXT NOT NULL DEFAULT '',
			region TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,

		`CREATE SEQUENCE IF NOT EXISTS videos_id_seq;`,
		`CREATE TABLE IF NOT EXISTS videos (
			id BIGINT PRIMARY KEY DEFAULT nextval('videos_id_seq'),
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			channel_label TEXT NOT NULL DEFAULT '',

			-- Attribution audit columns. NULL attributed_org_id means
			-- unattributed; the remaining audit columns are only set
			-- together with it.
			attributed_org_id BIGINT,
			opponent_org_id BIGINT,
			confidence_score INTEGER,
			matched_alias TEXT,
			match_type TEXT,
			attributed_at TIMESTAMP,

			-- Similarity signals
			category_id BIGINT,
			event_name TEXT NOT NULL DEFAULT '',
			event_year INTEGER NOT NULL DEFAULT 0,
			quality_score INTEGER NOT NULL DEFAULT 0,

			-- Popularity and moderation
			view_count BIGINT NOT NULL DEFAULT 0,
			is_hidden BOOLEAN NOT NULL DEFAULT FALSE,

			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,

		`CREATE TABLE IF NOT EXISTS video_tags (
			video_id BIGINT NOT NULL,
			tag TEXT NOT NULL,
			PRIMARY KEY (video_id, tag)
		);`,

		`CREATE TABLE IF NOT EXISTS watch_history (
			id UUID PRIMARY KEY,
			viewer_id TEXT NOT NULL,
			video_id BIGINT NOT NULL,
			watched_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
	}
}

// createIndexes creates indexes for the hot query paths
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_videos_attributed_org ON videos (attributed_org_id);`,
		`CREATE INDEX IF NOT EXISTS idx_videos_category ON videos (category_id);`,
		`CREATE INDEX IF NOT EXISTS idx_videos_event ON videos (event_name, event_year);`,
		`CREATE INDEX IF NOT EXISTS idx_videos_view_count ON videos (view_count);`,
		`CREATE INDEX IF NOT EXISTS idx_video_tags_tag ON video_tags (tag);`,
		`CREATE INDEX IF NOT EXISTS idx_watch_history_viewer ON watch_history (viewer_id, watched_at);`,
	}

	for _, query := range indexes {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}

	return nil
}
