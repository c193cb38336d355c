// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

// Versioned schema migration support.
//
// Migrations are tracked in the schema_migrations table and run exactly
// once. Pre-release, the full schema lives in schema.go and the migration
// list is empty; once released databases exist, schema changes are added
// here append-only, starting from version 1.

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/fifthquarter/bandstand/internal/logging"
)

// Migration represents a versioned database migration.
type Migration struct {
	Version     int       // Unique version number (monotonically increasing)
	Name        string    // Human-readable migration name
	Description string    // Description of what this migration does
	SQL         string    // SQL statement to execute
	AppliedAt   time.Time // When the migration was applied (populated on query)
}

// schemaMigrationsTable creates the migration tracking table
const schemaMigrationsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT,
	applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// getMigrations returns all versioned migrations in order.
//
// Migrations MUST be append-only - never modify or remove existing
// migrations once users have databases with data.
func (db *DB) getMigrations() []Migration {
	return []Migration{
		// Post-release migrations will be added here.
		// Example:
		// {Version: 1, Name: "add_duration_column", Description: "Add video duration for watch-time analytics",
		//  SQL: `ALTER TABLE videos ADD COLUMN IF NOT EXISTS duration_seconds INTEGER;`},
	}
}

// createMigrationsTable creates the schema_migrations table if it doesn't exist
func (db *DB) createMigrationsTable(ctx context.Context) error {
	_, err := db.conn.ExecContext(ctx, schemaMigrationsTable)
	return err
}

// getAppliedMigrations returns a map of version -> Migration for all applied migrations
func (db *DB) getAppliedMigrations(ctx context.Context) (map[int]Migration, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT version, name, description, applied_at FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer closeQuietly(rows)

	applied := make(map[int]Migration)
	for rows.Next() {
		var m Migration
		if err := rows.Scan(&m.Version, &m.Name, &m.Description, &m.AppliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied[m.Version] = m
	}
	return applied, rows.Err()
}

// runVersionedMigrations executes only migrations that have not been
// applied yet, recording each one in schema_migrations.
func (db *DB) runVersionedMigrations() error {
	ctx, cancel := schemaContext()
	defer cancel()

	if err := db.createMigrationsTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := db.getAppliedMigrations(ctx)
	if err != nil {
		return err
	}

	for _, m := range db.getMigrations() {
		if _, done := applied[m.Version]; done {
			continue
		}

		logging.Info().
			Int("version", m.Version).
			Str("name", m.Name).
			Msg("Applying database migration")

		if _, err := db.conn.ExecContext(ctx, m.SQL); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Name, err)
		}

		if _, err := db.conn.ExecContext(ctx,
			`INSERT INTO schema_migrations (version, name, description) VALUES (?, ?, ?)`,
			m.Version, m.Name, m.Description); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// GetCurrentSchemaVersion returns the highest applied migration version, or
// zero for a fresh database.
func (db *DB) GetCurrentSchemaVersion(ctx context.Context) (int, error) {
	var version int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to query schema version: %w", err)
	}
	return version, nil
}
