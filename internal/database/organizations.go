// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/fifthquarter/bandstand/internal/metrics"
	"github.com/fifthquarter/bandstand/internal/models"
)

// InsertOrganization inserts a new organization and returns its ID.
func (db *DB) InsertOrganization(ctx context.Context, org *models.Organization) (int64, error) {
	start := time.Now()

	var id int64
	err := db.conn.QueryRowContext(ctx,
		`INSERT INTO organizations (canonical_name, school_name, region)
		 VALUES (?, ?, ?) RETURNING id`,
		org.CanonicalName, org.SchoolName, org.Region).Scan(&id)
	metrics.RecordDBQuery("INSERT", "organizations", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("failed to insert organization %q: %w", org.CanonicalName, err)
	}

	return id, nil
}

// GetOrganizations returns all organizations ordered by ID. The attribution
// runner builds its alias matcher from this list.
func (db *DB) GetOrganizations(ctx context.Context) ([]models.Organization, error) {
	start := time.Now()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, canonical_name, school_name, region FROM organizations ORDER BY id`)
	metrics.RecordDBQuery("SELECT", "organizations", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query organizations: %w", err)
	}
	defer closeWithLog(rows, "organizations rows")

	var orgs []models.Organization
	for rows.Next() {
		var org models.Organization
		if err := rows.Scan(&org.ID, &org.CanonicalName, &org.SchoolName, &org.Region); err != nil {
			return nil, fmt.Errorf("failed to scan organization row: %w", err)
		}
		orgs = append(orgs, org)
	}

	return orgs, rows.Err()
}

// CountByOrganization returns the number of attributed, visible videos per
// organization, keyed by organization ID. Organizations with no videos are
// absent from the map.
func (db *DB) CountByOrganization(ctx context.Context) (map[int64]int64, error) {
	start := time.Now()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT attributed_org_id, count(*)
		 FROM videos
		 WHERE attributed_org_id IS NOT NULL AND is_hidden = FALSE
		 GROUP BY attributed_org_id`)
	metrics.RecordDBQuery("SELECT", "videos", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to count videos by organization: %w", err)
	}
	defer closeWithLog(rows, "videos rows")

	counts := make(map[int64]int64)
	for rows.Next() {
		var (
			orgID int64
			count int64
		)
		if err := rows.Scan(&orgID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count row: %w", err)
		}
		counts[orgID] = count
	}

	return counts, rows.Err()
}

// GetOrganization returns one organization by ID, or nil when absent.
func (db *DB) GetOrganization(ctx context.Context, id int64) (*models.Organization, error) {
	start := time.Now()

	var org models.Organization
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, canonical_name, school_name, region FROM organizations WHERE id = ?`,
		id).Scan(&org.ID, &org.CanonicalName, &org.SchoolName, &org.Region)
	metrics.RecordDBQuery("SELECT", "organizations", time.Since(start), err)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query organization %d: %w", id, err)
	}

	return &org, nil
}
