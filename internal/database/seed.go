// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

package database

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/fifthquarter/bandstand/internal/logging"
	"github.com/fifthquarter/bandstand/internal/models"
)

// SeedMockData loads a small realistic dataset for demos and local
// development. Intended for empty databases only; seeding is skipped when
// organizations already exist.
func (db *DB) SeedMockData(ctx context.Context) error {
	orgs, err := db.GetOrganizations(ctx)
	if err != nil {
		return fmt.Errorf("failed to check existing organizations: %w", err)
	}
	if len(orgs) > 0 {
		logging.Info().Int("organizations", len(orgs)).Msg("Database already has data, skipping seed")
		return nil
	}

	logging.Info().Msg("Seeding database with mock data...")

	// Fixed seed so repeated demo runs produce the same dataset.
	rng := rand.New(rand.NewSource(42))

	bands := []models.Organization{
		{CanonicalName: "Sonic Boom of the South", SchoolName: "Jackson State University", Region: "MS"},
		{CanonicalName: "Human Jukebox", SchoolName: "Southern University", Region: "LA"},
		{CanonicalName: "Marching 100", SchoolName: "Florida A&M University", Region: "FL"},
		{CanonicalName: "World Famed Tiger Marching Band", SchoolName: "Grambling State University", Region: "LA"},
		{CanonicalName: "Ocean of Soul", SchoolName: "Texas Southern University", Region: "TX"},
		{CanonicalName: "Aristocrat of Bands", SchoolName: "Tennessee State University", Region: "TN"},
		{CanonicalName: "Marching Storm", SchoolName: "Prairie View A&M University", Region: "TX"},
		{CanonicalName: "Blue and Gold Marching Machine", SchoolName: "North Carolina A&T State University", Region: "NC"},
	}

	orgIDs := make([]int64, 0, len(bands))
	for i := range bands {
		id, err := db.InsertOrganization(ctx, &bands[i])
		if err != nil {
			return fmt.Errorf("failed to seed organization %q: %w", bands[i].CanonicalName, err)
		}
		orgIDs = append(orgIDs, id)
	}

	events := []struct {
		name string
		year int
	}{
		{"Honda Battle of the Bands", 2025},
		{"Boombox Classic", 2025},
		{"Bayou Classic", 2024},
		{"Florida Classic", 2024},
		{"Southern Heritage Classic", 2025},
	}
	categories := []int64{1, 2, 3} // field show, stand battle, parade
	tagSets := [][]string{
		{"halftime", "brass"},
		{"drumline", "percussion"},
		{"fifth-quarter"},
		{"zero-quarter", "stands"},
		{"dance-line"},
		nil,
	}

	const numVideos = 60
	for i := 0; i < numVideos; i++ {
		band := bands[rng.Intn(len(bands))]
		event := events[rng.Intn(len(events))]
		category := categories[rng.Intn(len(categories))]

		v := models.Video{
			Title: fmt.Sprintf("%s Halftime Show | %s %d",
				band.CanonicalName, event.name, event.year),
			Description:  fmt.Sprintf("%s performing at %s.", band.SchoolName, event.name),
			ChannelLabel: "Band Fan Films",
			CategoryID:   &category,
			EventName:    event.name,
			EventYear:    event.year,
			Tags:         tagSets[rng.Intn(len(tagSets))],
			QualityScore: rng.Intn(11),
			ViewCount:    int64(rng.Intn(200000)),
		}
		if _, err := db.InsertVideo(ctx, &v); err != nil {
			return fmt.Errorf("failed to seed video %d: %w", i, err)
		}
	}

	logging.Info().
		Int("organizations", len(orgIDs)).
		Int("videos", numVideos).
		Msg("Mock data seeded")

	return nil
}
