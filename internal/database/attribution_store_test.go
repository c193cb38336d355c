// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

package database

import (
	"context"
	"errors"
	"testing"

	"github.com/fifthquarter/bandstand/internal/attribution"
	"github.com/fifthquarter/bandstand/internal/discover"
	"github.com/fifthquarter/bandstand/internal/models"
)

func TestGetVideoNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetVideo(context.Background(), 12345)
	if !errors.Is(err, discover.ErrVideoNotFound) {
		t.Fatalf("Expected ErrVideoNotFound, got %v", err)
	}
}

func TestFindUnattributedVideos(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	orgID := insertTestOrg(t, db, "Ocean of Soul", "Texas Southern University", "TX")

	first := insertTestVideo(t, db, models.Video{Title: "Ocean of Soul at the Boombox Classic"})
	insertTestVideo(t, db, models.Video{Title: "TXSU Drumline Feature"})
	hidden := insertTestVideo(t, db, models.Video{Title: "Removed upload", IsHidden: true})

	// Attribute the first video; it must drop out of the backlog.
	err := db.WriteAttribution(ctx, attribution.Attribution{
		VideoID:      first,
		OrgID:        orgID,
		Confidence:   100,
		MatchedAlias: "ocean of soul",
		MatchType:    attribution.MatchExactBandName,
	})
	if err != nil {
		t.Fatalf("WriteAttribution failed: %v", err)
	}

	backlog, err := db.FindUnattributedVideos(ctx, 10)
	if err != nil {
		t.Fatalf("FindUnattributedVideos failed: %v", err)
	}
	if len(backlog) != 1 {
		t.Fatalf("Expected 1 unattributed video, got %d", len(backlog))
	}
	if backlog[0].Title != "TXSU Drumline Feature" {
		t.Errorf("Unexpected backlog video: %q", backlog[0].Title)
	}
	for _, v := range backlog {
		if v.ID == hidden {
			t.Error("Hidden video must not appear in the backlog")
		}
	}
}

func TestWriteAttributionFirstWins(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	orgA := insertTestOrg(t, db, "Marching Storm", "Prairie View A&M University", "TX")
	orgB := insertTestOrg(t, db, "Human Jukebox", "Southern University", "LA")
	videoID := insertTestVideo(t, db, models.Video{Title: "Marching Storm vs Human Jukebox"})

	write := attribution.Attribution{
		VideoID:       videoID,
		OrgID:         orgA,
		OpponentOrgID: &orgB,
		Confidence:    90,
		MatchedAlias:  "marching storm",
		MatchType:     attribution.MatchExactBandName,
	}
	if err := db.WriteAttribution(ctx, write); err != nil {
		t.Fatalf("First WriteAttribution failed: %v", err)
	}

	// A second write for the same video must be rejected, not overwrite.
	write.OrgID = orgB
	err := db.WriteAttribution(ctx, write)
	if !errors.Is(err, attribution.ErrAlreadyAttributed) {
		t.Fatalf("Expected ErrAlreadyAttributed, got %v", err)
	}

	rec, err := db.GetAttribution(ctx, videoID)
	if err != nil {
		t.Fatalf("GetAttribution failed: %v", err)
	}
	if rec == nil || rec.OrgID == nil {
		t.Fatal("Expected attribution record with org")
	}
	if *rec.OrgID != orgA {
		t.Errorf("Expected first writer org %d to survive, got %d", orgA, *rec.OrgID)
	}
	if rec.OpponentOrgID == nil || *rec.OpponentOrgID != orgB {
		t.Errorf("Expected opponent org %d, got %v", orgB, rec.OpponentOrgID)
	}
	if rec.Confidence == nil || *rec.Confidence != 90 {
		t.Errorf("Expected confidence 90, got %v", rec.Confidence)
	}
	if rec.MatchType == nil || *rec.MatchType != string(attribution.MatchExactBandName) {
		t.Errorf("Unexpected match type: %v", rec.MatchType)
	}
	if rec.AttributedAt == nil {
		t.Error("Expected attributed_at timestamp")
	}
}

func TestWriteAttributionMissingVideo(t *testing.T) {
	db := setupTestDB(t)

	orgID := insertTestOrg(t, db, "Aristocrat of Bands", "Tennessee State University", "TN")

	err := db.WriteAttribution(context.Background(), attribution.Attribution{
		VideoID:      999,
		OrgID:        orgID,
		Confidence:   80,
		MatchedAlias: "aristocrat of bands",
		MatchType:    attribution.MatchExactBandName,
	})
	if err == nil {
		t.Fatal("Expected error for missing video")
	}
	if errors.Is(err, attribution.ErrAlreadyAttributed) {
		t.Fatal("Missing video must not be reported as already attributed")
	}
}

func TestResetAttributions(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	orgID := insertTestOrg(t, db, "Marching 100", "Florida A&M University", "FL")
	videoID := insertTestVideo(t, db, models.Video{Title: "Marching 100 Halftime 2025"})

	err := db.WriteAttribution(ctx, attribution.Attribution{
		VideoID:      videoID,
		OrgID:        orgID,
		Confidence:   100,
		MatchedAlias: "marching 100",
		MatchType:    attribution.MatchExactBandName,
	})
	if err != nil {
		t.Fatalf("WriteAttribution failed: %v", err)
	}

	reset, err := db.ResetAttributions(ctx)
	if err != nil {
		t.Fatalf("ResetAttributions failed: %v", err)
	}
	if reset != 1 {
		t.Errorf("Expected 1 video reset, got %d", reset)
	}

	rec, err := db.GetAttribution(ctx, videoID)
	if err != nil {
		t.Fatalf("GetAttribution failed: %v", err)
	}
	if rec.IsAttributed() {
		t.Error("Expected video to be unattributed after reset")
	}

	// The video is back in the backlog and attributable again.
	backlog, err := db.FindUnattributedVideos(ctx, 10)
	if err != nil {
		t.Fatalf("FindUnattributedVideos failed: %v", err)
	}
	if len(backlog) != 1 || backlog[0].ID != videoID {
		t.Errorf("Expected reset video back in backlog, got %v", backlog)
	}
}

func TestGetAttributionMissingVideo(t *testing.T) {
	db := setupTestDB(t)

	rec, err := db.GetAttribution(context.Background(), 12345)
	if err != nil {
		t.Fatalf("GetAttribution failed: %v", err)
	}
	if rec != nil {
		t.Errorf("Expected nil record for missing video, got %+v", rec)
	}
}
