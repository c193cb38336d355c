// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

package discover

import (
	"math"
	"strings"

	"github.com/fifthquarter/bandstand/internal/models"
)

// Similarity weights. The event-year signal is worth 70% of a full event
// match and fires only when event names are absent or differ.
const (
	weightCategory  = 40.0
	weightEvent     = 30.0
	yearFactor      = 0.7
	weightTags      = 20.0
	highQualityMin  = 7
	goodQualityMin  = 5
	bonusHighQual   = 10.0
	bonusGoodQual   = 5.0
	reasonNoSignals = "Discover new bands"
)

// Similarity computes the weighted content-similarity score (0-100, two
// decimals) between a source video and a candidate from a different
// organization, plus a human-readable reason listing the signals that fired.
func Similarity(source, candidate *models.Video) (float64, string) {
	score := 0.0
	reasons := make([]string, 0, 4)

	if source.CategoryID != nil && candidate.CategoryID != nil &&
		*source.CategoryID == *candidate.CategoryID {
		score += weightCategory
		reasons = append(reasons, "Similar style")
	}

	switch {
	case source.EventName != "" && strings.EqualFold(source.EventName, candidate.EventName):
		score += weightEvent
		reasons = append(reasons, "Same event")
	case source.EventYear != 0 && source.EventYear == candidate.EventYear:
		score += weightEvent * yearFactor
		reasons = append(reasons, "Same year")
	}

	if overlap := tagOverlap(source.Tags, candidate.Tags); overlap > 0 {
		ratio := float64(overlap) / float64(len(source.Tags))
		if ratio > 1 {
			ratio = 1
		}
		score += weightTags * ratio
		reasons = append(reasons, "Shared tags")
	}

	switch {
	case candidate.QualityScore >= highQualityMin:
		score += bonusHighQual
		reasons = append(reasons, "High quality")
	case candidate.QualityScore >= goodQualityMin:
		// A modest boost that is not worth calling out to the viewer.
		score += bonusGoodQual
	}

	reason := reasonNoSignals
	if len(reasons) > 0 {
		reason = strings.Join(reasons, ", ")
	}

	return math.Round(score*100) / 100, reason
}

// tagOverlap counts candidate tags present in the source tag list.
func tagOverlap(source, candidate []string) int {
	if len(source) == 0 || len(candidate) == 0 {
		return 0
	}

	set := make(map[string]struct{}, len(source))
	for _, t := range source {
		set[strings.ToLower(t)] = struct{}{}
	}

	overlap := 0
	for _, t := range candidate {
		if _, ok := set[strings.ToLower(t)]; ok {
			overlap++
		}
	}
	return overlap
}
