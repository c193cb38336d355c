// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

package attribution

import (
	"sort"
	"strings"

	"github.com/fifthquarter/bandstand/internal/models"
)

// MatchType classifies how an alias matched, exposed so moderators can audit
// why a video was attributed.
type MatchType string

const (
	// MatchExactBandName is an exact canonical band name occurrence.
	MatchExactBandName MatchType = "exact_band_name"

	// MatchExactSchoolName is an exact institution name occurrence.
	MatchExactSchoolName MatchType = "exact_school_name"

	// MatchPartial is a longer derived alias occurrence.
	MatchPartial MatchType = "partial"

	// MatchAbbreviation is a short alias matched on word boundaries.
	MatchAbbreviation MatchType = "abbreviation"
)

// Candidate is one organization's best-scoring match against a text.
type Candidate struct {
	OrgID        int64     `json:"org_id"`
	Score        int       `json:"score"`
	MatchedAlias string    `json:"matched_alias"`
	MatchType    MatchType `json:"match_type"`
}

const (
	// minAliasLength filters aliases too short to match safely.
	minAliasLength = 3

	// boundaryMaxLength is the longest alias still requiring whole-word
	// matching. Short abbreviations like "jsu" must not match inside
	// longer words.
	boundaryMaxLength = 4

	// earlyWindow is the prefix length that earns the positional bonus.
	// The combined text starts with the title, so this is a title boost.
	earlyWindow = 200

	// earlyBonus is added when the alias occurs inside earlyWindow. It is
	// deliberately not clamped: an exact name match in the title scores
	// 110. Downstream consumers treat the score as ordinal, so the
	// overshoot is preserved as observed behavior.
	earlyBonus = 10
)

// Base scores by match type.
const (
	scoreExactBandName   = 100
	scoreExactSchoolName = 80
	scoreLongPartial     = 60
	scoreShortPartial    = 50
	scoreAbbreviation    = 30
)

// Matcher scores free text against a snapshot of the organization catalog.
// Alias sets are derived once at construction and reused for the whole batch
// run. A Matcher is immutable after construction and safe for concurrent use.
type Matcher struct {
	orgs    []models.Organization
	aliases map[int64][]string
}

// NewMatcher precomputes alias sets for all organizations.
func NewMatcher(orgs []models.Organization) *Matcher {
	aliases := make(map[int64][]string, len(orgs))
	for _, org := range orgs {
		aliases[org.ID] = Aliases(org)
	}
	return &Matcher{orgs: orgs, aliases: aliases}
}

// Match scores the combined searchable text against every organization and
// returns candidates sorted by score descending, at most one per
// organization (its best-scoring alias). Empty text yields no matches.
func (m *Matcher) Match(text string) []Candidate {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return nil
	}

	out := make([]Candidate, 0, 4)
	for _, org := range m.orgs {
		if c, ok := m.bestMatch(org, lower); ok {
			out = append(out, c)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].OrgID < out[j].OrgID
	})
	return out
}

// bestMatch returns the highest-scoring alias match for one organization.
func (m *Matcher) bestMatch(org models.Organization, lower string) (Candidate, bool) {
	best := Candidate{OrgID: org.ID, Score: -1}

	for _, alias := range m.aliases[org.ID] {
		if len(alias) < minAliasLength {
			continue
		}

		idx := aliasIndex(lower, alias)
		if idx < 0 {
			continue
		}

		score, matchType := baseScore(org, alias)
		if idx < earlyWindow {
			score += earlyBonus
		}

		if score > best.Score {
			best = Candidate{
				OrgID:        org.ID,
				Score:        score,
				MatchedAlias: alias,
				MatchType:    matchType,
			}
		}
	}

	return best, best.Score >= 0
}

// baseScore returns the base score and match type for an alias of an
// organization.
func baseScore(org models.Organization, alias string) (int, MatchType) {
	switch {
	case alias == strings.ToLower(org.CanonicalName):
		return scoreExactBandName, MatchExactBandName
	case alias == strings.ToLower(org.SchoolName):
		return scoreExactSchoolName, MatchExactSchoolName
	case len(alias) >= 8:
		return scoreLongPartial, MatchPartial
	case len(alias) >= 5:
		return scoreShortPartial, MatchPartial
	default:
		return scoreAbbreviation, MatchAbbreviation
	}
}

// aliasIndex returns the index of the first acceptable occurrence of alias in
// text, or -1. Aliases up to boundaryMaxLength characters must appear as a
// whole word; longer aliases use plain substring containment.
func aliasIndex(text, alias string) int {
	if len(alias) > boundaryMaxLength {
		return strings.Index(text, alias)
	}

	for from := 0; from <= len(text)-len(alias); {
		idx := strings.Index(text[from:], alias)
		if idx < 0 {
			return -1
		}
		idx += from
		if isBoundary(text, idx, len(alias)) {
			return idx
		}
		from = idx + 1
	}
	return -1
}

// isBoundary reports whether text[idx:idx+n] is delimited by non-alphanumeric
// characters (or the ends of the text).
func isBoundary(text string, idx, n int) bool {
	if idx > 0 && isWordByte(text[idx-1]) {
		return false
	}
	if end := idx + n; end < len(text) && isWordByte(text[end]) {
		return false
	}
	return true
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
