// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

package models

import "time"

// AttributionRecord is the audit view of a video's attribution state: which
// organization it was credited to, on what evidence, and when.
type AttributionRecord struct {
	VideoID       int64      `json:"video_id"`
	OrgID         *int64     `json:"org_id,omitempty"`
	OpponentOrgID *int64     `json:"opponent_org_id,omitempty"`
	Confidence    *int       `json:"confidence,omitempty"`
	MatchedAlias  *string    `json:"matched_alias,omitempty"`
	MatchType     *string    `json:"match_type,omitempty"`
	AttributedAt  *time.Time `json:"attributed_at,omitempty"`
}

// IsAttributed reports whether the record carries an attribution.
func (r *AttributionRecord) IsAttributed() bool {
	return r.OrgID != nil
}
