// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

package models

// Video is an ingested video with optional attribution fields.
//
// Rows are created by the ingestion layer with all attribution fields nil.
// The attribution batch fills AttributedOrgID, OpponentOrgID, and
// ConfidenceScore exactly once per video; re-attribution requires an explicit
// reset. ConfidenceScore is set if and only if AttributedOrgID is set.
type Video struct {
	// ID is the unique video identifier.
	ID int64 `json:"id"`

	// Title is the video title from the source platform.
	Title string `json:"title"`

	// Description is the free-text video description.
	Description string `json:"description"`

	// ChannelLabel is the uploading channel's display name.
	ChannelLabel string `json:"channel_label"`

	// AttributedOrgID is the organization this video belongs to, if known.
	AttributedOrgID *int64 `json:"attributed_org_id,omitempty"`

	// OpponentOrgID is the second organization for battle videos.
	OpponentOrgID *int64 `json:"opponent_org_id,omitempty"`

	// ConfidenceScore is the attribution confidence (0-100, uncapped
	// positional bonus can push an exact match to 110).
	ConfidenceScore *int `json:"confidence_score,omitempty"`

	// CategoryID classifies the performance (field show, stand battle, parade).
	CategoryID *int64 `json:"category_id,omitempty"`

	// EventName is the event the performance was filmed at, if known.
	EventName string `json:"event_name,omitempty"`

	// EventYear is the event year, zero when unknown.
	EventYear int `json:"event_year,omitempty"`

	// Tags is an ordered list of moderator-curated tags.
	Tags []string `json:"tags,omitempty"`

	// QualityScore is a moderator-assigned quality rating (0-10).
	QualityScore int `json:"quality_score"`

	// ViewCount is the popularity metric from the source platform.
	ViewCount int64 `json:"view_count"`

	// IsHidden excludes the video from discovery surfaces.
	IsHidden bool `json:"is_hidden"`
}

// IsAttributed reports whether the video has been attributed to an organization.
func (v *Video) IsAttributed() bool {
	return v.AttributedOrgID != nil
}

// OrgID returns the attributed organization ID, or zero when unattributed.
func (v *Video) OrgID() int64 {
	if v.AttributedOrgID == nil {
		return 0
	}
	return *v.AttributedOrgID
}

// SearchableText returns the combined free text used for attribution matching:
// title, description, and channel label joined with separators.
func (v *Video) SearchableText() string {
	return v.Title + " " + v.Description + " " + v.ChannelLabel
}
