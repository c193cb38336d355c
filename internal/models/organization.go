// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

package models

// Organization is a canonical band entity that videos are attributed to.
// Search aliases are derived from these fields at runtime and never persisted;
// see the attribution package.
type Organization struct {
	// ID is the unique organization identifier.
	ID int64 `json:"id"`

	// CanonicalName is the band's primary display name
	// (e.g., "Sonic Boom of the South").
	CanonicalName string `json:"canonical_name"`

	// SchoolName is the full institution name
	// (e.g., "Jackson State University").
	SchoolName string `json:"school_name"`

	// Region is the state or locale code (e.g., "MS").
	Region string `json:"region"`
}
