// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

// Package models defines Bandstand's core data structures: the canonical
// Organization catalog entry, the attributable Video, and the persisted
// AttributionRecord moderators audit. Packages share these types instead of
// defining their own copies; behavior lives in the packages that use them.
package models
