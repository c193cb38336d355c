// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

// Package discover computes content-similarity recommendations over
// attributed videos.
//
// The pipeline is: fetch a candidate pool from storage (different
// organization than the source, by design, to bias discovery toward new
// bands), score each candidate with a weighted similarity formula, diversify
// so no single organization dominates, and backfill from a popularity-ranked
// fallback pool when results fall short. The Engine orchestrates these stages
// plus watch-history exclusion, "because you watched" sections, and caching
// of anonymous results.
//
// Scoring and diversification are pure functions over snapshotted inputs.
// This package depends on no other internal package except models; storage
// and caching are injected through narrow interfaces so the database layer
// can implement them without circular imports.
package discover
