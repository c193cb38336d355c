// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

// Package attribution resolves noisy free-text video metadata against the
// canonical organization catalog.
//
// The pipeline has three pure stages plus a batch orchestrator:
//
//   - Aliases derives the lowercase search-alias set for an organization
//     from its canonical name, school name, and region. Well-known nicknames
//     and abbreviation collisions live in declarative rule tables
//     (alias_rules.go), not per-record conditionals.
//   - Matcher scores combined video text (title + description + channel)
//     against every organization's alias set and returns ranked candidates
//     with the matched alias and match type exposed for moderation audits.
//   - IsBattleVideo flags head-to-head event text via a fixed keyword table.
//   - Runner walks the unattributed backlog, attributes each video at most
//     once, and returns an explicit Result accumulator. Per-video write
//     failures are logged and never abort the run.
//
// All scoring is deterministic and side-effect-free over snapshotted inputs,
// so independent videos can be matched concurrently. The only write is the
// attribute-if-null store update, which the persistence layer guards.
package attribution
