// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

package discover

// Diversify trims a ranked candidate list so no organization appears more
// than maxPerOrg times, preserving the relative input order, and returns at
// most limit items. The input must already be sorted by relevance.
func Diversify(items []Scored, limit, maxPerOrg int) []Scored {
	if limit <= 0 || len(items) == 0 {
		return nil
	}
	if maxPerOrg <= 0 {
		maxPerOrg = 1
	}

	perOrg := make(map[int64]int)
	out := make([]Scored, 0, limit)

	for i := range items {
		org := items[i].Video.OrgID()
		if perOrg[org] >= maxPerOrg {
			continue
		}
		perOrg[org]++
		out = append(out, items[i])
		if len(out) == limit {
			break
		}
	}

	return out
}

// orgIDs returns the set of organizations present in a result list.
func orgIDs(items []Scored) map[int64]struct{} {
	out := make(map[int64]struct{}, len(items))
	for i := range items {
		out[items[i].Video.OrgID()] = struct{}{}
	}
	return out
}

// videoIDs returns the video IDs of a result list.
func videoIDs(items []Scored) []int64 {
	out := make([]int64, 0, len(items))
	for i := range items {
		out = append(out, items[i].Video.ID)
	}
	return out
}
