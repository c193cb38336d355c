// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

package attribution

import "strings"

// battleKeywords flags head-to-head event text. Entries with surrounding
// spaces avoid false positives from words like "canvas" or "seven".
var battleKeywords = []string{
	" vs ",
	" vs. ",
	" v. ",
	" v ",
	" versus ",
	"battle",
	"botb",
	"band battle",
	"battle of the bands",
	"showdown",
	"face off",
	"faceoff",
}

// IsBattleVideo reports whether the text describes a head-to-head event
// between two organizations. It is a pure case-insensitive substring test.
func IsBattleVideo(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range battleKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
