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

// Aliases derives the search-alias set for an organization. The result is
// deduplicated, lowercase, free of empty entries, and deterministic: the same
// record always produces the same set. Aliases are derived at match time and
// never persisted.
func Aliases(org models.Organization) []string {
	set := newAliasSet()

	name := strings.ToLower(strings.TrimSpace(org.CanonicalName))
	school := strings.ToLower(strings.TrimSpace(org.SchoolName))

	// The canonical band name is always an alias.
	set.add(name)

	// Short-form usages: the first two and three significant words of the
	// band name ("sonic boom of the south" is usually just "sonic boom").
	tokens := significantTokens(name, connectives)
	if len(tokens) >= 2 {
		set.add(strings.Join(tokens[:2], " "))
	}
	if len(tokens) >= 3 {
		set.add(strings.Join(tokens[:3], " "))
	}

	for _, rule := range nicknameRules {
		if strings.Contains(name, rule.pattern) {
			set.addAll(rule.aliases)
		}
	}

	// The full institution name and its suffix-normalized variant.
	set.add(school)
	if trimmed := trimInstitutionSuffix(school); trimmed != school {
		set.add(trimmed)
	}

	if acr := acronym(school); len(acr) >= 2 {
		set.add(acr)
	}

	addJoinerAliases(set, school)
	addStateUniversityAliases(set, school)
	addUniversityOfAliases(set, school)

	for _, rule := range disambiguationRules {
		if strings.Contains(school, rule.pattern) {
			set.addAll(rule.aliases)
		}
	}

	return set.values()
}

// addJoinerAliases handles "A&M"/"A&T" institution names: a spelled-out
// variant plus the conventional short acronym for "<Prefix> A&M" schools.
func addJoinerAliases(set *aliasSet, school string) {
	for joiner, spelled := range map[string]string{"a&m": "a and m", "a&t": "a and t"} {
		if strings.Contains(school, joiner) {
			set.add(strings.ReplaceAll(school, joiner, spelled))
		}
	}

	idx := strings.Index(school, " a&m")
	if idx <= 0 {
		return
	}

	prefix := strings.TrimSpace(school[:idx])
	words := strings.Fields(prefix)
	switch {
	case len(words) >= 2:
		// Multi-word prefix: initials plus AMU/AM ("prairie view" -> pvamu, pvam).
		set.add(initials(words) + "amu")
		set.add(initials(words) + "am")
	case len(words) == 1:
		abbrev, ok := amuRegionAbbrev[words[0]]
		if !ok {
			abbrev = words[0][:1]
		}
		set.add(abbrev + "amu")
	}
}

// addStateUniversityAliases expands "<Name> State University" into the short
// forms fans use in titles: "<name> state", "<name> st", the bare name, and
// the "<initials>SU" acronym.
func addStateUniversityAliases(set *aliasSet, school string) {
	const suffix = " state university"
	if !strings.HasSuffix(school, suffix) {
		return
	}

	base := strings.TrimSpace(strings.TrimSuffix(school, suffix))
	if base == "" {
		return
	}

	set.add(base)
	set.add(base + " state")
	set.add(base + " st")

	words := strings.Fields(base)
	set.add(initials(words) + "su")
}

// addUniversityOfAliases expands "University of <Region> at <Location>" into
// the campus acronym ("u" + region initials + location initials) and the bare
// location name.
func addUniversityOfAliases(set *aliasSet, school string) {
	const prefix = "university of "
	if !strings.HasPrefix(school, prefix) {
		return
	}

	rest := strings.TrimPrefix(school, prefix)
	region, location, found := strings.Cut(rest, " at ")
	if !found {
		return
	}

	regionWords := strings.Fields(region)
	locationWords := strings.Fields(location)
	if len(regionWords) == 0 || len(locationWords) == 0 {
		return
	}

	set.add("u" + initials(regionWords) + initials(locationWords))
	set.add(strings.TrimSpace(location))
}

// significantTokens splits a lowercase name into words, dropping the listed
// connective words.
func significantTokens(name string, skip map[string]struct{}) []string {
	fields := strings.Fields(name)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := skip[f]; ok {
			continue
		}
		out = append(out, f)
	}
	return out
}

// acronym joins the first letters of the significant words of an institution
// name. Callers discard results shorter than two letters.
func acronym(school string) string {
	return initials(significantTokens(school, acronymSkip))
}

// initials joins the first letter of each word.
func initials(words []string) string {
	var b strings.Builder
	for _, w := range words {
		if w == "" {
			continue
		}
		b.WriteByte(w[0])
	}
	return b.String()
}

// trimInstitutionSuffix strips one trailing institution suffix form.
func trimInstitutionSuffix(school string) string {
	for _, suffix := range institutionSuffixes {
		if strings.HasSuffix(school, suffix) {
			return strings.TrimSpace(strings.TrimSuffix(school, suffix))
		}
	}
	return school
}

// aliasSet collects lowercase aliases, dropping empties and duplicates.
type aliasSet struct {
	seen map[string]struct{}
}

func newAliasSet() *aliasSet {
	return &aliasSet{seen: make(map[string]struct{})}
}

func (s *aliasSet) add(alias string) {
	alias = strings.ToLower(strings.TrimSpace(alias))
	if alias == "" {
		return
	}
	s.seen[alias] = struct{}{}
}

func (s *aliasSet) addAll(aliases []string) {
	for _, a := range aliases {
		s.add(a)
	}
}

// values returns the set sorted for deterministic iteration.
func (s *aliasSet) values() []string {
	out := make([]string, 0, len(s.seen))
	for a := range s.seen {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}
