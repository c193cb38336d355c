// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

package attribution

// aliasRule injects extra aliases when a name contains a pattern. Rules are
// evaluated uniformly against every organization, keeping special cases out
// of the generator logic and unit-testable one rule at a time.
type aliasRule struct {
	// pattern is a lowercase substring tested against the name.
	pattern string

	// aliases are added verbatim when the pattern matches.
	aliases []string
}

// nicknameRules match against the lowercase canonical band name. They cover
// nicknames that fans actually type into titles but that cannot be derived
// mechanically from the name itself.
var nicknameRules = []aliasRule{
	{pattern: "sonic boom", aliases: []string{"boom", "the boom"}},
	{pattern: "human jukebox", aliases: []string{"jukebox", "the jukebox"}},
	{pattern: "marching 100", aliases: []string{"the 100", "marching hundred"}},
	{pattern: "ocean of soul", aliases: []string{"the ocean"}},
	{pattern: "aristocrat of bands", aliases: []string{"aristocrats", "the aristocrats"}},
	{pattern: "world famed", aliases: []string{"world famed tiger marching band"}},
	{pattern: "marching storm", aliases: []string{"the storm"}},
	{pattern: "blue and gold marching machine", aliases: []string{"marching machine", "the machine"}},
}

// disambiguationRules match against the lowercase school name. They resolve
// abbreviation collisions between near-homonymous institutions by injecting
// codes with an explicit distinguishing prefix. Without these, two schools
// would derive the same short acronym and cross-attribute each other's videos.
var disambiguationRules = []aliasRule{
	// Jacksonville State would otherwise collide with Jackson State on "jsu".
	{pattern: "jacksonville state", aliases: []string{"jax state", "jaxstate", "jacksonville st"}},
	// Southern University's bare "su" is too short to match; give it usable codes.
	{pattern: "southern university", aliases: []string{"subr", "southern u", "southern univ"}},
	// Texas Southern collides with other "ts"/"tsu" schools.
	{pattern: "texas southern", aliases: []string{"txsu", "texas southern univ"}},
	// Tennessee State also derives "tsu"; distinguish by region prefix.
	{pattern: "tennessee state", aliases: []string{"tnsu", "tenn state"}},
	{pattern: "mississippi valley state", aliases: []string{"mvsu", "valley", "the valley"}},
	{pattern: "south carolina state", aliases: []string{"scsu", "sc state"}},
	{pattern: "pine bluff", aliases: []string{"uapb", "pine bluff"}},
}

// amuRegionAbbrev maps the single-word prefix of an "<Prefix> A&M" school
// name to the letter(s) used in its conventional acronym. The prefix letter
// combines with "AMU" (e.g. florida -> "f" -> "famu"). First letter of the
// prefix is the fallback when a word is not listed.
var amuRegionAbbrev = map[string]string{
	"florida": "f",
	"alabama": "a",
	"texas":   "t",
}

// connectives are skipped when tokenizing canonical band names.
var connectives = map[string]struct{}{
	"of":  {},
	"the": {},
	"and": {},
}

// acronymSkip are words excluded from institution acronym derivation.
var acronymSkip = map[string]struct{}{
	"of":  {},
	"the": {},
	"at":  {},
	"and": {},
}

// institutionSuffixes are trailing suffix forms stripped to produce the
// normalized school-name variant ("jackson state university" -> "jackson state").
var institutionSuffixes = []string{
	" university",
	" college",
}
