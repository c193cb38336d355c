// Bandstand - Marching Band Video Discovery and Attribution
// Copyright 2026 The Bandstand Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fifthquarter/bandstand

package attribution

import (
	"reflect"
	"strings"
	"testing"

	"github.com/fifthquarter/bandstand/internal/models"
)

func sonicBoom() models.Organization {
	return models.Organization{
		ID:            1,
		CanonicalName: "Sonic Boom of the South",
		SchoolName:    "Jackson State University",
		Region:        "MS",
	}
}

func TestAliasesSonicBoom(t *testing.T) {
	got := Aliases(sonicBoom())

	want := []string{
		"sonic boom",
		"boom",
		"jsu",
		"jackson st",
		"jackson",
		"jackson state university",
		"jackson state",
		"sonic boom of the south",
	}

	set := make(map[string]struct{}, len(got))
	for _, a := range got {
		set[a] = struct{}{}
	}
	for _, w := range want {
		if _, ok := set[w]; !ok {
			t.Errorf("alias set missing %q, got %v", w, got)
		}
	}
}

func TestAliasesDeterministic(t *testing.T) {
	org := sonicBoom()
	first := Aliases(org)
	second := Aliases(org)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Aliases not deterministic:\nfirst:  %v\nsecond: %v", first, second)
	}
}

func TestAliasesNoEmptyOrDuplicate(t *testing.T) {
	orgs := []models.Organization{
		sonicBoom(),
		{ID: 2, CanonicalName: "Human Jukebox", SchoolName: "Southern University", Region: "LA"},
		{ID: 3, CanonicalName: "Marching Storm", SchoolName: "Prairie View A&M University", Region: "TX"},
		{ID: 4, CanonicalName: "", SchoolName: "", Region: ""},
	}

	for _, org := range orgs {
		aliases := Aliases(org)
		seen := make(map[string]struct{}, len(aliases))
		for _, a := range aliases {
			if strings.TrimSpace(a) == "" {
				t.Errorf("org %d: empty alias in %v", org.ID, aliases)
			}
			if a != strings.ToLower(a) {
				t.Errorf("org %d: alias %q not lowercase", org.ID, a)
			}
			if _, dup := seen[a]; dup {
				t.Errorf("org %d: duplicate alias %q", org.ID, a)
			}
			seen[a] = struct{}{}
		}
	}
}

func TestAliasesAMSchools(t *testing.T) {
	tests := []struct {
		name   string
		org    models.Organization
		want   []string
		reject []string
	}{
		{
			name: "multi-word A&M prefix",
			org: models.Organization{
				ID:            10,
				CanonicalName: "Marching Storm",
				SchoolName:    "Prairie View A&M University",
				Region:        "TX",
			},
			want: []string{"pvamu", "pvam", "prairie view a and m university"},
		},
		{
			name: "single-word A&M prefix uses region table",
			org: models.Organization{
				ID:            11,
				CanonicalName: "Marching 100",
				SchoolName:    "Florida A&M University",
				Region:        "FL",
			},
			want: []string{"famu", "florida a and m university", "the 100"},
		},
		{
			name: "A&T spelled out",
			org: models.Organization{
				ID:            12,
				CanonicalName: "Blue and Gold Marching Machine",
				SchoolName:    "North Carolina A&T State University",
				Region:        "NC",
			},
			want: []string{"north carolina a and t state university", "marching machine"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aliases(tt.org)
			set := make(map[string]struct{}, len(got))
			for _, a := range got {
				set[a] = struct{}{}
			}
			for _, w := range tt.want {
				if _, ok := set[w]; !ok {
					t.Errorf("missing alias %q in %v", w, got)
				}
			}
			for _, rej := range tt.reject {
				if _, ok := set[rej]; ok {
					t.Errorf("unexpected alias %q in %v", rej, got)
				}
			}
		})
	}
}

func TestAliasesUniversityOfPattern(t *testing.T) {
	org := models.Organization{
		ID:            20,
		CanonicalName: "Marching Musical Machine of the Mid-South",
		SchoolName:    "University of Arkansas at Pine Bluff",
		Region:        "AR",
	}

	got := Aliases(org)
	set := make(map[string]struct{}, len(got))
	for _, a := range got {
		set[a] = struct{}{}
	}

	for _, w := range []string{"uapb", "pine bluff"} {
		if _, ok := set[w]; !ok {
			t.Errorf("missing alias %q in %v", w, got)
		}
	}
}

func TestAliasesDisambiguation(t *testing.T) {
	jacksonville := models.Organization{
		ID:            30,
		CanonicalName: "Marching Southerners",
		SchoolName:    "Jacksonville State University",
		Region:        "AL",
	}

	got := Aliases(jacksonville)
	set := make(map[string]struct{}, len(got))
	for _, a := range got {
		set[a] = struct{}{}
	}

	for _, w := range []string{"jax state", "jacksonville st", "jacksonville state"} {
		if _, ok := set[w]; !ok {
			t.Errorf("missing disambiguation alias %q in %v", w, got)
		}
	}
}

func TestAliasesStateUniversityPattern(t *testing.T) {
	org := models.Organization{
		ID:            40,
		CanonicalName: "Aristocrat of Bands",
		SchoolName:    "Tennessee State University",
		Region:        "TN",
	}

	got := Aliases(org)
	set := make(map[string]struct{}, len(got))
	for _, a := range got {
		set[a] = struct{}{}
	}

	for _, w := range []string{"tennessee", "tennessee state", "tennessee st", "tsu", "aristocrats"} {
		if _, ok := set[w]; !ok {
			t.Errorf("missing alias %q in %v", w, got)
		}
	}
}
