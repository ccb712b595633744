package matching

import "testing"

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"[SB42] SOLACE-BLACK 42", "SOLACE-BLACK 42"},
		{"(CV90) Canvas  Shoe", "Canvas Shoe"},
		{"SB42: SOLACE-BLACK 42", "SOLACE-BLACK 42"},
		{"BW30 - Brownie Wedge", "Brownie Wedge"},
		{"Plain   Name   Here", "Plain Name Here"},
		{"SOLACE - BLACK - 42", "BLACK-42"},
		{"Moonstone -  Spaced - Name", "Moonstone-Spaced-Name"},
		{"[SB42] [CV90] SOLACE-BLACK 42", "SOLACE-BLACK 42"},
		{"[SB42] (CV90) SOLACE-BLACK 42", "SOLACE-BLACK 42"},
		{"SB42: CV90: Canvas Shoe", "Canvas Shoe"},
		{"  trimmed  ", "trimmed"},
		{"", ""},
	}

	for _, c := range cases {
		got := NormalizeName(c.in)
		if got != c.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeNameIdempotent(t *testing.T) {
	inputs := []string{
		"[SB42] SOLACE-BLACK 42",
		"(CV90) Canvas  Shoe",
		"SB42: SOLACE-BLACK 42",
		"BW30 - Brownie Wedge",
		"[SB42] [CV90] SOLACE-BLACK 42",
		"[SB42] (CV90) [XX1] Stacked",
		"SB42: CV90: Canvas Shoe",
		"A - B - C",
		"already-normal name",
		"",
	}
	for _, in := range inputs {
		once := NormalizeName(in)
		twice := NormalizeName(once)
		if once != twice {
			t.Errorf("NormalizeName not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestNormalizeNameNeverGrows(t *testing.T) {
	inputs := []string{
		"[SB42] SOLACE-BLACK 42",
		"x",
		"a  -  b",
		"SB42: y",
		"   spaced   out   ",
	}
	for _, in := range inputs {
		got := NormalizeName(in)
		if len(got) > len(in) {
			t.Errorf("NormalizeName(%q) grew: %d > %d", in, len(got), len(in))
		}
	}
}
