package matching

import "testing"

func TestNormalizeCode(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"SBE28", "SB28"},
		{"BWS30", "BW30"},
		{"CVS90", "CV90"},
		{"SB28", "SB28"},
		{"sbe28", "SB28"},
		{" cv90 ", "CV90"},
		{"ABC42", "ABC42"}, // C is not a variant marker
		{"", ""},
	}
	for _, c := range cases {
		got := NormalizeCode(c.in)
		if got != c.want {
			t.Errorf("NormalizeCode(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestExtractCode(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"[SB42] SOLACE-BLACK 42", "SB42"},
		{"(cvs90) Covessa 90", "CV90"},
		{"SB42: SOLACE-BLACK 42", "SB42"},
		{"BW30 - Brightway 30", "BW30"},
		{"SOLACE-BLACK 42", ""},
		{"", ""},
	}
	for _, c := range cases {
		got := ExtractCode(c.in)
		if got != c.want {
			t.Errorf("ExtractCode(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSameExternalCode(t *testing.T) {
	same := [][2]string{
		{"SB28", "SBE28"},
		{"BW30", "BWS30"},
		{"CV90", "CVS90"},
		{"SB28", "SB28"},
		{"sbe28", "SB28"},
	}
	for _, pair := range same {
		if !SameExternalCode(pair[0], pair[1]) {
			t.Errorf("expected %q and %q to reconcile", pair[0], pair[1])
		}
	}

	different := [][2]string{
		{"SB28", "SB29"}, // item number differs
		{"SB28", "CV28"}, // prefix too far apart
		{"SB28", ""},
		{"", ""},
	}
	for _, pair := range different {
		if SameExternalCode(pair[0], pair[1]) {
			t.Errorf("expected %q and %q NOT to reconcile", pair[0], pair[1])
		}
	}
}
