package matching

import "testing"

func solaceCatalog() []Candidate {
	return []Candidate{
		{
			ID:          "p-001",
			Name:        "SOLACE-BLACK 42",
			Category:    "Shoes",
			SubCategory: "Casual",
			Colors:      []string{"Black"},
			Sizes:       []string{"42"},
		},
		{
			ID:          "p-002",
			Name:        "BROWNIE WEDGE 38",
			Category:    "Shoes",
			SubCategory: "Heels",
			Colors:      []string{"Brown", "Beige"},
			Sizes:       []string{"38", "39"},
		},
	}
}

func TestMatchExactNameWithDecoration(t *testing.T) {
	m := NewMatcher(DefaultMinConfidence)
	line := LineInput{Name: "[SB42] SOLACE-BLACK 42", Category: "Shoes"}

	res := m.Match(line, solaceCatalog())
	if !res.Matched() {
		t.Fatalf("expected a match, got confidence %d", res.Confidence)
	}
	if res.ProductID != "p-001" {
		t.Fatalf("expected p-001, got %s", res.ProductID)
	}
	// Name equality (+50), category overlap (+30), color (+10), size (+5).
	if res.Confidence != 95 {
		t.Errorf("expected confidence 95, got %d", res.Confidence)
	}
	if res.Color != "Black" || res.Size != "42" {
		t.Errorf("expected color Black size 42, got %s/%s", res.Color, res.Size)
	}
	if res.Category != "Shoes" || res.SubCategory != "Casual" {
		t.Errorf("unexpected category %s/%s", res.Category, res.SubCategory)
	}
}

func TestMatchDeterministic(t *testing.T) {
	m := NewMatcher(DefaultMinConfidence)
	line := LineInput{Name: "BROWNIE WEDGE 38 Beige", Category: "Shoes"}
	snapshot := solaceCatalog()

	first := m.Match(line, snapshot)
	for i := 0; i < 50; i++ {
		again := m.Match(line, snapshot)
		if again != first {
			t.Fatalf("match result changed between calls: %+v vs %+v", first, again)
		}
	}
}

func TestMatchThresholdBoundary(t *testing.T) {
	m := NewMatcher(DefaultMinConfidence)

	// Exactly 30: category overlap only.
	at := m.Match(
		LineInput{Name: "zzz", Category: "Shoes"},
		[]Candidate{{ID: "p-cat", Name: "qqq", Category: "Shoes"}},
	)
	if at.Confidence != 30 {
		t.Fatalf("expected confidence 30, got %d", at.Confidence)
	}
	if !at.Matched() {
		t.Errorf("candidate scoring exactly 30 must be matched")
	}

	// Exactly 29: three common tokens (24) plus a size hit (5), no category.
	below := m.Match(
		LineInput{Name: "alpha beta gamma delta", Category: ""},
		[]Candidate{{
			ID:    "p-tok",
			Name:  "alpha beta gamma omega",
			Sizes: []string{"delta"},
		}},
	)
	if below.Confidence != 29 {
		t.Fatalf("expected confidence 29, got %d", below.Confidence)
	}
	if below.Matched() {
		t.Errorf("candidate scoring 29 must not be matched")
	}
}

func TestMatchEmptyCatalog(t *testing.T) {
	m := NewMatcher(DefaultMinConfidence)

	res := m.Match(LineInput{Name: "Anything At All"}, nil)
	if res.Matched() {
		t.Fatalf("empty catalog must never match")
	}
	if res.Category != FallbackCategory {
		t.Errorf("expected fallback category %q, got %q", FallbackCategory, res.Category)
	}
	if res.Color != DefaultVariant || res.Size != DefaultVariant {
		t.Errorf("expected default color/size, got %s/%s", res.Color, res.Size)
	}

	withCat := m.Match(LineInput{Name: "Anything", Category: "Bags"}, nil)
	if withCat.Category != "Bags" {
		t.Errorf("expected raw category to survive unmatched, got %q", withCat.Category)
	}
}

func TestMatchFirstBestWins(t *testing.T) {
	m := NewMatcher(DefaultMinConfidence)
	// Two candidates with identical names and scores: the earlier snapshot
	// entry must win so re-runs are reproducible.
	snapshot := []Candidate{
		{ID: "p-a", Name: "TWIN PRODUCT", Category: "Shoes"},
		{ID: "p-b", Name: "TWIN PRODUCT", Category: "Shoes"},
	}
	res := m.Match(LineInput{Name: "TWIN PRODUCT", Category: "Shoes"}, snapshot)
	if res.ProductID != "p-a" {
		t.Errorf("expected first candidate to win the tie, got %s", res.ProductID)
	}
}

func TestMatchFallbackVariants(t *testing.T) {
	m := NewMatcher(DefaultMinConfidence)
	snapshot := []Candidate{{
		ID:       "p-v",
		Name:     "VELVET TOTE",
		Category: "Bags",
		Colors:   []string{"Maroon", "Navy"},
		Sizes:    []string{"M"},
	}}

	res := m.Match(LineInput{Name: "VELVET TOTE", Category: "Bags"}, snapshot)
	if !res.Matched() {
		t.Fatalf("expected match, got confidence %d", res.Confidence)
	}
	// No color/size token in the line: fall back to the first declared ones,
	// with no +10/+5 contribution (50 name + 30 category only).
	if res.Confidence != 80 {
		t.Errorf("expected confidence 80, got %d", res.Confidence)
	}
	if res.Color != "Maroon" || res.Size != "M" {
		t.Errorf("expected fallback Maroon/M, got %s/%s", res.Color, res.Size)
	}
}
