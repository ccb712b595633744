package matching

import "strings"

// FallbackCategory is recorded when a line item cannot be matched and carries
// no usable category of its own, so its stock movement is never silently lost.
const FallbackCategory = "General"

// Result is the matcher's verdict for one line item. ProductID is non-empty
// iff Confidence >= the matcher's minimum confidence.
type Result struct {
	ProductID   string
	ProductName string
	Color       string
	Size        string
	Category    string
	SubCategory string
	Confidence  int
}

func (r Result) Matched() bool { return r.ProductID != "" }

// Matcher resolves free-text line items against a catalog snapshot.
// It holds no mutable state; the same snapshot and line always produce the
// same Result.
type Matcher struct {
	MinConfidence int
}

func NewMatcher(minConfidence int) *Matcher {
	if minConfidence <= 0 {
		minConfidence = DefaultMinConfidence
	}
	return &Matcher{MinConfidence: minConfidence}
}

// Match scores every candidate and returns the best one at or above the
// threshold. The snapshot must be deterministically ordered (by product id);
// the first candidate to reach the strictly highest score wins.
func (m *Matcher) Match(line LineInput, snapshot []Candidate) Result {
	normName := NormalizeName(line.Name)

	var (
		best      candidateScore
		bestCand  Candidate
		bestFound bool
	)

	for _, cand := range snapshot {
		sc := scoreCandidate(normName, line.Category, cand)
		if !bestFound || sc.total > best.total {
			best = sc
			bestCand = cand
			bestFound = true
		}
	}

	if !bestFound || best.total < m.MinConfidence {
		confidence := 0
		if bestFound {
			confidence = best.total
		}
		return Result{
			ProductName: normName,
			Color:       DefaultVariant,
			Size:        DefaultVariant,
			Category:    unmatchedCategory(line.Category),
			Confidence:  confidence,
		}
	}

	return Result{
		ProductID:   bestCand.ID,
		ProductName: NormalizeName(bestCand.Name),
		Color:       best.color,
		Size:        best.size,
		Category:    bestCand.Category,
		SubCategory: bestCand.SubCategory,
		Confidence:  best.total,
	}
}

func unmatchedCategory(rawCategory string) string {
	if c := strings.TrimSpace(rawCategory); c != "" {
		return c
	}
	return FallbackCategory
}
