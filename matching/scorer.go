package matching

import (
	"regexp"
	"strings"
)

// Score weights. Total confidence is 0..100.
const (
	scoreCategoryOverlap = 30
	scoreNameEqual       = 50
	scoreNameContains    = 35
	scoreTokenUnit       = 8
	scoreTokenCap        = 25
	scoreColorMatch      = 10
	scoreSizeMatch       = 5

	// DefaultMinConfidence is the threshold at or above which a candidate is
	// considered matched.
	DefaultMinConfidence = 30

	// DefaultVariant is used when a line item carries no recognizable
	// color/size and the candidate declares none either.
	DefaultVariant = "Default"
)

var tokenSplit = regexp.MustCompile(`[\s\-_]+`)

// Candidate is one catalog product as seen by the matcher: a read-only,
// pre-ordered snapshot row.
type Candidate struct {
	ID          string
	Name        string
	Category    string
	SubCategory string
	Colors      []string
	Sizes       []string
}

// LineInput is the matcher-facing slice of a line item.
type LineInput struct {
	Name     string
	Category string
}

// candidateScore is the per-candidate outcome of scoring.
type candidateScore struct {
	total        int
	color        string
	size         string
	colorMatched bool
	sizeMatched  bool
}

func splitTokens(s string) []string {
	parts := tokenSplit.Split(strings.ToLower(s), -1)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// scoreCandidate scores one candidate against a line item whose name has
// already been normalized.
func scoreCandidate(normName string, rawCategory string, cand Candidate) candidateScore {
	var sc candidateScore

	lineLower := strings.ToLower(normName)
	candNorm := strings.ToLower(NormalizeName(cand.Name))
	candCategory := strings.ToLower(strings.TrimSpace(cand.Category))
	lineCategory := strings.ToLower(strings.TrimSpace(rawCategory))

	if lineCategory != "" && candCategory != "" &&
		(strings.Contains(lineCategory, candCategory) || strings.Contains(candCategory, lineCategory)) {
		sc.total += scoreCategoryOverlap
	}

	switch {
	case lineLower == candNorm && lineLower != "":
		sc.total += scoreNameEqual
	case lineLower != "" && candNorm != "" &&
		(strings.Contains(lineLower, candNorm) || strings.Contains(candNorm, lineLower)):
		sc.total += scoreNameContains
	default:
		common := commonTokenCount(splitTokens(lineLower), splitTokens(candNorm))
		pts := common * scoreTokenUnit
		if pts > scoreTokenCap {
			pts = scoreTokenCap
		}
		sc.total += pts
	}

	lineTokens := splitTokens(lineLower)

	sc.color, sc.colorMatched = pickVariant(lineLower, lineTokens, cand.Colors)
	if sc.colorMatched {
		sc.total += scoreColorMatch
	}
	sc.size, sc.sizeMatched = pickVariant(lineLower, lineTokens, cand.Sizes)
	if sc.sizeMatched {
		sc.total += scoreSizeMatch
	}

	return sc
}

// commonTokenCount counts tokens longer than two characters that appear as a
// substring of a token on the other side, in either direction.
func commonTokenCount(a, b []string) int {
	count := 0
	for _, ta := range a {
		if len(ta) <= 2 {
			continue
		}
		for _, tb := range b {
			if len(tb) <= 2 {
				continue
			}
			if strings.Contains(ta, tb) || strings.Contains(tb, ta) {
				count++
				break
			}
		}
	}
	return count
}

// pickVariant returns the declared variant (color or size) present in the line
// item name, or the first declared variant (or "Default") when none matches.
func pickVariant(lineLower string, lineTokens []string, declared []string) (string, bool) {
	for _, v := range declared {
		vl := strings.ToLower(strings.TrimSpace(v))
		if vl == "" {
			continue
		}
		if strings.Contains(vl, " ") {
			if strings.Contains(lineLower, vl) {
				return v, true
			}
			continue
		}
		for _, tok := range lineTokens {
			if tok == vl {
				return v, true
			}
		}
	}
	if len(declared) > 0 {
		return declared[0], false
	}
	return DefaultVariant, false
}
