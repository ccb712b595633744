package matching

import (
	"regexp"
	"strings"
)

var (
	leadingBracketCode = regexp.MustCompile(`^\[[^\]]+\]\s*`)
	leadingParenCode   = regexp.MustCompile(`^\([^)]+\)\s*`)
	leadingShortCode   = regexp.MustCompile(`^[A-Za-z0-9]{2,6}(: | - )`)
	whitespaceRuns     = regexp.MustCompile(`\s+`)
	dashSpacing        = regexp.MustCompile(`\s*-+\s*`)
)

// NormalizeName strips product-code decorations from a free-text description.
// Stable fixed point: NormalizeName(NormalizeName(x)) == NormalizeName(x), and
// the result is never longer than the input. Descriptions carrying several
// stacked codes ("[SB42] [CV90] SOLACE") lose all of them.
//
// Steps, applied repeatedly until the string stops changing:
//  1. strip a single leading [CODE] or (CODE)
//  2. strip a leading short alphanumeric code followed by ": " or " - "
//  3. collapse whitespace runs to one space
//  4. normalize dash-separated spacing to a single "-" with no surrounding spaces
func NormalizeName(raw string) string {
	s := strings.TrimSpace(raw)
	for {
		next := normalizeOnce(s)
		if next == s {
			return s
		}
		s = next
	}
}

func normalizeOnce(s string) string {
	s = leadingBracketCode.ReplaceAllString(s, "")
	s = leadingParenCode.ReplaceAllString(s, "")
	s = leadingShortCode.ReplaceAllString(s, "")
	s = whitespaceRuns.ReplaceAllString(s, " ")
	s = dashSpacing.ReplaceAllString(s, "-")
	return strings.TrimSpace(s)
}

// ExtractCode pulls the leading product code NormalizeName would strip,
// canonicalized with NormalizeCode. Empty when the description carries none.
func ExtractCode(raw string) string {
	s := strings.TrimSpace(raw)
	if m := leadingBracketCode.FindString(s); m != "" {
		return NormalizeCode(strings.Trim(strings.TrimSpace(m), "[]"))
	}
	if m := leadingParenCode.FindString(s); m != "" {
		return NormalizeCode(strings.Trim(strings.TrimSpace(m), "()"))
	}
	if m := leadingShortCode.FindStringSubmatch(s); m != nil {
		return NormalizeCode(strings.TrimSuffix(strings.TrimSuffix(m[0], ": "), " - "))
	}
	return ""
}
