package matching

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Known variant-marker letters appended to two-letter code families by some
// sources: SB28 and SBE28 label the same physical item, as do BW30/BWS30 and
// CV90/CVS90.
var variantMarkers = map[byte]bool{
	'E': true,
	'S': true,
}

// NormalizeCode canonicalizes an external product identifier. It is used only
// when comparing two external identifiers across sources, never when matching
// against the catalog.
func NormalizeCode(code string) string {
	c := strings.ToUpper(strings.TrimSpace(code))
	prefix, rest := splitCode(c)
	if len(prefix) == 3 && variantMarkers[prefix[2]] {
		prefix = prefix[:2]
	}
	return prefix + rest
}

// SameExternalCode reports whether two external product identifiers denote the
// same item. Codes are equivalent when they normalize identically, or when the
// numeric suffix matches exactly and the letter prefixes are within one edit
// of each other (tolerates a mistyped prefix letter; never tolerates a
// different item number).
func SameExternalCode(a, b string) bool {
	na := NormalizeCode(a)
	nb := NormalizeCode(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}

	pa, da := splitCode(na)
	pb, db := splitCode(nb)
	if da == "" || da != db {
		return false
	}
	return levenshtein.ComputeDistance(pa, pb) <= 1
}

// splitCode separates the leading letter prefix from the remainder.
func splitCode(c string) (string, string) {
	i := 0
	for i < len(c) && c[i] >= 'A' && c[i] <= 'Z' {
		i++
	}
	return c[:i], c[i:]
}
