package matching

import (
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// levenshtein is a reusable metric instance; similarity is normalized
// edit distance in [0,1].
var levenshtein = metrics.NewLevenshtein()

// All ratios operate on the 0-100 scale and expect pre-normalized input
// (see catalog.Normalize): ASCII uppercase letters, digits, and single
// spaces only. Two empty strings are identical (100); exactly one empty
// string cannot match anything (0).

// Ratio is the edit-distance similarity of the two full strings.
func Ratio(a, b string) float64 {
	if a == "" && b == "" {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	return strutil.Similarity(a, b, levenshtein) * 100
}

// PartialRatio is the best Ratio of the shorter string against every
// equal-length window of the longer one. It handles queries that are a
// substring of the catalog name, or vice versa.
func PartialRatio(a, b string) float64 {
	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) == len(longer) {
		return Ratio(shorter, longer)
	}
	if shorter == "" {
		return 0
	}

	best := 0.0
	for i := 0; i+len(shorter) <= len(longer); i++ {
		score := Ratio(shorter, longer[i:i+len(shorter)])
		if score > best {
			best = score
			if best == 100 {
				break
			}
		}
	}
	return best
}

// TokenSortRatio compares the strings after sorting each side's tokens
// alphabetically, tolerating word reordering.
func TokenSortRatio(a, b string) float64 {
	return Ratio(sortTokens(a), sortTokens(b))
}

// TokenSetRatio reduces each string to its unique token set, then compares
// the sorted intersection against the intersection plus each side's
// remainder, taking the best pairwise Ratio. Extra or repeated tokens on
// one side (trailing package-size qualifiers and the like) stop hurting
// the score.
func TokenSetRatio(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		if len(setA) == 0 && len(setB) == 0 {
			return 100
		}
		return 0
	}

	var common, onlyA, onlyB []string
	for token := range setA {
		if _, ok := setB[token]; ok {
			common = append(common, token)
		} else {
			onlyA = append(onlyA, token)
		}
	}
	for token := range setB {
		if _, ok := setA[token]; !ok {
			onlyB = append(onlyB, token)
		}
	}
	sort.Strings(common)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	base := strings.Join(common, " ")
	withA := joinNonEmpty(base, strings.Join(onlyA, " "))
	withB := joinNonEmpty(base, strings.Join(onlyB, " "))

	best := Ratio(base, withA)
	if s := Ratio(base, withB); s > best {
		best = s
	}
	if s := Ratio(withA, withB); s > best {
		best = s
	}
	return best
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, token := range strings.Fields(s) {
		set[token] = struct{}{}
	}
	return set
}

func joinNonEmpty(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	return a + " " + b
}
