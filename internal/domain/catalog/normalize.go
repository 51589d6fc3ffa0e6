package catalog

import "strings"

// stopwords are Portuguese connective words that carry no product identity
// and are dropped during keyword extraction.
var stopwords = map[string]struct{}{
	"DE": {}, "DA": {}, "DO": {}, "COM": {}, "SEM": {}, "PARA": {},
	"EM": {}, "NA": {}, "NO": {}, "E": {}, "OU": {},
}

// minKeywordLen is the minimum token length kept by Keywords.
// Shorter tokens (unit abbreviations, stray OCR fragments) add noise.
const minKeywordLen = 3

// Normalize produces a comparison-stable representation of product text:
// uppercase, every character outside [A-Za-z0-9] replaced by a space,
// whitespace runs collapsed to a single space, and the result trimmed.
// It is idempotent and never fails; empty input yields an empty string.
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))

	lastSpace := true // suppress leading spaces
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - ('a' - 'A'))
			lastSpace = false
		case (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}

	return strings.TrimRight(b.String(), " ")
}

// Keywords splits the normalized form of s into tokens and drops tokens
// shorter than three characters as well as Portuguese stopwords.
// Token order and duplicates are preserved; callers may dedupe if needed.
func Keywords(s string) []string {
	fields := strings.Fields(Normalize(s))
	if len(fields) == 0 {
		return nil
	}

	keywords := make([]string, 0, len(fields))
	for _, token := range fields {
		if len(token) < minKeywordLen {
			continue
		}
		if _, ok := stopwords[token]; ok {
			continue
		}
		keywords = append(keywords, token)
	}
	return keywords
}
