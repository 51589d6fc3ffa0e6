package matching

import "github.com/higiplas/backend/internal/domain/catalog"

// MatchMethod indicates how a match was obtained.
type MatchMethod string

const (
	// MethodCode means the query code matched a catalog code exactly.
	MethodCode MatchMethod = "code"
	// MethodName means the entry was selected by fuzzy name similarity.
	MethodName MatchMethod = "name"
	// MethodNone means no entry cleared the threshold.
	MethodNone MatchMethod = "none"
)

// ScoreDetail carries the component sub-scores behind a composite score.
// Diagnostic only; the composite Score is authoritative.
type ScoreDetail struct {
	Ratio           float64 `json:"ratio"`
	PartialRatio    float64 `json:"partial_ratio"`
	TokenSortRatio  float64 `json:"token_sort_ratio"`
	TokenSetRatio   float64 `json:"token_set_ratio"`
	KeywordScore    float64 `json:"keyword_score"`
	KeywordsMatched int     `json:"keywords_matched"`
	KeywordsTotal   int     `json:"keywords_total"`
}

// MatchResult is the outcome of resolving one query against a catalog.
type MatchResult struct {
	Entry  *catalog.Entry `json:"entry,omitempty"`
	Method MatchMethod    `json:"method"`
	Score  float64        `json:"score"`
	Detail ScoreDetail    `json:"detail"`
}

// NoMatch returns the canonical unmatched result.
func NoMatch() MatchResult {
	return MatchResult{Method: MethodNone, Score: 0}
}

// Matched returns true if the result resolved to a catalog entry.
func (r MatchResult) Matched() bool {
	return r.Method != MethodNone && r.Entry != nil
}
