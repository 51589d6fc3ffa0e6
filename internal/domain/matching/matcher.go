package matching

import (
	"math"
	"sort"
	"strings"

	"github.com/higiplas/backend/internal/domain/catalog"
	"github.com/higiplas/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultThreshold is the minimum composite score, on the 0-100 scale,
// for a fuzzy candidate to be accepted.
const DefaultThreshold = 60.0

// Weights control the composite score ensemble. The defaults favor
// token-order-invariant similarity since product names frequently differ
// only in word order or added qualifiers.
type Weights struct {
	Ratio        float64
	PartialRatio float64
	TokenSort    float64
	TokenSet     float64
	Keyword      float64
}

// DefaultWeights returns the tuned ensemble weighting.
func DefaultWeights() Weights {
	return Weights{
		Ratio:        0.2,
		PartialRatio: 0.2,
		TokenSort:    0.3,
		TokenSet:     0.2,
		Keyword:      0.1,
	}
}

// Validate checks that all weights are non-negative and sum to 1.
func (w Weights) Validate() error {
	sum := w.Ratio + w.PartialRatio + w.TokenSort + w.TokenSet + w.Keyword
	if w.Ratio < 0 || w.PartialRatio < 0 || w.TokenSort < 0 || w.TokenSet < 0 || w.Keyword < 0 {
		return shared.NewDomainError("INVALID_WEIGHTS", "Matching weights cannot be negative")
	}
	if math.Abs(sum-1) > 1e-9 {
		return shared.NewDomainError("INVALID_WEIGHTS", "Matching weights must sum to 1")
	}
	return nil
}

// Matcher resolves queries against a catalog snapshot. It holds no
// per-tenant state; every call is a pure function of its inputs.
type Matcher struct {
	weights Weights
	logger  *zap.Logger
}

// MatcherOption is a functional option for configuring the matcher.
type MatcherOption func(*Matcher)

// WithWeights overrides the ensemble weighting.
func WithWeights(w Weights) MatcherOption {
	return func(m *Matcher) {
		m.weights = w
	}
}

// WithLogger sets the logger for the matcher.
func WithLogger(logger *zap.Logger) MatcherOption {
	return func(m *Matcher) {
		m.logger = logger
	}
}

// NewMatcher creates a matcher with the default weights.
func NewMatcher(opts ...MatcherOption) *Matcher {
	m := &Matcher{
		weights: DefaultWeights(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ThresholdFromRatio converts a 0-1 similarity-ratio threshold to the
// 0-100 score scale used everywhere in this package. Callers holding
// legacy ratio thresholds must convert explicitly; nothing rescales
// implicitly.
func ThresholdFromRatio(t float64) float64 {
	return clampThreshold(t * 100)
}

func clampThreshold(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 100 {
		return 100
	}
	return t
}

// Resolve resolves a query to at most one catalog entry, prioritizing
// exact code identity over fuzzy similarity. A non-empty code that matches
// a catalog code is authoritative: it scores 100 and short-circuits the
// fuzzy path regardless of the description. With no code, the description
// is matched fuzzily against the threshold. Empty code and description
// yield an unmatched result, never an error.
func (m *Matcher) Resolve(code, description string, entries []catalog.Entry, threshold float64) MatchResult {
	code = strings.TrimSpace(code)
	if code != "" {
		for i := range entries {
			if entries[i].Code == code {
				entry := entries[i]
				return MatchResult{
					Entry:  &entry,
					Method: MethodCode,
					Score:  100,
				}
			}
		}
		m.logger.Debug("no catalog entry for code, falling back to description",
			zap.String("code", code))
	}

	if strings.TrimSpace(description) != "" {
		return m.ResolveByName(description, entries, threshold)
	}

	return NoMatch()
}

// ResolveByName returns the single best fuzzy match for the description,
// or an unmatched result if no candidate clears the threshold.
func (m *Matcher) ResolveByName(description string, entries []catalog.Entry, threshold float64) MatchResult {
	matches := m.TopMatches(description, entries, threshold, 1)
	if len(matches) == 0 {
		return NoMatch()
	}
	return matches[0]
}

// TopMatches returns up to limit candidates whose composite score clears
// the threshold, sorted by score descending. Ties break by ascending entry
// ID so results do not depend on catalog load order. A limit <= 0 means
// no limit. An empty description or catalog yields an empty slice.
func (m *Matcher) TopMatches(description string, entries []catalog.Entry, threshold float64, limit int) []MatchResult {
	query := catalog.Normalize(description)
	if query == "" || len(entries) == 0 {
		return nil
	}
	threshold = clampThreshold(threshold)
	queryKeywords := catalog.Keywords(description)

	var matches []MatchResult
	for i := range entries {
		candidate := &entries[i]
		if candidate.NormalizedName == "" {
			// Malformed entry; contributes no candidate.
			continue
		}

		score, detail := m.score(query, queryKeywords, candidate)
		if score < threshold {
			continue
		}

		entry := entries[i]
		matches = append(matches, MatchResult{
			Entry:  &entry,
			Method: MethodName,
			Score:  score,
			Detail: detail,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Entry.ID.String() < matches[j].Entry.ID.String()
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	m.logger.Debug("fuzzy name resolution",
		zap.String("query", query),
		zap.Float64("threshold", threshold),
		zap.Int("candidates", len(entries)),
		zap.Int("accepted", len(matches)))

	return matches
}

// score computes the weighted composite for one candidate. Identical
// normalized strings saturate every component at 100.
func (m *Matcher) score(query string, queryKeywords []string, candidate *catalog.Entry) (float64, ScoreDetail) {
	if query == candidate.NormalizedName {
		detail := ScoreDetail{
			Ratio:           100,
			PartialRatio:    100,
			TokenSortRatio:  100,
			TokenSetRatio:   100,
			KeywordScore:    100,
			KeywordsMatched: len(queryKeywords),
			KeywordsTotal:   len(queryKeywords),
		}
		return 100, detail
	}

	detail := ScoreDetail{
		Ratio:          Ratio(query, candidate.NormalizedName),
		PartialRatio:   PartialRatio(query, candidate.NormalizedName),
		TokenSortRatio: TokenSortRatio(query, candidate.NormalizedName),
		TokenSetRatio:  TokenSetRatio(query, candidate.NormalizedName),
		KeywordsTotal:  len(queryKeywords),
	}

	if len(queryKeywords) > 0 {
		candidateKeywords := make(map[string]struct{}, len(candidate.Keywords))
		for _, kw := range candidate.Keywords {
			candidateKeywords[kw] = struct{}{}
		}
		for _, kw := range queryKeywords {
			if _, ok := candidateKeywords[kw]; ok {
				detail.KeywordsMatched++
			}
		}
		detail.KeywordScore = float64(detail.KeywordsMatched) / float64(detail.KeywordsTotal) * 100
	}

	composite := m.weights.Ratio*detail.Ratio +
		m.weights.PartialRatio*detail.PartialRatio +
		m.weights.TokenSort*detail.TokenSortRatio +
		m.weights.TokenSet*detail.TokenSetRatio +
		m.weights.Keyword*detail.KeywordScore

	return composite, detail
}
