// Package quality scores a (query, response) pair across seven fixed
// dimensions and combines them into a single composite under a
// normalized weight set. Each dimension scorer is a small rule-based
// heuristic in the teacher's content-analyzer style (keyword and
// structure counting, no ML model) — the spec leaves the exact
// formulas open as long as they satisfy the composite invariant in
// §8: |composite − Σ wᵢ·dᵢ| < 1e-9.
package quality

import (
	"context"
	"math"
	"regexp"
	"strings"

	"github.com/fortitude-run/fortitude/pkg/ferrors"
	"github.com/fortitude-run/fortitude/pkg/research"
)

// Engine evaluates ResearchResult candidates against a Query. The zero
// value is usable; there is no required configuration.
type Engine struct{}

// New creates a quality Engine.
func New() *Engine {
	return &Engine{}
}

var sentenceEnd = regexp.MustCompile(`[.!?]`)
var citationLike = regexp.MustCompile(`(?i)(https?://|according to|per the docs|source:|\[\d+\])`)
var hedgeWords = regexp.MustCompile(`(?i)\b(might|maybe|possibly|i think|not sure|unclear|probably)\b`)
var staleWords = regexp.MustCompile(`(?i)\b(deprecated|legacy|outdated|as of \d{4}|old version)\b`)
var codeFence = regexp.MustCompile("```")
var numberLike = regexp.MustCompile(`\b\d+(\.\d+)?\b`)

// Evaluate scores response against query under weights (assumed
// already normalized by the caller), always computing all seven
// dimensions regardless of which carry non-zero weight.
func (e *Engine) Evaluate(ctx context.Context, query *research.Query, response string, weights research.QualityWeights) (*research.QualityScore, error) {
	if query == nil {
		return nil, &ferrors.InvalidInputError{Field: "query", Message: "must not be nil"}
	}
	select {
	case <-ctx.Done():
		return nil, &ferrors.TimeoutError{After: 0}
	default:
	}

	scores := map[research.QualityDimension]float64{
		research.DimRelevance:    relevance(query.Text, response),
		research.DimAccuracy:     accuracy(response),
		research.DimCompleteness: completeness(query.Text, response),
		research.DimClarity:      clarity(response),
		research.DimCredibility:  credibility(response),
		research.DimTimeliness:   timeliness(response),
		research.DimSpecificity:  specificity(response),
	}

	q := &research.QualityScore{
		Scores:     scores,
		Confidence: confidence(response),
	}
	q.Composite = q.ComputeComposite(weights)
	return q, nil
}

// relevance approximates term overlap between the query and the
// response: the fraction of distinct, non-trivial query words that
// appear in the response.
func relevance(queryText, response string) float64 {
	qWords := distinctSignificantWords(queryText)
	if len(qWords) == 0 {
		return 0.5
	}
	respLower := strings.ToLower(response)
	var hit int
	for w := range qWords {
		if strings.Contains(respLower, w) {
			hit++
		}
	}
	return clamp01(float64(hit) / float64(len(qWords)))
}

// accuracy penalizes hedging language; a confident, unqualified answer
// scores higher. This is a proxy, not a fact-check — the spec treats
// exact formulas as an open question.
func accuracy(response string) float64 {
	if strings.TrimSpace(response) == "" {
		return 0
	}
	hedges := len(hedgeWords.FindAllString(response, -1))
	words := len(strings.Fields(response))
	if words == 0 {
		return 0
	}
	penalty := float64(hedges) / math.Max(float64(words)/20, 1)
	return clamp01(1 - penalty)
}

// completeness rewards answers that are long enough to cover a query
// and include structural markers (code, enumerations) for
// implementation-shaped queries.
func completeness(queryText, response string) float64 {
	words := len(strings.Fields(response))
	base := clamp01(float64(words) / 200)
	if codeFence.MatchString(response) {
		base = clamp01(base + 0.15)
	}
	if strings.Contains(response, "\n- ") || strings.Contains(response, "\n1.") {
		base = clamp01(base + 0.1)
	}
	return base
}

// clarity rewards shorter average sentence length and paragraph
// structure; very long run-on sentences score lower.
func clarity(response string) float64 {
	sentences := sentenceEnd.Split(response, -1)
	var nonEmpty int
	var totalWords int
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		nonEmpty++
		totalWords += len(strings.Fields(s))
	}
	if nonEmpty == 0 {
		return 0
	}
	avg := float64(totalWords) / float64(nonEmpty)
	// 15-25 words/sentence is treated as the clarity sweet spot.
	if avg <= 25 {
		return clamp01(1 - math.Abs(avg-18)/40)
	}
	return clamp01(1 - (avg-25)/50)
}

// credibility rewards citation-like markers (URLs, "according to",
// bracketed references) and penalizes their total absence.
func credibility(response string) float64 {
	matches := len(citationLike.FindAllString(response, -1))
	if matches == 0 {
		return 0.3
	}
	return clamp01(0.3 + 0.2*float64(matches))
}

// timeliness penalizes staleness markers ("deprecated", year-stamped
// caveats); absent any, a neutral-high score is assumed since the
// scorer has no wall-clock knowledge of the underlying facts.
func timeliness(response string) float64 {
	stale := len(staleWords.FindAllString(response, -1))
	if stale == 0 {
		return 0.8
	}
	return clamp01(0.8 - 0.25*float64(stale))
}

// specificity rewards concrete numbers, identifiers, and code over
// vague prose.
func specificity(response string) float64 {
	numbers := len(numberLike.FindAllString(response, -1))
	hasCode := codeFence.MatchString(response)
	words := len(strings.Fields(response))
	if words == 0 {
		return 0
	}
	density := float64(numbers) / math.Max(float64(words)/30, 1)
	score := clamp01(0.2 + density*0.3)
	if hasCode {
		score = clamp01(score + 0.3)
	}
	return score
}

// confidence is a coarse estimate of how much signal the scorer had
// to work with: very short responses get a low-confidence score.
func confidence(response string) float64 {
	words := len(strings.Fields(response))
	return clamp01(float64(words) / 50)
}

func distinctSignificantWords(text string) map[string]struct{} {
	const minLen = 3
	out := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,!?;:()[]\"'")
		if len(w) < minLen {
			continue
		}
		if _, ok := stopwords[w]; ok {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "how": {}, "what": {},
	"does": {}, "with": {}, "that": {}, "this": {}, "can": {}, "you": {},
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
