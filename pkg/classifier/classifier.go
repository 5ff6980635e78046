// Package classifier maps a free-text research query, plus optional
// context, onto a ClassifiedRequest: a research type with confidence,
// and — when advanced classification is enabled — audience, domain,
// and urgency dimensions.
package classifier

import (
	"context"
	"time"

	"github.com/fortitude-run/fortitude/pkg/ferrors"
	"github.com/fortitude-run/fortitude/pkg/research"
)

// Options configures one Classify call.
type Options struct {
	EnableAdvanced         bool
	EnableContextDetection bool
	ConfidenceThreshold    float64
	MaxProcessingTime      time.Duration
	IncludeExplanations    bool
}

// Classifier holds the rule table. The zero value is not usable; use
// New.
type Classifier struct {
	rules []Rule
}

// New builds a Classifier from rules. A nil or empty slice falls back
// to DefaultRules.
func New(rules []Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Classifier{rules: rules}
}

// Classify runs the basic rule classifier and, if requested, the three
// dimension classifiers, returning a ClassifiedRequest. It fails with
// InvalidInputError on an empty/oversized query and
// ClassificationLowConfidenceError when the winning candidate's
// confidence is below opts.ConfidenceThreshold.
func (c *Classifier) Classify(ctx context.Context, query *research.Query, opts Options) (*research.ClassifiedRequest, error) {
	if err := query.Validate(); err != nil {
		return nil, &ferrors.InvalidInputError{Field: "query.text", Message: err.Error()}
	}

	deadline := opts.MaxProcessingTime
	if deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, deadline)
		defer cancel()
	}

	basic := classifyBasic(query.Text, c.rules)
	winner := basic.Candidates[0]

	if opts.ConfidenceThreshold > 0 && winner.Confidence < opts.ConfidenceThreshold {
		return nil, &ferrors.ClassificationLowConfidenceError{
			BestConfidence: winner.Confidence,
			Threshold:      opts.ConfidenceThreshold,
		}
	}

	result := &research.ClassifiedRequest{
		Query:           *query,
		ResearchType:    winner.Type,
		Confidence:      winner.Confidence,
		MatchedKeywords: basic.MatchedKeywords,
		Candidates:      basic.Candidates,
	}

	if opts.EnableAdvanced {
		select {
		case <-ctx.Done():
			result.FallbackUsed = true
		default:
			audience := classifyAudience(query.Text)
			domain := classifyDomain(query.Text)
			urgency := classifyUrgency(query.Text)

			if !opts.IncludeExplanations {
				audience.Explanation = ""
				domain.Explanation = ""
				urgency.Explanation = ""
			}

			result.AudienceLevel = &audience
			result.TechnicalDomain = &domain
			result.UrgencyLevel = &urgency
			result.FallbackUsed = audience.FallbackUsed || domain.FallbackUsed || urgency.FallbackUsed
		}
	}

	return result, nil
}

// OverallConfidence returns the mean of the populated dimension
// confidences, or the basic classifier's confidence when advanced
// classification was not run.
func OverallConfidence(r *research.ClassifiedRequest) float64 {
	dims := []*research.DimensionResult{r.AudienceLevel, r.TechnicalDomain, r.UrgencyLevel}
	var sum float64
	var n int
	for _, d := range dims {
		if d != nil {
			sum += d.Confidence
			n++
		}
	}
	if n == 0 {
		return r.Confidence
	}
	return sum / float64(n)
}
