package classifier

import (
	"sort"
	"strings"

	"github.com/fortitude-run/fortitude/pkg/research"
)

// basicResult is the outcome of the keyword-rule classifier: every
// candidate research type considered, ordered highest confidence
// first, plus the matched keywords behind the winner.
type basicResult struct {
	Candidates      []research.Candidate
	MatchedKeywords []string
}

// classifyBasic scores text against rules: for each rule, match score
// is keyword coverage (matched/total) weighted by the rule's priority.
// Scores for rules sharing a research type are summed, then the whole
// distribution is normalized to sum to 1. Ties break by higher
// priority then lexicographic type name, per the rule-priority spec.
func classifyBasic(text string, rules []Rule) basicResult {
	lower := strings.ToLower(text)

	type accum struct {
		score    float64
		priority int
		keywords map[string]struct{}
	}
	byType := make(map[research.ResearchType]*accum)

	for _, rule := range rules {
		if len(rule.Keywords) == 0 {
			continue
		}
		matched := make([]string, 0, len(rule.Keywords))
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				matched = append(matched, kw)
			}
		}
		if len(matched) == 0 {
			continue
		}

		coverage := float64(len(matched)) / float64(len(rule.Keywords))
		weighted := coverage * float64(GetRulePriority(rule))

		a, ok := byType[rule.Type]
		if !ok {
			a = &accum{keywords: make(map[string]struct{})}
			byType[rule.Type] = a
		}
		a.score += weighted
		if p := GetRulePriority(rule); p > a.priority {
			a.priority = p
		}
		for _, kw := range matched {
			a.keywords[kw] = struct{}{}
		}
	}

	if len(byType) == 0 {
		return basicResult{Candidates: []research.Candidate{{Type: research.TypeOther, Confidence: 0}}}
	}

	var total float64
	for _, a := range byType {
		total += a.score
	}

	candidates := make([]research.Candidate, 0, len(byType))
	for t, a := range byType {
		conf := 0.0
		if total > 0 {
			conf = a.score / total
		}
		candidates = append(candidates, research.Candidate{Type: t, Confidence: conf})
	}

	priorityOf := func(t research.ResearchType) int { return byType[t].priority }
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		pi, pj := priorityOf(candidates[i].Type), priorityOf(candidates[j].Type)
		if pi != pj {
			return pi > pj
		}
		return candidates[i].Type < candidates[j].Type
	})

	winner := byType[candidates[0].Type]
	keywords := make([]string, 0, len(winner.keywords))
	for kw := range winner.keywords {
		keywords = append(keywords, kw)
	}
	sort.Strings(keywords)

	return basicResult{Candidates: candidates, MatchedKeywords: keywords}
}
