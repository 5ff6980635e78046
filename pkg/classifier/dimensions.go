package classifier

import (
	"sort"
	"strings"

	"github.com/fortitude-run/fortitude/pkg/research"
)

// dimensionRule is one label's keyword signal within a dimension
// (audience level, technical domain, urgency). Unlike the research-type
// rule table, a dimension always has exactly one winning label.
type dimensionRule struct {
	Label    string
	Keywords []string
}

var audienceLevels = []dimensionRule{
	{Label: "beginner", Keywords: []string{"beginner", "new to", "just started", "eli5", "simple terms", "never used"}},
	{Label: "advanced", Keywords: []string{"advanced", "production", "optimize", "internals", "performance-critical", "at scale"}},
	{Label: "intermediate", Keywords: []string{"familiar with", "already know", "some experience"}},
}

var technicalDomains = []dimensionRule{
	{Label: "rust", Keywords: []string{"rust", "cargo", "tokio", "borrow checker"}},
	{Label: "web", Keywords: []string{"javascript", "typescript", "react", "css", "html", "frontend", "browser"}},
	{Label: "devops", Keywords: []string{"kubernetes", "docker", "terraform", "ci/cd", "deployment", "infrastructure"}},
	{Label: "go", Keywords: []string{"golang", "goroutine", "go module"}},
	{Label: "data", Keywords: []string{"sql", "database", "pipeline", "etl", "pandas"}},
}

var urgencyLevels = []dimensionRule{
	{Label: "immediate", Keywords: []string{"urgent", "asap", "production down", "right now", "blocking", "critical"}},
	{Label: "planned", Keywords: []string{"next sprint", "planning", "upcoming", "roadmap"}},
	{Label: "exploratory", Keywords: []string{"curious", "just wondering", "exploring", "out of interest"}},
}

// defaultLabel and minSignal gate the fallback path: a dimension with
// no keyword hits at all returns its default label with fallback_used
// set, rather than guessing.
const minSignal = 1

func classifyDimension(text string, rules []dimensionRule, defaultLabel string) research.DimensionResult {
	lower := strings.ToLower(text)

	type hit struct {
		label    string
		matched  []string
	}
	var hits []hit
	for _, r := range rules {
		var matched []string
		for _, kw := range r.Keywords {
			if strings.Contains(lower, kw) {
				matched = append(matched, kw)
			}
		}
		if len(matched) >= minSignal {
			hits = append(hits, hit{label: r.Label, matched: matched})
		}
	}

	if len(hits) == 0 {
		return research.DimensionResult{
			Label:        defaultLabel,
			Confidence:   0.3,
			Explanation:  "no dimension keywords matched; using default",
			FallbackUsed: true,
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if len(hits[i].matched) != len(hits[j].matched) {
			return len(hits[i].matched) > len(hits[j].matched)
		}
		return hits[i].label < hits[j].label
	})

	winner := hits[0]
	total := 0
	for _, h := range hits {
		total += len(h.matched)
	}
	confidence := float64(len(winner.matched)) / float64(total)
	// A single unambiguous signal is still meaningfully more confident
	// than a narrow plurality among several tied labels.
	if len(hits) == 1 {
		confidence = 0.6 + 0.4*confidence
	}

	keywords := append([]string(nil), winner.matched...)
	sort.Strings(keywords)

	return research.DimensionResult{
		Label:       winner.label,
		Confidence:  confidence,
		Keywords:    keywords,
		Explanation: "matched " + strings.Join(keywords, ", "),
	}
}

func classifyAudience(text string) research.DimensionResult {
	return classifyDimension(text, audienceLevels, "intermediate")
}

func classifyDomain(text string) research.DimensionResult {
	return classifyDimension(text, technicalDomains, "web")
}

func classifyUrgency(text string) research.DimensionResult {
	return classifyDimension(text, urgencyLevels, "planned")
}
