package classifier

import "github.com/fortitude-run/fortitude/pkg/research"

// Rule maps a set of keywords onto a research type with a tie-break
// priority, mirroring the teacher's policy-priority tables: higher
// priority wins ties, lexicographic type name after that.
type Rule struct {
	Name     string
	Type     research.ResearchType
	Keywords []string
	Priority int
}

// DefaultRules is the built-in keyword → research-type table used when
// no override is configured. Priorities follow the teacher's
// high/medium/low bands (pkg/policy/engine/priority.go).
var DefaultRules = []Rule{
	{
		Name:     "implementation-howto",
		Type:     research.TypeImplementation,
		Priority: 100,
		Keywords: []string{"implement", "how do i", "how to", "build", "create", "add", "integrate", "set up", "configure"},
	},
	{
		Name:     "troubleshooting",
		Type:     research.TypeTroubleshooting,
		Priority: 100,
		Keywords: []string{"error", "fails", "failing", "broken", "bug", "crash", "doesn't work", "not working", "exception", "panic"},
	},
	{
		Name:     "decision",
		Type:     research.TypeDecision,
		Priority: 80,
		Keywords: []string{"should i", "vs", "versus", "compare", "which is better", "pros and cons", "trade-off", "tradeoff"},
	},
	{
		Name:     "learning",
		Type:     research.TypeLearning,
		Priority: 50,
		Keywords: []string{"what is", "explain", "understand", "learn", "concept", "difference between", "overview"},
	},
	{
		Name:     "validation",
		Type:     research.TypeValidation,
		Priority: 50,
		Keywords: []string{"is it correct", "review", "verify", "validate", "best practice", "audit"},
	},
}

// GetRulePriority returns r's priority, defaulting to the teacher's
// medium band when unset.
func GetRulePriority(r Rule) int {
	if r.Priority != 0 {
		return r.Priority
	}
	return 50
}
