package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fortitude-run/fortitude/pkg/cli"
	"github.com/fortitude-run/fortitude/pkg/research"
)

var researchFlags struct {
	audienceLevel string
	domain        string
	technology    string
	projectType   string
}

var researchCmd = &cobra.Command{
	Use:   "research <query text>",
	Short: "Run a research query through the local engine",
	Long: `Classify, dispatch, score, and cache a single research query.

Examples:
  fortitude research "how do I implement a retry loop in Go"
  fortitude research "why is my goroutine leaking" --audience-level expert`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResearch,
}

func init() {
	rootCmd.AddCommand(researchCmd)

	researchCmd.Flags().StringVar(&researchFlags.audienceLevel, "audience-level", "", "reader experience level (e.g. beginner, expert)")
	researchCmd.Flags().StringVar(&researchFlags.domain, "domain", "", "reader-facing subject domain")
	researchCmd.Flags().StringVar(&researchFlags.technology, "technology", "", "project technology hint")
	researchCmd.Flags().StringVar(&researchFlags.projectType, "project-type", "", "project type hint")
}

func runResearch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	query := research.Query{Text: joinArgs(args)}
	if researchFlags.audienceLevel != "" || researchFlags.domain != "" {
		query.Audience = &research.AudienceContext{Level: researchFlags.audienceLevel, Domain: researchFlags.domain}
	}
	if researchFlags.technology != "" || researchFlags.projectType != "" {
		query.Domain = &research.DomainContext{Technology: researchFlags.technology, ProjectType: researchFlags.projectType}
	}

	result, err := a.pipeline.Process(context.Background(), &query)
	if err != nil {
		return cli.NewCommandError("research", err)
	}

	return printResult(researchResultView{result})
}

func joinArgs(args []string) string {
	out := args[0]
	for _, a := range args[1:] {
		out += " " + a
	}
	return out
}

// researchResultView adapts a research.ResearchResult to cli.Tabular
// and cli.Summarizable so every output format has a meaningful
// rendering, not just the generic JSON fallback.
type researchResultView struct {
	*research.ResearchResult
}

func (v researchResultView) TableHeader() []string {
	return []string{"field", "value"}
}

func (v researchResultView) TableRows() [][]string {
	return [][]string{
		{"research_type", string(v.Request.ResearchType)},
		{"cache_key", v.Metadata.CacheKey},
		{"quality_score", fmt.Sprintf("%.2f", v.Metadata.QualityScore)},
		{"cache_hit", fmt.Sprintf("%v", v.Metadata.CacheHit)},
		{"provider_used", v.Metadata.ProviderUsed},
		{"processing_time_ms", fmt.Sprintf("%d", v.Metadata.ProcessingTimeMs)},
		{"answer", v.ImmediateAnswer},
	}
}

func (v researchResultView) Summary() string {
	return fmt.Sprintf("%s (%s, quality %.2f, cache_key %s)",
		v.Request.ResearchType, providerOrCache(v.Metadata), v.Metadata.QualityScore, v.Metadata.CacheKey)
}

func providerOrCache(m research.ResultMetadata) string {
	if m.CacheHit {
		return "cache hit"
	}
	return "provider " + m.ProviderUsed
}
