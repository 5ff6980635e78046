package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fortitude-run/fortitude/pkg/cli"
	"github.com/fortitude-run/fortitude/pkg/research"
	"github.com/fortitude-run/fortitude/pkg/storage"
)

var listFlags struct {
	limit  int
	offset int
	sort   string
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached research results",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().IntVar(&listFlags.limit, "limit", 20, "max entries to return (1-100)")
	listCmd.Flags().IntVar(&listFlags.offset, "offset", 0, "entries to skip")
	listCmd.Flags().StringVar(&listFlags.sort, "sort", string(storage.SortNewest), "sort order: relevance, newest, oldest, quality, size")
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	q := storage.SearchQuery{Limit: listFlags.limit, Offset: listFlags.offset, Sort: storage.SortOrder(listFlags.sort)}
	q.Normalize()

	result, err := a.store.Search(context.Background(), q)
	if err != nil {
		return cli.NewCommandError("list", err)
	}

	return printResult(cacheEntryListView{result.Entries, result.Total})
}

type cacheEntryListView struct {
	entries []research.CacheEntry
	total   int
}

func (v cacheEntryListView) TableHeader() []string {
	return []string{"cache_key", "research_type", "quality_score", "created_at"}
}

func (v cacheEntryListView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.entries))
	for _, e := range v.entries {
		rows = append(rows, []string{
			e.CacheKey, string(e.ResearchType),
			fmt.Sprintf("%.2f", e.QualityScore), e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return rows
}

func (v cacheEntryListView) Summary() string {
	return fmt.Sprintf("%d of %d cached entries", len(v.entries), v.total)
}

func (v cacheEntryListView) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Entries []research.CacheEntry `json:"entries"`
		Total   int                   `json:"total"`
	}{v.entries, v.total})
}
