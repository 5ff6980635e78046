package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/fortitude-run/fortitude/pkg/cli"
	"github.com/fortitude-run/fortitude/pkg/storage"
)

var searchFlags struct {
	limit      int
	offset     int
	sort       string
	tags       []string
	minQuality float64
}

var searchCmd = &cobra.Command{
	Use:   "search <query text>",
	Short: "Search cached research results by free text and filters",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVar(&searchFlags.limit, "limit", 20, "max entries to return (1-100)")
	searchCmd.Flags().IntVar(&searchFlags.offset, "offset", 0, "entries to skip")
	searchCmd.Flags().StringVar(&searchFlags.sort, "sort", string(storage.SortRelevance), "sort order: relevance, newest, oldest, quality, size")
	searchCmd.Flags().StringSliceVar(&searchFlags.tags, "tags", nil, "filter to entries carrying all of these tags")
	searchCmd.Flags().Float64Var(&searchFlags.minQuality, "min-quality", 0, "minimum quality score [0,1]")
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	q := storage.SearchQuery{
		Text:   joinArgs(args),
		Limit:  searchFlags.limit,
		Offset: searchFlags.offset,
		Sort:   storage.SortOrder(searchFlags.sort),
		Filters: storage.SearchFilters{
			Tags:       searchFlags.tags,
			MinQuality: searchFlags.minQuality,
		},
	}
	q.Normalize()

	result, err := a.store.Search(context.Background(), q)
	if err != nil {
		return cli.NewCommandError("search", err)
	}

	return printResult(cacheEntryListView{result.Entries, result.Total})
}
