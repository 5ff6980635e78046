package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fortitude-run/fortitude/pkg/cli"
	"github.com/fortitude-run/fortitude/pkg/storage"
)

var cacheStatusCmd = &cobra.Command{
	Use:   "cache-status",
	Short: "Show cache statistics",
	RunE:  runCacheStatus,
}

func init() {
	rootCmd.AddCommand(cacheStatusCmd)
}

func runCacheStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	stats, err := a.store.Stats(context.Background())
	if err != nil {
		return cli.NewCommandError("cache-status", err)
	}

	return printResult(cacheStatsView{stats})
}

type cacheStatsView struct {
	storage.Stats
}

func (v cacheStatsView) TableHeader() []string { return []string{"metric", "value"} }

func (v cacheStatsView) TableRows() [][]string {
	return [][]string{
		{"total_entries", fmt.Sprintf("%d", v.TotalEntries)},
		{"expired_entries", fmt.Sprintf("%d", v.ExpiredEntries)},
		{"total_size_bytes", fmt.Sprintf("%d", v.TotalSizeBytes)},
		{"hits", fmt.Sprintf("%d", v.Hits)},
		{"misses", fmt.Sprintf("%d", v.Misses)},
		{"average_age", v.AverageAge.String()},
	}
}

func (v cacheStatsView) Summary() string {
	return fmt.Sprintf("%d entries, %d hits, %d misses, %d bytes", v.TotalEntries, v.Hits, v.Misses, v.TotalSizeBytes)
}
