package main

import (
	"github.com/spf13/cobra"

	"github.com/fortitude-run/fortitude/pkg/cli"
	"github.com/fortitude-run/fortitude/pkg/ferrors"
)

// vectorCmd and its subcommands, and the semantic-search, hybrid-search,
// and find-similar commands below, front pkg/storage.VectorIndex — an
// interface with no implementation, per spec.md's Non-goals. Every
// RunE here returns ErrNotImplemented so the CLI surface matches the
// documented command set while being honest that nothing backs it yet.

var vectorCmd = &cobra.Command{
	Use:   "vector",
	Short: "Manage the semantic vector index (not yet implemented)",
}

var vectorConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show vector index configuration",
	RunE:  runNotImplemented("vector config"),
}

var vectorHealthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check vector index health",
	RunE:  runNotImplemented("vector health"),
}

var vectorStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show vector index statistics",
	RunE:  runNotImplemented("vector stats"),
}

var vectorMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Backfill the vector index from existing cache entries",
	RunE:  runNotImplemented("vector migrate"),
}

var semanticSearchCmd = &cobra.Command{
	Use:   "semantic-search <query text>",
	Short: "Search cached research results by embedding similarity (not yet implemented)",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runNotImplemented("semantic-search"),
}

var hybridSearchCmd = &cobra.Command{
	Use:   "hybrid-search <query text>",
	Short: "Search combining free-text and embedding similarity (not yet implemented)",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runNotImplemented("hybrid-search"),
}

var findSimilarCmd = &cobra.Command{
	Use:   "find-similar <cache key>",
	Short: "Find cache entries similar to a given entry (not yet implemented)",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotImplemented("find-similar"),
}

func init() {
	rootCmd.AddCommand(vectorCmd, semanticSearchCmd, hybridSearchCmd, findSimilarCmd)
	vectorCmd.AddCommand(vectorConfigCmd, vectorHealthCmd, vectorStatsCmd, vectorMigrateCmd)
}

// runNotImplemented returns a cobra RunE that reports ErrNotImplemented
// for command, wrapped the same way any other command failure is.
func runNotImplemented(command string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return cli.NewCommandError(command, ferrors.ErrNotImplemented)
	}
}
