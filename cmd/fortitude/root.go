package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fortitude-run/fortitude/pkg/cli"
)

var (
	cfgFile      string
	outputFormat string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "fortitude",
	Short: "Fortitude - AI-assisted research broker",
	Long: `Fortitude classifies natural-language research queries, dispatches
them to an LLM provider, scores and caches the answer, and learns from
user feedback over time.

It serves the same research engine over three surfaces: an HTTP API,
an MCP-style tool protocol, and this CLI.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", string(cli.FormatMarkdown), "output format: markdown, json, table, summary")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.CompletionOptions.DisableDefaultCmd = false
}

func currentFormat() cli.OutputFormat {
	return cli.OutputFormat(outputFormat)
}

func printResult(data interface{}) error {
	return cli.NewFormatter(currentFormat()).FormatTo(os.Stdout, data)
}
