// Package main provides the entry point for the asyncrewriter CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/qrious/asyncrewriter/cmd/asyncrewriter/commands"
	"github.com/qrious/asyncrewriter/pkg/version"
)

var (
	verbose bool
	quiet   bool
)

func main() {
	version.InitBinaryVersion()

	rootCmd := &cobra.Command{
		Use:   "asyncrewriter",
		Short: "asyncrewriter - sync-to-async Go call graph rewriter",
		Long: `asyncrewriter extracts a Go project's call graph, floods async-ness
out from a set of root methods, and rewrites synchronous call sites into
their async form.

Commands:
  analyze    Extract the call graph only (no flooding)
  syncwrap   Detect sync wrappers and flood async-ness from given roots
  transform  Rewrite files using a previously flooded graph
  mcp        Start an MCP server exposing these as AI-agent tools`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output")

	rootCmd.AddCommand(commands.NewAnalyzeCommand())
	rootCmd.AddCommand(commands.NewSyncWrapCommand())
	rootCmd.AddCommand(commands.NewTransformCommand())
	rootCmd.AddCommand(commands.NewMCPCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "asyncrewriter %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
