package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/qrious/asyncrewriter/internal/job"
	"github.com/qrious/asyncrewriter/internal/observability"
)

// AnalyzeCommand holds the flags for the analyze command.
type AnalyzeCommand struct {
	configPath string
	storeDir   string
	debug      bool
	format     string
}

// NewAnalyzeCommand creates and configures the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	ac := &AnalyzeCommand{}

	cobraCmd := &cobra.Command{
		Use:   "analyze <project-path>",
		Short: "Extract a Go project's call graph",
		Long:  "Run symbol resolution and call-graph extraction over a Go project, printing the id of the stored (unflooded) graph.",
		Args:  cobra.ExactArgs(1),
		RunE:  ac.Run,
	}

	cobraCmd.Flags().StringVar(&ac.configPath, "config", "", "Path to config file (default: .asyncrewriter.yaml in CWD or $HOME)")
	cobraCmd.Flags().StringVar(&ac.storeDir, "store-dir", "", "Directory graphs are persisted under (default: ~/.asyncrewriter/graphs)")
	cobraCmd.Flags().BoolVar(&ac.debug, "debug", false, "Enable debug logging and tracing")
	cobraCmd.Flags().StringVarP(&ac.format, "format", "f", FormatText, "Output format: text, table, or json")

	return cobraCmd
}

// Run executes the analyze command.
func (ac *AnalyzeCommand) Run(cobraCmd *cobra.Command, args []string) error {
	projectPath := args[0]

	providers, err := initObservability(ac.debug)
	if err != nil {
		return err
	}

	defer shutdownProviders(context.Background(), providers)

	deps, err := buildJobDeps(ac.storeDir, providers)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cobraCmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	red, err := observability.NewREDMetrics(providers.Meter)
	if err != nil {
		return fmt.Errorf("create RED metrics: %w", err)
	}

	decInflight := red.TrackInflight(ctx, "cli.analyze")
	start := time.Now()

	graphID, err := job.Analysis(ctx, deps, projectPath, func(p job.Progress) {
		reportProgress(cobraCmd.ErrOrStderr(), p)
	})

	decInflight()

	status := "ok"
	if err != nil {
		status = "error"
	}

	red.RecordRequest(ctx, "cli.analyze", status, time.Since(start))

	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	return renderAnalyzeResult(cobraCmd.OutOrStdout(), graphID, ac.format)
}
