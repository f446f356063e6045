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
	"github.com/qrious/asyncrewriter/internal/persist"
)

// TransformCommand holds the flags for the transform command.
type TransformCommand struct {
	configPath    string
	storeDir      string
	debug         bool
	graphID       string
	apply         bool
	checkpointDir string
	resume        bool
	clearPrev     bool
	format        string
	noColor       bool
}

// NewTransformCommand creates and configures the transform command.
func NewTransformCommand() *cobra.Command {
	tc := &TransformCommand{}

	cobraCmd := &cobra.Command{
		Use:   "transform <project-path>",
		Short: "Rewrite a Go project's files using a flooded call graph",
		Long: "Rewrite every Go file under a project using a previously flooded call graph, " +
			"inserting async signatures and await points. Writes to disk only when --apply is set; " +
			"otherwise reports the planned rewrites (dry run).",
		Args: cobra.ExactArgs(1),
		RunE: tc.Run,
	}

	cobraCmd.Flags().StringVar(&tc.configPath, "config", "", "Path to config file (default: .asyncrewriter.yaml in CWD or $HOME)")
	cobraCmd.Flags().StringVar(&tc.storeDir, "store-dir", "", "Directory graphs are persisted under (default: ~/.asyncrewriter/graphs)")
	cobraCmd.Flags().BoolVar(&tc.debug, "debug", false, "Enable debug logging and tracing")
	cobraCmd.Flags().StringVar(&tc.graphID, "graph-id", "", "Id of the flooded graph to rewrite from (required)")
	cobraCmd.Flags().BoolVar(&tc.apply, "apply", false, "Write rewrites to disk (default is a dry run)")
	cobraCmd.Flags().StringVar(&tc.checkpointDir, "checkpoint-dir", "", "Directory resumable progress is recorded under (default: config checkpoint.dir)")
	cobraCmd.Flags().BoolVar(&tc.resume, "resume", false, "Resume from a prior checkpoint for this project, if one validates")
	cobraCmd.Flags().BoolVar(&tc.clearPrev, "clear-checkpoint", false, "Discard any existing checkpoint for this project before starting")
	cobraCmd.Flags().StringVarP(&tc.format, "format", "f", FormatText, "Output format: text, table, or json")
	cobraCmd.Flags().BoolVar(&tc.noColor, "no-color", false, "Disable colored text output")

	_ = cobraCmd.MarkFlagRequired("graph-id")

	return cobraCmd
}

// Run executes the transform command.
func (tc *TransformCommand) Run(cobraCmd *cobra.Command, args []string) error {
	projectPath := args[0]

	cfg, err := loadJobConfig(tc.configPath)
	if err != nil {
		return err
	}

	checkpointDir := tc.checkpointDir
	if checkpointDir == "" && cfg.Checkpoint.Enabled {
		checkpointDir = cfg.Checkpoint.Dir
	}

	opts := job.TransformOptions{
		Apply:         tc.apply,
		CheckpointDir: expandHome(checkpointDir),
		Resume:        tc.resume || cfg.Checkpoint.Resume,
		ClearPrev:     tc.clearPrev || cfg.Checkpoint.ClearPrev,
	}

	providers, err := initObservability(tc.debug)
	if err != nil {
		return err
	}

	defer shutdownProviders(context.Background(), providers)

	deps, err := buildJobDeps(tc.storeDir, providers)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cobraCmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	red, err := observability.NewREDMetrics(providers.Meter)
	if err != nil {
		return fmt.Errorf("create RED metrics: %w", err)
	}

	decInflight := red.TrackInflight(ctx, "cli.transform")
	start := time.Now()

	rewrites, failures, err := job.Transformation(ctx, deps, projectPath, persist.GraphID(tc.graphID), opts, func(p job.Progress) {
		reportProgress(cobraCmd.ErrOrStderr(), p)
	})

	decInflight()

	status := "ok"
	if err != nil {
		status = "error"
	}

	red.RecordRequest(ctx, "cli.transform", status, time.Since(start))

	if err != nil {
		return fmt.Errorf("transform: %w", err)
	}

	showPatch := !tc.apply

	return renderTransformResult(cobraCmd.OutOrStdout(), cobraCmd.ErrOrStderr(), rewrites, failures, tc.format, showPatch, tc.noColor)
}
