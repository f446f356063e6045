package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/qrious/asyncrewriter/internal/job"
	"github.com/qrious/asyncrewriter/internal/jobconfig"
	"github.com/qrious/asyncrewriter/internal/observability"
)

// SyncWrapCommand holds the flags for the syncwrap command.
type SyncWrapCommand struct {
	configPath       string
	storeDir         string
	debug            bool
	roots            []string
	interfaceMapping map[string]string
}

// NewSyncWrapCommand creates and configures the syncwrap command.
func NewSyncWrapCommand() *cobra.Command {
	sc := &SyncWrapCommand{}

	cobraCmd := &cobra.Command{
		Use:   "syncwrap <project-path>",
		Short: "Detect sync wrappers and flood async-ness from root methods",
		Long: "Run call-graph extraction, sync-wrapper detection, and async-flooding over a Go project, " +
			"starting from --roots, printing the detected sync wrappers and the id of the stored flooded graph.",
		Args: cobra.ExactArgs(1),
		RunE: sc.Run,
	}

	cobraCmd.Flags().StringVar(&sc.configPath, "config", "", "Path to config file (default: .asyncrewriter.yaml in CWD or $HOME)")
	cobraCmd.Flags().StringVar(&sc.storeDir, "store-dir", "", "Directory graphs are persisted under (default: ~/.asyncrewriter/graphs)")
	cobraCmd.Flags().BoolVar(&sc.debug, "debug", false, "Enable debug logging and tracing")
	cobraCmd.Flags().StringSliceVar(&sc.roots, "roots", nil, `Root method identities, e.g. "pkg.Type.Method(string,int)" (merged with config file roots)`)
	cobraCmd.Flags().StringToStringVar(&sc.interfaceMapping, "interface-mapping", nil,
		"Sync-to-async interface mapping entries, e.g. Reader=AsyncReader (merged with config file mapping)")

	return cobraCmd
}

// Run executes the syncwrap command.
func (sc *SyncWrapCommand) Run(cobraCmd *cobra.Command, args []string) error {
	projectPath := args[0]

	cfg, err := loadJobConfig(sc.configPath)
	if err != nil {
		return err
	}

	mergeRootsAndMapping(cfg, sc.roots, sc.interfaceMapping)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	roots, err := cfg.ResolveRoots()
	if err != nil {
		return fmt.Errorf("resolve roots: %w", err)
	}

	providers, err := initObservability(sc.debug)
	if err != nil {
		return err
	}

	defer shutdownProviders(context.Background(), providers)

	deps, err := buildJobDeps(sc.storeDir, providers)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cobraCmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	red, err := observability.NewREDMetrics(providers.Meter)
	if err != nil {
		return fmt.Errorf("create RED metrics: %w", err)
	}

	decInflight := red.TrackInflight(ctx, "cli.syncwrap")
	start := time.Now()

	wrappers, graphID, err := job.SyncWrapperAnalysis(ctx, deps, projectPath, roots, cfg.InterfaceMapping, func(p job.Progress) {
		reportProgress(cobraCmd.ErrOrStderr(), p)
	})

	decInflight()

	status := "ok"
	if err != nil {
		status = "error"
	}

	red.RecordRequest(ctx, "cli.syncwrap", status, time.Since(start))

	if err != nil {
		return fmt.Errorf("syncwrap: %w", err)
	}

	out := cobraCmd.OutOrStdout()
	fmt.Fprintf(out, "graph_id: %s\n", graphID)
	fmt.Fprintf(out, "sync_wrapper_methods: %d\n", len(wrappers))

	for _, m := range wrappers {
		fmt.Fprintf(out, "  %s\n", m)
	}

	return nil
}

// mergeRootsAndMapping layers CLI-supplied roots/interface-mapping entries
// on top of whatever the config file already carries.
func mergeRootsAndMapping(cfg *jobconfig.Config, roots []string, interfaceMapping map[string]string) {
	if len(roots) > 0 {
		cfg.Roots = append(cfg.Roots, roots...)
	}

	if len(interfaceMapping) == 0 {
		return
	}

	if cfg.InterfaceMapping == nil {
		cfg.InterfaceMapping = make(map[string]string, len(interfaceMapping))
	}

	for k, v := range interfaceMapping {
		cfg.InterfaceMapping[k] = v
	}
}
