// Package commands provides CLI command implementations for asyncrewriter.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/qrious/asyncrewriter/internal/job"
	"github.com/qrious/asyncrewriter/internal/jobconfig"
	"github.com/qrious/asyncrewriter/internal/observability"
	"github.com/qrious/asyncrewriter/internal/persist"
	"github.com/qrious/asyncrewriter/pkg/version"
)

// defaultStoreDirName names the subdirectory under the user's home
// directory where extracted/flooded call graphs are persisted between CLI
// invocations, mirroring internal/checkpoint.DefaultDir's "~/.asyncrewriter"
// placement convention for the neighboring checkpoint store.
const defaultStoreDirName = ".asyncrewriter/graphs"

// defaultStoreDir returns "~/.asyncrewriter/graphs", falling back to a
// relative path when the home directory can't be resolved.
func defaultStoreDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultStoreDirName
	}

	return filepath.Join(home, defaultStoreDirName)
}

// expandHome expands a leading "~" into the user's home directory. Paths
// without a leading "~" are returned unchanged.
func expandHome(path string) string {
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}

		return home
	}

	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}

		return filepath.Join(home, rest)
	}

	return path
}

// initObservability builds the CLI's observability providers: a no-op
// tracer/meter unless OTEL_EXPORTER_OTLP_ENDPOINT is set, and a structured
// logger, matching the teacher's mcp.go initMCPObservability for the CLI's
// own ModeCLI surface.
func initObservability(debug bool) (observability.Providers, error) {
	cfg := observability.DefaultConfig()
	cfg.ServiceVersion = version.Version
	cfg.OTLPEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	cfg.OTLPHeaders = observability.ParseOTLPHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))
	cfg.OTLPInsecure = os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true"
	cfg.Mode = observability.ModeCLI
	cfg.LogJSON = false

	if debug {
		cfg.LogLevel = slog.LevelDebug
		cfg.DebugTrace = true
	}

	providers, err := observability.Init(cfg)
	if err != nil {
		return observability.Providers{}, fmt.Errorf("init observability: %w", err)
	}

	return providers, nil
}

// buildJobDeps assembles job.Deps for a CLI invocation: a file-backed graph
// store rooted at storeDir (defaulting to defaultStoreDir when empty), the
// providers' logger, and pipeline metrics built from the providers' meter.
func buildJobDeps(storeDir string, providers observability.Providers) (job.Deps, error) {
	if storeDir == "" {
		storeDir = defaultStoreDir()
	}

	metrics, err := observability.NewPipelineMetrics(providers.Meter)
	if err != nil {
		return job.Deps{}, fmt.Errorf("create pipeline metrics: %w", err)
	}

	return job.Deps{
		Store:   persist.NewFileStore(expandHome(storeDir)),
		Logger:  providers.Logger,
		Metrics: metrics,
	}, nil
}

// loadJobConfig loads jobconfig.Config from configPath, falling back to
// CWD/$HOME discovery and defaults when configPath is empty.
func loadJobConfig(configPath string) (*jobconfig.Config, error) {
	cfg, err := jobconfig.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return cfg, nil
}

// reportProgress prints a one-line progress update to w, matching the
// teacher's run.go progress-to-stderr convention.
func reportProgress(w io.Writer, p job.Progress) {
	switch {
	case p.TotalCount > 0:
		fmt.Fprintf(w, "%s: %s (%d/%d)\n", p.Phase, p.CurrentFile, p.ProcessedCount, p.TotalCount)
	case p.MethodCount > 0:
		fmt.Fprintf(w, "%s: %d/%d methods\n", p.Phase, p.MethodsProcessed, p.MethodCount)
	default:
		fmt.Fprintf(w, "%s\n", p.Phase)
	}
}

// shutdownProviders flushes telemetry, logging (not returning) any
// shutdown failure, matching the teacher's mcp.go deferred-shutdown shape.
func shutdownProviders(ctx context.Context, providers observability.Providers) {
	err := providers.Shutdown(ctx)
	if err != nil {
		providers.Logger.Warn("observability shutdown failed", "error", err)
	}
}
