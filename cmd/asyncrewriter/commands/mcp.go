package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/qrious/asyncrewriter/internal/mcpserver"
	"github.com/qrious/asyncrewriter/internal/observability"
	"github.com/qrious/asyncrewriter/pkg/version"
)

// NewMCPCommand creates the MCP server command.
func NewMCPCommand() *cobra.Command {
	var (
		debug       bool
		storeDir    string
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The MCP server exposes asyncrewriter's pipeline as tools that AI agents
can discover and invoke:
  - analyze: Call-graph extraction only
  - syncwrap_analyze: Sync-wrapper detection + async-flooding from given roots
  - transform: Rewrite files using a previously flooded graph`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			providers, err := initMCPObservability(debug, metricsAddr != "")
			if err != nil {
				return err
			}

			defer func() {
				shutdownErr := providers.Shutdown(context.Background())
				if shutdownErr != nil {
					providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
				}
			}()

			if metricsAddr != "" {
				diag, diagErr := observability.NewDiagnosticsServer(metricsAddr, providers.MetricsHandler)
				if diagErr != nil {
					return diagErr
				}

				defer func() {
					if closeErr := diag.Close(); closeErr != nil {
						providers.Logger.Warn("diagnostics server shutdown failed", "error", closeErr)
					}
				}()

				providers.Logger.Info("metrics endpoint listening", "addr", diag.Addr())
			}

			red, redErr := observability.NewREDMetrics(providers.Meter)
			if redErr != nil {
				return redErr
			}

			jobDeps, depsErr := buildJobDeps(storeDir, providers)
			if depsErr != nil {
				return depsErr
			}

			deps := mcpserver.ServerDeps{Logger: providers.Logger, Metrics: red, Tracer: providers.Tracer, Job: jobDeps}

			srv := mcpserver.NewServer(deps)

			return srv.Run(cobraCmd.Context())
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging to stderr")
	cmd.Flags().StringVar(&storeDir, "store-dir", "", "Directory graphs are persisted under (default: ~/.asyncrewriter/graphs)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Address to serve Prometheus /metrics on (disabled if empty)")

	return cmd
}

func initMCPObservability(debug, prometheusEnabled bool) (observability.Providers, error) {
	cfg := observability.DefaultConfig()
	cfg.ServiceVersion = version.Version
	cfg.OTLPEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	cfg.OTLPHeaders = observability.ParseOTLPHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))
	cfg.OTLPInsecure = os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true"
	cfg.Mode = observability.ModeMCP
	cfg.LogJSON = true
	cfg.PrometheusEnabled = prometheusEnabled

	if debug {
		cfg.LogLevel = slog.LevelDebug
		cfg.DebugTrace = true
	}

	return observability.Init(cfg)
}
