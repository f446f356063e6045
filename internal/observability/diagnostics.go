package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
)

// DiagnosticsServer exposes the Prometheus /metrics scrape endpoint over
// HTTP for the MCP server's and CLI long-running commands' operational
// monitoring. Construct it with the MetricsHandler from Providers returned
// by Init with Config.PrometheusEnabled set.
type DiagnosticsServer struct {
	server   *http.Server
	listener net.Listener
}

// NewDiagnosticsServer starts an HTTP server at addr serving metricsHandler
// at /metrics. Returns an error if metricsHandler is nil (Prometheus was not
// enabled) or the listener cannot be created.
func NewDiagnosticsServer(addr string, metricsHandler http.Handler) (*DiagnosticsServer, error) {
	if metricsHandler == nil {
		return nil, errors.New("diagnostics server requires a non-nil metrics handler")
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metricsHandler)

	var lc net.ListenConfig

	listener, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	srv := &http.Server{Handler: mux}

	go func() {
		serveErr := srv.Serve(listener)
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Warn("diagnostics server stopped", "error", serveErr)
		}
	}()

	return &DiagnosticsServer{server: srv, listener: listener}, nil
}

// Addr returns the address the server is listening on.
func (d *DiagnosticsServer) Addr() string {
	return d.listener.Addr().String()
}

// Close gracefully shuts down the diagnostics server.
func (d *DiagnosticsServer) Close() error {
	err := d.server.Shutdown(context.Background())
	if err != nil {
		return fmt.Errorf("shutdown diagnostics server: %w", err)
	}

	return nil
}
