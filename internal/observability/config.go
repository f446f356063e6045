package observability

import "log/slog"

// AppMode identifies which surface (CLI, MCP server, library job) emitted a
// given span/log record, attached as a resource/log attribute.
type AppMode string

// Supported application modes.
const (
	ModeCLI AppMode = "cli"
	ModeMCP AppMode = "mcp"
	ModeJob AppMode = "job"
)

// defaultShutdownTimeoutSec bounds how long Providers.Shutdown waits for
// exporters to flush.
const defaultShutdownTimeoutSec = 5

// Config configures observability initialization.
type Config struct {
	// ServiceName identifies the service in traces/metrics/logs.
	ServiceName string

	// ServiceVersion is the running build's version (see pkg/version).
	ServiceVersion string

	// Environment is a free-form deployment environment label (e.g. "prod").
	Environment string

	// Mode identifies the running surface (CLI, MCP, job).
	Mode AppMode

	// OTLPEndpoint is the OTLP/gRPC collector endpoint. Empty disables export
	// and falls back to a no-op tracer provider, and to a no-op meter
	// provider unless PrometheusEnabled is set.
	OTLPEndpoint string

	// OTLPInsecure disables TLS for the OTLP exporters.
	OTLPInsecure bool

	// OTLPHeaders are additional headers sent with every OTLP export request.
	OTLPHeaders map[string]string

	// SampleRatio is the trace sampling ratio used when no OTEL_TRACES_SAMPLER
	// env var is set. Zero means "always sample".
	SampleRatio float64

	// DebugTrace forces always-on sampling and a stderr warning logger for
	// trace export failures.
	DebugTrace bool

	// TraceVerbose disables the attribute allow-list filter on exported spans.
	TraceVerbose bool

	// LogLevel is the minimum slog level emitted.
	LogLevel slog.Level

	// LogJSON selects JSON log output; otherwise text.
	LogJSON bool

	// ShutdownTimeoutSec bounds Providers.Shutdown. Zero uses the default.
	ShutdownTimeoutSec int

	// PrometheusEnabled attaches a Prometheus reader to the meter provider
	// and populates Providers.MetricsHandler with a /metrics scrape
	// handler, for the MCP server's and CLI long-running commands'
	// Prometheus endpoint.
	PrometheusEnabled bool
}

// DefaultConfig returns the default observability configuration: no OTLP
// export (no-op providers), text logs at info level, CLI mode.
func DefaultConfig() Config {
	return Config{
		ServiceName:        "asyncrewriter",
		Mode:               ModeCLI,
		LogLevel:           slog.LevelInfo,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}
