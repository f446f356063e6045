package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/qrious/asyncrewriter/internal/observability"
)

// acceptanceSpanCount is the expected number of spans in the acceptance test
// (root + extract + flood).
const acceptanceSpanCount = 3

// acceptanceFileCount is the simulated processed-file count used in log assertions.
const acceptanceFileCount = 42

// TestAcceptance_EndToEnd verifies all three observability signals (traces,
// metrics, structured logs with trace context) work together across a
// simulated extract/flood/rewrite pipeline run.
func TestAcceptance_EndToEnd(t *testing.T) {
	t.Parallel()

	// Setup: in-memory trace exporter.
	spanExporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(spanExporter))

	t.Cleanup(func() { require.NoError(t, tp.Shutdown(context.Background())) })

	tracer := tp.Tracer("asyncrewriter")

	// Setup: in-memory metric reader.
	metricReader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(metricReader))
	meter := mp.Meter("asyncrewriter")

	red, err := observability.NewREDMetrics(meter)
	require.NoError(t, err)

	pipeline, err := observability.NewPipelineMetrics(meter)
	require.NoError(t, err)

	// Setup: structured logger with trace context.
	var logBuf bytes.Buffer

	innerHandler := slog.NewJSONHandler(&logBuf, &slog.HandlerOptions{Level: slog.LevelDebug})
	tracingHandler := observability.NewTracingHandler(innerHandler, "asyncrewriter", "test", observability.ModeCLI)
	logger := slog.New(tracingHandler)

	// Simulate pipeline: root span, child spans, metrics, logs.
	ctx, rootSpan := tracer.Start(context.Background(), "asyncrewriter.run")

	_, extractSpan := tracer.Start(ctx, "asyncrewriter.extract")
	extractSpan.End()

	_, floodSpan := tracer.Start(ctx, "asyncrewriter.flood")
	floodSpan.End()

	// Record metrics within the trace context.
	red.RecordRequest(ctx, "job.analysis", "ok", time.Second)

	pipeline.RecordRun(ctx, observability.PipelineStats{
		FilesProcessed:    acceptanceFileCount,
		MethodsIndexed:    200,
		MethodsFlooded:    17,
		SyncWrappersFound: 3,
		ExtractDuration:   time.Second,
		FloodDuration:     500 * time.Millisecond,
		RewriteDuration:   2 * time.Second,
	})

	// Emit a log line within the trace context.
	logger.InfoContext(ctx, "pipeline.complete", "files_processed", acceptanceFileCount)

	rootSpan.End()

	// Assert: Traces.
	spans := spanExporter.GetSpans()
	require.Len(t, spans, acceptanceSpanCount, "expected root + 2 child spans")

	spanNames := make(map[string]bool, len(spans))
	for _, s := range spans {
		spanNames[s.Name] = true
	}

	assert.True(t, spanNames["asyncrewriter.run"], "root span should exist")
	assert.True(t, spanNames["asyncrewriter.extract"], "extract span should exist")
	assert.True(t, spanNames["asyncrewriter.flood"], "flood span should exist")

	// All spans share the same trace ID.
	traceID := spans[0].SpanContext.TraceID()
	for _, s := range spans[1:] {
		assert.Equal(t, traceID, s.SpanContext.TraceID(),
			"span %q should share trace ID", s.Name)
	}

	// Assert: Metrics.
	var rm metricdata.ResourceMetrics

	err = metricReader.Collect(ctx, &rm)
	require.NoError(t, err)

	reqTotal := findMetric(rm, "asyncrewriter.requests.total")
	require.NotNil(t, reqTotal, "request counter should be recorded")

	reqDuration := findMetric(rm, "asyncrewriter.request.duration.seconds")
	require.NotNil(t, reqDuration, "duration histogram should be recorded")

	// Assert: Pipeline metrics.
	filesTotal := findMetric(rm, "asyncrewriter.pipeline.files.total")
	require.NotNil(t, filesTotal, "pipeline files counter should be recorded")

	methodsFlooded := findMetric(rm, "asyncrewriter.pipeline.methods.flooded")
	require.NotNil(t, methodsFlooded, "flooded-methods counter should be recorded")

	stageDuration := findMetric(rm, "asyncrewriter.pipeline.stage.duration.seconds")
	require.NotNil(t, stageDuration, "stage duration histogram should be recorded")

	// Assert: Logs contain trace_id.
	var logRecord map[string]any

	err = json.Unmarshal(logBuf.Bytes(), &logRecord)
	require.NoError(t, err)

	assert.Equal(t, traceID.String(), logRecord["trace_id"],
		"log line should contain the active trace_id")
	assert.Contains(t, logRecord, "span_id",
		"log line should contain span_id")
	assert.Equal(t, "asyncrewriter", logRecord["service"],
		"log line should contain service name")

	filesProcessed, ok := logRecord["files_processed"].(float64)
	require.True(t, ok, "files_processed should be a number")
	assert.InDelta(t, acceptanceFileCount, filesProcessed, 0,
		"log line should contain custom attributes")
}
