package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricFilesTotal        = "asyncrewriter.pipeline.files.total"
	metricMethodsIndexed    = "asyncrewriter.pipeline.methods.indexed"
	metricMethodsFlooded    = "asyncrewriter.pipeline.methods.flooded"
	metricSyncWrappersFound = "asyncrewriter.pipeline.sync_wrappers.found"
	metricStageDuration     = "asyncrewriter.pipeline.stage.duration.seconds"

	attrStage = "stage"
)

// PipelineMetrics holds OTel instruments for the extract/flood/rewrite pipeline.
type PipelineMetrics struct {
	filesTotal        metric.Int64Counter
	methodsIndexed    metric.Int64Counter
	methodsFlooded    metric.Int64Counter
	syncWrappersFound metric.Int64Counter
	stageDuration     metric.Float64Histogram
}

// PipelineStats holds the statistics for a single completed pipeline run,
// decoupled from the job package's own types.
type PipelineStats struct {
	FilesProcessed    int64
	MethodsIndexed    int64
	MethodsFlooded    int64
	SyncWrappersFound int64
	ExtractDuration   time.Duration
	FloodDuration     time.Duration
	RewriteDuration   time.Duration
}

// NewPipelineMetrics creates pipeline metric instruments from the given meter.
func NewPipelineMetrics(mt metric.Meter) (*PipelineMetrics, error) {
	files, err := mt.Int64Counter(metricFilesTotal,
		metric.WithDescription("Total source files processed"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFilesTotal, err)
	}

	indexed, err := mt.Int64Counter(metricMethodsIndexed,
		metric.WithDescription("Total methods indexed by the graph extractor"),
		metric.WithUnit("{method}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricMethodsIndexed, err)
	}

	flooded, err := mt.Int64Counter(metricMethodsFlooded,
		metric.WithDescription("Total methods marked requires_async by flooding"),
		metric.WithUnit("{method}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricMethodsFlooded, err)
	}

	wrappers, err := mt.Int64Counter(metricSyncWrappersFound,
		metric.WithDescription("Total sync-wrapper methods detected"),
		metric.WithUnit("{method}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricSyncWrappersFound, err)
	}

	stageDur, err := mt.Float64Histogram(metricStageDuration,
		metric.WithDescription("Per-stage pipeline duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricStageDuration, err)
	}

	return &PipelineMetrics{
		filesTotal:        files,
		methodsIndexed:    indexed,
		methodsFlooded:    flooded,
		syncWrappersFound: wrappers,
		stageDuration:     stageDur,
	}, nil
}

// RecordRun records pipeline statistics for a completed extract/flood/rewrite run.
// Safe to call on a nil receiver (no-op).
func (pm *PipelineMetrics) RecordRun(ctx context.Context, stats PipelineStats) {
	if pm == nil {
		return
	}

	pm.filesTotal.Add(ctx, stats.FilesProcessed)
	pm.methodsIndexed.Add(ctx, stats.MethodsIndexed)
	pm.methodsFlooded.Add(ctx, stats.MethodsFlooded)
	pm.syncWrappersFound.Add(ctx, stats.SyncWrappersFound)

	pm.stageDuration.Record(ctx, stats.ExtractDuration.Seconds(), metric.WithAttributes(attribute.String(attrStage, "extract")))
	pm.stageDuration.Record(ctx, stats.FloodDuration.Seconds(), metric.WithAttributes(attribute.String(attrStage, "flood")))
	pm.stageDuration.Record(ctx, stats.RewriteDuration.Seconds(), metric.WithAttributes(attribute.String(attrStage, "rewrite")))
}
