package job

import (
	"context"
	"fmt"
	"time"

	"github.com/qrious/asyncrewriter/internal/checkpoint"
	"github.com/qrious/asyncrewriter/internal/flood"
	"github.com/qrious/asyncrewriter/internal/graphextract"
	"github.com/qrious/asyncrewriter/internal/model"
	"github.com/qrious/asyncrewriter/internal/observability"
	"github.com/qrious/asyncrewriter/internal/persist"
	"github.com/qrious/asyncrewriter/internal/resolve"
	"github.com/qrious/asyncrewriter/internal/syncwrap"
	"github.com/qrious/asyncrewriter/pkg/mapx"
)

// SyncWrapperAnalysis runs C1/C2/C3/C4 over projectPath: resolve, extract,
// detect sync wrappers, flood from roots (with an optional interface-mapping
// override), store the flooded graph, and return the sorted sync-wrapper
// identity list alongside its graph id — the §6 "SyncWrapperAnalysis
// (project path -> sync-wrapper list + flooded graph)" entry point.
func SyncWrapperAnalysis(
	ctx context.Context,
	deps Deps,
	projectPath string,
	roots []model.MethodIdentity,
	interfaceMapping map[string]string,
	progress ProgressFunc,
) ([]string, persist.GraphID, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrCancelled, err)
	}

	progress.report(Progress{Phase: "resolve"})

	extractStart := time.Now()

	comp, err := resolve.Load(ctx, resolve.Options{Dir: projectPath})
	if err != nil {
		return nil, "", fmt.Errorf("job: syncwrap_analysis: load compilation: %w", err)
	}

	progress.report(Progress{Phase: "extract", TotalCount: len(comp.Packages)})

	graph, err := graphextract.Extract(ctx, comp, graphextract.Options{})
	if err != nil {
		if ctx.Err() != nil {
			return nil, "", fmt.Errorf("%w: %w", ErrCancelled, err)
		}

		return nil, "", fmt.Errorf("job: syncwrap_analysis: extract graph: %w", err)
	}

	extractDuration := time.Since(extractStart)

	if interfaceMapping != nil {
		graph.InterfaceMapping = interfaceMapping
	}

	progress.report(Progress{Phase: "syncwrap_detect"})

	syncwrap.Detect(graph)

	progress.report(Progress{Phase: "flood", TotalCount: len(roots)})

	floodStart := time.Now()
	floodedCount := 0

	_, floodErr := flood.Flood(ctx, graph, roots, func(m model.MethodIdentity) {
		floodedCount++
		progress.report(Progress{Phase: "flood", ProcessedCount: floodedCount, CurrentFile: m.String()})
	})
	if floodErr != nil {
		return nil, "", fmt.Errorf("job: syncwrap_analysis: flood: %w", floodErr)
	}

	floodDuration := time.Since(floodStart)

	deps.Metrics.RecordRun(ctx, observability.PipelineStats{
		FilesProcessed:    int64(len(comp.Packages)),
		MethodsIndexed:    int64(len(graph.Nodes())),
		MethodsFlooded:    int64(len(graph.FloodedMethods)),
		SyncWrappersFound: int64(len(graph.SyncWrapperMethods)),
		ExtractDuration:   extractDuration,
		FloodDuration:     floodDuration,
	})

	id := persist.GraphID(checkpoint.SourceHash(projectPath))

	saveErr := deps.Store.Save(ctx, &persist.Record{ID: id, ProjectName: projectPath, Graph: graph},
		func(phase string, done, total int) {
			progress.report(Progress{Phase: "store:" + phase, ProcessedCount: done, TotalCount: total})
		})
	if saveErr != nil {
		return nil, "", fmt.Errorf("job: syncwrap_analysis: save graph: %w", saveErr)
	}

	return mapx.SortedKeys(graph.SyncWrapperMethods), id, nil
}
