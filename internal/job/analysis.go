package job

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/qrious/asyncrewriter/internal/checkpoint"
	"github.com/qrious/asyncrewriter/internal/graphextract"
	"github.com/qrious/asyncrewriter/internal/observability"
	"github.com/qrious/asyncrewriter/internal/persist"
	"github.com/qrious/asyncrewriter/internal/resolve"
)

// Analysis runs the C1/C2 stages (symbol resolution, graph extraction) over
// projectPath, stores the resulting graph, and returns its id — the §6
// "Analysis (project path -> graph id)" entry point.
func Analysis(ctx context.Context, deps Deps, projectPath string, progress ProgressFunc) (persist.GraphID, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrCancelled, err)
	}

	progress.report(Progress{Phase: "resolve"})

	start := time.Now()

	comp, err := resolve.Load(ctx, resolve.Options{Dir: projectPath})
	if err != nil {
		return "", fmt.Errorf("job: analysis: load compilation: %w", err)
	}

	progress.report(Progress{Phase: "extract", TotalCount: len(comp.Packages)})

	graph, err := graphextract.Extract(ctx, comp, graphextract.Options{})
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %w", ErrCancelled, err)
		}

		return "", fmt.Errorf("job: analysis: extract graph: %w", err)
	}

	extractDuration := time.Since(start)
	nodes := graph.Nodes()

	if deps.Logger != nil {
		deps.Logger.InfoContext(ctx, "analysis: extracted call graph",
			slog.String("project", projectPath), slog.Int("methods", len(nodes)), slog.Int("packages", len(comp.Packages)))
	}

	deps.Metrics.RecordRun(ctx, observability.PipelineStats{
		FilesProcessed:  int64(len(comp.Packages)),
		MethodsIndexed:  int64(len(nodes)),
		ExtractDuration: extractDuration,
	})

	id := persist.GraphID(checkpoint.SourceHash(projectPath))

	progress.report(Progress{Phase: "store", MethodCount: len(nodes)})

	saveErr := deps.Store.Save(ctx, &persist.Record{ID: id, ProjectName: projectPath, Graph: graph},
		func(phase string, done, total int) {
			progress.report(Progress{Phase: "store:" + phase, ProcessedCount: done, TotalCount: total})
		})
	if saveErr != nil {
		return "", fmt.Errorf("job: analysis: save graph: %w", saveErr)
	}

	return id, nil
}
