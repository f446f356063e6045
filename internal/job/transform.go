package job

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/qrious/asyncrewriter/internal/checkpoint"
	"github.com/qrious/asyncrewriter/internal/model"
	"github.com/qrious/asyncrewriter/internal/observability"
	"github.com/qrious/asyncrewriter/internal/persist"
	"github.com/qrious/asyncrewriter/internal/resolve"
	"github.com/qrious/asyncrewriter/internal/rewrite"
)

// checkpointEveryFiles is how often a Transformation run persists progress,
// adapted from the teacher's "persists progress every N files" pattern
// (internal/checkpoint's own Manager.Save/Load pair, called from here
// instead of from a git-commit streaming loop).
const checkpointEveryFiles = 20

// stageNames identifies this job's single checkpointable stage to
// checkpoint.Manager.Validate/Save.
var stageNames = []string{"rewrite"}

// TransformOptions configures a Transformation run.
type TransformOptions struct {
	// Apply writes rewrites to disk; when false, Transformation returns the
	// rewrite list for review without touching the file system (the CLI's
	// --dry-run and the MCP tool's default mode).
	Apply bool

	// CheckpointDir enables resumable runs when non-empty.
	CheckpointDir string
	// Resume loads a prior checkpoint for this project, if one validates.
	Resume bool
	// ClearPrev removes any existing checkpoint for this project before
	// starting, discarding previously recorded progress.
	ClearPrev bool
}

// Transformation runs C5 (the rewriter) over every Go file under
// projectPath using the flooded graph stored under graphID, writing to disk
// only if opts.Apply — the §6 "Transformation (project path + graph id +
// apply-flag -> list of file rewrites; writes to disk only if apply-flag is
// true)" entry point. Files that fail are reported via the returned
// []*FileError without aborting the run (§7 "the job reports partial
// success with the list of failing files").
func Transformation(
	ctx context.Context,
	deps Deps,
	projectPath string,
	graphID persist.GraphID,
	opts TransformOptions,
	progress ProgressFunc,
) ([]model.FileRewrite, []*FileError, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrCancelled, err)
	}

	rec, err := deps.Store.Fetch(ctx, graphID)
	if err != nil {
		return nil, nil, fmt.Errorf("job: transformation: fetch graph: %w", err)
	}

	files, err := resolve.GoFiles(projectPath)
	if err != nil {
		return nil, nil, fmt.Errorf("job: transformation: list files: %w", err)
	}

	cp := newRewriteCheckpoint()

	mgr, resuming := setUpCheckpoint(projectPath, opts, cp)

	engine := rewrite.New(rec.Graph)

	start := time.Now()

	var (
		rewrites []model.FileRewrite
		failures []*FileError
	)

	progress.report(Progress{Phase: "rewrite", TotalCount: len(files)})

	for i, filePath := range files {
		if err := ctx.Err(); err != nil {
			return rewrites, failures, fmt.Errorf("%w: %w", ErrCancelled, err)
		}

		if resuming && cp.isDone(filePath) {
			progress.report(Progress{Phase: "rewrite", ProcessedCount: i + 1, TotalCount: len(files), CurrentFile: filePath})

			continue
		}

		fr, fileErr := rewriteOneFile(engine, filePath, opts.Apply)
		if fileErr != nil {
			failures = append(failures, fileErr)
		} else {
			rewrites = append(rewrites, fr)
		}

		cp.markDone(filePath)

		progress.report(Progress{Phase: "rewrite", ProcessedCount: i + 1, TotalCount: len(files), CurrentFile: filePath})

		if mgr != nil && (i+1)%checkpointEveryFiles == 0 {
			saveCheckpoint(mgr, cp, projectPath, len(files), i+1)
		}
	}

	if mgr != nil {
		saveCheckpoint(mgr, cp, projectPath, len(files), len(files))
	}

	deps.Metrics.RecordRun(ctx, observability.PipelineStats{
		FilesProcessed:  int64(len(files)),
		RewriteDuration: time.Since(start),
	})

	return rewrites, failures, nil
}

func rewriteOneFile(engine *rewrite.Engine, filePath string, apply bool) (model.FileRewrite, *FileError) {
	src, err := os.ReadFile(filePath)
	if err != nil {
		return model.FileRewrite{}, &FileError{FilePath: filePath, Kind: KindIOError, Err: err}
	}

	fr, err := engine.RewriteFile(filePath, src)
	if err != nil {
		return model.FileRewrite{}, &FileError{FilePath: filePath, Kind: KindInvalidInput, Err: err}
	}

	if apply && !fr.Unchanged {
		info, statErr := os.Stat(filePath)

		mode := os.FileMode(0o644)
		if statErr == nil {
			mode = info.Mode()
		}

		if writeErr := os.WriteFile(filePath, []byte(fr.Rewritten), mode); writeErr != nil {
			return model.FileRewrite{}, &FileError{FilePath: filePath, Kind: KindIOError, Err: writeErr}
		}
	}

	return fr, nil
}

func setUpCheckpoint(projectPath string, opts TransformOptions, cp *rewriteCheckpoint) (*checkpoint.Manager, bool) {
	if opts.CheckpointDir == "" {
		return nil, false
	}

	mgr := checkpoint.NewManager(opts.CheckpointDir, checkpoint.SourceHash(projectPath))

	// Evict aged-out or over-budget sibling checkpoints from prior
	// Transformation runs before adding this run's own. Best-effort: a
	// failed prune never blocks the run it guards.
	_ = mgr.Prune(time.Now())

	if opts.ClearPrev {
		_ = mgr.Clear()

		return mgr, false
	}

	if !opts.Resume || !mgr.Exists() {
		return mgr, false
	}

	if err := mgr.Validate(projectPath, stageNames); err != nil {
		return mgr, false
	}

	if _, err := mgr.Load([]checkpoint.Checkpointable{cp}); err != nil {
		return mgr, false
	}

	return mgr, true
}

func saveCheckpoint(mgr *checkpoint.Manager, cp *rewriteCheckpoint, projectPath string, total, done int) {
	state := checkpoint.JobState{
		TotalFiles:     total,
		ProcessedFiles: done,
		CurrentStage:   0,
		TotalStages:    len(stageNames),
	}

	_ = mgr.Save([]checkpoint.Checkpointable{cp}, state, projectPath, stageNames)
}
