// Package job realizes §6's job lifecycle: Analysis, SyncWrapperAnalysis, and
// Transformation as plain functions over a shared Deps, each taking a
// context.Context for cancellation and a progress callback, in the style the
// core pipeline stages (internal/flood.Flood, internal/graphextract.Extract)
// already use rather than a stateful runner/coordinator object.
package job

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/qrious/asyncrewriter/internal/observability"
	"github.com/qrious/asyncrewriter/internal/persist"
)

// Deps are the shared dependencies every job-lifecycle function needs.
// Metrics may be nil; observability.PipelineMetrics.RecordRun is a no-op on
// a nil receiver.
type Deps struct {
	Store   persist.Store
	Logger  *slog.Logger
	Metrics *observability.PipelineMetrics
}

// Progress matches §6's "(phase, current_file, processed_count, total_count,
// method_count, methods_processed, flooded_count, sync_wrapper_count)"
// callback tuple. Fields irrelevant to the current phase are left zero.
type Progress struct {
	Phase            string
	CurrentFile      string
	ProcessedCount   int
	TotalCount       int
	MethodCount      int
	MethodsProcessed int
	FloodedCount     int
	SyncWrapperCount int
}

// ProgressFunc reports job progress. May be nil.
type ProgressFunc func(Progress)

func (f ProgressFunc) report(p Progress) {
	if f != nil {
		f(p)
	}
}

// ErrorKind classifies a job-level failure per §7's error-kind taxonomy.
type ErrorKind int

// Error kinds, matching §7 verbatim.
const (
	// KindInvalidInput is unparseable source; the file is skipped.
	KindInvalidInput ErrorKind = iota
	// KindUnresolvedSymbol is an invocation/declaration whose symbol cannot
	// be bound; silently skipped, the graph is simply sparser.
	KindUnresolvedSymbol
	// KindMissingEntity is a flooding/rewriting reference to a method
	// identity not in the graph; silently skipped.
	KindMissingEntity
	// KindCancelled is a propagated cancellation.
	KindCancelled
	// KindIOError is a file read/write failure; surfaced to the job, no
	// rollback of partial writes.
	KindIOError
	// KindCompilationFailure is a project whose compilation step failed;
	// the graph is empty, surfaced as a warning, not an error.
	KindCompilationFailure
)

// String renders the error kind's name.
func (k ErrorKind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindUnresolvedSymbol:
		return "unresolved_symbol"
	case KindMissingEntity:
		return "missing_entity"
	case KindCancelled:
		return "cancelled"
	case KindIOError:
		return "io_error"
	case KindCompilationFailure:
		return "compilation_failure"
	default:
		return "unknown"
	}
}

// FileError is a structured, file-scoped job failure: the rewriter never
// silently corrupts a file, so a failing file is reported here instead of
// emitted, and the job proceeds with the remaining files (§7 "user-visible
// behavior").
type FileError struct {
	FilePath string
	Kind     ErrorKind
	Err      error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.FilePath, e.Kind, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// ErrCancelled is returned (wrapped) when a job-lifecycle function observes
// ctx.Err() — distinct from a FileError so callers can tell cancellation
// apart from failure, per §7 "Cancellation is signaled distinctly from
// failure."
var ErrCancelled = errors.New("job: cancelled")
