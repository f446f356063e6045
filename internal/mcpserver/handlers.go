package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/qrious/asyncrewriter/internal/job"
	"github.com/qrious/asyncrewriter/internal/model"
	"github.com/qrious/asyncrewriter/internal/persist"
	"github.com/qrious/asyncrewriter/internal/rewrite/diffview"
)

// analyzeResult is the analyze tool's JSON result shape.
type analyzeResult struct {
	GraphID string `json:"graph_id"`
}

// handleAnalyze processes analyze tool calls: it runs C1/C2 over the
// project and returns the id of the stored (unflooded) graph.
func (s *Server) handleAnalyze(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input AnalyzeInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if err := validateProjectPath(input.ProjectPath); err != nil {
		return errorResult(err)
	}

	id, err := job.Analysis(ctx, s.jobDeps, input.ProjectPath, nil)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(analyzeResult{GraphID: string(id)})
}

// syncWrapAnalyzeResult is the syncwrap_analyze tool's JSON result shape.
type syncWrapAnalyzeResult struct {
	GraphID            string   `json:"graph_id"`
	SyncWrapperMethods []string `json:"sync_wrapper_methods"`
}

// handleSyncWrapAnalyze processes syncwrap_analyze tool calls: it runs
// C1/C2/C3/C4 over the project, flooding async-ness out from the caller's
// supplied roots, and returns the detected sync wrappers plus the flooded
// graph's id.
func (s *Server) handleSyncWrapAnalyze(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input SyncWrapAnalyzeInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if err := validateProjectPath(input.ProjectPath); err != nil {
		return errorResult(err)
	}

	roots := make([]model.MethodIdentity, 0, len(input.Roots))

	for _, r := range input.Roots {
		id, err := model.ParseMethodIdentity(r)
		if err != nil {
			return errorResult(fmt.Errorf("%w: %q: %w", ErrMalformedRoot, r, err))
		}

		roots = append(roots, id)
	}

	wrappers, graphID, err := job.SyncWrapperAnalysis(ctx, s.jobDeps, input.ProjectPath, roots, input.InterfaceMapping, nil)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(syncWrapAnalyzeResult{GraphID: string(graphID), SyncWrapperMethods: wrappers})
}

// fileRewriteResult is one rewritten file's JSON projection. Patch is a
// unified diff of the original and rewritten text (internal/rewrite/diffview),
// populated only when the transform was not applied — the caller's preview
// of what apply:true would write.
type fileRewriteResult struct {
	FilePath   string `json:"file_path"`
	Unchanged  bool   `json:"unchanged"`
	AwaitLines []int  `json:"await_lines,omitempty"`
	Patch      string `json:"patch,omitempty"`
}

// fileErrorResult is one failed file's JSON projection.
type fileErrorResult struct {
	FilePath string `json:"file_path"`
	Kind     string `json:"kind"`
	Error    string `json:"error"`
}

// transformResult is the transform tool's JSON result shape.
type transformResult struct {
	Applied  bool                 `json:"applied"`
	Rewrites []fileRewriteResult  `json:"rewrites"`
	Failures []fileErrorResult    `json:"failures,omitempty"`
}

// handleTransform processes transform tool calls: it runs C5 over every Go
// file under the project using the flooded graph named by graph_id, writing
// to disk only when apply is true.
func (s *Server) handleTransform(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input TransformInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if err := validateProjectPath(input.ProjectPath); err != nil {
		return errorResult(err)
	}

	if input.GraphID == "" {
		return errorResult(ErrEmptyGraphID)
	}

	opts := job.TransformOptions{
		Apply:         input.Apply,
		CheckpointDir: input.CheckpointDir,
		Resume:        input.Resume,
	}

	rewrites, failures, err := job.Transformation(ctx, s.jobDeps, input.ProjectPath, persist.GraphID(input.GraphID), opts, nil)
	if err != nil {
		return errorResult(err)
	}

	result := transformResult{Applied: input.Apply}

	for _, r := range rewrites {
		entry := fileRewriteResult{
			FilePath:   r.FilePath,
			Unchanged:  r.Unchanged,
			AwaitLines: r.AwaitLines,
		}

		if !input.Apply && !r.Unchanged {
			entry.Patch = diffview.RenderPatch(r)
		}

		result.Rewrites = append(result.Rewrites, entry)
	}

	for _, fe := range failures {
		result.Failures = append(result.Failures, fileErrorResult{
			FilePath: fe.FilePath,
			Kind:     fe.Kind.String(),
			Error:    fe.Err.Error(),
		})
	}

	return jsonResult(result)
}
