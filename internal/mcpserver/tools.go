package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Tool name constants.
const (
	ToolNameAnalyze         = "analyze"
	ToolNameSyncWrapAnalyze = "syncwrap_analyze"
	ToolNameTransform       = "transform"
)

// Sentinel errors for tool input validation.
var (
	// ErrEmptyProjectPath indicates the project_path parameter is empty.
	ErrEmptyProjectPath = errors.New("project_path parameter is required and must not be empty")
	// ErrProjectPathNotAbsolute indicates project_path is not an absolute path.
	ErrProjectPathNotAbsolute = errors.New("project_path must be an absolute path")
	// ErrProjectNotFound indicates the project path does not exist.
	ErrProjectNotFound = errors.New("project path does not exist")
	// ErrProjectNotDirectory indicates the project path is not a directory.
	ErrProjectNotDirectory = errors.New("project path is not a directory")
	// ErrEmptyGraphID indicates the graph_id parameter is empty.
	ErrEmptyGraphID = errors.New("graph_id parameter is required and must not be empty")
	// ErrMalformedRoot indicates a roots entry could not be parsed as a method identity.
	ErrMalformedRoot = errors.New("malformed root method identity")
)

// Input types (auto-generate JSON schemas via struct tags).

// AnalyzeInput is the input schema for the analyze tool.
type AnalyzeInput struct {
	ProjectPath string `json:"project_path" jsonschema:"absolute path to the Go project to analyze"`
}

// SyncWrapAnalyzeInput is the input schema for the syncwrap_analyze tool.
type SyncWrapAnalyzeInput struct {
	ProjectPath      string            `json:"project_path"                jsonschema:"absolute path to the Go project to analyze"`
	Roots            []string          `json:"roots"                       jsonschema:"method identities in '{type}.{name}({param_types_csv})' form to flood async-ness from"`
	InterfaceMapping map[string]string `json:"interface_mapping,omitempty" jsonschema:"optional override mapping a sync interface type to the async interface type that replaces it"`
}

// TransformInput is the input schema for the transform tool.
type TransformInput struct {
	ProjectPath   string `json:"project_path"            jsonschema:"absolute path to the Go project to rewrite"`
	GraphID       string `json:"graph_id"                jsonschema:"graph id returned by syncwrap_analyze"`
	Apply         bool   `json:"apply,omitempty"          jsonschema:"write rewrites to disk; when false, only report the planned rewrites"`
	CheckpointDir string `json:"checkpoint_dir,omitempty" jsonschema:"directory to persist/resume rewrite progress from"`
	Resume        bool   `json:"resume,omitempty"         jsonschema:"resume a previously checkpointed run in checkpoint_dir"`
}

// Output type (used as structured output for generic AddTool).

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// Result helpers.

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

// validateProjectPath checks the project_path constraints shared by all
// three tools: non-empty, absolute, and an existing directory.
func validateProjectPath(path string) error {
	if path == "" {
		return ErrEmptyProjectPath
	}

	if !filepath.IsAbs(path) {
		return ErrProjectPathNotAbsolute
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrProjectNotFound, path)
	}

	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrProjectNotDirectory, path)
	}

	return nil
}
