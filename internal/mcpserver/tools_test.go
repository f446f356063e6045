package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/qrious/asyncrewriter/internal/job"
	"github.com/qrious/asyncrewriter/internal/persist"
)

const toolsTestGoMod = "module fixture\n\ngo 1.24\n"

const toolsTestSource = `package fixture

func InnerAsync() int {
	return 42
}

func Caller() int {
	return InnerAsync()
}
`

func writeToolsFixtureProject(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte(toolsTestGoMod), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fixture.go"), []byte(toolsTestSource), 0o644))

	return dir
}

func newToolsTestServer() *Server {
	return NewServer(ServerDeps{Job: job.Deps{Store: persist.NewMemoryStore()}})
}

func TestHandleAnalyze_EmptyProjectPath(t *testing.T) {
	t.Parallel()

	srv := newToolsTestServer()

	result, _, err := srv.handleAnalyze(context.Background(), &mcpsdk.CallToolRequest{}, AnalyzeInput{})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
	assert.Contains(t, extractText(result), "project_path parameter is required")
}

func TestHandleAnalyze_RelativePath(t *testing.T) {
	t.Parallel()

	srv := newToolsTestServer()

	input := AnalyzeInput{ProjectPath: "relative/path"}

	result, _, err := srv.handleAnalyze(context.Background(), &mcpsdk.CallToolRequest{}, input)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
	assert.Contains(t, extractText(result), "absolute path")
}

func TestHandleAnalyze_NonExistentPath(t *testing.T) {
	t.Parallel()

	srv := newToolsTestServer()

	input := AnalyzeInput{ProjectPath: "/nonexistent/path/to/project"}

	result, _, err := srv.handleAnalyze(context.Background(), &mcpsdk.CallToolRequest{}, input)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
	assert.Contains(t, extractText(result), "does not exist")
}

func TestHandleAnalyze_NotDirectory(t *testing.T) {
	t.Parallel()

	srv := newToolsTestServer()

	file := filepath.Join(t.TempDir(), "not-a-dir.go")
	require.NoError(t, os.WriteFile(file, []byte("package x\n"), 0o644))

	input := AnalyzeInput{ProjectPath: file}

	result, _, err := srv.handleAnalyze(context.Background(), &mcpsdk.CallToolRequest{}, input)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
	assert.Contains(t, extractText(result), "not a directory")
}

func TestHandleAnalyze_ValidProject(t *testing.T) {
	t.Parallel()

	srv := newToolsTestServer()
	dir := writeToolsFixtureProject(t)

	input := AnalyzeInput{ProjectPath: dir}

	result, _, err := srv.handleAnalyze(context.Background(), &mcpsdk.CallToolRequest{}, input)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError, "unexpected error: %v", extractText(result))
	assert.Contains(t, extractText(result), "graph_id")
}

func TestHandleSyncWrapAnalyze_MalformedRoot(t *testing.T) {
	t.Parallel()

	srv := newToolsTestServer()
	dir := writeToolsFixtureProject(t)

	input := SyncWrapAnalyzeInput{ProjectPath: dir, Roots: []string{"not-an-identity"}}

	result, _, err := srv.handleSyncWrapAnalyze(context.Background(), &mcpsdk.CallToolRequest{}, input)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
	assert.Contains(t, extractText(result), "malformed root method identity")
}

func TestHandleSyncWrapAnalyze_ValidRoot(t *testing.T) {
	t.Parallel()

	srv := newToolsTestServer()
	dir := writeToolsFixtureProject(t)

	input := SyncWrapAnalyzeInput{ProjectPath: dir, Roots: []string{"fixture.InnerAsync()"}}

	result, _, err := srv.handleSyncWrapAnalyze(context.Background(), &mcpsdk.CallToolRequest{}, input)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError, "unexpected error: %v", extractText(result))
	assert.Contains(t, extractText(result), "graph_id")
}

func TestHandleTransform_EmptyGraphID(t *testing.T) {
	t.Parallel()

	srv := newToolsTestServer()
	dir := writeToolsFixtureProject(t)

	input := TransformInput{ProjectPath: dir}

	result, _, err := srv.handleTransform(context.Background(), &mcpsdk.CallToolRequest{}, input)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
	assert.Contains(t, extractText(result), "graph_id parameter is required")
}

func TestHandleTransform_UnknownGraphID(t *testing.T) {
	t.Parallel()

	srv := newToolsTestServer()
	dir := writeToolsFixtureProject(t)

	input := TransformInput{ProjectPath: dir, GraphID: "missing"}

	result, _, err := srv.handleTransform(context.Background(), &mcpsdk.CallToolRequest{}, input)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
}

func TestHandleTransform_DryRun(t *testing.T) {
	t.Parallel()

	srv := newToolsTestServer()
	dir := writeToolsFixtureProject(t)

	swResult, _, err := srv.handleSyncWrapAnalyze(context.Background(), &mcpsdk.CallToolRequest{},
		SyncWrapAnalyzeInput{ProjectPath: dir, Roots: []string{"fixture.InnerAsync()"}})
	require.NoError(t, err)
	require.False(t, swResult.IsError)

	graphID := extractGraphID(t, swResult)

	result, _, err := srv.handleTransform(context.Background(), &mcpsdk.CallToolRequest{},
		TransformInput{ProjectPath: dir, GraphID: graphID})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError, "unexpected error: %v", extractText(result))
	assert.Contains(t, extractText(result), "rewrites")
}

// extractGraphID pulls the graph_id value out of a JSON tool result body.
func extractGraphID(t *testing.T, result *mcpsdk.CallToolResult) string {
	t.Helper()

	text := extractText(result)

	const marker = `"graph_id": "`

	start := indexOf(text, marker)
	require.GreaterOrEqual(t, start, 0, "graph_id not found in %q", text)

	start += len(marker)
	end := indexOf(text[start:], `"`)
	require.GreaterOrEqual(t, end, 0)

	return text[start : start+end]
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}

	return -1
}

// extractText returns the text content from the first content item, or empty string.
func extractText(result *mcpsdk.CallToolResult) string {
	if len(result.Content) == 0 {
		return ""
	}

	tc, ok := result.Content[0].(*mcpsdk.TextContent)
	if !ok {
		return ""
	}

	return tc.Text
}
