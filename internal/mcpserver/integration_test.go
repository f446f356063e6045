package mcp_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/qrious/asyncrewriter/internal/job"
	"github.com/qrious/asyncrewriter/internal/mcpserver"
	"github.com/qrious/asyncrewriter/internal/persist"
)

const fixtureGoMod = "module fixture\n\ngo 1.24\n"

const fixtureSource = `package fixture

func InnerAsync() int {
	return 42
}

func Caller() int {
	return InnerAsync()
}
`

func writeFixtureProject(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte(fixtureGoMod), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fixture.go"), []byte(fixtureSource), 0o644))

	return dir
}

func newTestServer() *mcp.Server {
	return mcp.NewServer(mcp.ServerDeps{Job: job.Deps{Store: persist.NewMemoryStore()}})
}

func dialServer(ctx context.Context, t *testing.T, srv *mcp.Server) (*mcpsdk.ClientSession, chan error) {
	t.Helper()

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()

	serverDone := make(chan error, 1)

	go func() {
		serverDone <- srv.RunWithTransport(ctx, serverTransport)
	}()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test-client", Version: "1.0.0"}, nil)

	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	return session, serverDone
}

func TestMCPServer_InMemoryTransport_ToolsList(t *testing.T) {
	t.Parallel()

	srv := newTestServer()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	session, serverDone := dialServer(ctx, t, srv)
	defer func() { _ = session.Close() }()

	toolsResult, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	require.NotNil(t, toolsResult)

	toolNames := make([]string, 0, len(toolsResult.Tools))
	for _, tool := range toolsResult.Tools {
		toolNames = append(toolNames, tool.Name)
	}

	assert.Contains(t, toolNames, "analyze")
	assert.Contains(t, toolNames, "syncwrap_analyze")
	assert.Contains(t, toolNames, "transform")
	assert.Len(t, toolNames, 3)

	for _, tool := range toolsResult.Tools {
		assert.NotNil(t, tool.InputSchema, "tool %s missing input schema", tool.Name)
	}

	cancel()
	<-serverDone
}

func TestMCPServer_InMemoryTransport_CallAnalyze(t *testing.T) {
	t.Parallel()

	srv := newTestServer()
	dir := writeFixtureProject(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	session, serverDone := dialServer(ctx, t, srv)
	defer func() { _ = session.Close() }()

	result, err := session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      "analyze",
		Arguments: map[string]any{"project_path": dir},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError)
	assert.NotEmpty(t, result.Content)

	cancel()
	<-serverDone
}

func TestMCPServer_InMemoryTransport_CallSyncWrapAnalyze(t *testing.T) {
	t.Parallel()

	srv := newTestServer()
	dir := writeFixtureProject(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	session, serverDone := dialServer(ctx, t, srv)
	defer func() { _ = session.Close() }()

	result, err := session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name: "syncwrap_analyze",
		Arguments: map[string]any{
			"project_path": dir,
			"roots":        []string{"fixture.InnerAsync()"},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError, "unexpected error: %v", extractText(result))
	assert.NotEmpty(t, result.Content)

	cancel()
	<-serverDone
}

func TestMCPServer_InMemoryTransport_CallAnalyze_Error(t *testing.T) {
	t.Parallel()

	srv := newTestServer()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	session, serverDone := dialServer(ctx, t, srv)
	defer func() { _ = session.Close() }()

	result, err := session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      "analyze",
		Arguments: map[string]any{"project_path": ""},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)

	cancel()
	<-serverDone
}

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
