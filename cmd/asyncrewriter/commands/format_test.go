package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrious/asyncrewriter/internal/job"
	"github.com/qrious/asyncrewriter/internal/model"
)

func TestRenderAnalyzeResult_Text(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, renderAnalyzeResult(&buf, "graph-123", FormatText))
	assert.Equal(t, "graph_id: graph-123\n", buf.String())
}

func TestRenderAnalyzeResult_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, renderAnalyzeResult(&buf, "graph-123", FormatJSON))
	assert.Contains(t, buf.String(), `"graph_id": "graph-123"`)
}

func TestRenderAnalyzeResult_Table(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, renderAnalyzeResult(&buf, "graph-123", FormatTable))
	assert.Contains(t, buf.String(), "graph-123")
}

func TestRenderTransformResult_Text(t *testing.T) {
	t.Parallel()

	rewrites := []model.FileRewrite{
		{FilePath: "a.go", Original: "func A() {}", Rewritten: "func A() { await() }", AwaitLines: []int{1}},
		{FilePath: "b.go", Unchanged: true},
	}
	failures := []*job.FileError{{FilePath: "c.go", Kind: job.KindIOError, Err: assert.AnError}}

	var out, errOut bytes.Buffer

	require.NoError(t, renderTransformResult(&out, &errOut, rewrites, failures, FormatText, true, true))

	assert.Contains(t, out.String(), "a.go: 1 await point(s)")
	assert.Contains(t, out.String(), "1 file(s) changed, 1 unchanged, 1 failed")
	assert.Contains(t, errOut.String(), "c.go [io_error]")
}

func TestRenderTransformResult_JSONIncludesPatchOnlyForDryRun(t *testing.T) {
	t.Parallel()

	rewrites := []model.FileRewrite{
		{FilePath: "a.go", Original: "func A() {}\n", Rewritten: "func A() { await() }\n", AwaitLines: []int{1}},
	}

	var dryRun, applied bytes.Buffer

	require.NoError(t, renderTransformResult(&dryRun, &dryRun, rewrites, nil, FormatJSON, true, true))
	require.NoError(t, renderTransformResult(&applied, &applied, rewrites, nil, FormatJSON, false, true))

	assert.True(t, strings.Contains(dryRun.String(), `"patch"`))
	assert.False(t, strings.Contains(applied.String(), `"patch"`))
}

func TestRenderTransformResult_Table(t *testing.T) {
	t.Parallel()

	rewrites := []model.FileRewrite{
		{FilePath: "a.go", Original: "x", Rewritten: "y", AwaitLines: []int{1, 2}},
	}

	var buf bytes.Buffer

	require.NoError(t, renderTransformResult(&buf, &buf, rewrites, nil, FormatTable, false, true))
	assert.Contains(t, buf.String(), "a.go")
}
