package resolve_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrious/asyncrewriter/internal/resolve"
)

const fixtureGoMod = "module fixture\n\ngo 1.24\n"

const fixtureMain = `package main

func Helper() int {
	return 1
}

func main() {
	_ = Helper()
}
`

func writeFixtureProject(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte(fixtureGoMod), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte(fixtureMain), 0o644))

	return dir
}

func TestLoad_TypedCompilation(t *testing.T) {
	t.Parallel()

	dir := writeFixtureProject(t)

	compilation, err := resolve.Load(context.Background(), resolve.Options{Dir: dir})
	require.NoError(t, err)
	require.NotEmpty(t, compilation.Packages)

	assert.Empty(t, compilation.Diagnostics())
}

func TestGoFiles_FiltersNonGo(t *testing.T) {
	t.Parallel()

	dir := writeFixtureProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# fixture"), 0o644))

	files, err := resolve.GoFiles(dir)
	require.NoError(t, err)

	for _, f := range files {
		assert.Equal(t, ".go", filepath.Ext(f))
	}

	assert.Len(t, files, 1)
}
