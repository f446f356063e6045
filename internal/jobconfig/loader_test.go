package jobconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConfigFile_ExplicitMissingIsNotAnError(t *testing.T) {
	t.Parallel()

	path, err := resolveConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestResolveConfigFile_ExplicitPresent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "asyncrewriter.yaml")
	require.NoError(t, os.WriteFile(path, []byte("roots: []\n"), 0o600))

	resolved, err := resolveConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, resolved)
}

func TestReadYAMLConfigFile_ParsesNestedKeys(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "asyncrewriter.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pipeline:\n  workers: 3\n"), 0o600))

	cfg, err := readYAMLConfigFile(path)
	require.NoError(t, err)

	pipeline, ok := cfg["pipeline"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 3, pipeline["workers"])
}

func TestReadYAMLConfigFile_InvalidYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "asyncrewriter.yaml")
	require.NoError(t, os.WriteFile(path, []byte("roots: [unterminated\n"), 0o600))

	_, err := readYAMLConfigFile(path)
	assert.Error(t, err)
}
