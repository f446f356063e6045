package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrious/asyncrewriter/cmd/asyncrewriter/commands"
)

func TestAnalyzeCommand_Exists(t *testing.T) {
	t.Parallel()

	cmd := commands.NewAnalyzeCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "analyze <project-path>", cmd.Use)
	assert.NotEmpty(t, cmd.Short)

	flag := cmd.Flags().Lookup("store-dir")
	require.NotNil(t, flag)
	assert.Equal(t, "", flag.DefValue)
}

func TestAnalyzeCommand_RequiresExactlyOneArg(t *testing.T) {
	t.Parallel()

	cmd := commands.NewAnalyzeCommand()
	require.NotNil(t, cmd.Args)
	assert.Error(t, cmd.Args(cmd, nil))
	assert.Error(t, cmd.Args(cmd, []string{"a", "b"}))
	assert.NoError(t, cmd.Args(cmd, []string{"a"}))
}

func TestSyncWrapCommand_Exists(t *testing.T) {
	t.Parallel()

	cmd := commands.NewSyncWrapCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "syncwrap <project-path>", cmd.Use)

	rootsFlag := cmd.Flags().Lookup("roots")
	require.NotNil(t, rootsFlag)

	mappingFlag := cmd.Flags().Lookup("interface-mapping")
	require.NotNil(t, mappingFlag)
}

func TestTransformCommand_Exists(t *testing.T) {
	t.Parallel()

	cmd := commands.NewTransformCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "transform <project-path>", cmd.Use)

	applyFlag := cmd.Flags().Lookup("apply")
	require.NotNil(t, applyFlag)
	assert.Equal(t, "false", applyFlag.DefValue)

	graphIDFlag := cmd.Flags().Lookup("graph-id")
	require.NotNil(t, graphIDFlag)
}

func TestMCPCommand_Exists(t *testing.T) {
	t.Parallel()

	cmd := commands.NewMCPCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "mcp", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
}

func TestMCPCommand_DebugFlag(t *testing.T) {
	t.Parallel()

	cmd := commands.NewMCPCommand()
	flag := cmd.Flags().Lookup("debug")
	require.NotNil(t, flag)
	assert.Equal(t, "false", flag.DefValue)
}
