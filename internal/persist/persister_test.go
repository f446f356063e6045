package persist_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrious/asyncrewriter/internal/model"
	"github.com/qrious/asyncrewriter/internal/persist"
)

func id(typeDisplay, name string, params ...string) model.MethodIdentity {
	return model.MethodIdentity{TypeDisplay: typeDisplay, Name: name, ParamDisplays: params}
}

func buildDiamondGraph() *model.CallGraph {
	g := model.NewCallGraph()

	root := id("fixture", "Root")
	mid1 := id("fixture", "Mid1")
	mid2 := id("fixture", "Mid2")
	leaf := id("fixture", "Leaf")

	for _, n := range []*model.MethodNode{
		{Identity: root, Name: "Root", ContainingType: "fixture", IsFreeFunction: true},
		{Identity: mid1, Name: "Mid1", ContainingType: "fixture", IsFreeFunction: true},
		{Identity: mid2, Name: "Mid2", ContainingType: "fixture", IsFreeFunction: true},
		{Identity: leaf, Name: "Leaf", ContainingType: "fixture", IsFreeFunction: true, IsAsyncDeclared: true},
	} {
		g.AddNode(n)
	}

	g.AddCall(model.MethodCall{Caller: root, Callee: mid1, File: "fixture.go", Line: 10})
	g.AddCall(model.MethodCall{Caller: root, Callee: mid2, File: "fixture.go", Line: 11})
	g.AddCall(model.MethodCall{Caller: mid1, Callee: leaf, File: "fixture.go", Line: 20})
	g.AddCall(model.MethodCall{Caller: mid2, Callee: leaf, File: "fixture.go", Line: 21})

	g.RootAsyncMethods[leaf.String()] = struct{}{}

	return g
}

func runStoreContract(t *testing.T, store persist.Store) {
	t.Helper()

	ctx := context.Background()
	graph := buildDiamondGraph()

	rec := &persist.Record{ID: "g1", ProjectName: "fixture-project", Graph: graph}

	var phases []string

	require.NoError(t, store.Save(ctx, rec, func(phase string, done, total int) {
		phases = append(phases, phase)
		assert.LessOrEqual(t, done, total)
	}))
	assert.NotEmpty(t, phases)

	fetched, err := store.Fetch(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "fixture-project", fetched.ProjectName)
	assert.Len(t, fetched.Graph.Nodes(), 4)
	assert.Len(t, fetched.Graph.Calls(), 4)
	_, hasRoot := fetched.Graph.RootAsyncMethods[id("fixture", "Leaf").String()]
	assert.True(t, hasRoot)

	byProject, err := store.FetchByProject(ctx, "fixture-project")
	require.NoError(t, err)
	assert.Equal(t, persist.GraphID("g1"), byProject.ID)

	root := id("fixture", "Root")
	leaf := id("fixture", "Leaf")

	callers, err := store.FindCallers(ctx, "g1", leaf, 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []model.MethodIdentity{id("fixture", "Mid1"), id("fixture", "Mid2"), root}, callers)

	callersDepth1, err := store.FindCallers(ctx, "g1", leaf, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []model.MethodIdentity{id("fixture", "Mid1"), id("fixture", "Mid2")}, callersDepth1)

	callees, err := store.FindCallees(ctx, "g1", root, 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []model.MethodIdentity{id("fixture", "Mid1"), id("fixture", "Mid2"), leaf}, callees)

	_, err = store.Fetch(ctx, "missing")
	assert.ErrorIs(t, err, persist.ErrNotFound)

	require.NoError(t, store.Delete(ctx, "g1"))

	_, err = store.Fetch(ctx, "g1")
	assert.ErrorIs(t, err, persist.ErrNotFound)

	err = store.Delete(ctx, "g1")
	assert.ErrorIs(t, err, persist.ErrNotFound)
}

func TestMemoryStore_Contract(t *testing.T) {
	t.Parallel()

	runStoreContract(t, persist.NewMemoryStore())
}

func TestFileStore_Contract_Gob(t *testing.T) {
	t.Parallel()

	runStoreContract(t, persist.NewFileStore(t.TempDir()))
}

func TestFileStore_Contract_LZ4(t *testing.T) {
	t.Parallel()

	runStoreContract(t, persist.NewCompressedFileStore(t.TempDir()))
}

func TestFileStore_FetchByProject_NoMatchingDir(t *testing.T) {
	t.Parallel()

	store := persist.NewFileStore(t.TempDir())

	_, err := store.FetchByProject(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, persist.ErrNotFound)
}
