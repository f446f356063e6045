package syncwrap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/qrious/asyncrewriter/internal/asyncshape"
	"github.com/qrious/asyncrewriter/internal/model"
	"github.com/qrious/asyncrewriter/internal/syncwrap"
)

func id(typeDisplay, name string, params ...string) model.MethodIdentity {
	return model.MethodIdentity{TypeDisplay: typeDisplay, Name: name, ParamDisplays: params}
}

func TestDetect_VoidTaskForm(t *testing.T) {
	t.Parallel()

	graph := model.NewCallGraph()

	node := &model.MethodNode{
		Identity:           id("Runner", "RunSync"),
		Name:               "RunSync",
		ContainingType:     "Runner",
		DeclaredReturnType: "",
		Params: []model.Param{
			{Type: "func() " + asyncshape.Wrap(""), Name: "action"},
		},
	}
	graph.AddNode(node)

	syncwrap.Detect(graph)

	assert.True(t, node.IsSyncWrapper)
	_, marked := graph.SyncWrapperMethods[node.Identity.String()]
	assert.True(t, marked)
}

func TestDetect_TaskOfTForm(t *testing.T) {
	t.Parallel()

	graph := model.NewCallGraph()

	node := &model.MethodNode{
		Identity:           id("Runner", "RunSync"),
		Name:               "RunSync",
		ContainingType:     "Runner",
		DeclaredReturnType: "int",
		Params: []model.Param{
			{Type: "func() " + asyncshape.Wrap("int"), Name: "action"},
		},
	}
	graph.AddNode(node)

	syncwrap.Detect(graph)

	assert.True(t, node.IsSyncWrapper)
}

func TestDetect_NoMatch(t *testing.T) {
	t.Parallel()

	graph := model.NewCallGraph()

	node := &model.MethodNode{
		Identity:           id("Runner", "PlainMethod"),
		Name:               "PlainMethod",
		ContainingType:     "Runner",
		DeclaredReturnType: "int",
		Params: []model.Param{
			{Type: "string", Name: "name"},
		},
	}
	graph.AddNode(node)

	syncwrap.Detect(graph)

	assert.False(t, node.IsSyncWrapper)
	assert.Empty(t, graph.SyncWrapperMethods)
}

func TestDetect_MismatchedReturnType(t *testing.T) {
	t.Parallel()

	graph := model.NewCallGraph()

	node := &model.MethodNode{
		Identity:           id("Runner", "RunSync"),
		Name:               "RunSync",
		ContainingType:     "Runner",
		DeclaredReturnType: "string",
		Params: []model.Param{
			{Type: "func() " + asyncshape.Wrap("int"), Name: "action"},
		},
	}
	graph.AddNode(node)

	syncwrap.Detect(graph)

	assert.False(t, node.IsSyncWrapper)
}

func TestDetect_SkipsInterfaceMembersAndExternal(t *testing.T) {
	t.Parallel()

	graph := model.NewCallGraph()

	ifaceMember := &model.MethodNode{
		Identity:           id("Runner", "RunSync"),
		Name:               "RunSync",
		IsInterfaceMember:  true,
		DeclaredReturnType: "",
		Params: []model.Param{
			{Type: "func() " + asyncshape.Wrap(""), Name: "action"},
		},
	}
	graph.AddNode(ifaceMember)

	syncwrap.Detect(graph)

	assert.False(t, ifaceMember.IsSyncWrapper)
}
