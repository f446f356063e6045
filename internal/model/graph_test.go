package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrious/asyncrewriter/internal/model"
)

func id(typeDisplay, name string, params ...string) model.MethodIdentity {
	return model.MethodIdentity{TypeDisplay: typeDisplay, Name: name, ParamDisplays: params}
}

func TestMethodIdentity_String(t *testing.T) {
	t.Parallel()

	got := id("pkg.Service", "DoWork", "int", "string").String()
	assert.Equal(t, "pkg.Service.DoWork(int, string)", got)
}

func TestMethodIdentity_Equal(t *testing.T) {
	t.Parallel()

	a := id("pkg.Service", "DoWork", "int")
	b := id("pkg.Service", "DoWork", "int")
	c := id("pkg.Service", "DoWork", "string")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestCallGraph_EnsureExternalStub(t *testing.T) {
	t.Parallel()

	g := model.NewCallGraph()
	callee := id("pkg.Other", "Helper")

	stub := g.EnsureExternalStub(callee)
	assert.Equal(t, model.ExternalFile, stub.FilePath)
	assert.True(t, stub.IsExternal())

	// Second call returns the same node, not a new stub.
	again := g.EnsureExternalStub(callee)
	assert.Same(t, stub, again)
}

func TestCallGraph_CallersOf_Direct(t *testing.T) {
	t.Parallel()

	g := model.NewCallGraph()

	caller := id("pkg.Service", "A")
	callee := id("pkg.Service", "B")

	g.AddNode(&model.MethodNode{Identity: caller})
	g.AddNode(&model.MethodNode{Identity: callee})
	g.AddCall(model.MethodCall{Caller: caller, Callee: callee, File: "a.go", Line: 10})

	callers := g.CallersOf(callee)
	require.Len(t, callers, 1)
	assert.True(t, callers[0].Equal(caller))
}

func TestCallGraph_CallersOf_InterfaceParity(t *testing.T) {
	t.Parallel()

	g := model.NewCallGraph()

	iface := id("pkg.Reader", "Read")
	implA := id("pkg.FileReader", "Read")
	implB := id("pkg.NetReader", "Read")
	callerOfIface := id("pkg.Service", "UseReader")

	g.AddNode(&model.MethodNode{Identity: iface, IsInterfaceMember: true})
	g.AddNode(&model.MethodNode{Identity: implA, ImplementsInterfaceMethods: []model.MethodIdentity{iface}})
	g.AddNode(&model.MethodNode{Identity: implB, ImplementsInterfaceMethods: []model.MethodIdentity{iface}})
	g.AddNode(&model.MethodNode{Identity: callerOfIface})

	g.AddCall(model.MethodCall{Caller: callerOfIface, Callee: iface, File: "s.go", Line: 1})

	// Flooding implA should enumerate: direct callers of implA (none), plus
	// callers of every interface it implements (callerOfIface via iface).
	callers := g.CallersOf(implA)
	require.Len(t, callers, 1)
	assert.True(t, callers[0].Equal(callerOfIface))

	// Flooding the interface member itself should enumerate every
	// implementation (signature parity) plus their callers.
	ifaceCallers := g.CallersOf(iface)
	names := make([]string, 0, len(ifaceCallers))
	for _, c := range ifaceCallers {
		names = append(names, c.String())
	}

	assert.Contains(t, names, implA.String())
	assert.Contains(t, names, implB.String())
}
