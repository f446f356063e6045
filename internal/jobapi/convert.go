package jobapi

import (
	"fmt"
	"sort"

	"github.com/qrious/asyncrewriter/internal/model"
	"github.com/qrious/asyncrewriter/pkg/mapx"
)

// ToWire projects a *model.CallGraph onto its on-wire form. includeSource
// controls whether each method's optional SourceText is carried along,
// since §6 marks source_code optional and it can be the bulk of a large
// graph's payload size.
func ToWire(projectName string, g *model.CallGraph, includeSource bool) *WireGraph {
	nodes := g.Nodes()
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].Identity.String() < nodes[j].Identity.String()
	})

	methods := make([]WireMethod, 0, len(nodes))
	for _, n := range nodes {
		methods = append(methods, toWireMethod(n, includeSource))
	}

	calls := g.Calls()

	edges := make([]WireEdge, 0, len(calls))
	for i, c := range calls {
		edges = append(edges, toWireEdge(i, c))
	}

	return &WireGraph{
		ProjectName:        projectName,
		Methods:            methods,
		Edges:              edges,
		RootAsyncMethods:   mapx.SortedKeys(g.RootAsyncMethods),
		SyncWrapperMethods: mapx.SortedKeys(g.SyncWrapperMethods),
		FloodedMethods:     mapx.SortedKeys(g.FloodedMethods),
		InterfaceMapping:   g.InterfaceMapping,
	}
}

func toWireMethod(n *model.MethodNode, includeSource bool) WireMethod {
	params := make([]WireParam, 0, len(n.Params))
	for _, p := range n.Params {
		params = append(params, WireParam{Type: p.Type, Name: p.Name})
	}

	implements := make([]string, 0, len(n.ImplementsInterfaceMethods))
	for _, id := range n.ImplementsInterfaceMethods {
		implements = append(implements, id.String())
	}

	m := WireMethod{
		ID:                         n.Identity.String(),
		Name:                       n.Name,
		ContainingType:             n.ContainingType,
		ContainingNamespace:        n.ContainingNamespace,
		DeclaredReturnType:         n.DeclaredReturnType,
		Params:                     params,
		FilePath:                   n.FilePath,
		StartLine:                  n.StartLine,
		EndLine:                    n.EndLine,
		IsAsyncDeclared:            n.IsAsyncDeclared,
		IsInterfaceMember:          n.IsInterfaceMember,
		IsSyncWrapper:              n.IsSyncWrapper,
		IsFreeFunction:             n.IsFreeFunction,
		RequiresAsync:              n.RequiresAsync,
		AsyncReturnType:            n.AsyncReturnType,
		ImplementsInterfaceMethods: implements,
		IsReturnTypeATypeParameter: n.IsReturnTypeATypeParameter,
	}

	if includeSource {
		m.SourceCode = n.SourceText
	}

	return m
}

func toWireEdge(index int, c model.MethodCall) WireEdge {
	return WireEdge{
		ID:            fmt.Sprintf("%s->%s#%d", c.Caller.String(), c.Callee.String(), index),
		CallerID:      c.Caller.String(),
		CalleeID:      c.Callee.String(),
		Line:          c.Line,
		File:          c.File,
		RequiresAwait: c.RequiresAwait,
	}
}

// FromWire reconstructs a *model.CallGraph from its on-wire form. Edge IDs
// are not round-tripped; they are a presentation convenience, not part of
// the graph's identity (§8's round-trip property is stated over node set and
// edge multiset, not edge IDs).
func FromWire(w *WireGraph) (*model.CallGraph, error) {
	g := model.NewCallGraph()

	for _, m := range w.Methods {
		n, err := fromWireMethod(m)
		if err != nil {
			return nil, err
		}

		g.AddNode(n)
	}

	for _, e := range w.Edges {
		caller, err := model.ParseMethodIdentity(e.CallerID)
		if err != nil {
			return nil, fmt.Errorf("edge %s: caller_id: %w", e.ID, err)
		}

		callee, err := model.ParseMethodIdentity(e.CalleeID)
		if err != nil {
			return nil, fmt.Errorf("edge %s: callee_id: %w", e.ID, err)
		}

		g.AddCall(model.MethodCall{
			Caller:        caller,
			Callee:        callee,
			File:          e.File,
			Line:          e.Line,
			RequiresAwait: e.RequiresAwait,
		})
	}

	for _, k := range w.RootAsyncMethods {
		g.RootAsyncMethods[k] = struct{}{}
	}

	for _, k := range w.SyncWrapperMethods {
		g.SyncWrapperMethods[k] = struct{}{}
	}

	for _, k := range w.FloodedMethods {
		g.FloodedMethods[k] = struct{}{}
	}

	if w.InterfaceMapping != nil {
		g.InterfaceMapping = w.InterfaceMapping
	}

	return g, nil
}

func fromWireMethod(m WireMethod) (*model.MethodNode, error) {
	id, err := model.ParseMethodIdentity(m.ID)
	if err != nil {
		return nil, fmt.Errorf("method %s: %w", m.ID, err)
	}

	params := make([]model.Param, 0, len(m.Params))
	for _, p := range m.Params {
		params = append(params, model.Param{Type: p.Type, Name: p.Name})
	}

	implements := make([]model.MethodIdentity, 0, len(m.ImplementsInterfaceMethods))

	for _, s := range m.ImplementsInterfaceMethods {
		ifaceID, err := model.ParseMethodIdentity(s)
		if err != nil {
			return nil, fmt.Errorf("method %s: implements_interface_methods: %w", m.ID, err)
		}

		implements = append(implements, ifaceID)
	}

	return &model.MethodNode{
		Identity:                   id,
		Name:                       m.Name,
		ContainingType:             m.ContainingType,
		ContainingNamespace:        m.ContainingNamespace,
		DeclaredReturnType:         m.DeclaredReturnType,
		Params:                     params,
		FilePath:                   m.FilePath,
		StartLine:                  m.StartLine,
		EndLine:                    m.EndLine,
		IsAsyncDeclared:            m.IsAsyncDeclared,
		IsInterfaceMember:          m.IsInterfaceMember,
		IsSyncWrapper:              m.IsSyncWrapper,
		IsFreeFunction:             m.IsFreeFunction,
		RequiresAsync:              m.RequiresAsync,
		AsyncReturnType:            m.AsyncReturnType,
		ImplementsInterfaceMethods: implements,
		IsReturnTypeATypeParameter: m.IsReturnTypeATypeParameter,
		SourceText:                 m.SourceCode,
	}, nil
}
