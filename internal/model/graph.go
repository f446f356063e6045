package model

import "sync"

// CallGraph is the shared data structure written by the graph extractor
// (§4.2), mutated once by the flooding engine (§4.4), and thereafter
// treated as read-only by the rewriter (§4.5).
//
// During extraction, Nodes is writer-shared across file-parallel workers
// (guarded by nodesMu) and Calls is an append-only, commutative bag (guarded
// by callsMu). Flooding runs single-threaded after extraction completes and
// needs no further synchronization; rewriting takes no locks at all.
type CallGraph struct {
	nodesMu sync.RWMutex
	nodes   map[string]*MethodNode

	callsMu sync.Mutex
	calls   []MethodCall

	RootAsyncMethods   map[string]struct{}
	SyncWrapperMethods map[string]struct{}
	FloodedMethods     map[string]struct{}

	// BaseTypeTransformations is keyed by ContainingType display.
	BaseTypeTransformations map[string][]BaseTypeTransformation

	// InterfaceMapping redirects a sync interface identity string to a
	// user-supplied async interface identity string (§4.4 interface-mapping
	// override).
	InterfaceMapping map[string]string
}

// NewCallGraph returns an empty, ready-to-use CallGraph.
func NewCallGraph() *CallGraph {
	return &CallGraph{
		nodes:                   make(map[string]*MethodNode),
		RootAsyncMethods:        make(map[string]struct{}),
		SyncWrapperMethods:      make(map[string]struct{}),
		FloodedMethods:          make(map[string]struct{}),
		BaseTypeTransformations: make(map[string][]BaseTypeTransformation),
		InterfaceMapping:        make(map[string]string),
	}
}

// AddNode inserts or overwrites the node for its identity. Concurrent-safe;
// within a single identity, last writer wins, which is benign because
// extraction is deterministic per identity (§5 ordering guarantees).
func (g *CallGraph) AddNode(n *MethodNode) {
	g.nodesMu.Lock()
	defer g.nodesMu.Unlock()

	g.nodes[n.Identity.String()] = n
}

// Node looks up a node by identity.
func (g *CallGraph) Node(id MethodIdentity) (*MethodNode, bool) {
	g.nodesMu.RLock()
	defer g.nodesMu.RUnlock()

	n, ok := g.nodes[id.String()]

	return n, ok
}

// EnsureExternalStub returns the existing node for id, or inserts and
// returns a new external stub node (§4.2 invocations pass, "insert a stub
// node with file_path = external").
func (g *CallGraph) EnsureExternalStub(id MethodIdentity) *MethodNode {
	g.nodesMu.Lock()
	defer g.nodesMu.Unlock()

	key := id.String()
	if n, ok := g.nodes[key]; ok {
		return n
	}

	n := &MethodNode{
		Identity:       id,
		Name:           id.Name,
		ContainingType: id.TypeDisplay,
		FilePath:       ExternalFile,
	}
	g.nodes[key] = n

	return n
}

// Nodes returns a snapshot slice of every node currently in the graph.
func (g *CallGraph) Nodes() []*MethodNode {
	g.nodesMu.RLock()
	defer g.nodesMu.RUnlock()

	out := make([]*MethodNode, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}

	return out
}

// AddCall appends a call edge. Concurrent-safe, append-only.
func (g *CallGraph) AddCall(c MethodCall) {
	g.callsMu.Lock()
	defer g.callsMu.Unlock()

	g.calls = append(g.calls, c)
}

// Calls returns a snapshot slice of every call edge.
func (g *CallGraph) Calls() []MethodCall {
	g.callsMu.Lock()
	defer g.callsMu.Unlock()

	out := make([]MethodCall, len(g.calls))
	copy(out, g.calls)

	return out
}

// MutateCalls grants fn direct access to the live edge slice for in-place
// mutation. This is the single authorized mutation phase the flooding
// engine uses to set RequiresAwait (§3 Lifecycle); no other stage calls it.
func (g *CallGraph) MutateCalls(fn func([]MethodCall)) {
	g.callsMu.Lock()
	defer g.callsMu.Unlock()

	fn(g.calls)
}

// AppendImplementsInterfaceMethod records that the method identified by id
// implements the interface member iface, de-duplicating and leaving the
// node untouched if id is not present (§4.2 "deterministic, duplicates
// removed").
func (g *CallGraph) AppendImplementsInterfaceMethod(id, iface MethodIdentity) {
	g.nodesMu.Lock()
	defer g.nodesMu.Unlock()

	n, ok := g.nodes[id.String()]
	if !ok {
		return
	}

	for _, existing := range n.ImplementsInterfaceMethods {
		if existing.Equal(iface) {
			return
		}
	}

	n.ImplementsInterfaceMethods = append(n.ImplementsInterfaceMethods, iface)
}

// MarkSyncWrapper flags the node for id as a sync wrapper and records it in
// SyncWrapperMethods, whether the node was locally declared or is an
// external stub.
func (g *CallGraph) MarkSyncWrapper(id MethodIdentity) {
	g.nodesMu.Lock()
	defer g.nodesMu.Unlock()

	if n, ok := g.nodes[id.String()]; ok {
		n.IsSyncWrapper = true
	}

	g.SyncWrapperMethods[id.String()] = struct{}{}
}

// CallersOf returns the interface-aware union of callers of m, implementing
// the §4.4 "Caller enumeration rule (interface-aware)":
//   - direct callers (edges ending at m);
//   - for every interface method i that m implements: direct callers of i;
//   - if m is itself an interface member: direct callers of every
//     implementation of m, and the implementations themselves.
func (g *CallGraph) CallersOf(m MethodIdentity) []MethodIdentity {
	seen := make(map[string]struct{})
	out := make([]MethodIdentity, 0)

	add := func(id MethodIdentity) {
		key := id.String()
		if _, ok := seen[key]; ok {
			return
		}

		seen[key] = struct{}{}
		out = append(out, id)
	}

	directCallers := func(callee MethodIdentity) []MethodIdentity {
		var callers []MethodIdentity

		for _, c := range g.Calls() {
			if c.Callee.Equal(callee) {
				callers = append(callers, c.Caller)
			}
		}

		return callers
	}

	for _, c := range directCallers(m) {
		add(c)
	}

	node, ok := g.Node(m)
	if !ok {
		return out
	}

	for _, iface := range node.ImplementsInterfaceMethods {
		for _, c := range directCallers(iface) {
			add(c)
		}
	}

	if node.IsInterfaceMember {
		for _, impl := range g.implementationsOf(m) {
			add(impl)

			for _, c := range directCallers(impl) {
				add(c)
			}
		}
	}

	return out
}

// implementationsOf returns every method identity whose
// ImplementsInterfaceMethods includes iface.
func (g *CallGraph) implementationsOf(iface MethodIdentity) []MethodIdentity {
	var out []MethodIdentity

	for _, n := range g.Nodes() {
		for _, impl := range n.ImplementsInterfaceMethods {
			if impl.Equal(iface) {
				out = append(out, n.Identity)

				break
			}
		}
	}

	return out
}
