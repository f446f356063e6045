// Package flood is the C4 Flooding Engine: a reverse-BFS propagation over
// the call graph that decides which methods require an asynchronous
// signature, and how, honoring the interface/generic exceptions of §4.4.
package flood

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/qrious/asyncrewriter/internal/asyncshape"
	"github.com/qrious/asyncrewriter/internal/model"
)

// ProgressFunc is invoked once per dequeued identity, after it's resolved
// against the node map and before its callers are enqueued.
type ProgressFunc func(model.MethodIdentity)

// Flood runs the §4.4 algorithm over graph starting from roots, mutating
// RequiresAsync/AsyncReturnType/RequiresAwait in place, and returns one
// Transformation per flooded method. Cancellation is honored at each queue
// iteration; on cancellation the in-flight graph mutations are left as-is
// (flooding is idempotent, so a retry from the same roots reconverges) and
// the error is returned instead of a transformation list.
func Flood(ctx context.Context, graph *model.CallGraph, roots []model.MethodIdentity, onVisit ProgressFunc) ([]model.Transformation, error) {
	visited := make(map[string]struct{})
	queue := make([]model.MethodIdentity, 0, len(roots))

	for _, r := range roots {
		queue = append(queue, r)
		graph.RootAsyncMethods[r.String()] = struct{}{}
	}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("flood: %w", err)
		}

		m := queue[0]
		queue = queue[1:]

		key := m.String()
		if _, ok := visited[key]; ok {
			continue
		}

		visited[key] = struct{}{}

		node, ok := graph.Node(m)
		if !ok {
			continue
		}

		if onVisit != nil {
			onVisit(m)
		}

		floodNode(graph, node)

		queue = append(queue, graph.CallersOf(m)...)

		// Interface-signature parity: every sibling implementation of an
		// interface member node implements is enqueued (via that member's
		// CallersOf); the member itself is not. Members under the generic
		// covariant-return exception are skipped, so siblings that never
		// reach a root stay untouched.
		for _, iface := range node.ImplementsInterfaceMethods {
			if ifaceNode, ok := graph.Node(iface); ok && !ifaceNode.IsReturnTypeATypeParameter {
				queue = append(queue, graph.CallersOf(iface)...)
			}
		}
	}

	markRequiresAwait(graph)

	return projectTransformations(graph), nil
}

// floodNode applies the §4.4 per-node decision, including the two
// interface exceptions that redirect an interface member's own flooding
// into metadata consumed by the rewriter instead of a signature change.
func floodNode(graph *model.CallGraph, node *model.MethodNode) {
	if node.IsInterfaceMember {
		if node.IsReturnTypeATypeParameter {
			// Generic covariant-return exception: the interface member's
			// text ("T Method()") never changes; only instantiations of
			// its base type in implementing classes do, via
			// BaseTypeTransformation. Its implementations still flood
			// normally below once dequeued.
			return
		}

		if _, mapped := graph.InterfaceMapping[node.ContainingType]; mapped {
			// Interface-mapping override: S stays untouched, the rewriter
			// swaps it for the user-supplied async interface instead.
			return
		}
	}

	if node.IsAsyncDeclared {
		return
	}

	node.RequiresAsync = true
	node.AsyncReturnType = asyncshape.Wrap(node.DeclaredReturnType)
	graph.FloodedMethods[node.Identity.String()] = struct{}{}

	recordBaseTypeTransformations(graph, node)
}

// recordBaseTypeTransformations implements the generic covariant-return
// exception's other half: for every interface member node implements whose
// declared return type is a type parameter of that interface, record a
// BaseTypeTransformation wrapping the corresponding base-type argument
// instead of changing the interface member itself.
func recordBaseTypeTransformations(graph *model.CallGraph, node *model.MethodNode) {
	for _, iface := range node.ImplementsInterfaceMethods {
		ifaceNode, ok := graph.Node(iface)
		if !ok || !ifaceNode.IsReturnTypeATypeParameter {
			continue
		}

		idx, ok := typeParamIndex(ifaceNode.Identity.TypeDisplay, ifaceNode.DeclaredReturnType)
		if !ok {
			continue
		}

		graph.BaseTypeTransformations[node.ContainingType] = append(
			graph.BaseTypeTransformations[node.ContainingType],
			model.BaseTypeTransformation{
				ContainingType: node.ContainingType,
				BaseTypeName:   ifaceNode.Identity.TypeDisplay,
				TypeArgIndex:   idx,
				WrappedArg:     node.DeclaredReturnType,
			},
		)
	}
}

// typeParamIndex locates paramName's position among typeDisplay's bracketed
// type argument list, e.g. typeParamIndex("Mapper[A, B]", "B") == (1, true).
func typeParamIndex(typeDisplay, paramName string) (int, bool) {
	open := strings.Index(typeDisplay, "[")
	closeIdx := strings.LastIndex(typeDisplay, "]")

	if open < 0 || closeIdx < open {
		return 0, false
	}

	for i, part := range strings.Split(typeDisplay[open+1:closeIdx], ",") {
		if strings.TrimSpace(part) == paramName {
			return i, true
		}
	}

	return 0, false
}

// markRequiresAwait implements §4.4 step 3: every edge to a method that is
// either declared async or was flooded requires an await at the call site.
func markRequiresAwait(graph *model.CallGraph) {
	graph.MutateCalls(func(calls []model.MethodCall) {
		for i := range calls {
			callee, ok := graph.Node(calls[i].Callee)
			calls[i].RequiresAwait = ok && (callee.IsAsyncDeclared || callee.RequiresAsync)
		}
	})
}

// projectTransformations implements §4.4's final "Transformation info
// projection" step, sorted by identity for deterministic output.
func projectTransformations(graph *model.CallGraph) []model.Transformation {
	var out []model.Transformation

	for _, n := range graph.Nodes() {
		if !n.RequiresAsync {
			continue
		}

		t := model.Transformation{
			Identity:           n.Identity,
			OriginalReturnType: n.DeclaredReturnType,
			AsyncReturnType:    n.AsyncReturnType,
		}

		for _, c := range graph.Calls() {
			if c.Caller.Equal(n.Identity) && c.RequiresAwait {
				t.AwaitSites = append(t.AwaitSites, model.AwaitSite{
					Callee: c.Callee,
					File:   c.File,
					Line:   c.Line,
				})
			}
		}

		out = append(out, t)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Identity.String() < out[j].Identity.String() })

	return out
}
