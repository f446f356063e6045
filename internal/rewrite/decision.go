package rewrite

import "github.com/qrious/asyncrewriter/internal/model"

// shouldSkip implements §4.5 rule 1: a node outside the transform set, or
// already declared async, is left untouched.
func shouldSkip(n *model.MethodNode) bool {
	return !n.RequiresAsync || n.IsAsyncDeclared
}

// isAsyncOrWillBe reports whether callee is already async or is itself
// flooded — the "async-or-will-be-async callee" test rules 3/4/6 use.
func isAsyncOrWillBe(graph *model.CallGraph, callee model.MethodIdentity) bool {
	n, ok := graph.Node(callee)
	if !ok {
		return false
	}

	return n.IsAsyncDeclared || n.RequiresAsync
}

// isSyncWrapperCallee reports whether callee is a known sync wrapper.
func isSyncWrapperCallee(graph *model.CallGraph, callee model.MethodIdentity) bool {
	_, ok := graph.SyncWrapperMethods[callee.String()]

	return ok
}
