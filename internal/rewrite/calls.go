package rewrite

import (
	"github.com/dave/dst"

	"github.com/qrious/asyncrewriter/internal/model"
)

// resolveCallee does a best-effort, name-and-arity match of a call
// expression against the graph's declared methods. The rewriter works
// purely over the decorated syntax tree (no retained go/types info), so
// unlike the graph extractor's fully-typed resolution this can be
// ambiguous; an ambiguous or absent match means "unresolvable", and per
// §4.5's failure semantics the call is left untouched.
func resolveCallee(graph *model.CallGraph, call *dst.CallExpr) (model.MethodIdentity, bool) {
	name := calleeName(call.Fun)
	if name == "" {
		return model.MethodIdentity{}, false
	}

	var match *model.MethodNode

	for _, n := range graph.Nodes() {
		if n.Name != name || len(n.Params) != len(call.Args) {
			continue
		}

		if match != nil {
			return model.MethodIdentity{}, false // ambiguous
		}

		match = n
	}

	if match == nil {
		return model.MethodIdentity{}, false
	}

	return match.Identity, true
}

func calleeName(fun dst.Expr) string {
	switch e := fun.(type) {
	case *dst.Ident:
		return e.Name
	case *dst.SelectorExpr:
		return e.Sel.Name
	case *dst.ParenExpr:
		return calleeName(e.X)
	default:
		return ""
	}
}

// syncWrapperInner extracts the inner invocation from a sync-wrapper call's
// first argument, implementing §4.5's "Sync-wrapper unwrap" shapes. Go has
// no expression-bodied function literals, so shapes (a)/(c) of the spec
// (expression-bodied lambdas) collapse to Go's one realizable shape: a
// parameterless func literal whose block body is a single return of an
// invocation (shape (b)).
func syncWrapperInner(call *dst.CallExpr) (*dst.CallExpr, bool) {
	if len(call.Args) == 0 {
		return nil, false
	}

	lit, ok := call.Args[0].(*dst.FuncLit)
	if !ok || lit.Body == nil || len(lit.Body.List) != 1 {
		return nil, false
	}

	ret, ok := lit.Body.List[0].(*dst.ReturnStmt)
	if !ok || len(ret.Results) != 1 {
		return nil, false
	}

	inner, ok := ret.Results[0].(*dst.CallExpr)

	return inner, ok
}
