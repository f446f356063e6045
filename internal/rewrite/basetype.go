package rewrite

import (
	"go/token"

	"github.com/dave/dst"

	"github.com/qrious/asyncrewriter/internal/model"
)

// applyBaseTypeTransformations realizes §4.4's generic covariant-return
// exception at the rewriting stage (§4.5's "Generic base-type rewrite").
// Go has no base-list syntax; the nearest equivalent worth rewriting is a
// generic type alias `type X = Generic[Args...]` naming the instantiation,
// so that's the shape this targets — wrapping the indicated type argument
// in the asynchronous wrapper.
func applyBaseTypeTransformations(graph *model.CallGraph, f *dst.File) bool {
	changed := false

	for _, decl := range f.Decls {
		gd, ok := decl.(*dst.GenDecl)
		if !ok {
			continue
		}

		for _, spec := range gd.Specs {
			ts, ok := spec.(*dst.TypeSpec)
			if !ok || !ts.Assign.IsValid() {
				continue
			}

			transforms, ok := graph.BaseTypeTransformations[ts.Name.Name]
			if !ok {
				continue
			}

			if rewriteAliasInstantiation(ts, transforms) {
				changed = true
			}
		}
	}

	return changed
}

func rewriteAliasInstantiation(ts *dst.TypeSpec, transforms []model.BaseTypeTransformation) bool {
	changed := false

	for _, bt := range transforms {
		switch t := ts.Type.(type) {
		case *dst.IndexExpr:
			if bt.TypeArgIndex == 0 {
				t.Index = wrapFutureExpr(t.Index)
				changed = true
			}
		case *dst.IndexListExpr:
			if bt.TypeArgIndex >= 0 && bt.TypeArgIndex < len(t.Indices) {
				t.Indices[bt.TypeArgIndex] = wrapFutureExpr(t.Indices[bt.TypeArgIndex])
				changed = true
			}
		}
	}

	return changed
}

func wrapFutureExpr(e dst.Expr) dst.Expr {
	return &dst.IndexExpr{X: selector("asyncgen", "Future"), Index: e}
}

// applyInterfaceMappingReplacements realizes §4.4's interface-mapping
// override: a compile-time interface-satisfaction assertion
// (`var _ OldIface = (*Impl)(nil)`) naming a mapped sync interface is
// rewritten to name the user-supplied async interface instead.
func applyInterfaceMappingReplacements(graph *model.CallGraph, f *dst.File) bool {
	if len(graph.InterfaceMapping) == 0 {
		return false
	}

	changed := false

	for _, decl := range f.Decls {
		gd, ok := decl.(*dst.GenDecl)
		if !ok || gd.Tok != token.VAR {
			continue
		}

		for _, spec := range gd.Specs {
			vs, ok := spec.(*dst.ValueSpec)
			if !ok || vs.Type == nil {
				continue
			}

			ident, ok := vs.Type.(*dst.Ident)
			if !ok {
				continue
			}

			asyncName, mapped := graph.InterfaceMapping[ident.Name]
			if !mapped {
				continue
			}

			ident.Name = asyncName
			changed = true
		}
	}

	return changed
}
