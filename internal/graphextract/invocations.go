package graphextract

import (
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/packages"

	"github.com/qrious/asyncrewriter/internal/model"
)

// extractInvocations implements §4.2 pass 2 ("Invocations") for a single
// package: every call expression inside a declared method body is resolved
// to a callee identity and recorded as a MethodCall edge.
func extractInvocations(pkg *packages.Package, graph *model.CallGraph, externalSyncWrappers map[string]struct{}) {
	for _, file := range pkg.Syntax {
		fileName := fileNameOf(pkg, file)

		for _, decl := range file.Decls {
			fd, ok := decl.(*ast.FuncDecl)
			if !ok || fd.Body == nil {
				continue
			}

			callerObj, ok := pkg.TypesInfo.Defs[fd.Name]
			if !ok || callerObj == nil {
				continue
			}

			callerFn, ok := callerObj.(*types.Func)
			if !ok {
				continue
			}

			callerIdentity := methodIdentity(pkg.Types, callerFn)

			ast.Inspect(fd.Body, func(n ast.Node) bool {
				call, ok := n.(*ast.CallExpr)
				if !ok {
					return true
				}

				callee, ok := resolveCallTarget(pkg, call)
				if !ok {
					return true // §4.2 failure semantics: unresolvable target, skip.
				}

				graph.EnsureExternalStub(callee)
				if _, isWrapper := externalSyncWrappers[callee.String()]; isWrapper {
					graph.MarkSyncWrapper(callee)
				}

				graph.AddCall(model.MethodCall{
					Caller: callerIdentity,
					Callee: callee,
					File:   fileName,
					Line:   pkg.Fset.Position(call.Pos()).Line,
				})

				return true
			})
		}
	}
}

// resolveCallTarget resolves a call expression's target to a method
// identity, canonicalized to its original generic definition. Returns
// false for calls to builtins or unresolved dynamic dispatch (§4.2 "If the
// symbol is not a method, skip").
func resolveCallTarget(pkg *packages.Package, call *ast.CallExpr) (model.MethodIdentity, bool) {
	fn, declPkg, ok := calleeFunc(pkg, call.Fun)
	if !ok {
		return model.MethodIdentity{}, false
	}

	qualifierPkg := declPkg
	if qualifierPkg == nil {
		qualifierPkg = pkg.Types
	}

	return methodIdentity(qualifierPkg, fn), true
}

func calleeFunc(pkg *packages.Package, fun ast.Expr) (*types.Func, *types.Package, bool) {
	switch e := fun.(type) {
	case *ast.Ident:
		obj, ok := pkg.TypesInfo.Uses[e]
		if !ok {
			return nil, nil, false
		}

		fn, ok := obj.(*types.Func)
		if !ok {
			return nil, nil, false
		}

		return fn, fn.Pkg(), true

	case *ast.SelectorExpr:
		if sel, ok := pkg.TypesInfo.Selections[e]; ok {
			fn, ok := sel.Obj().(*types.Func)
			if !ok {
				return nil, nil, false
			}

			return fn, fn.Pkg(), true
		}

		// Qualified package-level call, e.g. otherpkg.Func(...).
		obj, ok := pkg.TypesInfo.Uses[e.Sel]
		if !ok {
			return nil, nil, false
		}

		fn, ok := obj.(*types.Func)
		if !ok {
			return nil, nil, false
		}

		return fn, fn.Pkg(), true

	case *ast.ParenExpr:
		return calleeFunc(pkg, e.X)

	default:
		return nil, nil, false
	}
}
