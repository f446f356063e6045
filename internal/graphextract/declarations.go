package graphextract

import (
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/packages"

	"github.com/qrious/asyncrewriter/internal/asyncshape"
	"github.com/qrious/asyncrewriter/internal/model"
)

// extractDeclarations implements §4.2 pass 1 ("Declarations") for a single
// package: every function/method declaration and every interface method
// becomes a MethodNode.
func extractDeclarations(pkg *packages.Package, graph *model.CallGraph) {
	qualifier := types.RelativeTo(pkg.Types)

	for _, file := range pkg.Syntax {
		fileName := fileNameOf(pkg, file)

		ast.Inspect(file, func(n ast.Node) bool {
			switch decl := n.(type) {
			case *ast.FuncDecl:
				extractFuncDecl(pkg, decl, fileName, graph, qualifier)
			case *ast.TypeSpec:
				if iface, ok := decl.Type.(*ast.InterfaceType); ok {
					extractInterfaceMethods(pkg, decl, iface, fileName, graph, qualifier)
				}
			}

			return true
		})
	}
}

func extractFuncDecl(
	pkg *packages.Package,
	decl *ast.FuncDecl,
	fileName string,
	graph *model.CallGraph,
	qualifier types.Qualifier,
) {
	obj, ok := pkg.TypesInfo.Defs[decl.Name]
	if !ok || obj == nil {
		return // §4.2 failure semantics: unresolvable declaration, skip.
	}

	fn, ok := obj.(*types.Func)
	if !ok {
		return
	}

	sig, _ := fn.Type().(*types.Signature)
	identity := methodIdentity(pkg.Types, fn)
	declaredReturn := resultTypeDisplay(sig, qualifier)

	node := &model.MethodNode{
		Identity:                   identity,
		Name:                       fn.Name(),
		ContainingType:             identity.TypeDisplay,
		ContainingNamespace:        pkg.PkgPath,
		DeclaredReturnType:         declaredReturn,
		Params:                     paramsOf(sig, decl, qualifier),
		FilePath:                   fileName,
		StartLine:                  pkg.Fset.Position(decl.Pos()).Line,
		EndLine:                    pkg.Fset.Position(decl.End()).Line,
		IsAsyncDeclared:            asyncshape.IsFutureType(declaredReturn),
		IsInterfaceMember:          false,
		IsFreeFunction:             sig != nil && sig.Recv() == nil,
		IsReturnTypeATypeParameter: isReturnTypeATypeParameter(sig),
	}

	graph.AddNode(node)
}

// extractInterfaceMethods creates one MethodNode per interface-declared
// method, matching the Go realization of §3's "interface member
// declarations" case: these nodes carry IsInterfaceMember=true and no body.
func extractInterfaceMethods(
	pkg *packages.Package,
	spec *ast.TypeSpec,
	iface *ast.InterfaceType,
	fileName string,
	graph *model.CallGraph,
	qualifier types.Qualifier,
) {
	namedObj, ok := pkg.TypesInfo.Defs[spec.Name]
	if !ok || namedObj == nil {
		return
	}

	named, ok := namedObj.Type().(*types.Named)
	if !ok {
		return
	}

	ifaceType, ok := named.Underlying().(*types.Interface)
	if !ok {
		return
	}

	for i := 0; i < ifaceType.NumExplicitMethods(); i++ {
		fn := ifaceType.ExplicitMethod(i)
		sig, _ := fn.Type().(*types.Signature)
		declaredReturn := resultTypeDisplay(sig, qualifier)

		identity := model.MethodIdentity{
			TypeDisplay:   types.TypeString(named, qualifier),
			Name:          fn.Name(),
			ParamDisplays: paramDisplays(sig, qualifier),
		}

		node := &model.MethodNode{
			Identity:                   identity,
			Name:                       fn.Name(),
			ContainingType:             identity.TypeDisplay,
			ContainingNamespace:        pkg.PkgPath,
			DeclaredReturnType:         declaredReturn,
			FilePath:                   fileName,
			StartLine:                  pkg.Fset.Position(iface.Pos()).Line,
			EndLine:                    pkg.Fset.Position(iface.End()).Line,
			IsAsyncDeclared:            asyncshape.IsFutureType(declaredReturn),
			IsInterfaceMember:          true,
			IsReturnTypeATypeParameter: isReturnTypeATypeParameter(sig),
		}

		graph.AddNode(node)
	}
}

func paramsOf(sig *types.Signature, decl *ast.FuncDecl, qualifier types.Qualifier) []model.Param {
	if sig == nil {
		return nil
	}

	names := paramNames(decl)

	params := sig.Params()
	out := make([]model.Param, 0, params.Len())

	for i := 0; i < params.Len(); i++ {
		name := ""
		if i < len(names) {
			name = names[i]
		}

		out = append(out, model.Param{
			Type: types.TypeString(params.At(i).Type(), qualifier),
			Name: name,
		})
	}

	return out
}

func paramNames(decl *ast.FuncDecl) []string {
	if decl.Type.Params == nil {
		return nil
	}

	var names []string

	for _, field := range decl.Type.Params.List {
		if len(field.Names) == 0 {
			names = append(names, "")

			continue
		}

		for _, id := range field.Names {
			names = append(names, id.Name)
		}
	}

	return names
}

func fileNameOf(pkg *packages.Package, file *ast.File) string {
	return pkg.Fset.Position(file.Pos()).Filename
}
