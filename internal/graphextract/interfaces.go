package graphextract

import (
	"go/types"
	"sort"

	"golang.org/x/tools/go/packages"

	"github.com/qrious/asyncrewriter/internal/model"
)

// computeImplementsInterfaceMethods implements §4.2's
// "implements_interface_methods" computation: for every concrete type
// declared across the loaded packages, scan every interface declared
// across the loaded packages and, where the type satisfies it, record the
// implementation for each interface member. Iteration is over
// lexicographically sorted package paths and type names so the result is
// deterministic.
func computeImplementsInterfaceMethods(comp []*packages.Package) func(graph *model.CallGraph) {
	type ifaceInfo struct {
		named *types.Named
		iface *types.Interface
	}

	type concreteInfo struct {
		named *types.Named
	}

	var ifaces []ifaceInfo

	var concretes []concreteInfo

	for _, pkg := range sortedPackages(comp) {
		scope := pkg.Types.Scope()

		for _, name := range sortedNames(scope) {
			obj := scope.Lookup(name)

			tn, ok := obj.(*types.TypeName)
			if !ok {
				continue
			}

			named, ok := tn.Type().(*types.Named)
			if !ok {
				continue
			}

			if iface, ok := named.Underlying().(*types.Interface); ok {
				ifaces = append(ifaces, ifaceInfo{named: named, iface: iface})

				continue
			}

			if _, ok := named.Underlying().(*types.Struct); ok {
				concretes = append(concretes, concreteInfo{named: named})
			}
		}
	}

	return func(graph *model.CallGraph) {
		for _, c := range concretes {
			for _, ifc := range ifaces {
				if !implementsInterface(c.named, ifc.iface) {
					continue
				}

				recordImplementation(graph, c.named, ifc.named, ifc.iface)
			}
		}
	}
}

func implementsInterface(named *types.Named, iface *types.Interface) bool {
	return types.Implements(named, iface) || types.Implements(types.NewPointer(named), iface)
}

func recordImplementation(graph *model.CallGraph, concrete, ifaceNamed *types.Named, iface *types.Interface) {
	ifaceQualifier := types.RelativeTo(ifaceNamed.Obj().Pkg())

	for i := 0; i < iface.NumExplicitMethods(); i++ {
		ifaceMethod := iface.ExplicitMethod(i)

		obj, _, _ := types.LookupFieldOrMethod(concrete, true, concrete.Obj().Pkg(), ifaceMethod.Name())

		fn, ok := obj.(*types.Func)
		if !ok {
			continue
		}

		implIdentity := methodIdentity(concrete.Obj().Pkg(), fn)

		ifaceSig, _ := ifaceMethod.Type().(*types.Signature)
		ifaceIdentity := model.MethodIdentity{
			TypeDisplay:   types.TypeString(ifaceNamed, ifaceQualifier),
			Name:          ifaceMethod.Name(),
			ParamDisplays: paramDisplays(ifaceSig, ifaceQualifier),
		}

		graph.AppendImplementsInterfaceMethod(implIdentity, ifaceIdentity)
	}
}

func sortedPackages(pkgs []*packages.Package) []*packages.Package {
	out := make([]*packages.Package, len(pkgs))
	copy(out, pkgs)

	sort.Slice(out, func(i, j int) bool { return out[i].PkgPath < out[j].PkgPath })

	return out
}

func sortedNames(scope *types.Scope) []string {
	names := scope.Names()
	sort.Strings(names)

	return names
}
