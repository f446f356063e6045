package rewrite

import "github.com/dave/dst"

// rewriteInterfaceMethods implements §4.5 rule 2: a flooded interface
// member gets its return type wrapped via wrap(); interface methods have no
// body, so no async modifier or await substitution applies.
func rewriteInterfaceMethods(idx *fileIndex, iface *dst.InterfaceType, ifaceName string) bool {
	if iface.Methods == nil {
		return false
	}

	changed := false

	for _, field := range iface.Methods.List {
		ft, ok := field.Type.(*dst.FuncType)
		if !ok {
			continue
		}

		node, ok := idx.lookupIfaceMethod(ifaceName, field, ft)
		if !ok || !node.RequiresAsync {
			continue
		}

		ft.Results = wrappedResults(node)
		changed = true
	}

	return changed
}
