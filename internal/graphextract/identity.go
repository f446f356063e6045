package graphextract

import (
	"go/types"

	"github.com/qrious/asyncrewriter/internal/model"
)

// methodIdentity builds the §3 MethodIdentity for fn, canonicalized to its
// original (uninstantiated) generic definition via Origin, printed with a
// minimally-qualified-but-unambiguous type printer relative to pkg.
func methodIdentity(pkg *types.Package, fn *types.Func) model.MethodIdentity {
	origin := fn.Origin()
	sig, _ := origin.Type().(*types.Signature)
	qualifier := types.RelativeTo(pkg)

	return model.MethodIdentity{
		TypeDisplay:   containingTypeDisplay(pkg, sig, qualifier),
		Name:          origin.Name(),
		ParamDisplays: paramDisplays(sig, qualifier),
	}
}

func paramDisplays(sig *types.Signature, qualifier types.Qualifier) []string {
	if sig == nil {
		return nil
	}

	params := sig.Params()
	out := make([]string, 0, params.Len())

	for i := 0; i < params.Len(); i++ {
		out = append(out, types.TypeString(params.At(i).Type(), qualifier))
	}

	return out
}

// containingTypeDisplay returns the receiver's named type display for a
// method, or the package path for a free function (standalone functions
// have no containing type in Go, so the package stands in for one).
func containingTypeDisplay(pkg *types.Package, sig *types.Signature, qualifier types.Qualifier) string {
	if sig == nil || sig.Recv() == nil {
		return pkg.Path()
	}

	t := sig.Recv().Type()
	if ptr, ok := t.(*types.Pointer); ok {
		t = ptr.Elem()
	}

	return types.TypeString(t, qualifier)
}

// resultTypeDisplay renders a signature's single or absent result as source
// text: "" for no results (Go's void), the sole result's display for one
// result. Multi-result signatures are not representable as a single async
// return wrapper and are left as their first result per the graph
// extractor's best-effort contract (§4.2 failure semantics: unresolvable
// shapes are skipped by later stages, not here).
func resultTypeDisplay(sig *types.Signature, qualifier types.Qualifier) string {
	if sig == nil || sig.Results().Len() == 0 {
		return ""
	}

	return types.TypeString(sig.Results().At(0).Type(), qualifier)
}

// isReturnTypeATypeParameter reports whether sig's sole result type is
// itself a type parameter of the containing generic type (§3
// is_return_type_a_type_parameter, gating the generic covariant-return
// exception in flooding).
func isReturnTypeATypeParameter(sig *types.Signature) bool {
	if sig == nil || sig.Results().Len() != 1 {
		return false
	}

	_, ok := sig.Results().At(0).Type().(*types.TypeParam)

	return ok
}
