// Package syncwrap is the C3 Sync-Wrapper Detector: it inspects method
// signatures to recognize the "runs a task synchronously" shape (§4.3) and
// marks the matching identities in the call graph.
package syncwrap

import (
	"fmt"
	"strings"

	"github.com/qrious/asyncrewriter/internal/asyncshape"
	"github.com/qrious/asyncrewriter/internal/model"
)

const funcPrefix = "func() "

// Detect scans every node in graph and marks the sync-wrapper ones, per
// §4.3: a method with at least one parameter typed as a function-of-no-args
// returning a task or task-of-T, whose own declared return type is either
// void (task-returning form) or the task's T (task-of-T form).
func Detect(graph *model.CallGraph) {
	for _, n := range graph.Nodes() {
		if n.IsInterfaceMember || n.IsExternal() {
			continue
		}

		if pattern, ok := matchWrapper(n); ok {
			n.IsSyncWrapper = true
			graph.MarkSyncWrapper(n.Identity)
			_ = pattern // diagnostics only; not persisted on the node today.
		}
	}
}

// matchWrapper reports whether n matches the §4.3 shape, returning a
// pattern-description string for diagnostics alongside the verdict.
func matchWrapper(n *model.MethodNode) (string, bool) {
	for _, p := range n.Params {
		inner, ok := taskParam(p.Type)
		if !ok {
			continue
		}

		if isWrapperMatch(inner, n.DeclaredReturnType) {
			return patternDescription(n, p, inner), true
		}
	}

	return "", false
}

// taskParam reports whether paramType is a function-of-no-args returning a
// task or task-of-T, and if so returns the task's inner type (the void
// sentinel for the task-returning form, or T for the task-of-T form).
func taskParam(paramType string) (string, bool) {
	if !strings.HasPrefix(paramType, funcPrefix) {
		return "", false
	}

	rest := strings.TrimPrefix(paramType, funcPrefix)
	if !asyncshape.IsFutureType(rest) {
		return "", false
	}

	return asyncshape.UnwrapFutureParam(rest)
}

// isWrapperMatch implements §4.3's return-type match: symbol equality for
// the task-of-T form, or void-ness for the task-returning form. Declared
// type parameters compare equal by name, which is all the string-typed
// model carries — sufficient, since a type parameter's display name is
// unique within its declaring signature.
func isWrapperMatch(inner, declaredReturn string) bool {
	if inner == asyncshape.VoidParam {
		return declaredReturn == ""
	}

	return inner == declaredReturn
}

func patternDescription(n *model.MethodNode, p model.Param, inner string) string {
	if inner == asyncshape.VoidParam {
		return fmt.Sprintf("%s(%s %s) runs a task synchronously via a void callback", n.Name, p.Name, p.Type)
	}

	return fmt.Sprintf("%s(%s %s) runs a task-of-%s synchronously, returning %s", n.Name, p.Name, p.Type, inner, inner)
}
