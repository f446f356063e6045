// Package asyncshape binds spec.md's generic "Task"/"await"/"Completed"/
// "FromResult" vocabulary to this implementation's concrete Go realization,
// github.com/qrious/asyncrewriter/internal/asyncgen. It is the only package
// that knows what those names concretely are; every other stage (flood,
// rewrite) works against the functions here.
package asyncshape

import "strings"

// FutureTypeName is the Go realization of "Task": the generic future type
// the rewriter's output imports.
const FutureTypeName = "asyncgen.Future"

// CompletedExpr is the Go realization of the "completed task" singleton
// factory used by Case B (§4.5 rule 5) for void-returning methods.
const CompletedExpr = "asyncgen.Completed()"

// futurePrefix is FutureTypeName followed by its required generic bracket,
// used to recognize an already-wrapped return type.
const futurePrefix = FutureTypeName + "["

// VoidParam is the type argument substituted for a void return (no
// result value, only completion/error).
const VoidParam = "asyncgen.Void"

// FromResultExpr is the Go realization of the "ready task" factory: given
// the method's original (unwrapped) return type, returns the generic call
// expression that wraps a value of that type in an already-resolved Future.
func FromResultExpr(originalReturnType string) string {
	t := originalReturnType
	if t == "" {
		t = VoidParam
	}

	return "asyncgen.FromResult[" + t + "]"
}

// Wrap implements §4.4's wrap() function over Go return-type source text:
//
//	void (empty string)     -> Future[Void]
//	already Future[...]     -> unchanged
//	any other T             -> Future[T]
func Wrap(declaredReturnType string) string {
	t := strings.TrimSpace(declaredReturnType)

	if IsFutureType(t) {
		return t
	}

	if t == "" {
		t = VoidParam
	}

	return FutureTypeName + "[" + t + "]"
}

// IsFutureType reports whether t is already the asynchronous wrapper type
// (optionally instantiated), the Go analogue of "any type already starting
// Task (optionally with <...>)".
func IsFutureType(t string) bool {
	return t == FutureTypeName || strings.HasPrefix(t, futurePrefix)
}

// UnwrapFutureParam extracts T from Future[T]; returns "", false if t is not
// a Future type.
func UnwrapFutureParam(t string) (string, bool) {
	if !strings.HasPrefix(t, futurePrefix) || !strings.HasSuffix(t, "]") {
		return "", false
	}

	inner := strings.TrimSuffix(strings.TrimPrefix(t, futurePrefix), "]")

	return inner, true
}
