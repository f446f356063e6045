package rewrite

import (
	"strings"

	"github.com/dave/dst"
)

// parseTypeExpr renders a type's source-text display (as produced by
// go/types.TypeString, the display format every model string carries) back
// into a dst type expression. It covers the shapes the graph extractor and
// asyncshape actually emit: identifiers, qualified package types, pointers,
// slices, and single- or multi-argument generic instantiations. Anything
// else falls back to a bare identifier carrying the original text verbatim
// — the dst printer writes an Ident's Name as-is, so even an unsupported
// shape round-trips losslessly, just without structural decomposition.
func parseTypeExpr(s string) dst.Expr {
	s = strings.TrimSpace(s)

	switch {
	case strings.HasPrefix(s, "*"):
		return &dst.StarExpr{X: parseTypeExpr(s[1:])}
	case strings.HasPrefix(s, "[]"):
		return &dst.ArrayType{Elt: parseTypeExpr(s[2:])}
	}

	if i := strings.Index(s, "["); i >= 0 && strings.HasSuffix(s, "]") {
		base := parseTypeExpr(s[:i])
		args := splitTopLevelCommas(s[i+1 : len(s)-1])

		if len(args) == 1 {
			return &dst.IndexExpr{X: base, Index: parseTypeExpr(args[0])}
		}

		indices := make([]dst.Expr, 0, len(args))
		for _, a := range args {
			indices = append(indices, parseTypeExpr(a))
		}

		return &dst.IndexListExpr{X: base, Indices: indices}
	}

	if idx := strings.LastIndex(s, "."); idx >= 0 {
		return &dst.SelectorExpr{X: dst.NewIdent(s[:idx]), Sel: dst.NewIdent(s[idx+1:])}
	}

	return dst.NewIdent(s)
}

// splitTopLevelCommas splits s on commas that are not nested inside another
// bracket pair, so "A, Mapper[B, C]" splits into ["A", "Mapper[B, C]"].
func splitTopLevelCommas(s string) []string {
	var (
		parts []string
		depth int
		start int
	)

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}

	parts = append(parts, strings.TrimSpace(s[start:]))

	return parts
}

// selector builds pkg.Name as a dst expression.
func selector(pkg, name string) *dst.SelectorExpr {
	return &dst.SelectorExpr{X: dst.NewIdent(pkg), Sel: dst.NewIdent(name)}
}

// carryTrivia copies replaced's leading/trailing decorations onto
// replacement, so a substituted node keeps the original's surrounding
// whitespace and comments (§4.5 trivia-equality invariant).
func carryTrivia(replacement, replaced dst.Node) {
	src := replaced.Decorations()
	dstDecs := replacement.Decorations()
	dstDecs.Before = src.Before
	dstDecs.After = src.After
	dstDecs.Start = src.Start
	dstDecs.End = src.End
}
