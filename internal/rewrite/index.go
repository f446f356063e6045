package rewrite

import (
	"github.com/dave/dst"

	"github.com/qrious/asyncrewriter/internal/model"
)

// funcKey identifies a FuncDecl well enough to match it back to a
// MethodNode within a single file: receiver type name (empty for a free
// function), method name, and parameter count. This is a looser match than
// the graph extractor's fully-typed MethodIdentity, but the rewriter only
// ever compares declarations within one already-resolved file, where name
// collisions across distinct receivers are vanishingly rare.
type funcKey struct {
	receiver string
	name     string
	params   int
}

// fileIndex maps every MethodNode declared in one file to its funcKey, for
// O(1) lookup while walking that file's AST.
type fileIndex struct {
	byFunc  map[funcKey]*model.MethodNode
	byIface map[funcKey]*model.MethodNode
}

func buildFileIndex(graph *model.CallGraph, filePath string) *fileIndex {
	idx := &fileIndex{
		byFunc:  make(map[funcKey]*model.MethodNode),
		byIface: make(map[funcKey]*model.MethodNode),
	}

	for _, n := range graph.Nodes() {
		if n.FilePath != filePath {
			continue
		}

		key := funcKey{
			name:   n.Name,
			params: len(n.Params),
		}

		if !n.IsFreeFunction {
			key.receiver = bareTypeName(n.ContainingType)
		}

		if n.IsInterfaceMember {
			idx.byIface[key] = n
		} else {
			idx.byFunc[key] = n
		}
	}

	return idx
}

func (idx *fileIndex) lookupFunc(fd *dst.FuncDecl) (*model.MethodNode, bool) {
	n, ok := idx.byFunc[funcKey{
		receiver: receiverTypeName(fd),
		name:     fd.Name.Name,
		params:   countParams(fd.Type.Params),
	}]

	return n, ok
}

func (idx *fileIndex) lookupIfaceMethod(ifaceName string, field *dst.Field, ft *dst.FuncType) (*model.MethodNode, bool) {
	if len(field.Names) == 0 {
		return nil, false
	}

	n, ok := idx.byIface[funcKey{
		receiver: ifaceName,
		name:     field.Names[0].Name,
		params:   countParams(ft.Params),
	}]

	return n, ok
}

// bareTypeName strips the pointer-receiver star and any generic
// instantiation brackets a node's ContainingType display may carry, down to
// the identifier a source-level receiver expression would show.
func bareTypeName(t string) string {
	t = stripOneLeadingStar(t)
	if idx := indexOf(t, '['); idx >= 0 {
		t = t[:idx]
	}

	return t
}

func stripOneLeadingStar(t string) string {
	if len(t) > 0 && t[0] == '*' {
		return t[1:]
	}

	return t
}

func indexOf(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}

	return -1
}

func receiverTypeName(fd *dst.FuncDecl) string {
	if fd.Recv == nil || len(fd.Recv.List) == 0 {
		return ""
	}

	return exprIdentName(fd.Recv.List[0].Type)
}

func exprIdentName(e dst.Expr) string {
	switch t := e.(type) {
	case *dst.Ident:
		return t.Name
	case *dst.StarExpr:
		return exprIdentName(t.X)
	case *dst.IndexExpr:
		return exprIdentName(t.X)
	case *dst.IndexListExpr:
		return exprIdentName(t.X)
	default:
		return ""
	}
}

func countParams(fl *dst.FieldList) int {
	if fl == nil {
		return 0
	}

	count := 0

	for _, f := range fl.List {
		if len(f.Names) == 0 {
			count++

			continue
		}

		count += len(f.Names)
	}

	return count
}
