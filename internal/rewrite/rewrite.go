// Package rewrite is the C5 Rewriter: it applies the flooded graph's
// decisions to one source file at a time, parsing with dave/dst so every
// token not touched by a transformation round-trips byte-identical (§4.5
// trivia-equality invariant).
package rewrite

import (
	"bytes"
	"go/token"

	"github.com/dave/dst"
	"github.com/dave/dst/decorator"

	"github.com/qrious/asyncrewriter/internal/model"
)

// asyncgenImportPath is the namespace every emitted asynchronous return
// type or factory call (Future, FromResult, Completed, Go) belongs to.
const asyncgenImportPath = "github.com/qrious/asyncrewriter/internal/asyncgen"

// Engine rewrites files against one flooded CallGraph.
type Engine struct {
	Graph *model.CallGraph
}

// New returns an Engine bound to graph. graph must already be flooded
// (§4.4) before any file is rewritten.
func New(graph *model.CallGraph) *Engine {
	return &Engine{Graph: graph}
}

// RewriteFile implements §4.5's per-file contract: parse filePath's current
// contents, apply the per-method rule table plus the generic base-type and
// interface-mapping rewrites, and return the rewritten text alongside the
// lines where await was inserted.
func (e *Engine) RewriteFile(filePath string, src []byte) (model.FileRewrite, error) {
	fset := token.NewFileSet()
	dec := decorator.NewDecorator(fset)

	f, err := dec.Parse(src)
	if err != nil {
		return model.FileRewrite{}, err
	}

	lineOf := func(n dst.Node) (int, bool) {
		astNode, ok := dec.Ast.Nodes[n]
		if !ok {
			return 0, false
		}

		return fset.Position(astNode.Pos()).Line, true
	}

	idx := buildFileIndex(e.Graph, filePath)

	var (
		changed     bool
		usedContext bool
		awaitLines  []int
	)

	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *dst.FuncDecl:
			node, ok := idx.lookupFunc(d)
			if !ok {
				continue
			}

			lines, didChange := rewriteFuncDecl(e.Graph, d, node, lineOf)
			if !didChange {
				continue
			}

			changed = true
			awaitLines = append(awaitLines, lines...)

			if len(lines) > 0 {
				usedContext = true
			}

		case *dst.GenDecl:
			for _, spec := range d.Specs {
				ts, ok := spec.(*dst.TypeSpec)
				if !ok {
					continue
				}

				iface, ok := ts.Type.(*dst.InterfaceType)
				if !ok {
					continue
				}

				if rewriteInterfaceMethods(idx, iface, ts.Name.Name) {
					changed = true
				}
			}
		}
	}

	if applyBaseTypeTransformations(e.Graph, f) {
		changed = true
	}

	if applyInterfaceMappingReplacements(e.Graph, f) {
		changed = true
	}

	if changed {
		ensureImport(f, asyncgenImportPath)
	}

	if usedContext {
		ensureImport(f, "context")
	}

	var buf bytes.Buffer
	if err := decorator.Fprint(&buf, f); err != nil {
		return model.FileRewrite{}, err
	}

	return model.FileRewrite{
		FilePath:   filePath,
		Original:   string(src),
		Rewritten:  buf.String(),
		AwaitLines: awaitLines,
		Unchanged:  !changed,
	}, nil
}
