package rewrite

import (
	"go/token"
	"strconv"

	"github.com/dave/dst"
)

// ensureImport implements §4.5's import discipline: add path as an import
// exactly once. If an equivalent import already exists (by path), nothing
// changes.
func ensureImport(f *dst.File, path string) {
	for _, decl := range f.Decls {
		gd, ok := decl.(*dst.GenDecl)
		if !ok || gd.Tok != token.IMPORT {
			continue
		}

		for _, spec := range gd.Specs {
			is, ok := spec.(*dst.ImportSpec)
			if ok && importPath(is) == path {
				return
			}
		}

		gd.Specs = append(gd.Specs, newImportSpec(path))

		return
	}

	f.Decls = append([]dst.Decl{&dst.GenDecl{
		Tok:   token.IMPORT,
		Specs: []dst.Spec{newImportSpec(path)},
	}}, f.Decls...)
}

func newImportSpec(path string) *dst.ImportSpec {
	return &dst.ImportSpec{Path: &dst.BasicLit{Kind: token.STRING, Value: strconv.Quote(path)}}
}

func importPath(is *dst.ImportSpec) string {
	p, err := strconv.Unquote(is.Path.Value)
	if err != nil {
		return is.Path.Value
	}

	return p
}
