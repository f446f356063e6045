// Package resolve is the C1 Symbol Resolver realization: it loads a typed
// Go compilation via go/packages, giving every later stage semantic
// (not merely syntactic) symbol resolution — identifier-to-declaration
// binding, interface satisfaction, and generic instantiation.
package resolve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/src-d/enry/v2"
	"golang.org/x/tools/go/packages"
)

// loadMode requests everything the graph extractor and rewriter need:
// syntax trees, type information, and file/import metadata.
const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedCompiledGoFiles |
	packages.NeedImports |
	packages.NeedDeps |
	packages.NeedTypes |
	packages.NeedSyntax |
	packages.NeedTypesInfo |
	packages.NeedModule

// Options configures a compilation load.
type Options struct {
	// Dir is the project root to load from.
	Dir string
	// Patterns are go/packages load patterns; defaults to ["./..."].
	Patterns []string
}

// Compilation is a typed, symbol-bound set of packages — the C1 output
// consumed by the graph extractor (§4.2) and the rewriter (§4.5).
type Compilation struct {
	Packages []*packages.Package
}

// Load parses and type-checks the packages matched by opts (default
// "./..."), without test packages. It applies no file filter of its own;
// GoFiles is the separate listing of Go source files under a root.
func Load(ctx context.Context, opts Options) (*Compilation, error) {
	patterns := opts.Patterns
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	cfg := &packages.Config{
		Context: ctx,
		Dir:     opts.Dir,
		Mode:    loadMode,
		Tests:   false,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("load packages: %w", err)
	}

	return &Compilation{Packages: pkgs}, nil
}

// Diagnostics returns every go/packages load/type error across the
// compilation (§7 InvalidInput/CompilationFailure are surfaced, never
// fatal: a package with errors still appears, simply with sparser or
// absent type information for the broken files).
func (c *Compilation) Diagnostics() []packages.Error {
	var errs []packages.Error

	packages.Visit(c.Packages, nil, func(p *packages.Package) {
		errs = append(errs, p.Errors...)
	})

	return errs
}

// GoFiles walks root and returns every file enry classifies as Go source,
// excluding vendor directories. job.Transformation uses it to list the
// files it rewrites.
func GoFiles(root string) ([]string, error) {
	var files []string

	err := filepath.Walk(root, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if info.IsDir() {
			if enry.IsVendor(path) {
				return filepath.SkipDir
			}

			return nil
		}

		content, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil // unreadable file: skip, not a failure of the walk.
		}

		if enry.GetLanguage(path, content) == "Go" {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	return files, nil
}
