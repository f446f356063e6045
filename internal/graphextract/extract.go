// Package graphextract is the C2 Graph Extractor: it walks a typed
// compilation and builds the §3 CallGraph — one MethodNode per declaration,
// one MethodCall edge per resolved invocation, interface-implementation
// relations recorded via ImplementsInterfaceMethods.
package graphextract

import (
	"context"
	"sync"

	"golang.org/x/tools/go/packages"

	"github.com/qrious/asyncrewriter/internal/model"
	"github.com/qrious/asyncrewriter/internal/resolve"
)

// Options configures extraction.
type Options struct {
	// ExternalSyncWrappers are method identities declared outside the
	// analyzed compilation that are nonetheless known sync wrappers (§4.2
	// "optional list of externally declared sync-wrapper identities").
	ExternalSyncWrappers []model.MethodIdentity
}

// Extract runs both passes of §4.2 over comp, returning a populated
// CallGraph. Each pass runs one goroutine per package.
func Extract(ctx context.Context, comp *resolve.Compilation, opts Options) (*model.CallGraph, error) {
	graph := model.NewCallGraph()

	externalWrappers := make(map[string]struct{}, len(opts.ExternalSyncWrappers))
	for _, id := range opts.ExternalSyncWrappers {
		externalWrappers[id.String()] = struct{}{}
	}

	// Pass 1: declarations, parallel across packages.
	var wg sync.WaitGroup

	for _, pkg := range comp.Packages {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)

		go func(pkg *packages.Package) {
			defer wg.Done()
			extractDeclarations(pkg, graph)
		}(pkg)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Interface-implementation relations need every package's declarations
	// first, so this runs once, single-threaded, after pass 1 completes.
	computeImplementsInterfaceMethods(comp.Packages)(graph)

	// Pass 2: invocations, parallel across packages.
	var wg2 sync.WaitGroup

	for _, pkg := range comp.Packages {
		if ctx.Err() != nil {
			break
		}

		wg2.Add(1)

		go func(pkg *packages.Package) {
			defer wg2.Done()
			extractInvocations(pkg, graph, externalWrappers)
		}(pkg)
	}

	wg2.Wait()

	return graph, ctx.Err()
}
