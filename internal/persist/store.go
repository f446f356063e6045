// Package persist implements §4.6/§6's persistence contract: one Store
// interface behind two backends, an in-memory map for tests and
// single-process runs, and a file-backed snapshot store built on the
// teacher's Persister[T]/Codec pattern (pkg/persist).
package persist

import (
	"context"
	"errors"

	"github.com/qrious/asyncrewriter/internal/model"
)

// GraphID identifies one stored call graph.
type GraphID string

// ErrNotFound is returned by Fetch/Delete/FindCallers/FindCallees when the
// requested graph id (or project name) has no record.
var ErrNotFound = errors.New("persist: graph not found")

// ProgressFunc reports store progress, matching §6's persistence-contract
// callback shape: phase name, items done, items total.
type ProgressFunc func(phase string, done, total int)

// Record is the stored unit: a graph plus the project it was extracted
// from, addressable either by ID or by ProjectName.
type Record struct {
	ID          GraphID
	ProjectName string
	Graph       *model.CallGraph
}

// Store is the persistence contract §6 describes: accept a complete
// CallGraph, fetch it back by id or project name, delete it, and answer
// caller/callee queries against it with an optional BFS depth cap.
type Store interface {
	// Save stores rec, reporting progress as it writes the graph's
	// methods, edges, and derived sets (root-async, flooded, sync-wrapper).
	Save(ctx context.Context, rec *Record, progress ProgressFunc) error

	// Fetch returns the record stored under id.
	Fetch(ctx context.Context, id GraphID) (*Record, error)

	// FetchByProject returns the most recently saved record for
	// projectName.
	FetchByProject(ctx context.Context, projectName string) (*Record, error)

	// Delete removes the record stored under id.
	Delete(ctx context.Context, id GraphID) error

	// FindCallers returns m's callers in the graph stored under id,
	// breadth-first. maxDepth <= 0 means unbounded.
	FindCallers(ctx context.Context, id GraphID, m model.MethodIdentity, maxDepth int) ([]model.MethodIdentity, error)

	// FindCallees returns m's callees in the graph stored under id,
	// breadth-first. maxDepth <= 0 means unbounded.
	FindCallees(ctx context.Context, id GraphID, m model.MethodIdentity, maxDepth int) ([]model.MethodIdentity, error)
}

// bfsCallers/bfsCallees are shared by every Store implementation: once a
// *model.CallGraph is in hand, the depth-capped traversal is the same
// regardless of where the graph came from.
func bfsCallers(graph *model.CallGraph, start model.MethodIdentity, maxDepth int) []model.MethodIdentity {
	return bfs(start, maxDepth, graph.CallersOf)
}

func bfsCallees(graph *model.CallGraph, start model.MethodIdentity, maxDepth int) []model.MethodIdentity {
	return bfs(start, maxDepth, calleesOf(graph))
}

// calleesOf returns a lookup function for m's direct callees: the targets
// of every outgoing edge from m. Unlike CallersOf, callee lookup needs no
// interface-aware union — §6 asks only for "method identity", and a call
// edge's callee is already resolved to the exact node it invokes.
func calleesOf(graph *model.CallGraph) func(model.MethodIdentity) []model.MethodIdentity {
	calls := graph.Calls()

	return func(m model.MethodIdentity) []model.MethodIdentity {
		var out []model.MethodIdentity

		for _, c := range calls {
			if c.Caller.Equal(m) {
				out = append(out, c.Callee)
			}
		}

		return out
	}
}

func bfs(start model.MethodIdentity, maxDepth int, next func(model.MethodIdentity) []model.MethodIdentity) []model.MethodIdentity {
	type frontierItem struct {
		id    model.MethodIdentity
		depth int
	}

	visited := map[string]struct{}{start.String(): {}}
	queue := []frontierItem{{id: start, depth: 0}}

	var out []model.MethodIdentity

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if maxDepth > 0 && cur.depth >= maxDepth {
			continue
		}

		for _, n := range next(cur.id) {
			key := n.String()
			if _, ok := visited[key]; ok {
				continue
			}

			visited[key] = struct{}{}
			out = append(out, n)
			queue = append(queue, frontierItem{id: n, depth: cur.depth + 1})
		}
	}

	return out
}
