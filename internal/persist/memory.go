package persist

import (
	"context"
	"sync"

	"github.com/qrious/asyncrewriter/internal/model"
)

// MemoryStore is a thread-safe, process-local Store, for tests and
// single-process CLI runs that don't need graphs to outlive the process.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[GraphID]*Record
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[GraphID]*Record)}
}

// Save implements Store.Save. The whole graph is already in memory, so the
// only "progress" there is to report is a single completed phase.
func (s *MemoryStore) Save(_ context.Context, rec *Record, progress ProgressFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[rec.ID] = rec

	if progress != nil {
		progress("store", 1, 1)
	}

	return nil
}

// Fetch implements Store.Fetch.
func (s *MemoryStore) Fetch(_ context.Context, id GraphID) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}

	return rec, nil
}

// FetchByProject implements Store.FetchByProject, returning the first
// matching record found — MemoryStore keeps no insertion order, so when
// multiple graphs share a project name the result is unspecified beyond
// "some record for that project", which matches §6's single-process-run
// use case (one project analyzed at a time).
func (s *MemoryStore) FetchByProject(_ context.Context, projectName string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.records {
		if rec.ProjectName == projectName {
			return rec, nil
		}
	}

	return nil, ErrNotFound
}

// Delete implements Store.Delete.
func (s *MemoryStore) Delete(_ context.Context, id GraphID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return ErrNotFound
	}

	delete(s.records, id)

	return nil
}

// FindCallers implements Store.FindCallers.
func (s *MemoryStore) FindCallers(ctx context.Context, id GraphID, m model.MethodIdentity, maxDepth int) ([]model.MethodIdentity, error) {
	rec, err := s.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	return bfsCallers(rec.Graph, m, maxDepth), nil
}

// FindCallees implements Store.FindCallees.
func (s *MemoryStore) FindCallees(ctx context.Context, id GraphID, m model.MethodIdentity, maxDepth int) ([]model.MethodIdentity, error) {
	rec, err := s.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	return bfsCallees(rec.Graph, m, maxDepth), nil
}
