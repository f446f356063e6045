package persist

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/qrious/asyncrewriter/internal/model"
	"github.com/qrious/asyncrewriter/pkg/mapx"
	"github.com/qrious/asyncrewriter/pkg/persist"
)

const snapshotBasename = "graph"

// graphSnapshot is the on-disk DTO for a *model.CallGraph: the graph's
// locked fields (nodes, calls) aren't directly codec-encodable, so this
// flattens them to exported slices/maps and back.
type graphSnapshot struct {
	ProjectName             string
	Nodes                   []*model.MethodNode
	Calls                   []model.MethodCall
	RootAsyncMethods        []string
	SyncWrapperMethods      []string
	FloodedMethods          []string
	BaseTypeTransformations map[string][]model.BaseTypeTransformation
	InterfaceMapping        map[string]string
}

func toSnapshot(rec *Record) *graphSnapshot {
	g := rec.Graph

	return &graphSnapshot{
		ProjectName:             rec.ProjectName,
		Nodes:                   g.Nodes(),
		Calls:                   g.Calls(),
		RootAsyncMethods:        mapx.SortedKeys(g.RootAsyncMethods),
		SyncWrapperMethods:      mapx.SortedKeys(g.SyncWrapperMethods),
		FloodedMethods:          mapx.SortedKeys(g.FloodedMethods),
		BaseTypeTransformations: g.BaseTypeTransformations,
		InterfaceMapping:        g.InterfaceMapping,
	}
}

func fromSnapshot(id GraphID, snap *graphSnapshot) *Record {
	g := model.NewCallGraph()

	for _, n := range snap.Nodes {
		g.AddNode(n)
	}

	for _, c := range snap.Calls {
		g.AddCall(c)
	}

	for _, k := range snap.RootAsyncMethods {
		g.RootAsyncMethods[k] = struct{}{}
	}

	for _, k := range snap.SyncWrapperMethods {
		g.SyncWrapperMethods[k] = struct{}{}
	}

	for _, k := range snap.FloodedMethods {
		g.FloodedMethods[k] = struct{}{}
	}

	if snap.BaseTypeTransformations != nil {
		g.BaseTypeTransformations = snap.BaseTypeTransformations
	}

	if snap.InterfaceMapping != nil {
		g.InterfaceMapping = snap.InterfaceMapping
	}

	return &Record{ID: id, ProjectName: snap.ProjectName, Graph: g}
}

// FileStore persists one directory per graph id under Dir, snapshotting
// the graph via the teacher's Persister[T]/Codec pattern (pkg/persist).
// Large graphs should use NewLZ4Codec() instead of the default gob codec.
type FileStore struct {
	Dir   string
	Codec persist.Codec
}

// NewFileStore returns a FileStore rooted at dir, using gob encoding by
// default.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir, Codec: persist.NewGobCodec()}
}

// NewCompressedFileStore returns a FileStore rooted at dir, using
// NewLZ4Codec() for compressed snapshots of large graphs.
func NewCompressedFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir, Codec: persist.NewLZ4Codec()}
}

func (s *FileStore) dirFor(id GraphID) string {
	return filepath.Join(s.Dir, string(id))
}

// Save implements Store.Save.
func (s *FileStore) Save(_ context.Context, rec *Record, progress ProgressFunc) error {
	dir := s.dirFor(rec.ID)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("persist: create graph dir: %w", err)
	}

	if progress != nil {
		progress("snapshot", 0, 1)
	}

	p := persist.NewPersister[graphSnapshot](snapshotBasename, s.Codec)

	err := p.Save(dir, func() *graphSnapshot { return toSnapshot(rec) })
	if err != nil {
		return fmt.Errorf("persist: save graph %s: %w", rec.ID, err)
	}

	if progress != nil {
		progress("snapshot", 1, 1)
	}

	return nil
}

// Fetch implements Store.Fetch.
func (s *FileStore) Fetch(_ context.Context, id GraphID) (*Record, error) {
	dir := s.dirFor(id)

	if _, err := os.Stat(dir); err != nil {
		return nil, ErrNotFound
	}

	p := persist.NewPersister[graphSnapshot](snapshotBasename, s.Codec)

	var rec *Record

	err := p.Load(dir, func(snap *graphSnapshot) { rec = fromSnapshot(id, snap) })
	if err != nil {
		return nil, fmt.Errorf("persist: load graph %s: %w", id, err)
	}

	return rec, nil
}

// FetchByProject implements Store.FetchByProject by scanning every stored
// graph id's directory for a matching ProjectName. FileStore trades this
// linear scan for MemoryStore's simplicity; a project-name index is not
// worth the complexity at the scale this tool runs at (one graph per
// analyzed repository, rebuilt rarely).
func (s *FileStore) FetchByProject(ctx context.Context, projectName string) (*Record, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, ErrNotFound
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}

		rec, err := s.Fetch(ctx, GraphID(e.Name()))
		if err != nil {
			continue
		}

		if rec.ProjectName == projectName {
			return rec, nil
		}
	}

	return nil, ErrNotFound
}

// Delete implements Store.Delete.
func (s *FileStore) Delete(_ context.Context, id GraphID) error {
	dir := s.dirFor(id)

	if _, err := os.Stat(dir); err != nil {
		return ErrNotFound
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("persist: delete graph %s: %w", id, err)
	}

	return nil
}

// FindCallers implements Store.FindCallers.
func (s *FileStore) FindCallers(ctx context.Context, id GraphID, m model.MethodIdentity, maxDepth int) ([]model.MethodIdentity, error) {
	rec, err := s.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	return bfsCallers(rec.Graph, m, maxDepth), nil
}

// FindCallees implements Store.FindCallees.
func (s *FileStore) FindCallees(ctx context.Context, id GraphID, m model.MethodIdentity, maxDepth int) ([]model.MethodIdentity, error) {
	rec, err := s.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	return bfsCallees(rec.Graph, m, maxDepth), nil
}
