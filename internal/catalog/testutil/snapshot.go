package testutil

import (
	"context"
	"sync"

	"github.com/charlesng35/dbnav/internal/catalog"
)

type snapshotKey struct {
	kind  catalog.Kind
	scope catalog.Scope
}

// Snapshot is an in-memory catalog.Enumerator over a fixed set of
// identifiers, for tests that need a catalog without a database.
type Snapshot struct {
	name  string
	mu    sync.RWMutex
	items map[snapshotKey][]string
}

// NewSnapshot creates an empty snapshot.
func NewSnapshot(name string) *Snapshot {
	if name == "" {
		name = "snapshot"
	}
	return &Snapshot{name: name, items: make(map[snapshotKey][]string)}
}

// Name implements catalog.Backend.
func (s *Snapshot) Name() string { return s.name }

// Add appends identifiers of kind under scope and returns the snapshot for chaining.
func (s *Snapshot) Add(kind catalog.Kind, scope catalog.Scope, names ...string) *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := snapshotKey{kind: kind, scope: scope}
	s.items[key] = append(s.items[key], names...)
	return s
}

// Enumerate implements catalog.Enumerator.
func (s *Snapshot) Enumerate(ctx context.Context, kind catalog.Kind, scope catalog.Scope) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := s.items[snapshotKey{kind: kind, scope: scope}]
	out := make([]string, len(names))
	copy(out, names)
	return out, nil
}
