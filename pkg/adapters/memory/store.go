package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/stackbt/pkg/domain"
)

// Store implements ports.SnapshotStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]domain.Snapshot
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]domain.Snapshot),
	}
}

// Publish keeps snap as the latest snapshot of its tree.
func (s *Store) Publish(ctx context.Context, snap domain.Snapshot) error {
	// Copy the path so the caller can't mutate store state through the slice.
	snap.Path = slices.Clone(snap.Path)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[snap.TreeID] = snap
	return nil
}

// Load retrieves the latest snapshot of treeID.
func (s *Store) Load(ctx context.Context, treeID string) (domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.data[treeID]
	if !ok {
		return domain.Snapshot{}, domain.ErrSnapshotNotFound
	}
	snap.Path = slices.Clone(snap.Path)
	return snap, nil
}

// Delete removes the snapshot.
func (s *Store) Delete(ctx context.Context, treeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, treeID)
	return nil
}

// List returns the trees with a stored snapshot.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}
