package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/aretw0/stackbt"
	"github.com/aretw0/stackbt/internal/logging"
	"github.com/aretw0/stackbt/pkg/domain"
	"github.com/aretw0/stackbt/pkg/ports"
)

// ErrNotFound is returned for IDs the Manager holds no tree for.
var ErrNotFound = errors.New("tree not found")

// Factory builds the tree of a new instance. It should pass
// stackbt.WithID(id) so snapshots are published under the same ID.
type Factory func(id string) (*stackbt.Tree, error)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates access to tree instances, ensuring ticks of the same
// instance never overlap. It uses reference counting to garbage collect unused locks.
type Manager struct {
	factory Factory
	store   ports.SnapshotStore

	mu    sync.Mutex            // guards locks and trees
	locks map[string]*lockEntry // active per-ID locks
	trees map[string]*stackbt.Tree

	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithStore deletes an instance's published snapshot when the instance is deleted.
func WithStore(store ports.SnapshotStore) Option {
	return func(m *Manager) {
		m.store = store
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager building trees with factory.
func NewManager(factory Factory, opts ...Option) *Manager {
	m := &Manager{
		factory: factory,
		locks:   make(map[string]*lockEntry),
		trees:   make(map[string]*stackbt.Tree),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must lock entry.mu, and call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

func (m *Manager) lookup(id string) (*stackbt.Tree, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trees[id]
	return t, ok
}

// WithLock runs fn with exclusive access to the tree of id, creating it on
// first use.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context, *stackbt.Tree) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	tree, ok := m.lookup(id)
	if !ok {
		var err error
		tree, err = m.factory(id)
		if err != nil {
			return fmt.Errorf("failed to create tree %s: %w", id, err)
		}
		m.mu.Lock()
		m.trees[id] = tree
		m.mu.Unlock()
		m.logger.Debug("Tree Created", "id", id)
	}
	return fn(ctx, tree)
}

// Tick runs one evaluation cycle of the tree of id.
func (m *Manager) Tick(ctx context.Context, id string, world any) (domain.Result, error) {
	var r domain.Result
	err := m.WithLock(ctx, id, func(ctx context.Context, t *stackbt.Tree) error {
		var err error
		r, err = t.Tick(ctx, world)
		return err
	})
	return r, err
}

// Reset aborts the live frames of the tree of id.
func (m *Manager) Reset(ctx context.Context, id string) error {
	if _, ok := m.lookup(id); !ok {
		return ErrNotFound
	}
	return m.WithLock(ctx, id, func(ctx context.Context, t *stackbt.Tree) error {
		t.Reset(ctx)
		return nil
	})
}

// Snapshot returns the current snapshot of the tree of id.
func (m *Manager) Snapshot(ctx context.Context, id string) (domain.Snapshot, error) {
	if _, ok := m.lookup(id); !ok {
		return domain.Snapshot{}, ErrNotFound
	}
	var snap domain.Snapshot
	err := m.WithLock(ctx, id, func(_ context.Context, t *stackbt.Tree) error {
		snap = t.Snapshot()
		return nil
	})
	return snap, err
}

// Delete resets and forgets the tree of id. Deleting an unknown ID is a no-op.
func (m *Manager) Delete(ctx context.Context, id string) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	m.mu.Lock()
	tree, ok := m.trees[id]
	delete(m.trees, id)
	m.mu.Unlock()
	if !ok {
		return nil
	}

	tree.Reset(ctx)
	m.logger.Debug("Tree Deleted", "id", id)
	if m.store != nil {
		return m.store.Delete(ctx, id)
	}
	return nil
}

// List returns the IDs of the live trees, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.trees))
	for id := range m.trees {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
