package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/stackbt/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a SnapshotStore
// implementation adheres to the defined interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	treeID := "contract-tree-" + time.Now().Format("20060102150405")

	snap := domain.Snapshot{
		TreeID: treeID,
		Name:   "guard",
		Tick:   3,
		Path: []domain.FrameInfo{
			{Name: "guard", Kind: domain.KindStateMachine, Depth: 0, State: "patrol"},
		},
		Last:      domain.Pending(),
		Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	t.Run("Publish and Load", func(t *testing.T) {
		err := store.Publish(ctx, snap)
		require.NoError(t, err, "Publish should not return error")

		loaded, err := store.Load(ctx, treeID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, snap.Tick, loaded.Tick)
		assert.Equal(t, "patrol", loaded.Path[0].State)
		assert.True(t, loaded.Last.IsPending())
	})

	t.Run("Publish Overwrites", func(t *testing.T) {
		next := snap
		next.Tick = 4
		next.Last = domain.Succeed(nil)
		require.NoError(t, store.Publish(ctx, next))

		loaded, err := store.Load(ctx, treeID)
		require.NoError(t, err)
		assert.Equal(t, uint64(4), loaded.Tick)
		assert.True(t, loaded.Last.Succeeded())
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+treeID)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("List", func(t *testing.T) {
		other := snap
		other.TreeID = treeID + "-2"
		require.NoError(t, store.Publish(ctx, other))
		defer func() { _ = store.Delete(ctx, other.TreeID) }()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, treeID)
		assert.Contains(t, ids, other.TreeID)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, treeID))

		_, err := store.Load(ctx, treeID)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound, "Load after Delete should return ErrSnapshotNotFound")
	})
}
