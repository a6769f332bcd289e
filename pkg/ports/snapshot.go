package ports

import (
	"context"

	"github.com/aretw0/stackbt/pkg/domain"
)

// SnapshotPublisher receives the snapshot of a tree after each tick.
// Publish is called from the ticking goroutine and should not block for long.
type SnapshotPublisher interface {
	Publish(ctx context.Context, snap domain.Snapshot) error
}

// SnapshotStore keeps the latest snapshot per tree ID.
type SnapshotStore interface {
	SnapshotPublisher

	// Load returns the latest snapshot of treeID.
	// Returns domain.ErrSnapshotNotFound if none was published.
	Load(ctx context.Context, treeID string) (domain.Snapshot, error)

	// Delete forgets the snapshot of treeID.
	Delete(ctx context.Context, treeID string) error

	// List returns the IDs of every tree with a stored snapshot.
	List(ctx context.Context) ([]string, error)
}
