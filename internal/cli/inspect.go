package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/aretw0/stackbt/internal/presentation/tui"
	"github.com/aretw0/stackbt/pkg/adapters/redis"
	"github.com/muesli/termenv"
)

// InspectOptions configures the inspect command.
type InspectOptions struct {
	RedisAddr string
	Prefix    string
	TreeID    string // empty lists the trees
	JSON      bool
	Profile   termenv.Profile
}

// Inspect prints snapshots published to Redis by running trees.
func Inspect(ctx context.Context, w io.Writer, opts InspectOptions) error {
	var storeOpts []redis.Option
	if opts.Prefix != "" {
		storeOpts = append(storeOpts, redis.WithPrefix(opts.Prefix))
	}
	store := redis.New(opts.RedisAddr, "", 0, storeOpts...)
	defer store.Close()

	if opts.TreeID == "" {
		ids, err := store.List(ctx)
		if err != nil {
			return err
		}
		sort.Strings(ids)
		if opts.JSON {
			return json.NewEncoder(w).Encode(ids)
		}
		for _, id := range ids {
			fmt.Fprintln(w, id)
		}
		return nil
	}

	snap, err := store.Load(ctx, opts.TreeID)
	if err != nil {
		return fmt.Errorf("tree %s: %w", opts.TreeID, err)
	}
	if opts.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}

	fmt.Fprintf(w, "tree %s (%s) at %s\n", snap.Name, snap.TreeID, snap.Timestamp.Format("2006-01-02 15:04:05"))
	if snap.Failed {
		fmt.Fprintln(w, "failed: rebuild the tree to continue")
	}
	tui.NewPrinter(w, opts.Profile).Tick(snap.Tick, snap.Last, snap.Path)
	return nil
}
