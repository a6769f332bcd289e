package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/stackbt"
	"github.com/aretw0/stackbt/internal/presentation/graph"
)

// GraphOptions configures the graph command.
type GraphOptions struct {
	Path      string
	WorldPath string
	Ticks     int // ticks to run before rendering the active path
}

// Graph writes the Mermaid chart of the tree at opts.Path to w. With
// opts.Ticks > 0 the tree is ticked first and the frames left on its stack
// are highlighted.
func Graph(ctx context.Context, w io.Writer, opts GraphOptions) error {
	def, root, err := loadTree(opts.Path)
	if err != nil {
		return err
	}

	var overlay *graph.GraphOverlay
	if opts.Ticks > 0 {
		world, err := loadWorld(def, opts.WorldPath)
		if err != nil {
			return err
		}
		tree, err := stackbt.New(root, stackbt.WithName(def.Name))
		if err != nil {
			return err
		}
		for range opts.Ticks {
			r, err := tree.Tick(ctx, world)
			if err != nil {
				return err
			}
			if !r.IsPending() {
				break
			}
		}
		overlay = &graph.GraphOverlay{Path: tree.Snapshot().Path}
	}

	_, err = fmt.Fprint(w, graph.GenerateMermaid(root, overlay))
	return err
}
