package cli

import (
	"fmt"
	"io"

	"github.com/aretw0/stackbt"
	"github.com/aretw0/stackbt/pkg/domain"
)

// Validate compiles the tree at path and checks its node graph. On success
// it writes a one-line summary to w.
func Validate(w io.Writer, path string) error {
	def, root, err := loadTree(path)
	if err != nil {
		return err
	}
	if err := stackbt.Validate(root, 0); err != nil {
		return err
	}

	nodes, depth := 0, 0
	domain.Walk(root, func(_ domain.Node, d int) bool {
		nodes++
		depth = max(depth, d+1)
		return true
	})
	fmt.Fprintf(w, "%s: %d nodes, depth %d\n", def.Name, nodes, depth)
	return nil
}
