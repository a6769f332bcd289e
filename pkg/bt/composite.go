package bt

import (
	"github.com/aretw0/stackbt/pkg/domain"
)

// composite holds what every multi-child node shares.
type composite struct {
	name     string
	kind     string
	children []domain.Node
}

func newComposite(name, kind string, children []domain.Node) (composite, error) {
	if len(children) == 0 {
		return composite{}, domain.Misconfigured(name, "%s needs at least one child", kind)
	}
	for i, c := range children {
		if c == nil {
			return composite{}, domain.Misconfigured(name, "child %d is nil", i)
		}
	}
	kids := make([]domain.Node, len(children))
	copy(kids, children)
	return composite{name: name, kind: kind, children: kids}, nil
}

// check guards against zero-value composites reaching a tick.
func (c *composite) check() error {
	if len(c.children) == 0 {
		return domain.Misconfigured(c.name, "%s has no children", c.kind)
	}
	return nil
}

// Describe implements domain.Describer.
func (c *composite) Describe() domain.Descriptor {
	return domain.Descriptor{Name: c.name, Kind: c.kind, Children: c.children}
}

// cursor is the frame data of Sequence and Selector: the active child index.
type cursor struct {
	index int
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
