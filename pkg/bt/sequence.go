package bt

import (
	"fmt"

	"github.com/aretw0/stackbt/pkg/domain"
)

// Sequence ticks its children left to right. A success advances to the next
// child, a failure fails the whole sequence, Aborted propagates unchanged.
// Running off the end succeeds with the last child's value.
type Sequence struct {
	composite
}

// NewSequence builds a Sequence. It fails on an empty or nil child list.
func NewSequence(name string, children ...domain.Node) (*Sequence, error) {
	c, err := newComposite(name, domain.KindSequence, children)
	if err != nil {
		return nil, err
	}
	return &Sequence{composite: c}, nil
}

// MustSequence is NewSequence for static trees; it panics on a configuration error.
func MustSequence(name string, children ...domain.Node) *Sequence {
	return must(NewSequence(name, children...))
}

// Tick implements domain.Node.
func (s *Sequence) Tick(_ *domain.Context, f *domain.Frame) (domain.Step, error) {
	if err := s.check(); err != nil {
		return domain.Step{}, err
	}
	cur, ok := f.Data.(*cursor)
	if !ok {
		f.Data = &cursor{}
		return domain.Descend(s.children[0]), nil
	}
	if f.Child == nil {
		return domain.Descend(s.children[cur.index]), nil
	}

	r := *f.Child
	if !r.Succeeded() {
		return domain.Yield(r), nil
	}
	cur.index++
	if cur.index >= len(s.children) {
		return domain.Yield(r), nil
	}
	return domain.Descend(s.children[cur.index]), nil
}

// Inspect implements domain.Inspector.
func (s *Sequence) Inspect(f *domain.Frame) domain.FrameDetail {
	if cur, ok := f.Data.(*cursor); ok {
		return domain.FrameDetail{State: fmt.Sprintf("child %d/%d", cur.index+1, len(s.children))}
	}
	return domain.FrameDetail{}
}
