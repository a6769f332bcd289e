package bt

import (
	"fmt"

	"github.com/aretw0/stackbt/internal/runtime"
	"github.com/aretw0/stackbt/pkg/domain"
)

// Selector ticks its children left to right. A failure advances to the next
// child, a success succeeds the whole selector, Aborted propagates unchanged.
// Exhausting the children fails with the last child's value.
//
// Once a child is pending the selector stays committed to it; see
// ReactiveSelector for a selector that re-checks higher priorities every tick.
type Selector struct {
	composite
}

// NewSelector builds a Selector. It fails on an empty or nil child list.
func NewSelector(name string, children ...domain.Node) (*Selector, error) {
	c, err := newComposite(name, domain.KindSelector, children)
	if err != nil {
		return nil, err
	}
	return &Selector{composite: c}, nil
}

// MustSelector is NewSelector for static trees; it panics on a configuration error.
func MustSelector(name string, children ...domain.Node) *Selector {
	return must(NewSelector(name, children...))
}

// Tick implements domain.Node.
func (s *Selector) Tick(_ *domain.Context, f *domain.Frame) (domain.Step, error) {
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
	if !r.Failed() {
		return domain.Yield(r), nil
	}
	cur.index++
	if cur.index >= len(s.children) {
		return domain.Yield(r), nil
	}
	return domain.Descend(s.children[cur.index]), nil
}

// Inspect implements domain.Inspector.
func (s *Selector) Inspect(f *domain.Frame) domain.FrameDetail {
	if cur, ok := f.Data.(*cursor); ok {
		return domain.FrameDetail{State: fmt.Sprintf("child %d/%d", cur.index+1, len(s.children))}
	}
	return domain.FrameDetail{}
}

// ReactiveSelector re-evaluates its children from the first one on every tick.
// When a child ranked above the active one succeeds or becomes pending, the
// active child is aborted and the higher-priority child takes over.
//
// Children ranked above the active one are ticked fresh each time; if they
// fail they leave nothing behind.
type ReactiveSelector struct {
	composite
}

type reactiveState struct {
	active int
	sub    *runtime.Stack
}

func (st *reactiveState) release(ctx *domain.Context, reason string) {
	if st.sub != nil {
		st.sub.Abort(ctx, reason)
	}
	st.active, st.sub = -1, nil
}

// NewReactiveSelector builds a ReactiveSelector. It fails on an empty or nil child list.
func NewReactiveSelector(name string, children ...domain.Node) (*ReactiveSelector, error) {
	c, err := newComposite(name, domain.KindReactive, children)
	if err != nil {
		return nil, err
	}
	return &ReactiveSelector{composite: c}, nil
}

// MustReactiveSelector is NewReactiveSelector for static trees; it panics on a configuration error.
func MustReactiveSelector(name string, children ...domain.Node) *ReactiveSelector {
	return must(NewReactiveSelector(name, children...))
}

// Tick implements domain.Node.
func (s *ReactiveSelector) Tick(ctx *domain.Context, f *domain.Frame) (domain.Step, error) {
	if err := s.check(); err != nil {
		return domain.Step{}, err
	}
	st, ok := f.Data.(*reactiveState)
	if !ok {
		st = &reactiveState{active: -1}
		f.Data = st
	}

	var last domain.Result
	for i, child := range s.children {
		stack := st.sub
		if i != st.active {
			stack = runtime.Nested(ctx, f, child)
		}
		r, err := stack.Tick(ctx)
		if err != nil {
			st.release(ctx, "configuration error")
			return domain.Step{}, err
		}
		if r.Failed() {
			if i == st.active {
				st.active, st.sub = -1, nil
			}
			last = r
			continue
		}
		if i != st.active {
			st.release(ctx, fmt.Sprintf("preempted by child %d of %s", i, s.name))
		}
		if r.IsPending() {
			st.active, st.sub = i, stack
			return domain.Wait(), nil
		}
		st.active, st.sub = -1, nil
		return domain.Yield(r), nil
	}
	return domain.Yield(last), nil
}

// Abort implements domain.Aborter.
func (s *ReactiveSelector) Abort(ctx *domain.Context, f *domain.Frame) {
	if st, ok := f.Data.(*reactiveState); ok {
		st.release(ctx, "parent aborted")
	}
}

// Inspect implements domain.Inspector.
func (s *ReactiveSelector) Inspect(f *domain.Frame) domain.FrameDetail {
	st, ok := f.Data.(*reactiveState)
	if !ok || st.sub == nil {
		return domain.FrameDetail{}
	}
	return domain.FrameDetail{
		State:    fmt.Sprintf("child %d/%d", st.active+1, len(s.children)),
		Branches: [][]domain.FrameInfo{st.sub.Path()},
	}
}
