package leaf

import (
	"github.com/aretw0/stackbt/pkg/domain"
)

// TickFunc is the body of a leaf. data is nil on first entry and holds the
// value returned as next on the previous Pending tick otherwise. next is
// ignored unless the result is Pending.
type TickFunc func(ctx *domain.Context, data any) (result domain.Result, next any)

// AbortFunc releases whatever a pending leaf holds when its frame is discarded.
type AbortFunc func(ctx *domain.Context, data any)

// Leaf adapts plain functions to the node protocol.
type Leaf struct {
	name    string
	tick    TickFunc
	onAbort AbortFunc
}

// Option configures a Leaf.
type Option func(*Leaf)

// OnAbort registers the release callback of a leaf.
func OnAbort(fn AbortFunc) Option {
	return func(l *Leaf) {
		l.onAbort = fn
	}
}

// resumed wraps the leaf's data so that a nil user value still reads as a resumption.
type resumed struct {
	data any
}

// New creates a leaf from a TickFunc.
func New(name string, fn TickFunc, opts ...Option) *Leaf {
	l := &Leaf{name: name, tick: fn}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Tick implements domain.Node.
func (l *Leaf) Tick(ctx *domain.Context, f *domain.Frame) (domain.Step, error) {
	if l.tick == nil {
		return domain.Step{}, domain.Misconfigured(l.name, "leaf has no tick function")
	}
	var data any
	if r, ok := f.Data.(resumed); ok {
		data = r.data
	}
	res, next := l.tick(ctx, data)
	if res.IsPending() {
		f.Data = resumed{data: next}
	}
	return domain.Yield(res), nil
}

// Abort implements domain.Aborter.
func (l *Leaf) Abort(ctx *domain.Context, f *domain.Frame) {
	if l.onAbort == nil {
		return
	}
	var data any
	if r, ok := f.Data.(resumed); ok {
		data = r.data
	}
	l.onAbort(ctx, data)
}

// Describe implements domain.Describer.
func (l *Leaf) Describe() domain.Descriptor {
	return domain.Descriptor{Name: l.name, Kind: domain.KindLeaf}
}

// Name returns the leaf's name.
func (l *Leaf) Name() string { return l.name }
