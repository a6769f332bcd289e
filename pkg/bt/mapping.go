package bt

import (
	"github.com/aretw0/stackbt/internal/runtime"
	"github.com/aretw0/stackbt/pkg/domain"
)

// InputMapper ticks its child against a projection of the world, so a
// subtree written for one input type can be reused under another.
type InputMapper struct {
	decorator
	fn func(*domain.Context) any
}

// NewInputMapper builds an InputMapper. fn is called once per tick and its
// return value becomes the child's World for that tick.
func NewInputMapper(name string, child domain.Node, fn func(*domain.Context) any) (*InputMapper, error) {
	d, err := newDecorator(name, child)
	if err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, domain.Misconfigured(name, "input mapper needs a mapping function")
	}
	return &InputMapper{decorator: d, fn: fn}, nil
}

// Tick implements domain.Node.
func (m *InputMapper) Tick(ctx *domain.Context, f *domain.Frame) (domain.Step, error) {
	if err := m.check(); err != nil {
		return domain.Step{}, err
	}
	st, ok := f.Data.(*nested)
	if !ok {
		st = &nested{sub: runtime.Nested(ctx, f, m.child)}
		f.Data = st
	}
	inner := *ctx
	inner.World = m.fn(ctx)
	st.ticks++
	r, err := st.sub.Tick(&inner)
	if err != nil {
		return domain.Step{}, err
	}
	return domain.Yield(r), nil
}

// Abort implements domain.Aborter.
func (m *InputMapper) Abort(ctx *domain.Context, f *domain.Frame) {
	if st, ok := f.Data.(*nested); ok {
		inner := *ctx
		inner.World = m.fn(ctx)
		st.abort(&inner, "parent aborted")
	}
}

// Inspect implements domain.Inspector.
func (m *InputMapper) Inspect(f *domain.Frame) domain.FrameDetail {
	if st, ok := f.Data.(*nested); ok {
		return st.detail("")
	}
	return domain.FrameDetail{}
}

// PostReset inspects every result of its child, Pending included. When the
// predicate holds, the result is withheld: a running child is aborted and
// restarted next tick, a finished one is simply entered again.
type PostReset struct {
	decorator
	reset func(*domain.Context, domain.Result) bool
}

// NewPostReset builds a PostReset.
func NewPostReset(name string, child domain.Node, reset func(*domain.Context, domain.Result) bool) (*PostReset, error) {
	d, err := newDecorator(name, child)
	if err != nil {
		return nil, err
	}
	if reset == nil {
		return nil, domain.Misconfigured(name, "post reset needs a predicate")
	}
	return &PostReset{decorator: d, reset: reset}, nil
}

// Tick implements domain.Node.
func (p *PostReset) Tick(ctx *domain.Context, f *domain.Frame) (domain.Step, error) {
	if err := p.check(); err != nil {
		return domain.Step{}, err
	}
	st, ok := f.Data.(*nested)
	if !ok {
		st = &nested{sub: runtime.Nested(ctx, f, p.child)}
		f.Data = st
	}
	st.ticks++
	r, err := st.sub.Tick(ctx)
	if err != nil {
		return domain.Step{}, err
	}
	if !p.reset(ctx, r) {
		return domain.Yield(r), nil
	}
	ctx.Log().Debug("PostReset", "node", p.name, "result", r.String())
	if r.IsPending() {
		st.abort(ctx, "reset")
	}
	st.ticks = 0
	return domain.Wait(), nil
}

// Abort implements domain.Aborter.
func (p *PostReset) Abort(ctx *domain.Context, f *domain.Frame) {
	if st, ok := f.Data.(*nested); ok {
		st.abort(ctx, "parent aborted")
	}
}

// Inspect implements domain.Inspector.
func (p *PostReset) Inspect(f *domain.Frame) domain.FrameDetail {
	if st, ok := f.Data.(*nested); ok {
		return st.detail("")
	}
	return domain.FrameDetail{}
}
