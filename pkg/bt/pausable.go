package bt

import (
	"github.com/aretw0/stackbt/internal/runtime"
	"github.com/aretw0/stackbt/pkg/domain"
)

// StepDecision is what a Pausable's controller decides before each tick.
type StepDecision int

const (
	// Play ticks the child as normal.
	Play StepDecision = iota
	// Pause skips the child this tick; the Pausable stays pending.
	Pause
	// Reset aborts the child and starts it fresh on the next Play, without ticking now.
	Reset
	// ResetPlay aborts the child and ticks a fresh one immediately.
	ResetPlay
)

// Pausable lets a controller pause, resume or restart its child from the outside.
type Pausable struct {
	decorator
	ctrl func(*domain.Context) StepDecision
}

// NewPausable builds a Pausable.
func NewPausable(name string, child domain.Node, ctrl func(*domain.Context) StepDecision) (*Pausable, error) {
	d, err := newDecorator(name, child)
	if err != nil {
		return nil, err
	}
	if ctrl == nil {
		return nil, domain.Misconfigured(name, "pausable needs a controller")
	}
	return &Pausable{decorator: d, ctrl: ctrl}, nil
}

// Tick implements domain.Node.
func (p *Pausable) Tick(ctx *domain.Context, f *domain.Frame) (domain.Step, error) {
	if err := p.check(); err != nil {
		return domain.Step{}, err
	}
	st, ok := f.Data.(*nested)
	if !ok {
		st = &nested{sub: runtime.Nested(ctx, f, p.child)}
		f.Data = st
	}

	switch p.ctrl(ctx) {
	case Pause:
		return domain.Wait(), nil
	case Reset:
		st.abort(ctx, "reset")
		st.sub = runtime.Nested(ctx, f, p.child)
		return domain.Wait(), nil
	case ResetPlay:
		st.abort(ctx, "reset")
		st.sub = runtime.Nested(ctx, f, p.child)
	}

	st.ticks++
	r, err := st.sub.Tick(ctx)
	if err != nil {
		return domain.Step{}, err
	}
	return domain.Yield(r), nil
}

// Abort implements domain.Aborter.
func (p *Pausable) Abort(ctx *domain.Context, f *domain.Frame) {
	if st, ok := f.Data.(*nested); ok {
		st.abort(ctx, "parent aborted")
	}
}

// Inspect implements domain.Inspector.
func (p *Pausable) Inspect(f *domain.Frame) domain.FrameDetail {
	if st, ok := f.Data.(*nested); ok {
		return st.detail("")
	}
	return domain.FrameDetail{}
}
