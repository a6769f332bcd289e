package bt

import (
	"fmt"
	"time"

	"github.com/aretw0/stackbt/internal/runtime"
	"github.com/aretw0/stackbt/pkg/domain"
)

// decorator holds what every single-child node shares.
type decorator struct {
	name  string
	child domain.Node
}

func newDecorator(name string, child domain.Node) (decorator, error) {
	if child == nil {
		return decorator{}, domain.Misconfigured(name, "decorator needs a child")
	}
	return decorator{name: name, child: child}, nil
}

func (d *decorator) check() error {
	if d.child == nil {
		return domain.Misconfigured(d.name, "decorator has no child")
	}
	return nil
}

// Describe implements domain.Describer.
func (d *decorator) Describe() domain.Descriptor {
	return domain.Descriptor{Name: d.name, Kind: domain.KindDecorator, Children: []domain.Node{d.child}}
}

// entered marks a decorator frame whose child has been pushed.
type entered struct{}

// Mapper transforms its child's final result. Pending children are never seen:
// the child's own frame sits on top of the stack until it finishes.
type Mapper struct {
	decorator
	fn func(domain.Result) domain.Result
}

// NewMapper builds a decorator applying fn to the child's final result.
func NewMapper(name string, child domain.Node, fn func(domain.Result) domain.Result) (*Mapper, error) {
	d, err := newDecorator(name, child)
	if err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, domain.Misconfigured(name, "mapper needs a function")
	}
	return &Mapper{decorator: d, fn: fn}, nil
}

// Inverter flips the child's success and failure.
func Inverter(name string, child domain.Node) (*Mapper, error) {
	return NewMapper(name, child, domain.Result.Invert)
}

// ForceSuccess turns the child's failure into success.
func ForceSuccess(name string, child domain.Node) (*Mapper, error) {
	return NewMapper(name, child, func(r domain.Result) domain.Result {
		if r.IsComplete() {
			r.Outcome = domain.Success
		}
		return r
	})
}

// ForceFailure turns the child's success into failure.
func ForceFailure(name string, child domain.Node) (*Mapper, error) {
	return NewMapper(name, child, func(r domain.Result) domain.Result {
		if r.IsComplete() {
			r.Outcome = domain.Failure
		}
		return r
	})
}

// MustInverter is Inverter for static trees.
func MustInverter(name string, child domain.Node) *Mapper {
	return must(Inverter(name, child))
}

// Tick implements domain.Node.
func (m *Mapper) Tick(_ *domain.Context, f *domain.Frame) (domain.Step, error) {
	if err := m.check(); err != nil {
		return domain.Step{}, err
	}
	if f.Child == nil {
		f.Data = entered{}
		return domain.Descend(m.child), nil
	}
	return domain.Yield(m.fn(*f.Child)), nil
}

// Repeat runs its child again each time it completes with the awaited outcome.
//
// Restarts happen on the next tick, so a child that completes immediately
// costs one tick per run instead of spinning inside a single tick.
type Repeat struct {
	decorator
	times int
	until *domain.Outcome
}

type repeatState struct {
	runs int
	last domain.Result
}

// NewRepeat repeats the child while it succeeds, at most times runs (times <= 0
// repeats forever). The first failure ends the repeat with that failure.
func NewRepeat(name string, child domain.Node, times int) (*Repeat, error) {
	d, err := newDecorator(name, child)
	if err != nil {
		return nil, err
	}
	return &Repeat{decorator: d, times: times}, nil
}

// NewRepeatUntil restarts the child on every completion until it completes
// with outcome, then yields that result.
func NewRepeatUntil(name string, child domain.Node, outcome domain.Outcome) (*Repeat, error) {
	d, err := newDecorator(name, child)
	if err != nil {
		return nil, err
	}
	return &Repeat{decorator: d, until: &outcome}, nil
}

// Tick implements domain.Node.
func (r *Repeat) Tick(_ *domain.Context, f *domain.Frame) (domain.Step, error) {
	if err := r.check(); err != nil {
		return domain.Step{}, err
	}
	st, ok := f.Data.(*repeatState)
	if !ok {
		f.Data = &repeatState{}
		return domain.Descend(r.child), nil
	}
	if f.Child == nil {
		// Resumed on the tick after a completed run.
		return domain.Descend(r.child), nil
	}

	res := *f.Child
	if res.IsAborted() {
		return domain.Yield(res), nil
	}
	st.runs++
	st.last = res
	if r.until != nil {
		if res.Outcome == *r.until {
			return domain.Yield(res), nil
		}
		return domain.Wait(), nil
	}
	if res.Failed() || (r.times > 0 && st.runs >= r.times) {
		return domain.Yield(res), nil
	}
	return domain.Wait(), nil
}

// Inspect implements domain.Inspector.
func (r *Repeat) Inspect(f *domain.Frame) domain.FrameDetail {
	if st, ok := f.Data.(*repeatState); ok {
		return domain.FrameDetail{State: fmt.Sprintf("run %d", st.runs+1)}
	}
	return domain.FrameDetail{}
}

// nested is the frame data of decorators that watch their child every tick.
type nested struct {
	sub   *runtime.Stack
	ticks int
	since time.Time
}

func (n *nested) abort(ctx *domain.Context, reason string) {
	if n.sub != nil {
		n.sub.Abort(ctx, reason)
	}
}

func (n *nested) detail(state string) domain.FrameDetail {
	d := domain.FrameDetail{State: state}
	if n.sub != nil && !n.sub.Empty() {
		d.Branches = [][]domain.FrameInfo{n.sub.Path()}
	}
	return d
}

// ReasonTimeout is the abort reason injected by Timeout.
const ReasonTimeout = "timeout"

// Timeout aborts its child once a tick-count or clock budget is spent. Both
// budgets are read from the tick context; zero disables a budget.
type Timeout struct {
	decorator
	ticks    int
	duration time.Duration
}

// NewTimeout gives the child at most ticks evaluation cycles.
func NewTimeout(name string, child domain.Node, ticks int) (*Timeout, error) {
	if ticks <= 0 {
		return nil, domain.Misconfigured(name, "timeout tick budget must be positive, got %d", ticks)
	}
	d, err := newDecorator(name, child)
	if err != nil {
		return nil, err
	}
	return &Timeout{decorator: d, ticks: ticks}, nil
}

// NewDeadline gives the child at most d of context clock time, measured from entry.
func NewDeadline(name string, child domain.Node, d time.Duration) (*Timeout, error) {
	if d <= 0 {
		return nil, domain.Misconfigured(name, "timeout duration must be positive, got %s", d)
	}
	dec, err := newDecorator(name, child)
	if err != nil {
		return nil, err
	}
	return &Timeout{decorator: dec, duration: d}, nil
}

// Tick implements domain.Node.
func (t *Timeout) Tick(ctx *domain.Context, f *domain.Frame) (domain.Step, error) {
	if err := t.check(); err != nil {
		return domain.Step{}, err
	}
	st, ok := f.Data.(*nested)
	if !ok {
		st = &nested{sub: runtime.Nested(ctx, f, t.child), since: ctx.Now}
		f.Data = st
	}
	if t.expired(ctx, st) {
		st.abort(ctx, ReasonTimeout)
		ctx.Log().Debug("Timeout", "node", t.name, "ticks", st.ticks)
		return domain.Yield(domain.Abort(ReasonTimeout)), nil
	}
	st.ticks++
	r, err := st.sub.Tick(ctx)
	if err != nil {
		return domain.Step{}, err
	}
	return domain.Yield(r), nil
}

func (t *Timeout) expired(ctx *domain.Context, st *nested) bool {
	if t.ticks > 0 && st.ticks >= t.ticks {
		return true
	}
	return t.duration > 0 && st.ticks > 0 && ctx.Now.Sub(st.since) >= t.duration
}

// Abort implements domain.Aborter.
func (t *Timeout) Abort(ctx *domain.Context, f *domain.Frame) {
	if st, ok := f.Data.(*nested); ok {
		st.abort(ctx, "parent aborted")
	}
}

// Inspect implements domain.Inspector.
func (t *Timeout) Inspect(f *domain.Frame) domain.FrameDetail {
	if st, ok := f.Data.(*nested); ok {
		return st.detail(fmt.Sprintf("tick %d", st.ticks))
	}
	return domain.FrameDetail{}
}

// GuardFailure is the Value of the failure a Guard yields when its condition breaks.
type GuardFailure struct {
	Guard string
}

func (g GuardFailure) String() string {
	return fmt.Sprintf("guard %q failed", g.Guard)
}

// Guard checks a condition before every tick of its child. When the
// condition no longer holds, a pending child is aborted and the guard fails
// with a GuardFailure value.
type Guard struct {
	decorator
	cond func(*domain.Context) bool
}

// NewGuard builds a Guard.
func NewGuard(name string, child domain.Node, cond func(*domain.Context) bool) (*Guard, error) {
	d, err := newDecorator(name, child)
	if err != nil {
		return nil, err
	}
	if cond == nil {
		return nil, domain.Misconfigured(name, "guard needs a condition")
	}
	return &Guard{decorator: d, cond: cond}, nil
}

// Tick implements domain.Node.
func (g *Guard) Tick(ctx *domain.Context, f *domain.Frame) (domain.Step, error) {
	if err := g.check(); err != nil {
		return domain.Step{}, err
	}
	st, ok := f.Data.(*nested)
	if !ok {
		st = &nested{sub: runtime.Nested(ctx, f, g.child)}
		f.Data = st
	}
	if !g.cond(ctx) {
		st.abort(ctx, "guard failed")
		return domain.Yield(domain.Fail(GuardFailure{Guard: g.name})), nil
	}
	st.ticks++
	r, err := st.sub.Tick(ctx)
	if err != nil {
		return domain.Step{}, err
	}
	return domain.Yield(r), nil
}

// Abort implements domain.Aborter.
func (g *Guard) Abort(ctx *domain.Context, f *domain.Frame) {
	if st, ok := f.Data.(*nested); ok {
		st.abort(ctx, "parent aborted")
	}
}

// Inspect implements domain.Inspector.
func (g *Guard) Inspect(f *domain.Frame) domain.FrameDetail {
	if st, ok := f.Data.(*nested); ok {
		return st.detail("")
	}
	return domain.FrameDetail{}
}
