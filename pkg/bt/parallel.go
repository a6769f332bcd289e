package bt

import (
	"fmt"

	"github.com/aretw0/stackbt/internal/runtime"
	"github.com/aretw0/stackbt/pkg/domain"
)

// Policy decides how many branch successes complete a Parallel.
// The zero Policy is RequireAll.
type Policy struct {
	name  string
	some  bool // count applies; otherwise every branch must succeed
	count int
}

var (
	// RequireAll succeeds once every branch succeeded.
	RequireAll = Policy{name: "all"}
	// RequireAny succeeds as soon as one branch succeeded.
	RequireAny = Policy{name: "any", some: true, count: 1}
)

// RequireCount succeeds once at least n branches succeeded. n must be
// between 1 and the number of branches.
func RequireCount(n int) Policy {
	return Policy{name: fmt.Sprintf("count>=%d", n), some: true, count: n}
}

func (p Policy) String() string {
	if p.name == "" {
		return "all"
	}
	return p.name
}

func (p Policy) need(branches int) int {
	if !p.some {
		return branches
	}
	return p.count
}

// Parallel ticks every unfinished branch on every tick, in declared order.
//
// Finished branches are not ticked again; their results are kept for the
// aggregate. The group succeeds once the policy's success count is reached
// and fails as soon as it can no longer be reached. Aborted branches count as
// non-successes. Branches still pending when the group completes are aborted
// in the same tick. The completed result's Value is a []domain.Result in
// declared order.
type Parallel struct {
	composite
	policy Policy
}

type branch struct {
	stack  *runtime.Stack
	done   bool
	result domain.Result
}

type parallelState struct {
	branches []*branch
}

// NewParallel builds a Parallel.
func NewParallel(name string, policy Policy, children ...domain.Node) (*Parallel, error) {
	c, err := newComposite(name, domain.KindParallel, children)
	if err != nil {
		return nil, err
	}
	if policy.some && (policy.count < 1 || policy.count > len(children)) {
		return nil, domain.Misconfigured(name, "policy %s cannot be met by %d branches", policy, len(children))
	}
	return &Parallel{composite: c, policy: policy}, nil
}

// MustParallel is NewParallel for static trees.
func MustParallel(name string, policy Policy, children ...domain.Node) *Parallel {
	return must(NewParallel(name, policy, children...))
}

// Tick implements domain.Node.
func (p *Parallel) Tick(ctx *domain.Context, f *domain.Frame) (domain.Step, error) {
	if err := p.check(); err != nil {
		return domain.Step{}, err
	}
	st, ok := f.Data.(*parallelState)
	if !ok {
		st = &parallelState{branches: make([]*branch, len(p.children))}
		for i, c := range p.children {
			st.branches[i] = &branch{stack: runtime.Nested(ctx, f, c)}
		}
		f.Data = st
	}

	need := p.policy.need(len(p.children))
	var succeeded, pending int
	for _, b := range st.branches {
		if !b.done {
			r, err := b.stack.Tick(ctx)
			if err != nil {
				st.abort(ctx, "configuration error")
				return domain.Step{}, err
			}
			if r.IsPending() {
				pending++
				continue
			}
			b.done, b.result = true, r
		}
		if b.result.Succeeded() {
			succeeded++
		}
	}

	switch {
	case succeeded >= need:
		return domain.Yield(domain.Succeed(st.finish(ctx, "parallel succeeded"))), nil
	case succeeded+pending < need:
		return domain.Yield(domain.Fail(st.finish(ctx, "parallel failed"))), nil
	default:
		return domain.Wait(), nil
	}
}

// finish aborts the branches still running and returns every branch result.
func (st *parallelState) finish(ctx *domain.Context, reason string) []domain.Result {
	out := make([]domain.Result, len(st.branches))
	for i, b := range st.branches {
		if !b.done {
			b.stack.Abort(ctx, reason)
			b.done, b.result = true, domain.Abort(reason)
		}
		out[i] = b.result
	}
	return out
}

func (st *parallelState) abort(ctx *domain.Context, reason string) {
	for _, b := range st.branches {
		if !b.done {
			b.stack.Abort(ctx, reason)
		}
	}
}

// Abort implements domain.Aborter.
func (p *Parallel) Abort(ctx *domain.Context, f *domain.Frame) {
	if st, ok := f.Data.(*parallelState); ok {
		st.abort(ctx, "parent aborted")
	}
}

// Inspect implements domain.Inspector.
func (p *Parallel) Inspect(f *domain.Frame) domain.FrameDetail {
	st, ok := f.Data.(*parallelState)
	if !ok {
		return domain.FrameDetail{}
	}
	d := domain.FrameDetail{}
	running := 0
	for _, b := range st.branches {
		if b.done {
			continue
		}
		running++
		d.Branches = append(d.Branches, b.stack.Path())
	}
	d.State = fmt.Sprintf("%d/%d running, %s", running, len(st.branches), p.policy)
	return d
}
