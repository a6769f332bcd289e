package fsm

import (
	"fmt"

	"github.com/aretw0/stackbt/pkg/domain"
)

type decisionKind int

const (
	unset decisionKind = iota
	stay
	goNext
	goNow
	done
	completeWith
	propagate
	push
	pop
)

// Decision is what a Rule makes of the active child's result.
// The zero Decision is "no rule" and is reported as a configuration error.
type Decision struct {
	kind    decisionKind
	target  string
	result  domain.Result
	outcome domain.Outcome
}

// Stay keeps the active state. A pending child is resumed next tick; a
// finished one is entered fresh next tick.
func Stay() Decision { return Decision{kind: stay} }

// GoTo switches to target and enters it on the next tick.
func GoTo(target string) Decision { return Decision{kind: goNext, target: target} }

// GoNow switches to target and enters it within the same tick, subject to the
// machine's hop limit.
func GoNow(target string) Decision { return Decision{kind: goNow, target: target} }

// Push suspends the active state and enters target fresh on the next tick.
// The suspended child keeps its frames until a Pop resumes it.
func Push(target string) Decision { return Decision{kind: push, target: target} }

// Pop discards the active state and resumes the most recently pushed one on
// the next tick. Popping with nothing suspended is a configuration error.
func Pop() Decision { return Decision{kind: pop} }

// Done completes the machine with r, which must not be Pending.
func Done(r domain.Result) Decision { return Decision{kind: done, result: r} }

// CompleteWith completes the machine with outcome, carrying the child's value.
func CompleteWith(o domain.Outcome) Decision { return Decision{kind: completeWith, outcome: o} }

// Propagate completes the machine with the child's own result.
func Propagate() Decision { return Decision{kind: propagate} }

// IsZero reports whether d is the unset Decision.
func (d Decision) IsZero() bool { return d.kind == unset }

// Target returns the state a GoTo, GoNow or Push decision leads to.
func (d Decision) Target() string { return d.target }

func (d Decision) String() string {
	switch d.kind {
	case stay:
		return "stay"
	case goNext:
		return "goto(" + d.target + ")"
	case goNow:
		return "gonow(" + d.target + ")"
	case done:
		return fmt.Sprintf("done(%s)", d.result)
	case completeWith:
		return fmt.Sprintf("complete(%s)", d.outcome)
	case propagate:
		return "propagate"
	case push:
		return "push(" + d.target + ")"
	case pop:
		return "pop"
	default:
		return "unset"
	}
}

// Transitions maps the active child's result to a Decision. An error is
// reported to the driver as a configuration error.
type Transitions interface {
	Decide(ctx *domain.Context, r domain.Result) (Decision, error)
}

// Rule adapts a function to Transitions.
type Rule func(ctx *domain.Context, r domain.Result) (Decision, error)

// Decide implements Transitions.
func (f Rule) Decide(ctx *domain.Context, r domain.Result) (Decision, error) {
	return f(ctx, r)
}

// Table is a Transitions keyed by the child's result. Success, Failure and Aborted
// must be set for every result the child can produce; Pending defaults to Stay.
type Table struct {
	Success Decision
	Failure Decision
	Aborted Decision
	Pending Decision
}

// errMissing is wrapped by the configuration error of an uncovered result.
type errMissing struct {
	result domain.Result
}

func (e errMissing) Error() string {
	return fmt.Sprintf("no transition for %s", e.result)
}

// Decide implements Transitions.
func (t Table) Decide(_ *domain.Context, r domain.Result) (Decision, error) {
	var d Decision
	switch {
	case r.IsPending():
		d = t.Pending
		if d.IsZero() {
			d = Stay()
		}
	case r.IsAborted():
		d = t.Aborted
	case r.Succeeded():
		d = t.Success
	default:
		d = t.Failure
	}
	if d.IsZero() {
		return d, errMissing{result: r}
	}
	return d, nil
}

func (d Decision) leads() bool {
	return d.kind == goNext || d.kind == goNow || d.kind == push
}

func (t Table) decisions() []Decision {
	return []Decision{t.Success, t.Failure, t.Aborted, t.Pending}
}

func (t Table) targets() []string {
	var out []string
	for _, d := range t.decisions() {
		if d.leads() {
			out = append(out, d.target)
		}
	}
	return out
}

// Always returns d for every finished result; Pending stays.
func Always(d Decision) Table {
	return Table{Success: d, Failure: d, Aborted: d}
}
