package domain

import "fmt"

// Status is the control-flow state a node reports after a tick.
type Status int

const (
	// StatusPending means the node needs another tick; the stack stays suspended on it.
	StatusPending Status = iota
	// StatusComplete means the node finished and control returns to its parent.
	StatusComplete
	// StatusAborted means the node was cancelled from outside. It is not a failure.
	StatusAborted
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusComplete:
		return "complete"
	case StatusAborted:
		return "aborted"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome qualifies a Complete result.
type Outcome int

const (
	Success Outcome = iota
	Failure
)

func (o Outcome) String() string {
	if o == Success {
		return "success"
	}
	return "failure"
}

// Not flips Success and Failure.
func (o Outcome) Not() Outcome {
	if o == Success {
		return Failure
	}
	return Success
}

// Result is the value a node hands back to its parent (or to the driver, for the root).
type Result struct {
	Status  Status  `json:"status"`
	Outcome Outcome `json:"outcome"`

	// Value is the typed output of a completed node (optional).
	Value any `json:"value,omitempty"`

	// Reason explains an Aborted result.
	Reason string `json:"reason,omitempty"`
}

// Succeed builds Complete(success) carrying an optional output value.
func Succeed(value any) Result {
	return Result{Status: StatusComplete, Outcome: Success, Value: value}
}

// Fail builds Complete(failure) carrying an optional output value.
func Fail(value any) Result {
	return Result{Status: StatusComplete, Outcome: Failure, Value: value}
}

// Complete builds a completed result with the given outcome.
func Complete(o Outcome, value any) Result {
	return Result{Status: StatusComplete, Outcome: o, Value: value}
}

// Pending builds the "call me again next tick" result.
func Pending() Result {
	return Result{Status: StatusPending}
}

// Abort builds an Aborted result.
func Abort(reason string) Result {
	return Result{Status: StatusAborted, Reason: reason}
}

func (r Result) IsPending() bool  { return r.Status == StatusPending }
func (r Result) IsComplete() bool { return r.Status == StatusComplete }
func (r Result) IsAborted() bool  { return r.Status == StatusAborted }

// Succeeded reports whether r is Complete(success).
func (r Result) Succeeded() bool {
	return r.Status == StatusComplete && r.Outcome == Success
}

// Failed reports whether r is Complete(failure).
func (r Result) Failed() bool {
	return r.Status == StatusComplete && r.Outcome == Failure
}

// Invert swaps success and failure of a completed result. Other results are returned as is.
func (r Result) Invert() Result {
	if r.Status == StatusComplete {
		r.Outcome = r.Outcome.Not()
	}
	return r
}

func (r Result) String() string {
	switch r.Status {
	case StatusComplete:
		return fmt.Sprintf("complete(%s)", r.Outcome)
	case StatusAborted:
		if r.Reason != "" {
			return fmt.Sprintf("aborted(%s)", r.Reason)
		}
		return "aborted"
	default:
		return r.Status.String()
	}
}
