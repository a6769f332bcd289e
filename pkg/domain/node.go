package domain

import (
	"fmt"
	"strings"
)

// Node is the single execution protocol shared by leaves and composites.
//
// Tick is called with a fresh Frame (f.Data == nil) on first entry and with
// the same Frame on every resumption. A node keeps nothing between calls
// except what it stores in f.Data. When the call is caused by a child frame
// popping, f.Child holds that child's final result.
//
// The returned error is reserved for configuration errors; ordinary failure
// is a Complete(failure) result.
type Node interface {
	Tick(ctx *Context, f *Frame) (Step, error)
}

// Aborter is implemented by nodes that hold something worth releasing when
// their frame is discarded before completion. The stack calls Abort exactly
// once per discarded frame, innermost first.
type Aborter interface {
	Abort(ctx *Context, f *Frame)
}

// Describer exposes a node's static shape for validation and rendering.
type Describer interface {
	Describe() Descriptor
}

// Inspector reports live per-frame detail (active state, child index, nested branches).
type Inspector interface {
	Inspect(f *Frame) FrameDetail
}

// Descriptor is the static description of a node.
type Descriptor struct {
	Name     string
	Kind     string
	Children []Node
}

// FrameDetail is what an Inspector reports about a live frame.
type FrameDetail struct {
	State    string
	Branches [][]FrameInfo
}

// Kinds reported by the built-in nodes.
const (
	KindLeaf         = "leaf"
	KindStateMachine = "state_machine"
	KindSequence     = "sequence"
	KindSelector     = "selector"
	KindReactive     = "reactive_selector"
	KindDecorator    = "decorator"
	KindParallel     = "parallel"
)

// Describe returns the node's Descriptor, falling back to its Go type for
// nodes that do not implement Describer.
func Describe(n Node) Descriptor {
	if d, ok := n.(Describer); ok {
		return d.Describe()
	}
	name := strings.TrimPrefix(fmt.Sprintf("%T", n), "*")
	return Descriptor{Name: name, Kind: KindLeaf}
}

// Walk visits n and its descendants depth-first in declared order.
// Returning false from fn stops the descent below that node.
func Walk(n Node, fn func(n Node, depth int) bool) {
	walk(n, 0, fn)
}

func walk(n Node, depth int, fn func(Node, int) bool) {
	if n == nil || !fn(n, depth) {
		return
	}
	for _, c := range Describe(n).Children {
		walk(c, depth+1, fn)
	}
}

// Step is what a node returns from Tick: either a result for its parent or a
// request to descend into a child.
type Step struct {
	result Result
	child  Node
}

// Yield hands r to the parent. A Pending result leaves the frame on the stack.
func Yield(r Result) Step {
	return Step{result: r}
}

// Wait is shorthand for Yield(Pending()).
func Wait() Step {
	return Step{result: Pending()}
}

// Descend asks the stack to push a fresh frame for child and tick it in the same call.
func Descend(child Node) Step {
	return Step{child: child}
}

// Child returns the node to descend into, or nil.
func (s Step) Child() Node { return s.child }

// Result returns the yielded result. Meaningless when Child() != nil.
func (s Step) Result() Result { return s.result }
