/*
Package stackbt is a tick-driven library for decision logic built from two
primitives, behavior trees and state machines, that nest inside each other
freely.

An active tree is kept as an explicit stack of frames rather than suspended
goroutines or coroutines. Each frame holds one node and the private data it
needs to resume. Every tick resumes exactly the frame that was left waiting,
with bounded work and no call-stack growth across ticks.

# Concept

Every node implements one protocol (see pkg/domain):

	Tick(ctx *domain.Context, f *domain.Frame) (domain.Step, error)

A node yields a Result (Pending, Complete with an outcome, or Aborted) or asks
to descend into a child. Leaves are host code (pkg/leaf). Composites live in
pkg/bt (Sequence, Selector, ReactiveSelector, Parallel, decorators) and
pkg/fsm (Machine).

# Usage

	patrol := bt.MustSequence("patrol",
		leaf.Action("walk", walk),
		leaf.Wait("look-around", 3),
	)
	guard := fsm.New("guard").
		Initial("patrol").
		State("patrol", patrol, fsm.Table{Success: fsm.Stay(), Failure: fsm.GoNow("alert")}).
		State("alert", alert, fsm.Always(fsm.GoTo("patrol"))).
		MustBuild()

	tree, err := stackbt.New(guard, stackbt.WithLogger(logger))
	if err != nil {
		log.Fatal(err)
	}
	for range frames {
		res, err := tree.Tick(ctx, world)
		...
	}

# Semantics

  - A completed tree restarts from its root on the next tick; WithLatch makes it a no-op until Reset.
  - Reset aborts the live frames innermost first, so leaves can release what they hold.
  - Configuration errors (missing transition, empty composite, cyclic tree) are fatal to the instance.
*/
package stackbt
