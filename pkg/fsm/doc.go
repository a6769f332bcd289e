// Package fsm provides the state machine node: a finite set of keyed states,
// each owning a child node and a transition rule applied to that child's
// result on every tick.
//
// A machine is declared with a Builder and validated by Build:
//
//	m, err := fsm.New("guard").
//		Initial("patrol").
//		State("patrol", patrol, fsm.Table{Success: fsm.GoNow("chase"), Failure: fsm.Stay()}).
//		State("chase", chase, fsm.Table{Success: fsm.Propagate(), Failure: fsm.GoTo("patrol")}).
//		Build()
//
// Rules are consulted for Pending results too, so a state can be left while
// its child is still running; the child is aborted first. A finished result
// the rule does not cover is a configuration error, never an implicit Stay.
// A Table's Pending entry defaults to Stay unless WithStrictTables is set.
//
// Push and Pop turn a machine into a pushdown automaton: Push suspends the
// active state with its child frames and enters another, Pop resumes the
// suspended one where it left off.
package fsm
