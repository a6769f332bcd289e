/*
Package bt implements the behavior-tree composites: Sequence, Selector,
ReactiveSelector, Parallel and a family of decorators.

Composites are immutable templates. Everything that changes while a composite
runs (the active child index, cached parallel results, timers) lives in the
frame the execution stack hands to Tick, so one composite value can appear in
many trees, or many times in one tree, and a completed composite entered again
always starts from its first child.

Children are evaluated in declared order; ties in any policy resolve to the
earliest-declared child.
*/
package bt
