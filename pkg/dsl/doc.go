/*
Package dsl loads declarative tree definitions (YAML) and compiles them into
domain.Node graphs.

Composite and decorator types are built in; any other type is looked up in a
registry.Registry of leaf kinds. Conditions are expr-lang expressions
evaluated against the world (map worlds expose their keys at the top level,
plus "world" and "tick").

Example:

	name: guard
	root:
	  type: state_machine
	  name: guard
	  initial: patrol
	  states:
	    - key: patrol
	      on: {success: stay, failure: "now alert"}
	      node:
	        type: sequence
	        name: patrol
	        children:
	          - {type: condition, name: calm, params: {if: "!enemy_visible"}}
	          - {type: wait, name: look-around, params: {ticks: 2}}
	    - key: alert
	      on: {success: "goto patrol", failure: fail}
	      node: {type: set, name: raise-alarm, params: {key: alarm, value: true}}

Decisions are "stay", "goto <state>", "now <state>", "push <state>", "pop",
"succeed", "fail" and "propagate". Errors are reported together as a *schema.AggregateError whose
keys are paths into the document (root.states[1].node.params.ticks).
*/
package dsl
