/*
Package domain defines the execution protocol shared by every node.

A Node is ticked with a Frame that carries its private resumption data. Instead
of suspending a native call stack, a node that needs more time stores where it
left off in Frame.Data and yields Pending; the next tick hands the same Frame
back. Composites descend into children by returning Descend(child) and receive
the child's final Result in Frame.Child when it pops.
*/
package domain
