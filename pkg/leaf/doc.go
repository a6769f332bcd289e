// Package leaf provides helpers for authoring leaf nodes from plain functions.
//
// Leaves are where side effects on the host world happen. Anything a leaf
// needs across ticks is returned as the next value of its TickFunc and handed
// back on resumption; leaves themselves are reusable templates.
package leaf
