// Package memory provides an in-process snapshot store, useful for tests and
// for hosts that inspect their trees without external infrastructure.
package memory
