// Package registry maps leaf kinds used in declarative trees to Go factories.
//
// Hosts register their own actions and conditions; Builtins adds a small set
// of kinds that operate on map[string]any worlds, enough for the CLI to run
// demo trees without host code.
package registry
