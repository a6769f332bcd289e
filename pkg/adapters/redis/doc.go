// Package redis publishes tree snapshots to Redis so that running trees can
// be inspected from another process (see `stackbt inspect`).
package redis
