/*
Package ports defines the driven ports (interfaces) of a tree instance.

These interfaces decouple the tick driver from where its introspection data
goes, so a host can publish snapshots to memory, Redis or anything else.

# Key Interfaces

  - SnapshotPublisher: receives a domain.Snapshot after every tick.
  - SnapshotStore: a publisher that can also serve snapshots back (debug tools, the CLI).
*/
package ports
