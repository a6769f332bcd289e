/*
Package session manages many tree instances keyed by ID, for hosts that tick
one tree per entity (agents, NPCs, jobs) from several goroutines.

A stackbt.Tree must not be ticked concurrently. The Manager creates trees on
first use and serializes every operation on the same ID, while different IDs
proceed in parallel.
*/
package session
