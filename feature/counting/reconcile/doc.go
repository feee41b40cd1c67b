// Package reconcile computes the difference between a session's physical
// count and its virtual snapshot.
//
// The engine is pure: it takes the loaded aggregate and returns the new
// difference and serial collections without touching storage. Persistence
// happens exactly once, in the counting service, after a successful run, so
// a failed run leaves the previously saved state authoritative.
//
// Two invariants drive the design: user-entered annotations (the confirmed
// flag on difference rows, the to-do flag on serial rows) survive re-runs
// against changing source data, and a row whose recomputed difference is
// zero does not survive at all.
package reconcile
