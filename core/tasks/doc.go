// Package tasks provides the in-process job facility used to run
// reconciliation and snapshot imports off the request path.
//
// Submit returns an opaque job handle immediately, the way an external queue
// would. Per-key single flight prevents overlapping runs against the same
// count session; a crashed job is recovered and reported as failed, and since
// jobs persist only on success, the previously saved state stays untouched.
package tasks
