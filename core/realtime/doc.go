// Package realtime implements the live count view: a WebSocket hub that
// pushes refreshed physical-item sets and job lifecycle events to scanner
// clients watching a count session.
//
// Delivery is fire-and-forget. The hub is a side channel, never part of the
// transactional contract of the operations that feed it.
package realtime
