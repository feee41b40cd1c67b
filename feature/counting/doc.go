// Package counting implements physical inventory counting sessions.
//
// A count session compares two views of the same stock:
//  1. Physical items: quantities counted by scanners on the floor.
//  2. Virtual items: the snapshot imported from the inventory system.
//
// Reconciling a session rebuilds its difference rows from scratch while
// preserving user work (confirmed flags, push responses, flagged serial
// numbers) recorded against rows that still exist.
//
// # Components
//
//   - Store: document-style persistence of the session aggregate, plus the
//     atomic scan counter.
//   - Importer: replaces the virtual snapshot from a CSV object or a source
//     database query.
//   - Service: orchestrates scans, reconcile/import jobs, confirmation and
//     submission.
//   - Handler: exposes the HTTP endpoints.
//   - Loader: registers the feature with the application.
//
// # HTTP Endpoints
//
//   - GET   /snapshots                        : list importable snapshot objects
//   - POST  /sessions                         : create a session
//   - GET   /sessions/:id                     : fetch the full aggregate
//   - POST  /sessions/:id/scan                : record a counted increment
//   - POST  /sessions/:id/reconcile           : rebuild difference rows
//   - POST  /sessions/:id/import              : import the virtual snapshot
//   - POST  /sessions/:id/submit              : finalize the session
//   - PATCH /sessions/:id/differences/:code   : confirm a difference row
//   - PATCH /sessions/:id/serials             : flag a serial number
package counting
