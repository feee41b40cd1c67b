// Package adjustment pushes confirmed count differences to the inventory
// system as stock adjustments.
//
// A push creates one parent adjustment per session and one detail line per
// confirmed, non-zero difference row. Each row records the outcome of its
// detail call in the Response field, so a partially failed push can be
// audited and retried by hand.
//
// The feature is disabled unless an adjustment API endpoint is configured.
package adjustment
