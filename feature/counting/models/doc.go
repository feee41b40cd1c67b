// Package models defines the count-session aggregate: the physically counted
// items, the imported virtual snapshot, and the difference rows the
// reconciliation engine derives from them.
package models
