package counting

import "errors"

// Sentinel errors returned by the counting service. Handlers map these to
// HTTP status codes; callers test them with errors.Is.
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNotFound          = errors.New("count session not found")
	ErrConcurrency       = errors.New("concurrent update conflict")
	ErrSourceUnavailable = errors.New("import source unavailable")
	ErrMapping           = errors.New("import column mapping invalid")
	ErrReconciliation    = errors.New("reconciliation failed")
)
