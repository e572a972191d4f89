package dailydiesel

import "errors"

// Error taxonomy of the run-cycle. Callers classify failures with errors.Is;
// the concrete cause is carried by wrapping.
var (
	// ErrSourceUnavailable marks network or parse failures of a price provider.
	ErrSourceUnavailable = errors.New("price source unavailable")

	// ErrConfiguration marks a missing or invalid required setting, such as an
	// absent API key or an unknown price unit.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrPersistence marks ledger or heartbeat I/O failures.
	ErrPersistence = errors.New("persistence failure")

	// ErrNotify marks a delivery failure of the weekly notification. It never
	// rolls back an already persisted ledger.
	ErrNotify = errors.New("notification failure")
)
