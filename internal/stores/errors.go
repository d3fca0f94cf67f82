package stores

import "errors"

var (
	// ErrNoActiveAccount is returned by operations that require an
	// authenticated session when none exists. The ledger is never reached.
	ErrNoActiveAccount = errors.New("no active account")

	// ErrCallInFlight is returned when an identical mutating ledger call is
	// already outstanding for the same entity and account.
	ErrCallInFlight = errors.New("identical call already in flight")
)
