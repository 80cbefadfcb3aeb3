package ledger

import "errors"

var (
	// ErrInvalidInput marks arguments rejected before any mutation: bad
	// amounts, unset prices, NaN fees, unknown sides or policies.
	ErrInvalidInput = errors.New("invalid input")

	// ErrIllegalState marks operations that would break a ledger invariant,
	// such as exiting with no open lot. The ledger is left unchanged.
	ErrIllegalState = errors.New("illegal state")
)
