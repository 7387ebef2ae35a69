package errs

import "errors"

// Common sentinel errors for cross-layer signaling.
var (
	// ErrInvalidCredentials covers both unknown usernames and wrong secrets
	// so callers cannot tell the two apart.
	ErrInvalidCredentials  = errors.New("invalid_credentials")
	ErrDuplicateUsername   = errors.New("duplicate_username")
	ErrNotFound            = errors.New("not_found")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInsufficientFunds   = errors.New("insufficient_funds")
	ErrMissingCounterparty = errors.New("missing_counterparty")
	// ErrStorageUnavailable wraps persistent-store failures; it is the only
	// error in the taxonomy a caller may safely retry.
	ErrStorageUnavailable = errors.New("storage_unavailable")
	// Fund purchase rules
	ErrUnknownFund  = errors.New("unknown_fund")
	ErrBelowMinimum = errors.New("below_minimum_investment")
)
