package ports

import "errors"

// Standard application-level errors.
// Adapters and the aggregator wrap underlying failures with these sentinels
// so callers can branch on the error class rather than its wording.
var (
	// Validation errors: rejected before any state mutation, never retried.
	ErrValidation        = errors.New("invalid request parameters or format")
	ErrEmptyTradeSet     = errors.New("aggregation requires at least one trade")
	ErrMixedPositionKeys = errors.New("trades span more than one ticker/platform/region")

	// Consistency errors: indicate a caller or data bug. The enclosing
	// transaction is aborted and nothing is persisted.
	ErrInconsistentAggregate = errors.New("trade is not part of the position aggregate")

	// Lookup errors.
	ErrNotFound = errors.New("resource not found")

	// Storage errors: propagated to the caller; no implicit retry.
	ErrDBConnection = errors.New("database connection error")
	ErrQueryFailed  = errors.New("database query failed")
	ErrTxFailed     = errors.New("database transaction failed")
)
