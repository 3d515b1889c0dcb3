package common

import "errors"

// Domain error taxonomy. Handlers map these to HTTP statuses; services wrap
// them with context via fmt.Errorf("...: %w", Err...).
var (
	// ErrValidation marks malformed or out-of-range input. Never retried.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks an unknown id or missing quote.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyClosed marks a double-close of a position.
	ErrAlreadyClosed = errors.New("position already closed")

	// ErrStaleQuote marks a quote older than the stored one for its
	// (symbol, source) pair. Logged at the store boundary, never propagated.
	ErrStaleQuote = errors.New("stale quote")

	// ErrInsufficientData marks a rule evaluation skipped for lack of market
	// data. Not a match failure.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrDuplicateAlert marks a same-day re-trigger of an existing alert.
	// Treated as success by callers.
	ErrDuplicateAlert = errors.New("duplicate alert")

	// ErrInvalidCandidate marks a roll candidate that does not move the
	// expiration forward.
	ErrInvalidCandidate = errors.New("invalid roll candidate")

	// ErrNoCandidateFound marks a roll simulation with no contract satisfying
	// the band and liquidity gates. A business-level empty result.
	ErrNoCandidateFound = errors.New("no roll candidate found")
)
