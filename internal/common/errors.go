package common

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the service layer. Wrap with fmt.Errorf("...: %w")
// so callers can classify with errors.Is while keeping context in the message.
var (
	// ErrNotFound indicates an entity referenced by id (and owner) does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidOperation indicates a request that is well-formed but not
	// permitted in the current state (deleting a default portfolio, reducing a
	// holding that doesn't exist, duplicate watchlist coin).
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrUpstreamUnavailable indicates the market data provider could not be
	// reached. Valuation paths degrade instead of returning this; only the
	// direct market endpoints surface it.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// NotFoundf wraps ErrNotFound with a formatted message.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// InvalidOperationf wraps ErrInvalidOperation with a formatted message.
func InvalidOperationf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidOperation)...)
}
