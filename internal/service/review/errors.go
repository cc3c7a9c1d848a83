package review

import (
	"errors"
	"fmt"
)

// Common error types for the review service.
var (
	// ErrValidation is the root of all input-validation failures.
	// Validation failures abort before any mutation.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidDifficulty indicates a rating outside easy/medium/hard.
	ErrInvalidDifficulty = fmt.Errorf("%w: invalid difficulty", ErrValidation)

	// ErrItemIDRequired indicates a missing item id.
	ErrItemIDRequired = fmt.Errorf("%w: item id is required", ErrValidation)

	// ErrTimestampInFuture indicates a batch completion time ahead of the
	// server clock beyond tolerance.
	ErrTimestampInFuture = fmt.Errorf("%w: completion timestamp is in the future", ErrValidation)

	// ErrTimestampTooOld indicates a batch completion time too far in the
	// past to be a live completion.
	ErrTimestampTooOld = fmt.Errorf("%w: completion timestamp is too old", ErrValidation)

	// ErrItemNotFound indicates the item does not exist in the catalog.
	ErrItemNotFound = errors.New("item not found")

	// ErrNoActiveSession indicates an operation that requires a session
	// was called before one was started.
	ErrNoActiveSession = errors.New("no active session")

	// ErrNoReviewableItems indicates the catalog has no items with
	// reviewable content at all.
	ErrNoReviewableItems = errors.New("no reviewable items in catalog")
)

// CooldownActiveError is the expected, non-fault outcome of asking for
// a new batch while the inter-batch cooldown is still running. It
// always carries enough data for the caller to render a countdown.
type CooldownActiveError struct {
	RemainingSeconds int
}

// Error implements the error interface for CooldownActiveError.
func (e *CooldownActiveError) Error() string {
	return fmt.Sprintf("cooldown active: %d seconds remaining", e.RemainingSeconds)
}

// ServiceError wraps errors from the review service with additional
// context, allowing consumers to differentiate error sources using
// errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "serve_next").
	Operation string
	// Message is a human-readable description of the error.
	Message string
	// Err is the underlying error that caused the failure.
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}
