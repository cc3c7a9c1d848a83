package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/drill-api/internal/api/shared"
	"github.com/phrazzld/drill-api/internal/service/auth"
	"github.com/phrazzld/drill-api/internal/service/review"
	"github.com/phrazzld/drill-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status
// codes based on the error type. This prevents leaking internal error
// types or messages to clients.
func MapErrorToStatusCode(err error) int {
	var cooldownErr *review.CooldownActiveError
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return http.StatusUnauthorized

	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, review.ErrItemNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists):
		return http.StatusConflict

	// The cooldown gate is an expected rejection, not a fault
	case errors.As(err, &cooldownErr):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, review.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Catalog exhausted
	case errors.Is(err, review.ErrNoReviewableItems):
		return http.StatusNotFound

	// Storage outages surface as unavailability, not server faults
	case errors.Is(err, store.ErrUnavailable):
		return http.StatusServiceUnavailable

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var cooldownErr *review.CooldownActiveError
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid refresh token"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, review.ErrItemNotFound):
		return "Item not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.As(err, &cooldownErr):
		return "Cooldown active"

	case errors.Is(err, review.ErrTimestampInFuture):
		return "Completion timestamp is in the future"

	case errors.Is(err, review.ErrTimestampTooOld):
		return "Completion timestamp is too old"

	case errors.Is(err, review.ErrInvalidDifficulty):
		return "Invalid difficulty"

	case errors.Is(err, review.ErrItemIDRequired):
		return "Item id is required"

	case errors.Is(err, review.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	case errors.Is(err, review.ErrNoReviewableItems):
		return "No reviewable items available"

	case errors.Is(err, store.ErrUnavailable):
		return "Service temporarily unavailable"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the mapped status and sanitized message for the
// given error. Cooldown rejections additionally carry the remaining
// seconds so clients can render a countdown from the error alone.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, logContext string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if logContext == "" {
		logContext = message
	}

	var cooldownErr *review.CooldownActiveError
	if errors.As(err, &cooldownErr) {
		remaining := cooldownErr.RemainingSeconds
		shared.RespondWithJSON(w, r, status, shared.ErrorResponse{
			Error:            message,
			Code:             status,
			TraceID:          shared.GetTraceID(r.Context()),
			RemainingSeconds: &remaining,
		})
		return
	}

	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
