package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/studypace/srs-api/internal/api/shared"
	"github.com/studypace/srs-api/internal/domain"
	"github.com/studypace/srs-api/internal/service/review"
	"github.com/studypace/srs-api/internal/session"
	"github.com/studypace/srs-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Bad request errors
	case errors.Is(err, review.ErrInvalidReview),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Not found errors
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound

	// Session state conflicts
	case errors.Is(err, session.ErrEmptyQueue),
		errors.Is(err, session.ErrNotPresenting),
		errors.Is(err, session.ErrTerminal):
		return http.StatusConflict

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message based
// on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, domain.ErrInvalidQuality):
		return "Quality rating must be between 0 and 5"

	case errors.Is(err, domain.ErrInvalidResponseTime):
		return "Response time cannot be negative"

	case errors.Is(err, domain.ErrInvalidConfidence):
		return "Confidence level must be between 0 and 1"

	case errors.Is(err, domain.ErrInvalidHints):
		return "Hints used cannot be negative"

	case errors.Is(err, review.ErrInvalidReview):
		return "Invalid review submission"

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid identifier"

	case errors.Is(err, domain.ErrValidation):
		return "Validation error"

	case errors.Is(err, session.ErrSessionNotFound):
		return "Session not found"

	case errors.Is(err, session.ErrEmptyQueue):
		return "No cards due for review"

	case errors.Is(err, session.ErrNotPresenting),
		errors.Is(err, session.ErrTerminal):
		return "Session has already ended"

	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	default:
		var svcErr *review.ServiceError
		if errors.As(err, &svcErr) {
			switch svcErr.Operation {
			case "submit_review":
				return "Failed to submit review"
			case "get_due_cards":
				return "Failed to get due cards"
			case "start_session":
				return "Failed to start session"
			}
		}
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the appropriate error response for err: the status
// code comes from MapErrorToStatusCode and the body carries only the
// sanitized message. A non-empty defaultMsg overrides the sanitized message
// for internal server errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	statusCode := MapErrorToStatusCode(err)
	safeMessage := GetSafeErrorMessage(err)

	if statusCode == http.StatusInternalServerError && defaultMsg != "" {
		safeMessage = defaultMsg
	}

	shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
}

// SanitizeValidationError converts a validator error into a user-friendly
// message without echoing back submitted values.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example: "Key: 'SubmitReviewRequest.Quality' Error:Field validation
		// for 'Quality' failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gte":
		return "value too small"
	case "max", "lte":
		return "value too large"
	case "uuid":
		return "invalid identifier format"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
