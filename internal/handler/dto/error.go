package dto

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mtlprog/floatingagent/internal/domain"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error string `json:"error"`
	// Details carries the full error chain on 500 responses.
	Details string `json:"details,omitempty"`
}

// NewErrorResponse creates a new error response.
func NewErrorResponse(message string) ErrorResponse {
	return ErrorResponse{Error: message}
}

// MapDomainError maps domain errors to an HTTP status and response body.
func MapDomainError(err error) (int, ErrorResponse) {
	message := err.Error()

	var stepErr *domain.StepError
	switch {
	// Validation errors
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, NewErrorResponse(message)

	// Relay errors
	case errors.Is(err, domain.ErrInvalidEnvelope), errors.Is(err, domain.ErrUnknownMessage):
		return http.StatusBadRequest, NewErrorResponse(message)
	case errors.Is(err, domain.ErrNotRelayable):
		return http.StatusUnprocessableEntity, NewErrorResponse(message)

	// Journal errors
	case errors.Is(err, domain.ErrRunNotFound):
		return http.StatusNotFound, NewErrorResponse(message)
	case errors.Is(err, domain.ErrJournalDisabled):
		return http.StatusServiceUnavailable, NewErrorResponse(message)

	// Platform errors surface as 500 with the failing step in the message
	case errors.As(err, &stepErr):
		return http.StatusInternalServerError, ErrorResponse{
			Error:   message,
			Details: errorChain(err),
		}

	// Default: internal server error
	default:
		slog.Error("unmapped domain error returned to client",
			"error", err,
			"error_type", fmt.Sprintf("%T", err),
		)
		return http.StatusInternalServerError, ErrorResponse{
			Error:   "Internal server error",
			Details: errorChain(err),
		}
	}
}

// errorChain renders every wrapped error type and message, outermost first.
func errorChain(err error) string {
	var chain string
	for e := err; e != nil; e = errors.Unwrap(e) {
		if chain != "" {
			chain += "\n"
		}
		chain += fmt.Sprintf("%T: %s", e, e.Error())
	}
	return chain
}
