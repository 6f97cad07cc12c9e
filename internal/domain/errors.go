package domain

import (
	"errors"
	"fmt"
)

// Domain-specific errors for request validation and workflow failures.
var (
	// ErrValidation matches every ValidationError.
	ErrValidation = errors.New("validation failed")

	ErrMissingFields    = &ValidationError{Message: "Missing required fields"}
	ErrEmptySelection   = &ValidationError{Message: "No text content provided"}
	ErrNoKnowledgeBase  = &ValidationError{Message: "No knowledge base ID provided"}
	ErrInvalidAvatar    = &ValidationError{Message: "Avatar must be a base64 encoded image"}
	ErrUnusableName     = &ValidationError{Message: "Name must contain at least one letter or digit"}
	ErrMissingIdentity  = &ValidationError{Message: "Email and name are required"}
	ErrInvalidRunFilter = &ValidationError{Message: "Invalid workflow filter"}

	// Relay errors
	ErrUnknownMessage  = errors.New("unknown message type")
	ErrNotRelayable    = errors.New("message type is handled by the extension")
	ErrInvalidEnvelope = errors.New("invalid message envelope")

	// Journal errors
	ErrRunNotFound     = errors.New("workflow run not found")
	ErrJournalDisabled = errors.New("workflow journal is disabled")
)

// ValidationError is a request problem detected before any platform call.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is makes every ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// StepError reports the workflow step that failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// StatusCoder is implemented by errors that carry a downstream HTTP status.
type StatusCoder interface {
	HTTPStatus() int
}

// DownstreamStatus returns the downstream HTTP status carried by err, or 0.
func DownstreamStatus(err error) int {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.HTTPStatus()
	}
	return 0
}
