package model

import (
	"errors"
	"fmt"
)

// ErrEmptyWorkload is returned when a workload contains no usable jobs.
var ErrEmptyWorkload = errors.New("workload contains no jobs")

// ErrorCode represents a structured API error code.
type ErrorCode string

const (
	ErrValidation  ErrorCode = "VALIDATION_ERROR"
	ErrNotFound    ErrorCode = "NOT_FOUND"
	ErrInternal    ErrorCode = "INTERNAL_ERROR"
	ErrUnavailable ErrorCode = "UNAVAILABLE"
)

// APIError is a structured error returned by the HTTP API.
type APIError struct {
	Code    ErrorCode    `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// FieldError describes a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// NewValidationError creates an APIError with validation details.
func NewValidationError(msg string, details ...FieldError) *APIError {
	return &APIError{Code: ErrValidation, Message: msg, Details: details}
}

// NewNotFoundError creates a NOT_FOUND APIError.
func NewNotFoundError(resource, id string) *APIError {
	return &APIError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s '%s' not found", resource, id),
	}
}

// InvalidTransitionError is returned when a state transition is invalid.
type InvalidTransitionError struct {
	Entity string
	ID     string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid %s state transition: %s → %s (entity %s)", e.Entity, e.From, e.To, e.ID)
}

// InvariantError reports a broken scheduling invariant. It signals a bug in a
// policy or the engine, never bad input, and aborts the run.
type InvariantError struct {
	Policy PolicyKind
	Clock  int
	Job    string
	Reason string
}

func (e *InvariantError) Error() string {
	if e.Job == "" {
		return fmt.Sprintf("scheduling invariant violated (policy %s, t=%d): %s", e.Policy, e.Clock, e.Reason)
	}
	return fmt.Sprintf("scheduling invariant violated (policy %s, t=%d, job %s): %s", e.Policy, e.Clock, e.Job, e.Reason)
}
