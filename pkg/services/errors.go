// Package services provides the business logic layer between the HTTP API
// and persistence.
package services

import (
	"errors"
	"fmt"
)

// Validation errors map to 400 responses at the API layer.
var (
	ErrInvalidRequest       = errors.New("invalid request")
	ErrWorkflowNil          = errors.New("workflow cannot be nil")
	ErrTriggerRequired      = errors.New("workflow trigger event type is required")
	ErrActionTypeUnknown    = errors.New("unknown action type")
	ErrInvalidStatus        = errors.New("invalid workflow status")
	ErrOrganizationRequired = errors.New("organization ID is required")
)

// ServiceError wraps service-level errors with operation context.
type ServiceError struct {
	Op      string
	Code    string
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should
// return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrWorkflowNil) ||
		errors.Is(err, ErrTriggerRequired) ||
		errors.Is(err, ErrActionTypeUnknown) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrOrganizationRequired)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
