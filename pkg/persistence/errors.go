// Package persistence provides standardized error types for persistence
// operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrWorkflowNotFound indicates a workflow was not found by the given identifier.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrExecutionNotFound indicates an execution was not found by the given identifier.
	ErrExecutionNotFound = errors.New("execution not found")

	// ErrStepNotFound indicates an execution step was not found.
	ErrStepNotFound = errors.New("execution step not found")

	// ErrPromoBatchNotFound indicates a promo code batch was not found for the organization.
	ErrPromoBatchNotFound = errors.New("promo code batch not found")

	// ErrPromoCodeNotFound indicates a promo code was not found in the batch.
	ErrPromoCodeNotFound = errors.New("promo code not found")

	// ErrPromoCodeAlreadyUsed indicates the selected promo code was already marked used.
	ErrPromoCodeAlreadyUsed = errors.New("promo code already used")
)

// WorkflowError wraps workflow-related errors with operation context.
type WorkflowError struct {
	Op         string // Operation being performed (e.g., "GetByID", "Save", "Delete")
	WorkflowID string
	Err        error
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("%s operation failed for workflow %s: %v", e.Op, e.WorkflowID, e.Err)
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

func (e *WorkflowError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewWorkflowError creates a new workflow error with context.
func NewWorkflowError(op, workflowID string, err error) *WorkflowError {
	return &WorkflowError{Op: op, WorkflowID: workflowID, Err: err}
}

// IsWorkflowNotFound checks if an error indicates a workflow was not found.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

// IsExecutionNotFound checks if an error indicates an execution was not found.
func IsExecutionNotFound(err error) bool {
	return errors.Is(err, ErrExecutionNotFound)
}

// IsPromoBatchNotFound checks if an error indicates a promo batch was not found.
func IsPromoBatchNotFound(err error) bool {
	return errors.Is(err, ErrPromoBatchNotFound)
}

// IsPromoCodeAlreadyUsed checks if an error indicates a promo code raced
// another allocation.
func IsPromoCodeAlreadyUsed(err error) bool {
	return errors.Is(err, ErrPromoCodeAlreadyUsed)
}
