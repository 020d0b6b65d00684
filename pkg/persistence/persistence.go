// Package persistence provides the data storage abstraction layer for
// workflows, executions and promo codes.
package persistence

import (
	"context"

	"github.com/journeyd/journeyd/pkg/models"
)

// Persistence aggregates the repositories backing the workflow engine.
type Persistence interface {
	Workflows() WorkflowRepository
	Executions() ExecutionRepository
	PromoCodes() PromoCodeRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// WorkflowRepository stores workflow definitions. Workflows are read-only
// during execution; only the management API writes them.
type WorkflowRepository interface {
	GetAll(ctx context.Context) ([]*models.Workflow, error)
	GetByID(ctx context.Context, id string) (*models.Workflow, error)

	// ActiveByCategory returns the active workflows of an organization
	// whose trigger event type equals category. These are the candidates
	// for full trigger matching.
	ActiveByCategory(ctx context.Context, organizationID, category string) ([]*models.Workflow, error)

	Save(ctx context.Context, workflow *models.Workflow) error
	Delete(ctx context.Context, id string) error
}

// ExecutionRepository stores execution and step audit records. The runner
// follows a create-then-update pattern: each execution row is created once
// with status running and finalized once; each step row is created once
// before its action runs and updated once to a terminal status.
type ExecutionRepository interface {
	CreateExecution(ctx context.Context, execution *models.WorkflowExecution) error
	UpdateExecution(ctx context.Context, execution *models.WorkflowExecution) error
	GetExecution(ctx context.Context, id string) (*models.WorkflowExecution, error)
	ListByWorkflow(ctx context.Context, workflowID string) ([]*models.WorkflowExecution, error)

	CreateStep(ctx context.Context, step *models.ExecutionStep) error
	UpdateStep(ctx context.Context, step *models.ExecutionStep) error
	StepsByExecution(ctx context.Context, executionID string) ([]*models.ExecutionStep, error)
}

// PromoCodeRepository stores promo code batches and codes. MarkCodeUsed is
// the only mutation the runner performs; its read-modify-write atomicity is
// delegated to the underlying store.
type PromoCodeRepository interface {
	GetBatch(ctx context.Context, organizationID, batchID string) (*models.PromoCodeBatch, error)
	SaveBatch(ctx context.Context, batch *models.PromoCodeBatch) error
	SaveCode(ctx context.Context, code *models.PromoCode) error

	// UnusedCodes returns the batch's unused codes ordered by creation
	// time ascending.
	UnusedCodes(ctx context.Context, batchID string) ([]*models.PromoCode, error)
	FindCode(ctx context.Context, batchID, code string) (*models.PromoCode, error)

	// MarkCodeUsed marks the code used by the given execution and
	// increments the batch's used counter. Returns
	// ErrPromoCodeAlreadyUsed if the code was used in the meantime.
	MarkCodeUsed(ctx context.Context, codeID, executionID string) error
}
