// Package models defines the core domain models for trigger-driven marketing workflows.
package models

import "time"

// WorkflowStatus represents the lifecycle state of a workflow.
type WorkflowStatus string

const (
	WorkflowStatusActive   WorkflowStatus = "active"   // Executable for matching events
	WorkflowStatusInactive WorkflowStatus = "inactive" // Paused, never executed
)

// Workflow represents a trigger-driven automation: a declarative trigger
// gating an ordered list of actions. Workflows are read-only during
// execution; only the management API mutates them.
type Workflow struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"            validate:"required,min=3"`
	Description    string         `json:"description"`
	Status         WorkflowStatus `json:"status"          validate:"required"`
	OrganizationID string         `json:"organization_id" validate:"required"`
	Trigger        TriggerConfig  `json:"trigger"         validate:"required"`
	Actions        []*ActionItem  `json:"actions"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      *time.Time     `json:"deleted_at,omitempty"`
}

// IsActive reports whether the workflow should execute for matching events.
func (w *Workflow) IsActive() bool {
	return w.Status == WorkflowStatusActive && w.DeletedAt == nil
}
