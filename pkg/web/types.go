// Package web provides the HTTP handlers and request/response types for the
// workflow management and event ingestion API.
package web

import (
	"time"

	"github.com/journeyd/journeyd/pkg/models"
)

// CreateWorkflowRequest represents the request body for creating a new workflow.
type CreateWorkflowRequest struct {
	Name           string                `json:"name"            validate:"required,min=3"`
	Description    string                `json:"description"`
	OrganizationID string                `json:"organization_id" validate:"required"`
	Status         models.WorkflowStatus `json:"status,omitempty"`
	Trigger        models.TriggerConfig  `json:"trigger"         validate:"required"`
	Actions        []*models.ActionItem  `json:"actions"`
	Metadata       map[string]any        `json:"metadata,omitempty"`
}

// UpdateWorkflowRequest represents the request body for updating an existing
// workflow. All fields are optional to support partial updates.
type UpdateWorkflowRequest struct {
	Name        *string                `json:"name,omitempty"        validate:"omitempty,min=3"`
	Description *string                `json:"description,omitempty"`
	Status      *models.WorkflowStatus `json:"status,omitempty"`
	Trigger     *models.TriggerConfig  `json:"trigger,omitempty"`
	Actions     []*models.ActionItem   `json:"actions,omitempty"`
	Metadata    map[string]any         `json:"metadata,omitempty"`
}

// IngestEventRequest represents an inbound marketing event.
type IngestEventRequest struct {
	OrganizationID string         `json:"organization_id" validate:"required"`
	Category       string         `json:"category"        validate:"required"`
	Name           string         `json:"name,omitempty"`
	ItemName       string         `json:"item_name,omitempty"`
	ItemCategory   string         `json:"item_category,omitempty"`
	ItemID         string         `json:"item_id,omitempty"`
	Value          *float64       `json:"value,omitempty"`
	UserID         string         `json:"user_id,omitempty"`
	Data           map[string]any `json:"data,omitempty"`
	OccurredAt     *time.Time     `json:"occurred_at,omitempty"`
}

// EventAcceptedResponse acknowledges an accepted event. Processing is
// asynchronous; the ID lets callers correlate resulting executions.
type EventAcceptedResponse struct {
	EventID string `json:"event_id"`
	Status  string `json:"status"`
}

// CreatePromoBatchRequest represents the request body for creating a promo
// code batch, optionally seeded with initial codes.
type CreatePromoBatchRequest struct {
	OrganizationID string    `json:"organization_id" validate:"required"`
	Name           string    `json:"name"            validate:"required"`
	DiscountType   string    `json:"discount_type"`
	DiscountValue  float64   `json:"discount_value"`
	ValidFrom      time.Time `json:"valid_from"      validate:"required"`
	ValidUntil     time.Time `json:"valid_until"     validate:"required"`
	Active         bool      `json:"active"`
	Codes          []string  `json:"codes,omitempty" validate:"omitempty,dive,required"`
}

// AddPromoCodesRequest represents the request body for adding codes to an
// existing batch.
type AddPromoCodesRequest struct {
	OrganizationID string   `json:"organization_id" validate:"required"`
	Codes          []string `json:"codes"           validate:"required,min=1,dive,required"`
}

// ActionTypeResponse describes one registered action type.
type ActionTypeResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Schema      map[string]any `json:"schema"`
}
