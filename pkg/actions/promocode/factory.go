package promocode

import (
	"context"

	"github.com/journeyd/journeyd/pkg/models"
	"github.com/journeyd/journeyd/pkg/persistence"
	"github.com/journeyd/journeyd/pkg/protocol"
)

// ActionFactory creates promo code actions.
type ActionFactory struct {
	promoCodes persistence.PromoCodeRepository
}

// NewActionFactory creates a factory bound to the promo code repository.
func NewActionFactory(promoCodes persistence.PromoCodeRepository) *ActionFactory {
	return &ActionFactory{promoCodes: promoCodes}
}

// Create creates a new promo code action from the given configuration.
func (f *ActionFactory) Create(_ context.Context, config map[string]any) (protocol.Action, error) {
	return NewAction(config, f.promoCodes)
}

// ID returns the unique identifier for the action.
func (f *ActionFactory) ID() string {
	return "promo_code"
}

// Name returns the name of the action.
func (f *ActionFactory) Name() string {
	return "Promo Code"
}

// Description returns a brief description of the action.
func (f *ActionFactory) Description() string {
	return "Allocates a discount code from a batch and exposes it to later steps."
}

// Schema returns the JSON schema for configuring this action.
func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"batch_id": map[string]any{
				"type":        "string",
				"description": "Promo code batch to allocate from.",
			},
			"code_type": map[string]any{
				"type":        "string",
				"description": "Selection policy within the batch.",
				"default":     string(models.PromoSelectRandom),
				"enum": []string{
					string(models.PromoSelectRandom),
					string(models.PromoSelectSequential),
					string(models.PromoSelectSpecific),
				},
			},
			"code": map[string]any{
				"type":        "string",
				"description": "Exact code to allocate when code_type is 'specific'.",
			},
			"output_variable": map[string]any{
				"type":        "string",
				"description": "Context variable name the allocated code is stored under.",
				"default":     "promoCode",
			},
		},
		"required":             []string{"batch_id"},
		"additionalProperties": false,
	}
}
