// Package promocode provides the promo code allocation workflow action.
package promocode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/journeyd/journeyd/pkg/models"
	"github.com/journeyd/journeyd/pkg/persistence"
	"github.com/journeyd/journeyd/pkg/protocol"
)

var (
	// ErrBatchIDRequired is returned when the action has no batch configured.
	ErrBatchIDRequired = errors.New("promo code batch ID is required")
	// ErrCodeTypeInvalid is returned for an unknown selection policy.
	ErrCodeTypeInvalid = errors.New("invalid promo code selection policy")
	// ErrSpecificCodeRequired is returned for the specific policy with no code.
	ErrSpecificCodeRequired = errors.New("specific code is required for the specific policy")
	// ErrBatchInactive is returned when the batch is disabled.
	ErrBatchInactive = errors.New("promo code batch is not active")
	// ErrBatchOutsideWindow is returned when now falls outside the batch's
	// validity window.
	ErrBatchOutsideWindow = errors.New("promo code batch is outside its validity window")
	// ErrNoCodesAvailable is returned when the batch has no unused codes.
	ErrNoCodesAvailable = errors.New("no unused promo codes available in batch")
	// ErrSpecificCodeUsed is returned when the requested specific code was
	// already allocated.
	ErrSpecificCodeUsed = errors.New("specific promo code is already used")
)

// Action allocates one code from a batch and exposes it to later steps under
// the configured output variable.
type Action struct {
	ID             string
	BatchID        string
	CodeType       models.PromoSelectionPolicy
	SpecificCode   string
	OutputVariable string

	promoCodes persistence.PromoCodeRepository
	now        func() time.Time
	pick       func(n int) int
}

// NewAction creates a promo code action from configuration.
func NewAction(config map[string]any, promoCodes persistence.PromoCodeRepository) (*Action, error) {
	actionID, _ := config["id"].(string)

	batchID, _ := config["batch_id"].(string)
	if batchID == "" {
		return nil, fmt.Errorf("missing 'batch_id' in configuration: %w", ErrBatchIDRequired)
	}

	codeType, _ := config["code_type"].(string)
	if codeType == "" {
		codeType = string(models.PromoSelectRandom)
	}

	specificCode, _ := config["code"].(string)

	switch models.PromoSelectionPolicy(codeType) {
	case models.PromoSelectRandom, models.PromoSelectSequential:
	case models.PromoSelectSpecific:
		if specificCode == "" {
			return nil, ErrSpecificCodeRequired
		}
	default:
		return nil, fmt.Errorf("unknown policy %q: %w", codeType, ErrCodeTypeInvalid)
	}

	outputVariable, _ := config["output_variable"].(string)
	if outputVariable == "" {
		outputVariable = "promoCode"
	}

	return &Action{
		ID:             actionID,
		BatchID:        batchID,
		CodeType:       models.PromoSelectionPolicy(codeType),
		SpecificCode:   specificCode,
		OutputVariable: outputVariable,
		promoCodes:     promoCodes,
		now:            time.Now,
		pick:           rand.Intn,
	}, nil
}

// Execute validates the batch, selects a code by policy and marks it used.
func (a *Action) Execute(
	ctx context.Context,
	executionCtx models.ExecutionContext,
	logger *slog.Logger,
) (map[string]any, error) {
	logger = logger.With("module", "promo_code_action")
	logger.InfoContext(ctx, "Executing promo code action",
		"batch_id", a.BatchID, "code_type", a.CodeType)

	batch, err := a.promoCodes.GetBatch(ctx, executionCtx.OrganizationID, a.BatchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load promo code batch: %w", err)
	}

	if !batch.Active {
		return nil, fmt.Errorf("batch %s: %w", batch.ID, ErrBatchInactive)
	}

	if !batch.WithinWindow(a.now()) {
		return nil, fmt.Errorf("batch %s: %w", batch.ID, ErrBatchOutsideWindow)
	}

	code, err := a.selectCode(ctx)
	if err != nil {
		return nil, err
	}

	err = a.promoCodes.MarkCodeUsed(ctx, code.ID, executionCtx.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate promo code: %w", err)
	}

	logger.InfoContext(ctx, "Promo code allocated", "code", code.Code, "batch_id", batch.ID)

	return map[string]any{
		"code":     code.Code,
		"batch_id": batch.ID,
		protocol.ContextUpdatesKey: map[string]any{
			a.OutputVariable:                    code.Code,
			a.OutputVariable + "_batchId":       batch.ID,
			a.OutputVariable + "_discountType":  batch.DiscountType,
			a.OutputVariable + "_discountValue": batch.DiscountValue,
		},
	}, nil
}

// Validate checks the action configuration.
func (a *Action) Validate(_ context.Context) error {
	if a.BatchID == "" {
		return ErrBatchIDRequired
	}

	if a.CodeType == models.PromoSelectSpecific && a.SpecificCode == "" {
		return ErrSpecificCodeRequired
	}

	return nil
}

func (a *Action) selectCode(ctx context.Context) (*models.PromoCode, error) {
	if a.CodeType == models.PromoSelectSpecific {
		code, err := a.promoCodes.FindCode(ctx, a.BatchID, a.SpecificCode)
		if err != nil {
			return nil, fmt.Errorf("failed to find code %q: %w", a.SpecificCode, err)
		}

		if code.IsUsed {
			return nil, fmt.Errorf("code %q: %w", a.SpecificCode, ErrSpecificCodeUsed)
		}

		return code, nil
	}

	unused, err := a.promoCodes.UnusedCodes(ctx, a.BatchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unused codes: %w", err)
	}

	if len(unused) == 0 {
		return nil, fmt.Errorf("batch %s: %w", a.BatchID, ErrNoCodesAvailable)
	}

	// UnusedCodes is ordered by creation time ascending, so sequential
	// allocation is the first element.
	if a.CodeType == models.PromoSelectSequential {
		return unused[0], nil
	}

	return unused[a.pick(len(unused))], nil
}
