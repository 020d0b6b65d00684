package promocode_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/journeyd/journeyd/pkg/actions/promocode"
	"github.com/journeyd/journeyd/pkg/models"
	"github.com/journeyd/journeyd/pkg/persistence"
	"github.com/journeyd/journeyd/pkg/persistence/file"
	"github.com/journeyd/journeyd/pkg/protocol"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func testExecutionContext() models.ExecutionContext {
	workflow := &models.Workflow{ID: "wf-1", OrganizationID: "org-1"}
	event := &models.Event{Category: "purchase"}

	return *models.NewExecutionContext("exec-1", workflow, event)
}

func seedBatch(t *testing.T, repo persistence.PromoCodeRepository, active bool, codes ...string) *models.PromoCodeBatch {
	t.Helper()

	batch := &models.PromoCodeBatch{
		ID:             "batch-1",
		OrganizationID: "org-1",
		Name:           "Summer Sale",
		DiscountType:   "percent",
		DiscountValue:  15,
		ValidFrom:      time.Now().Add(-time.Hour),
		ValidUntil:     time.Now().Add(time.Hour),
		Active:         active,
		CreatedAt:      time.Now(),
	}
	require.NoError(t, repo.SaveBatch(context.Background(), batch))

	for i, code := range codes {
		require.NoError(t, repo.SaveCode(context.Background(), &models.PromoCode{
			BatchID:   batch.ID,
			Code:      code,
			CreatedAt: time.Now().Add(time.Duration(i) * time.Second),
		}))
	}

	return batch
}

func TestNewAction_Validation(t *testing.T) {
	t.Parallel()

	repo := file.NewPersistence(t.TempDir()).PromoCodes()

	_, err := promocode.NewAction(map[string]any{}, repo)
	assert.ErrorIs(t, err, promocode.ErrBatchIDRequired)

	_, err = promocode.NewAction(map[string]any{
		"batch_id":  "batch-1",
		"code_type": "specific",
	}, repo)
	assert.ErrorIs(t, err, promocode.ErrSpecificCodeRequired)

	_, err = promocode.NewAction(map[string]any{
		"batch_id":  "batch-1",
		"code_type": "lucky_dip",
	}, repo)
	assert.ErrorIs(t, err, promocode.ErrCodeTypeInvalid)
}

func TestAction_Execute_SequentialPicksOldestUnused(t *testing.T) {
	t.Parallel()

	repo := file.NewPersistence(t.TempDir()).PromoCodes()
	seedBatch(t, repo, true, "FIRST", "SECOND", "THIRD")

	action, err := promocode.NewAction(map[string]any{
		"batch_id":        "batch-1",
		"code_type":       "sequential",
		"output_variable": "welcomeCode",
	}, repo)
	require.NoError(t, err)

	result, err := action.Execute(context.Background(), testExecutionContext(), testLogger())
	require.NoError(t, err)
	assert.Equal(t, "FIRST", result["code"])

	updates := result[protocol.ContextUpdatesKey].(map[string]any)
	assert.Equal(t, "FIRST", updates["welcomeCode"])
	assert.Equal(t, "batch-1", updates["welcomeCode_batchId"])
	assert.Equal(t, "percent", updates["welcomeCode_discountType"])
	assert.InEpsilon(t, 15.0, updates["welcomeCode_discountValue"], 0.001)

	// The allocation marked the code used and bumped the batch counter.
	batch, err := repo.GetBatch(context.Background(), "org-1", "batch-1")
	require.NoError(t, err)
	assert.Equal(t, 1, batch.UsedCount)

	code, err := repo.FindCode(context.Background(), "batch-1", "FIRST")
	require.NoError(t, err)
	assert.True(t, code.IsUsed)
	assert.Equal(t, "exec-1", code.UsedByExecution)
}

func TestAction_Execute_SpecificUsedCodeFails(t *testing.T) {
	t.Parallel()

	repo := file.NewPersistence(t.TempDir()).PromoCodes()
	seedBatch(t, repo, true, "VIP10")

	action, err := promocode.NewAction(map[string]any{
		"batch_id":  "batch-1",
		"code_type": "specific",
		"code":      "VIP10",
	}, repo)
	require.NoError(t, err)

	_, err = action.Execute(context.Background(), testExecutionContext(), testLogger())
	require.NoError(t, err)

	// A second allocation of the same code must fail explicitly, not fall
	// back to another code.
	_, err = action.Execute(context.Background(), testExecutionContext(), testLogger())
	assert.ErrorIs(t, err, promocode.ErrSpecificCodeUsed)
}

func TestAction_Execute_InactiveBatch(t *testing.T) {
	t.Parallel()

	repo := file.NewPersistence(t.TempDir()).PromoCodes()
	seedBatch(t, repo, false, "CODE1")

	action, err := promocode.NewAction(map[string]any{"batch_id": "batch-1"}, repo)
	require.NoError(t, err)

	_, err = action.Execute(context.Background(), testExecutionContext(), testLogger())
	assert.ErrorIs(t, err, promocode.ErrBatchInactive)
}

func TestAction_Execute_ExpiredWindow(t *testing.T) {
	t.Parallel()

	repo := file.NewPersistence(t.TempDir()).PromoCodes()

	batch := &models.PromoCodeBatch{
		ID:             "batch-1",
		OrganizationID: "org-1",
		Name:           "Expired",
		ValidFrom:      time.Now().Add(-48 * time.Hour),
		ValidUntil:     time.Now().Add(-24 * time.Hour),
		Active:         true,
	}
	require.NoError(t, repo.SaveBatch(context.Background(), batch))

	action, err := promocode.NewAction(map[string]any{"batch_id": "batch-1"}, repo)
	require.NoError(t, err)

	_, err = action.Execute(context.Background(), testExecutionContext(), testLogger())
	assert.ErrorIs(t, err, promocode.ErrBatchOutsideWindow)
}

func TestAction_Execute_EmptyBatch(t *testing.T) {
	t.Parallel()

	repo := file.NewPersistence(t.TempDir()).PromoCodes()
	seedBatch(t, repo, true)

	action, err := promocode.NewAction(map[string]any{"batch_id": "batch-1"}, repo)
	require.NoError(t, err)

	_, err = action.Execute(context.Background(), testExecutionContext(), testLogger())
	assert.ErrorIs(t, err, promocode.ErrNoCodesAvailable)
}
