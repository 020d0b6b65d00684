package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/journeyd/journeyd/pkg/models"
	"github.com/journeyd/journeyd/pkg/persistence"
)

// PromoCodeRepository handles promo code batches and codes.
type PromoCodeRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPromoCodeRepository creates a new promo code repository.
func NewPromoCodeRepository(db *sql.DB, logger *slog.Logger) *PromoCodeRepository {
	return &PromoCodeRepository{db: db, logger: logger}
}

// GetBatch returns the organization's batch or persistence.ErrPromoBatchNotFound.
func (r *PromoCodeRepository) GetBatch(ctx context.Context, organizationID, batchID string) (*models.PromoCodeBatch, error) {
	query := `
		SELECT id, organization_id, name, discount_type, discount_value,
			valid_from, valid_until, active, used_count, created_at
		FROM promo_code_batches
		WHERE id = $1 AND organization_id = $2
	`

	var batch models.PromoCodeBatch

	err := r.db.QueryRowContext(ctx, query, batchID, organizationID).Scan(
		&batch.ID,
		&batch.OrganizationID,
		&batch.Name,
		&batch.DiscountType,
		&batch.DiscountValue,
		&batch.ValidFrom,
		&batch.ValidUntil,
		&batch.Active,
		&batch.UsedCount,
		&batch.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrPromoBatchNotFound
		}

		return nil, fmt.Errorf("failed to scan promo batch: %w", err)
	}

	return &batch, nil
}

// SaveBatch upserts the batch, assigning an ID when missing.
func (r *PromoCodeRepository) SaveBatch(ctx context.Context, batch *models.PromoCodeBatch) error {
	if batch.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate batch ID: %w", err)
		}

		batch.ID = id.String()
	}

	if batch.CreatedAt.IsZero() {
		batch.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO promo_code_batches (id, organization_id, name,
			discount_type, discount_value, valid_from, valid_until, active, used_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			discount_type = EXCLUDED.discount_type,
			discount_value = EXCLUDED.discount_value,
			valid_from = EXCLUDED.valid_from,
			valid_until = EXCLUDED.valid_until,
			active = EXCLUDED.active
	`

	_, err := r.db.ExecContext(ctx, query,
		batch.ID,
		batch.OrganizationID,
		batch.Name,
		batch.DiscountType,
		batch.DiscountValue,
		batch.ValidFrom,
		batch.ValidUntil,
		batch.Active,
		batch.UsedCount,
		batch.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save promo batch: %w", err)
	}

	return nil
}

// SaveCode inserts the code, assigning an ID when missing.
func (r *PromoCodeRepository) SaveCode(ctx context.Context, code *models.PromoCode) error {
	if code.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate code ID: %w", err)
		}

		code.ID = id.String()
	}

	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO promo_codes (id, batch_id, code, is_used, used_at,
			used_by_execution, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		code.ID,
		code.BatchID,
		code.Code,
		code.IsUsed,
		code.UsedAt,
		code.UsedByExecution,
		code.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save promo code: %w", err)
	}

	return nil
}

// UnusedCodes returns the batch's unused codes ordered by creation time
// ascending.
func (r *PromoCodeRepository) UnusedCodes(ctx context.Context, batchID string) ([]*models.PromoCode, error) {
	query := `
		SELECT id, batch_id, code, is_used, used_at, used_by_execution, created_at
		FROM promo_codes
		WHERE batch_id = $1 AND is_used = FALSE
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query unused codes: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	codes := make([]*models.PromoCode, 0)

	for rows.Next() {
		code, err := scanPromoCode(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan promo code: %w", err)
		}

		codes = append(codes, code)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating promo codes: %w", err)
	}

	return codes, nil
}

// FindCode returns the batch's code by its literal value or
// persistence.ErrPromoCodeNotFound.
func (r *PromoCodeRepository) FindCode(ctx context.Context, batchID, codeValue string) (*models.PromoCode, error) {
	query := `
		SELECT id, batch_id, code, is_used, used_at, used_by_execution, created_at
		FROM promo_codes
		WHERE batch_id = $1 AND code = $2
	`

	code, err := scanPromoCode(r.db.QueryRowContext(ctx, query, batchID, codeValue))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrPromoCodeNotFound
		}

		return nil, fmt.Errorf("failed to scan promo code: %w", err)
	}

	return code, nil
}

// MarkCodeUsed atomically claims the code for the execution. The conditional
// update makes concurrent claims race-safe: the loser sees zero affected
// rows and gets persistence.ErrPromoCodeAlreadyUsed.
func (r *PromoCodeRepository) MarkCodeUsed(ctx context.Context, codeID, executionID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		_ = tx.Rollback()
	}()

	claim := `
		UPDATE promo_codes SET
			is_used = TRUE,
			used_at = NOW(),
			used_by_execution = $2
		WHERE id = $1 AND is_used = FALSE
	`

	result, err := tx.ExecContext(ctx, claim, codeID, executionID)
	if err != nil {
		return fmt.Errorf("failed to mark code used: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return persistence.ErrPromoCodeAlreadyUsed
	}

	increment := `
		UPDATE promo_code_batches SET used_count = used_count + 1
		WHERE id = (SELECT batch_id FROM promo_codes WHERE id = $1)
	`

	_, err = tx.ExecContext(ctx, increment, codeID)
	if err != nil {
		return fmt.Errorf("failed to increment batch counter: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit code claim: %w", err)
	}

	return nil
}

func scanPromoCode(scanner interface {
	Scan(dest ...any) error
}) (*models.PromoCode, error) {
	var code models.PromoCode

	err := scanner.Scan(
		&code.ID,
		&code.BatchID,
		&code.Code,
		&code.IsUsed,
		&code.UsedAt,
		&code.UsedByExecution,
		&code.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &code, nil
}
