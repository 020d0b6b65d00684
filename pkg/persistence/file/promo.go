package file

import (
	"context"
	"errors"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/journeyd/journeyd/pkg/models"
	"github.com/journeyd/journeyd/pkg/persistence"
)

const (
	promoBatchesDir = "promo_batches"
	promoCodesDir   = "promo_codes"
)

// PromoCodeRepository stores promo batches and codes as JSON files. Codes
// are grouped per batch in a single file; MarkCodeUsed performs its
// read-modify-write under the persistence-wide mutex.
type PromoCodeRepository struct {
	persistence *Persistence
}

// GetBatch returns the batch if it exists and belongs to the organization.
func (r *PromoCodeRepository) GetBatch(_ context.Context, organizationID, batchID string) (*models.PromoCodeBatch, error) {
	r.persistence.mu.RLock()
	defer r.persistence.mu.RUnlock()

	var batch models.PromoCodeBatch

	err := r.persistence.readJSON(promoBatchesDir, batchID, &batch)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, persistence.ErrPromoBatchNotFound
		}

		return nil, err
	}

	if batch.OrganizationID != organizationID {
		return nil, persistence.ErrPromoBatchNotFound
	}

	return &batch, nil
}

// SaveBatch persists the batch.
func (r *PromoCodeRepository) SaveBatch(_ context.Context, batch *models.PromoCodeBatch) error {
	r.persistence.mu.Lock()
	defer r.persistence.mu.Unlock()

	if batch.CreatedAt.IsZero() {
		batch.CreatedAt = time.Now().UTC()
	}

	if batch.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}

		batch.ID = id.String()
	}

	return r.persistence.writeJSON(promoBatchesDir, batch.ID, batch)
}

// SaveCode appends or replaces a code in its batch's code file.
func (r *PromoCodeRepository) SaveCode(_ context.Context, code *models.PromoCode) error {
	r.persistence.mu.Lock()
	defer r.persistence.mu.Unlock()

	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now().UTC()
	}

	if code.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}

		code.ID = id.String()
	}

	codes, err := r.codesLocked(code.BatchID)
	if err != nil {
		return err
	}

	replaced := false

	for i, existing := range codes {
		if existing.ID == code.ID {
			codes[i] = code
			replaced = true

			break
		}
	}

	if !replaced {
		codes = append(codes, code)
	}

	return r.persistence.writeJSON(promoCodesDir, code.BatchID, codes)
}

// UnusedCodes returns the batch's unused codes ordered by creation time
// ascending.
func (r *PromoCodeRepository) UnusedCodes(_ context.Context, batchID string) ([]*models.PromoCode, error) {
	r.persistence.mu.RLock()
	defer r.persistence.mu.RUnlock()

	codes, err := r.codesLocked(batchID)
	if err != nil {
		return nil, err
	}

	var unused []*models.PromoCode

	for _, code := range codes {
		if !code.IsUsed {
			unused = append(unused, code)
		}
	}

	sort.Slice(unused, func(i, j int) bool {
		return unused[i].CreatedAt.Before(unused[j].CreatedAt)
	})

	return unused, nil
}

// FindCode returns the code with the exact code string, used or not.
func (r *PromoCodeRepository) FindCode(_ context.Context, batchID, code string) (*models.PromoCode, error) {
	r.persistence.mu.RLock()
	defer r.persistence.mu.RUnlock()

	codes, err := r.codesLocked(batchID)
	if err != nil {
		return nil, err
	}

	for _, candidate := range codes {
		if candidate.Code == code {
			return candidate, nil
		}
	}

	return nil, persistence.ErrPromoCodeNotFound
}

// MarkCodeUsed marks the code used and increments its batch's used counter.
func (r *PromoCodeRepository) MarkCodeUsed(_ context.Context, codeID, executionID string) error {
	r.persistence.mu.Lock()
	defer r.persistence.mu.Unlock()

	names, err := r.persistence.listJSON(promoCodesDir)
	if err != nil {
		return err
	}

	for _, batchID := range names {
		codes, err := r.codesLocked(batchID)
		if err != nil {
			return err
		}

		for _, code := range codes {
			if code.ID != codeID {
				continue
			}

			if code.IsUsed {
				return persistence.ErrPromoCodeAlreadyUsed
			}

			now := time.Now().UTC()
			code.IsUsed = true
			code.UsedAt = &now
			code.UsedByExecution = executionID

			err = r.persistence.writeJSON(promoCodesDir, batchID, codes)
			if err != nil {
				return err
			}

			return r.incrementBatchUsageLocked(batchID)
		}
	}

	return persistence.ErrPromoCodeNotFound
}

func (r *PromoCodeRepository) incrementBatchUsageLocked(batchID string) error {
	var batch models.PromoCodeBatch

	err := r.persistence.readJSON(promoBatchesDir, batchID, &batch)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return persistence.ErrPromoBatchNotFound
		}

		return err
	}

	batch.UsedCount++

	return r.persistence.writeJSON(promoBatchesDir, batchID, &batch)
}

func (r *PromoCodeRepository) codesLocked(batchID string) ([]*models.PromoCode, error) {
	var codes []*models.PromoCode

	err := r.persistence.readJSON(promoCodesDir, batchID, &codes)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, err
	}

	return codes, nil
}
