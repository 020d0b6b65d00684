package models

import "time"

// PromoSelectionPolicy decides how a promo_code action picks a code from a
// batch.
type PromoSelectionPolicy string

const (
	// PromoSelectRandom picks uniformly among unused codes.
	PromoSelectRandom PromoSelectionPolicy = "random"
	// PromoSelectSequential picks the oldest unused code by creation time.
	PromoSelectSequential PromoSelectionPolicy = "sequential"
	// PromoSelectSpecific requires an exact, still-unused code.
	PromoSelectSpecific PromoSelectionPolicy = "specific"
)

// PromoCodeBatch is a pool of discount codes owned by an organization.
// Codes are only allocatable while the batch is active and now is within
// [ValidFrom, ValidUntil].
type PromoCodeBatch struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id" validate:"required"`
	Name           string    `json:"name"            validate:"required"`
	DiscountType   string    `json:"discount_type"`
	DiscountValue  float64   `json:"discount_value"`
	ValidFrom      time.Time `json:"valid_from"`
	ValidUntil     time.Time `json:"valid_until"`
	Active         bool      `json:"active"`
	UsedCount      int       `json:"used_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// WithinWindow reports whether the batch's validity window covers t.
func (b *PromoCodeBatch) WithinWindow(t time.Time) bool {
	return !t.Before(b.ValidFrom) && !t.After(b.ValidUntil)
}

// PromoCode is a single allocatable code. A code is marked used exactly
// once; re-allocation of a used code is an error.
type PromoCode struct {
	ID              string     `json:"id"`
	BatchID         string     `json:"batch_id" validate:"required"`
	Code            string     `json:"code"     validate:"required"`
	IsUsed          bool       `json:"is_used"`
	UsedAt          *time.Time `json:"used_at,omitempty"`
	UsedByExecution string     `json:"used_by_execution,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}
