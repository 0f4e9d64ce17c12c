package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

type DiscountCode struct {
	BaseNoDelete
	TenantID  uuid.UUID       `db:"tenant_id"`
	Code      string          `db:"code"`
	Type      DiscountType    `db:"type"`
	Value     decimal.Decimal `db:"value"`
	MinSpend  decimal.Decimal `db:"min_spend"`
	MaxUses   *int            `db:"max_uses"` // nil = unlimited
	UsesCount int             `db:"uses_count"`
	ExpiresAt *time.Time      `db:"expires_at"`
	IsActive  bool            `db:"active"`
}

// HasUsesLeft reports whether another redemption stays within max_uses.
func (d *DiscountCode) HasUsesLeft() bool {
	return d.MaxUses == nil || d.UsesCount < *d.MaxUses
}
