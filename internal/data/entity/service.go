package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DepositType string

const (
	DepositPercentage DepositType = "percentage"
	DepositFixed      DepositType = "fixed"
)

type Service struct {
	BaseNoDelete
	TenantID        uuid.UUID       `db:"tenant_id"`
	Name            string          `db:"name"`
	DurationMinutes int             `db:"duration_minutes"`
	Price           decimal.Decimal `db:"price"`
	IsActive        bool            `db:"is_active"`
	DepositEnabled  bool            `db:"deposit_enabled"`
	DepositType     DepositType     `db:"deposit_type"`
	DepositValue    decimal.Decimal `db:"deposit_value"`
}
