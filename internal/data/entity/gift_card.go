package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type GiftCardStatus string

const (
	GiftCardActive    GiftCardStatus = "active"
	GiftCardRedeemed  GiftCardStatus = "redeemed"
	GiftCardCancelled GiftCardStatus = "cancelled"
	GiftCardExpired   GiftCardStatus = "expired"
)

type GiftCard struct {
	BaseNoDelete
	TenantID         uuid.UUID       `db:"tenant_id"`
	Code             string          `db:"code"`
	InitialBalance   decimal.Decimal `db:"initial_balance"`
	RemainingBalance decimal.Decimal `db:"remaining_balance"`
	Status           GiftCardStatus  `db:"status"`
	ExpiresAt        *time.Time      `db:"expires_at"`
}

type GiftCardTransactionType string

const (
	GiftCardTxIssue      GiftCardTransactionType = "issue"
	GiftCardTxRedemption GiftCardTransactionType = "redemption"
	GiftCardTxRefund     GiftCardTransactionType = "refund"
)

// GiftCardTransaction is an append-only ledger line.
type GiftCardTransaction struct {
	BaseSimple
	GiftCardID   uuid.UUID               `db:"gift_card_id"`
	BookingID    *uuid.UUID              `db:"booking_id"`
	Type         GiftCardTransactionType `db:"type"`
	Amount       decimal.Decimal         `db:"amount"`
	BalanceAfter decimal.Decimal         `db:"balance_after"`
}
