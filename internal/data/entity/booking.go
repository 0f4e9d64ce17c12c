package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusRejected  BookingStatus = "rejected"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// IsTerminal reports whether no further status transition is allowed.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusRejected || s == BookingStatusCancelled || s == BookingStatusCompleted
}

type DepositStatus string

const (
	DepositStatusNone    DepositStatus = "none"
	DepositStatusPending DepositStatus = "pending"
	DepositStatusPaid    DepositStatus = "paid"
)

type Booking struct {
	BaseNoDelete
	Reference              string          `db:"reference"`
	TenantID               uuid.UUID       `db:"tenant_id"`
	CustomerID             uuid.UUID       `db:"customer_id"`
	CustomerName           string          `db:"customer_name"`
	CustomerEmail          string          `db:"customer_email"`
	CustomerPhone          *string         `db:"customer_phone"`
	ServiceIDs             []uuid.UUID     `db:"service_ids"`
	Date                   time.Time       `db:"date"`
	StartTime              string          `db:"start_time"`
	EndTime                string          `db:"end_time"`
	Subtotal               decimal.Decimal `db:"subtotal"`
	DiscountAmount         decimal.Decimal `db:"discount_amount"`
	GiftCardAmount         decimal.Decimal `db:"gift_card_amount"`
	TotalPrice             decimal.Decimal `db:"total_price"`
	DepositAmount          decimal.Decimal `db:"deposit_amount"`
	DepositStatus          DepositStatus   `db:"deposit_status"`
	DepositPaymentIntentID *string         `db:"deposit_payment_intent_id"`
	Status                 BookingStatus   `db:"status"`
	MarkedNoShow           bool            `db:"marked_noshow"`
	DiscountCodeID         *uuid.UUID      `db:"discount_code_id"`
	GiftCardID             *uuid.UUID      `db:"gift_card_id"`
	CustomerPackageID      *uuid.UUID      `db:"customer_package_id"`
	Reminder24hSent        bool            `db:"reminder_24h_sent"`
	SMS24hSent             bool            `db:"sms_24h_sent"`
}
