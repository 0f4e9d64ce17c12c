package notify

import (
	"time"

	"appointment-booking/internal/data/entity"
)

const (
	KeyBookingPending  = "booking.pending"
	KeyWaitlistOpening = "waitlist.opening"
)

// BookingPendingEvent asks the delivery system to tell the customer their
// request was received and is awaiting confirmation.
type BookingPendingEvent struct {
	BookingID     string    `json:"booking_id"`
	Reference     string    `json:"reference"`
	TenantID      string    `json:"tenant_id"`
	TenantSlug    string    `json:"tenant_slug"`
	TenantName    string    `json:"tenant_name"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	CustomerPhone *string   `json:"customer_phone,omitempty"`
	Date          string    `json:"date"`
	StartTime     string    `json:"start_time"`
	EndTime       string    `json:"end_time"`
	TotalPrice    string    `json:"total_price"`
	DepositAmount string    `json:"deposit_amount"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type WaitlistOpeningEvent struct {
	EntryID       string     `json:"entry_id"`
	TenantID      string     `json:"tenant_id"`
	TenantSlug    string     `json:"tenant_slug"`
	TenantName    string     `json:"tenant_name"`
	CustomerName  string     `json:"customer_name"`
	CustomerEmail string     `json:"customer_email"`
	CustomerPhone *string    `json:"customer_phone,omitempty"`
	Date          string     `json:"date"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

func newBookingPendingEvent(b *entity.Booking, t *entity.Tenant, now time.Time) BookingPendingEvent {
	return BookingPendingEvent{
		BookingID:     b.ID.String(),
		Reference:     b.Reference,
		TenantID:      t.ID.String(),
		TenantSlug:    t.Slug,
		TenantName:    t.Name,
		CustomerName:  b.CustomerName,
		CustomerEmail: b.CustomerEmail,
		CustomerPhone: b.CustomerPhone,
		Date:          b.Date.Format("2006-01-02"),
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		TotalPrice:    b.TotalPrice.StringFixed(2),
		DepositAmount: b.DepositAmount.StringFixed(2),
		OccurredAt:    now,
	}
}

func newWaitlistOpeningEvent(e *entity.WaitlistEntry, t *entity.Tenant, now time.Time) WaitlistOpeningEvent {
	return WaitlistOpeningEvent{
		EntryID:       e.ID.String(),
		TenantID:      t.ID.String(),
		TenantSlug:    t.Slug,
		TenantName:    t.Name,
		CustomerName:  e.CustomerName,
		CustomerEmail: e.CustomerEmail,
		CustomerPhone: e.CustomerPhone,
		Date:          e.Date.Format("2006-01-02"),
		ExpiresAt:     e.ExpiresAt,
		OccurredAt:    now,
	}
}
