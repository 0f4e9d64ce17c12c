package entity

import (
	"time"

	"github.com/google/uuid"
)

type WaitlistStatus string

const (
	WaitlistWaiting   WaitlistStatus = "waiting"
	WaitlistNotified  WaitlistStatus = "notified"
	WaitlistBooked    WaitlistStatus = "booked"
	WaitlistExpired   WaitlistStatus = "expired"
	WaitlistCancelled WaitlistStatus = "cancelled"
)

type WaitlistEntry struct {
	BaseNoDelete
	TenantID       uuid.UUID      `db:"tenant_id"`
	CustomerName   string         `db:"customer_name"`
	CustomerEmail  string         `db:"customer_email"`
	CustomerPhone  *string        `db:"customer_phone"`
	Date           time.Time      `db:"date"`
	PreferredStart *string        `db:"preferred_start"`
	PreferredEnd   *string        `db:"preferred_end"`
	Status         WaitlistStatus `db:"status"`
	NotifiedAt     *time.Time     `db:"notified_at"`
	ExpiresAt      *time.Time     `db:"expires_at"`
}
