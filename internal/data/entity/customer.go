package entity

import (
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	BaseNoDelete
	TenantID      uuid.UUID  `db:"tenant_id"`
	Name          string     `db:"name"`
	Email         string     `db:"email"`
	Phone         *string    `db:"phone"`
	LastBookingAt *time.Time `db:"last_booking_at"`
}
