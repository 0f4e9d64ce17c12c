package entity

import (
	"time"

	"github.com/google/uuid"
)

// TimeSlot is a fixed-granularity bookable unit. StartTime and EndTime are
// "HH:MM" wall-clock values on Date.
type TimeSlot struct {
	BaseNoDelete
	TenantID    uuid.UUID `db:"tenant_id"`
	Date        time.Time `db:"date"`
	StartTime   string    `db:"start_time"`
	EndTime     string    `db:"end_time"`
	IsAvailable bool      `db:"is_available"`
}
