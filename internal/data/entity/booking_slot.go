package entity

import (
	"github.com/google/uuid"
)

// BookingSlot records which slots a booking claimed.
type BookingSlot struct {
	BaseSimple
	BookingID uuid.UUID `db:"booking_id"`
	SlotID    uuid.UUID `db:"slot_id"`
}
