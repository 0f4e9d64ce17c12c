package adaptor

import (
	"appointment-booking/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Slot         *SlotHandler
	Booking      *BookingHandler
	Waitlist     *WaitlistHandler
	AdminBooking *AdminBookingHandler
	Auth         *AuthHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Slot:         NewSlotHandler(service.Slot, log),
		Booking:      NewBookingHandler(service.Reservation, log),
		Waitlist:     NewWaitlistHandler(service.Waitlist, log),
		AdminBooking: NewAdminBookingHandler(service.Lifecycle, log),
		Auth:         NewAuthHandler(service.Auth, log),
	}
}
