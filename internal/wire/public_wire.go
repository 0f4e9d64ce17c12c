package wire

import (
	"appointment-booking/internal/adaptor"
	"appointment-booking/internal/data/repository"
	"appointment-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wirePublic(
	r chi.Router,
	handler *adaptor.Handler,
	repo *repository.Repository,
	limiter *middleware.RateLimiter,
	log *zap.Logger,
) {
	// every customer route is scoped by the tenant slug
	r.Route("/api/t/{slug}", func(r chi.Router) {
		r.Use(middleware.TenantScope(repo.Tenant, log))

		r.Get("/slots", handler.Slot.ListSlots)
		r.Get("/next-available", handler.Slot.NextAvailable)

		r.Get("/bookings/{id}", handler.Booking.GetBooking)
		r.Post("/deposit-intent", handler.Booking.DepositIntent)
		r.Delete("/waitlist/{id}", handler.Waitlist.Cancel)

		// writes are limited per tenant
		r.Group(func(r chi.Router) {
			r.Use(limiter.Middleware)
			r.Post("/bookings", handler.Booking.CreateBooking)
			r.Post("/waitlist", handler.Waitlist.Join)
		})
	})
}
