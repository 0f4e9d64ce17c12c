package wire

import (
	"appointment-booking/internal/adaptor"
	"appointment-booking/pkg/middleware"
	"appointment-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAdmin(
	r chi.Router,
	handler *adaptor.Handler,
	tokens *utils.TokenManager,
	limiter *middleware.RateLimiter,
	log *zap.Logger,
) {
	// no tenant in context here, so the limiter keys by client ip
	r.With(limiter.Middleware).Post("/api/admin/login", handler.Auth.Login)

	// tenant comes from the token claims
	r.Route("/api/admin/bookings", func(r chi.Router) {
		r.Use(middleware.AdminJWT(tokens, log))

		adminHandler := handler.AdminBooking
		r.Get("/", adminHandler.ListBookings)
		r.Put("/{id}/confirm", adminHandler.Confirm)
		r.Put("/{id}/reject", adminHandler.Reject)
		r.Put("/{id}/complete", adminHandler.Complete)
		r.Put("/{id}/cancel", adminHandler.Cancel)
		r.Put("/{id}/no-show", adminHandler.MarkNoShow)
		r.Post("/{id}/tip-intent", adminHandler.CreateTipIntent)
	})
}
