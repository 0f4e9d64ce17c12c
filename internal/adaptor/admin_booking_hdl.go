package adaptor

import (
	"context"
	"encoding/json"
	"net/http"

	"appointment-booking/internal/dto/request"
	"appointment-booking/internal/dto/response"
	"appointment-booking/internal/usecase"
	"appointment-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AdminBookingHandler struct {
	service usecase.LifecycleService
	log     *zap.Logger
}

func NewAdminBookingHandler(service usecase.LifecycleService, log *zap.Logger) *AdminBookingHandler {
	return &AdminBookingHandler{
		service: service,
		log:     log.With(zap.String("handler", "admin_booking")),
	}
}

type transitionFunc func(ctx context.Context, tenantID uuid.UUID, bookingID string) (*response.BookingResponse, error)

func (h *AdminBookingHandler) transition(fn transitionFunc, operation string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := tenantFromContext(w, r)
		if !ok {
			return
		}

		booking, err := fn(r.Context(), tenantID, chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(h.log, w, err, operation)
			return
		}

		utils.ResponseSuccess(w, "success", booking)
	}
}

// Confirm handles PUT /api/admin/bookings/{id}/confirm
func (h *AdminBookingHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.transition(h.service.Confirm, "confirm booking")(w, r)
}

// Reject handles PUT /api/admin/bookings/{id}/reject
func (h *AdminBookingHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(h.service.Reject, "reject booking")(w, r)
}

// Complete handles PUT /api/admin/bookings/{id}/complete
func (h *AdminBookingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(h.service.Complete, "complete booking")(w, r)
}

// Cancel handles PUT /api/admin/bookings/{id}/cancel
func (h *AdminBookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(h.service.Cancel, "cancel booking")(w, r)
}

// MarkNoShow handles PUT /api/admin/bookings/{id}/no-show
func (h *AdminBookingHandler) MarkNoShow(w http.ResponseWriter, r *http.Request) {
	h.transition(h.service.MarkNoShow, "mark no-show")(w, r)
}

// CreateTipIntent handles POST /api/admin/bookings/{id}/tip-intent
func (h *AdminBookingHandler) CreateTipIntent(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFromContext(w, r)
	if !ok {
		return
	}

	var req request.TipIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	intent, err := h.service.CreateTipIntent(r.Context(), tenantID, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(h.log, w, err, "create tip intent")
		return
	}

	utils.ResponseCreated(w, "success", intent)
}

// ListBookings handles GET /api/admin/bookings?date=YYYY-MM-DD&page=1&per_page=10
func (h *AdminBookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFromContext(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	req := &request.ListBookingsRequest{
		PaginatedRequest: request.PaginatedRequest{
			Page:    utils.ParseInt(query.Get("page"), 1),
			PerPage: utils.ParseInt(query.Get("per_page"), 10),
		},
		Date: query.Get("date"),
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	bookings, err := h.service.ListByDate(r.Context(), tenantID, req)
	if err != nil {
		handleServiceError(h.log, w, err, "list bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}
