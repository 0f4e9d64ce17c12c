package adaptor

import (
	"encoding/json"
	"net/http"

	"appointment-booking/internal/dto/request"
	"appointment-booking/internal/usecase"
	"appointment-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type WaitlistHandler struct {
	service usecase.WaitlistService
	log     *zap.Logger
}

func NewWaitlistHandler(service usecase.WaitlistService, log *zap.Logger) *WaitlistHandler {
	return &WaitlistHandler{
		service: service,
		log:     log.With(zap.String("handler", "waitlist")),
	}
}

// Join handles POST /api/t/{slug}/waitlist
func (h *WaitlistHandler) Join(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFromContext(w, r)
	if !ok {
		return
	}

	var req request.JoinWaitlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	entry, err := h.service.Join(r.Context(), tenantID, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "join waitlist")
		return
	}

	utils.ResponseCreated(w, "success", entry)
}

// Cancel handles DELETE /api/t/{slug}/waitlist/{id}
func (h *WaitlistHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFromContext(w, r)
	if !ok {
		return
	}

	if err := h.service.Cancel(r.Context(), tenantID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(h.log, w, err, "cancel waitlist entry")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}
