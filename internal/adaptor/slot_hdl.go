package adaptor

import (
	"net/http"

	"appointment-booking/internal/dto/request"
	"appointment-booking/internal/usecase"
	"appointment-booking/pkg/utils"

	"go.uber.org/zap"
)

type SlotHandler struct {
	service usecase.SlotService
	log     *zap.Logger
}

func NewSlotHandler(service usecase.SlotService, log *zap.Logger) *SlotHandler {
	return &SlotHandler{
		service: service,
		log:     log.With(zap.String("handler", "slot")),
	}
}

// ListSlots handles GET /api/t/{slug}/slots?date=YYYY-MM-DD
func (h *SlotHandler) ListSlots(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFromContext(w, r)
	if !ok {
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		utils.ResponseBadRequest(w, "date query parameter is required", nil)
		return
	}

	slots, err := h.service.ListAvailable(r.Context(), tenantID, date)
	if err != nil {
		handleServiceError(h.log, w, err, "list slots")
		return
	}

	utils.ResponseSuccess(w, "success", slots)
}

// NextAvailable handles GET /api/t/{slug}/next-available?serviceIds=a,b&from=YYYY-MM-DD
func (h *SlotHandler) NextAvailable(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFromContext(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	req := request.NextAvailableRequest{
		ServiceIDs: query.Get("serviceIds"),
		From:       query.Get("from"),
	}
	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	next, err := h.service.NextAvailable(r.Context(), tenantID, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "find next available")
		return
	}

	utils.ResponseSuccess(w, "success", next)
}
