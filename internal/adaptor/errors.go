package adaptor

import (
	"errors"
	"net/http"

	"appointment-booking/internal/usecase"
	"appointment-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// handleServiceError maps service error kinds to HTTP answers.
func handleServiceError(log *zap.Logger, w http.ResponseWriter, err error, operation string) {
	var verr *usecase.ValidationError

	switch {
	case errors.As(err, &verr):
		log.Warn(operation+" validation failed", zap.Error(err), zap.String("operation", operation))
		var fields any
		if len(verr.Fields) > 0 {
			fields = verr.Fields
		}
		utils.ResponseBadRequest(w, verr.Message, fields)

	case errors.Is(err, usecase.ErrValidation),
		errors.Is(err, usecase.ErrDepositRequired),
		errors.Is(err, usecase.ErrDepositNotPaid):
		log.Warn(operation+" rejected", zap.Error(err), zap.String("operation", operation))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.Is(err, usecase.ErrInvalidCredentials):
		log.Warn(operation+" failed - unauthorized", zap.String("operation", operation))
		utils.ResponseUnauthorized(w, "Invalid credentials")

	case errors.Is(err, usecase.ErrPlanLimitReached):
		log.Warn(operation+" failed - plan limit", zap.Error(err), zap.String("operation", operation))
		utils.ResponseErrorCode(w, http.StatusForbidden, err.Error(), usecase.CodePlanLimitReached)

	case errors.Is(err, usecase.ErrNotFound):
		log.Warn(operation+" failed - not found", zap.Error(err), zap.String("operation", operation))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrSlotConflict),
		errors.Is(err, usecase.ErrInvalidTransition),
		errors.Is(err, usecase.ErrDuplicateWaitlist):
		log.Warn(operation+" failed - conflict", zap.Error(err), zap.String("operation", operation))
		utils.ResponseConflict(w, err.Error())

	default:
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

// tenantFromContext answers 404 when the route has no tenant scope.
func tenantFromContext(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := utils.GetTenantIDFromContext(r.Context())
	if !ok {
		utils.ResponseNotFound(w, "Tenant not found")
		return uuid.Nil, false
	}
	return id, true
}
