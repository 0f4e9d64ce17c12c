package usecase

import (
	"errors"

	"appointment-booking/internal/data/repository"
	"appointment-booking/pkg/utils"
)

// Error kinds returned by the services. Handlers map them to HTTP codes
// with errors.Is.
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrPlanLimitReached   = errors.New("monthly booking limit reached for current plan")
	ErrDepositRequired    = errors.New("a deposit payment is required for this booking")
	ErrDepositNotPaid     = errors.New("deposit payment has not succeeded")
	ErrSlotConflict       = errors.New("requested time is no longer available")
	ErrInvalidTransition  = errors.New("booking status does not allow this action")
	ErrDuplicateWaitlist  = errors.New("already on the waitlist for this date")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Instrument outcomes; during a reservation they only drop the instrument.
	ErrAlreadyMaxed      = repository.ErrAlreadyMaxed
	ErrInsufficientFunds = repository.ErrInsufficientFunds
	ErrExhausted         = repository.ErrExhausted
)

// CodePlanLimitReached is the machine-readable code sent with ErrPlanLimitReached.
const CodePlanLimitReached = "PLAN_LIMIT_REACHED"

// ValidationError carries per-field messages and matches ErrValidation.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return e.Message + ": " + utils.FormatValidationErrors(e.Fields)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(message string) error {
	return &ValidationError{Message: message}
}

func invalidFields(fields map[string]string) error {
	return &ValidationError{Message: "validation failed", Fields: fields}
}
