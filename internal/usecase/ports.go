package usecase

import (
	"context"
	"time"

	"appointment-booking/internal/data/entity"

	"github.com/shopspring/decimal"
)

// PaymentStatusSucceeded is the only verifier status accepted as proof of payment.
const PaymentStatusSucceeded = "succeeded"

type PaymentIntent struct {
	ID           string
	ClientSecret string
}

// PaymentGateway verifies and creates payment intents with the card processor.
type PaymentGateway interface {
	VerifyPaymentIntent(ctx context.Context, tenant *entity.Tenant, intentID string) (string, error)
	CreateIntent(ctx context.Context, tenant *entity.Tenant, amount decimal.Decimal, email, description string) (*PaymentIntent, error)
}

// Notifier hands customer notifications to the delivery system.
type Notifier interface {
	NotifyBookingPending(ctx context.Context, booking *entity.Booking, tenant *entity.Tenant) error
	NotifyWaitlistOpening(ctx context.Context, entry *entity.WaitlistEntry, tenant *entity.Tenant) error
}

// TokenIssuer signs admin bearer tokens.
type TokenIssuer interface {
	GenerateToken(tenantID, subject, role string, expiresIn time.Duration) (string, error)
}
