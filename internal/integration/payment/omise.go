package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"appointment-booking/internal/data/entity"
	"appointment-booking/internal/usecase"
	"appointment-booking/pkg/utils"

	"github.com/cenkalti/backoff/v5"
	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// chargeAPI is the part of Omise the gateway talks to.
type chargeAPI interface {
	RetrieveCharge(chargeID string) (*omise.Charge, error)
	CreateSource(op *operations.CreateSource) (*omise.Source, error)
	CreateCharge(op *operations.CreateCharge) (*omise.Charge, error)
}

type omiseAPI struct {
	client *omise.Client
}

func (a omiseAPI) RetrieveCharge(chargeID string) (*omise.Charge, error) {
	ch := &omise.Charge{}
	if err := a.client.Do(ch, &operations.RetrieveCharge{ChargeID: chargeID}); err != nil {
		return nil, err
	}
	return ch, nil
}

func (a omiseAPI) CreateSource(op *operations.CreateSource) (*omise.Source, error) {
	src := &omise.Source{}
	if err := a.client.Do(src, op); err != nil {
		return nil, err
	}
	return src, nil
}

func (a omiseAPI) CreateCharge(op *operations.CreateCharge) (*omise.Charge, error) {
	ch := &omise.Charge{}
	if err := a.client.Do(ch, op); err != nil {
		return nil, err
	}
	return ch, nil
}

// Gateway verifies and creates charges on Omise.
type Gateway struct {
	api        chargeAPI
	currency   string
	sourceType string
	maxTries   uint
	log        *zap.Logger
}

func NewGateway(config utils.PaymentConfig, log *zap.Logger) (*Gateway, error) {
	client, err := omise.NewClient(config.OmisePublicKey, config.OmiseSecretKey)
	if err != nil {
		return nil, fmt.Errorf("create omise client: %w", err)
	}
	client.SetDebug(false)

	return newGateway(omiseAPI{client: client}, config, log), nil
}

func newGateway(api chargeAPI, config utils.PaymentConfig, log *zap.Logger) *Gateway {
	return &Gateway{
		api:        api,
		currency:   config.Currency,
		sourceType: config.SourceType,
		maxTries:   3,
		log:        log.With(zap.String("integration", "omise")),
	}
}

// VerifyPaymentIntent reports "succeeded" for a successful charge and the raw
// Omise status otherwise.
func (g *Gateway) VerifyPaymentIntent(ctx context.Context, tenant *entity.Tenant, intentID string) (string, error) {
	charge, err := retry(ctx, g.maxTries, func() (*omise.Charge, error) {
		return g.api.RetrieveCharge(intentID)
	})
	if err != nil {
		g.log.Error("Failed to retrieve charge",
			zap.Error(err),
			zap.String("tenant_id", tenant.ID.String()),
			zap.String("charge_id", intentID),
		)
		return "", fmt.Errorf("retrieve charge %s: %w", intentID, err)
	}

	if tenantID, ok := charge.Metadata["tenant_id"]; ok && tenantID != tenant.ID.String() {
		g.log.Warn("Charge belongs to another tenant",
			zap.String("tenant_id", tenant.ID.String()),
			zap.String("charge_id", intentID),
		)
		return "foreign", nil
	}

	status := string(charge.Status)
	if status == "successful" {
		return usecase.PaymentStatusSucceeded, nil
	}
	return status, nil
}

// CreateIntent creates a source and a pending charge against it. The client
// completes payment through the returned secret.
func (g *Gateway) CreateIntent(ctx context.Context, tenant *entity.Tenant, amount decimal.Decimal, email, description string) (*usecase.PaymentIntent, error) {
	minor := amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if minor <= 0 {
		return nil, errors.New("amount must be positive")
	}

	source, err := g.api.CreateSource(&operations.CreateSource{
		Type:     g.sourceType,
		Amount:   minor,
		Currency: g.currency,
	})
	if err != nil {
		g.log.Error("Failed to create source", zap.Error(err), zap.String("tenant_id", tenant.ID.String()))
		return nil, fmt.Errorf("create source: %w", err)
	}

	charge, err := g.api.CreateCharge(&operations.CreateCharge{
		Amount:      minor,
		Currency:    g.currency,
		Source:      source.ID,
		Description: description,
		Metadata: map[string]interface{}{
			"tenant_id":      tenant.ID.String(),
			"tenant_slug":    tenant.Slug,
			"customer_email": email,
		},
	})
	if err != nil {
		g.log.Error("Failed to create charge", zap.Error(err), zap.String("tenant_id", tenant.ID.String()))
		return nil, fmt.Errorf("create charge: %w", err)
	}

	secret := charge.AuthorizeURI
	if secret == "" {
		secret = source.ID
	}

	g.log.Info("Payment intent created",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("charge_id", charge.ID),
		zap.Int64("amount", minor),
	)
	return &usecase.PaymentIntent{ID: charge.ID, ClientSecret: secret}, nil
}

// retry backs off on transport and 5xx errors. Omise 4xx answers are final.
func retry[T any](ctx context.Context, maxTries uint, op func() (T, error)) (T, error) {
	return backoff.Retry(ctx, func() (T, error) {
		v, err := op()
		var apiErr *omise.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode > 0 && apiErr.StatusCode < 500 {
			return v, backoff.Permanent(err)
		}
		return v, err
	},
		backoff.WithBackOff(&backoff.ExponentialBackOff{
			InitialInterval:     200 * time.Millisecond,
			RandomizationFactor: backoff.DefaultRandomizationFactor,
			Multiplier:          backoff.DefaultMultiplier,
			MaxInterval:         2 * time.Second,
		}),
		backoff.WithMaxTries(maxTries),
	)
}
