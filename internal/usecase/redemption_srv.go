package usecase

import (
	"context"
	"errors"
	"fmt"

	"appointment-booking/internal/data/repository"
	"appointment-booking/pkg/metrics"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RedemptionService debits discount codes, gift cards and customer packages.
// Every call consumes one unit, so callers make at most one call per booking
// attempt. The reverse operations exist for the reservation rollback path.
type RedemptionService interface {
	RedeemDiscountCode(ctx context.Context, tenantID, codeID uuid.UUID) error
	RedeemGiftCard(ctx context.Context, tenantID, cardID uuid.UUID, amount decimal.Decimal, bookingID uuid.UUID) (decimal.Decimal, error)
	RedeemPackageSession(ctx context.Context, tenantID, packageID, bookingID uuid.UUID) (int, error)

	ReverseDiscountCode(ctx context.Context, tenantID, codeID uuid.UUID) error
	RefundGiftCard(ctx context.Context, tenantID, cardID uuid.UUID, amount decimal.Decimal, bookingID uuid.UUID) (decimal.Decimal, error)
	RestorePackageSession(ctx context.Context, tenantID, packageID, bookingID uuid.UUID) (int, error)
}

type redemptionService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewRedemptionService(repo *repository.Repository, log *zap.Logger) RedemptionService {
	return &redemptionService{
		repo: repo,
		log:  log.With(zap.String("service", "redemption")),
	}
}

func (s *redemptionService) RedeemDiscountCode(ctx context.Context, tenantID, codeID uuid.UUID) error {
	err := s.repo.DiscountCode.IncrementUses(ctx, tenantID, codeID)
	switch {
	case errors.Is(err, repository.ErrAlreadyMaxed):
		metrics.ObserveRedemption("discount_code", "maxed")
		return ErrAlreadyMaxed
	case err != nil:
		metrics.ObserveRedemption("discount_code", "error")
		return fmt.Errorf("redeem discount code: %w", err)
	}

	metrics.ObserveRedemption("discount_code", "redeemed")
	s.log.Debug("Discount code redeemed", zap.String("discount_code_id", codeID.String()))
	return nil
}

func (s *redemptionService) RedeemGiftCard(ctx context.Context, tenantID, cardID uuid.UUID, amount decimal.Decimal, bookingID uuid.UUID) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("redeem gift card: amount must be positive")
	}

	balance, err := s.repo.GiftCard.Debit(ctx, tenantID, cardID, amount, bookingID)
	switch {
	case errors.Is(err, repository.ErrInsufficientFunds):
		metrics.ObserveRedemption("gift_card", "insufficient_funds")
		return decimal.Zero, ErrInsufficientFunds
	case err != nil:
		metrics.ObserveRedemption("gift_card", "error")
		return decimal.Zero, fmt.Errorf("redeem gift card: %w", err)
	}

	metrics.ObserveRedemption("gift_card", "redeemed")
	s.log.Debug("Gift card redeemed",
		zap.String("gift_card_id", cardID.String()),
		zap.String("booking_id", bookingID.String()),
	)
	return balance, nil
}

func (s *redemptionService) RedeemPackageSession(ctx context.Context, tenantID, packageID, bookingID uuid.UUID) (int, error) {
	remaining, err := s.repo.CustomerPackage.ConsumeSession(ctx, tenantID, packageID, bookingID)
	switch {
	case errors.Is(err, repository.ErrExhausted):
		metrics.ObserveRedemption("package", "exhausted")
		return 0, ErrExhausted
	case err != nil:
		metrics.ObserveRedemption("package", "error")
		return 0, fmt.Errorf("redeem package session: %w", err)
	}

	metrics.ObserveRedemption("package", "redeemed")
	s.log.Debug("Package session redeemed",
		zap.String("customer_package_id", packageID.String()),
		zap.Int("sessions_remaining", remaining),
	)
	return remaining, nil
}

func (s *redemptionService) ReverseDiscountCode(ctx context.Context, tenantID, codeID uuid.UUID) error {
	if err := s.repo.DiscountCode.DecrementUses(ctx, tenantID, codeID); err != nil {
		return fmt.Errorf("reverse discount code: %w", err)
	}
	metrics.ObserveRedemption("discount_code", "reversed")
	return nil
}

func (s *redemptionService) RefundGiftCard(ctx context.Context, tenantID, cardID uuid.UUID, amount decimal.Decimal, bookingID uuid.UUID) (decimal.Decimal, error) {
	balance, err := s.repo.GiftCard.Credit(ctx, tenantID, cardID, amount, bookingID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("refund gift card: %w", err)
	}
	metrics.ObserveRedemption("gift_card", "refunded")
	return balance, nil
}

func (s *redemptionService) RestorePackageSession(ctx context.Context, tenantID, packageID, bookingID uuid.UUID) (int, error) {
	remaining, err := s.repo.CustomerPackage.RestoreSession(ctx, tenantID, packageID, bookingID)
	if err != nil {
		return 0, fmt.Errorf("restore package session: %w", err)
	}
	metrics.ObserveRedemption("package", "restored")
	return remaining, nil
}
