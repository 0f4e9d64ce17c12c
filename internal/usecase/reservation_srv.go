package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"appointment-booking/internal/data/entity"
	"appointment-booking/internal/data/repository"
	"appointment-booking/internal/dto/request"
	"appointment-booking/internal/dto/response"
	"appointment-booking/pkg/metrics"
	"appointment-booking/pkg/utils"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ReservationService interface {
	CreateBooking(ctx context.Context, tenantID uuid.UUID, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	// GetBooking lets a caller whose create call timed out check the outcome.
	GetBooking(ctx context.Context, tenantID uuid.UUID, bookingID string) (*response.BookingResponse, error)
	DepositIntent(ctx context.Context, tenantID uuid.UUID, req *request.DepositIntentRequest) (*response.DepositIntentResponse, error)
}

type reservationService struct {
	repo     *repository.Repository
	slots    SlotService
	ledger   RedemptionService
	payments PaymentGateway
	notifier Notifier
	config   utils.BookingConfig
	log      *zap.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

func NewReservationService(
	repo *repository.Repository,
	slots SlotService,
	ledger RedemptionService,
	payments PaymentGateway,
	notifier Notifier,
	config utils.BookingConfig,
	log *zap.Logger,
) ReservationService {
	return &reservationService{
		repo:     repo,
		slots:    slots,
		ledger:   ledger,
		payments: payments,
		notifier: notifier,
		config:   config,
		log:      log.With(zap.String("service", "reservation")),
		tracer:   otel.Tracer("appointment-booking/reservation"),
		now:      time.Now,
	}
}

// bookingInput is a validated CreateBookingRequest with its instruments loaded.
type bookingInput struct {
	tenant    *entity.Tenant
	services  []*entity.Service
	date      time.Time
	startTime string
	name      string
	email     string
	phone     *string
	discount  *entity.DiscountCode
	giftCard  *entity.GiftCard
	pkg       *entity.CustomerPackage
}

func (in *bookingInput) pricing(now time.Time) PricingInput {
	return PricingInput{
		Services: in.services,
		Discount: in.discount,
		GiftCard: in.giftCard,
		Package:  in.pkg,
		Now:      now,
	}
}

func (in *bookingInput) duration() int {
	total := 0
	for _, svc := range in.services {
		total += svc.DurationMinutes
	}
	return total
}

func (s *reservationService) CreateBooking(ctx context.Context, tenantID uuid.UUID, req *request.CreateBookingRequest) (resp *response.BookingResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "reservation.CreateBooking",
		trace.WithAttributes(attribute.String("tenant.id", tenantID.String())))
	defer span.End()

	started := time.Now()
	defer func() {
		result := "created"
		if err != nil {
			result = errorKind(err)
			span.RecordError(err)
			span.SetStatus(codes.Error, result)
		}
		metrics.ObserveReservation(result, time.Since(started))
	}()

	in, err := s.validate(ctx, tenantID, req)
	if err != nil {
		return nil, err
	}

	if err := s.checkPlanLimit(ctx, in.tenant); err != nil {
		return nil, err
	}

	now := s.now()
	quote := ComputePrice(in.pricing(now))

	depositStatus, err := s.verifyDeposit(ctx, in.tenant, quote, req.DepositPaymentIntentID)
	if err != nil {
		return nil, err
	}

	run, err := s.slots.FindContiguous(ctx, tenantID, in.date, in.startTime, in.duration())
	if err != nil {
		return nil, fmt.Errorf("find contiguous slots: %w", err)
	}
	if run == nil {
		return nil, ErrSlotConflict
	}
	claimed := slotIDs(run)

	booking := &entity.Booking{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Reference:              utils.GenerateBookingReference(now),
		TenantID:               tenantID,
		CustomerName:           in.name,
		CustomerEmail:          in.email,
		CustomerPhone:          in.phone,
		ServiceIDs:             serviceIDs(in.services),
		Date:                   in.date,
		StartTime:              run[0].StartTime,
		EndTime:                run[len(run)-1].EndTime,
		DepositAmount:          quote.DepositAmount,
		DepositStatus:          depositStatus,
		DepositPaymentIntentID: req.DepositPaymentIntentID,
		Status:                 entity.BookingStatusPending,
	}
	span.SetAttributes(attribute.String("booking.id", booking.ID.String()), attribute.Int("slots", len(claimed)))

	var price PriceBreakdown
	err = s.repo.Tx.WithinTx(ctx, func(ctx context.Context) (err error) {
		var saga compensations
		defer func() {
			if err != nil {
				saga.unwind(ctx, s.log)
			}
		}()

		if err := s.slots.Claim(ctx, tenantID, claimed); err != nil {
			return err
		}
		saga.add("release slots", func(ctx context.Context) error {
			_, err := s.repo.Slot.Release(ctx, tenantID, claimed)
			return err
		})

		price, err = s.redeemInstruments(ctx, &saga, in, booking.ID, now)
		if err != nil {
			return err
		}
		applyPrice(booking, in, price)

		customerID, err := s.repo.Customer.Upsert(ctx, &entity.Customer{
			BaseNoDelete: entity.BaseNoDelete{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			TenantID:      tenantID,
			Name:          in.name,
			Email:         in.email,
			Phone:         in.phone,
			LastBookingAt: &now,
		})
		if err != nil {
			return err
		}
		booking.CustomerID = customerID

		if err := s.repo.Booking.Create(ctx, booking); err != nil {
			return err
		}

		links := make([]*entity.BookingSlot, len(claimed))
		for i, slotID := range claimed {
			links[i] = &entity.BookingSlot{
				BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
				BookingID:  booking.ID,
				SlotID:     slotID,
			}
		}
		return s.repo.Booking.CreateSlots(ctx, links)
	})

	// the claim and its rollback both change what the read path should show
	s.slots.Invalidate(ctx, tenantID, in.date)

	if err != nil {
		if errors.Is(err, ErrSlotConflict) {
			s.log.Info("Slot claim lost",
				zap.String("tenant_id", tenantID.String()),
				zap.String("date", req.Date),
				zap.String("start_time", in.startTime),
			)
			return nil, ErrSlotConflict
		}
		s.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("tenant_id", tenantID.String()),
			zap.String("booking_id", booking.ID.String()),
		)
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("reference", booking.Reference),
		zap.String("tenant_id", tenantID.String()),
		zap.Int("slot_count", len(claimed)),
		zap.String("total_price", booking.TotalPrice.StringFixed(2)),
	)

	go s.dispatchPending(booking, in.tenant)

	out := response.BookingToResponse(booking)
	remaining := price.RemainingBalance.StringFixed(2)
	out.RemainingBalance = &remaining
	return &out, nil
}

// redeemInstruments debits every instrument the price applies. An instrument
// that can no longer be redeemed is dropped and the price recomputed.
func (s *reservationService) redeemInstruments(ctx context.Context, saga *compensations, in *bookingInput, bookingID uuid.UUID, now time.Time) (PriceBreakdown, error) {
	tenantID := in.tenant.ID
	pricing := in.pricing(now)
	price := ComputePrice(pricing)

	if price.DiscountApplied {
		codeID := pricing.Discount.ID
		err := s.ledger.RedeemDiscountCode(ctx, tenantID, codeID)
		switch {
		case errors.Is(err, ErrAlreadyMaxed):
			s.log.Info("Discount code dropped", zap.String("discount_code_id", codeID.String()))
			pricing.Discount = nil
			price = ComputePrice(pricing)
		case err != nil:
			return price, err
		default:
			saga.add("reverse discount code", func(ctx context.Context) error {
				return s.ledger.ReverseDiscountCode(ctx, tenantID, codeID)
			})
		}
	}

	if price.GiftCardApplied {
		cardID, amount := pricing.GiftCard.ID, price.GiftCardAmount
		_, err := s.ledger.RedeemGiftCard(ctx, tenantID, cardID, amount, bookingID)
		switch {
		case errors.Is(err, ErrInsufficientFunds):
			s.log.Info("Gift card dropped", zap.String("gift_card_id", cardID.String()))
			pricing.GiftCard = nil
			price = ComputePrice(pricing)
		case err != nil:
			return price, err
		default:
			saga.add("refund gift card", func(ctx context.Context) error {
				_, err := s.ledger.RefundGiftCard(ctx, tenantID, cardID, amount, bookingID)
				return err
			})
		}
	}

	if price.PackageApplied {
		packageID := pricing.Package.ID
		_, err := s.ledger.RedeemPackageSession(ctx, tenantID, packageID, bookingID)
		switch {
		case errors.Is(err, ErrExhausted):
			s.log.Info("Package dropped", zap.String("customer_package_id", packageID.String()))
			pricing.Package = nil
			price = ComputePrice(pricing)
		case err != nil:
			return price, err
		default:
			saga.add("restore package session", func(ctx context.Context) error {
				_, err := s.ledger.RestorePackageSession(ctx, tenantID, packageID, bookingID)
				return err
			})
		}
	}

	return price, nil
}

func applyPrice(b *entity.Booking, in *bookingInput, price PriceBreakdown) {
	b.Subtotal = price.Subtotal
	b.DiscountAmount = price.DiscountAmount
	b.GiftCardAmount = price.GiftCardAmount
	b.TotalPrice = price.FinalPrice
	b.DepositAmount = price.DepositAmount

	b.DiscountCodeID, b.GiftCardID, b.CustomerPackageID = nil, nil, nil
	if price.DiscountApplied {
		b.DiscountCodeID = &in.discount.ID
	}
	if price.GiftCardApplied {
		b.GiftCardID = &in.giftCard.ID
	}
	if price.PackageApplied {
		b.CustomerPackageID = &in.pkg.ID
	}
}

func (s *reservationService) validate(ctx context.Context, tenantID uuid.UUID, req *request.CreateBookingRequest) (*bookingInput, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, invalidFields(errs)
	}

	date, err := utils.ParseDate(req.Date)
	if err != nil {
		return nil, invalid("date must be YYYY-MM-DD")
	}
	startMinutes, err := utils.ParseClock(req.StartTime)
	if err != nil {
		return nil, invalid("startTime must be HH:MM")
	}

	now := s.now().UTC()
	switch day := today(now); {
	case date.Before(day):
		return nil, invalid("date is in the past")
	case date.Equal(day) && startMinutes <= now.Hour()*60+now.Minute():
		return nil, invalid("startTime is in the past")
	}

	if trimmed(req.GiftCardCode) != "" && trimmed(req.CustomerPackageID) != "" {
		return nil, invalid("a gift card and a package cannot be used on the same booking")
	}

	tenant, err := s.repo.Tenant.FindByID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("find tenant: %w", err)
	}
	if tenant == nil || !tenant.IsActive {
		return nil, ErrNotFound
	}

	ids := make([]uuid.UUID, 0, len(req.ServiceIDs))
	for _, raw := range req.ServiceIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, invalid("invalid service id")
		}
		ids = append(ids, id)
	}
	ids = dedupeIDs(ids)

	found, err := s.repo.Service.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("find services: %w", err)
	}
	services, err := orderActiveServices(found, ids)
	if err != nil {
		return nil, err
	}

	in := &bookingInput{
		tenant:    tenant,
		services:  services,
		date:      date,
		startTime: utils.FormatClock(startMinutes),
		name:      strings.TrimSpace(req.CustomerName),
		email:     strings.ToLower(strings.TrimSpace(req.CustomerEmail)),
		phone:     req.CustomerPhone,
	}

	if err := s.loadInstruments(ctx, in, req); err != nil {
		return nil, err
	}
	return in, nil
}

// loadInstruments resolves the supplied codes. An unknown code is a client
// error; a known but ineligible one is simply not applied by pricing.
func (s *reservationService) loadInstruments(ctx context.Context, in *bookingInput, req *request.CreateBookingRequest) error {
	tenantID := in.tenant.ID

	if code := trimmed(req.DiscountCode); code != "" {
		discount, err := s.repo.DiscountCode.FindByCode(ctx, tenantID, code)
		if err != nil {
			return fmt.Errorf("find discount code: %w", err)
		}
		if discount == nil {
			return &ValidationError{Message: "discount code not found", Fields: map[string]string{"discountCode": "not found"}}
		}
		in.discount = discount
	}

	if code := trimmed(req.GiftCardCode); code != "" {
		card, err := s.repo.GiftCard.FindByCode(ctx, tenantID, code)
		if err != nil {
			return fmt.Errorf("find gift card: %w", err)
		}
		if card == nil {
			return &ValidationError{Message: "gift card not found", Fields: map[string]string{"giftCardCode": "not found"}}
		}
		in.giftCard = card
	}

	if raw := trimmed(req.CustomerPackageID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return invalid("invalid customer package id")
		}
		pkg, err := s.repo.CustomerPackage.FindByID(ctx, tenantID, id)
		if err != nil {
			return fmt.Errorf("find customer package: %w", err)
		}
		// packages belong to one customer
		if pkg == nil || !strings.EqualFold(pkg.CustomerEmail, in.email) {
			return &ValidationError{Message: "customer package not found", Fields: map[string]string{"customerPackageId": "not found"}}
		}
		in.pkg = pkg
	}

	return nil
}

func (s *reservationService) checkPlanLimit(ctx context.Context, tenant *entity.Tenant) error {
	limit := s.config.PlanLimits[string(tenant.Tier)]
	if limit <= 0 {
		return nil
	}

	count, err := s.repo.Booking.CountCreatedSince(ctx, tenant.ID, utils.MonthStart(s.now()))
	if err != nil {
		return fmt.Errorf("count monthly bookings: %w", err)
	}
	if count >= int64(limit) {
		s.log.Warn("Plan limit reached",
			zap.String("tenant_id", tenant.ID.String()),
			zap.String("tier", string(tenant.Tier)),
			zap.Int("limit", limit),
		)
		return ErrPlanLimitReached
	}
	return nil
}

func (s *reservationService) verifyDeposit(ctx context.Context, tenant *entity.Tenant, quote PriceBreakdown, intentID *string) (entity.DepositStatus, error) {
	if !quote.DepositAmount.IsPositive() {
		return entity.DepositStatusNone, nil
	}

	id := trimmed(intentID)
	if id == "" {
		return "", ErrDepositRequired
	}

	ctx, span := s.tracer.Start(ctx, "reservation.VerifyDeposit")
	defer span.End()

	status, err := s.payments.VerifyPaymentIntent(ctx, tenant, id)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("verify deposit payment: %w", err)
	}
	if status != PaymentStatusSucceeded {
		s.log.Info("Deposit not paid",
			zap.String("tenant_id", tenant.ID.String()),
			zap.String("status", status),
		)
		return "", ErrDepositNotPaid
	}
	return entity.DepositStatusPaid, nil
}

func (s *reservationService) GetBooking(ctx context.Context, tenantID uuid.UUID, bookingID string) (*response.BookingResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, invalid("invalid booking id")
	}

	booking, err := s.repo.Booking.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, ErrNotFound
	}

	out := response.BookingToResponse(booking)
	return &out, nil
}

func (s *reservationService) DepositIntent(ctx context.Context, tenantID uuid.UUID, req *request.DepositIntentRequest) (*response.DepositIntentResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, invalidFields(errs)
	}

	tenant, err := s.repo.Tenant.FindByID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("find tenant: %w", err)
	}
	if tenant == nil || !tenant.IsActive {
		return nil, ErrNotFound
	}

	ids := make([]uuid.UUID, 0, len(req.ServiceIDs))
	for _, raw := range req.ServiceIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, invalid("invalid service id")
		}
		ids = append(ids, id)
	}
	ids = dedupeIDs(ids)

	found, err := s.repo.Service.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("find services: %w", err)
	}
	services, err := orderActiveServices(found, ids)
	if err != nil {
		return nil, err
	}

	quote := ComputePrice(PricingInput{Services: services, Now: s.now()})
	if !quote.DepositAmount.IsPositive() {
		return &response.DepositIntentResponse{Required: false, DepositAmount: "0.00"}, nil
	}

	intent, err := s.payments.CreateIntent(ctx, tenant, quote.DepositAmount,
		strings.ToLower(req.CustomerEmail), "Booking deposit")
	if err != nil {
		return nil, fmt.Errorf("create deposit intent: %w", err)
	}

	return &response.DepositIntentResponse{
		Required:      true,
		DepositAmount: quote.DepositAmount.StringFixed(2),
		ClientSecret:  &intent.ClientSecret,
	}, nil
}

func (s *reservationService) dispatchPending(booking *entity.Booking, tenant *entity.Tenant) {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.NotifyTimeout)
	defer cancel()

	if err := s.notifier.NotifyBookingPending(ctx, booking, tenant); err != nil {
		metrics.ObserveNotification("booking_pending", "failed")
		s.log.Error("Failed to send booking notification",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
		return
	}
	metrics.ObserveNotification("booking_pending", "sent")
}

func serviceIDs(services []*entity.Service) []uuid.UUID {
	ids := make([]uuid.UUID, len(services))
	for i, svc := range services {
		ids[i] = svc.ID
	}
	return ids
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// errorKind labels an error for metrics and traces.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrPlanLimitReached):
		return "plan_limit"
	case errors.Is(err, ErrDepositRequired):
		return "deposit_required"
	case errors.Is(err, ErrDepositNotPaid):
		return "deposit_not_paid"
	case errors.Is(err, ErrSlotConflict):
		return "slot_conflict"
	default:
		return "error"
	}
}
