package usecase

import (
	"context"
	"fmt"
	"time"

	"appointment-booking/internal/data/entity"
	"appointment-booking/internal/data/repository"
	"appointment-booking/internal/dto/request"
	"appointment-booking/internal/dto/response"
	"appointment-booking/pkg/metrics"
	"appointment-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type LifecycleService interface {
	Confirm(ctx context.Context, tenantID uuid.UUID, bookingID string) (*response.BookingResponse, error)
	Reject(ctx context.Context, tenantID uuid.UUID, bookingID string) (*response.BookingResponse, error)
	Complete(ctx context.Context, tenantID uuid.UUID, bookingID string) (*response.BookingResponse, error)
	Cancel(ctx context.Context, tenantID uuid.UUID, bookingID string) (*response.BookingResponse, error)
	MarkNoShow(ctx context.Context, tenantID uuid.UUID, bookingID string) (*response.BookingResponse, error)

	CreateTipIntent(ctx context.Context, tenantID uuid.UUID, bookingID string, req *request.TipIntentRequest) (*response.TipIntentResponse, error)
	ListByDate(ctx context.Context, tenantID uuid.UUID, req *request.ListBookingsRequest) (*response.PaginatedResponse[response.BookingResponse], error)
}

// allowedFrom maps a target status to the only status it may be entered from.
var allowedFrom = map[entity.BookingStatus]entity.BookingStatus{
	entity.BookingStatusConfirmed: entity.BookingStatusPending,
	entity.BookingStatusRejected:  entity.BookingStatusPending,
	entity.BookingStatusCompleted: entity.BookingStatusConfirmed,
	entity.BookingStatusCancelled: entity.BookingStatusConfirmed,
}

type lifecycleService struct {
	repo     *repository.Repository
	slots    SlotService
	waitlist WaitlistService
	payments PaymentGateway
	log      *zap.Logger
}

func NewLifecycleService(repo *repository.Repository, slots SlotService, waitlist WaitlistService, payments PaymentGateway, log *zap.Logger) LifecycleService {
	return &lifecycleService{
		repo:     repo,
		slots:    slots,
		waitlist: waitlist,
		payments: payments,
		log:      log.With(zap.String("service", "lifecycle")),
	}
}

func (s *lifecycleService) Confirm(ctx context.Context, tenantID uuid.UUID, bookingID string) (*response.BookingResponse, error) {
	return s.transition(ctx, tenantID, bookingID, entity.BookingStatusConfirmed)
}

func (s *lifecycleService) Reject(ctx context.Context, tenantID uuid.UUID, bookingID string) (*response.BookingResponse, error) {
	return s.transition(ctx, tenantID, bookingID, entity.BookingStatusRejected)
}

func (s *lifecycleService) Complete(ctx context.Context, tenantID uuid.UUID, bookingID string) (*response.BookingResponse, error) {
	return s.transition(ctx, tenantID, bookingID, entity.BookingStatusCompleted)
}

func (s *lifecycleService) Cancel(ctx context.Context, tenantID uuid.UUID, bookingID string) (*response.BookingResponse, error) {
	return s.transition(ctx, tenantID, bookingID, entity.BookingStatusCancelled)
}

func (s *lifecycleService) transition(ctx context.Context, tenantID uuid.UUID, bookingID string, to entity.BookingStatus) (*response.BookingResponse, error) {
	booking, err := s.load(ctx, tenantID, bookingID)
	if err != nil {
		return nil, err
	}

	from := allowedFrom[to]
	if booking.Status != from {
		metrics.ObserveTransition(string(to), "rejected")
		return nil, fmt.Errorf("%w: cannot move from %s to %s", ErrInvalidTransition, booking.Status, to)
	}

	frees := to == entity.BookingStatusRejected || to == entity.BookingStatusCancelled

	var offered *entity.WaitlistEntry
	err = s.repo.Tx.WithinTx(ctx, func(ctx context.Context) error {
		ok, err := s.repo.Booking.UpdateStatus(ctx, tenantID, booking.ID, from, to)
		if err != nil {
			return err
		}
		if !ok {
			// another admin action won the race
			return fmt.Errorf("%w: booking is no longer %s", ErrInvalidTransition, from)
		}
		if !frees {
			return nil
		}

		ids, err := s.repo.Booking.FindSlotIDs(ctx, booking.ID)
		if err != nil {
			return err
		}
		offered, err = s.slots.Release(ctx, tenantID, booking.Date, ids)
		return err
	})

	// after commit, so a read racing the tx cannot re-cache claimed slots
	if frees {
		s.slots.Invalidate(ctx, tenantID, booking.Date)
	}

	if err != nil {
		metrics.ObserveTransition(string(to), "failed")
		return nil, fmt.Errorf("update booking status: %w", err)
	}

	metrics.ObserveTransition(string(to), "ok")
	s.log.Info("Booking status changed",
		zap.String("booking_id", booking.ID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	s.waitlist.AnnounceOpening(offered)

	booking.Status = to
	booking.UpdatedAt = time.Now()
	out := response.BookingToResponse(booking)
	return &out, nil
}

func (s *lifecycleService) MarkNoShow(ctx context.Context, tenantID uuid.UUID, bookingID string) (*response.BookingResponse, error) {
	booking, err := s.load(ctx, tenantID, bookingID)
	if err != nil {
		return nil, err
	}

	ok, err := s.repo.Booking.MarkNoShow(ctx, tenantID, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("mark no-show: %w", err)
	}
	if !ok {
		metrics.ObserveTransition("noshow", "rejected")
		return nil, fmt.Errorf("%w: no-show requires a confirmed or completed booking", ErrInvalidTransition)
	}

	metrics.ObserveTransition("noshow", "ok")
	s.log.Info("Booking marked no-show", zap.String("booking_id", booking.ID.String()))

	booking.MarkedNoShow = true
	out := response.BookingToResponse(booking)
	return &out, nil
}

func (s *lifecycleService) CreateTipIntent(ctx context.Context, tenantID uuid.UUID, bookingID string, req *request.TipIntentRequest) (*response.TipIntentResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, invalidFields(errs)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		return nil, invalid("amount must be a positive number")
	}
	amount = round2(amount)

	booking, err := s.load(ctx, tenantID, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != entity.BookingStatusCompleted {
		return nil, fmt.Errorf("%w: tips are collected for completed bookings only", ErrInvalidTransition)
	}

	tenant, err := s.repo.Tenant.FindByID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("find tenant: %w", err)
	}
	if tenant == nil {
		return nil, ErrNotFound
	}

	intent, err := s.payments.CreateIntent(ctx, tenant, amount, booking.CustomerEmail, "Tip for booking "+booking.Reference)
	if err != nil {
		return nil, fmt.Errorf("create tip intent: %w", err)
	}

	return &response.TipIntentResponse{
		BookingID:    booking.ID.String(),
		Amount:       amount.StringFixed(2),
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
	}, nil
}

func (s *lifecycleService) ListByDate(ctx context.Context, tenantID uuid.UUID, req *request.ListBookingsRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, invalidFields(errs)
	}

	date, err := utils.ParseDate(req.Date)
	if err != nil {
		return nil, invalid("date must be YYYY-MM-DD")
	}

	limit := req.Limit()
	offset := req.Offset()

	bookings, err := s.repo.Booking.ListByDate(ctx, tenantID, date, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	total, err := s.repo.Booking.CountByDate(ctx, tenantID, date)
	if err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}

	data := make([]response.BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		data = append(data, response.BookingToResponse(b))
	}

	return response.NewPaginatedResponse(data, req.Page, limit, total), nil
}

func (s *lifecycleService) load(ctx context.Context, tenantID uuid.UUID, bookingID string) (*entity.Booking, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, invalid("invalid booking id")
	}

	booking, err := s.repo.Booking.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("find booking: %w", err)
	}
	if booking == nil {
		return nil, ErrNotFound
	}
	return booking, nil
}
