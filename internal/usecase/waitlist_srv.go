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
	"go.uber.org/zap"
)

type WaitlistService interface {
	Join(ctx context.Context, tenantID uuid.UUID, req *request.JoinWaitlistRequest) (*response.WaitlistResponse, error)
	Cancel(ctx context.Context, tenantID uuid.UUID, entryID string) error

	// SlotsReleased offers the opening to the earliest waiting entry for
	// date and returns it, or nil when nobody is waiting. It runs inside the
	// caller's transaction; the caller announces the entry after commit.
	SlotsReleased(ctx context.Context, tenantID uuid.UUID, date time.Time) (*entity.WaitlistEntry, error)
	// AnnounceOpening sends the offer to the customer in the background.
	AnnounceOpening(entry *entity.WaitlistEntry)
	// SweepExpired expires overdue offers and cascades to the next entry.
	SweepExpired(ctx context.Context) (int, error)
}

type waitlistService struct {
	repo     *repository.Repository
	notifier Notifier
	config   utils.BookingConfig
	log      *zap.Logger
	now      func() time.Time
}

func NewWaitlistService(repo *repository.Repository, notifier Notifier, config utils.BookingConfig, log *zap.Logger) WaitlistService {
	return &waitlistService{
		repo:     repo,
		notifier: notifier,
		config:   config,
		log:      log.With(zap.String("service", "waitlist")),
		now:      time.Now,
	}
}

func (s *waitlistService) Join(ctx context.Context, tenantID uuid.UUID, req *request.JoinWaitlistRequest) (*response.WaitlistResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Join waitlist validation failed", zap.Any("errors", errs))
		return nil, invalidFields(errs)
	}

	date, err := utils.ParseDate(req.Date)
	if err != nil {
		return nil, invalid("invalid date")
	}
	if date.Before(today(s.now())) {
		return nil, invalid("date is in the past")
	}

	if req.PreferredStart != nil && req.PreferredEnd != nil {
		start, _ := utils.ParseClock(*req.PreferredStart)
		end, _ := utils.ParseClock(*req.PreferredEnd)
		if end <= start {
			return nil, invalid("preferredEnd must be after preferredStart")
		}
	}

	now := s.now()
	entry := &entity.WaitlistEntry{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		TenantID:       tenantID,
		CustomerName:   strings.TrimSpace(req.CustomerName),
		CustomerEmail:  strings.ToLower(strings.TrimSpace(req.CustomerEmail)),
		CustomerPhone:  req.CustomerPhone,
		Date:           date,
		PreferredStart: req.PreferredStart,
		PreferredEnd:   req.PreferredEnd,
		Status:         entity.WaitlistWaiting,
	}

	if err := s.repo.Waitlist.Create(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateWaitlist
		}
		return nil, fmt.Errorf("join waitlist: %w", err)
	}

	metrics.ObserveWaitlist("joined")
	s.log.Info("Waitlist entry created",
		zap.String("waitlist_id", entry.ID.String()),
		zap.String("tenant_id", tenantID.String()),
		zap.String("date", req.Date),
	)

	resp := response.WaitlistToResponse(entry)
	return &resp, nil
}

func (s *waitlistService) Cancel(ctx context.Context, tenantID uuid.UUID, entryID string) error {
	id, err := uuid.Parse(entryID)
	if err != nil {
		return invalid("invalid waitlist entry id")
	}

	entry, err := s.repo.Waitlist.FindByID(ctx, tenantID, id)
	if err != nil {
		return fmt.Errorf("find waitlist entry: %w", err)
	}
	if entry == nil {
		return ErrNotFound
	}

	ok, err := s.repo.Waitlist.Cancel(ctx, tenantID, id)
	if err != nil {
		return fmt.Errorf("cancel waitlist entry: %w", err)
	}
	if !ok {
		return ErrInvalidTransition
	}

	metrics.ObserveWaitlist("cancelled")
	return nil
}

func (s *waitlistService) SlotsReleased(ctx context.Context, tenantID uuid.UUID, date time.Time) (*entity.WaitlistEntry, error) {
	waiting, err := s.repo.Waitlist.ListWaiting(ctx, tenantID, date)
	if err != nil {
		return nil, fmt.Errorf("list waiting entries: %w", err)
	}

	now := s.now()
	expiresAt := now.Add(s.config.WaitlistHold)

	// A concurrent cascade may take the head of the queue first; the CAS
	// then fails and the next entry is tried.
	for _, entry := range waiting {
		ok, err := s.repo.Waitlist.MarkNotified(ctx, tenantID, entry.ID, now, expiresAt)
		if err != nil {
			return nil, fmt.Errorf("notify waitlist entry: %w", err)
		}
		if !ok {
			continue
		}

		entry.Status = entity.WaitlistNotified
		entry.NotifiedAt = &now
		entry.ExpiresAt = &expiresAt

		s.log.Info("Waitlist entry offered opening",
			zap.String("waitlist_id", entry.ID.String()),
			zap.String("tenant_id", tenantID.String()),
			zap.Time("expires_at", expiresAt),
		)
		return entry, nil
	}

	return nil, nil
}

func (s *waitlistService) AnnounceOpening(entry *entity.WaitlistEntry) {
	if entry == nil {
		return
	}
	metrics.ObserveWaitlist("notified")
	go s.dispatchOpening(entry)
}

func (s *waitlistService) SweepExpired(ctx context.Context) (int, error) {
	type tenantDate struct {
		tenantID uuid.UUID
		date     string
	}

	var expired, offered []*entity.WaitlistEntry
	err := s.repo.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		expired, err = s.repo.Waitlist.ExpireNotified(ctx, s.now())
		if err != nil {
			return fmt.Errorf("expire notified entries: %w", err)
		}

		offered = nil
		seen := make(map[tenantDate]bool)
		for _, entry := range expired {
			key := tenantDate{entry.TenantID, entry.Date.Format(utils.DateLayout)}
			if seen[key] {
				continue
			}
			seen[key] = true

			next, err := s.SlotsReleased(ctx, entry.TenantID, entry.Date)
			if err != nil {
				return fmt.Errorf("cascade after expiry on %s: %w", key.date, err)
			}
			if next != nil {
				offered = append(offered, next)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for range expired {
		metrics.ObserveWaitlist("expired")
	}
	for _, entry := range offered {
		s.AnnounceOpening(entry)
	}
	return len(expired), nil
}

func (s *waitlistService) dispatchOpening(entry *entity.WaitlistEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.NotifyTimeout)
	defer cancel()

	tenant, err := s.repo.Tenant.FindByID(ctx, entry.TenantID)
	if err != nil || tenant == nil {
		s.log.Error("Failed to load tenant for waitlist notification",
			zap.Error(err),
			zap.String("tenant_id", entry.TenantID.String()),
		)
		return
	}

	if err := s.notifier.NotifyWaitlistOpening(ctx, entry, tenant); err != nil {
		metrics.ObserveNotification("waitlist_opening", "failed")
		s.log.Error("Failed to send waitlist notification",
			zap.Error(err),
			zap.String("waitlist_id", entry.ID.String()),
		)
		return
	}
	metrics.ObserveNotification("waitlist_opening", "sent")
}

// today truncates t to its UTC calendar date.
func today(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
