package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"appointment-booking/internal/data/entity"
	"appointment-booking/internal/data/repository"
	"appointment-booking/internal/dto/request"
	"appointment-booking/internal/dto/response"
	"appointment-booking/pkg/cache"
	"appointment-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SlotService interface {
	// ListAvailable is the cached read path for the public slot list.
	ListAvailable(ctx context.Context, tenantID uuid.UUID, date string) ([]response.SlotResponse, error)
	NextAvailable(ctx context.Context, tenantID uuid.UUID, req *request.NextAvailableRequest) (*response.NextAvailableResponse, error)

	// FindContiguous returns the run of slots starting at startTime that
	// covers durationMinutes, or nil when no such run is available.
	FindContiguous(ctx context.Context, tenantID uuid.UUID, date time.Time, startTime string, durationMinutes int) ([]*entity.TimeSlot, error)
	Claim(ctx context.Context, tenantID uuid.UUID, slotIDs []uuid.UUID) error
	// Release frees the slots and runs the waitlist cascade for date in the
	// caller's transaction, returning the entry offered the opening. The
	// caller invalidates the date and announces the offer after commit.
	Release(ctx context.Context, tenantID uuid.UUID, date time.Time, slotIDs []uuid.UUID) (*entity.WaitlistEntry, error)
	Invalidate(ctx context.Context, tenantID uuid.UUID, date time.Time)
}

// ReleaseListener is told when slots on a date become available again.
type ReleaseListener interface {
	SlotsReleased(ctx context.Context, tenantID uuid.UUID, date time.Time) (*entity.WaitlistEntry, error)
}

// NextSlot is the earliest bookable run found by NextAvailable.
type NextSlot struct {
	Date      time.Time
	StartTime string
	SlotIDs   []uuid.UUID
}

type slotService struct {
	repo     *repository.Repository
	cache    cache.Cache
	listener ReleaseListener
	config   utils.BookingConfig
	cacheTTL time.Duration
	log      *zap.Logger
	now      func() time.Time
}

func NewSlotService(repo *repository.Repository, c cache.Cache, listener ReleaseListener, config *utils.Config, log *zap.Logger) SlotService {
	return &slotService{
		repo:     repo,
		cache:    c,
		listener: listener,
		config:   config.Booking,
		cacheTTL: config.Redis.CacheTTL,
		log:      log.With(zap.String("service", "slot")),
		now:      time.Now,
	}
}

func slotCacheKey(tenantID uuid.UUID, date time.Time) string {
	return fmt.Sprintf("slots:%s:%s", tenantID, date.Format(utils.DateLayout))
}

func (s *slotService) ListAvailable(ctx context.Context, tenantID uuid.UUID, dateStr string) ([]response.SlotResponse, error) {
	date, err := utils.ParseDate(dateStr)
	if err != nil {
		return nil, invalid("date must be YYYY-MM-DD")
	}

	key := slotCacheKey(tenantID, date)
	if raw, ok, err := s.cache.Get(ctx, key); err != nil {
		s.log.Warn("Slot cache read failed", zap.Error(err), zap.String("key", key))
	} else if ok {
		var cached []response.SlotResponse
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	}

	slots, err := s.repo.Slot.ListAvailable(ctx, tenantID, date)
	if err != nil {
		return nil, fmt.Errorf("list available slots: %w", err)
	}

	result := make([]response.SlotResponse, 0, len(slots))
	for _, slot := range slots {
		result = append(result, response.SlotToResponse(slot))
	}

	if raw, err := json.Marshal(result); err == nil {
		if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
			s.log.Warn("Slot cache write failed", zap.Error(err), zap.String("key", key))
		}
	}

	return result, nil
}

func (s *slotService) NextAvailable(ctx context.Context, tenantID uuid.UUID, req *request.NextAvailableRequest) (*response.NextAvailableResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, invalidFields(errs)
	}

	ids, err := utils.ParseUUIDList(req.ServiceIDs)
	if err != nil || len(ids) == 0 {
		return nil, invalid("serviceIds must be a comma separated list of ids")
	}

	services, err := s.repo.Service.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("find services: %w", err)
	}
	ordered, err := orderActiveServices(services, dedupeIDs(ids))
	if err != nil {
		return nil, err
	}

	duration := 0
	for _, svc := range ordered {
		duration += svc.DurationMinutes
	}

	from := today(s.now())
	if req.From != "" {
		parsed, err := utils.ParseDate(req.From)
		if err != nil {
			return nil, invalid("from must be YYYY-MM-DD")
		}
		if parsed.After(from) {
			from = parsed
		}
	}

	next, err := s.findNext(ctx, tenantID, duration, from, s.config.HorizonDays)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return &response.NextAvailableResponse{Found: false}, nil
	}

	slotIDs := make([]string, len(next.SlotIDs))
	for i, id := range next.SlotIDs {
		slotIDs[i] = id.String()
	}
	return &response.NextAvailableResponse{
		Found:   true,
		Date:    next.Date.Format(utils.DateLayout),
		Time:    next.StartTime,
		SlotIDs: slotIDs,
	}, nil
}

// findNext scans from..from+horizonDays-1 and returns the earliest run,
// ordered by date then start time.
func (s *slotService) findNext(ctx context.Context, tenantID uuid.UUID, durationMinutes int, from time.Time, horizonDays int) (*NextSlot, error) {
	if horizonDays <= 0 {
		horizonDays = 30
	}
	to := from.AddDate(0, 0, horizonDays-1)

	slots, err := s.repo.Slot.ListAvailableRange(ctx, tenantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list available slot range: %w", err)
	}

	// slots arrive ordered by date then start time
	for start := 0; start < len(slots); {
		end := start
		for end < len(slots) && slots[end].Date.Equal(slots[start].Date) {
			end++
		}

		day := slots[start:end]
		for i := range day {
			if run := contiguousRun(day, i, durationMinutes); run != nil {
				return &NextSlot{
					Date:      day[i].Date,
					StartTime: day[i].StartTime,
					SlotIDs:   slotIDs(run),
				}, nil
			}
		}
		start = end
	}

	return nil, nil
}

func (s *slotService) FindContiguous(ctx context.Context, tenantID uuid.UUID, date time.Time, startTime string, durationMinutes int) ([]*entity.TimeSlot, error) {
	slots, err := s.repo.Slot.ListAvailable(ctx, tenantID, date)
	if err != nil {
		return nil, fmt.Errorf("list available slots: %w", err)
	}

	for i, slot := range slots {
		if slot.StartTime == startTime {
			return contiguousRun(slots, i, durationMinutes), nil
		}
	}
	return nil, nil
}

func (s *slotService) Claim(ctx context.Context, tenantID uuid.UUID, slotIDs []uuid.UUID) error {
	if err := s.repo.Slot.Claim(ctx, tenantID, slotIDs); err != nil {
		if errors.Is(err, repository.ErrSlotConflict) {
			return ErrSlotConflict
		}
		return fmt.Errorf("claim slots: %w", err)
	}
	return nil
}

func (s *slotService) Release(ctx context.Context, tenantID uuid.UUID, date time.Time, slotIDs []uuid.UUID) (*entity.WaitlistEntry, error) {
	released, err := s.repo.Slot.Release(ctx, tenantID, slotIDs)
	if err != nil {
		return nil, fmt.Errorf("release slots: %w", err)
	}

	s.log.Info("Slots released",
		zap.String("tenant_id", tenantID.String()),
		zap.String("date", date.Format(utils.DateLayout)),
		zap.Int64("released", released),
	)

	if released == 0 || s.listener == nil {
		return nil, nil
	}
	offered, err := s.listener.SlotsReleased(ctx, tenantID, date)
	if err != nil {
		return nil, fmt.Errorf("waitlist cascade: %w", err)
	}
	return offered, nil
}

func (s *slotService) Invalidate(ctx context.Context, tenantID uuid.UUID, date time.Time) {
	key := slotCacheKey(tenantID, date)
	if err := s.cache.Delete(ctx, key); err != nil {
		s.log.Warn("Slot cache invalidation failed", zap.Error(err), zap.String("key", key))
	}
}

// contiguousRun returns slots[i:i+n] when they cover durationMinutes without
// gaps, n being derived from the granularity of slots[i].
func contiguousRun(slots []*entity.TimeSlot, i, durationMinutes int) []*entity.TimeSlot {
	if i < 0 || i >= len(slots) || durationMinutes <= 0 {
		return nil
	}

	first := slots[i]
	start, err1 := utils.ParseClock(first.StartTime)
	end, err2 := utils.ParseClock(first.EndTime)
	if err1 != nil || err2 != nil || end <= start {
		return nil
	}

	granularity := end - start
	needed := (durationMinutes + granularity - 1) / granularity
	if i+needed > len(slots) {
		return nil
	}

	run := slots[i : i+needed]
	for k := 0; k < len(run); k++ {
		if !run[k].IsAvailable {
			return nil
		}
		if k > 0 && run[k-1].EndTime != run[k].StartTime {
			return nil
		}
	}
	return run
}

func slotIDs(slots []*entity.TimeSlot) []uuid.UUID {
	ids := make([]uuid.UUID, len(slots))
	for i, slot := range slots {
		ids[i] = slot.ID
	}
	return ids
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// orderActiveServices returns services in the order of ids and fails when
// any id is unknown or inactive.
func orderActiveServices(services []*entity.Service, ids []uuid.UUID) ([]*entity.Service, error) {
	byID := make(map[uuid.UUID]*entity.Service, len(services))
	for _, svc := range services {
		byID[svc.ID] = svc
	}

	ordered := make([]*entity.Service, 0, len(ids))
	for _, id := range ids {
		svc, ok := byID[id]
		if !ok || !svc.IsActive {
			return nil, &ValidationError{
				Message: "service not found or inactive",
				Fields:  map[string]string{"serviceIds": id.String()},
			}
		}
		ordered = append(ordered, svc)
	}
	return ordered, nil
}
