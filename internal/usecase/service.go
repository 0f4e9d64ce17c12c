package usecase

import (
	"appointment-booking/internal/data/repository"
	"appointment-booking/pkg/cache"
	"appointment-booking/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Slot        SlotService
	Redemption  RedemptionService
	Reservation ReservationService
	Lifecycle   LifecycleService
	Waitlist    WaitlistService
	Auth        AuthService
}

func NewService(
	repo *repository.Repository,
	slotCache cache.Cache,
	payments PaymentGateway,
	notifier Notifier,
	tokens TokenIssuer,
	config *utils.Config,
	log *zap.Logger,
) *Service {
	waitlist := NewWaitlistService(repo, notifier, config.Booking, log)
	slot := NewSlotService(repo, slotCache, waitlist, config, log)
	redemption := NewRedemptionService(repo, log)

	return &Service{
		Slot:        slot,
		Redemption:  redemption,
		Reservation: NewReservationService(repo, slot, redemption, payments, notifier, config.Booking, log),
		Lifecycle:   NewLifecycleService(repo, slot, waitlist, payments, log),
		Waitlist:    waitlist,
		Auth:        NewAuthService(repo, tokens, config.JWT, log),
	}
}
