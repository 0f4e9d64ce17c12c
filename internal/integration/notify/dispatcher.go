package notify

import (
	"context"
	"fmt"
	"time"

	"appointment-booking/internal/data/entity"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// Publisher delivers one JSON event under a routing key.
type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
	Close() error
}

// Dispatcher turns booking and waitlist events into published messages.
type Dispatcher struct {
	pub      Publisher
	maxTries uint
	log      *zap.Logger
	now      func() time.Time
}

func NewDispatcher(pub Publisher, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		pub:      pub,
		maxTries: 3,
		log:      log.With(zap.String("integration", "notify")),
		now:      time.Now,
	}
}

func (d *Dispatcher) NotifyBookingPending(ctx context.Context, booking *entity.Booking, tenant *entity.Tenant) error {
	event := newBookingPendingEvent(booking, tenant, d.now().UTC())
	if err := d.publish(ctx, KeyBookingPending, event); err != nil {
		return fmt.Errorf("notify booking %s: %w", booking.Reference, err)
	}
	d.log.Info("Booking notification published",
		zap.String("tenant_id", event.TenantID),
		zap.String("booking_id", event.BookingID),
	)
	return nil
}

func (d *Dispatcher) NotifyWaitlistOpening(ctx context.Context, entry *entity.WaitlistEntry, tenant *entity.Tenant) error {
	event := newWaitlistOpeningEvent(entry, tenant, d.now().UTC())
	if err := d.publish(ctx, KeyWaitlistOpening, event); err != nil {
		return fmt.Errorf("notify waitlist entry %s: %w", event.EntryID, err)
	}
	d.log.Info("Waitlist notification published",
		zap.String("tenant_id", event.TenantID),
		zap.String("entry_id", event.EntryID),
	)
	return nil
}

func (d *Dispatcher) Close() error {
	return d.pub.Close()
}

func (d *Dispatcher) publish(ctx context.Context, key string, v any) error {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		if err := d.pub.PublishJSON(ctx, key, v); err != nil {
			d.log.Warn("Publish failed, retrying", zap.String("key", key), zap.Error(err))
			return struct{}{}, err
		}
		return struct{}{}, nil
	},
		backoff.WithBackOff(&backoff.ExponentialBackOff{
			InitialInterval:     100 * time.Millisecond,
			RandomizationFactor: backoff.DefaultRandomizationFactor,
			Multiplier:          backoff.DefaultMultiplier,
			MaxInterval:         time.Second,
		}),
		backoff.WithMaxTries(d.maxTries),
	)
	return err
}
