package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper expires waitlist offers that were not taken up in time.
type Sweeper interface {
	SweepExpired(ctx context.Context) (int, error)
}

// WaitlistSweepWorker runs the sweep on a fixed interval until its context ends.
type WaitlistSweepWorker struct {
	sweeper  Sweeper
	interval time.Duration
	log      *zap.Logger
}

func NewWaitlistSweepWorker(sweeper Sweeper, interval time.Duration, log *zap.Logger) *WaitlistSweepWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &WaitlistSweepWorker{
		sweeper:  sweeper,
		interval: interval,
		log:      log.With(zap.String("worker", "waitlist_sweep")),
	}
}

func (w *WaitlistSweepWorker) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("Waitlist sweep worker started", zap.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Waitlist sweep worker stopped")
			return nil
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *WaitlistSweepWorker) runOnce(ctx context.Context) {
	expired, err := w.sweeper.SweepExpired(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		w.log.Error("Waitlist sweep failed", zap.Error(err))
		return
	}
	if expired > 0 {
		w.log.Info("Expired waitlist offers", zap.Int("count", expired))
	}
}
