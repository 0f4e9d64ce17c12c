package usecase

import (
	"context"

	"appointment-booking/pkg/database"

	"go.uber.org/zap"
)

type compensation struct {
	step string
	undo func(ctx context.Context) error
}

// compensations records undo steps for mutations made during a reservation.
// unwind runs them newest first.
type compensations []compensation

func (c *compensations) add(step string, undo func(ctx context.Context) error) {
	*c = append(*c, compensation{step: step, undo: undo})
}

func (c compensations) unwind(ctx context.Context, log *zap.Logger) {
	ctx = context.WithoutCancel(ctx)
	for i := len(c) - 1; i >= 0; i-- {
		err := c[i].undo(ctx)
		switch {
		case err == nil:
		case database.IsTxAborted(err):
			// the rollback undoes this step
			log.Debug("Compensation skipped in aborted transaction", zap.String("step", c[i].step))
		default:
			log.Warn("Compensation step failed", zap.String("step", c[i].step), zap.Error(err))
		}
	}
}
