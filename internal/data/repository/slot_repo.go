package repository

import (
	"context"
	"fmt"
	"time"

	"appointment-booking/internal/data/entity"
	"appointment-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type SlotRepository interface {
	ListAvailable(ctx context.Context, tenantID uuid.UUID, date time.Time) ([]*entity.TimeSlot, error)
	// ListAvailableRange returns available slots for from..to inclusive,
	// ordered by date then start time.
	ListAvailableRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]*entity.TimeSlot, error)
	// Claim marks every slot unavailable or none of them, returning
	// ErrSlotConflict when any slot was already taken.
	Claim(ctx context.Context, tenantID uuid.UUID, slotIDs []uuid.UUID) error
	Release(ctx context.Context, tenantID uuid.UUID, slotIDs []uuid.UUID) (int64, error)
}

type slotRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSlotRepository(db database.PgxIface, log *zap.Logger) SlotRepository {
	return &slotRepository{
		db:  db,
		log: log.With(zap.String("repository", "slot")),
	}
}

const slotColumns = `id, tenant_id, date, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'),
		       is_available, created_at, updated_at`

func (r *slotRepository) ListAvailable(ctx context.Context, tenantID uuid.UUID, date time.Time) ([]*entity.TimeSlot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM time_slots
		WHERE tenant_id = $1 AND date = $2 AND is_available = true
		ORDER BY start_time ASC
	`

	rows, err := database.Conn(ctx, r.db).Query(ctx, query, tenantID, date)
	if err != nil {
		r.log.Error("Failed to list available slots",
			zap.Error(err),
			zap.String("tenant_id", tenantID.String()),
			zap.Time("date", date),
		)
		return nil, fmt.Errorf("list available slots: %w", err)
	}
	return r.collect(rows)
}

func (r *slotRepository) ListAvailableRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]*entity.TimeSlot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM time_slots
		WHERE tenant_id = $1 AND date BETWEEN $2 AND $3 AND is_available = true
		ORDER BY date ASC, start_time ASC
	`

	rows, err := database.Conn(ctx, r.db).Query(ctx, query, tenantID, from, to)
	if err != nil {
		r.log.Error("Failed to list available slot range",
			zap.Error(err),
			zap.String("tenant_id", tenantID.String()),
		)
		return nil, fmt.Errorf("list available slot range: %w", err)
	}
	return r.collect(rows)
}

func (r *slotRepository) collect(rows pgx.Rows) ([]*entity.TimeSlot, error) {
	defer rows.Close()

	var slots []*entity.TimeSlot
	for rows.Next() {
		var s entity.TimeSlot
		if err := rows.Scan(
			&s.ID,
			&s.TenantID,
			&s.Date,
			&s.StartTime,
			&s.EndTime,
			&s.IsAvailable,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			r.log.Error("Failed to scan slot", zap.Error(err))
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots: %w", err)
	}
	return slots, nil
}

func (r *slotRepository) Claim(ctx context.Context, tenantID uuid.UUID, slotIDs []uuid.UUID) error {
	if len(slotIDs) == 0 {
		return nil
	}

	// The row locks serialise competing claims; the loser re-reads
	// is_available after the winner commits and sees fewer free rows.
	query := `
		WITH target AS (
			SELECT id FROM time_slots
			WHERE tenant_id = $1 AND id = ANY($2::uuid[]) AND is_available = true
			FOR UPDATE
		), guard AS (
			SELECT count(*) = $3 AS all_free FROM target
		)
		UPDATE time_slots t
		SET is_available = false, updated_at = NOW()
		FROM target, guard
		WHERE t.id = target.id AND guard.all_free
	`

	tag, err := database.Conn(ctx, r.db).Exec(ctx, query, tenantID, uuidStrings(slotIDs), len(slotIDs))
	if err != nil {
		r.log.Error("Failed to claim slots",
			zap.Error(err),
			zap.String("tenant_id", tenantID.String()),
			zap.Int("count", len(slotIDs)),
		)
		return fmt.Errorf("claim slots: %w", err)
	}

	if tag.RowsAffected() < int64(len(slotIDs)) {
		return ErrSlotConflict
	}
	return nil
}

func (r *slotRepository) Release(ctx context.Context, tenantID uuid.UUID, slotIDs []uuid.UUID) (int64, error) {
	if len(slotIDs) == 0 {
		return 0, nil
	}

	query := `
		UPDATE time_slots
		SET is_available = true, updated_at = NOW()
		WHERE tenant_id = $1 AND id = ANY($2::uuid[]) AND is_available = false
	`

	tag, err := database.Conn(ctx, r.db).Exec(ctx, query, tenantID, uuidStrings(slotIDs))
	if err != nil {
		r.log.Error("Failed to release slots",
			zap.Error(err),
			zap.String("tenant_id", tenantID.String()),
		)
		return 0, fmt.Errorf("release slots: %w", err)
	}
	return tag.RowsAffected(), nil
}
