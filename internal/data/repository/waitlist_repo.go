package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"appointment-booking/internal/data/entity"
	"appointment-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type WaitlistRepository interface {
	// Create returns ErrDuplicate when the email already has an open entry
	// for the date.
	Create(ctx context.Context, entry *entity.WaitlistEntry) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*entity.WaitlistEntry, error)
	ListWaiting(ctx context.Context, tenantID uuid.UUID, date time.Time) ([]*entity.WaitlistEntry, error)
	MarkNotified(ctx context.Context, tenantID, id uuid.UUID, notifiedAt, expiresAt time.Time) (bool, error)
	Cancel(ctx context.Context, tenantID, id uuid.UUID) (bool, error)
	// ExpireNotified moves overdue notified entries to expired and returns them.
	ExpireNotified(ctx context.Context, now time.Time) ([]*entity.WaitlistEntry, error)
}

type waitlistRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewWaitlistRepository(db database.PgxIface, log *zap.Logger) WaitlistRepository {
	return &waitlistRepository{
		db:  db,
		log: log.With(zap.String("repository", "waitlist")),
	}
}

const waitlistColumns = `
	id, tenant_id, customer_name, customer_email, customer_phone, date,
	to_char(preferred_start, 'HH24:MI'), to_char(preferred_end, 'HH24:MI'),
	status, notified_at, expires_at, created_at, updated_at`

func (r *waitlistRepository) Create(ctx context.Context, entry *entity.WaitlistEntry) error {
	query := `
		INSERT INTO waitlist (id, tenant_id, customer_name, customer_email, customer_phone, date,
			preferred_start, preferred_end, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::text::time, $8::text::time, $9, $10, $11)
	`

	_, err := database.Conn(ctx, r.db).Exec(ctx, query,
		entry.ID,
		entry.TenantID,
		entry.CustomerName,
		strings.ToLower(entry.CustomerEmail),
		entry.CustomerPhone,
		entry.Date,
		entry.PreferredStart,
		entry.PreferredEnd,
		entry.Status,
		entry.CreatedAt,
		entry.UpdatedAt,
	)

	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		r.log.Error("Failed to create waitlist entry",
			zap.Error(err),
			zap.String("tenant_id", entry.TenantID.String()),
		)
		return fmt.Errorf("create waitlist entry: %w", err)
	}

	return nil
}

func (r *waitlistRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*entity.WaitlistEntry, error) {
	query := `SELECT ` + waitlistColumns + ` FROM waitlist WHERE tenant_id = $1 AND id = $2`

	entry, err := scanWaitlistEntry(database.Conn(ctx, r.db).QueryRow(ctx, query, tenantID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find waitlist entry", zap.Error(err), zap.String("waitlist_id", id.String()))
		return nil, fmt.Errorf("find waitlist entry %s: %w", id, err)
	}
	return entry, nil
}

func (r *waitlistRepository) ListWaiting(ctx context.Context, tenantID uuid.UUID, date time.Time) ([]*entity.WaitlistEntry, error) {
	query := `
		SELECT ` + waitlistColumns + `
		FROM waitlist
		WHERE tenant_id = $1 AND date = $2 AND status = 'waiting'
		ORDER BY created_at ASC
	`

	rows, err := database.Conn(ctx, r.db).Query(ctx, query, tenantID, date)
	if err != nil {
		r.log.Error("Failed to list waiting entries", zap.Error(err), zap.String("tenant_id", tenantID.String()))
		return nil, fmt.Errorf("list waiting entries: %w", err)
	}
	defer rows.Close()

	var entries []*entity.WaitlistEntry
	for rows.Next() {
		entry, err := scanWaitlistEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan waitlist entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate waitlist entries: %w", err)
	}
	return entries, nil
}

func (r *waitlistRepository) MarkNotified(ctx context.Context, tenantID, id uuid.UUID, notifiedAt, expiresAt time.Time) (bool, error) {
	query := `
		UPDATE waitlist
		SET status = 'notified', notified_at = $3, expires_at = $4, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2 AND status = 'waiting'
	`

	tag, err := database.Conn(ctx, r.db).Exec(ctx, query, tenantID, id, notifiedAt, expiresAt)
	if err != nil {
		r.log.Error("Failed to mark waitlist entry notified", zap.Error(err), zap.String("waitlist_id", id.String()))
		return false, fmt.Errorf("mark waitlist entry %s notified: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *waitlistRepository) Cancel(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	query := `
		UPDATE waitlist
		SET status = 'cancelled', updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2 AND status IN ('waiting', 'notified')
	`

	tag, err := database.Conn(ctx, r.db).Exec(ctx, query, tenantID, id)
	if err != nil {
		r.log.Error("Failed to cancel waitlist entry", zap.Error(err), zap.String("waitlist_id", id.String()))
		return false, fmt.Errorf("cancel waitlist entry %s: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *waitlistRepository) ExpireNotified(ctx context.Context, now time.Time) ([]*entity.WaitlistEntry, error) {
	query := `
		UPDATE waitlist
		SET status = 'expired', updated_at = NOW()
		WHERE status = 'notified' AND expires_at < $1
		RETURNING ` + waitlistColumns

	rows, err := database.Conn(ctx, r.db).Query(ctx, query, now)
	if err != nil {
		r.log.Error("Failed to expire notified entries", zap.Error(err))
		return nil, fmt.Errorf("expire notified entries: %w", err)
	}
	defer rows.Close()

	var entries []*entity.WaitlistEntry
	for rows.Next() {
		entry, err := scanWaitlistEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expired entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expired entries: %w", err)
	}
	return entries, nil
}

func scanWaitlistEntry(row pgx.Row) (*entity.WaitlistEntry, error) {
	var e entity.WaitlistEntry
	err := row.Scan(
		&e.ID,
		&e.TenantID,
		&e.CustomerName,
		&e.CustomerEmail,
		&e.CustomerPhone,
		&e.Date,
		&e.PreferredStart,
		&e.PreferredEnd,
		&e.Status,
		&e.NotifiedAt,
		&e.ExpiresAt,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
