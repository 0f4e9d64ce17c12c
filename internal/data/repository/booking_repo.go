package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"appointment-booking/internal/data/entity"
	"appointment-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*entity.Booking, error)
	ListByDate(ctx context.Context, tenantID uuid.UUID, date time.Time, limit, offset int) ([]*entity.Booking, error)
	CountByDate(ctx context.Context, tenantID uuid.UUID, date time.Time) (int64, error)
	CountCreatedSince(ctx context.Context, tenantID uuid.UUID, since time.Time) (int64, error)

	// UpdateStatus moves a booking from one status to another and reports
	// false when the booking was no longer in the expected status.
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, from, to entity.BookingStatus) (bool, error)
	MarkNoShow(ctx context.Context, tenantID, id uuid.UUID) (bool, error)

	// Slot ownership
	CreateSlots(ctx context.Context, links []*entity.BookingSlot) error
	FindSlotIDs(ctx context.Context, bookingID uuid.UUID) ([]uuid.UUID, error)
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `
	id, reference, tenant_id, customer_id, customer_name, customer_email, customer_phone,
	service_ids::text[], date, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'),
	subtotal, discount_amount, gift_card_amount, total_price, deposit_amount, deposit_status,
	deposit_payment_intent_id, status, marked_noshow, discount_code_id, gift_card_id,
	customer_package_id, reminder_24h_sent, sms_24h_sent, created_at, updated_at`

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (
			id, reference, tenant_id, customer_id, customer_name, customer_email, customer_phone,
			service_ids, date, start_time, end_time,
			subtotal, discount_amount, gift_card_amount, total_price, deposit_amount, deposit_status,
			deposit_payment_intent_id, status, marked_noshow, discount_code_id, gift_card_id,
			customer_package_id, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::uuid[], $9, $10::text::time, $11::text::time,
			$12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
	`

	_, err := database.Conn(ctx, r.db).Exec(ctx, query,
		booking.ID,
		booking.Reference,
		booking.TenantID,
		booking.CustomerID,
		booking.CustomerName,
		booking.CustomerEmail,
		booking.CustomerPhone,
		uuidStrings(booking.ServiceIDs),
		booking.Date,
		booking.StartTime,
		booking.EndTime,
		booking.Subtotal,
		booking.DiscountAmount,
		booking.GiftCardAmount,
		booking.TotalPrice,
		booking.DepositAmount,
		booking.DepositStatus,
		booking.DepositPaymentIntentID,
		booking.Status,
		booking.MarkedNoShow,
		booking.DiscountCodeID,
		booking.GiftCardID,
		booking.CustomerPackageID,
		booking.CreatedAt,
		booking.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("reference", booking.Reference),
			zap.String("tenant_id", booking.TenantID.String()),
		)
		return fmt.Errorf("create booking %s: %w", booking.Reference, err)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE tenant_id = $1 AND id = $2`

	booking, err := scanBooking(database.Conn(ctx, r.db).QueryRow(ctx, query, tenantID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id, err)
	}

	return booking, nil
}

func (r *bookingRepository) ListByDate(ctx context.Context, tenantID uuid.UUID, date time.Time, limit, offset int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE tenant_id = $1 AND date = $2
		ORDER BY start_time ASC, created_at ASC
		LIMIT $3 OFFSET $4
	`

	rows, err := database.Conn(ctx, r.db).Query(ctx, query, tenantID, date, limit, offset)
	if err != nil {
		r.log.Error("Failed to list bookings by date",
			zap.Error(err),
			zap.String("tenant_id", tenantID.String()),
		)
		return nil, fmt.Errorf("list bookings by date: %w", err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking", zap.Error(err))
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}

	return bookings, nil
}

func (r *bookingRepository) CountByDate(ctx context.Context, tenantID uuid.UUID, date time.Time) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE tenant_id = $1 AND date = $2`

	var count int64
	if err := database.Conn(ctx, r.db).QueryRow(ctx, query, tenantID, date).Scan(&count); err != nil {
		r.log.Error("Failed to count bookings by date", zap.Error(err))
		return 0, fmt.Errorf("count bookings by date: %w", err)
	}
	return count, nil
}

func (r *bookingRepository) CountCreatedSince(ctx context.Context, tenantID uuid.UUID, since time.Time) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE tenant_id = $1 AND created_at >= $2`

	var count int64
	if err := database.Conn(ctx, r.db).QueryRow(ctx, query, tenantID, since).Scan(&count); err != nil {
		r.log.Error("Failed to count bookings",
			zap.Error(err),
			zap.String("tenant_id", tenantID.String()),
		)
		return 0, fmt.Errorf("count bookings since %s: %w", since.Format(time.RFC3339), err)
	}
	return count, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, from, to entity.BookingStatus) (bool, error) {
	query := `
		UPDATE bookings
		SET status = $4, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2 AND status = $3
	`

	tag, err := database.Conn(ctx, r.db).Exec(ctx, query, tenantID, id, from, to)
	if err != nil {
		r.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.String("booking_id", id.String()),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
		)
		return false, fmt.Errorf("update booking status: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

func (r *bookingRepository) MarkNoShow(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	query := `
		UPDATE bookings
		SET marked_noshow = true, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2 AND status IN ('confirmed', 'completed')
	`

	tag, err := database.Conn(ctx, r.db).Exec(ctx, query, tenantID, id)
	if err != nil {
		r.log.Error("Failed to mark booking no-show",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return false, fmt.Errorf("mark booking no-show: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

func (r *bookingRepository) CreateSlots(ctx context.Context, links []*entity.BookingSlot) error {
	query := `
		INSERT INTO booking_slots (id, booking_id, slot_id, created_at)
		VALUES ($1, $2, $3, $4)
	`

	conn := database.Conn(ctx, r.db)
	for _, link := range links {
		if _, err := conn.Exec(ctx, query, link.ID, link.BookingID, link.SlotID, link.CreatedAt); err != nil {
			r.log.Error("Failed to create booking slot",
				zap.Error(err),
				zap.String("booking_id", link.BookingID.String()),
				zap.String("slot_id", link.SlotID.String()),
			)
			return fmt.Errorf("create booking slot for booking %s slot %s: %w",
				link.BookingID, link.SlotID, err)
		}
	}

	return nil
}

func (r *bookingRepository) FindSlotIDs(ctx context.Context, bookingID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT slot_id FROM booking_slots WHERE booking_id = $1`

	rows, err := database.Conn(ctx, r.db).Query(ctx, query, bookingID)
	if err != nil {
		r.log.Error("Failed to find booking slots",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("find slots for booking %s: %w", bookingID, err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan booking slot: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booking slots: %w", err)
	}
	return ids, nil
}

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var (
		b          entity.Booking
		serviceIDs []string
	)
	err := row.Scan(
		&b.ID,
		&b.Reference,
		&b.TenantID,
		&b.CustomerID,
		&b.CustomerName,
		&b.CustomerEmail,
		&b.CustomerPhone,
		&serviceIDs,
		&b.Date,
		&b.StartTime,
		&b.EndTime,
		&b.Subtotal,
		&b.DiscountAmount,
		&b.GiftCardAmount,
		&b.TotalPrice,
		&b.DepositAmount,
		&b.DepositStatus,
		&b.DepositPaymentIntentID,
		&b.Status,
		&b.MarkedNoShow,
		&b.DiscountCodeID,
		&b.GiftCardID,
		&b.CustomerPackageID,
		&b.Reminder24hSent,
		&b.SMS24hSent,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if b.ServiceIDs, err = parseUUIDs(serviceIDs); err != nil {
		return nil, fmt.Errorf("parse service ids: %w", err)
	}
	return &b, nil
}
