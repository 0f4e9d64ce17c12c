package repository

import (
	"context"
	"errors"
	"fmt"

	"appointment-booking/internal/data/entity"
	"appointment-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type CustomerPackageRepository interface {
	// FindByID loads the package with its covered services and owner email.
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*entity.CustomerPackage, error)
	// ConsumeSession uses one session and records the usage, or returns
	// ErrExhausted.
	ConsumeSession(ctx context.Context, tenantID, id, bookingID uuid.UUID) (int, error)
	RestoreSession(ctx context.Context, tenantID, id, bookingID uuid.UUID) (int, error)
}

type customerPackageRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewCustomerPackageRepository(db database.PgxIface, log *zap.Logger) CustomerPackageRepository {
	return &customerPackageRepository{
		db:  db,
		log: log.With(zap.String("repository", "customer_package")),
	}
}

func (r *customerPackageRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*entity.CustomerPackage, error) {
	query := `
		SELECT cp.id, cp.tenant_id, cp.customer_id, cp.package_id, cp.sessions_remaining,
		       cp.sessions_used, cp.status, cp.expires_at, cp.created_at, cp.updated_at,
		       p.service_ids::text[], c.email
		FROM customer_packages cp
		JOIN packages p ON p.id = cp.package_id
		JOIN customers c ON c.id = cp.customer_id
		WHERE cp.tenant_id = $1 AND cp.id = $2
	`

	var (
		cp         entity.CustomerPackage
		serviceIDs []string
	)
	err := database.Conn(ctx, r.db).QueryRow(ctx, query, tenantID, id).Scan(
		&cp.ID,
		&cp.TenantID,
		&cp.CustomerID,
		&cp.PackageID,
		&cp.SessionsRemaining,
		&cp.SessionsUsed,
		&cp.Status,
		&cp.ExpiresAt,
		&cp.CreatedAt,
		&cp.UpdatedAt,
		&serviceIDs,
		&cp.CustomerEmail,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find customer package", zap.Error(err), zap.String("customer_package_id", id.String()))
		return nil, fmt.Errorf("find customer package %s: %w", id, err)
	}

	if cp.CoveredServiceIDs, err = parseUUIDs(serviceIDs); err != nil {
		return nil, fmt.Errorf("parse package service ids: %w", err)
	}
	return &cp, nil
}

func (r *customerPackageRepository) ConsumeSession(ctx context.Context, tenantID, id, bookingID uuid.UUID) (int, error) {
	query := `
		WITH used AS (
			UPDATE customer_packages
			SET sessions_remaining = sessions_remaining - 1,
			    sessions_used = sessions_used + 1,
			    status = CASE WHEN sessions_remaining - 1 = 0 THEN 'exhausted' ELSE status END,
			    updated_at = NOW()
			WHERE tenant_id = $1 AND id = $2 AND status = 'active' AND sessions_remaining > 0
			RETURNING id, sessions_remaining
		), usage AS (
			INSERT INTO package_usage (id, customer_package_id, booking_id, created_at)
			SELECT $4, id, $3, NOW() FROM used
		)
		SELECT sessions_remaining FROM used
	`

	var remaining int
	err := database.Conn(ctx, r.db).QueryRow(ctx, query, tenantID, id, bookingID, uuid.New()).Scan(&remaining)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrExhausted
	}
	if err != nil {
		r.log.Error("Failed to consume package session",
			zap.Error(err),
			zap.String("customer_package_id", id.String()),
			zap.String("booking_id", bookingID.String()),
		)
		return 0, fmt.Errorf("consume package session %s: %w", id, err)
	}

	return remaining, nil
}

func (r *customerPackageRepository) RestoreSession(ctx context.Context, tenantID, id, bookingID uuid.UUID) (int, error) {
	query := `
		WITH restored AS (
			UPDATE customer_packages
			SET sessions_remaining = sessions_remaining + 1,
			    sessions_used = sessions_used - 1,
			    status = CASE WHEN status = 'exhausted' THEN 'active' ELSE status END,
			    updated_at = NOW()
			WHERE tenant_id = $1 AND id = $2 AND sessions_used > 0
			RETURNING id, sessions_remaining
		), removed AS (
			DELETE FROM package_usage
			WHERE customer_package_id = $2 AND booking_id = $3
		)
		SELECT sessions_remaining FROM restored
	`

	var remaining int
	err := database.Conn(ctx, r.db).QueryRow(ctx, query, tenantID, id, bookingID).Scan(&remaining)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		r.log.Error("Failed to restore package session", zap.Error(err), zap.String("customer_package_id", id.String()))
		return 0, fmt.Errorf("restore package session %s: %w", id, err)
	}

	return remaining, nil
}
