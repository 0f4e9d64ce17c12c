package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"appointment-booking/internal/data/entity"
	"appointment-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type CustomerRepository interface {
	// Upsert inserts or refreshes the customer keyed by (tenant_id, email)
	// and returns the stored id.
	Upsert(ctx context.Context, customer *entity.Customer) (uuid.UUID, error)
	FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*entity.Customer, error)
}

type customerRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewCustomerRepository(db database.PgxIface, log *zap.Logger) CustomerRepository {
	return &customerRepository{
		db:  db,
		log: log.With(zap.String("repository", "customer")),
	}
}

func (r *customerRepository) Upsert(ctx context.Context, customer *entity.Customer) (uuid.UUID, error) {
	query := `
		INSERT INTO customers (id, tenant_id, name, email, phone, last_booking_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (tenant_id, email) DO UPDATE
		SET name = EXCLUDED.name,
		    phone = COALESCE(EXCLUDED.phone, customers.phone),
		    last_booking_at = EXCLUDED.last_booking_at,
		    updated_at = EXCLUDED.updated_at
		RETURNING id
	`

	var id uuid.UUID
	err := database.Conn(ctx, r.db).QueryRow(ctx, query,
		customer.ID,
		customer.TenantID,
		customer.Name,
		strings.ToLower(customer.Email),
		customer.Phone,
		customer.LastBookingAt,
		customer.CreatedAt,
		customer.UpdatedAt,
	).Scan(&id)

	if err != nil {
		r.log.Error("Failed to upsert customer",
			zap.Error(err),
			zap.String("tenant_id", customer.TenantID.String()),
		)
		return uuid.Nil, fmt.Errorf("upsert customer: %w", err)
	}

	return id, nil
}

func (r *customerRepository) FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*entity.Customer, error) {
	query := `
		SELECT id, tenant_id, name, email, phone, last_booking_at, created_at, updated_at
		FROM customers
		WHERE tenant_id = $1 AND email = $2
	`

	var c entity.Customer
	err := database.Conn(ctx, r.db).QueryRow(ctx, query, tenantID, strings.ToLower(email)).Scan(
		&c.ID,
		&c.TenantID,
		&c.Name,
		&c.Email,
		&c.Phone,
		&c.LastBookingAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find customer by email", zap.Error(err))
		return nil, fmt.Errorf("find customer by email: %w", err)
	}

	return &c, nil
}
