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

type TenantAdminRepository interface {
	Create(ctx context.Context, admin *entity.TenantAdmin) error
	FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*entity.TenantAdmin, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type tenantAdminRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTenantAdminRepository(db database.PgxIface, log *zap.Logger) TenantAdminRepository {
	return &tenantAdminRepository{
		db:  db,
		log: log.With(zap.String("repository", "tenant_admin")),
	}
}

// Create inserts a new admin account; the email is stored lower-cased.
func (r *tenantAdminRepository) Create(ctx context.Context, admin *entity.TenantAdmin) error {
	query := `
		INSERT INTO tenant_admins (id, tenant_id, email, password_hash, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := database.Conn(ctx, r.db).Exec(ctx, query,
		admin.ID,
		admin.TenantID,
		strings.ToLower(admin.Email),
		admin.PasswordHash,
		admin.IsActive,
		admin.CreatedAt,
		admin.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		r.log.Error("Failed to create tenant admin",
			zap.Error(err),
			zap.String("tenant_id", admin.TenantID.String()),
			zap.String("email", admin.Email),
		)
		return fmt.Errorf("create tenant admin %s: %w", admin.Email, err)
	}

	return nil
}

func (r *tenantAdminRepository) FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*entity.TenantAdmin, error) {
	query := `
		SELECT id, tenant_id, email, password_hash, is_active, last_login_at, created_at, updated_at
		FROM tenant_admins
		WHERE tenant_id = $1 AND email = $2
	`

	var a entity.TenantAdmin
	err := database.Conn(ctx, r.db).QueryRow(ctx, query, tenantID, strings.ToLower(email)).Scan(
		&a.ID,
		&a.TenantID,
		&a.Email,
		&a.PasswordHash,
		&a.IsActive,
		&a.LastLoginAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find tenant admin by email", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("find tenant admin by email %s: %w", email, err)
	}

	return &a, nil
}

func (r *tenantAdminRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE tenant_admins SET last_login_at = $2, updated_at = $2 WHERE id = $1`

	if _, err := database.Conn(ctx, r.db).Exec(ctx, query, id, at); err != nil {
		r.log.Error("Failed to update last login", zap.Error(err), zap.String("admin_id", id.String()))
		return fmt.Errorf("update last login %s: %w", id, err)
	}
	return nil
}
