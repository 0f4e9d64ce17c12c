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

type DiscountCodeRepository interface {
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*entity.DiscountCode, error)
	// IncrementUses consumes one use, or returns ErrAlreadyMaxed.
	IncrementUses(ctx context.Context, tenantID, id uuid.UUID) error
	DecrementUses(ctx context.Context, tenantID, id uuid.UUID) error
}

type discountCodeRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewDiscountCodeRepository(db database.PgxIface, log *zap.Logger) DiscountCodeRepository {
	return &discountCodeRepository{
		db:  db,
		log: log.With(zap.String("repository", "discount_code")),
	}
}

func (r *discountCodeRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*entity.DiscountCode, error) {
	query := `
		SELECT id, tenant_id, code, type, value, min_spend, max_uses, uses_count,
		       expires_at, active, created_at, updated_at
		FROM discount_codes
		WHERE tenant_id = $1 AND code = $2
	`

	var d entity.DiscountCode
	err := database.Conn(ctx, r.db).QueryRow(ctx, query, tenantID, strings.ToUpper(code)).Scan(
		&d.ID,
		&d.TenantID,
		&d.Code,
		&d.Type,
		&d.Value,
		&d.MinSpend,
		&d.MaxUses,
		&d.UsesCount,
		&d.ExpiresAt,
		&d.IsActive,
		&d.CreatedAt,
		&d.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find discount code", zap.Error(err), zap.String("tenant_id", tenantID.String()))
		return nil, fmt.Errorf("find discount code: %w", err)
	}

	return &d, nil
}

func (r *discountCodeRepository) IncrementUses(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `
		UPDATE discount_codes
		SET uses_count = uses_count + 1, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2
		  AND (max_uses IS NULL OR uses_count < max_uses)
	`

	tag, err := database.Conn(ctx, r.db).Exec(ctx, query, tenantID, id)
	if err != nil {
		r.log.Error("Failed to redeem discount code", zap.Error(err), zap.String("discount_code_id", id.String()))
		return fmt.Errorf("redeem discount code %s: %w", id, err)
	}

	if tag.RowsAffected() == 0 {
		return ErrAlreadyMaxed
	}
	return nil
}

func (r *discountCodeRepository) DecrementUses(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `
		UPDATE discount_codes
		SET uses_count = uses_count - 1, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2 AND uses_count > 0
	`

	if _, err := database.Conn(ctx, r.db).Exec(ctx, query, tenantID, id); err != nil {
		r.log.Error("Failed to reverse discount code", zap.Error(err), zap.String("discount_code_id", id.String()))
		return fmt.Errorf("reverse discount code %s: %w", id, err)
	}
	return nil
}
