package repository

import (
	"context"
	"fmt"

	"appointment-booking/internal/data/entity"
	"appointment-booking/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ServiceRepository interface {
	// FindByIDs returns the tenant's services among ids, active or not.
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*entity.Service, error)
}

type serviceRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewServiceRepository(db database.PgxIface, log *zap.Logger) ServiceRepository {
	return &serviceRepository{
		db:  db,
		log: log.With(zap.String("repository", "service")),
	}
}

func (r *serviceRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*entity.Service, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, tenant_id, name, duration_minutes, price, is_active,
		       deposit_enabled, deposit_type, deposit_value, created_at, updated_at
		FROM services
		WHERE tenant_id = $1 AND id = ANY($2::uuid[])
	`

	rows, err := database.Conn(ctx, r.db).Query(ctx, query, tenantID, uuidStrings(ids))
	if err != nil {
		r.log.Error("Failed to find services", zap.Error(err), zap.String("tenant_id", tenantID.String()))
		return nil, fmt.Errorf("find services for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	var services []*entity.Service
	for rows.Next() {
		var s entity.Service
		if err := rows.Scan(
			&s.ID,
			&s.TenantID,
			&s.Name,
			&s.DurationMinutes,
			&s.Price,
			&s.IsActive,
			&s.DepositEnabled,
			&s.DepositType,
			&s.DepositValue,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			r.log.Error("Failed to scan service", zap.Error(err))
			return nil, fmt.Errorf("scan service: %w", err)
		}
		services = append(services, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate services: %w", err)
	}

	return services, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func parseUUIDs(raw []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
