package utils

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	TenantIDKey   contextKey = "tenant_id"
	TenantSlugKey contextKey = "tenant_slug"
	RoleKey       contextKey = "role"
)

// SetTenantContext stores the resolved tenant for tenant-scoped routes.
func SetTenantContext(ctx context.Context, tenantID uuid.UUID, slug string) context.Context {
	ctx = context.WithValue(ctx, TenantIDKey, tenantID.String())
	ctx = context.WithValue(ctx, TenantSlugKey, slug)
	return ctx
}

func GetTenantIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	val := ctx.Value(TenantIDKey)
	if val == nil {
		return uuid.Nil, false
	}

	idStr, ok := val.(string)
	if !ok {
		return uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, false
	}

	return id, true
}

func GetTenantSlugFromContext(ctx context.Context) (string, bool) {
	slug, ok := ctx.Value(TenantSlugKey).(string)
	return slug, ok
}

func SetRoleContext(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, RoleKey, role)
}

func GetRoleFromContext(ctx context.Context) (string, bool) {
	roleVal := ctx.Value(RoleKey)
	if roleVal == nil {
		return "", false
	}

	role, ok := roleVal.(string)
	return role, ok
}
