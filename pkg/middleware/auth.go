package middleware

import (
	"context"
	"net/http"

	"appointment-booking/internal/data/entity"
	"appointment-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TenantResolver looks a tenant up by its public slug.
type TenantResolver interface {
	FindBySlug(ctx context.Context, slug string) (*entity.Tenant, error)
}

// TenantScope resolves {slug} from the route and stores the tenant in the
// request context. Unknown and inactive tenants are answered with 404.
func TenantScope(tenants TenantResolver, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			slug := chi.URLParam(r, "slug")
			if slug == "" {
				utils.ResponseNotFound(w, "Tenant not found")
				return
			}

			tenant, err := tenants.FindBySlug(r.Context(), slug)
			if err != nil {
				logger.Error("Failed to resolve tenant", zap.Error(err), zap.String("slug", slug))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}
			if tenant == nil || !tenant.IsActive {
				utils.ResponseNotFound(w, "Tenant not found")
				return
			}

			ctx := utils.SetTenantContext(r.Context(), tenant.ID, tenant.Slug)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminJWT validates the bearer token and scopes the request to the tenant in
// its claims.
func AdminJWT(tokens *utils.TokenManager, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.ResponseUnauthorized(w, "Missing authorization token")
				return
			}

			token, err := utils.ExtractBearer(authHeader)
			if err != nil {
				utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
				return
			}

			claims, err := tokens.ValidateToken(token)
			if err != nil {
				logger.Warn("Invalid admin token", zap.Error(err), zap.String("path", r.URL.Path))
				utils.ResponseUnauthorized(w, "Invalid or expired token")
				return
			}

			if claims.Role != utils.RoleAdmin {
				logger.Warn("Non-admin access attempt",
					zap.String("subject", claims.Subject),
					zap.String("path", r.URL.Path))
				utils.ResponseForbidden(w, "Admin access required")
				return
			}

			tenantID, err := uuid.Parse(claims.TenantID)
			if err != nil {
				utils.ResponseUnauthorized(w, "Invalid tenant claim")
				return
			}

			ctx := utils.SetTenantContext(r.Context(), tenantID, "")
			ctx = utils.SetRoleContext(ctx, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
