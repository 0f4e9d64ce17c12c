package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"appointment-booking/internal/data/entity"
	"appointment-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newTokens(t *testing.T) *utils.TokenManager {
	t.Helper()
	tm, err := utils.NewTokenManager(utils.JWTConfig{Secret: "test-secret", Issuer: "test"})
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	return tm
}

func tenantEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := utils.GetTenantIDFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		w.Write([]byte(id.String()))
	})
}

func TestAdminJWT(t *testing.T) {
	tm := newTokens(t)
	tenantID := uuid.New()
	handler := AdminJWT(tm, zap.NewNop())(tenantEcho())

	adminToken, _ := tm.GenerateToken(tenantID.String(), "owner", utils.RoleAdmin, time.Hour)
	staffToken, _ := tm.GenerateToken(tenantID.String(), "staff", "staff", time.Hour)
	expiredToken, _ := tm.GenerateToken(tenantID.String(), "owner", utils.RoleAdmin, -time.Minute)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"bad format", "Token abc", http.StatusUnauthorized},
		{"garbage token", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"expired", "Bearer " + expiredToken, http.StatusUnauthorized},
		{"not admin", "Bearer " + staffToken, http.StatusForbidden},
		{"admin", "Bearer " + adminToken, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/api/admin/bookings/x/confirm", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
			if tt.want == http.StatusOK && rec.Body.String() != tenantID.String() {
				t.Errorf("expected tenant %s in context, got %s", tenantID, rec.Body.String())
			}
		})
	}
}

func TestAdminJWTRejectsForeignSecret(t *testing.T) {
	other, _ := utils.NewTokenManager(utils.JWTConfig{Secret: "other-secret", Issuer: "test"})
	token, _ := other.GenerateToken(uuid.NewString(), "owner", utils.RoleAdmin, time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	AdminJWT(newTokens(t), zap.NewNop())(tenantEcho()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

type stubTenants map[string]*entity.Tenant

func (s stubTenants) FindBySlug(_ context.Context, slug string) (*entity.Tenant, error) {
	return s[slug], nil
}

func TestTenantScope(t *testing.T) {
	active := &entity.Tenant{BaseNoDelete: entity.BaseNoDelete{ID: uuid.New()}, Slug: "acme", IsActive: true}
	inactive := &entity.Tenant{BaseNoDelete: entity.BaseNoDelete{ID: uuid.New()}, Slug: "gone"}
	tenants := stubTenants{"acme": active, "gone": inactive}

	r := chi.NewRouter()
	r.Route("/api/t/{slug}", func(r chi.Router) {
		r.Use(TenantScope(tenants, zap.NewNop()))
		r.Get("/slots", tenantEcho().ServeHTTP)
	})

	tests := []struct {
		path string
		want int
	}{
		{"/api/t/acme/slots", http.StatusOK},
		{"/api/t/gone/slots", http.StatusNotFound},
		{"/api/t/nobody/slots", http.StatusNotFound},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if rec.Code != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.path, tt.want, rec.Code)
		}
	}
}

func TestRateLimiterIsPerTenant(t *testing.T) {
	rl := NewRateLimiter(utils.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 2})
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	handler := rl.Middleware(ok)

	send := func(tenantID uuid.UUID) int {
		req := httptest.NewRequest(http.MethodPost, "/bookings", nil)
		req = req.WithContext(utils.SetTenantContext(req.Context(), tenantID, "t"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	a, b := uuid.New(), uuid.New()
	for i := 0; i < 2; i++ {
		if code := send(a); code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, code)
		}
	}
	if code := send(a); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %d", code)
	}
	if code := send(b); code != http.StatusOK {
		t.Fatalf("other tenant should have its own bucket, got %d", code)
	}
}

func TestRecoverAnswers500(t *testing.T) {
	panicky := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { panic("boom") })
	rec := httptest.NewRecorder()
	Recover(zap.NewNop())(panicky).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
