package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"appointment-booking/internal/data/repository"
	"appointment-booking/internal/dto/request"
	"appointment-booking/internal/dto/response"
	"appointment-booking/pkg/utils"

	"go.uber.org/zap"
)

// AuthService signs tenant admins in and hands out the bearer tokens the
// admin routes check.
type AuthService interface {
	Login(ctx context.Context, req *request.AdminLoginRequest) (*response.AuthResponse, error)
}

type authService struct {
	repo   *repository.Repository
	tokens TokenIssuer
	ttl    time.Duration
	log    *zap.Logger
	now    func() time.Time
}

func NewAuthService(repo *repository.Repository, tokens TokenIssuer, config utils.JWTConfig, log *zap.Logger) AuthService {
	ttl := config.TokenTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &authService{
		repo:   repo,
		tokens: tokens,
		ttl:    ttl,
		log:    log.With(zap.String("service", "auth")),
		now:    time.Now,
	}
}

func (s *authService) Login(ctx context.Context, req *request.AdminLoginRequest) (*response.AuthResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Login validation failed", zap.Any("errors", errs))
		return nil, invalidFields(errs)
	}

	tenant, err := s.repo.Tenant.FindBySlug(ctx, strings.ToLower(req.TenantSlug))
	if err != nil {
		return nil, fmt.Errorf("find tenant: %w", err)
	}
	// unknown tenants look the same as a bad password
	if tenant == nil || !tenant.IsActive {
		s.log.Warn("Login for unknown tenant", zap.String("tenant_slug", req.TenantSlug))
		return nil, ErrInvalidCredentials
	}

	admin, err := s.repo.Admin.FindByEmail(ctx, tenant.ID, req.Email)
	if err != nil {
		return nil, fmt.Errorf("find admin: %w", err)
	}
	if admin == nil || !utils.CheckPasswordHash(req.Password, admin.PasswordHash) {
		s.log.Warn("Invalid admin credentials",
			zap.String("tenant_id", tenant.ID.String()),
			zap.String("email", req.Email),
		)
		return nil, ErrInvalidCredentials
	}
	if !admin.IsActive {
		s.log.Warn("Inactive admin tried to login", zap.String("admin_id", admin.ID.String()))
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	token, err := s.tokens.GenerateToken(tenant.ID.String(), admin.ID.String(), utils.RoleAdmin, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	if err := s.repo.Admin.UpdateLastLogin(ctx, admin.ID, now); err != nil {
		s.log.Warn("Failed to record last login", zap.Error(err), zap.String("admin_id", admin.ID.String()))
	}

	s.log.Info("Admin logged in",
		zap.String("admin_id", admin.ID.String()),
		zap.String("tenant_id", tenant.ID.String()),
	)

	return &response.AuthResponse{
		Token:      token,
		TokenType:  "Bearer",
		ExpiresAt:  now.Add(s.ttl),
		TenantID:   tenant.ID.String(),
		TenantSlug: tenant.Slug,
		Email:      admin.Email,
		Role:       utils.RoleAdmin,
	}, nil
}
