package request

type AdminLoginRequest struct {
	TenantSlug string `json:"tenantSlug" validate:"required,max=64"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8,max=72"`
}
