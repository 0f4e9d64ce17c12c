package response

import "time"

type AuthResponse struct {
	Token      string    `json:"token"`
	TokenType  string    `json:"tokenType"`
	ExpiresAt  time.Time `json:"expiresAt"`
	TenantID   string    `json:"tenantId"`
	TenantSlug string    `json:"tenantSlug"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
}
