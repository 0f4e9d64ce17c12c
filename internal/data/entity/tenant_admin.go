package entity

import (
	"time"

	"github.com/google/uuid"
)

// TenantAdmin is a staff account allowed to run booking lifecycle actions
// for one tenant.
type TenantAdmin struct {
	BaseNoDelete
	TenantID     uuid.UUID  `db:"tenant_id"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	IsActive     bool       `db:"is_active"`
	LastLoginAt  *time.Time `db:"last_login_at"`
}
