package entity

import (
	"time"

	"github.com/google/uuid"
)

type Package struct {
	BaseNoDelete
	TenantID     uuid.UUID   `db:"tenant_id"`
	Name         string      `db:"name"`
	SessionCount int         `db:"session_count"`
	ServiceIDs   []uuid.UUID `db:"service_ids"`
}

type CustomerPackageStatus string

const (
	CustomerPackageActive    CustomerPackageStatus = "active"
	CustomerPackageExhausted CustomerPackageStatus = "exhausted"
	CustomerPackageExpired   CustomerPackageStatus = "expired"
)

// CustomerPackage is a purchased bundle of sessions. CoveredServiceIDs and
// CustomerEmail are joined in from packages and customers on read.
type CustomerPackage struct {
	BaseNoDelete
	TenantID          uuid.UUID             `db:"tenant_id"`
	CustomerID        uuid.UUID             `db:"customer_id"`
	PackageID         uuid.UUID             `db:"package_id"`
	SessionsRemaining int                   `db:"sessions_remaining"`
	SessionsUsed      int                   `db:"sessions_used"`
	Status            CustomerPackageStatus `db:"status"`
	ExpiresAt         *time.Time            `db:"expires_at"`
	CoveredServiceIDs []uuid.UUID
	CustomerEmail     string
}

type PackageUsage struct {
	BaseSimple
	CustomerPackageID uuid.UUID `db:"customer_package_id"`
	BookingID         uuid.UUID `db:"booking_id"`
}
