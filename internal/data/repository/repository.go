package repository

import (
	"context"

	"appointment-booking/pkg/database"

	"go.uber.org/zap"
)

// TxManager runs fn so that every repository call made with the ctx it
// receives commits or rolls back together.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Repository struct {
	Tx              TxManager
	Tenant          TenantRepository
	Admin           TenantAdminRepository
	Service         ServiceRepository
	Slot            SlotRepository
	Booking         BookingRepository
	Customer        CustomerRepository
	DiscountCode    DiscountCodeRepository
	GiftCard        GiftCardRepository
	CustomerPackage CustomerPackageRepository
	Waitlist        WaitlistRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Tx:              database.NewTransactor(db),
		Tenant:          NewTenantRepository(db, log),
		Admin:           NewTenantAdminRepository(db, log),
		Service:         NewServiceRepository(db, log),
		Slot:            NewSlotRepository(db, log),
		Booking:         NewBookingRepository(db, log),
		Customer:        NewCustomerRepository(db, log),
		DiscountCode:    NewDiscountCodeRepository(db, log),
		GiftCard:        NewGiftCardRepository(db, log),
		CustomerPackage: NewCustomerPackageRepository(db, log),
		Waitlist:        NewWaitlistRepository(db, log),
	}
}
