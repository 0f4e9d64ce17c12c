package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"appointment-booking/internal/data/entity"
	"appointment-booking/internal/dto/request"
	"appointment-booking/pkg/cache"
	"appointment-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func strPtr(s string) *string { return &s }

func (f *fixture) bookingRequest(start string, services ...*entity.Service) *request.CreateBookingRequest {
	if len(services) == 0 {
		services = []*entity.Service{f.haircut}
	}
	ids := make([]string, len(services))
	for i, s := range services {
		ids[i] = s.ID.String()
	}
	return &request.CreateBookingRequest{
		CustomerName:  "Jane Doe",
		CustomerEmail: "Jane@Example.com",
		ServiceIDs:    ids,
		Date:          f.date.Format(utils.DateLayout),
		StartTime:     start,
	}
}

func TestCreateBookingClaimsContiguousSlots(t *testing.T) {
	f := newFixture(t)

	resp, err := f.service.Reservation.CreateBooking(context.Background(), f.tenant.ID, f.bookingRequest("10:00"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Status != entity.BookingStatusPending {
		t.Errorf("status = %s, want pending", resp.Status)
	}
	if resp.StartTime != "10:00" || resp.EndTime != "11:00" {
		t.Errorf("time = %s-%s, want 10:00-11:00", resp.StartTime, resp.EndTime)
	}
	if resp.TotalPrice != "50.00" || resp.CustomerEmail != "jane@example.com" {
		t.Errorf("unexpected booking %+v", resp)
	}
	if resp.RemainingBalance == nil || *resp.RemainingBalance != "50.00" {
		t.Errorf("remaining balance = %v, want 50.00", resp.RemainingBalance)
	}

	for _, start := range []string{"10:00", "10:30"} {
		if f.slotAt(f.date, start).IsAvailable {
			t.Errorf("slot %s should be claimed", start)
		}
	}
	for _, start := range []string{"09:30", "11:00"} {
		if !f.slotAt(f.date, start).IsAvailable {
			t.Errorf("slot %s should stay available", start)
		}
	}

	id := uuid.MustParse(resp.ID)
	slots, _ := f.repo.Booking.FindSlotIDs(context.Background(), id)
	if len(slots) != 2 {
		t.Errorf("expected 2 booking slot links, got %d", len(slots))
	}

	customer, _ := f.repo.Customer.FindByEmail(context.Background(), f.tenant.ID, "jane@example.com")
	if customer == nil || customer.LastBookingAt == nil {
		t.Error("customer should be upserted with last booking time")
	}

	eventually(t, func() bool { return f.notifier.pendingCount() == 1 }, "booking notification not sent")
}

func TestCreateBookingSlotConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.service.Reservation.CreateBooking(ctx, f.tenant.ID, f.bookingRequest("10:00")); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	tests := []struct {
		name  string
		start string
	}{
		{"same start", "10:00"},
		{"overlapping run", "09:30"},
		{"no slot at start", "10:15"},
		{"run past end of day", "12:30"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Reservation.CreateBooking(ctx, f.tenant.ID, f.bookingRequest(tt.start))
			if !errors.Is(err, ErrSlotConflict) {
				t.Fatalf("expected ErrSlotConflict, got %v", err)
			}
		})
	}

	// a gap in the day breaks contiguity
	f.store.mu.Lock()
	f.store.slots = append(f.store.slots, &entity.TimeSlot{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New()}, TenantID: f.tenant.ID, Date: f.date,
		StartTime: "14:00", EndTime: "14:30", IsAvailable: true,
	}, &entity.TimeSlot{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New()}, TenantID: f.tenant.ID, Date: f.date,
		StartTime: "15:00", EndTime: "15:30", IsAvailable: true,
	})
	f.store.mu.Unlock()

	if _, err := f.service.Reservation.CreateBooking(ctx, f.tenant.ID, f.bookingRequest("14:00")); !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("expected ErrSlotConflict across a gap, got %v", err)
	}
}

func TestCreateBookingConcurrentClaimsHaveOneWinner(t *testing.T) {
	f := newFixture(t)
	const callers = 25

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		conflicts int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.Reservation.CreateBooking(context.Background(), f.tenant.ID, f.bookingRequest("10:00"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, ErrSlotConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if created != 1 || conflicts != callers-1 {
		t.Fatalf("created=%d conflicts=%d, want 1 and %d", created, conflicts, callers-1)
	}
}

func TestCreateBookingDiscountCodeUsedOnceUnderContention(t *testing.T) {
	f := newFixture(t)
	code := &entity.DiscountCode{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New()},
		TenantID:     f.tenant.ID,
		Code:         "WELCOME10",
		Type:         entity.DiscountFixed,
		Value:        dec("10"),
		MaxUses:      intPtr(1),
		IsActive:     true,
	}
	f.store.discounts[code.ID] = code

	starts := []string{"09:00", "10:00", "11:00", "12:00"}
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		discounted int
	)
	for _, start := range starts {
		wg.Add(1)
		go func(start string) {
			defer wg.Done()
			req := f.bookingRequest(start)
			req.DiscountCode = strPtr("welcome10")
			resp, err := f.service.Reservation.CreateBooking(context.Background(), f.tenant.ID, req)
			if err != nil {
				t.Errorf("booking at %s: %v", start, err)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if resp.DiscountApplied {
				discounted++
				if resp.TotalPrice != "40.00" {
					t.Errorf("discounted total = %s, want 40.00", resp.TotalPrice)
				}
			} else if resp.TotalPrice != "50.00" {
				t.Errorf("full total = %s, want 50.00", resp.TotalPrice)
			}
		}(start)
	}
	wg.Wait()

	if discounted != 1 {
		t.Fatalf("discount applied %d times, want 1", discounted)
	}
	if code.UsesCount != 1 {
		t.Fatalf("uses_count = %d, want 1", code.UsesCount)
	}
}

func TestCreateBookingGiftCardPartialRedemption(t *testing.T) {
	f := newFixture(t)
	card := &entity.GiftCard{
		BaseNoDelete:     entity.BaseNoDelete{ID: uuid.New()},
		TenantID:         f.tenant.ID,
		Code:             "GIFT-30",
		InitialBalance:   dec("30"),
		RemainingBalance: dec("30"),
		Status:           entity.GiftCardActive,
	}
	f.store.giftCards[card.ID] = card

	req := f.bookingRequest("10:00")
	req.GiftCardCode = strPtr("gift-30")
	resp, err := f.service.Reservation.CreateBooking(context.Background(), f.tenant.ID, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !resp.GiftCardApplied || resp.GiftCardAmount != "30.00" || resp.TotalPrice != "20.00" {
		t.Fatalf("unexpected pricing %+v", resp)
	}
	if !card.RemainingBalance.IsZero() {
		t.Errorf("card balance = %s, want 0", card.RemainingBalance)
	}
	if card.Status != entity.GiftCardRedeemed {
		t.Errorf("card status = %s, want %s", card.Status, entity.GiftCardRedeemed)
	}

	txs, _ := f.repo.GiftCard.ListTransactions(context.Background(), card.ID)
	if len(txs) != 1 || txs[0].Type != entity.GiftCardTxRedemption || !txs[0].Amount.Equal(dec("30")) {
		t.Fatalf("unexpected ledger %+v", txs)
	}
	if !txs[0].BalanceAfter.IsZero() {
		t.Errorf("balance after = %s, want 0", txs[0].BalanceAfter)
	}
	if txs[0].BookingID == nil || txs[0].BookingID.String() != resp.ID {
		t.Error("ledger line should reference the booking")
	}
}

func TestCreateBookingPackageCoversService(t *testing.T) {
	f := newFixture(t)
	pkg := &entity.CustomerPackage{
		BaseNoDelete:      entity.BaseNoDelete{ID: uuid.New()},
		TenantID:          f.tenant.ID,
		SessionsRemaining: 2,
		Status:            entity.CustomerPackageActive,
		CoveredServiceIDs: []uuid.UUID{f.haircut.ID},
		CustomerEmail:     "jane@example.com",
	}
	f.store.packages[pkg.ID] = pkg

	req := f.bookingRequest("10:00")
	req.CustomerPackageID = strPtr(pkg.ID.String())
	resp, err := f.service.Reservation.CreateBooking(context.Background(), f.tenant.ID, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !resp.PackageApplied || resp.TotalPrice != "0.00" {
		t.Fatalf("unexpected pricing %+v", resp)
	}
	if pkg.SessionsRemaining != 1 || pkg.SessionsUsed != 1 || len(f.store.usages) != 1 {
		t.Fatalf("package not consumed: remaining=%d used=%d usages=%d", pkg.SessionsRemaining, pkg.SessionsUsed, len(f.store.usages))
	}
}

func TestCreateBookingRejectsSomeoneElsesPackage(t *testing.T) {
	f := newFixture(t)
	pkg := &entity.CustomerPackage{
		BaseNoDelete:      entity.BaseNoDelete{ID: uuid.New()},
		TenantID:          f.tenant.ID,
		SessionsRemaining: 2,
		Status:            entity.CustomerPackageActive,
		CoveredServiceIDs: []uuid.UUID{f.haircut.ID},
		CustomerEmail:     "someone@else.com",
	}
	f.store.packages[pkg.ID] = pkg

	req := f.bookingRequest("10:00")
	req.CustomerPackageID = strPtr(pkg.ID.String())
	if _, err := f.service.Reservation.CreateBooking(context.Background(), f.tenant.ID, req); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateBookingRollsBackOnFailure(t *testing.T) {
	f := newFixture(t)
	code := &entity.DiscountCode{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New()},
		TenantID:     f.tenant.ID, Code: "TENOFF", Type: entity.DiscountFixed, Value: dec("10"), IsActive: true,
	}
	card := &entity.GiftCard{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New()},
		TenantID:     f.tenant.ID, Code: "G1", RemainingBalance: dec("15"), Status: entity.GiftCardActive,
	}
	f.store.discounts[code.ID] = code
	f.store.giftCards[card.ID] = card
	f.store.failBookingCreate = errors.New("insert booking: connection reset")

	req := f.bookingRequest("10:00")
	req.DiscountCode = strPtr("TENOFF")
	req.GiftCardCode = strPtr("G1")

	_, err := f.service.Reservation.CreateBooking(context.Background(), f.tenant.ID, req)
	if err == nil || errors.Is(err, ErrSlotConflict) {
		t.Fatalf("expected internal error, got %v", err)
	}

	if code.UsesCount != 0 {
		t.Errorf("discount uses = %d, want 0 after rollback", code.UsesCount)
	}
	if !card.RemainingBalance.Equal(dec("15")) {
		t.Errorf("gift card balance = %s, want 15 after rollback", card.RemainingBalance)
	}
	// the 15 covered part of the 40 due, so the card hit zero before the refund
	if card.Status != entity.GiftCardActive {
		t.Errorf("gift card status = %s, want active after refund", card.Status)
	}
	txs, _ := f.repo.GiftCard.ListTransactions(context.Background(), card.ID)
	if len(txs) != 2 ||
		txs[0].Type != entity.GiftCardTxRedemption || !txs[0].Amount.Equal(dec("15")) || !txs[0].BalanceAfter.IsZero() ||
		txs[1].Type != entity.GiftCardTxRefund || !txs[1].Amount.Equal(dec("15")) || !txs[1].BalanceAfter.Equal(dec("15")) {
		t.Fatalf("unexpected ledger after rollback %+v", txs)
	}
	for _, start := range []string{"10:00", "10:30"} {
		if !f.slotAt(f.date, start).IsAvailable {
			t.Errorf("slot %s should be released after rollback", start)
		}
	}
	if len(f.store.bookings) != 0 {
		t.Error("no booking should be stored")
	}
	time.Sleep(20 * time.Millisecond)
	if f.notifier.pendingCount() != 0 {
		t.Error("failed booking must not notify")
	}
}

func TestCreateBookingDeposit(t *testing.T) {
	f := newFixture(t)
	f.haircut.DepositEnabled = true
	f.haircut.DepositType = entity.DepositPercentage
	f.haircut.DepositValue = dec("20")
	f.payments.statuses["pi_pending"] = "pending"
	f.payments.statuses["pi_paid"] = PaymentStatusSucceeded
	ctx := context.Background()

	req := f.bookingRequest("10:00")
	if _, err := f.service.Reservation.CreateBooking(ctx, f.tenant.ID, req); !errors.Is(err, ErrDepositRequired) {
		t.Fatalf("expected ErrDepositRequired, got %v", err)
	}

	req.DepositPaymentIntentID = strPtr("pi_pending")
	if _, err := f.service.Reservation.CreateBooking(ctx, f.tenant.ID, req); !errors.Is(err, ErrDepositNotPaid) {
		t.Fatalf("expected ErrDepositNotPaid, got %v", err)
	}
	if !f.slotAt(f.date, "10:00").IsAvailable {
		t.Fatal("unpaid deposit must not claim slots")
	}

	req.DepositPaymentIntentID = strPtr("pi_paid")
	resp, err := f.service.Reservation.CreateBooking(ctx, f.tenant.ID, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.DepositAmount != "10.00" || resp.DepositStatus != entity.DepositStatusPaid {
		t.Errorf("deposit = %s %s, want 10.00 paid", resp.DepositAmount, resp.DepositStatus)
	}
	if *resp.RemainingBalance != "40.00" {
		t.Errorf("remaining = %s, want 40.00", *resp.RemainingBalance)
	}
}

func TestCreateBookingPlanLimit(t *testing.T) {
	f := newFixture(t)
	f.tenant.Tier = entity.TierFree

	cfg := testConfig()
	cfg.Booking.PlanLimits["free"] = 1
	f.service = NewService(f.repo, cache.NewMemory(), f.payments, f.notifier, f.tokens, cfg, zap.NewNop())

	ctx := context.Background()
	if _, err := f.service.Reservation.CreateBooking(ctx, f.tenant.ID, f.bookingRequest("09:00")); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	_, err := f.service.Reservation.CreateBooking(ctx, f.tenant.ID, f.bookingRequest("11:00"))
	if !errors.Is(err, ErrPlanLimitReached) {
		t.Fatalf("expected ErrPlanLimitReached, got %v", err)
	}
}

func TestCreateBookingValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inactive := f.addService("Retired", 30, "10")
	inactive.IsActive = false

	tests := []struct {
		name   string
		mutate func(r *request.CreateBookingRequest)
	}{
		{"missing email", func(r *request.CreateBookingRequest) { r.CustomerEmail = "" }},
		{"bad date", func(r *request.CreateBookingRequest) { r.Date = "2030-13-01" }},
		{"past date", func(r *request.CreateBookingRequest) { r.Date = "2001-01-01" }},
		{"unknown service", func(r *request.CreateBookingRequest) { r.ServiceIDs = []string{uuid.NewString()} }},
		{"inactive service", func(r *request.CreateBookingRequest) { r.ServiceIDs = []string{inactive.ID.String()} }},
		{"unknown discount code", func(r *request.CreateBookingRequest) { r.DiscountCode = strPtr("NOPE") }},
		{"gift card with package", func(r *request.CreateBookingRequest) {
			r.GiftCardCode = strPtr("G")
			r.CustomerPackageID = strPtr(uuid.NewString())
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := f.bookingRequest("10:00")
			tt.mutate(req)
			_, err := f.service.Reservation.CreateBooking(ctx, f.tenant.ID, req)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateBookingUnknownTenant(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.Reservation.CreateBooking(context.Background(), uuid.New(), f.bookingRequest("10:00"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetBookingAfterCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Reservation.CreateBooking(ctx, f.tenant.ID, f.bookingRequest("10:00"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := f.service.Reservation.GetBooking(ctx, f.tenant.ID, created.ID)
	if err != nil || got.Reference != created.Reference {
		t.Fatalf("get booking: %v %+v", err, got)
	}

	if _, err := f.service.Reservation.GetBooking(ctx, uuid.New(), created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("other tenant must not see the booking, got %v", err)
	}
}

func TestDepositIntent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.service.Reservation.DepositIntent(ctx, f.tenant.ID, &request.DepositIntentRequest{
		ServiceIDs: []string{f.haircut.ID.String()}, CustomerEmail: "jane@example.com",
	})
	if err != nil || resp.Required {
		t.Fatalf("no deposit expected: %v %+v", err, resp)
	}

	f.haircut.DepositEnabled = true
	f.haircut.DepositType = entity.DepositFixed
	f.haircut.DepositValue = dec("12.5")

	resp, err = f.service.Reservation.DepositIntent(ctx, f.tenant.ID, &request.DepositIntentRequest{
		ServiceIDs: []string{f.haircut.ID.String()}, CustomerEmail: "jane@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Required || resp.DepositAmount != "12.50" || resp.ClientSecret == nil {
		t.Fatalf("unexpected response %+v", resp)
	}
	if len(f.payments.intents) != 1 || !f.payments.intents[0].Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("intent amounts = %v", f.payments.intents)
	}
}
