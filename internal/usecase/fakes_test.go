package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"appointment-booking/internal/data/entity"
	"appointment-booking/internal/data/repository"
	"appointment-booking/pkg/cache"
	"appointment-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// memStore is an in-memory database. Conditional writes check and mutate
// under one lock, mirroring the single-statement updates of the SQL
// repositories.
type memStore struct {
	mu sync.Mutex

	tenants      map[uuid.UUID]*entity.Tenant
	admins       []*entity.TenantAdmin
	services     map[uuid.UUID]*entity.Service
	slots        []*entity.TimeSlot
	bookings     map[uuid.UUID]*entity.Booking
	bookingSlots []*entity.BookingSlot
	customers    map[string]*entity.Customer
	discounts    map[uuid.UUID]*entity.DiscountCode
	giftCards    map[uuid.UUID]*entity.GiftCard
	giftCardTxs  []*entity.GiftCardTransaction
	packages     map[uuid.UUID]*entity.CustomerPackage
	usages       []*entity.PackageUsage
	waitlist     []*entity.WaitlistEntry

	failBookingCreate error
}

func newMemStore() *memStore {
	return &memStore{
		tenants:   map[uuid.UUID]*entity.Tenant{},
		services:  map[uuid.UUID]*entity.Service{},
		bookings:  map[uuid.UUID]*entity.Booking{},
		customers: map[string]*entity.Customer{},
		discounts: map[uuid.UUID]*entity.DiscountCode{},
		giftCards: map[uuid.UUID]*entity.GiftCard{},
		packages:  map[uuid.UUID]*entity.CustomerPackage{},
	}
}

func (st *memStore) repository() *repository.Repository {
	return &repository.Repository{
		Tx:              passThroughTx{},
		Tenant:          fakeTenants{st},
		Admin:           fakeAdmins{st},
		Service:         fakeServices{st},
		Slot:            fakeSlots{st},
		Booking:         fakeBookings{st},
		Customer:        fakeCustomers{st},
		DiscountCode:    fakeDiscounts{st},
		GiftCard:        fakeGiftCards{st},
		CustomerPackage: fakePackages{st},
		Waitlist:        fakeWaitlist{st},
	}
}

// passThroughTx runs fn without a transaction; rollback is left to the
// reservation's compensations.
type passThroughTx struct{}

func (passThroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// commitHookTx runs fn, then beforeCommit, then reports commitErr as the
// outcome of the commit.
type commitHookTx struct {
	beforeCommit func()
	commitErr    error
}

func (tx commitHookTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	if tx.beforeCommit != nil {
		tx.beforeCommit()
	}
	if tx.commitErr != nil {
		return fmt.Errorf("commit transaction: %w", tx.commitErr)
	}
	return nil
}

// ---- tenants / services

type fakeTenants struct{ st *memStore }

func (f fakeTenants) FindBySlug(_ context.Context, slug string) (*entity.Tenant, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	for _, t := range f.st.tenants {
		if t.Slug == slug {
			c := *t
			return &c, nil
		}
	}
	return nil, nil
}

func (f fakeTenants) FindByID(_ context.Context, id uuid.UUID) (*entity.Tenant, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	if t, ok := f.st.tenants[id]; ok {
		c := *t
		return &c, nil
	}
	return nil, nil
}

type fakeServices struct{ st *memStore }

func (f fakeServices) FindByIDs(_ context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*entity.Service, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	var out []*entity.Service
	for _, id := range ids {
		if svc, ok := f.st.services[id]; ok && svc.TenantID == tenantID {
			c := *svc
			out = append(out, &c)
		}
	}
	return out, nil
}

type fakeAdmins struct{ st *memStore }

func (f fakeAdmins) Create(_ context.Context, a *entity.TenantAdmin) error {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	for _, existing := range f.st.admins {
		if existing.TenantID == a.TenantID && existing.Email == strings.ToLower(a.Email) {
			return repository.ErrDuplicate
		}
	}
	c := *a
	c.Email = strings.ToLower(a.Email)
	f.st.admins = append(f.st.admins, &c)
	return nil
}

func (f fakeAdmins) FindByEmail(_ context.Context, tenantID uuid.UUID, email string) (*entity.TenantAdmin, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	for _, a := range f.st.admins {
		if a.TenantID == tenantID && a.Email == strings.ToLower(email) {
			c := *a
			return &c, nil
		}
	}
	return nil, nil
}

func (f fakeAdmins) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	for _, a := range f.st.admins {
		if a.ID == id {
			a.LastLoginAt = &at
		}
	}
	return nil
}

// ---- slots

type fakeSlots struct{ st *memStore }

func (f fakeSlots) ListAvailable(_ context.Context, tenantID uuid.UUID, date time.Time) ([]*entity.TimeSlot, error) {
	return f.ListAvailableRange(context.Background(), tenantID, date, date)
}

func (f fakeSlots) ListAvailableRange(_ context.Context, tenantID uuid.UUID, from, to time.Time) ([]*entity.TimeSlot, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	var out []*entity.TimeSlot
	for _, s := range f.st.slots {
		if s.TenantID != tenantID || !s.IsAvailable || s.Date.Before(from) || s.Date.After(to) {
			continue
		}
		c := *s
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (f fakeSlots) Claim(_ context.Context, tenantID uuid.UUID, ids []uuid.UUID) error {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	var claim []*entity.TimeSlot
	for _, id := range ids {
		s := f.st.slot(id)
		if s == nil || s.TenantID != tenantID || !s.IsAvailable {
			return repository.ErrSlotConflict
		}
		claim = append(claim, s)
	}
	for _, s := range claim {
		s.IsAvailable = false
	}
	return nil
}

func (f fakeSlots) Release(_ context.Context, tenantID uuid.UUID, ids []uuid.UUID) (int64, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	var n int64
	for _, id := range ids {
		if s := f.st.slot(id); s != nil && s.TenantID == tenantID && !s.IsAvailable {
			s.IsAvailable = true
			n++
		}
	}
	return n, nil
}

func (st *memStore) slot(id uuid.UUID) *entity.TimeSlot {
	for _, s := range st.slots {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// ---- bookings

type fakeBookings struct{ st *memStore }

func (f fakeBookings) Create(_ context.Context, b *entity.Booking) error {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	if f.st.failBookingCreate != nil {
		return f.st.failBookingCreate
	}
	c := *b
	f.st.bookings[b.ID] = &c
	return nil
}

func (f fakeBookings) FindByID(_ context.Context, tenantID, id uuid.UUID) (*entity.Booking, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	if b, ok := f.st.bookings[id]; ok && b.TenantID == tenantID {
		c := *b
		return &c, nil
	}
	return nil, nil
}

func (f fakeBookings) byDate(tenantID uuid.UUID, date time.Time) []*entity.Booking {
	var out []*entity.Booking
	for _, b := range f.st.bookings {
		if b.TenantID == tenantID && b.Date.Equal(date) {
			c := *b
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out
}

func (f fakeBookings) ListByDate(_ context.Context, tenantID uuid.UUID, date time.Time, limit, offset int) ([]*entity.Booking, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	all := f.byDate(tenantID, date)
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (f fakeBookings) CountByDate(_ context.Context, tenantID uuid.UUID, date time.Time) (int64, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	return int64(len(f.byDate(tenantID, date))), nil
}

func (f fakeBookings) CountCreatedSince(_ context.Context, tenantID uuid.UUID, since time.Time) (int64, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	var n int64
	for _, b := range f.st.bookings {
		if b.TenantID == tenantID && !b.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (f fakeBookings) UpdateStatus(_ context.Context, tenantID, id uuid.UUID, from, to entity.BookingStatus) (bool, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	b, ok := f.st.bookings[id]
	if !ok || b.TenantID != tenantID || b.Status != from {
		return false, nil
	}
	b.Status = to
	return true, nil
}

func (f fakeBookings) MarkNoShow(_ context.Context, tenantID, id uuid.UUID) (bool, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	b, ok := f.st.bookings[id]
	if !ok || b.TenantID != tenantID {
		return false, nil
	}
	if b.Status != entity.BookingStatusConfirmed && b.Status != entity.BookingStatusCompleted {
		return false, nil
	}
	b.MarkedNoShow = true
	return true, nil
}

func (f fakeBookings) CreateSlots(_ context.Context, links []*entity.BookingSlot) error {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	f.st.bookingSlots = append(f.st.bookingSlots, links...)
	return nil
}

func (f fakeBookings) FindSlotIDs(_ context.Context, bookingID uuid.UUID) ([]uuid.UUID, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	var ids []uuid.UUID
	for _, l := range f.st.bookingSlots {
		if l.BookingID == bookingID {
			ids = append(ids, l.SlotID)
		}
	}
	return ids, nil
}

// ---- customers

type fakeCustomers struct{ st *memStore }

func (f fakeCustomers) Upsert(_ context.Context, c *entity.Customer) (uuid.UUID, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	key := c.TenantID.String() + "|" + c.Email
	if existing, ok := f.st.customers[key]; ok {
		existing.Name = c.Name
		existing.Phone = c.Phone
		existing.LastBookingAt = c.LastBookingAt
		return existing.ID, nil
	}
	stored := *c
	f.st.customers[key] = &stored
	return stored.ID, nil
}

func (f fakeCustomers) FindByEmail(_ context.Context, tenantID uuid.UUID, email string) (*entity.Customer, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	if c, ok := f.st.customers[tenantID.String()+"|"+email]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

// ---- redemption instruments

type fakeDiscounts struct{ st *memStore }

func (f fakeDiscounts) FindByCode(_ context.Context, tenantID uuid.UUID, code string) (*entity.DiscountCode, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	for _, d := range f.st.discounts {
		if d.TenantID == tenantID && strings.EqualFold(d.Code, code) {
			c := *d
			return &c, nil
		}
	}
	return nil, nil
}

func (f fakeDiscounts) IncrementUses(_ context.Context, tenantID, id uuid.UUID) error {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	d, ok := f.st.discounts[id]
	if !ok || d.TenantID != tenantID || !d.HasUsesLeft() {
		return repository.ErrAlreadyMaxed
	}
	d.UsesCount++
	return nil
}

func (f fakeDiscounts) DecrementUses(_ context.Context, tenantID, id uuid.UUID) error {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	if d, ok := f.st.discounts[id]; ok && d.TenantID == tenantID && d.UsesCount > 0 {
		d.UsesCount--
	}
	return nil
}

type fakeGiftCards struct{ st *memStore }

func (f fakeGiftCards) FindByCode(_ context.Context, tenantID uuid.UUID, code string) (*entity.GiftCard, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	for _, g := range f.st.giftCards {
		if g.TenantID == tenantID && strings.EqualFold(g.Code, code) {
			c := *g
			return &c, nil
		}
	}
	return nil, nil
}

func (f fakeGiftCards) Debit(_ context.Context, tenantID, id uuid.UUID, amount decimal.Decimal, bookingID uuid.UUID) (decimal.Decimal, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	g, ok := f.st.giftCards[id]
	if !ok || g.TenantID != tenantID || g.Status != entity.GiftCardActive || g.RemainingBalance.LessThan(amount) {
		return decimal.Zero, repository.ErrInsufficientFunds
	}
	g.RemainingBalance = g.RemainingBalance.Sub(amount)
	if g.RemainingBalance.IsZero() {
		g.Status = entity.GiftCardRedeemed
	}
	f.st.appendGiftCardTx(id, bookingID, entity.GiftCardTxRedemption, amount, g.RemainingBalance)
	return g.RemainingBalance, nil
}

func (f fakeGiftCards) Credit(_ context.Context, tenantID, id uuid.UUID, amount decimal.Decimal, bookingID uuid.UUID) (decimal.Decimal, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	g, ok := f.st.giftCards[id]
	if !ok || g.TenantID != tenantID {
		return decimal.Zero, errors.New("gift card not found")
	}
	g.RemainingBalance = g.RemainingBalance.Add(amount)
	if g.Status == entity.GiftCardRedeemed {
		g.Status = entity.GiftCardActive
	}
	f.st.appendGiftCardTx(id, bookingID, entity.GiftCardTxRefund, amount, g.RemainingBalance)
	return g.RemainingBalance, nil
}

func (f fakeGiftCards) ListTransactions(_ context.Context, giftCardID uuid.UUID) ([]*entity.GiftCardTransaction, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	var out []*entity.GiftCardTransaction
	for _, tx := range f.st.giftCardTxs {
		if tx.GiftCardID == giftCardID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (st *memStore) appendGiftCardTx(cardID, bookingID uuid.UUID, typ entity.GiftCardTransactionType, amount, after decimal.Decimal) {
	b := bookingID
	st.giftCardTxs = append(st.giftCardTxs, &entity.GiftCardTransaction{
		BaseSimple:   entity.BaseSimple{ID: uuid.New(), CreatedAt: time.Now()},
		GiftCardID:   cardID,
		BookingID:    &b,
		Type:         typ,
		Amount:       amount,
		BalanceAfter: after,
	})
}

type fakePackages struct{ st *memStore }

func (f fakePackages) FindByID(_ context.Context, tenantID, id uuid.UUID) (*entity.CustomerPackage, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	if p, ok := f.st.packages[id]; ok && p.TenantID == tenantID {
		c := *p
		return &c, nil
	}
	return nil, nil
}

func (f fakePackages) ConsumeSession(_ context.Context, tenantID, id, bookingID uuid.UUID) (int, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	p, ok := f.st.packages[id]
	if !ok || p.TenantID != tenantID || p.Status != entity.CustomerPackageActive || p.SessionsRemaining <= 0 {
		return 0, repository.ErrExhausted
	}
	p.SessionsRemaining--
	p.SessionsUsed++
	if p.SessionsRemaining == 0 {
		p.Status = entity.CustomerPackageExhausted
	}
	f.st.usages = append(f.st.usages, &entity.PackageUsage{
		BaseSimple:        entity.BaseSimple{ID: uuid.New(), CreatedAt: time.Now()},
		CustomerPackageID: id,
		BookingID:         bookingID,
	})
	return p.SessionsRemaining, nil
}

func (f fakePackages) RestoreSession(_ context.Context, tenantID, id, bookingID uuid.UUID) (int, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	p, ok := f.st.packages[id]
	if !ok || p.TenantID != tenantID {
		return 0, errors.New("package not found")
	}
	p.SessionsRemaining++
	p.SessionsUsed--
	p.Status = entity.CustomerPackageActive
	kept := f.st.usages[:0]
	for _, u := range f.st.usages {
		if !(u.CustomerPackageID == id && u.BookingID == bookingID) {
			kept = append(kept, u)
		}
	}
	f.st.usages = kept
	return p.SessionsRemaining, nil
}

// ---- waitlist

type fakeWaitlist struct{ st *memStore }

func isOpen(e *entity.WaitlistEntry) bool {
	return e.Status == entity.WaitlistWaiting || e.Status == entity.WaitlistNotified
}

func (f fakeWaitlist) Create(_ context.Context, e *entity.WaitlistEntry) error {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	for _, w := range f.st.waitlist {
		if w.TenantID == e.TenantID && w.Date.Equal(e.Date) && w.CustomerEmail == e.CustomerEmail && isOpen(w) {
			return repository.ErrDuplicate
		}
	}
	c := *e
	f.st.waitlist = append(f.st.waitlist, &c)
	return nil
}

func (f fakeWaitlist) find(tenantID, id uuid.UUID) *entity.WaitlistEntry {
	for _, w := range f.st.waitlist {
		if w.ID == id && w.TenantID == tenantID {
			return w
		}
	}
	return nil
}

func (f fakeWaitlist) FindByID(_ context.Context, tenantID, id uuid.UUID) (*entity.WaitlistEntry, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	if w := f.find(tenantID, id); w != nil {
		c := *w
		return &c, nil
	}
	return nil, nil
}

// ListWaiting keeps insertion order, which is created_at order here.
func (f fakeWaitlist) ListWaiting(_ context.Context, tenantID uuid.UUID, date time.Time) ([]*entity.WaitlistEntry, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	var out []*entity.WaitlistEntry
	for _, w := range f.st.waitlist {
		if w.TenantID == tenantID && w.Date.Equal(date) && w.Status == entity.WaitlistWaiting {
			c := *w
			out = append(out, &c)
		}
	}
	return out, nil
}

func (f fakeWaitlist) MarkNotified(_ context.Context, tenantID, id uuid.UUID, notifiedAt, expiresAt time.Time) (bool, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	w := f.find(tenantID, id)
	if w == nil || w.Status != entity.WaitlistWaiting {
		return false, nil
	}
	w.Status = entity.WaitlistNotified
	w.NotifiedAt = &notifiedAt
	w.ExpiresAt = &expiresAt
	return true, nil
}

func (f fakeWaitlist) Cancel(_ context.Context, tenantID, id uuid.UUID) (bool, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	w := f.find(tenantID, id)
	if w == nil || !isOpen(w) {
		return false, nil
	}
	w.Status = entity.WaitlistCancelled
	return true, nil
}

func (f fakeWaitlist) ExpireNotified(_ context.Context, now time.Time) ([]*entity.WaitlistEntry, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	var out []*entity.WaitlistEntry
	for _, w := range f.st.waitlist {
		if w.Status == entity.WaitlistNotified && w.ExpiresAt != nil && !w.ExpiresAt.After(now) {
			w.Status = entity.WaitlistExpired
			c := *w
			out = append(out, &c)
		}
	}
	return out, nil
}

// ---- external ports

type fakePayments struct {
	mu       sync.Mutex
	statuses map[string]string
	intents  []decimal.Decimal
}

func (p *fakePayments) VerifyPaymentIntent(_ context.Context, _ *entity.Tenant, intentID string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if status, ok := p.statuses[intentID]; ok {
		return status, nil
	}
	return "", errors.New("no such intent")
}

func (p *fakePayments) CreateIntent(_ context.Context, _ *entity.Tenant, amount decimal.Decimal, _, _ string) (*PaymentIntent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.intents = append(p.intents, amount)
	return &PaymentIntent{ID: "pi_test", ClientSecret: "secret_test"}, nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	pending  []uuid.UUID
	openings []uuid.UUID
}

func (n *recordingNotifier) NotifyBookingPending(_ context.Context, b *entity.Booking, _ *entity.Tenant) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pending = append(n.pending, b.ID)
	return nil
}

func (n *recordingNotifier) NotifyWaitlistOpening(_ context.Context, e *entity.WaitlistEntry, _ *entity.Tenant) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.openings = append(n.openings, e.ID)
	return nil
}

func (n *recordingNotifier) openingsFor() []uuid.UUID {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]uuid.UUID(nil), n.openings...)
}

func (n *recordingNotifier) pendingCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.pending)
}

// eventually polls cond until it holds or a second passes.
func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

// ---- fixture

type fixture struct {
	store    *memStore
	repo     *repository.Repository
	service  *Service
	payments *fakePayments
	notifier *recordingNotifier
	tokens   *utils.TokenManager
	tenant   *entity.Tenant
	haircut  *entity.Service // 60 minutes, 50.00
	date     time.Time
}

func testConfig() *utils.Config {
	return &utils.Config{
		Redis: utils.RedisConfig{CacheTTL: time.Minute},
		JWT:   utils.JWTConfig{Secret: "test-secret", Issuer: "appointment-booking", TokenTTL: time.Hour},
		Booking: utils.BookingConfig{
			PlanLimits:    map[string]int{"free": 50, "starter": 300, "pro": 2000, "business": 0},
			HorizonDays:   30,
			WaitlistHold:  4 * time.Hour,
			NotifyTimeout: time.Second,
		},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := newMemStore()

	tenant := &entity.Tenant{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New()},
		Slug:         "acme",
		Name:         "Acme Salon",
		IsActive:     true,
		Tier:         entity.TierPro,
	}
	st.tenants[tenant.ID] = tenant

	haircut := &entity.Service{
		BaseNoDelete:    entity.BaseNoDelete{ID: uuid.New()},
		TenantID:        tenant.ID,
		Name:            "Haircut",
		DurationMinutes: 60,
		Price:           decimal.RequireFromString("50.00"),
		IsActive:        true,
	}
	st.services[haircut.ID] = haircut

	f := &fixture{
		store:    st,
		repo:     st.repository(),
		payments: &fakePayments{statuses: map[string]string{}},
		notifier: &recordingNotifier{},
		tenant:   tenant,
		haircut:  haircut,
		date:     today(time.Now()).AddDate(0, 0, 7),
	}
	tokens, err := utils.NewTokenManager(testConfig().JWT)
	if err != nil {
		t.Fatal(err)
	}
	f.tokens = tokens

	f.addSlots(f.date, "09:00", 8)
	f.service = NewService(f.repo, cache.NewMemory(), f.payments, f.notifier, f.tokens, testConfig(), zap.NewNop())
	return f
}

// addSlots adds n consecutive 30 minute slots starting at start.
func (f *fixture) addSlots(date time.Time, start string, n int) []*entity.TimeSlot {
	begin, _ := utils.ParseClock(start)
	var added []*entity.TimeSlot
	for i := 0; i < n; i++ {
		s := &entity.TimeSlot{
			BaseNoDelete: entity.BaseNoDelete{ID: uuid.New()},
			TenantID:     f.tenant.ID,
			Date:         date,
			StartTime:    utils.FormatClock(begin + i*30),
			EndTime:      utils.FormatClock(begin + (i+1)*30),
			IsAvailable:  true,
		}
		f.store.slots = append(f.store.slots, s)
		added = append(added, s)
	}
	return added
}

func (f *fixture) slotAt(date time.Time, start string) *entity.TimeSlot {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, s := range f.store.slots {
		if s.Date.Equal(date) && s.StartTime == start {
			c := *s
			return &c
		}
	}
	return nil
}

// setAvailable overwrites the availability of the slots starting at starts.
func (f *fixture) setAvailable(date time.Time, available bool, starts ...string) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, s := range f.store.slots {
		for _, start := range starts {
			if s.Date.Equal(date) && s.StartTime == start {
				s.IsAvailable = available
			}
		}
	}
}

func (f *fixture) addService(name string, minutes int, price string) *entity.Service {
	svc := &entity.Service{
		BaseNoDelete:    entity.BaseNoDelete{ID: uuid.New()},
		TenantID:        f.tenant.ID,
		Name:            name,
		DurationMinutes: minutes,
		Price:           decimal.RequireFromString(price),
		IsActive:        true,
	}
	f.store.services[svc.ID] = svc
	return svc
}
