package service_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/emrahsandernet/kasarcim/internal/models"
	"github.com/emrahsandernet/kasarcim/internal/repository"
	"github.com/emrahsandernet/kasarcim/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// store backs the in-memory repositories. Writes are not rolled back when a
// WithTx callback fails, so tests only assert state on the success path or
// on failures that happen before the first write.
type store struct {
	mu sync.Mutex

	nextID        uint
	products      map[uint]*models.Product
	orders        map[uint]*models.Order
	items         []models.OrderItem
	coupons       map[uint]*models.Coupon
	payments      map[uint]*models.Payment
	shipments     map[uint]*models.Shipment
	users         map[uuid.UUID]*models.User
	addresses     map[uint]*models.Address
	resets        map[uint]*models.PasswordResetToken
	announcements map[uint]*models.Announcement
	blogDates     []time.Time

	// beforeReserve runs ahead of stock and coupon reservations, outside the lock.
	beforeReserve func()
}

func newStore() *store {
	return &store{
		products:      map[uint]*models.Product{},
		orders:        map[uint]*models.Order{},
		coupons:       map[uint]*models.Coupon{},
		payments:      map[uint]*models.Payment{},
		shipments:     map[uint]*models.Shipment{},
		users:         map[uuid.UUID]*models.User{},
		addresses:     map[uint]*models.Address{},
		resets:        map[uint]*models.PasswordResetToken{},
		announcements: map[uint]*models.Announcement{},
	}
}

func (s *store) id() uint {
	s.nextID++
	return s.nextID
}

func (s *store) repo() *repository.Repository {
	return &repository.Repository{
		Products:       &fakeProducts{s: s},
		Orders:         &fakeOrders{s: s},
		OrderItems:     &fakeOrderItems{s: s},
		Coupons:        &fakeCoupons{s: s},
		Payments:       &fakePayments{s: s},
		Shipments:      &fakeShipments{s: s},
		Users:          &fakeUsers{s: s},
		Addresses:      &fakeAddresses{s: s},
		PasswordResets: &fakeResets{s: s},
		Announcements:  &fakeAnnouncements{s: s},
		Blogs:          &fakeBlogs{s: s},
	}
}

func (s *store) addProduct(name string, price int64, stock int) *models.Product {
	p := &models.Product{ID: s.id(), Name: name, Slug: strings.ToLower(name), Price: decimal.NewFromInt(price), Stock: stock, Available: true}
	s.products[p.ID] = p
	return p
}

func (s *store) addUser(email string, staff bool) *models.User {
	u := &models.User{ID: uuid.New(), Username: strings.Split(email, "@")[0], Email: email, Password: "hashed:secret123", IsStaff: staff, IsActive: true, FirstName: "Ayşe", LastName: "Yılmaz"}
	s.users[u.ID] = u
	return u
}

func (s *store) addAddress(userID uuid.UUID) *models.Address {
	a := &models.Address{ID: s.id(), UserID: userID, Title: "Ev", AddressType: models.AddressShipping, FirstName: "Ayşe", LastName: "Yılmaz",
		PhoneNumber: "5551112233", Address: "Atatürk Cad. 1", City: "İzmir", District: "Konak", Country: models.DefaultCountry}
	s.addresses[a.ID] = a
	return a
}

func (s *store) addCoupon(code string, pct int64, minimum int64, maxUsage int) *models.Coupon {
	now := time.Now()
	c := &models.Coupon{ID: s.id(), Code: code, DiscountType: models.DiscountTypePercentage, DiscountValue: decimal.NewFromInt(pct),
		MinPurchaseAmount: decimal.NewFromInt(minimum), ValidFrom: now.Add(-time.Hour), ValidTo: now.Add(time.Hour), Active: true, MaxUsage: maxUsage}
	s.coupons[c.ID] = c
	return c
}

func userCtx(u *models.User) context.Context {
	ctx := service.WithUserID(context.Background(), u.ID)
	return service.WithRole(ctx, service.RoleFor(u.IsStaff))
}

// products

type fakeProducts struct {
	repository.ProductRepo
	s *store
}

func (f *fakeProducts) GetByID(_ context.Context, id uint) (*models.Product, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	p, ok := f.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) BatchGetByIDs(_ context.Context, ids []uint) ([]models.Product, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []models.Product
	for _, id := range ids {
		if p, ok := f.s.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProducts) TryReserveStock(_ context.Context, id uint, qty int) (bool, error) {
	if f.s.beforeReserve != nil {
		f.s.beforeReserve()
	}
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	p, ok := f.s.products[id]
	if !ok || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	return true, nil
}

func (f *fakeProducts) ReleaseStock(_ context.Context, id uint, qty int) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if p, ok := f.s.products[id]; ok {
		p.Stock += qty
	}
	return nil
}

// orders

type fakeOrders struct {
	repository.OrderRepo
	s *store
}

func (f *fakeOrders) Create(_ context.Context, o *models.Order) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	o.ID = f.s.id()
	o.CreatedAt = time.Now()
	o.Recalculate()
	cp := *o
	f.s.orders[o.ID] = &cp
	return nil
}

func (f *fakeOrders) Save(_ context.Context, o *models.Order) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	o.Recalculate()
	cp := *o
	cp.Items, cp.Coupon, cp.Payment, cp.Shipment, cp.User = nil, nil, nil, nil, nil
	f.s.orders[o.ID] = &cp
	return nil
}

func (f *fakeOrders) UpdatePricing(_ context.Context, o *models.Order) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	cur, ok := f.s.orders[o.ID]
	if !ok || cur.Status != models.OrderStatusCreated {
		return false, nil
	}
	o.Recalculate()
	cur.CouponID = o.CouponID
	cur.TotalPrice, cur.Discount = o.TotalPrice, o.Discount
	cur.ShippingCost, cur.CODFee, cur.FinalPrice = o.ShippingCost, o.CODFee, o.FinalPrice
	return true, nil
}

func (f *fakeOrders) load(id uint) *models.Order {
	o, ok := f.s.orders[id]
	if !ok {
		return nil
	}
	cp := *o
	cp.Items = nil
	for _, it := range f.s.items {
		if it.OrderID == id {
			if p, ok := f.s.products[it.ProductID]; ok {
				pc := *p
				it.Product = &pc
			}
			cp.Items = append(cp.Items, it)
		}
	}
	if o.CouponID != nil {
		if c, ok := f.s.coupons[*o.CouponID]; ok {
			cc := *c
			cp.Coupon = &cc
		}
	}
	for _, p := range f.s.payments {
		if p.OrderID == id {
			pc := *p
			cp.Payment = &pc
		}
	}
	for _, sh := range f.s.shipments {
		if sh.OrderID == id {
			sc := *sh
			cp.Shipment = &sc
		}
	}
	if o.UserID != nil {
		if u, ok := f.s.users[*o.UserID]; ok {
			uc := *u
			cp.User = &uc
		}
	}
	return &cp
}

func (f *fakeOrders) GetByID(_ context.Context, id uint) (*models.Order, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return f.load(id), nil
}

func (f *fakeOrders) GetByIDForUser(_ context.Context, id uint, userID uuid.UUID) (*models.Order, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	o := f.load(id)
	if o == nil || !o.IsOwnedBy(userID) {
		return nil, nil
	}
	return o, nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, id uint, status models.OrderStatus) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if o, ok := f.s.orders[id]; ok {
		o.Status = status
	}
	return nil
}

func (f *fakeOrders) MarkPaid(_ context.Context, id uint) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if o, ok := f.s.orders[id]; ok {
		now := time.Now()
		o.Status = models.OrderStatusPaid
		o.PaidAt = &now
	}
	return nil
}

func (f *fakeOrders) List(_ context.Context, flt repository.OrderListFilter) ([]models.Order, int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []models.Order
	for id := range f.s.orders {
		o := f.load(id)
		if flt.UserID != nil && !o.IsOwnedBy(*flt.UserID) {
			continue
		}
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, int64(len(out)), nil
}

type fakeOrderItems struct {
	repository.OrderItemRepo
	s *store
}

func (f *fakeOrderItems) BulkCreate(_ context.Context, items []models.OrderItem) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for i := range items {
		items[i].ID = f.s.id()
		f.s.items = append(f.s.items, items[i])
	}
	return nil
}

func (f *fakeOrderItems) Create(_ context.Context, it *models.OrderItem) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	it.ID = f.s.id()
	cp := *it
	cp.Product = nil
	f.s.items = append(f.s.items, cp)
	return nil
}

// coupons

type fakeCoupons struct {
	repository.CouponRepo
	s *store
}

func (f *fakeCoupons) GetByCode(_ context.Context, code string) (*models.Coupon, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, c := range f.s.coupons {
		if c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeCoupons) TryConsume(_ context.Context, id uint) (bool, error) {
	if f.s.beforeReserve != nil {
		f.s.beforeReserve()
	}
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	c, ok := f.s.coupons[id]
	if !ok || c.UsageCount >= c.MaxUsage {
		return false, nil
	}
	c.UsageCount++
	return true, nil
}

// payments

type fakePayments struct {
	repository.PaymentRepo
	s *store
}

func (f *fakePayments) Create(_ context.Context, p *models.Payment) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, ex := range f.s.payments {
		if ex.OrderID == p.OrderID {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	p.ID = f.s.id()
	cp := *p
	f.s.payments[p.ID] = &cp
	return nil
}

func (f *fakePayments) Save(_ context.Context, p *models.Payment) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	cp := *p
	cp.Order = nil
	f.s.payments[p.ID] = &cp
	return nil
}

func (f *fakePayments) GetByID(_ context.Context, id uint) (*models.Payment, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	p, ok := f.s.payments[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	if o, ok := f.s.orders[p.OrderID]; ok {
		oc := *o
		cp.Order = &oc
	}
	return &cp, nil
}

func (f *fakePayments) GetByOrderID(_ context.Context, orderID uint) (*models.Payment, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, p := range f.s.payments {
		if p.OrderID == orderID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakePayments) UpdateStatus(_ context.Context, id uint, status models.PaymentStatus) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if p, ok := f.s.payments[id]; ok {
		p.Status = status
	}
	return nil
}

// shipments

type fakeShipments struct {
	repository.ShipmentRepo
	s *store
}

func (f *fakeShipments) Create(_ context.Context, sh *models.Shipment) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	sh.ID = f.s.id()
	sh.StampTimestamps(time.Now())
	cp := *sh
	cp.Order = nil
	f.s.shipments[sh.ID] = &cp
	return nil
}

func (f *fakeShipments) Save(_ context.Context, sh *models.Shipment) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	sh.StampTimestamps(time.Now())
	cp := *sh
	cp.Order = nil
	f.s.shipments[sh.ID] = &cp
	return nil
}

func (f *fakeShipments) GetByID(_ context.Context, id uint) (*models.Shipment, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	sh, ok := f.s.shipments[id]
	if !ok {
		return nil, nil
	}
	cp := *sh
	if o, ok := f.s.orders[sh.OrderID]; ok {
		oc := *o
		cp.Order = &oc
	}
	return &cp, nil
}

func (f *fakeShipments) GetByOrderID(_ context.Context, orderID uint) (*models.Shipment, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, sh := range f.s.shipments {
		if sh.OrderID == orderID {
			cp := *sh
			return &cp, nil
		}
	}
	return nil, nil
}

// users

type fakeUsers struct {
	repository.UserRepo
	s *store
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if u.Profile == nil {
		u.Profile = &models.UserProfile{UserID: u.ID}
	}
	cp := *u
	f.s.users[u.ID] = &cp
	return nil
}

func (f *fakeUsers) Save(_ context.Context, u *models.User) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	cp := *u
	f.s.users[u.ID] = &cp
	return nil
}

func (f *fakeUsers) SaveProfile(_ context.Context, p *models.UserProfile) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if u, ok := f.s.users[p.UserID]; ok {
		cp := *p
		u.Profile = &cp
	}
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, u := range f.s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	u, err := f.GetByEmail(ctx, email)
	return u != nil, err
}

func (f *fakeUsers) ExistsByUsername(_ context.Context, username string) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, u := range f.s.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if u, ok := f.s.users[id]; ok {
		u.Password = hash
	}
	return nil
}

// addresses

type fakeAddresses struct {
	repository.AddressRepo
	s *store
}

func (f *fakeAddresses) Create(_ context.Context, a *models.Address) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	a.ID = f.s.id()
	a.CreatedAt = time.Now()
	cp := *a
	f.s.addresses[a.ID] = &cp
	return nil
}

func (f *fakeAddresses) Save(_ context.Context, a *models.Address) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	cp := *a
	f.s.addresses[a.ID] = &cp
	return nil
}

func (f *fakeAddresses) GetForUser(_ context.Context, id uint, userID uuid.UUID) (*models.Address, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	a, ok := f.s.addresses[id]
	if !ok || a.UserID != userID {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAddresses) ListByUser(_ context.Context, userID uuid.UUID, typ *models.AddressType) ([]models.Address, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []models.Address
	for _, a := range f.s.addresses {
		if a.UserID == userID && (typ == nil || a.AddressType == *typ) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeAddresses) ClearDefault(_ context.Context, userID uuid.UUID, typ models.AddressType, exceptID uint) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, a := range f.s.addresses {
		if a.UserID == userID && a.AddressType == typ && a.ID != exceptID {
			a.IsDefault = false
		}
	}
	return nil
}

// password resets

type fakeResets struct {
	repository.PasswordResetRepo
	s *store
}

func (f *fakeResets) Create(_ context.Context, t *models.PasswordResetToken) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	t.ID = f.s.id()
	t.CreatedAt = time.Now()
	cp := *t
	f.s.resets[t.ID] = &cp
	return nil
}

func (f *fakeResets) GetByToken(_ context.Context, token string) (*models.PasswordResetToken, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, t := range f.s.resets {
		if t.Token == token {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeResets) MarkUsed(_ context.Context, id uint) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	t, ok := f.s.resets[id]
	if !ok || t.IsUsed {
		return false, nil
	}
	t.IsUsed = true
	return true, nil
}

func (f *fakeResets) InvalidateForUser(_ context.Context, userID uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, t := range f.s.resets {
		if t.UserID == userID {
			t.IsUsed = true
		}
	}
	return nil
}

// announcements

type fakeAnnouncements struct {
	repository.AnnouncementRepo
	s     *store
	lists int
}

func (f *fakeAnnouncements) Create(_ context.Context, a *models.Announcement) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	a.ID = f.s.id()
	cp := *a
	f.s.announcements[a.ID] = &cp
	return nil
}

func (f *fakeAnnouncements) List(_ context.Context, activeOnly bool) ([]models.Announcement, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.lists++
	var out []models.Announcement
	for _, a := range f.s.announcements {
		if !activeOnly || a.IsActive {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

// blogs

type fakeBlogs struct {
	repository.BlogRepo
	s *store
}

func (f *fakeBlogs) PublishedDates(context.Context) ([]time.Time, error) {
	return f.s.blogDates, nil
}

// collaborators

type mockEventBus struct{ mock.Mock }

func (m *mockEventBus) PublishOrderCreated(ctx context.Context, e service.OrderEvent) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockEventBus) PublishOrderPaid(ctx context.Context, e service.OrderEvent) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockEventBus) PublishOrderShipped(ctx context.Context, e service.OrderEvent) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockEventBus) PublishOrderDelivered(ctx context.Context, e service.OrderEvent) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockEventBus) PublishUserRegistered(ctx context.Context, e service.UserRegisteredEvent) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockEventBus) PublishPasswordResetRequested(ctx context.Context, e service.PasswordResetRequestedEvent) error {
	return m.Called(ctx, e).Error(0)
}

type fakeHasher struct{}

func (fakeHasher) Hash(pw string) (string, error) { return "hashed:" + pw, nil }
func (fakeHasher) Compare(hash, pw string) bool   { return hash == "hashed:"+pw }

type fakeTokens struct {
	mu     sync.Mutex
	issued map[string]*service.Claims
}

func newFakeTokens() *fakeTokens { return &fakeTokens{issued: map[string]*service.Claims{}} }

func (f *fakeTokens) SignAccess(_ context.Context, sub uuid.UUID, role string, ttl time.Duration) (string, time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	exp := time.Now().Add(ttl)
	tok := "tok-" + uuid.NewString()
	f.issued[tok] = &service.Claims{UserID: sub, Role: role, ID: uuid.NewString(), Exp: exp}
	return tok, exp, nil
}

func (f *fakeTokens) ParseAndValidateAccess(_ context.Context, token string) (*service.Claims, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.issued[token]
	if !ok {
		return nil, errors.New("invalid token")
	}
	return c, nil
}

type fakeCache struct {
	mu        sync.Mutex
	limits    map[string]time.Duration
	blacklist map[string]time.Duration
}

func newFakeCache() *fakeCache {
	return &fakeCache{limits: map[string]time.Duration{}, blacklist: map[string]time.Duration{}}
}

func (c *fakeCache) SetRateLimit(_ context.Context, key string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.limits[key] = ttl
	return nil
}

func (c *fakeCache) CheckRateLimit(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.limits[key]
	return ok, nil
}

func (c *fakeCache) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blacklist[jti] = ttl
	return nil
}

func (c *fakeCache) IsTokenBlacklisted(_ context.Context, jti string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.blacklist[jti]
	return ok, nil
}
