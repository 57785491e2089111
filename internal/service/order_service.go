package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/emrahsandernet/kasarcim/internal/models"
	"github.com/emrahsandernet/kasarcim/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CreateOrderItem struct {
	ProductID uint
	Quantity  int
}

type GuestInfo struct {
	FullName   string
	Email      string
	Phone      string
	Address    string
	City       string
	District   string
	PostalCode string
}

type CreateOrderInput struct {
	Items         []CreateOrderItem
	CouponCode    string
	Notes         string
	PaymentMethod string
	AddressID     *uint
	Guest         *GuestInfo
}

type OrderFilter struct {
	Status *models.OrderStatus
	Limit  int
	Offset int
}

type OrderService struct {
	repo   *repository.Repository
	notify orderNotifier
	now    func() time.Time
	log    *zap.Logger
}

func NewOrderService(repo *repository.Repository, events EventBus, log *zap.Logger) *OrderService {
	return &OrderService{
		repo:   repo,
		notify: newOrderNotifier(events, log),
		now:    time.Now,
		log:    log,
	}
}

var guestRequired = []string{"full_name", "email", "phone", "address", "city", "district"}

func normalizePaymentMethod(m string) string {
	if m == models.PaymentMethodCashOnDelivery {
		return m
	}
	return models.PaymentMethodOnline
}

func splitFullName(full string) (string, string) {
	full = strings.TrimSpace(full)
	first, last, _ := strings.Cut(full, " ")
	return first, strings.TrimSpace(last)
}

// CreateOrder places an order for the authenticated user or, without a user in ctx, a guest.
// Stock and coupon usage are reserved in the same transaction as the order rows.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, ErrEmptyItems
	}
	for i := range in.Items {
		if in.Items[i].Quantity == 0 {
			in.Items[i].Quantity = 1
		}
		if in.Items[i].Quantity < 0 {
			return nil, ErrQuantityInvalid
		}
	}

	order := &models.Order{
		Status:        models.OrderStatusCreated,
		PaymentMethod: normalizePaymentMethod(in.PaymentMethod),
		Notes:         in.Notes,
	}
	if err := s.fillRecipient(ctx, order, in); err != nil {
		return nil, err
	}

	now := s.now()
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		ids := make([]uint, 0, len(in.Items))
		for _, it := range in.Items {
			ids = append(ids, it.ProductID)
		}
		products, err := tx.Products.BatchGetByIDs(ctx, ids)
		if err != nil {
			return err
		}
		byID := make(map[uint]*models.Product, len(products))
		for i := range products {
			byID[products[i].ID] = &products[i]
		}

		items := make([]models.OrderItem, 0, len(in.Items))
		subtotal := decimal.Zero
		for _, it := range in.Items {
			p, ok := byID[it.ProductID]
			if !ok || !p.Available {
				return fmt.Errorf("%w: %d", ErrUnknownProduct, it.ProductID)
			}
			reserved, err := tx.Products.TryReserveStock(ctx, p.ID, it.Quantity)
			if err != nil {
				return err
			}
			if !reserved {
				return fmt.Errorf("%w: %s", ErrInsufficientStock, p.Name)
			}
			line := models.OrderItem{ProductID: p.ID, Product: p, Price: UnitPrice(p, now), Quantity: it.Quantity}
			subtotal = subtotal.Add(line.Total())
			items = append(items, line)
		}
		order.TotalPrice = subtotal

		if code := strings.TrimSpace(in.CouponCode); code != "" {
			if err := s.tryCoupon(ctx, tx, order, code, now); err != nil {
				return err
			}
		}

		if err := tx.Orders.Create(ctx, order); err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
			items[i].Product = nil
		}
		if err := tx.OrderItems.BulkCreate(ctx, items); err != nil {
			return err
		}

		loaded, err := tx.Orders.GetByID(ctx, order.ID)
		if err != nil {
			return err
		}
		if loaded != nil {
			order = loaded
		}
		return nil
	})
	if err != nil {
		s.log.Warn("order create rejected", zap.Error(err))
		return nil, err
	}

	s.log.Info("order created",
		zap.Uint("order_id", order.ID),
		zap.String("code", order.DisplayCode()),
		zap.Bool("guest", order.IsGuestOrder),
		zap.String("final_price", order.FinalPrice.StringFixed(2)),
	)
	s.notify.created(ctx, order)
	return order, nil
}

// tryCoupon applies a usable coupon. Unknown or unusable codes leave the order untouched.
func (s *OrderService) tryCoupon(ctx context.Context, tx *repository.Repository, o *models.Order, code string, now time.Time) error {
	c, err := tx.Coupons.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	if c == nil || !c.IsValid(now) || !c.MeetsMinimum(o.TotalPrice) {
		s.log.Info("coupon ignored on order create", zap.String("code", code))
		return nil
	}
	ok, err := tx.Coupons.TryConsume(ctx, c.ID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	o.CouponID = &c.ID
	o.Coupon = c
	o.Discount = c.DiscountFor(o.TotalPrice)
	return nil
}

func (s *OrderService) fillRecipient(ctx context.Context, o *models.Order, in CreateOrderInput) error {
	if uid, ok := UserIDFromContext(ctx); ok && uid != uuid.Nil {
		if in.AddressID == nil {
			return ErrInvalidAddress
		}
		addr, err := s.repo.Addresses.GetForUser(ctx, *in.AddressID, uid)
		if err != nil {
			return err
		}
		if addr == nil {
			return ErrInvalidAddress
		}
		u, err := s.repo.Users.GetByID(ctx, uid)
		if err != nil {
			return err
		}
		if u == nil {
			return ErrUnauthorized
		}
		o.UserID = &uid
		o.FirstName = addr.FirstName
		o.LastName = addr.LastName
		o.Email = u.Email
		o.Address = addr.Address
		o.City = addr.City
		o.District = addr.District
		o.PostalCode = addr.PostalCode
		o.Country = addr.Country
		o.PhoneNumber = addr.PhoneNumber
		return nil
	}

	g := in.Guest
	if g == nil {
		return ErrGuestInfoMissing
	}
	if err := missingFields("guest information is incomplete", map[string]string{
		"full_name": g.FullName,
		"email":     g.Email,
		"phone":     g.Phone,
		"address":   g.Address,
		"city":      g.City,
		"district":  g.District,
	}, guestRequired); err != nil {
		return err
	}
	o.IsGuestOrder = true
	o.FirstName, o.LastName = splitFullName(g.FullName)
	o.Email = strings.TrimSpace(g.Email)
	o.PhoneNumber = strings.TrimSpace(g.Phone)
	o.Address = strings.TrimSpace(g.Address)
	o.City = strings.TrimSpace(g.City)
	o.District = strings.TrimSpace(g.District)
	o.PostalCode = strings.TrimSpace(g.PostalCode)
	o.Country = models.DefaultCountry
	return nil
}

// scopedOrder loads an order visible to the caller: staff see all, customers their own.
func scopedOrder(ctx context.Context, repo *repository.Repository, id uint) (*models.Order, error) {
	uid, role, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	var o *models.Order
	if role == RoleStaff {
		o, err = repo.Orders.GetByID(ctx, id)
	} else {
		o, err = repo.Orders.GetByIDForUser(ctx, id, uid)
	}
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	return scopedOrder(ctx, s.repo, id)
}

func (s *OrderService) ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, int64, error) {
	userID, role, err := requireAuth(ctx)
	if err != nil {
		return nil, 0, err
	}
	rf := repository.OrderListFilter{Status: f.Status, Limit: f.Limit, Offset: f.Offset}
	if role != RoleStaff {
		rf.UserID = &userID
	}
	return s.repo.Orders.List(ctx, rf)
}

// AddItem appends a line to an unpaid order and reprices it.
func (s *OrderService) AddItem(ctx context.Context, orderID uint, in CreateOrderItem) (*models.OrderItem, *models.Order, error) {
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if in.Quantity < 0 {
		return nil, nil, ErrQuantityInvalid
	}
	o, err := scopedOrder(ctx, s.repo, orderID)
	if err != nil {
		return nil, nil, err
	}
	if o.Status != models.OrderStatusCreated {
		return nil, nil, ErrOrderNotEditable
	}
	p, err := s.repo.Products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, nil, err
	}
	if p == nil || !p.Available {
		return nil, nil, fmt.Errorf("%w: %d", ErrUnknownProduct, in.ProductID)
	}

	item := &models.OrderItem{OrderID: o.ID, ProductID: p.ID, Price: UnitPrice(p, s.now()), Quantity: in.Quantity}
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		cur, err := editableOrder(ctx, tx, o.ID)
		if err != nil {
			return err
		}
		ok, err := tx.Products.TryReserveStock(ctx, p.ID, in.Quantity)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s", ErrInsufficientStock, p.Name)
		}
		if err := tx.OrderItems.Create(ctx, item); err != nil {
			return err
		}
		cur.TotalPrice = cur.TotalPrice.Add(item.Total())
		if cur.Coupon != nil {
			cur.Discount = cur.Coupon.DiscountFor(cur.TotalPrice)
		}
		return updatePricing(ctx, tx, cur)
	})
	if err != nil {
		return nil, nil, err
	}
	item.Product = p
	o, err = s.repo.Orders.GetByID(ctx, o.ID)
	return item, o, err
}

// ApplyCoupon attaches a coupon to an unpaid order and consumes one use of it.
func (s *OrderService) ApplyCoupon(ctx context.Context, orderID uint, code string) (*models.Order, error) {
	o, err := scopedOrder(ctx, s.repo, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != models.OrderStatusCreated {
		return nil, ErrOrderNotEditable
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrCouponCodeRequired
	}
	if o.CouponID != nil {
		return nil, ErrOrderHasCoupon
	}
	c, err := s.repo.Coupons.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCouponNotFound
	}
	if !c.IsValid(s.now()) {
		return nil, ErrCouponInvalid
	}
	if !c.MeetsMinimum(o.TotalPrice) {
		return nil, fmt.Errorf("%w: minimum %s TL", ErrCouponBelowMinimum, c.MinPurchaseAmount.StringFixed(2))
	}

	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		cur, err := editableOrder(ctx, tx, o.ID)
		if err != nil {
			return err
		}
		if cur.CouponID != nil {
			return ErrOrderHasCoupon
		}
		ok, err := tx.Coupons.TryConsume(ctx, c.ID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCouponUsageExceeded
		}
		cur.CouponID = &c.ID
		cur.Discount = c.DiscountFor(cur.TotalPrice)
		return updatePricing(ctx, tx, cur)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Orders.GetByID(ctx, o.ID)
}

// editableOrder re-reads the order inside tx so a concurrent status change is seen.
func editableOrder(ctx context.Context, tx *repository.Repository, id uint) (*models.Order, error) {
	o, err := tx.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	if o.Status != models.OrderStatusCreated {
		return nil, ErrOrderNotEditable
	}
	return o, nil
}

func updatePricing(ctx context.Context, tx *repository.Repository, o *models.Order) error {
	ok, err := tx.Orders.UpdatePricing(ctx, o)
	if err != nil {
		return err
	}
	if !ok {
		return ErrOrderNotEditable
	}
	return nil
}

func checkPayable(o *models.Order) error {
	switch o.Status {
	case models.OrderStatusPaid, models.OrderStatusShipped, models.OrderStatusDelivered:
		return ErrOrderAlreadyPaid
	case models.OrderStatusCancelled:
		return ErrOrderCancelled
	}
	return nil
}

func (s *OrderService) MarkPaid(ctx context.Context, orderID uint) (*models.Order, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	o, err := s.repo.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	if err := checkPayable(o); err != nil {
		return nil, err
	}
	if err := s.repo.Orders.MarkPaid(ctx, o.ID); err != nil {
		return nil, err
	}
	o, err = s.repo.Orders.GetByID(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	s.log.Info("order marked paid", zap.Uint("order_id", orderID))
	s.notify.paid(ctx, o)
	return o, nil
}

// CancelOrder restores reserved stock and refunds a recorded payment.
func (s *OrderService) CancelOrder(ctx context.Context, orderID uint) (*models.Order, error) {
	o, err := scopedOrder(ctx, s.repo, orderID)
	if err != nil {
		return nil, err
	}
	switch o.Status {
	case models.OrderStatusShipped, models.OrderStatusDelivered:
		return nil, ErrOrderNotCancellable
	case models.OrderStatusCancelled:
		return nil, ErrAlreadyCancelled
	}

	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		if err := tx.Orders.UpdateStatus(ctx, o.ID, models.OrderStatusCancelled); err != nil {
			return err
		}
		for _, it := range o.Items {
			if err := tx.Products.ReleaseStock(ctx, it.ProductID, it.Quantity); err != nil {
				return err
			}
		}
		pay, err := tx.Payments.GetByOrderID(ctx, o.ID)
		if err != nil {
			return err
		}
		if pay != nil {
			return tx.Payments.UpdateStatus(ctx, pay.ID, models.PaymentStatusRefunded)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("order cancelled", zap.Uint("order_id", orderID))
	return s.repo.Orders.GetByID(ctx, o.ID)
}
