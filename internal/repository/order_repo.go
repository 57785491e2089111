package repository

import (
	"context"
	"errors"

	"github.com/emrahsandernet/kasarcim/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderListFilter struct {
	UserID *uuid.UUID
	Status *models.OrderStatus
	Limit  int
	Offset int
}

type OrderRepo interface {
	Create(ctx context.Context, o *models.Order) error
	// Save writes the full row so the order hooks recompute derived totals.
	Save(ctx context.Context, o *models.Order) error
	// UpdatePricing recomputes the totals and writes only the coupon and money columns,
	// and only while the order is still created. It reports false otherwise.
	UpdatePricing(ctx context.Context, o *models.Order) (bool, error)
	GetByID(ctx context.Context, id uint) (*models.Order, error)
	GetByIDForUser(ctx context.Context, id uint, userID uuid.UUID) (*models.Order, error)
	UpdateStatus(ctx context.Context, id uint, status models.OrderStatus) error
	MarkPaid(ctx context.Context, id uint) error
	List(ctx context.Context, f OrderListFilter) ([]models.Order, int64, error)
	// HasPurchased reports whether the user owns an order in one of statuses containing the product.
	HasPurchased(ctx context.Context, userID uuid.UUID, productID uint, statuses []models.OrderStatus) (bool, error)
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) OrderRepo { return &orderRepo{db: db} }

func (r *orderRepo) Create(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Omit("User", "Coupon", "Items", "Shipment", "Payment").Create(o).Error
}

func (r *orderRepo) Save(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Omit("User", "Coupon", "Items", "Shipment", "Payment").Save(o).Error
}

func (r *orderRepo) UpdatePricing(ctx context.Context, o *models.Order) (bool, error) {
	o.Recalculate()
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", o.ID, models.OrderStatusCreated).
		Updates(map[string]any{
			"coupon_id":     o.CouponID,
			"total_price":   o.TotalPrice,
			"discount":      o.Discount,
			"shipping_cost": o.ShippingCost,
			"cod_fee":       o.CODFee,
			"final_price":   o.FinalPrice,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *orderRepo) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Product").
		Preload("Coupon").
		Preload("Shipment").
		Preload("Payment").
		Preload("User")
}

func (r *orderRepo) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var ord models.Order
	err := r.preloaded(ctx).First(&ord, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ord, err
}

func (r *orderRepo) GetByIDForUser(ctx context.Context, id uint, userID uuid.UUID) (*models.Order, error) {
	var ord models.Order
	err := r.preloaded(ctx).First(&ord, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ord, err
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id uint, status models.OrderStatus) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).
		Updates(map[string]any{"status": status}).Error
}

func (r *orderRepo) MarkPaid(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).
		Updates(map[string]any{
			"status":  models.OrderStatusPaid,
			"paid_at": r.db.NowFunc(),
		}).Error
}

func (r *orderRepo) List(ctx context.Context, f OrderListFilter) ([]models.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{})

	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	var list []models.Order
	err := q.Preload("Items.Product").Preload("Coupon").Preload("Shipment").Preload("Payment").
		Order("created_at DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&list).Error
	return list, total, err
}

func (r *orderRepo) HasPurchased(ctx context.Context, userID uuid.UUID, productID uint, statuses []models.OrderStatus) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.product_id = ? AND orders.user_id = ? AND orders.status IN ?", productID, userID, statuses).
		Count(&n).Error
	return n > 0, err
}
