package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/emrahsandernet/kasarcim/internal/models"

	"gorm.io/gorm"
)

type CouponRepo interface {
	Create(ctx context.Context, c *models.Coupon) error
	Save(ctx context.Context, c *models.Coupon) error
	Delete(ctx context.Context, id uint) (bool, error)
	GetByID(ctx context.Context, id uint) (*models.Coupon, error)
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
	List(ctx context.Context, limit, offset int) ([]models.Coupon, int64, error)
	// TryConsume bumps usage_count only while it is below max_usage.
	TryConsume(ctx context.Context, id uint) (bool, error)
}

type couponRepo struct{ db *gorm.DB }

func NewCouponRepo(db *gorm.DB) CouponRepo { return &couponRepo{db: db} }

func (r *couponRepo) Create(ctx context.Context, c *models.Coupon) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *couponRepo) Save(ctx context.Context, c *models.Coupon) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *couponRepo) Delete(ctx context.Context, id uint) (bool, error) {
	tx := r.db.WithContext(ctx).Delete(&models.Coupon{}, "id = ?", id)
	return tx.RowsAffected > 0, tx.Error
}

func (r *couponRepo) GetByID(ctx context.Context, id uint) (*models.Coupon, error) {
	var c models.Coupon
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &c, err
}

func (r *couponRepo) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var c models.Coupon
	err := r.db.WithContext(ctx).First(&c, "code = ?", strings.TrimSpace(code)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &c, err
}

func (r *couponRepo) List(ctx context.Context, limit, offset int) ([]models.Coupon, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Coupon{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	limit, offset = clampPage(limit, offset)

	var list []models.Coupon
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, err
}

func (r *couponRepo) TryConsume(ctx context.Context, id uint) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&models.Coupon{}).
		Where("id = ? AND usage_count < max_usage", id).
		UpdateColumn("usage_count", gorm.Expr("usage_count + 1"))
	return tx.RowsAffected > 0, tx.Error
}
