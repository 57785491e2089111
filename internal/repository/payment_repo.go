package repository

import (
	"context"
	"errors"

	"github.com/emrahsandernet/kasarcim/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentRepo interface {
	Create(ctx context.Context, p *models.Payment) error
	Save(ctx context.Context, p *models.Payment) error
	GetByID(ctx context.Context, id uint) (*models.Payment, error)
	GetByOrderID(ctx context.Context, orderID uint) (*models.Payment, error)
	// List returns every payment when userID is nil, otherwise only that user's.
	List(ctx context.Context, userID *uuid.UUID) ([]models.Payment, error)
	UpdateStatus(ctx context.Context, id uint, status models.PaymentStatus) error
}

type paymentRepo struct{ db *gorm.DB }

func NewPaymentRepo(db *gorm.DB) PaymentRepo { return &paymentRepo{db: db} }

func (r *paymentRepo) Create(ctx context.Context, p *models.Payment) error {
	return r.db.WithContext(ctx).Omit("Order").Create(p).Error
}

func (r *paymentRepo) Save(ctx context.Context, p *models.Payment) error {
	return r.db.WithContext(ctx).Omit("Order").Save(p).Error
}

func (r *paymentRepo) GetByID(ctx context.Context, id uint) (*models.Payment, error) {
	var p models.Payment
	err := r.db.WithContext(ctx).Preload("Order").First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *paymentRepo) GetByOrderID(ctx context.Context, orderID uint) (*models.Payment, error) {
	var p models.Payment
	err := r.db.WithContext(ctx).First(&p, "order_id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *paymentRepo) List(ctx context.Context, userID *uuid.UUID) ([]models.Payment, error) {
	q := r.db.WithContext(ctx).Model(&models.Payment{}).Preload("Order")
	if userID != nil {
		q = q.Where("order_id IN (SELECT id FROM orders WHERE user_id = ?)", *userID)
	}
	var list []models.Payment
	err := q.Order("payment_date DESC").Find(&list).Error
	return list, err
}

func (r *paymentRepo) UpdateStatus(ctx context.Context, id uint, status models.PaymentStatus) error {
	return r.db.WithContext(ctx).Model(&models.Payment{}).Where("id = ?", id).
		Updates(map[string]any{"status": status}).Error
}
