package repository

import (
	"context"
	"errors"

	"github.com/emrahsandernet/kasarcim/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShipmentRepo interface {
	Create(ctx context.Context, s *models.Shipment) error
	// Save writes the full row so shipped_at / delivered_at get stamped.
	Save(ctx context.Context, s *models.Shipment) error
	GetByID(ctx context.Context, id uint) (*models.Shipment, error)
	GetByOrderID(ctx context.Context, orderID uint) (*models.Shipment, error)
	List(ctx context.Context, userID *uuid.UUID) ([]models.Shipment, error)
}

type shipmentRepo struct{ db *gorm.DB }

func NewShipmentRepo(db *gorm.DB) ShipmentRepo { return &shipmentRepo{db: db} }

func (r *shipmentRepo) Create(ctx context.Context, s *models.Shipment) error {
	return r.db.WithContext(ctx).Omit("Order").Create(s).Error
}

func (r *shipmentRepo) Save(ctx context.Context, s *models.Shipment) error {
	return r.db.WithContext(ctx).Omit("Order").Save(s).Error
}

func (r *shipmentRepo) GetByID(ctx context.Context, id uint) (*models.Shipment, error) {
	var s models.Shipment
	err := r.db.WithContext(ctx).Preload("Order").First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &s, err
}

func (r *shipmentRepo) GetByOrderID(ctx context.Context, orderID uint) (*models.Shipment, error) {
	var s models.Shipment
	err := r.db.WithContext(ctx).First(&s, "order_id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &s, err
}

func (r *shipmentRepo) List(ctx context.Context, userID *uuid.UUID) ([]models.Shipment, error) {
	q := r.db.WithContext(ctx).Model(&models.Shipment{}).Preload("Order")
	if userID != nil {
		q = q.Where("order_id IN (SELECT id FROM orders WHERE user_id = ?)", *userID)
	}
	var list []models.Shipment
	err := q.Order("created_at DESC").Find(&list).Error
	return list, err
}
