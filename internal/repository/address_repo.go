package repository

import (
	"context"
	"errors"

	"github.com/emrahsandernet/kasarcim/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AddressRepo interface {
	Create(ctx context.Context, a *models.Address) error
	Save(ctx context.Context, a *models.Address) error
	Delete(ctx context.Context, id uint, userID uuid.UUID) (bool, error)
	GetForUser(ctx context.Context, id uint, userID uuid.UUID) (*models.Address, error)
	ListByUser(ctx context.Context, userID uuid.UUID, typ *models.AddressType) ([]models.Address, error)
	// ClearDefault unsets is_default on the user's other addresses of the same type.
	ClearDefault(ctx context.Context, userID uuid.UUID, typ models.AddressType, exceptID uint) error
}

type addressRepo struct{ db *gorm.DB }

func NewAddressRepo(db *gorm.DB) AddressRepo { return &addressRepo{db: db} }

func (r *addressRepo) Create(ctx context.Context, a *models.Address) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *addressRepo) Save(ctx context.Context, a *models.Address) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *addressRepo) Delete(ctx context.Context, id uint, userID uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx).Delete(&models.Address{}, "id = ? AND user_id = ?", id, userID)
	return tx.RowsAffected > 0, tx.Error
}

func (r *addressRepo) GetForUser(ctx context.Context, id uint, userID uuid.UUID) (*models.Address, error) {
	var a models.Address
	err := r.db.WithContext(ctx).First(&a, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &a, err
}

func (r *addressRepo) ListByUser(ctx context.Context, userID uuid.UUID, typ *models.AddressType) ([]models.Address, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if typ != nil {
		q = q.Where("address_type = ?", *typ)
	}
	var list []models.Address
	err := q.Order("is_default DESC, created_at DESC").Find(&list).Error
	return list, err
}

func (r *addressRepo) ClearDefault(ctx context.Context, userID uuid.UUID, typ models.AddressType, exceptID uint) error {
	return r.db.WithContext(ctx).Model(&models.Address{}).
		Where("user_id = ? AND address_type = ? AND id <> ? AND is_default = ?", userID, typ, exceptID, true).
		Updates(map[string]any{"is_default": false}).Error
}
