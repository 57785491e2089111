package repository

import (
	"context"

	"github.com/emrahsandernet/kasarcim/internal/models"

	"gorm.io/gorm"
)

type ContactRepo interface {
	Create(ctx context.Context, m *models.ContactMessage) error
	List(ctx context.Context, limit, offset int) ([]models.ContactMessage, int64, error)
	MarkRead(ctx context.Context, id uint) (bool, error)
}

type contactRepo struct{ db *gorm.DB }

func NewContactRepo(db *gorm.DB) ContactRepo { return &contactRepo{db: db} }

func (r *contactRepo) Create(ctx context.Context, m *models.ContactMessage) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *contactRepo) List(ctx context.Context, limit, offset int) ([]models.ContactMessage, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.ContactMessage{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	limit, offset = clampPage(limit, offset)

	var list []models.ContactMessage
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, err
}

func (r *contactRepo) MarkRead(ctx context.Context, id uint) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&models.ContactMessage{}).Where("id = ?", id).
		Updates(map[string]any{"is_read": true})
	return tx.RowsAffected > 0, tx.Error
}
