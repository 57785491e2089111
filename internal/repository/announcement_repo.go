package repository

import (
	"context"
	"errors"

	"github.com/emrahsandernet/kasarcim/internal/models"

	"gorm.io/gorm"
)

type AnnouncementRepo interface {
	Create(ctx context.Context, a *models.Announcement) error
	Save(ctx context.Context, a *models.Announcement) error
	Delete(ctx context.Context, id uint) (bool, error)
	GetByID(ctx context.Context, id uint) (*models.Announcement, error)
	List(ctx context.Context, activeOnly bool) ([]models.Announcement, error)
}

type announcementRepo struct{ db *gorm.DB }

func NewAnnouncementRepo(db *gorm.DB) AnnouncementRepo { return &announcementRepo{db: db} }

func (r *announcementRepo) Create(ctx context.Context, a *models.Announcement) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *announcementRepo) Save(ctx context.Context, a *models.Announcement) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *announcementRepo) Delete(ctx context.Context, id uint) (bool, error) {
	tx := r.db.WithContext(ctx).Delete(&models.Announcement{}, "id = ?", id)
	return tx.RowsAffected > 0, tx.Error
}

func (r *announcementRepo) GetByID(ctx context.Context, id uint) (*models.Announcement, error) {
	var a models.Announcement
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &a, err
}

func (r *announcementRepo) List(ctx context.Context, activeOnly bool) ([]models.Announcement, error) {
	q := r.db.WithContext(ctx)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var list []models.Announcement
	err := q.Order("sort_order ASC").Order("created_at DESC").Find(&list).Error
	return list, err
}
