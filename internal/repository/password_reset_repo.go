package repository

import (
	"context"
	"errors"
	"time"

	"github.com/emrahsandernet/kasarcim/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PasswordResetRepo interface {
	Create(ctx context.Context, t *models.PasswordResetToken) error
	GetByToken(ctx context.Context, token string) (*models.PasswordResetToken, error)
	// MarkUsed flips is_used only for a token that has not been used yet.
	MarkUsed(ctx context.Context, id uint) (bool, error)
	InvalidateForUser(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	DeleteUsedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type passwordResetRepo struct{ db *gorm.DB }

func NewPasswordResetRepo(db *gorm.DB) PasswordResetRepo { return &passwordResetRepo{db: db} }

func (r *passwordResetRepo) Create(ctx context.Context, t *models.PasswordResetToken) error {
	return r.db.WithContext(ctx).Omit("User").Create(t).Error
}

func (r *passwordResetRepo) GetByToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	var t models.PasswordResetToken
	err := r.db.WithContext(ctx).Preload("User").First(&t, "token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &t, err
}

func (r *passwordResetRepo) MarkUsed(ctx context.Context, id uint) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&models.PasswordResetToken{}).
		Where("id = ? AND is_used = ?", id, false).
		Updates(map[string]any{"is_used": true})
	return tx.RowsAffected > 0, tx.Error
}

func (r *passwordResetRepo) InvalidateForUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.PasswordResetToken{}).
		Where("user_id = ? AND is_used = ?", userID, false).
		Updates(map[string]any{"is_used": true}).Error
}

func (r *passwordResetRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&models.PasswordResetToken{})
	return tx.RowsAffected, tx.Error
}

func (r *passwordResetRepo) DeleteUsedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).Where("is_used = ? AND created_at < ?", true, cutoff).Delete(&models.PasswordResetToken{})
	return tx.RowsAffected, tx.Error
}
