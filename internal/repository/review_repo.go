package repository

import (
	"context"
	"errors"

	"github.com/emrahsandernet/kasarcim/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewRepo interface {
	Create(ctx context.Context, rv *models.ProductReview) error
	GetByID(ctx context.Context, id uint) (*models.ProductReview, error)
	GetByProductAndUser(ctx context.Context, productID uint, userID uuid.UUID) (*models.ProductReview, error)
	ListByProduct(ctx context.Context, productID uint, limit, offset int) ([]models.ProductReview, int64, error)
	IncrementLike(ctx context.Context, id uint) (int, error)
	IncrementDislike(ctx context.Context, id uint) (int, error)
}

type reviewRepo struct{ db *gorm.DB }

func NewReviewRepo(db *gorm.DB) ReviewRepo { return &reviewRepo{db: db} }

func (r *reviewRepo) Create(ctx context.Context, rv *models.ProductReview) error {
	return r.db.WithContext(ctx).Omit("User").Create(rv).Error
}

func (r *reviewRepo) GetByID(ctx context.Context, id uint) (*models.ProductReview, error) {
	var rv models.ProductReview
	err := r.db.WithContext(ctx).Preload("User").First(&rv, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &rv, err
}

func (r *reviewRepo) GetByProductAndUser(ctx context.Context, productID uint, userID uuid.UUID) (*models.ProductReview, error) {
	var rv models.ProductReview
	err := r.db.WithContext(ctx).Preload("User").
		Where("product_id = ? AND user_id = ?", productID, userID).
		Order("created_at DESC").First(&rv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &rv, err
}

func (r *reviewRepo) ListByProduct(ctx context.Context, productID uint, limit, offset int) ([]models.ProductReview, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.ProductReview{}).Where("product_id = ?", productID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	limit, offset = clampPage(limit, offset)

	var list []models.ProductReview
	err := q.Preload("User").Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, err
}

func (r *reviewRepo) IncrementLike(ctx context.Context, id uint) (int, error) {
	return r.increment(ctx, id, "likes")
}

func (r *reviewRepo) IncrementDislike(ctx context.Context, id uint) (int, error) {
	return r.increment(ctx, id, "dislikes")
}

func (r *reviewRepo) increment(ctx context.Context, id uint, col string) (int, error) {
	var out int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.ProductReview{}).Where("id = ?", id).
			UpdateColumn(col, gorm.Expr(col+" + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&models.ProductReview{}).Select(col).Where("id = ?", id).Scan(&out).Error
	})
	return out, err
}

type RatingRepo interface {
	// Upsert keeps one rating per user and product.
	Upsert(ctx context.Context, rt *models.ProductRating) error
	ListByProduct(ctx context.Context, productID uint) ([]models.ProductRating, error)
	MapByProduct(ctx context.Context, productID uint) (map[uuid.UUID]int, error)
}

type ratingRepo struct{ db *gorm.DB }

func NewRatingRepo(db *gorm.DB) RatingRepo { return &ratingRepo{db: db} }

func (r *ratingRepo) Upsert(ctx context.Context, rt *models.ProductRating) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating", "updated_at"}),
	}).Create(rt).Error
}

func (r *ratingRepo) ListByProduct(ctx context.Context, productID uint) ([]models.ProductRating, error) {
	var list []models.ProductRating
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *ratingRepo) MapByProduct(ctx context.Context, productID uint) (map[uuid.UUID]int, error) {
	list, err := r.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]int, len(list))
	for _, rt := range list {
		out[rt.UserID] = rt.Rating
	}
	return out, nil
}
