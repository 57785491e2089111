package repository

import (
	"context"
	"errors"

	"github.com/emrahsandernet/kasarcim/internal/models"

	"gorm.io/gorm"
)

type BlogTaxonomyRepo interface {
	ListCategories(ctx context.Context) ([]models.BlogCategory, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*models.BlogCategory, error)
	CategoriesByIDs(ctx context.Context, ids []uint) ([]models.BlogCategory, error)
	CreateCategory(ctx context.Context, c *models.BlogCategory) error
	DeleteCategory(ctx context.Context, id uint) (bool, error)

	ListTags(ctx context.Context) ([]models.BlogTag, error)
	GetTagBySlug(ctx context.Context, slug string) (*models.BlogTag, error)
	TagsByIDs(ctx context.Context, ids []uint) ([]models.BlogTag, error)
	CreateTag(ctx context.Context, t *models.BlogTag) error
	DeleteTag(ctx context.Context, id uint) (bool, error)
}

type blogTaxonomyRepo struct{ db *gorm.DB }

func NewBlogTaxonomyRepo(db *gorm.DB) BlogTaxonomyRepo { return &blogTaxonomyRepo{db: db} }

func (r *blogTaxonomyRepo) ListCategories(ctx context.Context) ([]models.BlogCategory, error) {
	var list []models.BlogCategory
	err := r.db.WithContext(ctx).Order("name ASC").Find(&list).Error
	return list, err
}

func (r *blogTaxonomyRepo) GetCategoryBySlug(ctx context.Context, slug string) (*models.BlogCategory, error) {
	var c models.BlogCategory
	err := r.db.WithContext(ctx).First(&c, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &c, err
}

func (r *blogTaxonomyRepo) CategoriesByIDs(ctx context.Context, ids []uint) ([]models.BlogCategory, error) {
	if len(ids) == 0 {
		return []models.BlogCategory{}, nil
	}
	var list []models.BlogCategory
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error
	return list, err
}

func (r *blogTaxonomyRepo) CreateCategory(ctx context.Context, c *models.BlogCategory) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *blogTaxonomyRepo) DeleteCategory(ctx context.Context, id uint) (bool, error) {
	tx := r.db.WithContext(ctx).Delete(&models.BlogCategory{}, "id = ?", id)
	return tx.RowsAffected > 0, tx.Error
}

func (r *blogTaxonomyRepo) ListTags(ctx context.Context) ([]models.BlogTag, error) {
	var list []models.BlogTag
	err := r.db.WithContext(ctx).Order("name ASC").Find(&list).Error
	return list, err
}

func (r *blogTaxonomyRepo) GetTagBySlug(ctx context.Context, slug string) (*models.BlogTag, error) {
	var t models.BlogTag
	err := r.db.WithContext(ctx).First(&t, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &t, err
}

func (r *blogTaxonomyRepo) TagsByIDs(ctx context.Context, ids []uint) ([]models.BlogTag, error) {
	if len(ids) == 0 {
		return []models.BlogTag{}, nil
	}
	var list []models.BlogTag
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error
	return list, err
}

func (r *blogTaxonomyRepo) CreateTag(ctx context.Context, t *models.BlogTag) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *blogTaxonomyRepo) DeleteTag(ctx context.Context, id uint) (bool, error) {
	tx := r.db.WithContext(ctx).Delete(&models.BlogTag{}, "id = ?", id)
	return tx.RowsAffected > 0, tx.Error
}
