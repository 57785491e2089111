package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/emrahsandernet/kasarcim/internal/models"

	"gorm.io/gorm"
)

const BlogPageSize = 3

type BlogListFilter struct {
	CategorySlug string
	TagSlug      string
	Featured     *bool
	Search       string
	Ordering     string // published_at, view_count, title; "-" prefix for descending
	// IncludeDrafts lifts the published-only restriction for staff listings.
	IncludeDrafts bool
	Limit         int
	Offset        int
}

var blogOrderings = map[string]string{
	"published_at": "blogs.published_at",
	"view_count":   "blogs.view_count",
	"title":        "blogs.title",
}

type BlogRepo interface {
	Create(ctx context.Context, b *models.Blog) error
	Save(ctx context.Context, b *models.Blog) error
	Delete(ctx context.Context, id uint) (bool, error)
	GetByID(ctx context.Context, id uint) (*models.Blog, error)
	GetBySlug(ctx context.Context, slug string, publishedOnly bool) (*models.Blog, error)
	List(ctx context.Context, f BlogListFilter) ([]models.Blog, int64, error)
	Featured(ctx context.Context, limit int) ([]models.Blog, error)
	Popular(ctx context.Context, limit int) ([]models.Blog, error)
	IncrementViews(ctx context.Context, id uint) error

	RelatedByCategories(ctx context.Context, categoryIDs []uint, exclude []uint, limit int) ([]models.Blog, error)
	RelatedByTags(ctx context.Context, tagIDs []uint, exclude []uint, limit int) ([]models.Blog, error)
	Recent(ctx context.Context, exclude []uint, limit int) ([]models.Blog, error)

	// PublishedDates returns published_at of every published post, newest first.
	PublishedDates(ctx context.Context) ([]time.Time, error)
}

type blogRepo struct{ db *gorm.DB }

func NewBlogRepo(db *gorm.DB) BlogRepo { return &blogRepo{db: db} }

func (r *blogRepo) Create(ctx context.Context, b *models.Blog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cats, tags := b.Categories, b.Tags
		if err := tx.Omit("Author", "Categories", "Tags").Create(b).Error; err != nil {
			return err
		}
		return replaceBlogTaxonomy(tx, b, cats, tags)
	})
}

func (r *blogRepo) Save(ctx context.Context, b *models.Blog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cats, tags := b.Categories, b.Tags
		if err := tx.Omit("Author", "Categories", "Tags").Save(b).Error; err != nil {
			return err
		}
		return replaceBlogTaxonomy(tx, b, cats, tags)
	})
}

func replaceBlogTaxonomy(tx *gorm.DB, b *models.Blog, cats []models.BlogCategory, tags []models.BlogTag) error {
	if err := tx.Model(b).Association("Categories").Replace(cats); err != nil {
		return err
	}
	return tx.Model(b).Association("Tags").Replace(tags)
}

func (r *blogRepo) Delete(ctx context.Context, id uint) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b := &models.Blog{ID: id}
		if err := tx.Model(b).Association("Categories").Clear(); err != nil {
			return err
		}
		if err := tx.Model(b).Association("Tags").Clear(); err != nil {
			return err
		}
		res := tx.Delete(&models.Blog{}, "id = ?", id)
		deleted = res.RowsAffected > 0
		return res.Error
	})
	return deleted, err
}

func (r *blogRepo) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Author").Preload("Categories").Preload("Tags")
}

func (r *blogRepo) published(ctx context.Context) *gorm.DB {
	return r.preloaded(ctx).Where("blogs.status = ?", models.BlogPublished)
}

func (r *blogRepo) GetByID(ctx context.Context, id uint) (*models.Blog, error) {
	var b models.Blog
	err := r.preloaded(ctx).First(&b, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &b, err
}

func (r *blogRepo) GetBySlug(ctx context.Context, slug string, publishedOnly bool) (*models.Blog, error) {
	q := r.preloaded(ctx)
	if publishedOnly {
		q = q.Where("blogs.status = ?", models.BlogPublished)
	}
	var b models.Blog
	err := q.First(&b, "blogs.slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &b, err
}

func (r *blogRepo) List(ctx context.Context, f BlogListFilter) ([]models.Blog, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Blog{})

	if !f.IncludeDrafts {
		q = q.Where("blogs.status = ?", models.BlogPublished)
	}
	if s := strings.TrimSpace(f.CategorySlug); s != "" {
		q = q.Where(`blogs.id IN (SELECT bpc.blog_id FROM blog_post_categories bpc
			JOIN blog_categories bc ON bc.id = bpc.blog_category_id WHERE bc.slug = ?)`, s)
	}
	if s := strings.TrimSpace(f.TagSlug); s != "" {
		q = q.Where(`blogs.id IN (SELECT bpt.blog_id FROM blog_post_tags bpt
			JOIN blog_tags bt ON bt.id = bpt.blog_tag_id WHERE bt.slug = ?)`, s)
	}
	if f.Featured != nil {
		q = q.Where("blogs.is_featured = ?", *f.Featured)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("lower(blogs.title) LIKE ? OR lower(blogs.content) LIKE ? OR lower(blogs.excerpt) LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit <= 0 {
		f.Limit = BlogPageSize
	}
	f.Limit, f.Offset = clampPage(f.Limit, f.Offset)

	var list []models.Blog
	err := q.Preload("Author").Preload("Categories").Preload("Tags").
		Order(orderClause(f.Ordering, blogOrderings, "blogs.published_at DESC")).
		Limit(f.Limit).Offset(f.Offset).
		Find(&list).Error
	return list, total, err
}

func (r *blogRepo) Featured(ctx context.Context, limit int) ([]models.Blog, error) {
	var list []models.Blog
	err := r.published(ctx).Where("blogs.is_featured = ?", true).
		Order("blogs.published_at DESC").Limit(limit).Find(&list).Error
	return list, err
}

func (r *blogRepo) Popular(ctx context.Context, limit int) ([]models.Blog, error) {
	var list []models.Blog
	err := r.published(ctx).Order("blogs.view_count DESC").Order("blogs.published_at DESC").
		Limit(limit).Find(&list).Error
	return list, err
}

func (r *blogRepo) IncrementViews(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Blog{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

func (r *blogRepo) RelatedByCategories(ctx context.Context, categoryIDs []uint, exclude []uint, limit int) ([]models.Blog, error) {
	if len(categoryIDs) == 0 || limit <= 0 {
		return nil, nil
	}
	var list []models.Blog
	err := excludeIDs(r.published(ctx), exclude).
		Where("blogs.id IN (SELECT blog_id FROM blog_post_categories WHERE blog_category_id IN ?)", categoryIDs).
		Order("blogs.published_at DESC").Limit(limit).Find(&list).Error
	return list, err
}

func (r *blogRepo) RelatedByTags(ctx context.Context, tagIDs []uint, exclude []uint, limit int) ([]models.Blog, error) {
	if len(tagIDs) == 0 || limit <= 0 {
		return nil, nil
	}
	var list []models.Blog
	err := excludeIDs(r.published(ctx), exclude).
		Where("blogs.id IN (SELECT blog_id FROM blog_post_tags WHERE blog_tag_id IN ?)", tagIDs).
		Order("blogs.published_at DESC").Limit(limit).Find(&list).Error
	return list, err
}

func (r *blogRepo) Recent(ctx context.Context, exclude []uint, limit int) ([]models.Blog, error) {
	if limit <= 0 {
		return nil, nil
	}
	var list []models.Blog
	err := excludeIDs(r.published(ctx), exclude).
		Order("blogs.published_at DESC").Limit(limit).Find(&list).Error
	return list, err
}

func excludeIDs(q *gorm.DB, ids []uint) *gorm.DB {
	if len(ids) == 0 {
		return q
	}
	return q.Where("blogs.id NOT IN ?", ids)
}

func (r *blogRepo) PublishedDates(ctx context.Context) ([]time.Time, error) {
	var dates []time.Time
	err := r.db.WithContext(ctx).Model(&models.Blog{}).
		Where("status = ? AND published_at IS NOT NULL", models.BlogPublished).
		Order("published_at DESC").
		Pluck("published_at", &dates).Error
	return dates, err
}
