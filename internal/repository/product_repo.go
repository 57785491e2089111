package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/emrahsandernet/kasarcim/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type ProductListFilter struct {
	CategorySlug  string
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	InStock       bool
	OnlyAvailable bool
	Search        string
	Ordering      string // name, price, created_at; "-" prefix for descending
	Limit         int
	Offset        int
}

var productOrderings = map[string]string{
	"name":       "products.name",
	"price":      "products.price",
	"created_at": "products.created_at",
}

type ProductRepo interface {
	Create(ctx context.Context, p *models.Product) error
	Save(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id uint) (bool, error)
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string, onlyAvailable bool) (*models.Product, error)
	BatchGetByIDs(ctx context.Context, ids []uint) ([]models.Product, error)
	List(ctx context.Context, f ProductListFilter) ([]models.Product, int64, error)
	ListByCategory(ctx context.Context, categoryID uint, onlyAvailable bool) ([]models.Product, error)

	// TryReserveStock decrements stock only if enough is left.
	TryReserveStock(ctx context.Context, id uint, qty int) (bool, error)
	ReleaseStock(ctx context.Context, id uint, qty int) error

	AddDiscount(ctx context.Context, d *models.Discount) error
	DeleteDiscount(ctx context.Context, productID, discountID uint) (bool, error)
}

type productRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) ProductRepo { return &productRepo{db: db} }

func (r *productRepo) Create(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Omit("Category", "Discounts").Create(p).Error
}

func (r *productRepo) Save(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Omit("Category", "Discounts").Save(p).Error
}

func (r *productRepo) Delete(ctx context.Context, id uint) (bool, error) {
	tx := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	return tx.RowsAffected > 0, tx.Error
}

func (r *productRepo) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Category").Preload("Discounts")
}

func (r *productRepo) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	err := r.preloaded(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *productRepo) GetBySlug(ctx context.Context, slug string, onlyAvailable bool) (*models.Product, error) {
	q := r.preloaded(ctx).Where("slug = ?", slug)
	if onlyAvailable {
		q = q.Where("available = ?", true)
	}
	var p models.Product
	err := q.First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *productRepo) BatchGetByIDs(ctx context.Context, ids []uint) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var list []models.Product
	err := r.preloaded(ctx).Where("id IN ?", ids).Find(&list).Error
	return list, err
}

func (r *productRepo) List(ctx context.Context, f ProductListFilter) ([]models.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{})

	if f.OnlyAvailable {
		q = q.Where("products.available = ?", true)
	}
	if s := strings.TrimSpace(f.CategorySlug); s != "" {
		q = q.Where("products.category_id IN (SELECT id FROM categories WHERE slug = ?)", s)
	}
	if f.MinPrice != nil {
		q = q.Where("products.price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("products.price <= ?", *f.MaxPrice)
	}
	if f.InStock {
		q = q.Where("products.stock > 0")
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where(
			"lower(products.name) LIKE ? OR lower(products.description) LIKE ? OR products.category_id IN (SELECT id FROM categories WHERE lower(name) LIKE ?)",
			like, like, like,
		)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	f.Limit, f.Offset = clampPage(f.Limit, f.Offset)

	var list []models.Product
	err := q.Preload("Category").Preload("Discounts").
		Order(orderClause(f.Ordering, productOrderings, "products.name ASC")).
		Limit(f.Limit).Offset(f.Offset).
		Find(&list).Error
	return list, total, err
}

func (r *productRepo) ListByCategory(ctx context.Context, categoryID uint, onlyAvailable bool) ([]models.Product, error) {
	q := r.preloaded(ctx).Where("category_id = ?", categoryID)
	if onlyAvailable {
		q = q.Where("available = ?", true)
	}
	var list []models.Product
	err := q.Order("name ASC").Find(&list).Error
	return list, err
}

func (r *productRepo) TryReserveStock(ctx context.Context, id uint, qty int) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	return tx.RowsAffected > 0, tx.Error
}

func (r *productRepo) ReleaseStock(ctx context.Context, id uint, qty int) error {
	return r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty)).Error
}

func (r *productRepo) AddDiscount(ctx context.Context, d *models.Discount) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *productRepo) DeleteDiscount(ctx context.Context, productID, discountID uint) (bool, error) {
	tx := r.db.WithContext(ctx).Delete(&models.Discount{}, "id = ? AND product_id = ?", discountID, productID)
	return tx.RowsAffected > 0, tx.Error
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// orderClause maps a user supplied "field" / "-field" onto a whitelisted column.
func orderClause(ordering string, allowed map[string]string, def string) string {
	o := strings.TrimSpace(ordering)
	dir := "ASC"
	if strings.HasPrefix(o, "-") {
		dir = "DESC"
		o = o[1:]
	}
	col, ok := allowed[o]
	if !ok {
		return def
	}
	return col + " " + dir
}
