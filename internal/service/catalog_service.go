package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/emrahsandernet/kasarcim/internal/models"
	"github.com/emrahsandernet/kasarcim/internal/pricing"
	"github.com/emrahsandernet/kasarcim/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const catalogCachePrefix = "catalog:"

type CategoryInput struct {
	Name        string
	Slug        string
	Description string
	ImageURL    string
}

type ProductInput struct {
	CategoryID  uint
	Name        string
	Slug        string
	ImgURL      string
	Description string
	Price       decimal.Decimal
	Stock       int
	Weight      *decimal.Decimal
	Available   *bool
}

// ProductPatch updates only the non-nil fields.
type ProductPatch struct {
	CategoryID  *uint
	Name        *string
	ImgURL      *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	Weight      *decimal.Decimal
	Available   *bool
}

type DiscountInput struct {
	Percentage decimal.Decimal
	StartDate  time.Time
	EndDate    time.Time
	IsActive   bool
}

type ProductQuery struct {
	CategorySlug string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	InStock      bool
	Search       string
	Ordering     string
	Limit        int
	Offset       int
}

type ProductPage struct {
	Items []models.Product
	Total int64
}

type CatalogService struct {
	repo  *repository.Repository
	cache ReadThrough
	now   func() time.Time
	log   *zap.Logger
}

func NewCatalogService(repo *repository.Repository, cache ReadThrough, log *zap.Logger) *CatalogService {
	if cache == nil {
		cache = NopReadThrough()
	}
	return &CatalogService{repo: repo, cache: cache, now: time.Now, log: log}
}

func (s *CatalogService) Now() time.Time { return s.now() }

func (s *CatalogService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, catalogCachePrefix); err != nil {
		s.log.Warn("catalog cache invalidation failed", zap.Error(err))
	}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	err := s.cache.Fetch(ctx, catalogCachePrefix+"categories", &out, func(ctx context.Context) (any, error) {
		return s.repo.Categories.List(ctx)
	})
	return out, err
}

func (s *CatalogService) GetCategory(ctx context.Context, slug string) (*models.Category, error) {
	c, err := s.repo.Categories.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCategoryNotFound
	}
	return c, nil
}

// CategoryProducts lists the available products of a category.
func (s *CatalogService) CategoryProducts(ctx context.Context, slug string) ([]models.Product, error) {
	c, err := s.GetCategory(ctx, slug)
	if err != nil {
		return nil, err
	}
	var out []models.Product
	key := fmt.Sprintf("%scategory:%d:products", catalogCachePrefix, c.ID)
	err = s.cache.Fetch(ctx, key, &out, func(ctx context.Context) (any, error) {
		return s.repo.Products.ListByCategory(ctx, c.ID, true)
	})
	return out, err
}

func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	if err := missingFields("invalid category", map[string]string{"name": in.Name}, []string{"name"}); err != nil {
		return nil, err
	}
	c := &models.Category{
		Name:        strings.TrimSpace(in.Name),
		Slug:        strings.TrimSpace(in.Slug),
		Description: in.Description,
		ImageURL:    in.ImageURL,
	}
	if err := s.repo.Categories.Create(ctx, c); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return c, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, slug string, in CategoryInput) (*models.Category, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	c, err := s.GetCategory(ctx, slug)
	if err != nil {
		return nil, err
	}
	if n := strings.TrimSpace(in.Name); n != "" {
		c.Name = n
	}
	if sl := strings.TrimSpace(in.Slug); sl != "" {
		c.Slug = sl
	}
	c.Description = in.Description
	c.ImageURL = in.ImageURL
	if err := s.repo.Categories.Save(ctx, c); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return c, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, slug string) error {
	if _, err := requireStaff(ctx); err != nil {
		return err
	}
	c, err := s.GetCategory(ctx, slug)
	if err != nil {
		return err
	}
	if _, err := s.repo.Categories.Delete(ctx, c.ID); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) ListProducts(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	f := repository.ProductListFilter{
		CategorySlug:  strings.TrimSpace(q.CategorySlug),
		MinPrice:      q.MinPrice,
		MaxPrice:      q.MaxPrice,
		InStock:       q.InStock,
		OnlyAvailable: !IsStaff(ctx),
		Search:        strings.TrimSpace(q.Search),
		Ordering:      strings.TrimSpace(q.Ordering),
		Limit:         q.Limit,
		Offset:        q.Offset,
	}
	var page ProductPage
	err := s.cache.Fetch(ctx, productListKey(f), &page, func(ctx context.Context) (any, error) {
		items, total, err := s.repo.Products.List(ctx, f)
		if err != nil {
			return nil, err
		}
		return ProductPage{Items: items, Total: total}, nil
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func productListKey(f repository.ProductListFilter) string {
	dec := func(d *decimal.Decimal) string {
		if d == nil {
			return ""
		}
		return d.String()
	}
	return fmt.Sprintf("%sproducts:c=%s:min=%s:max=%s:stock=%t:avail=%t:q=%s:o=%s:l=%d:off=%d",
		catalogCachePrefix, f.CategorySlug, dec(f.MinPrice), dec(f.MaxPrice), f.InStock,
		f.OnlyAvailable, strings.ToLower(f.Search), f.Ordering, f.Limit, f.Offset)
}

func (s *CatalogService) GetProduct(ctx context.Context, slug string) (*models.Product, error) {
	onlyAvailable := !IsStaff(ctx)
	var p *models.Product
	key := fmt.Sprintf("%sproduct:%s:avail=%t", catalogCachePrefix, slug, onlyAvailable)
	err := s.cache.Fetch(ctx, key, &p, func(ctx context.Context) (any, error) {
		return s.repo.Products.GetBySlug(ctx, slug, onlyAvailable)
	})
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *CatalogService) validateProduct(ctx context.Context, categoryID uint, name string, price decimal.Decimal, stock int) error {
	var bad []string
	if strings.TrimSpace(name) == "" {
		bad = append(bad, "name")
	}
	if price.IsNegative() {
		bad = append(bad, "price")
	}
	if stock < 0 {
		bad = append(bad, "stock")
	}
	if len(bad) > 0 {
		return &ValidationError{Msg: "invalid product", Fields: bad}
	}
	list, err := s.repo.Categories.List(ctx)
	if err != nil {
		return err
	}
	for _, c := range list {
		if c.ID == categoryID {
			return nil
		}
	}
	return ErrCategoryNotFound
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	if err := s.validateProduct(ctx, in.CategoryID, in.Name, in.Price, in.Stock); err != nil {
		return nil, err
	}
	p := &models.Product{
		CategoryID:  in.CategoryID,
		Name:        strings.TrimSpace(in.Name),
		Slug:        strings.TrimSpace(in.Slug),
		ImgURL:      in.ImgURL,
		Description: in.Description,
		Price:       in.Price.Round(2),
		Stock:       in.Stock,
		Weight:      in.Weight,
		Available:   true,
	}
	if in.Available != nil {
		p.Available = *in.Available
	}
	if err := s.repo.Products.Create(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return s.repo.Products.GetByID(ctx, p.ID)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, slug string, in ProductPatch) (*models.Product, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	p, err := s.repo.Products.GetBySlug(ctx, slug, false)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	if in.CategoryID != nil {
		p.CategoryID = *in.CategoryID
		p.Category = nil
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.ImgURL != nil {
		p.ImgURL = *in.ImgURL
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = in.Price.Round(2)
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.Weight != nil {
		p.Weight = in.Weight
	}
	if in.Available != nil {
		p.Available = *in.Available
	}
	if err := s.validateProduct(ctx, p.CategoryID, p.Name, p.Price, p.Stock); err != nil {
		return nil, err
	}
	if err := s.repo.Products.Save(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return s.repo.Products.GetByID(ctx, p.ID)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, slug string) error {
	if _, err := requireStaff(ctx); err != nil {
		return err
	}
	p, err := s.repo.Products.GetBySlug(ctx, slug, false)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrProductNotFound
	}
	if _, err := s.repo.Products.Delete(ctx, p.ID); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) AddDiscount(ctx context.Context, slug string, in DiscountInput) (*models.Discount, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	p, err := s.repo.Products.GetBySlug(ctx, slug, false)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	var bad []string
	if in.Percentage.LessThanOrEqual(decimal.Zero) || in.Percentage.GreaterThan(decimal.NewFromInt(100)) {
		bad = append(bad, "discount_percentage")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() || in.EndDate.Before(in.StartDate) {
		bad = append(bad, "end_date")
	}
	if len(bad) > 0 {
		return nil, &ValidationError{Msg: "invalid discount", Fields: bad}
	}
	d := &models.Discount{
		ProductID:          p.ID,
		DiscountPercentage: in.Percentage.Round(2),
		StartDate:          in.StartDate,
		EndDate:            in.EndDate,
		IsActive:           in.IsActive,
	}
	if err := s.repo.Products.AddDiscount(ctx, d); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return d, nil
}

func (s *CatalogService) DeleteDiscount(ctx context.Context, slug string, discountID uint) error {
	if _, err := requireStaff(ctx); err != nil {
		return err
	}
	p, err := s.repo.Products.GetBySlug(ctx, slug, false)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrProductNotFound
	}
	ok, err := s.repo.Products.DeleteDiscount(ctx, p.ID, discountID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrDiscountNotFound
	}
	s.invalidate(ctx)
	return nil
}

// UnitPrice is the price a buyer pays today: the list price reduced by the active discount.
func UnitPrice(p *models.Product, now time.Time) decimal.Decimal {
	if d := p.ActiveDiscount(now); d != nil {
		return pricing.ApplyProductDiscount(p.Price, d.DiscountPercentage)
	}
	return p.Price
}
