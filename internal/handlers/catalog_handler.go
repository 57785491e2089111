package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/emrahsandernet/kasarcim/internal/dto"
	"github.com/emrahsandernet/kasarcim/internal/models"
	"github.com/emrahsandernet/kasarcim/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CatalogService interface {
	Now() time.Time
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, slug string) (*models.Category, error)
	CategoryProducts(ctx context.Context, slug string) ([]models.Product, error)
	CreateCategory(ctx context.Context, in service.CategoryInput) (*models.Category, error)
	UpdateCategory(ctx context.Context, slug string, in service.CategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, slug string) error
	ListProducts(ctx context.Context, q service.ProductQuery) (*service.ProductPage, error)
	GetProduct(ctx context.Context, slug string) (*models.Product, error)
	CreateProduct(ctx context.Context, in service.ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, slug string, in service.ProductPatch) (*models.Product, error)
	DeleteProduct(ctx context.Context, slug string) error
	AddDiscount(ctx context.Context, slug string, in service.DiscountInput) (*models.Discount, error)
	DeleteDiscount(ctx context.Context, slug string, discountID uint) error
}

type CatalogHandler struct {
	catalog CatalogService
	log     *zap.Logger
}

func NewCatalogHandler(catalog CatalogService, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, log: log}
}

// ListCategories godoc
// @Summary List categories
// @Tags catalog
// @Produce json
// @Success 200 {array} dto.CategoryResponse
// @Failure 500 {object} dto.InternalErrorResponse
// @Router /api/categories [get]
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	cats, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCategories(cats))
}

// GetCategory godoc
// @Summary Get a category by slug
// @Tags catalog
// @Produce json
// @Param slug path string true "Category slug"
// @Success 200 {object} dto.CategoryResponse
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/categories/{slug} [get]
func (h *CatalogHandler) GetCategory(c *gin.Context) {
	cat, err := h.catalog.GetCategory(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCategory(cat))
}

// CategoryProducts godoc
// @Summary Products of a category
// @Tags catalog
// @Produce json
// @Param slug path string true "Category slug"
// @Success 200 {array} dto.ProductResponse
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/categories/{slug}/products [get]
func (h *CatalogHandler) CategoryProducts(c *gin.Context) {
	products, err := h.catalog.CategoryProducts(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewProducts(products, h.catalog.Now()))
}

// CreateCategory godoc
// @Summary Create a category
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param category body dto.CategoryRequest true "Category"
// @Success 201 {object} dto.CategoryResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 403 {object} dto.ForbiddenErrorResponse
// @Router /api/categories [post]
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req dto.CategoryRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	cat, err := h.catalog.CreateCategory(c.Request.Context(), req.Input())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewCategory(cat))
}

// UpdateCategory godoc
// @Summary Update a category
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Category slug"
// @Param category body dto.CategoryRequest true "Category"
// @Success 200 {object} dto.CategoryResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/categories/{slug} [put]
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	var req dto.CategoryRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	cat, err := h.catalog.UpdateCategory(c.Request.Context(), c.Param("slug"), req.Input())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCategory(cat))
}

// DeleteCategory godoc
// @Summary Delete a category and its products
// @Tags catalog
// @Security BearerAuth
// @Param slug path string true "Category slug"
// @Success 204
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/categories/{slug} [delete]
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	if err := h.catalog.DeleteCategory(c.Request.Context(), c.Param("slug")); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type productListQuery struct {
	Category string `form:"category"`
	MinPrice string `form:"min_price"`
	MaxPrice string `form:"max_price"`
	InStock  bool   `form:"in_stock"`
	Search   string `form:"search"`
	Ordering string `form:"ordering" binding:"omitempty,oneof=price -price created_at -created_at name -name"`
	pageQuery
}

func parseDecimalParam(raw string) (*decimal.Decimal, bool) {
	if raw == "" {
		return nil, true
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, false
	}
	return &d, true
}

// ListProducts godoc
// @Summary List products
// @Description Filters by category slug, price range, stock and a name/description search.
// @Tags catalog
// @Produce json
// @Param category query string false "Category slug"
// @Param min_price query string false "Minimum price"
// @Param max_price query string false "Maximum price"
// @Param in_stock query bool false "Only products in stock"
// @Param search query string false "Search text"
// @Param ordering query string false "price, -price, created_at, -created_at, name, -name"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} dto.Page[dto.ProductResponse]
// @Failure 400 {object} dto.ValidationErrorResponse
// @Router /api/products [get]
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var q productListQuery
	if !bindQuery(c, h.log, &q) {
		return
	}
	minPrice, ok1 := parseDecimalParam(q.MinPrice)
	maxPrice, ok2 := parseDecimalParam(q.MaxPrice)
	if !ok1 || !ok2 {
		var bad []string
		if !ok1 {
			bad = append(bad, "min_price")
		}
		if !ok2 {
			bad = append(bad, "max_price")
		}
		c.JSON(http.StatusBadRequest, dto.NewFieldsValidationError("invalid price filter", bad))
		return
	}
	page, err := h.catalog.ListProducts(c.Request.Context(), service.ProductQuery{
		CategorySlug: q.Category,
		MinPrice:     minPrice,
		MaxPrice:     maxPrice,
		InStock:      q.InStock,
		Search:       q.Search,
		Ordering:     q.Ordering,
		Limit:        q.Limit,
		Offset:       q.Offset,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPage(dto.NewProducts(page.Items, h.catalog.Now()), page.Total))
}

// GetProduct godoc
// @Summary Get a product by slug
// @Tags catalog
// @Produce json
// @Param slug path string true "Product slug"
// @Success 200 {object} dto.ProductResponse
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/products/{slug} [get]
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	p, err := h.catalog.GetProduct(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewProduct(p, h.catalog.Now()))
}

// CreateProduct godoc
// @Summary Create a product
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param product body dto.ProductRequest true "Product"
// @Success 201 {object} dto.ProductResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 403 {object} dto.ForbiddenErrorResponse
// @Router /api/products [post]
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req dto.ProductRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	p, err := h.catalog.CreateProduct(c.Request.Context(), req.Input())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewProduct(p, h.catalog.Now()))
}

// UpdateProduct godoc
// @Summary Partially update a product
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Product slug"
// @Param product body dto.ProductPatchRequest true "Fields to change"
// @Success 200 {object} dto.ProductResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/products/{slug} [patch]
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	var req dto.ProductPatchRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	p, err := h.catalog.UpdateProduct(c.Request.Context(), c.Param("slug"), req.Patch())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewProduct(p, h.catalog.Now()))
}

// DeleteProduct godoc
// @Summary Delete a product
// @Tags catalog
// @Security BearerAuth
// @Param slug path string true "Product slug"
// @Success 204
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/products/{slug} [delete]
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	if err := h.catalog.DeleteProduct(c.Request.Context(), c.Param("slug")); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddDiscount godoc
// @Summary Add a timed percentage discount to a product
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Product slug"
// @Param discount body dto.DiscountRequest true "Discount"
// @Success 201 {object} dto.DiscountResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/products/{slug}/discounts [post]
func (h *CatalogHandler) AddDiscount(c *gin.Context) {
	var req dto.DiscountRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	d, err := h.catalog.AddDiscount(c.Request.Context(), c.Param("slug"), req.Input())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewDiscount(d))
}

// DeleteDiscount godoc
// @Summary Remove a product discount
// @Tags catalog
// @Security BearerAuth
// @Param slug path string true "Product slug"
// @Param id path int true "Discount ID"
// @Success 204
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/products/{slug}/discounts/{id} [delete]
func (h *CatalogHandler) DeleteDiscount(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	if err := h.catalog.DeleteDiscount(c.Request.Context(), c.Param("slug"), id); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
