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

type CouponService interface {
	Now() time.Time
	Apply(ctx context.Context, code string, cartTotal decimal.Decimal) (*service.CouponQuote, error)
	Check(ctx context.Context, code string, cartTotal decimal.Decimal) (*service.CouponQuote, error)
	Create(ctx context.Context, in service.CouponInput) (*models.Coupon, error)
	Update(ctx context.Context, id uint, in service.CouponInput) (*models.Coupon, error)
	Get(ctx context.Context, id uint) (*models.Coupon, error)
	List(ctx context.Context, limit, offset int) ([]models.Coupon, int64, error)
	Delete(ctx context.Context, id uint) error
}

type CouponHandler struct {
	coupons CouponService
	log     *zap.Logger
}

func NewCouponHandler(coupons CouponService, log *zap.Logger) *CouponHandler {
	return &CouponHandler{coupons: coupons, log: log}
}

// Apply godoc
// @Summary Quote a coupon for a cart total
// @Description Public. Does not consume the coupon.
// @Tags coupons
// @Accept json
// @Produce json
// @Param quote body dto.CouponQuoteRequest true "Code and cart total"
// @Success 200 {object} dto.CouponQuoteResponse
// @Failure 400 {object} dto.BadRequestErrorResponse "Coupon not valid"
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/coupons/apply [post]
func (h *CouponHandler) Apply(c *gin.Context) {
	h.quote(c, h.coupons.Apply)
}

// Check godoc
// @Summary Check a coupon and report the first failing rule
// @Tags coupons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param quote body dto.CouponQuoteRequest true "Code and cart total"
// @Success 200 {object} dto.CouponQuoteResponse
// @Failure 400 {object} dto.BadRequestErrorResponse "Inactive, expired, used up or below minimum"
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/coupons/check [post]
func (h *CouponHandler) Check(c *gin.Context) {
	h.quote(c, h.coupons.Check)
}

func (h *CouponHandler) quote(c *gin.Context, fn func(context.Context, string, decimal.Decimal) (*service.CouponQuote, error)) {
	var req dto.CouponQuoteRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	q, err := fn(c.Request.Context(), req.Code, req.CartTotal)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCouponQuote(q))
}

// List godoc
// @Summary List coupons
// @Tags coupons
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} dto.Page[dto.CouponResponse]
// @Failure 403 {object} dto.ForbiddenErrorResponse
// @Router /api/coupons [get]
func (h *CouponHandler) List(c *gin.Context) {
	var q pageQuery
	if !bindQuery(c, h.log, &q) {
		return
	}
	items, total, err := h.coupons.List(c.Request.Context(), q.Limit, q.Offset)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPage(dto.NewCoupons(items, h.coupons.Now()), total))
}

// Get godoc
// @Summary Get a coupon
// @Tags coupons
// @Produce json
// @Security BearerAuth
// @Param id path int true "Coupon ID"
// @Success 200 {object} dto.CouponResponse
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/coupons/{id} [get]
func (h *CouponHandler) Get(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	cp, err := h.coupons.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCoupon(cp, h.coupons.Now()))
}

// Create godoc
// @Summary Create a coupon
// @Tags coupons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param coupon body dto.CouponRequest true "Coupon"
// @Success 201 {object} dto.CouponResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 409 {object} dto.ConflictErrorResponse
// @Router /api/coupons [post]
func (h *CouponHandler) Create(c *gin.Context) {
	var req dto.CouponRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	cp, err := h.coupons.Create(c.Request.Context(), req.Input())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewCoupon(cp, h.coupons.Now()))
}

// Update godoc
// @Summary Replace a coupon
// @Tags coupons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Coupon ID"
// @Param coupon body dto.CouponRequest true "Coupon"
// @Success 200 {object} dto.CouponResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/coupons/{id} [put]
func (h *CouponHandler) Update(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	var req dto.CouponRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	cp, err := h.coupons.Update(c.Request.Context(), id, req.Input())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCoupon(cp, h.coupons.Now()))
}

// Delete godoc
// @Summary Delete a coupon
// @Tags coupons
// @Security BearerAuth
// @Param id path int true "Coupon ID"
// @Success 204
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/coupons/{id} [delete]
func (h *CouponHandler) Delete(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	if err := h.coupons.Delete(c.Request.Context(), id); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
