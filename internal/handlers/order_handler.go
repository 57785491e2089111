package handlers

import (
	"context"
	"net/http"

	"github.com/emrahsandernet/kasarcim/internal/dto"
	"github.com/emrahsandernet/kasarcim/internal/models"
	"github.com/emrahsandernet/kasarcim/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OrderService interface {
	CreateOrder(ctx context.Context, in service.CreateOrderInput) (*models.Order, error)
	GetOrder(ctx context.Context, id uint) (*models.Order, error)
	ListOrders(ctx context.Context, f service.OrderFilter) ([]models.Order, int64, error)
	AddItem(ctx context.Context, orderID uint, in service.CreateOrderItem) (*models.OrderItem, *models.Order, error)
	ApplyCoupon(ctx context.Context, orderID uint, code string) (*models.Order, error)
	MarkPaid(ctx context.Context, orderID uint) (*models.Order, error)
	CancelOrder(ctx context.Context, orderID uint) (*models.Order, error)
}

type OrderHandler struct {
	orders OrderService
	log    *zap.Logger
}

func NewOrderHandler(orders OrderService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, log: log}
}

// CreateOrder godoc
// @Summary Place an order
// @Description Signed-in customers send address_id, guests send guest_info. Stock is reserved
// @Description and an invalid coupon is ignored.
// @Tags orders
// @Accept json
// @Produce json
// @Param order body dto.CreateOrderRequest true "Order"
// @Success 201 {object} dto.OrderResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 400 {object} dto.BadRequestErrorResponse "Insufficient stock or unknown product"
// @Router /api/orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	o, err := h.orders.CreateOrder(c.Request.Context(), req.Input())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewOrder(o))
}

type orderListQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=created paid shipped delivered cancelled"`
	pageQuery
}

// ListOrders godoc
// @Summary List orders
// @Description Customers see their own orders, staff see all.
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param status query string false "Order status"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} dto.Page[dto.OrderResponse]
// @Failure 401 {object} dto.UnauthorizedErrorResponse
// @Router /api/orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var q orderListQuery
	if !bindQuery(c, h.log, &q) {
		return
	}
	f := service.OrderFilter{Limit: q.Limit, Offset: q.Offset}
	if q.Status != "" {
		st := models.OrderStatus(q.Status)
		f.Status = &st
	}
	items, total, err := h.orders.ListOrders(c.Request.Context(), f)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPage(dto.NewOrders(items), total))
}

// GetOrder godoc
// @Summary Get an order
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Success 200 {object} dto.OrderResponse
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	o, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrder(o))
}

// AddItem godoc
// @Summary Add a line to an unpaid order
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Param item body dto.OrderItemRequest true "Item"
// @Success 201 {object} dto.AddItemResponse
// @Failure 400 {object} dto.BadRequestErrorResponse
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/orders/{id}/items [post]
func (h *OrderHandler) AddItem(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	var req dto.OrderItemRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	item, o, err := h.orders.AddItem(c.Request.Context(), id, service.CreateOrderItem{ProductID: req.ProductID, Quantity: req.Quantity})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.AddItemResponse{Item: dto.NewOrderItem(item), Order: dto.NewOrder(o)})
}

// ApplyCoupon godoc
// @Summary Apply a coupon to an unpaid order
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Param coupon body dto.ApplyCouponRequest true "Coupon code"
// @Success 200 {object} dto.OrderResponse
// @Failure 400 {object} dto.BadRequestErrorResponse
// @Failure 409 {object} dto.ConflictErrorResponse "Order already has a coupon"
// @Router /api/orders/{id}/apply-coupon [post]
func (h *OrderHandler) ApplyCoupon(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	var req dto.ApplyCouponRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	o, err := h.orders.ApplyCoupon(c.Request.Context(), id, req.Code)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrder(o))
}

// MarkPaid godoc
// @Summary Mark an order as paid
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Success 200 {object} dto.OrderResponse
// @Failure 409 {object} dto.ConflictErrorResponse
// @Router /api/orders/{id}/mark-paid [post]
func (h *OrderHandler) MarkPaid(c *gin.Context) {
	h.transition(c, h.orders.MarkPaid)
}

// CancelOrder godoc
// @Summary Cancel an order and return its stock
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Success 200 {object} dto.OrderResponse
// @Failure 400 {object} dto.BadRequestErrorResponse "Already shipped"
// @Failure 409 {object} dto.ConflictErrorResponse "Already cancelled"
// @Router /api/orders/{id}/cancel [post]
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	h.transition(c, h.orders.CancelOrder)
}

func (h *OrderHandler) transition(c *gin.Context, fn func(context.Context, uint) (*models.Order, error)) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	o, err := fn(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrder(o))
}
