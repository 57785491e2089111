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

type PaymentService interface {
	CreatePayment(ctx context.Context, in service.CreatePaymentInput) (*models.Payment, error)
	ProcessPayment(ctx context.Context, id uint, in service.ProcessPaymentInput) (*models.Payment, error)
	GetPayment(ctx context.Context, id uint) (*models.Payment, error)
	ListPayments(ctx context.Context) ([]models.Payment, error)
}

type ShipmentService interface {
	CreateShipment(ctx context.Context, in service.CreateShipmentInput) (*models.Shipment, error)
	UpdateShipment(ctx context.Context, id uint, in service.ShipmentPatch) (*models.Shipment, error)
	MarkShipped(ctx context.Context, id uint, in service.MarkShippedInput) (*models.Shipment, error)
	MarkDelivered(ctx context.Context, id uint) (*models.Shipment, error)
	GetShipment(ctx context.Context, id uint) (*models.Shipment, error)
	ListShipments(ctx context.Context) ([]models.Shipment, error)
}

// FulfillmentHandler serves payments and shipments.
type FulfillmentHandler struct {
	payments  PaymentService
	shipments ShipmentService
	log       *zap.Logger
}

func NewFulfillmentHandler(payments PaymentService, shipments ShipmentService, log *zap.Logger) *FulfillmentHandler {
	return &FulfillmentHandler{payments: payments, shipments: shipments, log: log}
}

// CreatePayment godoc
// @Summary Record a payment for an order
// @Description Card and PayPal payments complete immediately and mark the order paid.
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payment body dto.CreatePaymentRequest true "Payment"
// @Success 201 {object} dto.PaymentResponse
// @Failure 400 {object} dto.BadRequestErrorResponse
// @Failure 409 {object} dto.ConflictErrorResponse "Order already has a payment"
// @Router /api/payments [post]
func (h *FulfillmentHandler) CreatePayment(c *gin.Context) {
	var req dto.CreatePaymentRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	p, err := h.payments.CreatePayment(c.Request.Context(), req.Input())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewPayment(p))
}

// ProcessPayment godoc
// @Summary Move a payment to a new status
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payment ID"
// @Param payment body dto.ProcessPaymentRequest true "New status"
// @Success 200 {object} dto.PaymentResponse
// @Failure 400 {object} dto.BadRequestErrorResponse
// @Failure 409 {object} dto.ConflictErrorResponse "Payment already final"
// @Router /api/payments/{id}/process [post]
func (h *FulfillmentHandler) ProcessPayment(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	var req dto.ProcessPaymentRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	p, err := h.payments.ProcessPayment(c.Request.Context(), id, req.Input())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPayment(p))
}

// GetPayment godoc
// @Summary Get a payment
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payment ID"
// @Success 200 {object} dto.PaymentResponse
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/payments/{id} [get]
func (h *FulfillmentHandler) GetPayment(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	p, err := h.payments.GetPayment(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPayment(p))
}

// ListPayments godoc
// @Summary List payments visible to the caller
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.PaymentResponse
// @Router /api/payments [get]
func (h *FulfillmentHandler) ListPayments(c *gin.Context) {
	ps, err := h.payments.ListPayments(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPayments(ps))
}

// CreateShipment godoc
// @Summary Open a shipment for an order
// @Tags shipments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param shipment body dto.CreateShipmentRequest true "Shipment"
// @Success 201 {object} dto.ShipmentResponse
// @Failure 400 {object} dto.BadRequestErrorResponse
// @Failure 409 {object} dto.ConflictErrorResponse "Order already has a shipment"
// @Router /api/shipments [post]
func (h *FulfillmentHandler) CreateShipment(c *gin.Context) {
	var req dto.CreateShipmentRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	s, err := h.shipments.CreateShipment(c.Request.Context(), req.Input())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewShipment(s))
}

// UpdateShipment godoc
// @Summary Partially update a shipment
// @Description Moving to shipped or delivered updates the order and emails the customer.
// @Tags shipments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Shipment ID"
// @Param shipment body dto.ShipmentPatchRequest true "Fields to change"
// @Success 200 {object} dto.ShipmentResponse
// @Failure 400 {object} dto.BadRequestErrorResponse
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/shipments/{id} [patch]
func (h *FulfillmentHandler) UpdateShipment(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	var req dto.ShipmentPatchRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	s, err := h.shipments.UpdateShipment(c.Request.Context(), id, req.Patch())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewShipment(s))
}

// MarkShipped godoc
// @Summary Hand a shipment to the carrier
// @Tags shipments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Shipment ID"
// @Param shipment body dto.MarkShippedRequest true "Tracking details"
// @Success 200 {object} dto.ShipmentResponse
// @Failure 409 {object} dto.ConflictErrorResponse "Already shipped"
// @Router /api/shipments/{id}/mark-shipped [post]
func (h *FulfillmentHandler) MarkShipped(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	var req dto.MarkShippedRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	s, err := h.shipments.MarkShipped(c.Request.Context(), id, req.Input())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewShipment(s))
}

// MarkDelivered godoc
// @Summary Mark a shipment delivered
// @Tags shipments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Shipment ID"
// @Success 200 {object} dto.ShipmentResponse
// @Failure 409 {object} dto.ConflictErrorResponse "Already delivered"
// @Router /api/shipments/{id}/mark-delivered [post]
func (h *FulfillmentHandler) MarkDelivered(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	s, err := h.shipments.MarkDelivered(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewShipment(s))
}

// GetShipment godoc
// @Summary Get a shipment
// @Tags shipments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Shipment ID"
// @Success 200 {object} dto.ShipmentResponse
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/shipments/{id} [get]
func (h *FulfillmentHandler) GetShipment(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	s, err := h.shipments.GetShipment(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewShipment(s))
}

// ListShipments godoc
// @Summary List shipments visible to the caller
// @Tags shipments
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.ShipmentResponse
// @Router /api/shipments [get]
func (h *FulfillmentHandler) ListShipments(c *gin.Context) {
	ss, err := h.shipments.ListShipments(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewShipments(ss))
}
