package service

import (
	"context"
	"time"

	"github.com/emrahsandernet/kasarcim/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderItemEvent struct {
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// OrderEvent carries everything an order email needs so consumers never hit the database.
type OrderEvent struct {
	OrderID         uint             `json:"order_id"`
	OrderNumber     uint             `json:"order_number"`
	OrderCode       string           `json:"order_code"`
	Email           string           `json:"email"`
	CustomerName    string           `json:"customer_name"`
	IsGuest         bool             `json:"is_guest"`
	Status          string           `json:"status"`
	PaymentMethod   string           `json:"payment_method"`
	Items           []OrderItemEvent `json:"items"`
	Subtotal        decimal.Decimal  `json:"subtotal"`
	Discount        decimal.Decimal  `json:"discount"`
	ShippingCost    decimal.Decimal  `json:"shipping_cost"`
	CODFee          decimal.Decimal  `json:"cod_fee"`
	FinalPrice      decimal.Decimal  `json:"final_price"`
	ShippingAddress string           `json:"shipping_address"`
	ShippingCompany string           `json:"shipping_company,omitempty"`
	TrackingNumber  string           `json:"tracking_number,omitempty"`
	TrackingURL     string           `json:"tracking_url,omitempty"`
	OccurredAt      time.Time        `json:"occurred_at"`
}

type UserRegisteredEvent struct {
	UserID   uuid.UUID `json:"user_id"`
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	Username string    `json:"username"`
}

type PasswordResetRequestedEvent struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	ResetURL  string    `json:"reset_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type EventBus interface {
	PublishOrderCreated(ctx context.Context, e OrderEvent) error
	PublishOrderPaid(ctx context.Context, e OrderEvent) error
	PublishOrderShipped(ctx context.Context, e OrderEvent) error
	PublishOrderDelivered(ctx context.Context, e OrderEvent) error
	PublishUserRegistered(ctx context.Context, e UserRegisteredEvent) error
	PublishPasswordResetRequested(ctx context.Context, e PasswordResetRequestedEvent) error
}

// NopEventBus drops every event; used when notifications are disabled.
type NopEventBus struct{}

func (NopEventBus) PublishOrderCreated(context.Context, OrderEvent) error   { return nil }
func (NopEventBus) PublishOrderPaid(context.Context, OrderEvent) error      { return nil }
func (NopEventBus) PublishOrderShipped(context.Context, OrderEvent) error   { return nil }
func (NopEventBus) PublishOrderDelivered(context.Context, OrderEvent) error { return nil }
func (NopEventBus) PublishUserRegistered(context.Context, UserRegisteredEvent) error {
	return nil
}
func (NopEventBus) PublishPasswordResetRequested(context.Context, PasswordResetRequestedEvent) error {
	return nil
}

// NewOrderEvent snapshots an order. Guest orders and registered orders both address the
// email stored on the order itself.
func NewOrderEvent(o *models.Order, at time.Time) OrderEvent {
	items := make([]OrderItemEvent, 0, len(o.Items))
	for i := range o.Items {
		it := &o.Items[i]
		name := ""
		if it.Product != nil {
			name = it.Product.Name
		}
		items = append(items, OrderItemEvent{
			ProductName: name,
			Quantity:    it.Quantity,
			Price:       it.Price,
			LineTotal:   it.Total(),
		})
	}
	e := OrderEvent{
		OrderID:         o.ID,
		OrderNumber:     o.DisplayNumber(),
		OrderCode:       o.DisplayCode(),
		Email:           o.Email,
		CustomerName:    o.FullName(),
		IsGuest:         o.IsGuestOrder,
		Status:          string(o.Status),
		PaymentMethod:   o.PaymentMethod,
		Items:           items,
		Subtotal:        o.TotalPrice,
		Discount:        o.Discount,
		ShippingCost:    o.ShippingCost,
		CODFee:          o.CODFee,
		FinalPrice:      o.FinalPrice,
		ShippingAddress: o.ShippingAddress(),
		OccurredAt:      at,
	}
	if !o.IsGuestOrder && o.User != nil {
		if e.Email == "" {
			e.Email = o.User.Email
		}
		if e.CustomerName == "" {
			e.CustomerName = o.User.DisplayName()
		}
	}
	if s := o.Shipment; s != nil {
		e.ShippingCompany = string(s.ShippingCompany)
		e.TrackingNumber = s.TrackingNumber
		e.TrackingURL = s.ResolvedTrackingURL()
	}
	return e
}
