package dto

import (
	"time"

	"github.com/emrahsandernet/kasarcim/internal/models"
	"github.com/emrahsandernet/kasarcim/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" example:"1"`
}

type GuestInfoRequest struct {
	FullName   string `json:"full_name" example:"Ayşe Yılmaz"`
	Email      string `json:"email" binding:"omitempty,email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	District   string `json:"district"`
	PostalCode string `json:"postal_code"`
}

// CreateOrderRequest takes address_id for signed-in customers and guest_info otherwise.
type CreateOrderRequest struct {
	Items         []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	CouponCode    string             `json:"coupon_code"`
	Notes         string             `json:"notes"`
	PaymentMethod string             `json:"payment_method" example:"online"`
	AddressID     *uint              `json:"address_id"`
	GuestInfo     *GuestInfoRequest  `json:"guest_info"`
}

func (r CreateOrderRequest) Input() service.CreateOrderInput {
	in := service.CreateOrderInput{
		Items:         make([]service.CreateOrderItem, 0, len(r.Items)),
		CouponCode:    r.CouponCode,
		Notes:         r.Notes,
		PaymentMethod: r.PaymentMethod,
		AddressID:     r.AddressID,
	}
	for _, it := range r.Items {
		in.Items = append(in.Items, service.CreateOrderItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	if g := r.GuestInfo; g != nil {
		in.Guest = &service.GuestInfo{
			FullName:   g.FullName,
			Email:      g.Email,
			Phone:      g.Phone,
			Address:    g.Address,
			City:       g.City,
			District:   g.District,
			PostalCode: g.PostalCode,
		}
	}
	return in
}

type ApplyCouponRequest struct {
	Code string `json:"code" binding:"required" example:"YAZ25"`
}

type OrderItemResponse struct {
	ID          uint            `json:"id"`
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	ProductSlug string          `json:"product_slug,omitempty"`
	Price       decimal.Decimal `json:"price" swaggertype:"string"`
	Quantity    int             `json:"quantity"`
	Total       decimal.Decimal `json:"total" swaggertype:"string"`
}

func NewOrderItem(it *models.OrderItem) OrderItemResponse {
	r := OrderItemResponse{
		ID:        it.ID,
		ProductID: it.ProductID,
		Price:     it.Price,
		Quantity:  it.Quantity,
		Total:     it.Total(),
	}
	if it.Product != nil {
		r.ProductName = it.Product.Name
		r.ProductSlug = it.Product.Slug
	}
	return r
}

type OrderResponse struct {
	ID              uint                `json:"id"`
	OrderNumber     uint                `json:"order_number"`
	OrderCode       string              `json:"order_code"`
	UserID          *uuid.UUID          `json:"user_id"`
	IsGuestOrder    bool                `json:"is_guest_order"`
	FirstName       string              `json:"first_name"`
	LastName        string              `json:"last_name"`
	FullName        string              `json:"full_name"`
	Email           string              `json:"email"`
	Address         string              `json:"address"`
	City            string              `json:"city"`
	District        string              `json:"district"`
	PostalCode      string              `json:"postal_code"`
	Country         string              `json:"country"`
	PhoneNumber     string              `json:"phone_number"`
	ShippingAddress string              `json:"shipping_address"`
	Status          models.OrderStatus  `json:"status"`
	PaymentMethod   string              `json:"payment_method"`
	CouponCode      string              `json:"coupon_code,omitempty"`
	TotalPrice      decimal.Decimal     `json:"total_price" swaggertype:"string"`
	Discount        decimal.Decimal     `json:"discount" swaggertype:"string"`
	ShippingCost    decimal.Decimal     `json:"shipping_cost" swaggertype:"string"`
	CODFee          decimal.Decimal     `json:"cod_fee" swaggertype:"string"`
	FinalPrice      decimal.Decimal     `json:"final_price" swaggertype:"string"`
	Notes           string              `json:"notes"`
	IsPaid          bool                `json:"is_paid"`
	CanBeCancelled  bool                `json:"can_be_cancelled"`
	PaidAt          *time.Time          `json:"paid_at"`
	Items           []OrderItemResponse `json:"items"`
	Shipment        *ShipmentResponse   `json:"shipment,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

func NewOrder(o *models.Order) OrderResponse {
	r := OrderResponse{
		ID:              o.ID,
		OrderNumber:     o.DisplayNumber(),
		OrderCode:       o.DisplayCode(),
		UserID:          o.UserID,
		IsGuestOrder:    o.IsGuestOrder,
		FirstName:       o.FirstName,
		LastName:        o.LastName,
		FullName:        o.FullName(),
		Email:           o.Email,
		Address:         o.Address,
		City:            o.City,
		District:        o.District,
		PostalCode:      o.PostalCode,
		Country:         o.Country,
		PhoneNumber:     o.PhoneNumber,
		ShippingAddress: o.ShippingAddress(),
		Status:          o.Status,
		PaymentMethod:   o.PaymentMethod,
		TotalPrice:      o.TotalPrice,
		Discount:        o.Discount,
		ShippingCost:    o.ShippingCost,
		CODFee:          o.CODFee,
		FinalPrice:      o.FinalPrice,
		Notes:           o.Notes,
		IsPaid:          o.IsPaid(),
		CanBeCancelled:  o.CanBeCancelled(),
		PaidAt:          o.PaidAt,
		Items:           make([]OrderItemResponse, 0, len(o.Items)),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	if o.Coupon != nil {
		r.CouponCode = o.Coupon.Code
	}
	for i := range o.Items {
		r.Items = append(r.Items, NewOrderItem(&o.Items[i]))
	}
	if o.Shipment != nil {
		s := NewShipment(o.Shipment)
		r.Shipment = &s
	}
	return r
}

func NewOrders(os []models.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(os))
	for i := range os {
		out = append(out, NewOrder(&os[i]))
	}
	return out
}

type AddItemResponse struct {
	Item  OrderItemResponse `json:"item"`
	Order OrderResponse     `json:"order"`
}

type CreatePaymentRequest struct {
	OrderID       uint   `json:"order_id" binding:"required"`
	PaymentMethod string `json:"payment_method" binding:"required,oneof=credit_card bank_transfer paypal cash_on_delivery" example:"credit_card"`
	Notes         string `json:"notes"`
}

func (r CreatePaymentRequest) Input() service.CreatePaymentInput {
	return service.CreatePaymentInput{OrderID: r.OrderID, PaymentMethod: models.PaymentMethod(r.PaymentMethod), Notes: r.Notes}
}

type ProcessPaymentRequest struct {
	Status        string `json:"status" binding:"required" example:"completed"`
	TransactionID string `json:"transaction_id"`
	Notes         string `json:"notes"`
}

func (r ProcessPaymentRequest) Input() service.ProcessPaymentInput {
	return service.ProcessPaymentInput{Status: models.PaymentStatus(r.Status), TransactionID: r.TransactionID, Notes: r.Notes}
}

type PaymentResponse struct {
	ID            uint                 `json:"id"`
	OrderID       uint                 `json:"order_id"`
	Amount        decimal.Decimal      `json:"amount" swaggertype:"string"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	Status        models.PaymentStatus `json:"status"`
	TransactionID string               `json:"transaction_id"`
	Notes         string               `json:"notes"`
	PaymentDate   time.Time            `json:"payment_date"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

func NewPayment(p *models.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		OrderID:       p.OrderID,
		Amount:        p.Amount,
		PaymentMethod: p.PaymentMethod,
		Status:        p.Status,
		TransactionID: p.TransactionID,
		Notes:         p.Notes,
		PaymentDate:   p.PaymentDate,
		UpdatedAt:     p.UpdatedAt,
	}
}

func NewPayments(ps []models.Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(ps))
	for i := range ps {
		out = append(out, NewPayment(&ps[i]))
	}
	return out
}

type CreateShipmentRequest struct {
	OrderID           uint    `json:"order_id" binding:"required"`
	Status            string  `json:"status" example:"preparing"`
	ShippingCompany   string  `json:"shipping_company" example:"aras"`
	TrackingNumber    string  `json:"tracking_number" binding:"max=100"`
	TrackingURL       string  `json:"tracking_url" binding:"omitempty,url,max=255"`
	EstimatedDelivery *string `json:"estimated_delivery" binding:"omitempty,datetime=2006-01-02"`
	Notes             string  `json:"notes"`
}

func (r CreateShipmentRequest) Input() service.CreateShipmentInput {
	return service.CreateShipmentInput{
		OrderID:           r.OrderID,
		Status:            models.ShipmentStatus(r.Status),
		ShippingCompany:   models.ShippingCompany(r.ShippingCompany),
		TrackingNumber:    r.TrackingNumber,
		TrackingURL:       r.TrackingURL,
		EstimatedDelivery: optionalDate(r.EstimatedDelivery),
		Notes:             r.Notes,
	}
}

type ShipmentPatchRequest struct {
	Status            *string `json:"status"`
	ShippingCompany   *string `json:"shipping_company"`
	TrackingNumber    *string `json:"tracking_number" binding:"omitempty,max=100"`
	TrackingURL       *string `json:"tracking_url" binding:"omitempty,max=255"`
	EstimatedDelivery *string `json:"estimated_delivery" binding:"omitempty,datetime=2006-01-02"`
	Notes             *string `json:"notes"`
}

func (r ShipmentPatchRequest) Patch() service.ShipmentPatch {
	p := service.ShipmentPatch{
		TrackingNumber:    r.TrackingNumber,
		TrackingURL:       r.TrackingURL,
		EstimatedDelivery: optionalDate(r.EstimatedDelivery),
		Notes:             r.Notes,
	}
	if r.Status != nil {
		st := models.ShipmentStatus(*r.Status)
		p.Status = &st
	}
	if r.ShippingCompany != nil {
		c := models.ShippingCompany(*r.ShippingCompany)
		p.ShippingCompany = &c
	}
	return p
}

type MarkShippedRequest struct {
	TrackingNumber    string  `json:"tracking_number" binding:"required,max=100" example:"ARAS123456"`
	ShippingCompany   *string `json:"shipping_company"`
	EstimatedDelivery *string `json:"estimated_delivery" binding:"omitempty,datetime=2006-01-02"`
}

func (r MarkShippedRequest) Input() service.MarkShippedInput {
	in := service.MarkShippedInput{
		TrackingNumber:    r.TrackingNumber,
		EstimatedDelivery: optionalDate(r.EstimatedDelivery),
	}
	if r.ShippingCompany != nil {
		c := models.ShippingCompany(*r.ShippingCompany)
		in.ShippingCompany = &c
	}
	return in
}

type ShipmentResponse struct {
	ID                uint                   `json:"id"`
	OrderID           uint                   `json:"order_id"`
	Status            models.ShipmentStatus  `json:"status"`
	StatusDescription string                 `json:"status_description"`
	ShippingCompany   models.ShippingCompany `json:"shipping_company"`
	TrackingNumber    string                 `json:"tracking_number"`
	TrackingURL       string                 `json:"tracking_url"`
	IsInTransit       bool                   `json:"is_in_transit"`
	ShippedAt         *time.Time             `json:"shipped_at"`
	EstimatedDelivery *string                `json:"estimated_delivery"`
	DeliveredAt       *time.Time             `json:"delivered_at"`
	Notes             string                 `json:"notes"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

func NewShipment(s *models.Shipment) ShipmentResponse {
	return ShipmentResponse{
		ID:                s.ID,
		OrderID:           s.OrderID,
		Status:            s.Status,
		StatusDescription: s.Status.Description(),
		ShippingCompany:   s.ShippingCompany,
		TrackingNumber:    s.TrackingNumber,
		TrackingURL:       s.ResolvedTrackingURL(),
		IsInTransit:       s.IsInTransit(),
		ShippedAt:         s.ShippedAt,
		EstimatedDelivery: formatDate(s.EstimatedDelivery),
		DeliveredAt:       s.DeliveredAt,
		Notes:             s.Notes,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

func NewShipments(ss []models.Shipment) []ShipmentResponse {
	out := make([]ShipmentResponse, 0, len(ss))
	for i := range ss {
		out = append(out, NewShipment(&ss[i]))
	}
	return out
}
