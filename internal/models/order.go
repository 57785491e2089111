package models

import (
	"fmt"
	"time"

	"github.com/emrahsandernet/kasarcim/internal/pricing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "created"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

const (
	PaymentMethodOnline         = pricing.PaymentOnline
	PaymentMethodCashOnDelivery = pricing.PaymentCashOnDelivery
)

// DisplayNumberOffset is added to the primary key for customer-facing order numbers.
const DisplayNumberOffset = 91185

const DefaultCountry = "Türkiye"

type Order struct {
	ID           uint        `gorm:"primaryKey"`
	UserID       *uuid.UUID  `gorm:"type:char(36);index"`
	User         *User       `gorm:"constraint:OnDelete:SET NULL"`
	IsGuestOrder bool        `gorm:"not null;default:false"`
	FirstName    string      `gorm:"size:100;not null"`
	LastName     string      `gorm:"size:100;not null"`
	Email        string      `gorm:"size:254;not null;index"`
	Address      string      `gorm:"type:text;not null"`
	City         string      `gorm:"size:100;not null"`
	District     string      `gorm:"size:100"`
	PostalCode   string      `gorm:"size:20"`
	Country      string      `gorm:"size:100;not null"`
	PhoneNumber  string      `gorm:"size:20"`
	Status       OrderStatus `gorm:"size:20;not null;default:'created';index"`

	PaymentMethod string `gorm:"size:20;not null;default:'online'"`

	CouponID *uint   `gorm:"index"`
	Coupon   *Coupon `gorm:"constraint:OnDelete:SET NULL"`

	TotalPrice   decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	Discount     decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	ShippingCost decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	CODFee       decimal.Decimal `gorm:"column:cod_fee;type:numeric(10,2);not null;default:0"`
	FinalPrice   decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`

	Notes  string `gorm:"type:text"`
	PaidAt *time.Time

	Items    []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Shipment *Shipment   `gorm:"foreignKey:OrderID"`
	Payment  *Payment    `gorm:"foreignKey:OrderID"`

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (Order) TableName() string { return "orders" }

// BeforeSave keeps the derived money fields consistent with subtotal, discount and
// payment method on every write of the full row.
func (o *Order) BeforeSave(*gorm.DB) error {
	o.Recalculate()
	return nil
}

func (o *Order) Recalculate() {
	t := pricing.Compute(o.TotalPrice, o.Discount, o.PaymentMethod)
	o.ShippingCost = t.ShippingCost
	o.CODFee = t.CODFee
	o.FinalPrice = t.FinalPrice
}

func (o *Order) DisplayNumber() uint { return o.ID + DisplayNumberOffset }

func (o *Order) DisplayCode() string { return fmt.Sprintf("SP%d", o.DisplayNumber()) }

func (o *Order) ShippingAddress() string {
	return fmt.Sprintf("%s, %s %s, %s", o.Address, o.City, o.PostalCode, o.Country)
}

func (o *Order) FullName() string {
	if o.LastName == "" {
		return o.FirstName
	}
	return o.FirstName + " " + o.LastName
}

func (o *Order) IsPaid() bool { return o.Status == OrderStatusPaid }

// CanBeCancelled is false once the parcel has left the warehouse.
func (o *Order) CanBeCancelled() bool {
	switch o.Status {
	case OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return false
	}
	return true
}

func (o *Order) IsOwnedBy(userID uuid.UUID) bool {
	return o.UserID != nil && *o.UserID == userID
}

// Subtotal sums item totals.
func (o *Order) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for i := range o.Items {
		sum = sum.Add(o.Items[i].Total())
	}
	return sum
}

type OrderItem struct {
	ID        uint            `gorm:"primaryKey"`
	OrderID   uint            `gorm:"not null;index"`
	ProductID uint            `gorm:"not null;index"`
	Product   *Product        `gorm:"constraint:OnDelete:RESTRICT"`
	Price     decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Quantity  int             `gorm:"not null;default:1"`

	CreatedAt time.Time
}

func (OrderItem) TableName() string { return "order_items" }

func (i *OrderItem) Total() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
