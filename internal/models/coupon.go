package models

import (
	"time"

	"github.com/emrahsandernet/kasarcim/internal/pricing"

	"github.com/shopspring/decimal"
)

const (
	DiscountTypePercentage = pricing.DiscountPercentage
	DiscountTypeFixed      = pricing.DiscountFixed
)

type Coupon struct {
	ID                uint            `gorm:"primaryKey"`
	Code              string          `gorm:"size:50;not null;uniqueIndex"`
	Description       string          `gorm:"type:text"`
	DiscountType      string          `gorm:"size:10;not null;default:'percentage'"`
	DiscountValue     decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	MinPurchaseAmount decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	ValidFrom         time.Time       `gorm:"not null"`
	ValidTo           time.Time       `gorm:"not null"`
	Active            bool            `gorm:"not null"`
	MaxUsage          int             `gorm:"not null;default:1"`
	UsageCount        int             `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Coupon) TableName() string { return "coupons" }

func (c *Coupon) IsValid(now time.Time) bool {
	return c.Active &&
		!now.Before(c.ValidFrom) &&
		!now.After(c.ValidTo) &&
		c.UsageCount < c.MaxUsage
}

func (c *Coupon) MeetsMinimum(cartTotal decimal.Decimal) bool {
	return !cartTotal.LessThan(c.MinPurchaseAmount)
}

func (c *Coupon) DiscountFor(cartTotal decimal.Decimal) decimal.Decimal {
	return pricing.CouponDiscount(c.DiscountType, c.DiscountValue, cartTotal)
}
