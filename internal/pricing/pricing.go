// Package pricing holds the money rules shared by orders and coupons.
package pricing

import "github.com/shopspring/decimal"

const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"

	PaymentOnline         = "online"
	PaymentCashOnDelivery = "cash_on_delivery"
)

var (
	FreeShippingThreshold = decimal.RequireFromString("1500.00")
	FlatShippingCost      = decimal.RequireFromString("250.00")
	CashOnDeliveryFee     = decimal.RequireFromString("50.00")

	hundred = decimal.NewFromInt(100)
)

// ShippingCost is waived from FreeShippingThreshold upwards.
func ShippingCost(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.LessThan(FreeShippingThreshold) {
		return FlatShippingCost
	}
	return decimal.Zero
}

func CODFee(paymentMethod string) decimal.Decimal {
	if paymentMethod == PaymentCashOnDelivery {
		return CashOnDeliveryFee
	}
	return decimal.Zero
}

// CouponDiscount never exceeds subtotal and is never negative.
func CouponDiscount(discountType string, value, subtotal decimal.Decimal) decimal.Decimal {
	var d decimal.Decimal
	switch discountType {
	case DiscountPercentage:
		d = subtotal.Mul(value).Div(hundred)
	default:
		d = value
	}
	if d.GreaterThan(subtotal) {
		d = subtotal
	}
	if d.IsNegative() {
		d = decimal.Zero
	}
	return d.Round(2)
}

func FinalPrice(subtotal, discount, shipping, codFee decimal.Decimal) decimal.Decimal {
	return subtotal.Sub(discount).Add(shipping).Add(codFee)
}

// ApplyProductDiscount returns price reduced by percentage (0..100).
func ApplyProductDiscount(price, percentage decimal.Decimal) decimal.Decimal {
	if percentage.LessThanOrEqual(decimal.Zero) {
		return price
	}
	if percentage.GreaterThan(hundred) {
		percentage = hundred
	}
	return price.Mul(hundred.Sub(percentage)).Div(hundred).Round(2)
}

// Totals is the full breakdown persisted on an order.
type Totals struct {
	Subtotal     decimal.Decimal
	Discount     decimal.Decimal
	ShippingCost decimal.Decimal
	CODFee       decimal.Decimal
	FinalPrice   decimal.Decimal
}

func Compute(subtotal, discount decimal.Decimal, paymentMethod string) Totals {
	shipping := ShippingCost(subtotal)
	cod := CODFee(paymentMethod)
	return Totals{
		Subtotal:     subtotal,
		Discount:     discount,
		ShippingCost: shipping,
		CODFee:       cod,
		FinalPrice:   FinalPrice(subtotal, discount, shipping, cod),
	}
}
