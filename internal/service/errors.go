package service

import (
	"errors"
	"strings"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrRateLimited  = errors.New("too many requests")

	ErrCategoryNotFound     = errors.New("category not found")
	ErrProductNotFound      = errors.New("product not found")
	ErrDiscountNotFound     = errors.New("discount not found")
	ErrReviewNotFound       = errors.New("review not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrCouponNotFound       = errors.New("coupon not found")
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrShipmentNotFound     = errors.New("shipment not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrAddressNotFound      = errors.New("address not found")
	ErrBlogNotFound         = errors.New("blog post not found")
	ErrNoFeaturedPost       = errors.New("no featured blog post")
	ErrAnnouncementNotFound = errors.New("announcement not found")
	ErrMessageNotFound      = errors.New("contact message not found")
	ErrTagNotFound          = errors.New("tag not found")

	// catalog
	ErrNotPurchased  = errors.New("product must be purchased before it can be reviewed")
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	ErrOwnReview     = errors.New("cannot react to your own review")

	// coupons
	ErrCouponCodeRequired  = errors.New("coupon code is required")
	ErrCouponInvalid       = errors.New("coupon is not valid")
	ErrCouponInactive      = errors.New("coupon is not active")
	ErrCouponNotYetValid   = errors.New("coupon is not valid yet")
	ErrCouponExpired       = errors.New("coupon has expired")
	ErrCouponUsageExceeded = errors.New("coupon usage limit reached")
	ErrCouponBelowMinimum  = errors.New("cart total is below the coupon minimum")
	ErrOrderHasCoupon      = errors.New("order already has a coupon")

	// orders
	ErrEmptyItems          = errors.New("empty items")
	ErrQuantityInvalid     = errors.New("quantity must be > 0")
	ErrUnknownProduct      = errors.New("unknown product")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrInvalidAddress      = errors.New("invalid address")
	ErrGuestInfoMissing    = errors.New("guest information is missing")
	ErrOrderNotEditable    = errors.New("order can no longer be modified")
	ErrOrderAlreadyPaid    = errors.New("order is already paid or further along")
	ErrOrderCancelled      = errors.New("order is cancelled")
	ErrOrderNotCancellable = errors.New("order has been shipped or delivered and cannot be cancelled")
	ErrAlreadyCancelled    = errors.New("order already cancelled")

	// payments
	ErrOrderNotPayable         = errors.New("order is not awaiting payment")
	ErrPaymentExists           = errors.New("order already has a payment")
	ErrInvalidPaymentMethod    = errors.New("invalid payment method")
	ErrInvalidPaymentStatus    = errors.New("invalid payment status")
	ErrPaymentAlreadyProcessed = errors.New("payment already completed or refunded")

	// shipments
	ErrShipmentExists         = errors.New("order already has a shipment")
	ErrOrderNotShippable      = errors.New("order must be created or paid to ship")
	ErrAlreadyShipped         = errors.New("shipment already shipped")
	ErrAlreadyDelivered       = errors.New("shipment already delivered")
	ErrInvalidShipmentStatus  = errors.New("invalid shipment status")
	ErrInvalidShippingCompany = errors.New("invalid shipping company")

	// users
	ErrEmailTaken          = errors.New("email already registered")
	ErrUsernameTaken       = errors.New("username already taken")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInactiveUser        = errors.New("user is inactive")
	ErrPasswordTooShort    = errors.New("password must be at least 8 characters")
	ErrResetTokenInvalid   = errors.New("password reset token is invalid or used")
	ErrResetTokenExpired   = errors.New("password reset token has expired")
	ErrInvalidAddressType  = errors.New("invalid address type")
	ErrCouponInvalidConfig = errors.New("invalid coupon configuration")
)

// ValidationError lists request fields that are missing or malformed.
type ValidationError struct {
	Msg    string
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Msg
	}
	return e.Msg + ": " + strings.Join(e.Fields, ", ")
}

func missingFields(msg string, fields map[string]string, order []string) error {
	var missing []string
	for _, k := range order {
		if strings.TrimSpace(fields[k]) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &ValidationError{Msg: msg, Fields: missing}
}
