package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/emrahsandernet/kasarcim/internal/models"
	"github.com/emrahsandernet/kasarcim/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CouponInput struct {
	Code              string
	Description       string
	DiscountType      string
	DiscountValue     decimal.Decimal
	MinPurchaseAmount decimal.Decimal
	ValidFrom         time.Time
	ValidTo           time.Time
	Active            bool
	MaxUsage          int
}

// CouponQuote is what a buyer would save with a coupon on a given cart total.
type CouponQuote struct {
	Code           string
	DiscountType   string
	DiscountValue  decimal.Decimal
	DiscountAmount decimal.Decimal
	Message        string
}

type CouponService struct {
	repo *repository.Repository
	now  func() time.Time
	log  *zap.Logger
}

func NewCouponService(repo *repository.Repository, log *zap.Logger) *CouponService {
	return &CouponService{repo: repo, now: time.Now, log: log}
}

func quoteFor(c *models.Coupon, cartTotal decimal.Decimal) *CouponQuote {
	amount := c.DiscountFor(cartTotal)
	return &CouponQuote{
		Code:           c.Code,
		DiscountType:   c.DiscountType,
		DiscountValue:  c.DiscountValue,
		DiscountAmount: amount,
		Message:        fmt.Sprintf("Kupon başarıyla uygulandı! %s TL indirim kazandınız.", amount.StringFixed(2)),
	}
}

// Apply quotes a coupon for anonymous shoppers. It never consumes usage.
func (s *CouponService) Apply(ctx context.Context, code string, cartTotal decimal.Decimal) (*CouponQuote, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrCouponCodeRequired
	}
	c, err := s.repo.Coupons.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCouponNotFound
	}
	if !c.IsValid(s.now()) {
		return nil, ErrCouponInvalid
	}
	return quoteFor(c, cartTotal), nil
}

// Check is the authenticated variant of Apply and reports the first failing rule.
func (s *CouponService) Check(ctx context.Context, code string, cartTotal decimal.Decimal) (*CouponQuote, error) {
	if _, _, err := requireAuth(ctx); err != nil {
		return nil, err
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrCouponCodeRequired
	}
	c, err := s.repo.Coupons.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCouponNotFound
	}
	if err := couponRejection(c, s.now(), cartTotal); err != nil {
		return nil, err
	}
	return quoteFor(c, cartTotal), nil
}

func couponRejection(c *models.Coupon, now time.Time, cartTotal decimal.Decimal) error {
	switch {
	case !c.Active:
		return ErrCouponInactive
	case now.Before(c.ValidFrom):
		return ErrCouponNotYetValid
	case now.After(c.ValidTo):
		return ErrCouponExpired
	case c.UsageCount >= c.MaxUsage:
		return ErrCouponUsageExceeded
	case !c.MeetsMinimum(cartTotal):
		return fmt.Errorf("%w: minimum %s TL", ErrCouponBelowMinimum, c.MinPurchaseAmount.StringFixed(2))
	}
	return nil
}

func validateCoupon(in *CouponInput) error {
	var bad []string
	in.Code = strings.TrimSpace(in.Code)
	if in.Code == "" {
		bad = append(bad, "code")
	}
	if in.DiscountType == "" {
		in.DiscountType = models.DiscountTypePercentage
	}
	if in.DiscountType != models.DiscountTypePercentage && in.DiscountType != models.DiscountTypeFixed {
		bad = append(bad, "discount_type")
	}
	if !in.DiscountValue.IsPositive() ||
		(in.DiscountType == models.DiscountTypePercentage && in.DiscountValue.GreaterThan(decimal.NewFromInt(100))) {
		bad = append(bad, "discount_value")
	}
	if in.MinPurchaseAmount.IsNegative() {
		bad = append(bad, "min_purchase_amount")
	}
	if in.ValidFrom.IsZero() || in.ValidTo.IsZero() || in.ValidTo.Before(in.ValidFrom) {
		bad = append(bad, "valid_to")
	}
	if in.MaxUsage < 1 {
		bad = append(bad, "max_usage")
	}
	if len(bad) > 0 {
		return &ValidationError{Msg: ErrCouponInvalidConfig.Error(), Fields: bad}
	}
	return nil
}

func (s *CouponService) Create(ctx context.Context, in CouponInput) (*models.Coupon, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	if err := validateCoupon(&in); err != nil {
		return nil, err
	}
	c := &models.Coupon{}
	fillCoupon(c, in)
	if err := s.repo.Coupons.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CouponService) Update(ctx context.Context, id uint, in CouponInput) (*models.Coupon, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateCoupon(&in); err != nil {
		return nil, err
	}
	fillCoupon(c, in)
	if err := s.repo.Coupons.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func fillCoupon(c *models.Coupon, in CouponInput) {
	c.Code = in.Code
	c.Description = in.Description
	c.DiscountType = in.DiscountType
	c.DiscountValue = in.DiscountValue.Round(2)
	c.MinPurchaseAmount = in.MinPurchaseAmount.Round(2)
	c.ValidFrom = in.ValidFrom
	c.ValidTo = in.ValidTo
	c.Active = in.Active
	c.MaxUsage = in.MaxUsage
}

func (s *CouponService) Get(ctx context.Context, id uint) (*models.Coupon, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	c, err := s.repo.Coupons.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCouponNotFound
	}
	return c, nil
}

func (s *CouponService) List(ctx context.Context, limit, offset int) ([]models.Coupon, int64, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, 0, err
	}
	return s.repo.Coupons.List(ctx, limit, offset)
}

func (s *CouponService) Delete(ctx context.Context, id uint) error {
	if _, err := requireStaff(ctx); err != nil {
		return err
	}
	ok, err := s.repo.Coupons.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCouponNotFound
	}
	return nil
}

func (s *CouponService) Now() time.Time { return s.now() }
