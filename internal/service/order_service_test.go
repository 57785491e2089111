package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/emrahsandernet/kasarcim/internal/models"
	"github.com/emrahsandernet/kasarcim/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCreateOrder_RegisteredUser(t *testing.T) {
	st := newStore()
	u := st.addUser("ayse@example.com", false)
	addr := st.addAddress(u.ID)
	p := st.addProduct("Eski Kaşar", 500, 5)

	bus := &mockEventBus{}
	bus.On("PublishOrderCreated", mock.Anything, mock.MatchedBy(func(e service.OrderEvent) bool {
		return e.Email == "ayse@example.com" && len(e.Items) == 1 && e.FinalPrice.Equal(dec("1250"))
	})).Return(nil).Once()

	svc := service.NewOrderService(st.repo(), bus, zap.NewNop())
	o, err := svc.CreateOrder(userCtx(u), service.CreateOrderInput{
		Items:     []service.CreateOrderItem{{ProductID: p.ID, Quantity: 2}},
		AddressID: &addr.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusCreated, o.Status)
	assert.Equal(t, models.PaymentMethodOnline, o.PaymentMethod)
	assert.False(t, o.IsGuestOrder)
	assert.Equal(t, "İzmir", o.City)
	assert.True(t, o.TotalPrice.Equal(dec("1000")))
	assert.True(t, o.ShippingCost.Equal(dec("250")))
	assert.True(t, o.FinalPrice.Equal(dec("1250")))
	assert.Len(t, o.Items, 1)
	assert.Equal(t, 3, st.products[p.ID].Stock)
	bus.AssertExpectations(t)
}

func TestCreateOrder_GuestWithCashOnDelivery(t *testing.T) {
	st := newStore()
	p := st.addProduct("Taze Kaşar", 800, 10)
	bus := &mockEventBus{}
	bus.On("PublishOrderCreated", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	svc := service.NewOrderService(st.repo(), bus, zap.NewNop())
	o, err := svc.CreateOrder(context.Background(), service.CreateOrderInput{
		Items:         []service.CreateOrderItem{{ProductID: p.ID, Quantity: 2}},
		PaymentMethod: models.PaymentMethodCashOnDelivery,
		Guest: &service.GuestInfo{
			FullName: "Mehmet Ali Demir", Email: "mehmet@example.com", Phone: "5550000000",
			Address: "Cumhuriyet Mah. 5", City: "Kars", District: "Merkez",
		},
	})
	require.NoError(t, err, "publishing failures must not fail the order")

	assert.True(t, o.IsGuestOrder)
	assert.Nil(t, o.UserID)
	assert.Equal(t, "Mehmet", o.FirstName)
	assert.Equal(t, "Ali Demir", o.LastName)
	assert.Equal(t, models.DefaultCountry, o.Country)
	// 1600 subtotal ships free, COD adds 50.
	assert.True(t, o.ShippingCost.IsZero())
	assert.True(t, o.CODFee.Equal(dec("50")))
	assert.True(t, o.FinalPrice.Equal(dec("1650")))
}

func TestCreateOrder_GuestMissingFields(t *testing.T) {
	st := newStore()
	p := st.addProduct("Kaşar", 100, 10)
	svc := service.NewOrderService(st.repo(), nil, zap.NewNop())

	_, err := svc.CreateOrder(context.Background(), service.CreateOrderInput{
		Items: []service.CreateOrderItem{{ProductID: p.ID, Quantity: 1}},
		Guest: &service.GuestInfo{FullName: "Ali", Email: "ali@example.com"},
	})
	var ve *service.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"phone", "address", "city", "district"}, ve.Fields)
	assert.Equal(t, 10, st.products[p.ID].Stock)
}

func TestCreateOrder_Rejections(t *testing.T) {
	st := newStore()
	u := st.addUser("ayse@example.com", false)
	other := st.addUser("veli@example.com", false)
	addr := st.addAddress(u.ID)
	foreign := st.addAddress(other.ID)
	p := st.addProduct("Kaşar", 100, 1)
	svc := service.NewOrderService(st.repo(), nil, zap.NewNop())
	ctx := userCtx(u)

	cases := []struct {
		name string
		in   service.CreateOrderInput
		want error
	}{
		{"no items", service.CreateOrderInput{AddressID: &addr.ID}, service.ErrEmptyItems},
		{"negative quantity", service.CreateOrderInput{Items: []service.CreateOrderItem{{ProductID: p.ID, Quantity: -1}}, AddressID: &addr.ID}, service.ErrQuantityInvalid},
		{"missing address", service.CreateOrderInput{Items: []service.CreateOrderItem{{ProductID: p.ID, Quantity: 1}}}, service.ErrInvalidAddress},
		{"foreign address", service.CreateOrderInput{Items: []service.CreateOrderItem{{ProductID: p.ID, Quantity: 1}}, AddressID: &foreign.ID}, service.ErrInvalidAddress},
		{"unknown product", service.CreateOrderInput{Items: []service.CreateOrderItem{{ProductID: 9999, Quantity: 1}}, AddressID: &addr.ID}, service.ErrUnknownProduct},
		{"insufficient stock", service.CreateOrderInput{Items: []service.CreateOrderItem{{ProductID: p.ID, Quantity: 2}}, AddressID: &addr.ID}, service.ErrInsufficientStock},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateOrder(ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Equal(t, 1, st.products[p.ID].Stock)
}

func TestCreateOrder_Coupon(t *testing.T) {
	st := newStore()
	u := st.addUser("ayse@example.com", false)
	addr := st.addAddress(u.ID)
	p := st.addProduct("Kaşar", 1000, 10)
	c := st.addCoupon("YAZ10", 10, 500, 1)
	big := st.addCoupon("BUYUK", 20, 5000, 5)
	svc := service.NewOrderService(st.repo(), nil, zap.NewNop())
	ctx := userCtx(u)

	o, err := svc.CreateOrder(ctx, service.CreateOrderInput{
		Items:      []service.CreateOrderItem{{ProductID: p.ID, Quantity: 1}},
		AddressID:  &addr.ID,
		CouponCode: "YAZ10",
	})
	require.NoError(t, err)
	require.NotNil(t, o.CouponID)
	assert.Equal(t, c.ID, *o.CouponID)
	assert.True(t, o.Discount.Equal(dec("100")))
	assert.True(t, o.FinalPrice.Equal(dec("1150")))
	assert.Equal(t, 1, st.coupons[c.ID].UsageCount)

	// exhausted and below-minimum coupons are ignored
	for _, code := range []string{"YAZ10", "BUYUK", "YOKBOYLE"} {
		o, err = svc.CreateOrder(ctx, service.CreateOrderInput{
			Items:      []service.CreateOrderItem{{ProductID: p.ID, Quantity: 1}},
			AddressID:  &addr.ID,
			CouponCode: code,
		})
		require.NoError(t, err, code)
		assert.Nil(t, o.CouponID, code)
		assert.True(t, o.Discount.IsZero(), code)
	}
	assert.Equal(t, 0, st.coupons[big.ID].UsageCount)
}

func TestAddItemAndApplyCoupon(t *testing.T) {
	st := newStore()
	u := st.addUser("ayse@example.com", false)
	addr := st.addAddress(u.ID)
	p := st.addProduct("Kaşar", 400, 10)
	st.addCoupon("MIN1000", 10, 1000, 3)
	svc := service.NewOrderService(st.repo(), nil, zap.NewNop())
	ctx := userCtx(u)

	o, err := svc.CreateOrder(ctx, service.CreateOrderInput{
		Items:     []service.CreateOrderItem{{ProductID: p.ID, Quantity: 1}},
		AddressID: &addr.ID,
	})
	require.NoError(t, err)

	_, err = svc.ApplyCoupon(ctx, o.ID, "MIN1000")
	assert.ErrorIs(t, err, service.ErrCouponBelowMinimum)
	_, err = svc.ApplyCoupon(ctx, o.ID, "  ")
	assert.ErrorIs(t, err, service.ErrCouponCodeRequired)
	_, err = svc.ApplyCoupon(ctx, o.ID, "NOPE")
	assert.ErrorIs(t, err, service.ErrCouponNotFound)

	item, o, err := svc.AddItem(ctx, o.ID, service.CreateOrderItem{ProductID: p.ID, Quantity: 2})
	require.NoError(t, err)
	assert.True(t, item.Price.Equal(dec("400")))
	assert.True(t, o.TotalPrice.Equal(dec("1200")))
	assert.Equal(t, 7, st.products[p.ID].Stock)

	o, err = svc.ApplyCoupon(ctx, o.ID, "MIN1000")
	require.NoError(t, err)
	assert.True(t, o.Discount.Equal(dec("120")))
	assert.True(t, o.FinalPrice.Equal(dec("1330")))

	_, err = svc.ApplyCoupon(ctx, o.ID, "MIN1000")
	assert.ErrorIs(t, err, service.ErrOrderHasCoupon)
}

func TestAddItemAndApplyCoupon_PaidMeanwhile(t *testing.T) {
	st := newStore()
	u := st.addUser("ayse@example.com", false)
	addr := st.addAddress(u.ID)
	p := st.addProduct("Kaşar", 400, 10)
	st.addCoupon("YAZ10", 10, 0, 3)
	svc := service.NewOrderService(st.repo(), nil, zap.NewNop())
	ctx := userCtx(u)

	o, err := svc.CreateOrder(ctx, service.CreateOrderInput{
		Items:     []service.CreateOrderItem{{ProductID: p.ID, Quantity: 1}},
		AddressID: &addr.ID,
	})
	require.NoError(t, err)

	st.beforeReserve = func() {
		st.mu.Lock()
		defer st.mu.Unlock()
		st.orders[o.ID].Status = models.OrderStatusPaid
	}

	_, _, err = svc.AddItem(ctx, o.ID, service.CreateOrderItem{ProductID: p.ID, Quantity: 1})
	assert.ErrorIs(t, err, service.ErrOrderNotEditable)
	assert.Equal(t, models.OrderStatusPaid, st.orders[o.ID].Status)
	assert.True(t, st.orders[o.ID].TotalPrice.Equal(dec("400")))

	st.orders[o.ID].Status = models.OrderStatusCreated
	_, err = svc.ApplyCoupon(ctx, o.ID, "YAZ10")
	assert.ErrorIs(t, err, service.ErrOrderNotEditable)
	assert.Equal(t, models.OrderStatusPaid, st.orders[o.ID].Status)
	assert.Nil(t, st.orders[o.ID].CouponID)
}

func TestCreateOrder_UnknownPaymentMethodFallsBackToOnline(t *testing.T) {
	st := newStore()
	u := st.addUser("ayse@example.com", false)
	addr := st.addAddress(u.ID)
	p := st.addProduct("Kaşar", 400, 10)
	svc := service.NewOrderService(st.repo(), nil, zap.NewNop())

	o, err := svc.CreateOrder(userCtx(u), service.CreateOrderInput{
		Items:         []service.CreateOrderItem{{ProductID: p.ID, Quantity: 1}},
		AddressID:     &addr.ID,
		PaymentMethod: "paypal",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentMethodOnline, o.PaymentMethod)
	assert.True(t, o.CODFee.IsZero())
}

func TestMarkPaid(t *testing.T) {
	st := newStore()
	u := st.addUser("ayse@example.com", false)
	staff := st.addUser("admin@example.com", true)
	addr := st.addAddress(u.ID)
	p := st.addProduct("Kaşar", 400, 10)

	bus := &mockEventBus{}
	bus.On("PublishOrderCreated", mock.Anything, mock.Anything).Return(nil)
	bus.On("PublishOrderPaid", mock.Anything, mock.MatchedBy(func(e service.OrderEvent) bool {
		return e.Status == string(models.OrderStatusPaid)
	})).Return(nil).Once()
	svc := service.NewOrderService(st.repo(), bus, zap.NewNop())

	o, err := svc.CreateOrder(userCtx(u), service.CreateOrderInput{
		Items:     []service.CreateOrderItem{{ProductID: p.ID, Quantity: 1}},
		AddressID: &addr.ID,
	})
	require.NoError(t, err)

	_, err = svc.MarkPaid(userCtx(u), o.ID)
	assert.ErrorIs(t, err, service.ErrForbidden)

	paid, err := svc.MarkPaid(userCtx(staff), o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, paid.Status)
	assert.NotNil(t, paid.PaidAt)

	_, err = svc.MarkPaid(userCtx(staff), o.ID)
	assert.ErrorIs(t, err, service.ErrOrderAlreadyPaid)
	bus.AssertExpectations(t)
}

func TestCancelOrder(t *testing.T) {
	st := newStore()
	u := st.addUser("ayse@example.com", false)
	stranger := st.addUser("veli@example.com", false)
	addr := st.addAddress(u.ID)
	p := st.addProduct("Kaşar", 400, 10)
	svc := service.NewOrderService(st.repo(), nil, zap.NewNop())
	payments := service.NewPaymentService(st.repo(), nil, zap.NewNop())
	ctx := userCtx(u)

	o, err := svc.CreateOrder(ctx, service.CreateOrderInput{
		Items:     []service.CreateOrderItem{{ProductID: p.ID, Quantity: 3}},
		AddressID: &addr.ID,
	})
	require.NoError(t, err)
	pay, err := payments.CreatePayment(ctx, service.CreatePaymentInput{OrderID: o.ID, PaymentMethod: models.PaymentCreditCard})
	require.NoError(t, err)
	assert.Equal(t, 7, st.products[p.ID].Stock)

	_, err = svc.CancelOrder(userCtx(stranger), o.ID)
	assert.ErrorIs(t, err, service.ErrOrderNotFound)

	cancelled, err := svc.CancelOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, 10, st.products[p.ID].Stock)
	assert.Equal(t, models.PaymentStatusRefunded, st.payments[pay.ID].Status)

	_, err = svc.CancelOrder(ctx, o.ID)
	assert.ErrorIs(t, err, service.ErrAlreadyCancelled)

	st.orders[o.ID].Status = models.OrderStatusShipped
	_, err = svc.CancelOrder(ctx, o.ID)
	assert.ErrorIs(t, err, service.ErrOrderNotCancellable)
}

func TestListOrders_ScopedToOwner(t *testing.T) {
	st := newStore()
	u := st.addUser("ayse@example.com", false)
	other := st.addUser("veli@example.com", false)
	staff := st.addUser("admin@example.com", true)
	p := st.addProduct("Kaşar", 100, 100)
	svc := service.NewOrderService(st.repo(), nil, zap.NewNop())

	for _, owner := range []*models.User{u, u, other} {
		addr := st.addAddress(owner.ID)
		_, err := svc.CreateOrder(userCtx(owner), service.CreateOrderInput{
			Items:     []service.CreateOrderItem{{ProductID: p.ID, Quantity: 1}},
			AddressID: &addr.ID,
		})
		require.NoError(t, err)
	}

	_, total, err := svc.ListOrders(userCtx(u), service.OrderFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	_, total, err = svc.ListOrders(userCtx(staff), service.OrderFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	_, _, err = svc.ListOrders(context.Background(), service.OrderFilter{})
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}
