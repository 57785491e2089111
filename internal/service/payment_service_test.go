package service_test

import (
	"testing"

	"github.com/emrahsandernet/kasarcim/internal/models"
	"github.com/emrahsandernet/kasarcim/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func placeOrder(t *testing.T, st *store, u *models.User, price int64) *models.Order {
	t.Helper()
	addr := st.addAddress(u.ID)
	p := st.addProduct("Kaşar", price, 50)
	o, err := service.NewOrderService(st.repo(), nil, zap.NewNop()).CreateOrder(userCtx(u), service.CreateOrderInput{
		Items:     []service.CreateOrderItem{{ProductID: p.ID, Quantity: 1}},
		AddressID: &addr.ID,
	})
	require.NoError(t, err)
	return o
}

func TestCreatePayment_SettlingMethods(t *testing.T) {
	for _, m := range []models.PaymentMethod{models.PaymentCreditCard, models.PaymentPaypal, models.PaymentCashOnDelivery} {
		t.Run(string(m), func(t *testing.T) {
			st := newStore()
			u := st.addUser("ayse@example.com", false)
			o := placeOrder(t, st, u, 2000)

			bus := &mockEventBus{}
			bus.On("PublishOrderPaid", mock.Anything, mock.MatchedBy(func(e service.OrderEvent) bool {
				return e.OrderID == o.ID
			})).Return(nil).Once()
			svc := service.NewPaymentService(st.repo(), bus, zap.NewNop())

			p, err := svc.CreatePayment(userCtx(u), service.CreatePaymentInput{OrderID: o.ID, PaymentMethod: m})
			require.NoError(t, err)
			assert.Equal(t, models.PaymentStatusCompleted, p.Status)
			assert.Equal(t, models.DefaultTransactionID(p.ID), p.TransactionID)
			assert.True(t, p.Amount.Equal(o.FinalPrice))
			assert.Equal(t, models.OrderStatusPaid, st.orders[o.ID].Status)
			bus.AssertExpectations(t)
		})
	}
}

func TestCreatePayment_BankTransferStaysPending(t *testing.T) {
	st := newStore()
	u := st.addUser("ayse@example.com", false)
	staff := st.addUser("admin@example.com", true)
	o := placeOrder(t, st, u, 300)

	bus := &mockEventBus{}
	svc := service.NewPaymentService(st.repo(), bus, zap.NewNop())

	p, err := svc.CreatePayment(userCtx(u), service.CreatePaymentInput{OrderID: o.ID, PaymentMethod: models.PaymentBankTransfer})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, p.Status)
	assert.Equal(t, models.OrderStatusCreated, st.orders[o.ID].Status)
	bus.AssertNotCalled(t, "PublishOrderPaid", mock.Anything, mock.Anything)

	_, err = svc.CreatePayment(userCtx(u), service.CreatePaymentInput{OrderID: o.ID, PaymentMethod: models.PaymentCreditCard})
	assert.ErrorIs(t, err, service.ErrPaymentExists)

	_, err = svc.ProcessPayment(userCtx(u), p.ID, service.ProcessPaymentInput{})
	assert.ErrorIs(t, err, service.ErrForbidden)

	bus.On("PublishOrderPaid", mock.Anything, mock.Anything).Return(nil).Once()
	p, err = svc.ProcessPayment(userCtx(staff), p.ID, service.ProcessPaymentInput{TransactionID: "EFT-991"})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, p.Status)
	assert.Equal(t, "EFT-991", p.TransactionID)
	assert.Equal(t, models.OrderStatusPaid, st.orders[o.ID].Status)

	_, err = svc.ProcessPayment(userCtx(staff), p.ID, service.ProcessPaymentInput{})
	assert.ErrorIs(t, err, service.ErrPaymentAlreadyProcessed)
	bus.AssertExpectations(t)
}

func TestCreatePayment_Rejections(t *testing.T) {
	st := newStore()
	u := st.addUser("ayse@example.com", false)
	o := placeOrder(t, st, u, 300)
	svc := service.NewPaymentService(st.repo(), nil, zap.NewNop())

	_, err := svc.CreatePayment(userCtx(u), service.CreatePaymentInput{OrderID: o.ID, PaymentMethod: "bitcoin"})
	assert.ErrorIs(t, err, service.ErrInvalidPaymentMethod)

	st.orders[o.ID].Status = models.OrderStatusCancelled
	_, err = svc.CreatePayment(userCtx(u), service.CreatePaymentInput{OrderID: o.ID, PaymentMethod: models.PaymentCreditCard})
	assert.ErrorIs(t, err, service.ErrOrderNotPayable)
}

func TestPaymentVisibility(t *testing.T) {
	st := newStore()
	u := st.addUser("ayse@example.com", false)
	other := st.addUser("veli@example.com", false)
	o := placeOrder(t, st, u, 300)
	svc := service.NewPaymentService(st.repo(), nil, zap.NewNop())

	p, err := svc.CreatePayment(userCtx(u), service.CreatePaymentInput{OrderID: o.ID, PaymentMethod: models.PaymentCreditCard})
	require.NoError(t, err)

	got, err := svc.GetPayment(userCtx(u), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = svc.GetPayment(userCtx(other), p.ID)
	assert.ErrorIs(t, err, service.ErrPaymentNotFound)
}
