package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/emrahsandernet/kasarcim/internal/dto"
	"github.com/emrahsandernet/kasarcim/internal/hashing"
	"github.com/emrahsandernet/kasarcim/internal/models"
	"github.com/emrahsandernet/kasarcim/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockOrders struct{ mock.Mock }

func (m *mockOrders) CreateOrder(ctx context.Context, in service.CreateOrderInput) (*models.Order, error) {
	args := m.Called(ctx, in)
	o, _ := args.Get(0).(*models.Order)
	return o, args.Error(1)
}

func (m *mockOrders) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*models.Order)
	return o, args.Error(1)
}

func (m *mockOrders) ListOrders(ctx context.Context, f service.OrderFilter) ([]models.Order, int64, error) {
	args := m.Called(ctx, f)
	os, _ := args.Get(0).([]models.Order)
	return os, args.Get(1).(int64), args.Error(2)
}

func (m *mockOrders) AddItem(ctx context.Context, orderID uint, in service.CreateOrderItem) (*models.OrderItem, *models.Order, error) {
	args := m.Called(ctx, orderID, in)
	it, _ := args.Get(0).(*models.OrderItem)
	o, _ := args.Get(1).(*models.Order)
	return it, o, args.Error(2)
}

func (m *mockOrders) ApplyCoupon(ctx context.Context, orderID uint, code string) (*models.Order, error) {
	args := m.Called(ctx, orderID, code)
	o, _ := args.Get(0).(*models.Order)
	return o, args.Error(1)
}

func (m *mockOrders) MarkPaid(ctx context.Context, orderID uint) (*models.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(*models.Order)
	return o, args.Error(1)
}

func (m *mockOrders) CancelOrder(ctx context.Context, orderID uint) (*models.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(*models.Order)
	return o, args.Error(1)
}

type mockUsers struct{ mock.Mock }

func (m *mockUsers) Register(ctx context.Context, in service.RegisterInput) (*service.AuthResult, error) {
	args := m.Called(ctx, in)
	r, _ := args.Get(0).(*service.AuthResult)
	return r, args.Error(1)
}

func (m *mockUsers) Login(ctx context.Context, email, password string) (*service.AuthResult, error) {
	args := m.Called(ctx, email, password)
	r, _ := args.Get(0).(*service.AuthResult)
	return r, args.Error(1)
}

func (m *mockUsers) Logout(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockUsers) Me(ctx context.Context) (*models.User, error) {
	args := m.Called(ctx)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUsers) UpdateMe(ctx context.Context, in service.ProfilePatch) (*models.User, error) {
	args := m.Called(ctx, in)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUsers) RequestPasswordReset(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockUsers) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	return m.Called(ctx, token, newPassword).Error(0)
}

func init() { gin.SetMode(gin.TestMode) }

func doJSON(r http.Handler, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.BaseError {
	t.Helper()
	var e dto.BaseError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e
}

func TestWriteErrorStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{service.ErrOrderNotFound, http.StatusNotFound, "not_found"},
		{service.ErrInvalidCredentials, http.StatusUnauthorized, "unauthorized"},
		{service.ErrNotPurchased, http.StatusForbidden, "forbidden"},
		{service.ErrEmailTaken, http.StatusConflict, "conflict"},
		{service.ErrRateLimited, http.StatusTooManyRequests, "rate_limited"},
		{service.ErrInsufficientStock, http.StatusBadRequest, "bad_request"},
		{service.ErrOrderHasCoupon, http.StatusBadRequest, "bad_request"},
		{fmt.Errorf("%w: minimum 200.00 TL", service.ErrCouponBelowMinimum), http.StatusBadRequest, "bad_request"},
		{hashing.ErrPasswordTooLong, http.StatusBadRequest, "bad_request"},
		{&service.ValidationError{Msg: "guest information is incomplete", Fields: []string{"email"}}, http.StatusBadRequest, "validation_error"},
		{errors.New("connection refused"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			r := gin.New()
			r.GET("/", func(c *gin.Context) { writeError(c, zap.NewNop(), tt.err) })
			w := doJSON(r, http.MethodGet, "/", nil)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decodeError(t, w).Code)
		})
	}
}

func TestWriteErrorHidesInternalMessage(t *testing.T) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) { writeError(c, zap.NewNop(), errors.New("pq: password authentication failed")) })
	w := doJSON(r, http.MethodGet, "/", nil)
	assert.NotContains(t, w.Body.String(), "pq:")
}

func sampleOrder() *models.Order {
	return &models.Order{
		ID:            1,
		IsGuestOrder:  true,
		FirstName:     "Ayşe",
		LastName:      "Yılmaz",
		Email:         "ayse@example.com",
		Status:        models.OrderStatusCreated,
		PaymentMethod: models.PaymentMethodOnline,
		TotalPrice:    decimal.NewFromInt(800),
		FinalPrice:    decimal.NewFromInt(1050),
		Items: []models.OrderItem{
			{ID: 7, ProductID: 3, Price: decimal.NewFromInt(400), Quantity: 2, Product: &models.Product{Name: "Eski Kaşar", Slug: "eski-kasar"}},
		},
	}
}

func orderEngine(orders OrderService) *gin.Engine {
	h := NewOrderHandler(orders, zap.NewNop())
	r := gin.New()
	r.POST("/orders", h.CreateOrder)
	r.GET("/orders", h.ListOrders)
	r.POST("/orders/:id/cancel", h.CancelOrder)
	return r
}

func TestCreateGuestOrder(t *testing.T) {
	orders := &mockOrders{}
	var got service.CreateOrderInput
	orders.On("CreateOrder", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { got = args.Get(1).(service.CreateOrderInput) }).
		Return(sampleOrder(), nil).Once()

	w := doJSON(orderEngine(orders), http.MethodPost, "/orders", map[string]any{
		"items":          []map[string]any{{"product_id": 3, "quantity": 2}},
		"coupon_code":    "YAZ25",
		"payment_method": "online",
		"guest_info": map[string]any{
			"full_name": "Ayşe Yılmaz", "email": "ayse@example.com", "phone": "05550000000",
			"address": "Atatürk Cad. 1", "city": "İzmir", "district": "Konak",
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	orders.AssertExpectations(t)

	assert.Equal(t, []service.CreateOrderItem{{ProductID: 3, Quantity: 2}}, got.Items)
	assert.Equal(t, "YAZ25", got.CouponCode)
	require.NotNil(t, got.Guest)
	assert.Equal(t, "Konak", got.Guest.District)
	assert.Nil(t, got.AddressID)

	var resp dto.OrderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "SP91186", resp.OrderCode)
	assert.Equal(t, uint(91186), resp.OrderNumber)
	assert.True(t, resp.CanBeCancelled)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Eski Kaşar", resp.Items[0].ProductName)
	assert.True(t, decimal.NewFromInt(800).Equal(resp.Items[0].Total))
}

func TestCreateOrderRejectsBadBody(t *testing.T) {
	orders := &mockOrders{}
	r := orderEngine(orders)

	w := doJSON(r, http.MethodPost, "/orders", map[string]any{"payment_method": "online"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	e := decodeError(t, w)
	assert.Equal(t, "validation_error", e.Code)
	require.NotEmpty(t, e.Fields)
	assert.Equal(t, "items", e.Fields[0].Field)
	assert.Equal(t, "required", e.Fields[0].Tag)

	orders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestCreateOrderPassesUnknownPaymentMethodThrough(t *testing.T) {
	orders := &mockOrders{}
	orders.On("CreateOrder", mock.Anything, mock.MatchedBy(func(in service.CreateOrderInput) bool {
		return in.PaymentMethod == "paypal"
	})).Return(sampleOrder(), nil).Once()

	w := doJSON(orderEngine(orders), http.MethodPost, "/orders", map[string]any{
		"items":          []map[string]any{{"product_id": 3, "quantity": 2}},
		"payment_method": "paypal",
		"guest_info": map[string]any{
			"full_name": "Ayşe Yılmaz", "email": "ayse@example.com", "phone": "05550000000",
			"address": "Atatürk Cad. 1", "city": "İzmir", "district": "Konak",
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	orders.AssertExpectations(t)
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	orders := &mockOrders{}
	orders.On("CreateOrder", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("%w: Eski Kaşar", service.ErrInsufficientStock)).Once()

	w := doJSON(orderEngine(orders), http.MethodPost, "/orders", map[string]any{
		"items": []map[string]any{{"product_id": 3, "quantity": 99}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Message, "insufficient stock")
}

func TestListOrdersFilters(t *testing.T) {
	orders := &mockOrders{}
	paid := models.OrderStatusPaid
	orders.On("ListOrders", mock.Anything, service.OrderFilter{Status: &paid, Limit: 5, Offset: 10}).
		Return([]models.Order{*sampleOrder()}, int64(11), nil).Once()
	r := orderEngine(orders)

	w := doJSON(r, http.MethodGet, "/orders?status=paid&limit=5&offset=10", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var page dto.Page[dto.OrderResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, int64(11), page.Count)
	assert.Len(t, page.Results, 1)
	orders.AssertExpectations(t)

	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodGet, "/orders?status=lost", nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodGet, "/orders?limit=1000", nil).Code)
}

func TestCancelOrderStatuses(t *testing.T) {
	orders := &mockOrders{}
	orders.On("CancelOrder", mock.Anything, uint(1)).Return(nil, service.ErrOrderNotCancellable).Once()
	orders.On("CancelOrder", mock.Anything, uint(2)).Return(nil, service.ErrAlreadyCancelled).Once()
	r := orderEngine(orders)

	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPost, "/orders/1/cancel", nil).Code)
	assert.Equal(t, http.StatusConflict, doJSON(r, http.MethodPost, "/orders/2/cancel", nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPost, "/orders/abc/cancel", nil).Code)
	orders.AssertExpectations(t)
}

func authEngine(users UserService) *gin.Engine {
	h := NewAuthHandler(users, nil, zap.NewNop())
	r := gin.New()
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.POST("/logout", h.Logout)
	r.POST("/password-reset", h.RequestPasswordReset)
	return r
}

func TestRegister(t *testing.T) {
	users := &mockUsers{}
	u := &models.User{ID: uuid.New(), Username: "ayse", Email: "ayse@example.com"}
	exp := time.Date(2025, 5, 11, 12, 0, 0, 0, time.UTC)
	users.On("Register", mock.Anything, service.RegisterInput{Username: "ayse", Email: "ayse@example.com", Password: "gizli-parola"}).
		Return(&service.AuthResult{User: u, Token: "tok", ExpiresAt: exp}, nil).Once()
	users.On("Register", mock.Anything, mock.Anything).Return(nil, service.ErrEmailTaken).Once()
	r := authEngine(users)

	w := doJSON(r, http.MethodPost, "/register", map[string]string{"username": "ayse", "email": "ayse@example.com", "password": "gizli-parola"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "tok", resp.Token)
	assert.Equal(t, u.ID, resp.User.ID)

	w = doJSON(r, http.MethodPost, "/register", map[string]string{"username": "ayse2", "email": "ayse@example.com", "password": "gizli-parola"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(r, http.MethodPost, "/register", map[string]string{"username": "x", "email": "not-an-email", "password": "p"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "email", decodeError(t, w).Fields[0].Field)
	users.AssertExpectations(t)
}

func TestLoginAndLogout(t *testing.T) {
	users := &mockUsers{}
	users.On("Login", mock.Anything, "ayse@example.com", "wrong").Return(nil, service.ErrInvalidCredentials).Once()
	users.On("Logout", mock.Anything, "abc.def.ghi").Return(nil).Once()
	r := authEngine(users)

	w := doJSON(r, http.MethodPost, "/login", map[string]string{"email": "ayse@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, "/logout", nil, "Authorization", "Bearer abc.def.ghi")
	assert.Equal(t, http.StatusOK, w.Code)
	users.AssertExpectations(t)
}

func TestPasswordResetRateLimited(t *testing.T) {
	users := &mockUsers{}
	users.On("RequestPasswordReset", mock.Anything, "ayse@example.com").Return(nil).Once()
	users.On("RequestPasswordReset", mock.Anything, "ayse@example.com").Return(service.ErrRateLimited).Once()
	r := authEngine(users)

	body := map[string]string{"email": "ayse@example.com"}
	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodPost, "/password-reset", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, doJSON(r, http.MethodPost, "/password-reset", body).Code)
}

func TestBindingErrorFieldPaths(t *testing.T) {
	w := doJSON(orderEngine(&mockOrders{}), http.MethodPost, "/orders", map[string]any{"items": []map[string]any{{"quantity": 1}}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "items[0].product_id", decodeError(t, w).Fields[0].Field)
}
