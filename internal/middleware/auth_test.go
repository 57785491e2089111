package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/emrahsandernet/kasarcim/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeTokens struct {
	claims map[string]*service.Claims
}

func (f *fakeTokens) SignAccess(context.Context, uuid.UUID, string, time.Duration) (string, time.Time, error) {
	return "", time.Time{}, errors.New("not used")
}

func (f *fakeTokens) ParseAndValidateAccess(_ context.Context, token string) (*service.Claims, error) {
	if c, ok := f.claims[token]; ok {
		return c, nil
	}
	return nil, errors.New("invalid token")
}

type fakeDenylist struct {
	service.CacheClient
	revoked map[string]bool
}

func (f *fakeDenylist) IsTokenBlacklisted(_ context.Context, jti string) (bool, error) {
	return f.revoked[jti], nil
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer abc.def.ghi", "abc.def.ghi", true},
		{`Bearer "abc.def.ghi"`, "abc.def.ghi", true},
		{"Bearer abc.def.ghi, extra", "abc.def.ghi", true},
		{"Bearer abc def", "abc", true},
		{"Basic dXNlcjpwYXNz", "", false},
		{"abc.def.ghi", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ExtractBearerToken(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func newAuthEngine(t *testing.T) (*gin.Engine, uuid.UUID) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	uid := uuid.New()
	tokens := &fakeTokens{claims: map[string]*service.Claims{
		"customer": {UserID: uid, Role: string(service.RoleCustomer), ID: "jti-1"},
		"staff":    {UserID: uid, Role: string(service.RoleStaff), ID: "jti-2"},
		"revoked":  {UserID: uid, Role: string(service.RoleCustomer), ID: "jti-3"},
	}}
	deny := &fakeDenylist{revoked: map[string]bool{"jti-3": true}}

	r := gin.New()
	whoami := func(c *gin.Context) {
		id, ok := service.UserIDFromContext(c.Request.Context())
		if !ok {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, id.String()+"/"+c.GetString(CtxUserRole))
	}
	r.GET("/private", AuthRequired(tokens, deny, zap.NewNop()), whoami)
	r.GET("/optional", OptionalAuth(tokens, deny, zap.NewNop()), whoami)
	r.GET("/staff", AuthRequired(tokens, deny, zap.NewNop()), StaffOnly(), whoami)
	return r, uid
}

func do(r http.Handler, path, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	r, uid := newAuthEngine(t)

	w := do(r, "/private", "Bearer customer")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uid.String()+"/customer", w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, do(r, "/private", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/private", "Bearer nope").Code)

	w = do(r, "/private", "Bearer revoked")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "revoked")
}

func TestOptionalAuth(t *testing.T) {
	r, uid := newAuthEngine(t)

	assert.Equal(t, "anonymous", do(r, "/optional", "").Body.String())
	assert.Equal(t, uid.String()+"/customer", do(r, "/optional", "Bearer customer").Body.String())
	assert.Equal(t, http.StatusUnauthorized, do(r, "/optional", "Bearer nope").Code)
}

func TestStaffOnly(t *testing.T) {
	r, _ := newAuthEngine(t)

	assert.Equal(t, http.StatusForbidden, do(r, "/staff", "Bearer customer").Code)
	assert.Equal(t, http.StatusOK, do(r, "/staff", "Bearer staff").Code)
}

func TestRequestIDEchoed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), AccessLog(zap.NewNop()))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(CtxRequestID)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "rid-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "rid-42", w.Header().Get(HeaderRequestID))
	assert.Equal(t, "rid-42", w.Body.String())

	w = do(r, "/", "")
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
}
