package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/emrahsandernet/kasarcim/internal/models"
	"github.com/emrahsandernet/kasarcim/internal/service"
	"github.com/emrahsandernet/kasarcim/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubAnnouncements struct {
	active []models.Announcement
}

func (s *stubAnnouncements) Active(context.Context) ([]models.Announcement, error) {
	return s.active, nil
}

func (s *stubAnnouncements) List(context.Context) ([]models.Announcement, error) {
	return s.active, nil
}

func (s *stubAnnouncements) Get(context.Context, uint) (*models.Announcement, error) {
	return nil, service.ErrAnnouncementNotFound
}

func (s *stubAnnouncements) Create(context.Context, service.AnnouncementInput) (*models.Announcement, error) {
	return nil, service.ErrForbidden
}

func (s *stubAnnouncements) Update(context.Context, uint, service.AnnouncementInput) (*models.Announcement, error) {
	return nil, service.ErrForbidden
}

func (s *stubAnnouncements) Delete(context.Context, uint) error { return nil }

func newTestRouter(t *testing.T) (*gin.Engine, *token.HSProvider) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tokens := token.NewHSProvider("test-secret", "kasarcim", "kasarcim-web")
	r := Router(Services{
		Announcements: &stubAnnouncements{active: []models.Announcement{{ID: 1, Message: "Kargo bedava", IsActive: true}}},
		Tokens:        tokens,
	}, []string{"*"}, zap.NewNop())
	return r, tokens
}

func serve(r http.Handler, method, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t)
	w := serve(r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestPublicRouteAllowsAnonymous(t *testing.T) {
	r, _ := newTestRouter(t)
	w := serve(r, http.MethodGet, "/api/announcements", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Kargo bedava")
}

func TestAccessLevels(t *testing.T) {
	r, tokens := newTestRouter(t)
	ctx := context.Background()
	customer, _, err := tokens.SignAccess(ctx, uuid.New(), string(service.RoleCustomer), time.Hour)
	require.NoError(t, err)
	staff, _, err := tokens.SignAccess(ctx, uuid.New(), string(service.RoleStaff), time.Hour)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/api/announcements/all", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/api/announcements", "garbage").Code)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/api/announcements/all", customer).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/announcements/all", staff).Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/api/announcements/9", staff).Code)
}

func TestCORSPreflight(t *testing.T) {
	r, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/orders", nil)
	req.Header.Set("Origin", "https://kasarcim.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
