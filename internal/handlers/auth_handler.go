package handlers

import (
	"context"
	"net/http"

	"github.com/emrahsandernet/kasarcim/internal/dto"
	"github.com/emrahsandernet/kasarcim/internal/middleware"
	"github.com/emrahsandernet/kasarcim/internal/models"
	"github.com/emrahsandernet/kasarcim/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserService interface {
	Register(ctx context.Context, in service.RegisterInput) (*service.AuthResult, error)
	Login(ctx context.Context, email, password string) (*service.AuthResult, error)
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context) (*models.User, error)
	UpdateMe(ctx context.Context, in service.ProfilePatch) (*models.User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
}

type AddressService interface {
	List(ctx context.Context, typ *models.AddressType) ([]models.Address, error)
	Get(ctx context.Context, id uint) (*models.Address, error)
	Create(ctx context.Context, in service.AddressInput) (*models.Address, error)
	Update(ctx context.Context, id uint, in service.AddressInput) (*models.Address, error)
	SetDefault(ctx context.Context, id uint) (*models.Address, error)
	Delete(ctx context.Context, id uint) error
}

type AuthHandler struct {
	users     UserService
	addresses AddressService
	log       *zap.Logger
}

func NewAuthHandler(users UserService, addresses AddressService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, addresses: addresses, log: log}
}

// Register godoc
// @Summary Register a customer account
// @Description Creates the account, sends a welcome email and returns an access token.
// @Tags auth
// @Accept json
// @Produce json
// @Param register body dto.RegisterRequest true "Registration data"
// @Success 201 {object} dto.AuthResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 409 {object} dto.ConflictErrorResponse "Email or username taken"
// @Failure 500 {object} dto.InternalErrorResponse
// @Router /api/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	res, err := h.users.Register(c.Request.Context(), req.Input())
	if err != nil {
		if isAny(err, conflict) {
			h.log.Warn("registration conflict", zap.String("email", req.Email), zap.Error(err))
		}
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewAuth(res))
}

// Login godoc
// @Summary Log in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 401 {object} dto.UnauthorizedErrorResponse
// @Failure 403 {object} dto.ForbiddenErrorResponse "Inactive account"
// @Router /api/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	res, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAuth(res))
}

// Logout godoc
// @Summary Revoke the current access token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SuccessResponse
// @Failure 401 {object} dto.UnauthorizedErrorResponse
// @Router /api/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	token, _ := middleware.ExtractBearerToken(c.GetHeader("Authorization"))
	if err := h.users.Logout(c.Request.Context(), token); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse("logged out"))
}

// Me godoc
// @Summary Current user with profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} dto.UnauthorizedErrorResponse
// @Router /api/user [get]
func (h *AuthHandler) Me(c *gin.Context) {
	u, err := h.users.Me(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUser(u))
}

// UpdateMe godoc
// @Summary Update the current user and profile
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body dto.ProfilePatchRequest true "Fields to change"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 409 {object} dto.ConflictErrorResponse "Email taken"
// @Router /api/user [patch]
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	var req dto.ProfilePatchRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	u, err := h.users.UpdateMe(c.Request.Context(), req.Patch())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUser(u))
}

// RequestPasswordReset godoc
// @Summary Email a password reset link
// @Description Always answers 200 so account existence is not revealed.
// @Tags auth
// @Accept json
// @Produce json
// @Param email body dto.PasswordResetRequest true "Account email"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 429 {object} dto.RateLimitedErrorResponse
// @Router /api/password-reset [post]
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req dto.PasswordResetRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	if err := h.users.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse("if the address is registered, a reset link has been sent"))
}

// ConfirmPasswordReset godoc
// @Summary Set a new password with a reset token
// @Tags auth
// @Accept json
// @Produce json
// @Param reset body dto.PasswordResetConfirmRequest true "Token and new password"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.BadRequestErrorResponse "Invalid, used or expired token"
// @Router /api/password-reset-confirm [post]
func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	var req dto.PasswordResetConfirmRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	if err := h.users.ConfirmPasswordReset(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse("password has been reset"))
}

type addressListQuery struct {
	Type string `form:"type" binding:"omitempty,oneof=billing shipping"`
}

// ListAddresses godoc
// @Summary Saved addresses of the current user
// @Tags addresses
// @Produce json
// @Security BearerAuth
// @Param type query string false "billing or shipping"
// @Success 200 {array} dto.AddressResponse
// @Router /api/addresses [get]
func (h *AuthHandler) ListAddresses(c *gin.Context) {
	var q addressListQuery
	if !bindQuery(c, h.log, &q) {
		return
	}
	var typ *models.AddressType
	if q.Type != "" {
		t := models.AddressType(q.Type)
		typ = &t
	}
	as, err := h.addresses.List(c.Request.Context(), typ)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAddresses(as))
}

// GetAddress godoc
// @Summary Get a saved address
// @Tags addresses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Address ID"
// @Success 200 {object} dto.AddressResponse
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/addresses/{id} [get]
func (h *AuthHandler) GetAddress(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	a, err := h.addresses.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAddress(a))
}

// CreateAddress godoc
// @Summary Save an address
// @Description The first address of a type becomes its default.
// @Tags addresses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param address body dto.AddressRequest true "Address"
// @Success 201 {object} dto.AddressResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Router /api/addresses [post]
func (h *AuthHandler) CreateAddress(c *gin.Context) {
	var req dto.AddressRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	a, err := h.addresses.Create(c.Request.Context(), req.Input())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewAddress(a))
}

// UpdateAddress godoc
// @Summary Replace a saved address
// @Tags addresses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Address ID"
// @Param address body dto.AddressRequest true "Address"
// @Success 200 {object} dto.AddressResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/addresses/{id} [put]
func (h *AuthHandler) UpdateAddress(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	var req dto.AddressRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	a, err := h.addresses.Update(c.Request.Context(), id, req.Input())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAddress(a))
}

// SetDefaultAddress godoc
// @Summary Make an address the default of its type
// @Tags addresses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Address ID"
// @Success 200 {object} dto.AddressResponse
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/addresses/{id}/set-default [post]
func (h *AuthHandler) SetDefaultAddress(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	a, err := h.addresses.SetDefault(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAddress(a))
}

// DeleteAddress godoc
// @Summary Delete a saved address
// @Tags addresses
// @Security BearerAuth
// @Param id path int true "Address ID"
// @Success 204
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/addresses/{id} [delete]
func (h *AuthHandler) DeleteAddress(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	if err := h.addresses.Delete(c.Request.Context(), id); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
