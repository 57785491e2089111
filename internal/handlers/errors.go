package handlers

import (
	"errors"
	"net/http"

	"github.com/emrahsandernet/kasarcim/internal/dto"
	"github.com/emrahsandernet/kasarcim/internal/hashing"
	"github.com/emrahsandernet/kasarcim/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var notFound = []error{
	service.ErrCategoryNotFound,
	service.ErrProductNotFound,
	service.ErrDiscountNotFound,
	service.ErrReviewNotFound,
	service.ErrOrderNotFound,
	service.ErrCouponNotFound,
	service.ErrPaymentNotFound,
	service.ErrShipmentNotFound,
	service.ErrUserNotFound,
	service.ErrAddressNotFound,
	service.ErrBlogNotFound,
	service.ErrNoFeaturedPost,
	service.ErrAnnouncementNotFound,
	service.ErrMessageNotFound,
	service.ErrTagNotFound,
}

var conflict = []error{
	service.ErrEmailTaken,
	service.ErrUsernameTaken,
	service.ErrOrderAlreadyPaid,
	service.ErrAlreadyCancelled,
	service.ErrPaymentExists,
	service.ErrPaymentAlreadyProcessed,
	service.ErrShipmentExists,
	service.ErrAlreadyShipped,
	service.ErrAlreadyDelivered,
}

var unauthorized = []error{
	service.ErrUnauthorized,
	service.ErrInvalidCredentials,
}

var forbidden = []error{
	service.ErrForbidden,
	service.ErrInactiveUser,
	service.ErrNotPurchased,
	service.ErrOwnReview,
}

// badRequest are shop rules the request broke. They are reported with their message.
var badRequest = []error{
	service.ErrInvalidRating,
	service.ErrCouponCodeRequired,
	service.ErrCouponInvalid,
	service.ErrCouponInactive,
	service.ErrCouponNotYetValid,
	service.ErrCouponExpired,
	service.ErrCouponUsageExceeded,
	service.ErrCouponBelowMinimum,
	service.ErrCouponInvalidConfig,
	service.ErrOrderHasCoupon,
	service.ErrEmptyItems,
	service.ErrQuantityInvalid,
	service.ErrUnknownProduct,
	service.ErrInsufficientStock,
	service.ErrInvalidAddress,
	service.ErrGuestInfoMissing,
	service.ErrOrderNotEditable,
	service.ErrOrderCancelled,
	service.ErrOrderNotCancellable,
	service.ErrOrderNotPayable,
	service.ErrInvalidPaymentMethod,
	service.ErrInvalidPaymentStatus,
	service.ErrOrderNotShippable,
	service.ErrInvalidShipmentStatus,
	service.ErrInvalidShippingCompany,
	service.ErrPasswordTooShort,
	service.ErrResetTokenInvalid,
	service.ErrResetTokenExpired,
	service.ErrInvalidAddressType,
	hashing.ErrPasswordTooLong,
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// writeError maps a service error to its HTTP status and the BaseError envelope.
func writeError(c *gin.Context, log *zap.Logger, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, dto.NewFieldsValidationError(verr.Msg, verr.Fields))
	case isAny(err, notFound):
		c.JSON(http.StatusNotFound, dto.NewNotFoundError(err.Error()))
	case isAny(err, unauthorized):
		c.JSON(http.StatusUnauthorized, dto.NewUnauthorizedError(err.Error()))
	case isAny(err, forbidden):
		c.JSON(http.StatusForbidden, dto.NewForbiddenError(err.Error()))
	case isAny(err, conflict):
		c.JSON(http.StatusConflict, dto.NewConflictError(err.Error()))
	case errors.Is(err, service.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, dto.NewRateLimitedError(err.Error()))
	case isAny(err, badRequest):
		c.JSON(http.StatusBadRequest, dto.NewBadRequestError(err.Error()))
	default:
		log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
	}
}

// bindJSON writes the validation error itself and reports whether to continue.
func bindJSON(c *gin.Context, log *zap.Logger, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		log.Debug("invalid request body", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewBindingError(err))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, log *zap.Logger, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		log.Debug("invalid query", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewBindingError(err))
		return false
	}
	return true
}

type idURI struct {
	ID uint `uri:"id" binding:"required"`
}

func bindID(c *gin.Context) (uint, bool) {
	var u idURI
	if err := c.ShouldBindUri(&u); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid id", []dto.FieldError{{Field: "id", Message: "must be a positive integer"}}))
		return 0, false
	}
	return u.ID, true
}

type pageQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}
