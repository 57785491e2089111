package handlers

import (
	"context"
	"net/http"

	"github.com/emrahsandernet/kasarcim/internal/dto"
	"github.com/emrahsandernet/kasarcim/internal/models"
	"github.com/emrahsandernet/kasarcim/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ReviewService interface {
	ListReviews(ctx context.Context, slug string, limit, offset int) ([]models.ProductReview, int64, error)
	ListRatings(ctx context.Context, slug string) ([]models.ProductRating, error)
	AddReview(ctx context.Context, slug, text string) (*models.ProductReview, error)
	AddRating(ctx context.Context, slug string, rating int) (*models.ProductRating, error)
	Feedback(ctx context.Context, slug string, limit, offset int) (*service.FeedbackPage, error)
	HasReviewed(ctx context.Context, slug string) (*models.ProductReview, error)
	Like(ctx context.Context, reviewID uint) (int, error)
	Dislike(ctx context.Context, reviewID uint) (int, error)
}

type ReviewHandler struct {
	reviews ReviewService
	log     *zap.Logger
}

func NewReviewHandler(reviews ReviewService, log *zap.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, log: log}
}

// ListReviews godoc
// @Summary Reviews of a product, newest first
// @Tags reviews
// @Produce json
// @Param slug path string true "Product slug"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} dto.Page[dto.ReviewResponse]
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/products/{slug}/reviews [get]
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	var q pageQuery
	if !bindQuery(c, h.log, &q) {
		return
	}
	items, total, err := h.reviews.ListReviews(c.Request.Context(), c.Param("slug"), q.Limit, q.Offset)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPage(dto.NewReviews(items), total))
}

// AddReview godoc
// @Summary Review a purchased product
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Product slug"
// @Param review body dto.ReviewRequest true "Review text"
// @Success 201 {object} dto.ReviewResponse
// @Failure 401 {object} dto.UnauthorizedErrorResponse
// @Failure 403 {object} dto.ForbiddenErrorResponse "Product was not purchased"
// @Router /api/products/{slug}/reviews [post]
func (h *ReviewHandler) AddReview(c *gin.Context) {
	var req dto.ReviewRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	rv, err := h.reviews.AddReview(c.Request.Context(), c.Param("slug"), req.Review)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewReview(rv))
}

// ListRatings godoc
// @Summary Ratings of a product
// @Tags reviews
// @Produce json
// @Param slug path string true "Product slug"
// @Success 200 {array} dto.RatingResponse
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/products/{slug}/ratings [get]
func (h *ReviewHandler) ListRatings(c *gin.Context) {
	items, err := h.reviews.ListRatings(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewRatings(items))
}

// AddRating godoc
// @Summary Rate a purchased product from 1 to 5
// @Description A second rating by the same customer replaces the first.
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Product slug"
// @Param rating body dto.RatingRequest true "Rating"
// @Success 201 {object} dto.RatingResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 403 {object} dto.ForbiddenErrorResponse "Product was not purchased"
// @Router /api/products/{slug}/ratings [post]
func (h *ReviewHandler) AddRating(c *gin.Context) {
	var req dto.RatingRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	r, err := h.reviews.AddRating(c.Request.Context(), c.Param("slug"), req.Rating)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewRating(r))
}

// Feedback godoc
// @Summary Reviews joined with each reviewer's rating
// @Tags reviews
// @Produce json
// @Param slug path string true "Product slug"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} dto.Page[dto.FeedbackResponse]
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/products/{slug}/feedback [get]
func (h *ReviewHandler) Feedback(c *gin.Context) {
	var q pageQuery
	if !bindQuery(c, h.log, &q) {
		return
	}
	page, err := h.reviews.Feedback(c.Request.Context(), c.Param("slug"), q.Limit, q.Offset)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPage(dto.NewFeedback(page.Items), page.Total))
}

// HasReviewed godoc
// @Summary Whether the caller already reviewed the product
// @Tags reviews
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Product slug"
// @Success 200 {object} dto.HasReviewedResponse
// @Failure 401 {object} dto.UnauthorizedErrorResponse
// @Router /api/products/{slug}/has-reviewed [get]
func (h *ReviewHandler) HasReviewed(c *gin.Context) {
	rv, err := h.reviews.HasReviewed(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	resp := dto.HasReviewedResponse{HasReviewed: rv != nil}
	if rv != nil {
		r := dto.NewReview(rv)
		resp.Review = &r
	}
	c.JSON(http.StatusOK, resp)
}

// Like godoc
// @Summary Like someone else's review
// @Tags reviews
// @Produce json
// @Security BearerAuth
// @Param id path int true "Review ID"
// @Success 200 {object} dto.ReactionResponse
// @Failure 403 {object} dto.ForbiddenErrorResponse "Own review"
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/reviews/{id}/like [post]
func (h *ReviewHandler) Like(c *gin.Context) {
	h.react(c, h.reviews.Like)
}

// Dislike godoc
// @Summary Dislike someone else's review
// @Tags reviews
// @Produce json
// @Security BearerAuth
// @Param id path int true "Review ID"
// @Success 200 {object} dto.ReactionResponse
// @Failure 403 {object} dto.ForbiddenErrorResponse "Own review"
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/reviews/{id}/dislike [post]
func (h *ReviewHandler) Dislike(c *gin.Context) {
	h.react(c, h.reviews.Dislike)
}

func (h *ReviewHandler) react(c *gin.Context, fn func(context.Context, uint) (int, error)) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	n, err := fn(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ReactionResponse{ID: id, Count: n})
}
