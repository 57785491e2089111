package service

import (
	"context"
	"strings"

	"github.com/emrahsandernet/kasarcim/internal/models"
	"github.com/emrahsandernet/kasarcim/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// purchasedStatuses are the order states that entitle a buyer to review a product.
var purchasedStatuses = []models.OrderStatus{
	models.OrderStatusPaid,
	models.OrderStatusShipped,
	models.OrderStatusDelivered,
}

type FeedbackEntry struct {
	Review     models.ProductReview
	UserRating *int
}

type FeedbackPage struct {
	Items []FeedbackEntry
	Total int64
}

type ReviewService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewReviewService(repo *repository.Repository, log *zap.Logger) *ReviewService {
	return &ReviewService{repo: repo, log: log}
}

func (s *ReviewService) product(ctx context.Context, slug string) (*models.Product, error) {
	p, err := s.repo.Products.GetBySlug(ctx, slug, !IsStaff(ctx))
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *ReviewService) ListReviews(ctx context.Context, slug string, limit, offset int) ([]models.ProductReview, int64, error) {
	p, err := s.product(ctx, slug)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.Reviews.ListByProduct(ctx, p.ID, limit, offset)
}

func (s *ReviewService) ListRatings(ctx context.Context, slug string) ([]models.ProductRating, error) {
	p, err := s.product(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.repo.Ratings.ListByProduct(ctx, p.ID)
}

func (s *ReviewService) requirePurchase(ctx context.Context, slug string) (*models.Product, uuid.UUID, error) {
	uid, _, err := requireAuth(ctx)
	if err != nil {
		return nil, uuid.Nil, err
	}
	p, err := s.product(ctx, slug)
	if err != nil {
		return nil, uuid.Nil, err
	}
	ok, err := s.repo.Orders.HasPurchased(ctx, uid, p.ID, purchasedStatuses)
	if err != nil {
		return nil, uuid.Nil, err
	}
	if !ok {
		s.log.Warn("review rejected: product not purchased", zap.String("user_id", uid.String()), zap.Uint("product_id", p.ID))
		return nil, uuid.Nil, ErrNotPurchased
	}
	return p, uid, nil
}

func (s *ReviewService) AddReview(ctx context.Context, slug, text string) (*models.ProductReview, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &ValidationError{Msg: "invalid review", Fields: []string{"review"}}
	}
	p, uid, err := s.requirePurchase(ctx, slug)
	if err != nil {
		return nil, err
	}
	rv := &models.ProductReview{ProductID: p.ID, UserID: uid, Review: text}
	if err := s.repo.Reviews.Create(ctx, rv); err != nil {
		return nil, err
	}
	return rv, nil
}

// AddRating records a 1..5 score; rating again replaces the previous score.
func (s *ReviewService) AddRating(ctx context.Context, slug string, rating int) (*models.ProductRating, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}
	p, uid, err := s.requirePurchase(ctx, slug)
	if err != nil {
		return nil, err
	}
	rt := &models.ProductRating{ProductID: p.ID, UserID: uid, Rating: rating}
	if err := s.repo.Ratings.Upsert(ctx, rt); err != nil {
		return nil, err
	}
	return rt, nil
}

// Feedback pages reviews newest first and attaches each reviewer's own rating.
func (s *ReviewService) Feedback(ctx context.Context, slug string, limit, offset int) (*FeedbackPage, error) {
	p, err := s.product(ctx, slug)
	if err != nil {
		return nil, err
	}
	reviews, total, err := s.repo.Reviews.ListByProduct(ctx, p.ID, limit, offset)
	if err != nil {
		return nil, err
	}
	ratings, err := s.repo.Ratings.MapByProduct(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	out := &FeedbackPage{Items: make([]FeedbackEntry, 0, len(reviews)), Total: total}
	for _, rv := range reviews {
		e := FeedbackEntry{Review: rv}
		if r, ok := ratings[rv.UserID]; ok {
			r := r
			e.UserRating = &r
		}
		out.Items = append(out.Items, e)
	}
	return out, nil
}

func (s *ReviewService) HasReviewed(ctx context.Context, slug string) (*models.ProductReview, error) {
	uid, _, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.product(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.repo.Reviews.GetByProductAndUser(ctx, p.ID, uid)
}

func (s *ReviewService) Like(ctx context.Context, reviewID uint) (int, error) {
	return s.react(ctx, reviewID, s.repo.Reviews.IncrementLike)
}

func (s *ReviewService) Dislike(ctx context.Context, reviewID uint) (int, error) {
	return s.react(ctx, reviewID, s.repo.Reviews.IncrementDislike)
}

func (s *ReviewService) react(ctx context.Context, reviewID uint, inc func(context.Context, uint) (int, error)) (int, error) {
	uid, _, err := requireAuth(ctx)
	if err != nil {
		return 0, err
	}
	rv, err := s.repo.Reviews.GetByID(ctx, reviewID)
	if err != nil {
		return 0, err
	}
	if rv == nil {
		return 0, ErrReviewNotFound
	}
	if rv.UserID == uid {
		return 0, ErrOwnReview
	}
	return inc(ctx, reviewID)
}
