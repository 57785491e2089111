package dto

import (
	"time"

	"github.com/emrahsandernet/kasarcim/internal/models"
	"github.com/emrahsandernet/kasarcim/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Slug        string `json:"slug" binding:"max=150"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url" binding:"max=250"`
}

func (r CategoryRequest) Input() service.CategoryInput {
	return service.CategoryInput{Name: r.Name, Slug: r.Slug, Description: r.Description, ImageURL: r.ImageURL}
}

type CategoryResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewCategory(c *models.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		ImageURL:    c.ImageURL,
		CreatedAt:   c.CreatedAt,
	}
}

func NewCategories(cs []models.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(cs))
	for i := range cs {
		out = append(out, NewCategory(&cs[i]))
	}
	return out
}

type ProductRequest struct {
	CategoryID  uint             `json:"category_id" binding:"required"`
	Name        string           `json:"name" binding:"required,max=200"`
	Slug        string           `json:"slug" binding:"max=250"`
	ImgURL      string           `json:"img_url" binding:"max=250"`
	Description string           `json:"description"`
	Price       decimal.Decimal  `json:"price" swaggertype:"string" example:"450.00"`
	Stock       int              `json:"stock" binding:"gte=0"`
	Weight      *decimal.Decimal `json:"weight" swaggertype:"string"`
	Available   *bool            `json:"available"`
}

func (r ProductRequest) Input() service.ProductInput {
	return service.ProductInput{
		CategoryID:  r.CategoryID,
		Name:        r.Name,
		Slug:        r.Slug,
		ImgURL:      r.ImgURL,
		Description: r.Description,
		Price:       r.Price,
		Stock:       r.Stock,
		Weight:      r.Weight,
		Available:   r.Available,
	}
}

// ProductPatchRequest updates only the fields present in the body.
type ProductPatchRequest struct {
	CategoryID  *uint            `json:"category_id"`
	Name        *string          `json:"name" binding:"omitempty,max=200"`
	ImgURL      *string          `json:"img_url" binding:"omitempty,max=250"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price" swaggertype:"string"`
	Stock       *int             `json:"stock" binding:"omitempty,gte=0"`
	Weight      *decimal.Decimal `json:"weight" swaggertype:"string"`
	Available   *bool            `json:"available"`
}

func (r ProductPatchRequest) Patch() service.ProductPatch {
	return service.ProductPatch{
		CategoryID:  r.CategoryID,
		Name:        r.Name,
		ImgURL:      r.ImgURL,
		Description: r.Description,
		Price:       r.Price,
		Stock:       r.Stock,
		Weight:      r.Weight,
		Available:   r.Available,
	}
}

type DiscountRequest struct {
	DiscountPercentage decimal.Decimal `json:"discount_percentage" swaggertype:"string" example:"25"`
	StartDate          string          `json:"start_date" binding:"required,datetime=2006-01-02" example:"2025-05-01"`
	EndDate            string          `json:"end_date" binding:"required,datetime=2006-01-02" example:"2025-05-31"`
	IsActive           *bool           `json:"is_active"`
}

func (r DiscountRequest) Input() service.DiscountInput {
	in := service.DiscountInput{
		Percentage: r.DiscountPercentage,
		StartDate:  mustDate(r.StartDate),
		EndDate:    mustDate(r.EndDate),
		IsActive:   true,
	}
	if r.IsActive != nil {
		in.IsActive = *r.IsActive
	}
	return in
}

type DiscountResponse struct {
	ID                 uint            `json:"id"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage" swaggertype:"string"`
	StartDate          string          `json:"start_date"`
	EndDate            string          `json:"end_date"`
	IsActive           bool            `json:"is_active"`
}

func NewDiscount(d *models.Discount) DiscountResponse {
	return DiscountResponse{
		ID:                 d.ID,
		DiscountPercentage: d.DiscountPercentage,
		StartDate:          d.StartDate.Format(DateLayout),
		EndDate:            d.EndDate.Format(DateLayout),
		IsActive:           d.IsActive,
	}
}

type CategoryBrief struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type ProductResponse struct {
	ID              uint              `json:"id"`
	Category        *CategoryBrief    `json:"category,omitempty"`
	CategoryID      uint              `json:"category_id"`
	Name            string            `json:"name"`
	Slug            string            `json:"slug"`
	ImgURL          string            `json:"img_url"`
	Description     string            `json:"description"`
	Price           decimal.Decimal   `json:"price" swaggertype:"string"`
	DiscountedPrice decimal.Decimal   `json:"discounted_price" swaggertype:"string"`
	ActiveDiscount  *DiscountResponse `json:"active_discount"`
	Stock           int               `json:"stock"`
	InStock         bool              `json:"in_stock"`
	Weight          *decimal.Decimal  `json:"weight" swaggertype:"string"`
	Available       bool              `json:"available"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// NewProduct renders p with the discount that is active on now.
func NewProduct(p *models.Product, now time.Time) ProductResponse {
	r := ProductResponse{
		ID:              p.ID,
		CategoryID:      p.CategoryID,
		Name:            p.Name,
		Slug:            p.Slug,
		ImgURL:          p.ImgURL,
		Description:     p.Description,
		Price:           p.Price,
		DiscountedPrice: service.UnitPrice(p, now),
		Stock:           p.Stock,
		InStock:         p.IsInStock(),
		Weight:          p.Weight,
		Available:       p.Available,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	if p.Category != nil {
		r.Category = &CategoryBrief{ID: p.Category.ID, Name: p.Category.Name, Slug: p.Category.Slug}
	}
	if d := p.ActiveDiscount(now); d != nil {
		dr := NewDiscount(d)
		r.ActiveDiscount = &dr
	}
	return r
}

func NewProducts(ps []models.Product, now time.Time) []ProductResponse {
	out := make([]ProductResponse, 0, len(ps))
	for i := range ps {
		out = append(out, NewProduct(&ps[i], now))
	}
	return out
}

type ReviewRequest struct {
	Review string `json:"review" binding:"required"`
}

type RatingRequest struct {
	Rating int `json:"rating" binding:"required,min=1,max=5"`
}

type UserBrief struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
}

type ReviewResponse struct {
	ID        uint       `json:"id"`
	ProductID uint       `json:"product_id"`
	User      *UserBrief `json:"user,omitempty"`
	Review    string     `json:"review"`
	Like      int        `json:"like"`
	Dislike   int        `json:"dislike"`
	CreatedAt time.Time  `json:"created_at"`
}

func NewReview(r *models.ProductReview) ReviewResponse {
	out := ReviewResponse{
		ID:        r.ID,
		ProductID: r.ProductID,
		Review:    r.Review,
		Like:      r.Like,
		Dislike:   r.Dislike,
		CreatedAt: r.CreatedAt,
	}
	if r.User != nil {
		out.User = &UserBrief{ID: r.User.ID, Username: r.User.Username, DisplayName: r.User.DisplayName()}
	}
	return out
}

func NewReviews(rs []models.ProductReview) []ReviewResponse {
	out := make([]ReviewResponse, 0, len(rs))
	for i := range rs {
		out = append(out, NewReview(&rs[i]))
	}
	return out
}

type RatingResponse struct {
	ID        uint      `json:"id"`
	ProductID uint      `json:"product_id"`
	UserID    uuid.UUID `json:"user_id"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

func NewRating(r *models.ProductRating) RatingResponse {
	return RatingResponse{ID: r.ID, ProductID: r.ProductID, UserID: r.UserID, Rating: r.Rating, CreatedAt: r.CreatedAt}
}

func NewRatings(rs []models.ProductRating) []RatingResponse {
	out := make([]RatingResponse, 0, len(rs))
	for i := range rs {
		out = append(out, NewRating(&rs[i]))
	}
	return out
}

type FeedbackResponse struct {
	ReviewResponse
	UserRating *int `json:"user_rating"`
}

func NewFeedback(entries []service.FeedbackEntry) []FeedbackResponse {
	out := make([]FeedbackResponse, 0, len(entries))
	for i := range entries {
		out = append(out, FeedbackResponse{ReviewResponse: NewReview(&entries[i].Review), UserRating: entries[i].UserRating})
	}
	return out
}

type ReactionResponse struct {
	ID    uint `json:"id"`
	Count int  `json:"count"`
}

type HasReviewedResponse struct {
	HasReviewed bool            `json:"has_reviewed"`
	Review      *ReviewResponse `json:"review,omitempty"`
}
