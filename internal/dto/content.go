package dto

import (
	"time"

	"github.com/emrahsandernet/kasarcim/internal/models"
	"github.com/emrahsandernet/kasarcim/internal/service"

	"github.com/shopspring/decimal"
)

type CouponRequest struct {
	Code              string          `json:"code" binding:"required,max=50" example:"YAZ25"`
	Description       string          `json:"description"`
	DiscountType      string          `json:"discount_type" binding:"omitempty,oneof=percentage fixed" example:"percentage"`
	DiscountValue     decimal.Decimal `json:"discount_value" swaggertype:"string" example:"25"`
	MinPurchaseAmount decimal.Decimal `json:"min_purchase_amount" swaggertype:"string" example:"0"`
	ValidFrom         time.Time       `json:"valid_from"`
	ValidTo           time.Time       `json:"valid_to"`
	Active            *bool           `json:"active"`
	MaxUsage          *int            `json:"max_usage" binding:"omitempty,gte=1"`
}

func (r CouponRequest) Input() service.CouponInput {
	in := service.CouponInput{
		Code:              r.Code,
		Description:       r.Description,
		DiscountType:      r.DiscountType,
		DiscountValue:     r.DiscountValue,
		MinPurchaseAmount: r.MinPurchaseAmount,
		ValidFrom:         r.ValidFrom,
		ValidTo:           r.ValidTo,
		Active:            true,
		MaxUsage:          1,
	}
	if in.DiscountType == "" {
		in.DiscountType = models.DiscountTypePercentage
	}
	if r.Active != nil {
		in.Active = *r.Active
	}
	if r.MaxUsage != nil {
		in.MaxUsage = *r.MaxUsage
	}
	return in
}

type CouponResponse struct {
	ID                uint            `json:"id"`
	Code              string          `json:"code"`
	Description       string          `json:"description"`
	DiscountType      string          `json:"discount_type"`
	DiscountValue     decimal.Decimal `json:"discount_value" swaggertype:"string"`
	MinPurchaseAmount decimal.Decimal `json:"min_purchase_amount" swaggertype:"string"`
	ValidFrom         time.Time       `json:"valid_from"`
	ValidTo           time.Time       `json:"valid_to"`
	Active            bool            `json:"active"`
	MaxUsage          int             `json:"max_usage"`
	UsageCount        int             `json:"usage_count"`
	IsValid           bool            `json:"is_valid"`
}

func NewCoupon(c *models.Coupon, now time.Time) CouponResponse {
	return CouponResponse{
		ID:                c.ID,
		Code:              c.Code,
		Description:       c.Description,
		DiscountType:      c.DiscountType,
		DiscountValue:     c.DiscountValue,
		MinPurchaseAmount: c.MinPurchaseAmount,
		ValidFrom:         c.ValidFrom,
		ValidTo:           c.ValidTo,
		Active:            c.Active,
		MaxUsage:          c.MaxUsage,
		UsageCount:        c.UsageCount,
		IsValid:           c.IsValid(now),
	}
}

func NewCoupons(cs []models.Coupon, now time.Time) []CouponResponse {
	out := make([]CouponResponse, 0, len(cs))
	for i := range cs {
		out = append(out, NewCoupon(&cs[i], now))
	}
	return out
}

// CouponQuoteRequest asks what a coupon would take off a cart total.
type CouponQuoteRequest struct {
	Code      string          `json:"code" binding:"required" example:"YAZ25"`
	CartTotal decimal.Decimal `json:"cart_total" swaggertype:"string" example:"400.00"`
}

type CouponQuoteResponse struct {
	Valid          bool            `json:"valid"`
	Code           string          `json:"code"`
	DiscountType   string          `json:"discount_type"`
	DiscountValue  decimal.Decimal `json:"discount_value" swaggertype:"string"`
	DiscountAmount decimal.Decimal `json:"discount_amount" swaggertype:"string"`
	Message        string          `json:"message"`
}

func NewCouponQuote(q *service.CouponQuote) CouponQuoteResponse {
	return CouponQuoteResponse{
		Valid:          true,
		Code:           q.Code,
		DiscountType:   q.DiscountType,
		DiscountValue:  q.DiscountValue,
		DiscountAmount: q.DiscountAmount,
		Message:        q.Message,
	}
}

type BlogCategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
}

type BlogTagRequest struct {
	Name string `json:"name" binding:"required,max=50"`
}

type BlogCategoryResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

func NewBlogCategory(c *models.BlogCategory) BlogCategoryResponse {
	return BlogCategoryResponse{ID: c.ID, Name: c.Name, Slug: c.Slug, Description: c.Description}
}

func NewBlogCategories(cs []models.BlogCategory) []BlogCategoryResponse {
	out := make([]BlogCategoryResponse, 0, len(cs))
	for i := range cs {
		out = append(out, NewBlogCategory(&cs[i]))
	}
	return out
}

type BlogTagResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func NewBlogTag(t *models.BlogTag) BlogTagResponse {
	return BlogTagResponse{ID: t.ID, Name: t.Name, Slug: t.Slug}
}

func NewBlogTags(ts []models.BlogTag) []BlogTagResponse {
	out := make([]BlogTagResponse, 0, len(ts))
	for i := range ts {
		out = append(out, NewBlogTag(&ts[i]))
	}
	return out
}

type BlogRequest struct {
	Title           string `json:"title" binding:"required,max=200"`
	Slug            string `json:"slug" binding:"max=220"`
	Excerpt         string `json:"excerpt"`
	Content         string `json:"content" binding:"required"`
	FeaturedImage   string `json:"featured_image" binding:"max=255"`
	Status          string `json:"status" binding:"omitempty,oneof=draft published" example:"draft"`
	IsFeatured      bool   `json:"is_featured"`
	MetaDescription string `json:"meta_description" binding:"max=160"`
	CategoryIDs     []uint `json:"category_ids"`
	TagIDs          []uint `json:"tag_ids"`
}

func (r BlogRequest) Input() service.BlogInput {
	return service.BlogInput{
		Title:           r.Title,
		Slug:            r.Slug,
		Excerpt:         r.Excerpt,
		Content:         r.Content,
		FeaturedImage:   r.FeaturedImage,
		Status:          models.BlogStatus(r.Status),
		IsFeatured:      r.IsFeatured,
		MetaDescription: r.MetaDescription,
		CategoryIDs:     r.CategoryIDs,
		TagIDs:          r.TagIDs,
	}
}

type BlogPostResponse struct {
	ID              uint                   `json:"id"`
	Title           string                 `json:"title"`
	Slug            string                 `json:"slug"`
	Excerpt         string                 `json:"excerpt"`
	Content         string                 `json:"content,omitempty"`
	Author          *UserBrief             `json:"author,omitempty"`
	FeaturedImage   string                 `json:"featured_image"`
	Status          models.BlogStatus      `json:"status"`
	PublishedAt     *time.Time             `json:"published_at"`
	IsFeatured      bool                   `json:"is_featured"`
	MetaDescription string                 `json:"meta_description"`
	ViewCount       int                    `json:"view_count"`
	ReadingTime     int                    `json:"reading_time"`
	Categories      []BlogCategoryResponse `json:"categories"`
	Tags            []BlogTagResponse      `json:"tags"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// NewBlogPost renders a post; list views leave the body out.
func NewBlogPost(b *models.Blog, withContent bool) BlogPostResponse {
	r := BlogPostResponse{
		ID:              b.ID,
		Title:           b.Title,
		Slug:            b.Slug,
		Excerpt:         b.Excerpt,
		FeaturedImage:   b.FeaturedImage,
		Status:          b.Status,
		PublishedAt:     b.PublishedAt,
		IsFeatured:      b.IsFeatured,
		MetaDescription: b.MetaDescription,
		ViewCount:       b.ViewCount,
		ReadingTime:     b.ReadingTime(),
		Categories:      NewBlogCategories(b.Categories),
		Tags:            NewBlogTags(b.Tags),
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
	if withContent {
		r.Content = b.Content
	}
	if b.Author != nil {
		r.Author = &UserBrief{ID: b.Author.ID, Username: b.Author.Username, DisplayName: b.Author.DisplayName()}
	}
	return r
}

func NewBlogPosts(bs []models.Blog) []BlogPostResponse {
	out := make([]BlogPostResponse, 0, len(bs))
	for i := range bs {
		out = append(out, NewBlogPost(&bs[i], false))
	}
	return out
}

type BlogDetailResponse struct {
	BlogPostResponse
	Related []BlogPostResponse `json:"related"`
}

func NewBlogDetail(d *service.BlogDetail) BlogDetailResponse {
	r := BlogDetailResponse{
		BlogPostResponse: NewBlogPost(d.Post, true),
		Related:          NewBlogPosts(d.Related),
	}
	r.ReadingTime = d.ReadingTime
	return r
}

type ArchiveMonthResponse struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Count int `json:"count"`
}

func NewArchive(ms []service.ArchiveMonth) []ArchiveMonthResponse {
	out := make([]ArchiveMonthResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, ArchiveMonthResponse{Year: m.Month.Year(), Month: int(m.Month.Month()), Count: m.Count})
	}
	return out
}

type AnnouncementRequest struct {
	Message         string `json:"message" binding:"required"`
	Link            string `json:"link" binding:"max=255"`
	LinkText        string `json:"link_text" binding:"max=100"`
	BackgroundColor string `json:"background_color" binding:"max=50" example:"bg-orange-500"`
	TextColor       string `json:"text_color" binding:"max=50" example:"text-white"`
	IsActive        *bool  `json:"is_active"`
	Order           int    `json:"order"`
}

func (r AnnouncementRequest) Input() service.AnnouncementInput {
	in := service.AnnouncementInput{
		Message:         r.Message,
		Link:            r.Link,
		LinkText:        r.LinkText,
		BackgroundColor: r.BackgroundColor,
		TextColor:       r.TextColor,
		IsActive:        true,
		Order:           r.Order,
	}
	if r.IsActive != nil {
		in.IsActive = *r.IsActive
	}
	return in
}

type AnnouncementResponse struct {
	ID              uint      `json:"id"`
	Message         string    `json:"message"`
	Link            string    `json:"link"`
	LinkText        string    `json:"link_text"`
	BackgroundColor string    `json:"background_color"`
	TextColor       string    `json:"text_color"`
	IsActive        bool      `json:"is_active"`
	Order           int       `json:"order"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func NewAnnouncement(a *models.Announcement) AnnouncementResponse {
	return AnnouncementResponse{
		ID:              a.ID,
		Message:         a.Message,
		Link:            a.Link,
		LinkText:        a.LinkText,
		BackgroundColor: a.BackgroundColor,
		TextColor:       a.TextColor,
		IsActive:        a.IsActive,
		Order:           a.Order,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func NewAnnouncements(as []models.Announcement) []AnnouncementResponse {
	out := make([]AnnouncementResponse, 0, len(as))
	for i := range as {
		out = append(out, NewAnnouncement(&as[i]))
	}
	return out
}
