package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const slugLang = "tr"

func makeSlug(s string) string { return slug.MakeLang(s, slugLang) }

type Category struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:100;not null"`
	Slug        string `gorm:"size:150;not null;uniqueIndex"`
	Description string `gorm:"type:text"`
	ImageURL    string `gorm:"size:250"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Category) TableName() string { return "categories" }

func (c *Category) BeforeSave(*gorm.DB) error {
	if c.Slug == "" {
		c.Slug = makeSlug(c.Name)
	}
	return nil
}

type Product struct {
	ID          uint             `gorm:"primaryKey"`
	CategoryID  uint             `gorm:"not null;index"`
	Category    *Category        `gorm:"constraint:OnDelete:CASCADE"`
	Name        string           `gorm:"size:200;not null"`
	Slug        string           `gorm:"size:250;not null;uniqueIndex"`
	ImgURL      string           `gorm:"size:250"`
	Description string           `gorm:"type:text"`
	Price       decimal.Decimal  `gorm:"type:numeric(10,2);not null"`
	Stock       int              `gorm:"not null;default:0"`
	Weight      *decimal.Decimal `gorm:"type:numeric(10,2)"`
	Available   bool             `gorm:"not null;index"`

	Discounts []Discount `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeSave(*gorm.DB) error {
	if p.Slug == "" {
		p.Slug = makeSlug(p.Name)
	}
	return nil
}

func (p *Product) IsInStock() bool { return p.Stock > 0 }

// ActiveDiscount returns the first discount whose window contains the given day.
func (p *Product) ActiveDiscount(now time.Time) *Discount {
	for i := range p.Discounts {
		if p.Discounts[i].IsActiveOn(now) {
			return &p.Discounts[i]
		}
	}
	return nil
}

type Discount struct {
	ID                 uint            `gorm:"primaryKey"`
	ProductID          uint            `gorm:"not null;index"`
	DiscountPercentage decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	StartDate          time.Time       `gorm:"type:date;not null"`
	EndDate            time.Time       `gorm:"type:date;not null"`
	IsActive           bool            `gorm:"not null"`
}

func (Discount) TableName() string { return "product_discounts" }

// IsActiveOn compares calendar days, both bounds inclusive.
func (d *Discount) IsActiveOn(now time.Time) bool {
	if !d.IsActive {
		return false
	}
	day := truncateDay(now)
	return !day.Before(truncateDay(d.StartDate)) && !day.After(truncateDay(d.EndDate))
}

func truncateDay(t time.Time) time.Time {
	y, m, dd := t.Date()
	return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
}

type ProductReview struct {
	ID        uint      `gorm:"primaryKey"`
	ProductID uint      `gorm:"not null;index"`
	UserID    uuid.UUID `gorm:"type:char(36);not null;index"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE"`
	Review    string    `gorm:"type:text;not null"`
	Like      int       `gorm:"column:likes;not null;default:0"`
	Dislike   int       `gorm:"column:dislikes;not null;default:0"`

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (ProductReview) TableName() string { return "product_reviews" }

type ProductRating struct {
	ID        uint      `gorm:"primaryKey"`
	ProductID uint      `gorm:"not null;uniqueIndex:ux_product_ratings_product_user"`
	UserID    uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:ux_product_ratings_product_user"`
	Rating    int       `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ProductRating) TableName() string { return "product_ratings" }
