package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BlogStatus string

const (
	BlogDraft     BlogStatus = "draft"
	BlogPublished BlogStatus = "published"
)

const (
	MetaDescriptionMaxLen = 160
	wordsPerMinute        = 200
)

type BlogCategory struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:100;not null"`
	Slug        string `gorm:"size:120;not null;uniqueIndex"`
	Description string `gorm:"type:text"`

	CreatedAt time.Time
}

func (BlogCategory) TableName() string { return "blog_categories" }

func (c *BlogCategory) BeforeSave(*gorm.DB) error {
	if c.Slug == "" {
		c.Slug = makeSlug(c.Name)
	}
	return nil
}

type BlogTag struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:50;not null"`
	Slug string `gorm:"size:70;not null;uniqueIndex"`
}

func (BlogTag) TableName() string { return "blog_tags" }

func (t *BlogTag) BeforeSave(*gorm.DB) error {
	if t.Slug == "" {
		t.Slug = makeSlug(t.Name)
	}
	return nil
}

type Blog struct {
	ID              uint       `gorm:"primaryKey"`
	Title           string     `gorm:"size:200;not null"`
	Slug            string     `gorm:"size:220;not null;uniqueIndex"`
	Excerpt         string     `gorm:"type:text"`
	Content         string     `gorm:"type:text;not null"`
	AuthorID        *uuid.UUID `gorm:"type:char(36);index"`
	Author          *User      `gorm:"constraint:OnDelete:SET NULL"`
	FeaturedImage   string     `gorm:"size:255"`
	Status          BlogStatus `gorm:"size:10;not null;default:'draft';index"`
	PublishedAt     *time.Time `gorm:"index"`
	IsFeatured      bool       `gorm:"not null;default:false"`
	MetaDescription string     `gorm:"size:160"`
	ViewCount       int        `gorm:"not null;default:0"`

	Categories []BlogCategory `gorm:"many2many:blog_post_categories;"`
	Tags       []BlogTag      `gorm:"many2many:blog_post_tags;"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Blog) TableName() string { return "blogs" }

func (b *Blog) BeforeSave(tx *gorm.DB) error {
	if b.Slug == "" {
		b.Slug = makeSlug(b.Title)
	}
	b.StampPublished(tx.NowFunc())
	return nil
}

// StampPublished sets published_at the first time the post is published.
func (b *Blog) StampPublished(now time.Time) {
	if b.Status == BlogPublished && b.PublishedAt == nil {
		b.PublishedAt = &now
	}
}

// ReadingTime is whole minutes at 200 words per minute, at least one.
func (b *Blog) ReadingTime() int {
	words := len(strings.Fields(b.Content))
	m := words / wordsPerMinute
	if m < 1 {
		return 1
	}
	return m
}

func (b *Blog) CategoryIDs() []uint {
	ids := make([]uint, 0, len(b.Categories))
	for _, c := range b.Categories {
		ids = append(ids, c.ID)
	}
	return ids
}

func (b *Blog) TagIDs() []uint {
	ids := make([]uint, 0, len(b.Tags))
	for _, t := range b.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}
