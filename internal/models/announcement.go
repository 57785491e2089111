package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	DefaultAnnouncementBackground = "bg-orange-500"
	DefaultAnnouncementText       = "text-white"
)

type Announcement struct {
	ID              uint   `gorm:"primaryKey"`
	Message         string `gorm:"type:text;not null"`
	Link            string `gorm:"size:255"`
	LinkText        string `gorm:"size:100"`
	BackgroundColor string `gorm:"size:50;not null;default:'bg-orange-500'"`
	TextColor       string `gorm:"size:50;not null;default:'text-white'"`
	IsActive        bool   `gorm:"not null;index"`
	Order           int    `gorm:"column:sort_order;not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Announcement) TableName() string { return "announcements" }

func (a *Announcement) BeforeSave(*gorm.DB) error {
	if a.BackgroundColor == "" {
		a.BackgroundColor = DefaultAnnouncementBackground
	}
	if a.TextColor == "" {
		a.TextColor = DefaultAnnouncementText
	}
	return nil
}
