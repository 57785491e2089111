package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	Username  string    `gorm:"size:150;not null;uniqueIndex"`
	Email     string    `gorm:"size:254;not null;uniqueIndex"`
	Password  string    `gorm:"size:255;not null"`
	FirstName string    `gorm:"size:150"`
	LastName  string    `gorm:"size:150"`
	IsStaff   bool      `gorm:"not null;default:false"`
	IsActive  bool      `gorm:"not null;default:true"`

	Profile *UserProfile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// DisplayName falls back to the username when no real name is set.
func (u *User) DisplayName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Username
	}
	return name
}

type UserProfile struct {
	ID          uint      `gorm:"primaryKey"`
	UserID      uuid.UUID `gorm:"type:char(36);not null;uniqueIndex"`
	PhoneNumber string    `gorm:"size:15"`
	Address     string    `gorm:"type:text"`
	City        string    `gorm:"size:100"`
	PostalCode  string    `gorm:"size:10"`
	Country     string    `gorm:"size:100"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (UserProfile) TableName() string { return "user_profiles" }

type AddressType string

const (
	AddressBilling  AddressType = "billing"
	AddressShipping AddressType = "shipping"
)

func (t AddressType) Valid() bool { return t == AddressBilling || t == AddressShipping }

type Address struct {
	ID          uint        `gorm:"primaryKey"`
	UserID      uuid.UUID   `gorm:"type:char(36);not null;index"`
	Title       string      `gorm:"size:100;not null"`
	AddressType AddressType `gorm:"size:10;not null;default:'shipping'"`
	FirstName   string      `gorm:"size:100;not null"`
	LastName    string      `gorm:"size:100;not null"`
	PhoneNumber string      `gorm:"size:15;not null"`
	Address     string      `gorm:"type:text;not null"`
	City        string      `gorm:"size:100;not null"`
	District    string      `gorm:"size:100;not null"`
	PostalCode  string      `gorm:"size:10"`
	Country     string      `gorm:"size:100;not null"`
	IsDefault   bool        `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Address) TableName() string { return "addresses" }

func (a *Address) BeforeSave(*gorm.DB) error {
	if a.Country == "" {
		a.Country = DefaultCountry
	}
	if a.AddressType == "" {
		a.AddressType = AddressShipping
	}
	return nil
}

// PasswordResetTTL is how long an emailed reset link stays usable.
const PasswordResetTTL = 24 * time.Hour

type PasswordResetToken struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uuid.UUID `gorm:"type:char(36);not null;index"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE"`
	Token     string    `gorm:"size:100;not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null;index"`
	IsUsed    bool      `gorm:"not null;default:false"`

	CreatedAt time.Time
}

func (PasswordResetToken) TableName() string { return "password_reset_tokens" }

func (t *PasswordResetToken) BeforeCreate(tx *gorm.DB) error {
	if t.Token == "" {
		t.Token = uuid.NewString()
	}
	if t.ExpiresAt.IsZero() {
		t.ExpiresAt = tx.NowFunc().Add(PasswordResetTTL)
	}
	return nil
}

func (t *PasswordResetToken) IsValid(now time.Time) bool {
	return !t.IsUsed && t.ExpiresAt.After(now)
}

type ContactMessage struct {
	ID      uint   `gorm:"primaryKey"`
	Name    string `gorm:"size:150;not null"`
	Email   string `gorm:"size:254;not null"`
	Phone   string `gorm:"size:30"`
	Subject string `gorm:"size:100;not null"`
	Message string `gorm:"type:text;not null"`
	IsRead  bool   `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"index"`
}

func (ContactMessage) TableName() string { return "contact_messages" }
