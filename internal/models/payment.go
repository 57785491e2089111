package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusProcessing, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCreditCard     PaymentMethod = "credit_card"
	PaymentBankTransfer   PaymentMethod = "bank_transfer"
	PaymentPaypal         PaymentMethod = "paypal"
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCreditCard, PaymentBankTransfer, PaymentPaypal, PaymentCashOnDelivery:
		return true
	}
	return false
}

type Payment struct {
	ID            uint            `gorm:"primaryKey"`
	OrderID       uint            `gorm:"not null;uniqueIndex"`
	Order         *Order          `gorm:"constraint:OnDelete:CASCADE"`
	Amount        decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	PaymentMethod PaymentMethod   `gorm:"size:20;not null"`
	Status        PaymentStatus   `gorm:"size:20;not null;default:'pending';index"`
	TransactionID string          `gorm:"size:100"`
	Notes         string          `gorm:"type:text"`
	PaymentDate   time.Time       `gorm:"not null"`

	UpdatedAt time.Time
}

func (Payment) TableName() string { return "payments" }

func DefaultTransactionID(id uint) string { return fmt.Sprintf("TRX-%d", id) }

func (p *Payment) IsFinal() bool {
	return p.Status == PaymentStatusCompleted || p.Status == PaymentStatusRefunded
}
