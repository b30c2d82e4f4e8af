package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	PaymentStateCheckout   = "checkout"
	PaymentStatePending    = "pending"
	PaymentStateProcessing = "processing"
	PaymentStateCompleted  = "completed"
	PaymentStateFailed     = "failed"
	PaymentStateVoid       = "void"
	PaymentStateRefunded   = "refunded"
)

type Payment struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	OrderNumber  string `gorm:"size:64;uniqueIndex;not null" json:"order_number"`
	UserID       uint   `gorm:"not null;index" json:"user_id"`
	CreditCardID uint   `gorm:"not null;index" json:"credit_card_id"`
	AmountCents  int64  `gorm:"not null" json:"amount_cents"`
	Currency     string `gorm:"size:3;default:'USD'" json:"currency"`
	State        string `gorm:"size:20;not null;index" json:"state"`

	// ResponseCode is the gateway's PSP reference from the last successful
	// operation; the correlation key for capture/void/refund.
	ResponseCode string `gorm:"size:255;index" json:"response_code"`

	// MD is the pending 3-D Secure continuation token, set when the gateway
	// requires enrollment and cleared once the challenge completes.
	MD string `gorm:"type:text" json:"-"`

	FailureReason string     `gorm:"size:512" json:"failure_reason,omitempty"`
	LastIP        string     `gorm:"size:45" json:"-"`
	CompletedAt   *time.Time `json:"completed_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User       User       `gorm:"foreignKey:UserID" json:"-"`
	CreditCard CreditCard `gorm:"foreignKey:CreditCardID" json:"-"`
}

func (Payment) TableName() string {
	return "payments"
}
