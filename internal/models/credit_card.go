package models

import (
	"time"

	"gorm.io/gorm"
)

// CreditCard is the stored card record. It never holds a raw PAN: the card
// data is either a client-side-encrypted payload or a gateway token
// (GatewayCustomerProfileID) plus display fields synced back from the
// processor's recurring-detail listing.
type CreditCard struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	UserID        uint   `gorm:"not null;index" json:"user_id"`
	EncryptedData string `gorm:"type:text" json:"-"`

	// Per-transaction CVC supplied by the shopper; never persisted.
	VerificationValue string `gorm:"-" json:"-"`

	Month      string `gorm:"size:2" json:"month"`
	Year       string `gorm:"size:4" json:"year"`
	Name       string `gorm:"size:255" json:"name"`
	CCType     string `gorm:"size:32" json:"cc_type"`
	LastDigits string `gorm:"size:4" json:"last_digits"`

	// Recurring contract token issued by the gateway. Empty means no contract;
	// once set it is only cleared by an explicit disable.
	GatewayCustomerProfileID string `gorm:"size:255;index" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (CreditCard) TableName() string {
	return "credit_cards"
}

func (c *CreditCard) HasRecurringContract() bool {
	return c.GatewayCustomerProfileID != ""
}
