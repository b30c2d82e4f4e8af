package service

import "cardbridge/internal/models"

// PaymentStore and CardStore are the persistence surfaces the services need.
// The gorm repositories satisfy them; tests substitute in-memory fakes.
type PaymentStore interface {
	Create(p *models.Payment) error
	GetByID(id uint) (*models.Payment, error)
	Updates(id uint, cols map[string]interface{}) error
}

type CardStore interface {
	Create(c *models.CreditCard) error
	GetByID(id uint) (*models.CreditCard, error)
	UpdateStoredColumns(id uint, cols map[string]interface{}) error
	ClearRecurringReference(id uint) error
}
