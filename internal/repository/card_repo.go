package repository

import (
	"cardbridge/internal/models"

	"gorm.io/gorm"
)

type CardRepository struct {
	db *gorm.DB
}

func NewCardRepository(db *gorm.DB) *CardRepository {
	return &CardRepository{db: db}
}

func (r *CardRepository) Create(c *models.CreditCard) error {
	return r.db.Create(c).Error
}

func (r *CardRepository) GetByID(id uint) (*models.CreditCard, error) {
	var c models.CreditCard
	err := r.db.Preload("User").First(&c, id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateStoredColumns writes gateway-synced card fields directly, skipping
// gorm hooks and the updated_at touch. This is a backend sync after a
// contract fetch, not a user edit.
func (r *CardRepository) UpdateStoredColumns(id uint, cols map[string]interface{}) error {
	return r.db.Model(&models.CreditCard{}).Where("id = ?", id).UpdateColumns(cols).Error
}

func (r *CardRepository) ClearRecurringReference(id uint) error {
	return r.db.Model(&models.CreditCard{}).Where("id = ?", id).
		UpdateColumn("gateway_customer_profile_id", "").Error
}
