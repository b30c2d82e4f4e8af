package repository

import (
	"cardbridge/internal/models"

	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(p *models.Payment) error {
	return r.db.Create(p).Error
}

func (r *PaymentRepository) GetByID(id uint) (*models.Payment, error) {
	var p models.Payment
	err := r.db.Preload("User").Preload("CreditCard").First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) GetByOrderNumber(orderNumber string) (*models.Payment, error) {
	var p models.Payment
	err := r.db.Preload("User").Preload("CreditCard").
		Where("order_number = ?", orderNumber).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) Update(p *models.Payment) error {
	return r.db.Save(p).Error
}

func (r *PaymentRepository) Updates(id uint, cols map[string]interface{}) error {
	return r.db.Model(&models.Payment{}).Where("id = ?", id).Updates(cols).Error
}
