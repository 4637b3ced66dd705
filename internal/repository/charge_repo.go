package repository

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"charge-ledger-backend/internal/models"
)

type ChargeRepository struct {
	db *gorm.DB
}

func NewChargeRepository(db *gorm.DB) *ChargeRepository {
	return &ChargeRepository{db: db}
}

// Create mints a new charge for an owner. details records which match
// predicate ran and why it created rather than joined.
func (r *ChargeRepository) Create(tx *gorm.DB, ownerID uuid.UUID, chargeType string, details map[string]interface{}) (uuid.UUID, error) {
	charge := models.Charge{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Type:      chargeType,
		CreatedAt: time.Now(),
	}
	if details != nil {
		raw, _ := json.Marshal(details)
		charge.MatchDetails = raw
	}
	if err := tx.Create(&charge).Error; err != nil {
		return uuid.Nil, err
	}
	return charge.ID, nil
}

func (r *ChargeRepository) GetByID(id uuid.UUID) (*models.Charge, error) {
	var charge models.Charge
	if err := r.db.First(&charge, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &charge, nil
}

// Transactions lists all canonical transactions grouped under a charge.
func (r *ChargeRepository) Transactions(id uuid.UUID) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := r.db.Where("charge_id = ?", id).Order("event_date ASC").Find(&txs).Error
	return txs, err
}
