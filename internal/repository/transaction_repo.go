package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"charge-ledger-backend/internal/models"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create writes one canonical transaction. There is no update path: rows are
// immutable once written.
func (r *TransactionRepository) Create(tx *gorm.DB, transaction *models.Transaction) error {
	return tx.Create(transaction).Error
}

// FindByEnvelope returns the canonical transaction for an envelope, or nil.
func (r *TransactionRepository) FindByEnvelope(tx *gorm.DB, envelopeID uuid.UUID) (*models.Transaction, error) {
	var t models.Transaction
	err := tx.Where("envelope_id = ?", envelopeID).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByAccount pages through an account's transactions with an id cursor.
func (r *TransactionRepository) ListByAccount(accountID uuid.UUID, cursor string, limit int) ([]models.Transaction, string, bool, error) {
	var txs []models.Transaction
	query := r.db.
		Where("account_id = ?", accountID).
		Order("id ASC").
		Limit(limit + 1)

	if cursor != "" {
		query = query.Where("id > ?", cursor)
	}

	if err := query.Find(&txs).Error; err != nil {
		return nil, "", false, err
	}

	hasMore := false
	var nextCursor string
	if len(txs) > limit {
		hasMore = true
		nextCursor = txs[limit-1].ID.String()
		txs = txs[:limit]
	}
	return txs, nextCursor, hasMore, nil
}
