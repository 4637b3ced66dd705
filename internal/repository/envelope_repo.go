package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"charge-ledger-backend/internal/models"
)

// ErrDuplicateRecord means the same (source, source-local-id) pair was
// ingested twice. The unique index on envelopes is the single dedup
// boundary; a silent duplicate would double-count money.
var ErrDuplicateRecord = errors.New("duplicate raw record")

type EnvelopeRepository struct {
	db *gorm.DB
}

func NewEnvelopeRepository(db *gorm.DB) *EnvelopeRepository {
	return &EnvelopeRepository{db: db}
}

// StagingRef names the one staging row an envelope wraps.
type StagingRef struct {
	CheckingRecordID *uuid.UUID
	SwiftRecordID    *uuid.UUID
	DepositRecordID  *uuid.UUID
	CardRecordID     *uuid.UUID
}

func (ref StagingRef) populated() int {
	n := 0
	for _, id := range []*uuid.UUID{ref.CheckingRecordID, ref.SwiftRecordID, ref.DepositRecordID, ref.CardRecordID} {
		if id != nil {
			n++
		}
	}
	return n
}

// Wrap inserts the envelope for one raw record. No existence check: the
// database constraint carries the uniqueness invariant, and a violation
// surfaces as ErrDuplicateRecord.
func (r *EnvelopeRepository) Wrap(tx *gorm.DB, source models.SourceTag, sourceLocalID string, ref StagingRef) (uuid.UUID, error) {
	if n := ref.populated(); n != 1 {
		return uuid.Nil, fmt.Errorf("envelope for %s/%s requires exactly one staging reference, got %d", source, sourceLocalID, n)
	}
	env := models.Envelope{
		ID:               uuid.New(),
		SourceTag:        source,
		SourceLocalID:    sourceLocalID,
		CheckingRecordID: ref.CheckingRecordID,
		SwiftRecordID:    ref.SwiftRecordID,
		DepositRecordID:  ref.DepositRecordID,
		CardRecordID:     ref.CardRecordID,
		CreatedAt:        time.Now(),
	}
	if err := tx.Create(&env).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return uuid.Nil, fmt.Errorf("%w: %s/%s", ErrDuplicateRecord, source, sourceLocalID)
		}
		return uuid.Nil, err
	}
	return env.ID, nil
}

// FindByCheckingRecord returns the envelope wrapping a checking staging row,
// or nil when none exists yet.
func (r *EnvelopeRepository) FindByCheckingRecord(tx *gorm.DB, recordID uuid.UUID) (*models.Envelope, error) {
	var env models.Envelope
	err := tx.Where("checking_record_id = ?", recordID).First(&env).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &env, nil
}
