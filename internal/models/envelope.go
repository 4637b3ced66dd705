package models

import (
	"time"

	"github.com/google/uuid"
)

// Envelope is the dedup ledger: exactly one row per raw record, holding
// exactly one populated staging-table foreign key. The unique index on
// (source_tag, source_local_id) is the idempotency boundary — re-ingesting
// the same raw record must fail on this index, never silently succeed.
type Envelope struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	SourceTag     SourceTag `gorm:"uniqueIndex:idx_envelope_origin"`
	SourceLocalID string    `gorm:"uniqueIndex:idx_envelope_origin"`

	// Mutually exclusive: exactly one is non-nil.
	CheckingRecordID *uuid.UUID `gorm:"type:uuid;index"`
	SwiftRecordID    *uuid.UUID `gorm:"type:uuid;index"`
	DepositRecordID  *uuid.UUID `gorm:"type:uuid;index"`
	CardRecordID     *uuid.UUID `gorm:"type:uuid;index"`

	CreatedAt time.Time
}
