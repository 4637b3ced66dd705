package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is the canonical economic movement. Rows are immutable once
// written; corrections happen through separate edit flows, never here.
type Transaction struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	AccountID  uuid.UUID `gorm:"type:uuid;index"`
	ChargeID   uuid.UUID `gorm:"type:uuid;index"`
	EnvelopeID uuid.UUID `gorm:"type:uuid;uniqueIndex"`

	Currency  Currency         `gorm:"type:varchar(3)"`
	EventDate time.Time        `gorm:"index"`
	DebitDate *time.Time
	Amount    decimal.Decimal  `gorm:"type:decimal(20,6)"` // negative = outflow
	Balance   *decimal.Decimal `gorm:"type:decimal(20,6)"`

	Description    string
	CounterAccount string // "bank-branch-account", empty when absent
	IsFee          bool   `gorm:"index"`

	// Origin key back to the raw feed row, for traceability.
	SourceTag     SourceTag `gorm:"index"`
	SourceLocalID string

	CreatedAt time.Time
}
