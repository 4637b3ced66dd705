package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// SwiftRecord is a staged SWIFT transfer message. InstructedAmount and
// SettledAmount come from the two fixed-format amount fields; their
// difference, when positive, is the transfer fee.
type SwiftRecord struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	SourceLocalID string

	AccountNumber string

	Currency         Currency        `gorm:"type:varchar(3)"`
	InstructedAmount decimal.Decimal `gorm:"type:decimal(20,6)"`
	SettledAmount    decimal.Decimal `gorm:"type:decimal(20,6)"`
	Direction        string          // "I" incoming, "O" outgoing

	Counterparty string
	ValueDate    time.Time `gorm:"index"`
	Description  string

	RawPayload datatypes.JSON
	CreatedAt  time.Time
}
