package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// CardRecord is a staged credit-card processor row (Isracard, Amex, Cal,
// Max). Card feeds arrive pre-signed: negative = charge, positive = refund.
type CardRecord struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	SourceTag     SourceTag `gorm:"index"`
	SourceLocalID string

	CardNumber string

	Currency        Currency        `gorm:"type:varchar(3)"`
	Amount          decimal.Decimal `gorm:"type:decimal(20,6)"`
	MerchantName    string
	MerchantAddress string
	EventDate       time.Time
	DebitDate       *time.Time

	RawPayload datatypes.JSON
	CreatedAt  time.Time
}
