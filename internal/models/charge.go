package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ChargeType is empty for plain movements.
const (
	ChargeTypeConversion  = "conversion"
	ChargeTypeBankDeposit = "bank_deposit"
)

// Charge groups the transactions of one economic event (a purchase, both legs
// of a currency conversion, a transfer and its fee) under one owner.
type Charge struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID      uuid.UUID `gorm:"type:uuid;index"`
	Type         string    `gorm:"index"`
	MatchDetails datatypes.JSON
	CreatedAt    time.Time
}
