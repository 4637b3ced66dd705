package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// DepositRecord is a staged bank-deposit snapshot row. Amount is the signed
// movement since the previous snapshot, as delivered by the snapshot job.
type DepositRecord struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	SourceLocalID string

	DepositKey string `gorm:"index"`

	Currency     Currency        `gorm:"type:varchar(3)"`
	Amount       decimal.Decimal `gorm:"type:decimal(20,6)"`
	SnapshotDate time.Time

	RawPayload datatypes.JSON
	CreatedAt  time.Time
}
