package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// CheckingRecord is a staged bank checking row. All checking currencies and
// the Discount feed land in one table; SourceTag and Currency discriminate.
// The reference triple (reference number, catenated reference number, value
// date) is the join key the charge matcher uses across currencies.
type CheckingRecord struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	SourceTag     SourceTag `gorm:"index"`
	SourceLocalID string

	BankNumber    string
	BranchNumber  string
	AccountNumber string

	Currency     Currency `gorm:"type:varchar(3);index"`
	ActivityCode int
	TextCode     int
	Amount       decimal.Decimal  `gorm:"type:decimal(20,6)"` // unsigned; direction from the sign table
	Balance      *decimal.Decimal `gorm:"type:decimal(20,6)"`

	ReferenceNumber          string    `gorm:"index:idx_checking_ref_triple"`
	CatenatedReferenceNumber string    `gorm:"index:idx_checking_ref_triple"`
	ValueDate                time.Time `gorm:"index:idx_checking_ref_triple"`
	EventDate                time.Time

	Description    string
	CounterBank    string
	CounterBranch  string
	CounterAccount string

	RawPayload datatypes.JSON
	CreatedAt  time.Time
}
