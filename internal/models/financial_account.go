package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	AccountKindChecking = "checking"
	AccountKindCard     = "card"
	AccountKindDeposit  = "deposit"
)

// FinancialAccount is provisioned by the onboarding flow; this core only
// resolves against it and never creates rows.
type FinancialAccount struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID uuid.UUID `gorm:"type:uuid;index"`
	Kind    string    `gorm:"index"`

	BankNumber    string `gorm:"index"`
	BranchNumber  string
	AccountNumber string

	CardNumber string `gorm:"index"`
	DepositKey string `gorm:"index"`

	Currency  Currency `gorm:"type:varchar(3)"`
	CreatedAt time.Time
}
