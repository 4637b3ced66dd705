package repository

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"charge-ledger-backend/internal/models"
)

// ErrUnknownAccount means a raw record's account key resolved to no
// FinancialAccount. Fatal for that record; nothing may be written.
var ErrUnknownAccount = errors.New("unknown account")

// AccountKey is the source-side identity of a financial account. Exactly one
// group of fields is populated depending on Kind.
type AccountKey struct {
	Kind string

	BankNumber    string
	BranchNumber  string
	AccountNumber string

	CardNumber string
	DepositKey string
}

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Resolve maps an account key to the internal account identity and its
// owner. Pure lookup; accounts are provisioned elsewhere.
func (r *AccountRepository) Resolve(tx *gorm.DB, key AccountKey) (accountID, ownerID uuid.UUID, err error) {
	query := tx.Model(&models.FinancialAccount{}).Where("kind = ?", key.Kind)

	switch key.Kind {
	case models.AccountKindChecking:
		query = query.Where(
			"bank_number = ? AND branch_number = ? AND account_number = ?",
			key.BankNumber, key.BranchNumber, key.AccountNumber,
		)
	case models.AccountKindCard:
		query = query.Where("card_number = ?", key.CardNumber)
	case models.AccountKindDeposit:
		query = query.Where("deposit_key = ?", key.DepositKey)
	default:
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: unsupported key kind %q", ErrUnknownAccount, key.Kind)
	}

	var account models.FinancialAccount
	if err := query.First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, uuid.Nil, fmt.Errorf("%w: %s", ErrUnknownAccount, key.describe())
		}
		return uuid.Nil, uuid.Nil, err
	}
	return account.ID, account.OwnerID, nil
}

func (k AccountKey) describe() string {
	switch k.Kind {
	case models.AccountKindChecking:
		return fmt.Sprintf("checking %s-%s-%s", k.BankNumber, k.BranchNumber, k.AccountNumber)
	case models.AccountKindCard:
		return fmt.Sprintf("card %s", k.CardNumber)
	case models.AccountKindDeposit:
		return fmt.Sprintf("deposit %s", k.DepositKey)
	default:
		return k.Kind
	}
}
