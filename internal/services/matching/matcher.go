// Package matching decides whether a raw record joins an existing charge or
// starts a new one. Three predicate families exist: currency-conversion legs,
// bank transfers, and SWIFT fee linking. All predicates are exact and scoped
// to one owner's accounts; there is no fuzzy matching and no amount
// tolerance, since a false join between unrelated records corrupts the
// ledger.
package matching

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"charge-ledger-backend/internal/models"
)

type Matcher struct {
	// serialize takes a per-reference-number advisory lock before the match
	// query (Postgres only). Off by default: concurrent legs of one
	// conversion can then race and produce two charges instead of one
	// linked pair, which downstream reporting tolerates.
	serialize bool
}

func NewMatcher(serialize bool) *Matcher {
	return &Matcher{serialize: serialize}
}

// MatchConversion looks for the opposite leg of a currency exchange: a
// checking record in another currency whose reference triple
// (reference number, catenated reference number, value date) is exactly
// equal and which already produced a canonical transaction on an account of
// the same owner. Returns the sibling transaction's charge id, or nil when
// the record starts its own charge. There is no retroactive re-link for
// legs that arrive later.
func (m *Matcher) MatchConversion(tx *gorm.DB, rec *models.CheckingRecord, ownerID uuid.UUID) (*uuid.UUID, error) {
	if err := m.lockReference(tx, rec.ReferenceNumber); err != nil {
		return nil, err
	}
	return m.matchReferenceTriple(tx, rec, ownerID, true)
}

// MatchTransfer is the transfer variant of conversion matching: the same
// triple-equality predicate without the different-currency restriction and
// without conversion semantics on the resulting charge.
func (m *Matcher) MatchTransfer(tx *gorm.DB, rec *models.CheckingRecord, ownerID uuid.UUID) (*uuid.UUID, error) {
	if err := m.lockReference(tx, rec.ReferenceNumber); err != nil {
		return nil, err
	}
	return m.matchReferenceTriple(tx, rec, ownerID, false)
}

func (m *Matcher) matchReferenceTriple(tx *gorm.DB, rec *models.CheckingRecord, ownerID uuid.UUID, crossCurrencyOnly bool) (*uuid.UUID, error) {
	// A record with no reference identifiers at all cannot be paired;
	// matching blanks against blanks would join unrelated movements.
	if rec.ReferenceNumber == "" && rec.CatenatedReferenceNumber == "" {
		return nil, nil
	}

	query := tx.
		Where("reference_number = ?", rec.ReferenceNumber).
		Where("catenated_reference_number = ?", rec.CatenatedReferenceNumber).
		Where("value_date = ?", rec.ValueDate).
		Where("id <> ?", rec.ID)
	if crossCurrencyOnly {
		query = query.Where("currency <> ?", rec.Currency)
	}

	var siblings []models.CheckingRecord
	if err := query.Find(&siblings).Error; err != nil {
		return nil, err
	}

	for i := range siblings {
		chargeID, err := chargeOfCheckingRecord(tx, siblings[i].ID, ownerID)
		if err != nil {
			return nil, err
		}
		if chargeID != nil {
			return chargeID, nil
		}
	}
	return nil, nil
}

// MatchSwiftFee links a transfer fee to the ledger row of the transfer
// itself. Callers invoke it only when the computed fee (instructed minus
// settled) is strictly positive. A checking record qualifies when its value
// date equals the message's value date and either its description carries a
// fragment of the counterparty name or its transaction amount is the exact
// negated instructed amount. Only records landed on accounts of the same
// owner qualify. A miss is not an error: fee charges are never dropped for
// lack of a link.
func (m *Matcher) MatchSwiftFee(tx *gorm.DB, rec *models.SwiftRecord, ownerID uuid.UUID) (*uuid.UUID, error) {
	var candidates []models.CheckingRecord
	err := tx.Where("value_date = ?", rec.ValueDate).Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	negInstructed := rec.InstructedAmount.Abs().Neg()
	for i := range candidates {
		cand := &candidates[i]

		byName := descriptionMentions(cand.Description, rec.Counterparty)
		chargeID, txAmount, err := chargeAndAmountOfCheckingRecord(tx, cand.ID, ownerID)
		if err != nil {
			return nil, err
		}
		if chargeID == nil {
			continue
		}
		byAmount := txAmount != nil && txAmount.Equal(negInstructed)
		if byName || byAmount {
			return chargeID, nil
		}
	}
	return nil, nil
}

// descriptionMentions reports whether any usable token of the counterparty
// name appears in the ledger description. Tokens shorter than four runes are
// skipped; they match too freely.
func descriptionMentions(description, counterparty string) bool {
	desc := strings.ToUpper(description)
	for _, token := range strings.Fields(strings.ToUpper(counterparty)) {
		if len([]rune(token)) < 4 {
			continue
		}
		if strings.Contains(desc, token) {
			return true
		}
	}
	return false
}

func chargeOfCheckingRecord(tx *gorm.DB, recordID, ownerID uuid.UUID) (*uuid.UUID, error) {
	chargeID, _, err := chargeAndAmountOfCheckingRecord(tx, recordID, ownerID)
	return chargeID, err
}

// chargeAndAmountOfCheckingRecord follows a staging row through its envelope
// to the canonical transaction. Rows that have not completed the pipeline
// yet, or whose transaction landed on another owner's account, resolve to
// nil: shared reference triples across owners must never join one charge.
func chargeAndAmountOfCheckingRecord(tx *gorm.DB, recordID, ownerID uuid.UUID) (*uuid.UUID, *decimal.Decimal, error) {
	var env models.Envelope
	err := tx.Where("checking_record_id = ?", recordID).First(&env).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	var t models.Transaction
	err = tx.Where("envelope_id = ?", env.ID).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	var account models.FinancialAccount
	if err := tx.First(&account, "id = ?", t.AccountID).Error; err != nil {
		return nil, nil, err
	}
	if account.OwnerID != ownerID {
		return nil, nil, nil
	}
	return &t.ChargeID, &t.Amount, nil
}

// lockReference serialises concurrent match attempts on one reference
// number. Postgres only; a no-op on other dialects, where the documented
// race stands.
func (m *Matcher) lockReference(tx *gorm.DB, referenceNumber string) error {
	if !m.serialize || referenceNumber == "" {
		return nil
	}
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	return tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", referenceNumber).Error
}
