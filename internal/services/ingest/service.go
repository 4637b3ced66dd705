// Package ingest runs the per-record reconciliation pipeline: staging row →
// envelope → account resolution → charge matching → fee classification →
// canonical transaction. One record, one database transaction; any stage
// failure rolls back every write for that record.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"charge-ledger-backend/internal/models"
	"charge-ledger-backend/internal/repository"
	"charge-ledger-backend/internal/services/currency"
	"charge-ledger-backend/internal/services/fees"
	"charge-ledger-backend/internal/services/matching"
)

// ErrUnknownSource means the record names a feed no strategy record covers.
var ErrUnknownSource = errors.New("unknown source")

type Service struct {
	db           *gorm.DB
	accounts     *repository.AccountRepository
	envelopes    *repository.EnvelopeRepository
	charges      *repository.ChargeRepository
	transactions *repository.TransactionRepository
	matcher      *matching.Matcher
	classifier   *fees.Classifier
}

func NewService(
	db *gorm.DB,
	accounts *repository.AccountRepository,
	envelopes *repository.EnvelopeRepository,
	charges *repository.ChargeRepository,
	transactions *repository.TransactionRepository,
	matcher *matching.Matcher,
	classifier *fees.Classifier,
) *Service {
	return &Service{
		db:           db,
		accounts:     accounts,
		envelopes:    envelopes,
		charges:      charges,
		transactions: transactions,
		matcher:      matcher,
		classifier:   classifier,
	}
}

// Result reports one pipeline run. TransactionID is nil for envelope-only
// outcomes (a SWIFT message with no positive fee).
type Result struct {
	EnvelopeID    uuid.UUID
	TransactionID *uuid.UUID
	ChargeID      *uuid.UUID
	IsFee         bool
	// CurrencyDefaulted flags the lossy unknown-token fallback.
	CurrencyDefaulted bool
}

// CheckingInput is one raw bank checking row, any currency.
type CheckingInput struct {
	Source        models.SourceTag
	SourceLocalID string

	BankNumber    string
	BranchNumber  string
	AccountNumber string

	CurrencyToken string
	ActivityCode  int
	TextCode      int
	Amount        decimal.Decimal
	Balance       *decimal.Decimal

	ReferenceNumber          string
	CatenatedReferenceNumber string
	ValueDate                time.Time
	EventDate                time.Time

	Description         string
	ActivityDescription string
	CounterBank         string
	CounterBranch       string
	CounterAccount      string

	Raw json.RawMessage
}

// IngestChecking runs the pipeline for one checking row.
func (s *Service) IngestChecking(ctx context.Context, in CheckingInput) (*Result, error) {
	src, ok := SourceFor(in.Source)
	if !ok || src.Family != FamilyChecking {
		return nil, fmt.Errorf("%w: %q is not a checking source", ErrUnknownSource, in.Source)
	}

	cur, known := currency.Parse(in.CurrencyToken, src.DefaultCurrency)
	if !known && in.CurrencyToken != "" {
		log.Printf("currency token %q unknown for %s/%s, defaulting to %s",
			in.CurrencyToken, in.Source, in.SourceLocalID, cur)
	}

	amount := in.Amount
	if !src.Presigned {
		sign, err := currency.SignFor(in.Source, in.ActivityCode)
		if err != nil {
			return nil, err
		}
		amount = currency.Signed(in.Amount, sign)
	}

	var res Result
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec := models.CheckingRecord{
			ID:                       uuid.New(),
			SourceTag:                in.Source,
			SourceLocalID:            in.SourceLocalID,
			BankNumber:               in.BankNumber,
			BranchNumber:             in.BranchNumber,
			AccountNumber:            in.AccountNumber,
			Currency:                 cur,
			ActivityCode:             in.ActivityCode,
			TextCode:                 in.TextCode,
			Amount:                   in.Amount,
			Balance:                  in.Balance,
			ReferenceNumber:          in.ReferenceNumber,
			CatenatedReferenceNumber: in.CatenatedReferenceNumber,
			ValueDate:                in.ValueDate,
			EventDate:                in.EventDate,
			Description:              in.Description,
			CounterBank:              in.CounterBank,
			CounterBranch:            in.CounterBranch,
			CounterAccount:           in.CounterAccount,
			RawPayload:               []byte(in.Raw),
			CreatedAt:                time.Now(),
		}
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}

		envID, err := s.envelopes.Wrap(tx, in.Source, in.SourceLocalID,
			repository.StagingRef{CheckingRecordID: &rec.ID})
		if err != nil {
			return err
		}

		accountID, ownerID, err := s.accounts.Resolve(tx, repository.AccountKey{
			Kind:          models.AccountKindChecking,
			BankNumber:    in.BankNumber,
			BranchNumber:  in.BranchNumber,
			AccountNumber: in.AccountNumber,
		})
		if err != nil {
			return err
		}

		chargeID, err := s.matchOrCreateCharge(tx, src, &rec, ownerID)
		if err != nil {
			return err
		}

		isFee := s.classifier.IsFee(in.Source, in.ActivityCode, in.TextCode, amount)

		t := models.Transaction{
			ID:             uuid.New(),
			AccountID:      accountID,
			ChargeID:       chargeID,
			EnvelopeID:     envID,
			Currency:       cur,
			EventDate:      in.EventDate,
			DebitDate:      &in.ValueDate,
			Amount:         amount,
			Balance:        in.Balance,
			Description:    joinNonEmpty(in.Description, in.ActivityDescription),
			CounterAccount: counterLabel(in.CounterBank, in.CounterBranch, in.CounterAccount),
			IsFee:          isFee,
			SourceTag:      in.Source,
			SourceLocalID:  in.SourceLocalID,
			CreatedAt:      time.Now(),
		}
		if err := s.transactions.Create(tx, &t); err != nil {
			return err
		}

		res = Result{
			EnvelopeID:        envID,
			TransactionID:     &t.ID,
			ChargeID:          &chargeID,
			IsFee:             isFee,
			CurrencyDefaulted: !known && in.CurrencyToken != "",
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// matchOrCreateCharge is the single branch point of the pipeline: join the
// charge of an already-landed sibling record, or mint a new one.
func (s *Service) matchOrCreateCharge(tx *gorm.DB, src Source, rec *models.CheckingRecord, ownerID uuid.UUID) (uuid.UUID, error) {
	switch {
	case src.isConversion(rec.ActivityCode, rec.TextCode):
		matched, err := s.matcher.MatchConversion(tx, rec, ownerID)
		if err != nil {
			return uuid.Nil, err
		}
		if matched != nil {
			return *matched, nil
		}
		return s.charges.Create(tx, ownerID, models.ChargeTypeConversion, map[string]interface{}{
			"predicate":        "conversion",
			"reference_number": rec.ReferenceNumber,
			"matched":          false,
		})

	case src.isTransfer(rec.ActivityCode):
		matched, err := s.matcher.MatchTransfer(tx, rec, ownerID)
		if err != nil {
			return uuid.Nil, err
		}
		if matched != nil {
			return *matched, nil
		}
		return s.charges.Create(tx, ownerID, "", map[string]interface{}{
			"predicate":        "transfer",
			"reference_number": rec.ReferenceNumber,
			"matched":          false,
		})

	default:
		return s.charges.Create(tx, ownerID, "", nil)
	}
}

// SwiftInput is one raw SWIFT transfer message.
type SwiftInput struct {
	SourceLocalID string

	BankNumber    string
	BranchNumber  string
	AccountNumber string

	CurrencyToken    string
	InstructedAmount decimal.Decimal
	SettledAmount    decimal.Decimal
	Direction        string

	Counterparty string
	ValueDate    time.Time
	Description  string

	Raw json.RawMessage
}

// IngestSwift stages a SWIFT message and, when the instructed/settled
// difference is strictly positive, writes the fee transaction linked to the
// transfer's charge where one can be found. Messages without a positive fee
// land envelope-only: dedup still applies, but the transfer movement itself
// arrives through the checking feed.
func (s *Service) IngestSwift(ctx context.Context, in SwiftInput) (*Result, error) {
	if _, err := currency.SignForSwift(in.Direction); err != nil {
		return nil, err
	}

	cur, known := currency.Parse(in.CurrencyToken, models.USD)
	if !known && in.CurrencyToken != "" {
		log.Printf("currency token %q unknown for swift/%s, defaulting to %s",
			in.CurrencyToken, in.SourceLocalID, cur)
	}

	fee := in.InstructedAmount.Sub(in.SettledAmount)

	var res Result
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec := models.SwiftRecord{
			ID:               uuid.New(),
			SourceLocalID:    in.SourceLocalID,
			AccountNumber:    in.AccountNumber,
			Currency:         cur,
			InstructedAmount: in.InstructedAmount,
			SettledAmount:    in.SettledAmount,
			Direction:        in.Direction,
			Counterparty:     in.Counterparty,
			ValueDate:        in.ValueDate,
			Description:      in.Description,
			RawPayload:       []byte(in.Raw),
			CreatedAt:        time.Now(),
		}
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}

		envID, err := s.envelopes.Wrap(tx, models.SourceSwift, in.SourceLocalID,
			repository.StagingRef{SwiftRecordID: &rec.ID})
		if err != nil {
			return err
		}

		accountID, ownerID, err := s.accounts.Resolve(tx, repository.AccountKey{
			Kind:          models.AccountKindChecking,
			BankNumber:    in.BankNumber,
			BranchNumber:  in.BranchNumber,
			AccountNumber: in.AccountNumber,
		})
		if err != nil {
			return err
		}

		if !fee.IsPositive() {
			res = Result{EnvelopeID: envID, CurrencyDefaulted: !known && in.CurrencyToken != ""}
			return nil
		}

		matched, err := s.matcher.MatchSwiftFee(tx, &rec, ownerID)
		if err != nil {
			return err
		}
		var chargeID uuid.UUID
		if matched != nil {
			chargeID = *matched
		} else {
			chargeID, err = s.charges.Create(tx, ownerID, "", map[string]interface{}{
				"predicate":    "swift_fee",
				"counterparty": rec.Counterparty,
				"matched":      false,
			})
			if err != nil {
				return err
			}
		}

		t := models.Transaction{
			ID:            uuid.New(),
			AccountID:     accountID,
			ChargeID:      chargeID,
			EnvelopeID:    envID,
			Currency:      cur,
			EventDate:     in.ValueDate,
			DebitDate:     &in.ValueDate,
			Amount:        fee.Neg(),
			Description:   joinNonEmpty("Transfer fee", in.Counterparty, in.Description),
			IsFee:         true,
			SourceTag:     models.SourceSwift,
			SourceLocalID: in.SourceLocalID,
			CreatedAt:     time.Now(),
		}
		if err := s.transactions.Create(tx, &t); err != nil {
			return err
		}

		res = Result{
			EnvelopeID:        envID,
			TransactionID:     &t.ID,
			ChargeID:          &chargeID,
			IsFee:             true,
			CurrencyDefaulted: !known && in.CurrencyToken != "",
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// DepositInput is one deposit snapshot movement.
type DepositInput struct {
	SourceLocalID string
	DepositKey    string
	CurrencyToken string
	Amount        decimal.Decimal // signed
	SnapshotDate  time.Time
	Raw           json.RawMessage
}

// IngestDeposit correlates successive snapshots of one deposit under a
// single bank_deposit charge: the first movement mints the charge, later
// movements on the same account join it.
func (s *Service) IngestDeposit(ctx context.Context, in DepositInput) (*Result, error) {
	cur, known := currency.Parse(in.CurrencyToken, models.ILS)
	if !known && in.CurrencyToken != "" {
		log.Printf("currency token %q unknown for deposit/%s, defaulting to %s",
			in.CurrencyToken, in.SourceLocalID, cur)
	}

	var res Result
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec := models.DepositRecord{
			ID:            uuid.New(),
			SourceLocalID: in.SourceLocalID,
			DepositKey:    in.DepositKey,
			Currency:      cur,
			Amount:        in.Amount,
			SnapshotDate:  in.SnapshotDate,
			RawPayload:    []byte(in.Raw),
			CreatedAt:     time.Now(),
		}
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}

		envID, err := s.envelopes.Wrap(tx, models.SourceDeposit, in.SourceLocalID,
			repository.StagingRef{DepositRecordID: &rec.ID})
		if err != nil {
			return err
		}

		accountID, ownerID, err := s.accounts.Resolve(tx, repository.AccountKey{
			Kind:       models.AccountKindDeposit,
			DepositKey: in.DepositKey,
		})
		if err != nil {
			return err
		}

		chargeID, err := s.depositCharge(tx, accountID, ownerID)
		if err != nil {
			return err
		}

		t := models.Transaction{
			ID:            uuid.New(),
			AccountID:     accountID,
			ChargeID:      chargeID,
			EnvelopeID:    envID,
			Currency:      cur,
			EventDate:     in.SnapshotDate,
			Amount:        in.Amount,
			Description:   joinNonEmpty("Deposit", in.DepositKey),
			SourceTag:     models.SourceDeposit,
			SourceLocalID: in.SourceLocalID,
			CreatedAt:     time.Now(),
		}
		if err := s.transactions.Create(tx, &t); err != nil {
			return err
		}

		res = Result{
			EnvelopeID:        envID,
			TransactionID:     &t.ID,
			ChargeID:          &chargeID,
			CurrencyDefaulted: !known && in.CurrencyToken != "",
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// depositCharge reuses the bank_deposit charge of the account's latest
// movement, or mints one.
func (s *Service) depositCharge(tx *gorm.DB, accountID, ownerID uuid.UUID) (uuid.UUID, error) {
	var prior models.Transaction
	err := tx.Where("account_id = ?", accountID).Order("created_at DESC").First(&prior).Error
	if err == nil {
		var charge models.Charge
		if err := tx.First(&charge, "id = ?", prior.ChargeID).Error; err != nil {
			return uuid.Nil, err
		}
		if charge.Type == models.ChargeTypeBankDeposit {
			return charge.ID, nil
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, err
	}
	return s.charges.Create(tx, ownerID, models.ChargeTypeBankDeposit, nil)
}

// CardInput is one raw card-processor row.
type CardInput struct {
	Source        models.SourceTag
	SourceLocalID string
	CardNumber    string

	CurrencyToken   string
	Amount          decimal.Decimal // pre-signed by the importer
	MerchantName    string
	MerchantAddress string
	EventDate       time.Time
	DebitDate       *time.Time

	Raw json.RawMessage
}

// IngestCard runs the pipeline for one card row. Card rows never match an
// existing charge; every purchase or refund is its own economic event.
func (s *Service) IngestCard(ctx context.Context, in CardInput) (*Result, error) {
	src, ok := SourceFor(in.Source)
	if !ok || src.Family != FamilyCard {
		return nil, fmt.Errorf("%w: %q is not a card source", ErrUnknownSource, in.Source)
	}

	cur, known := currency.Parse(in.CurrencyToken, src.DefaultCurrency)
	if !known && in.CurrencyToken != "" {
		log.Printf("currency token %q unknown for %s/%s, defaulting to %s",
			in.CurrencyToken, in.Source, in.SourceLocalID, cur)
	}

	var res Result
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec := models.CardRecord{
			ID:              uuid.New(),
			SourceTag:       in.Source,
			SourceLocalID:   in.SourceLocalID,
			CardNumber:      in.CardNumber,
			Currency:        cur,
			Amount:          in.Amount,
			MerchantName:    in.MerchantName,
			MerchantAddress: in.MerchantAddress,
			EventDate:       in.EventDate,
			DebitDate:       in.DebitDate,
			RawPayload:      []byte(in.Raw),
			CreatedAt:       time.Now(),
		}
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}

		envID, err := s.envelopes.Wrap(tx, in.Source, in.SourceLocalID,
			repository.StagingRef{CardRecordID: &rec.ID})
		if err != nil {
			return err
		}

		accountID, ownerID, err := s.accounts.Resolve(tx, repository.AccountKey{
			Kind:       models.AccountKindCard,
			CardNumber: in.CardNumber,
		})
		if err != nil {
			return err
		}

		chargeID, err := s.charges.Create(tx, ownerID, "", nil)
		if err != nil {
			return err
		}

		isFee := s.classifier.IsFee(in.Source, 0, 0, in.Amount)

		t := models.Transaction{
			ID:            uuid.New(),
			AccountID:     accountID,
			ChargeID:      chargeID,
			EnvelopeID:    envID,
			Currency:      cur,
			EventDate:     in.EventDate,
			DebitDate:     in.DebitDate,
			Amount:        in.Amount,
			Description:   joinNonEmpty(in.MerchantName, in.MerchantAddress),
			IsFee:         isFee,
			SourceTag:     in.Source,
			SourceLocalID: in.SourceLocalID,
			CreatedAt:     time.Now(),
		}
		if err := s.transactions.Create(tx, &t); err != nil {
			return err
		}

		res = Result{
			EnvelopeID:        envID,
			TransactionID:     &t.ID,
			ChargeID:          &chargeID,
			IsFee:             isFee,
			CurrencyDefaulted: !known && in.CurrencyToken != "",
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// joinNonEmpty concatenates human-readable fields, eliding the empty ones.
func joinNonEmpty(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, strings.TrimSpace(p))
		}
	}
	return strings.Join(kept, " ")
}

// counterLabel formats the counter-account as bank-branch-account. Absent or
// all-zero account numbers mean no counter account was reported.
func counterLabel(bank, branch, account string) string {
	if account == "" || strings.Trim(account, "0") == "" {
		return ""
	}
	return fmt.Sprintf("%s-%s-%s", bank, branch, account)
}
