package ingest_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"charge-ledger-backend/internal/models"
	"charge-ledger-backend/internal/repository"
	"charge-ledger-backend/internal/services/currency"
	"charge-ledger-backend/internal/services/fees"
	"charge-ledger-backend/internal/services/ingest"
	"charge-ledger-backend/internal/services/matching"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "ledger.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&models.FinancialAccount{},
		&models.CheckingRecord{},
		&models.SwiftRecord{},
		&models.DepositRecord{},
		&models.CardRecord{},
		&models.Envelope{},
		&models.Charge{},
		&models.Transaction{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newService(db *gorm.DB) *ingest.Service {
	return ingest.NewService(
		db,
		repository.NewAccountRepository(db),
		repository.NewEnvelopeRepository(db),
		repository.NewChargeRepository(db),
		repository.NewTransactionRepository(db),
		matching.NewMatcher(false),
		fees.NewClassifier(),
	)
}

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedCheckingAccount(t *testing.T, db *gorm.DB, ownerID uuid.UUID, bank, branch, account string) uuid.UUID {
	t.Helper()
	acc := models.FinancialAccount{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		Kind:          models.AccountKindChecking,
		BankNumber:    bank,
		BranchNumber:  branch,
		AccountNumber: account,
	}
	if err := db.Create(&acc).Error; err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return acc.ID
}

func seedCardAccount(t *testing.T, db *gorm.DB, ownerID uuid.UUID, cardNumber string) uuid.UUID {
	t.Helper()
	acc := models.FinancialAccount{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		Kind:       models.AccountKindCard,
		CardNumber: cardNumber,
	}
	if err := db.Create(&acc).Error; err != nil {
		t.Fatalf("seed card account: %v", err)
	}
	return acc.ID
}

func seedDepositAccount(t *testing.T, db *gorm.DB, ownerID uuid.UUID, key string) uuid.UUID {
	t.Helper()
	acc := models.FinancialAccount{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		Kind:       models.AccountKindDeposit,
		DepositKey: key,
	}
	if err := db.Create(&acc).Error; err != nil {
		t.Fatalf("seed deposit account: %v", err)
	}
	return acc.ID
}

func count(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func eurFeeInput(localID string) ingest.CheckingInput {
	return ingest.CheckingInput{
		Source:        models.SourceEURChecking,
		SourceLocalID: localID,
		BankNumber:    "12",
		BranchNumber:  "345",
		AccountNumber: "67890",
		CurrencyToken: "EUR",
		ActivityCode:  1279,
		Amount:        dec("12.50"),
		ValueDate:     date("2024-01-05"),
		EventDate:     date("2024-01-05"),
		Description:   "service fee",
	}
}

func TestIngestChecking_FeeRecord(t *testing.T) {
	db := openTestDB(t)
	s := newService(db)
	seedCheckingAccount(t, db, uuid.New(), "12", "345", "67890")

	res, err := s.IngestChecking(context.Background(), eurFeeInput("eur-fee-1"))
	if err != nil {
		t.Fatalf("IngestChecking: %v", err)
	}
	if !res.IsFee {
		t.Fatalf("IsFee got=false want=true")
	}
	if res.TransactionID == nil || res.ChargeID == nil {
		t.Fatalf("result missing ids: %+v", res)
	}

	var tx models.Transaction
	if err := db.First(&tx, "id = ?", *res.TransactionID).Error; err != nil {
		t.Fatalf("load transaction: %v", err)
	}
	if tx.Currency != models.EUR {
		t.Fatalf("Currency got=%s want=EUR", tx.Currency)
	}
	if !tx.Amount.Equal(dec("-12.50")) {
		t.Fatalf("Amount got=%s want=-12.50", tx.Amount)
	}
	if tx.DebitDate == nil || !tx.DebitDate.Equal(date("2024-01-05")) {
		t.Fatalf("DebitDate got=%v want value date 2024-01-05", tx.DebitDate)
	}
	if !tx.IsFee {
		t.Fatalf("transaction IsFee got=false want=true")
	}
	if tx.ChargeID != *res.ChargeID {
		t.Fatalf("ChargeID got=%s want=%s", tx.ChargeID, *res.ChargeID)
	}

	// No prior sibling: the record starts its own charge.
	if n := count(t, db, &models.Charge{}); n != 1 {
		t.Fatalf("charges got=%d want=1", n)
	}
}

func TestIngestChecking_DuplicateRejected(t *testing.T) {
	db := openTestDB(t)
	s := newService(db)
	seedCheckingAccount(t, db, uuid.New(), "12", "345", "67890")

	if _, err := s.IngestChecking(context.Background(), eurFeeInput("dup-1")); err != nil {
		t.Fatalf("first ingest: %v", err)
	}
	_, err := s.IngestChecking(context.Background(), eurFeeInput("dup-1"))
	if !errors.Is(err, repository.ErrDuplicateRecord) {
		t.Fatalf("second ingest err got=%v want ErrDuplicateRecord", err)
	}

	// Exactly one of everything for that origin, and the rejected run left
	// no staging row behind.
	if n := count(t, db, &models.Envelope{}); n != 1 {
		t.Fatalf("envelopes got=%d want=1", n)
	}
	if n := count(t, db, &models.Transaction{}); n != 1 {
		t.Fatalf("transactions got=%d want=1", n)
	}
	if n := count(t, db, &models.CheckingRecord{}); n != 1 {
		t.Fatalf("checking records got=%d want=1", n)
	}
}

func TestIngestChecking_UnknownAccountWritesNothing(t *testing.T) {
	db := openTestDB(t)
	s := newService(db)
	// No account seeded.

	_, err := s.IngestChecking(context.Background(), eurFeeInput("orphan-1"))
	if !errors.Is(err, repository.ErrUnknownAccount) {
		t.Fatalf("err got=%v want ErrUnknownAccount", err)
	}

	if n := count(t, db, &models.CheckingRecord{}); n != 0 {
		t.Fatalf("checking records got=%d want=0", n)
	}
	if n := count(t, db, &models.Envelope{}); n != 0 {
		t.Fatalf("envelopes got=%d want=0", n)
	}
	if n := count(t, db, &models.Transaction{}); n != 0 {
		t.Fatalf("transactions got=%d want=0", n)
	}
}

func TestIngestChecking_UnknownActivityCodeWritesNothing(t *testing.T) {
	db := openTestDB(t)
	s := newService(db)
	seedCheckingAccount(t, db, uuid.New(), "12", "345", "67890")

	in := eurFeeInput("badcode-1")
	in.ActivityCode = 9999

	_, err := s.IngestChecking(context.Background(), in)
	if !errors.Is(err, currency.ErrUnknownActivityCode) {
		t.Fatalf("err got=%v want ErrUnknownActivityCode", err)
	}
	if n := count(t, db, &models.Envelope{}); n != 0 {
		t.Fatalf("envelopes got=%d want=0", n)
	}
}

func TestIngestChecking_CurrencyFallback(t *testing.T) {
	db := openTestDB(t)
	s := newService(db)
	seedCheckingAccount(t, db, uuid.New(), "12", "345", "67890")

	in := eurFeeInput("fallback-1")
	in.CurrencyToken = "מטבע עתיק"

	res, err := s.IngestChecking(context.Background(), in)
	if err != nil {
		t.Fatalf("IngestChecking: %v", err)
	}
	if !res.CurrencyDefaulted {
		t.Fatalf("CurrencyDefaulted got=false want=true")
	}
	var tx models.Transaction
	if err := db.First(&tx, "id = ?", *res.TransactionID).Error; err != nil {
		t.Fatalf("load transaction: %v", err)
	}
	if tx.Currency != models.EUR {
		t.Fatalf("fallback currency got=%s want=EUR (source default)", tx.Currency)
	}
}

func conversionLegs() (ils, eur ingest.CheckingInput) {
	ils = ingest.CheckingInput{
		Source:                   models.SourceILSChecking,
		SourceLocalID:            "ils-conv-1",
		BankNumber:               "12",
		BranchNumber:             "345",
		AccountNumber:            "11111",
		CurrencyToken:            "שח",
		ActivityCode:             51,
		TextCode:                 23,
		Amount:                   dec("4000"),
		ReferenceNumber:          "REF1",
		CatenatedReferenceNumber: "CAT1",
		ValueDate:                date("2024-01-10"),
		EventDate:                date("2024-01-10"),
		Description:              "exchange ils leg",
	}
	eur = ingest.CheckingInput{
		Source:                   models.SourceEURChecking,
		SourceLocalID:            "eur-conv-1",
		BankNumber:               "12",
		BranchNumber:             "345",
		AccountNumber:            "22222",
		CurrencyToken:            "EUR",
		ActivityCode:             957,
		Amount:                   dec("1000"),
		ReferenceNumber:          "REF1",
		CatenatedReferenceNumber: "CAT1",
		ValueDate:                date("2024-01-10"),
		EventDate:                date("2024-01-10"),
		Description:              "exchange eur leg",
	}
	return ils, eur
}

func TestConversionLinking_EitherOrder(t *testing.T) {
	ilsIn, eurIn := conversionLegs()

	orders := []struct {
		name          string
		first, second ingest.CheckingInput
	}{
		{"ils then eur", ilsIn, eurIn},
		{"eur then ils", eurIn, ilsIn},
	}

	for _, tt := range orders {
		t.Run(tt.name, func(t *testing.T) {
			db := openTestDB(t)
			s := newService(db)
			owner := uuid.New()
			seedCheckingAccount(t, db, owner, "12", "345", "11111")
			seedCheckingAccount(t, db, owner, "12", "345", "22222")

			first, err := s.IngestChecking(context.Background(), tt.first)
			if err != nil {
				t.Fatalf("first leg: %v", err)
			}
			second, err := s.IngestChecking(context.Background(), tt.second)
			if err != nil {
				t.Fatalf("second leg: %v", err)
			}

			if *first.ChargeID != *second.ChargeID {
				t.Fatalf("legs on different charges: %s vs %s", *first.ChargeID, *second.ChargeID)
			}
			if n := count(t, db, &models.Charge{}); n != 1 {
				t.Fatalf("charges got=%d want=1", n)
			}

			var charge models.Charge
			if err := db.First(&charge, "id = ?", *first.ChargeID).Error; err != nil {
				t.Fatalf("load charge: %v", err)
			}
			if charge.Type != models.ChargeTypeConversion {
				t.Fatalf("charge type got=%q want=%q", charge.Type, models.ChargeTypeConversion)
			}
			if charge.OwnerID != owner {
				t.Fatalf("charge owner got=%s want=%s", charge.OwnerID, owner)
			}
		})
	}
}

func TestConversionLinking_ScopedToOwner(t *testing.T) {
	db := openTestDB(t)
	s := newService(db)
	ownerA := uuid.New()
	ownerB := uuid.New()
	seedCheckingAccount(t, db, ownerA, "12", "345", "11111")
	seedCheckingAccount(t, db, ownerB, "12", "345", "22222")

	// Both legs carry the identical reference triple, but they belong to
	// different owners and must not share a charge.
	ilsIn, eurIn := conversionLegs()
	ilsRes, err := s.IngestChecking(context.Background(), ilsIn)
	if err != nil {
		t.Fatalf("ils leg: %v", err)
	}
	eurRes, err := s.IngestChecking(context.Background(), eurIn)
	if err != nil {
		t.Fatalf("eur leg: %v", err)
	}

	if *ilsRes.ChargeID == *eurRes.ChargeID {
		t.Fatalf("legs of different owners share charge %s", *ilsRes.ChargeID)
	}
	if n := count(t, db, &models.Charge{}); n != 2 {
		t.Fatalf("charges got=%d want=2", n)
	}

	var ilsCharge, eurCharge models.Charge
	if err := db.First(&ilsCharge, "id = ?", *ilsRes.ChargeID).Error; err != nil {
		t.Fatalf("load ils charge: %v", err)
	}
	if err := db.First(&eurCharge, "id = ?", *eurRes.ChargeID).Error; err != nil {
		t.Fatalf("load eur charge: %v", err)
	}
	if ilsCharge.OwnerID != ownerA {
		t.Fatalf("ils charge owner got=%s want=%s", ilsCharge.OwnerID, ownerA)
	}
	if eurCharge.OwnerID != ownerB {
		t.Fatalf("eur charge owner got=%s want=%s", eurCharge.OwnerID, ownerB)
	}
}

func TestConversionLinking_SignsFollowActivityCodes(t *testing.T) {
	db := openTestDB(t)
	s := newService(db)
	owner := uuid.New()
	seedCheckingAccount(t, db, owner, "12", "345", "11111")
	seedCheckingAccount(t, db, owner, "12", "345", "22222")

	ilsIn, eurIn := conversionLegs()
	ilsRes, err := s.IngestChecking(context.Background(), ilsIn)
	if err != nil {
		t.Fatalf("ils leg: %v", err)
	}
	eurRes, err := s.IngestChecking(context.Background(), eurIn)
	if err != nil {
		t.Fatalf("eur leg: %v", err)
	}

	var ilsTx, eurTx models.Transaction
	if err := db.First(&ilsTx, "id = ?", *ilsRes.TransactionID).Error; err != nil {
		t.Fatalf("load ils tx: %v", err)
	}
	if err := db.First(&eurTx, "id = ?", *eurRes.TransactionID).Error; err != nil {
		t.Fatalf("load eur tx: %v", err)
	}

	// ILS activity 51 is a debit, EUR activity 957 the bought leg.
	if !ilsTx.Amount.Equal(dec("-4000")) {
		t.Fatalf("ils amount got=%s want=-4000", ilsTx.Amount)
	}
	if !eurTx.Amount.Equal(dec("1000")) {
		t.Fatalf("eur amount got=%s want=1000", eurTx.Amount)
	}
}

func TestIngestSwift_FeeLinksToTransferCharge(t *testing.T) {
	db := openTestDB(t)
	s := newService(db)
	owner := uuid.New()
	seedCheckingAccount(t, db, owner, "12", "345", "22222")

	// The transfer leg lands through the EUR checking feed first.
	transfer := ingest.CheckingInput{
		Source:        models.SourceEURChecking,
		SourceLocalID: "eur-wire-1",
		BankNumber:    "12",
		BranchNumber:  "345",
		AccountNumber: "22222",
		CurrencyToken: "EUR",
		ActivityCode:  113,
		Amount:        dec("995"),
		ValueDate:     date("2024-04-02"),
		EventDate:     date("2024-04-02"),
		Description:   "PAYMENT ACME GMBH BERLIN",
	}
	transferRes, err := s.IngestChecking(context.Background(), transfer)
	if err != nil {
		t.Fatalf("ingest transfer: %v", err)
	}

	swiftRes, err := s.IngestSwift(context.Background(), ingest.SwiftInput{
		SourceLocalID:    "swift-1",
		BankNumber:       "12",
		BranchNumber:     "345",
		AccountNumber:    "22222",
		CurrencyToken:    "EUR",
		InstructedAmount: dec("1000"),
		SettledAmount:    dec("995"),
		Direction:        "O",
		Counterparty:     "Acme GmbH",
		ValueDate:        date("2024-04-02"),
	})
	if err != nil {
		t.Fatalf("ingest swift: %v", err)
	}

	if swiftRes.TransactionID == nil {
		t.Fatalf("swift fee should produce a transaction")
	}
	if !swiftRes.IsFee {
		t.Fatalf("swift IsFee got=false want=true")
	}
	if *swiftRes.ChargeID != *transferRes.ChargeID {
		t.Fatalf("fee charge got=%s want transfer charge %s", *swiftRes.ChargeID, *transferRes.ChargeID)
	}

	var feeTx models.Transaction
	if err := db.First(&feeTx, "id = ?", *swiftRes.TransactionID).Error; err != nil {
		t.Fatalf("load fee tx: %v", err)
	}
	if !feeTx.Amount.Equal(dec("-5")) {
		t.Fatalf("fee amount got=%s want=-5", feeTx.Amount)
	}
	if feeTx.DebitDate == nil || !feeTx.DebitDate.Equal(date("2024-04-02")) {
		t.Fatalf("fee DebitDate got=%v want value date 2024-04-02", feeTx.DebitDate)
	}
}

func TestIngestSwift_NoFeeLandsEnvelopeOnly(t *testing.T) {
	db := openTestDB(t)
	s := newService(db)
	seedCheckingAccount(t, db, uuid.New(), "12", "345", "22222")

	res, err := s.IngestSwift(context.Background(), ingest.SwiftInput{
		SourceLocalID:    "swift-nofee",
		BankNumber:       "12",
		BranchNumber:     "345",
		AccountNumber:    "22222",
		CurrencyToken:    "USD",
		InstructedAmount: dec("1000"),
		SettledAmount:    dec("1000"),
		Direction:        "I",
		Counterparty:     "Someone",
		ValueDate:        date("2024-04-10"),
	})
	if err != nil {
		t.Fatalf("ingest swift: %v", err)
	}
	if res.TransactionID != nil {
		t.Fatalf("no-fee swift should not produce a transaction")
	}
	if n := count(t, db, &models.Envelope{}); n != 1 {
		t.Fatalf("envelopes got=%d want=1", n)
	}
	if n := count(t, db, &models.Transaction{}); n != 0 {
		t.Fatalf("transactions got=%d want=0", n)
	}
}

func TestIngestSwift_UnmatchedFeeStillGetsCharge(t *testing.T) {
	db := openTestDB(t)
	s := newService(db)
	seedCheckingAccount(t, db, uuid.New(), "12", "345", "22222")

	res, err := s.IngestSwift(context.Background(), ingest.SwiftInput{
		SourceLocalID:    "swift-lonely",
		BankNumber:       "12",
		BranchNumber:     "345",
		AccountNumber:    "22222",
		CurrencyToken:    "USD",
		InstructedAmount: dec("200"),
		SettledAmount:    dec("185"),
		Direction:        "O",
		Counterparty:     "Unknown Counterparty",
		ValueDate:        date("2024-06-01"),
	})
	if err != nil {
		t.Fatalf("ingest swift: %v", err)
	}
	if res.ChargeID == nil || res.TransactionID == nil {
		t.Fatalf("unmatched fee must still get a charge and transaction: %+v", res)
	}
}

func TestIngestSwift_UnknownDirectionIsFatal(t *testing.T) {
	db := openTestDB(t)
	s := newService(db)
	seedCheckingAccount(t, db, uuid.New(), "12", "345", "22222")

	_, err := s.IngestSwift(context.Background(), ingest.SwiftInput{
		SourceLocalID:    "swift-baddir",
		AccountNumber:    "22222",
		InstructedAmount: dec("100"),
		SettledAmount:    dec("90"),
		Direction:        "Q",
		ValueDate:        date("2024-06-02"),
	})
	if !errors.Is(err, currency.ErrUnknownActivityCode) {
		t.Fatalf("err got=%v want ErrUnknownActivityCode", err)
	}
	if n := count(t, db, &models.Envelope{}); n != 0 {
		t.Fatalf("envelopes got=%d want=0", n)
	}
}

func TestIngestDeposit_SnapshotsShareOneCharge(t *testing.T) {
	db := openTestDB(t)
	s := newService(db)
	seedDepositAccount(t, db, uuid.New(), "dep-555")

	first, err := s.IngestDeposit(context.Background(), ingest.DepositInput{
		SourceLocalID: "dep-snap-1",
		DepositKey:    "dep-555",
		CurrencyToken: "שח",
		Amount:        dec("10000"),
		SnapshotDate:  date("2024-01-01"),
	})
	if err != nil {
		t.Fatalf("first snapshot: %v", err)
	}
	second, err := s.IngestDeposit(context.Background(), ingest.DepositInput{
		SourceLocalID: "dep-snap-2",
		DepositKey:    "dep-555",
		CurrencyToken: "שח",
		Amount:        dec("250.75"),
		SnapshotDate:  date("2024-02-01"),
	})
	if err != nil {
		t.Fatalf("second snapshot: %v", err)
	}

	if *first.ChargeID != *second.ChargeID {
		t.Fatalf("snapshots on different charges: %s vs %s", *first.ChargeID, *second.ChargeID)
	}
	var charge models.Charge
	if err := db.First(&charge, "id = ?", *first.ChargeID).Error; err != nil {
		t.Fatalf("load charge: %v", err)
	}
	if charge.Type != models.ChargeTypeBankDeposit {
		t.Fatalf("charge type got=%q want=%q", charge.Type, models.ChargeTypeBankDeposit)
	}
}

func TestIngestCard_NewChargePerRow(t *testing.T) {
	db := openTestDB(t)
	s := newService(db)
	seedCardAccount(t, db, uuid.New(), "4580-1111")

	debit := date("2024-03-02")
	res, err := s.IngestCard(context.Background(), ingest.CardInput{
		Source:          models.SourceIsracard,
		SourceLocalID:   "isr-1",
		CardNumber:      "4580-1111",
		CurrencyToken:   "שח",
		Amount:          dec("-89.90"),
		MerchantName:    "Super Pharm",
		MerchantAddress: "Tel Aviv",
		EventDate:       date("2024-03-01"),
		DebitDate:       &debit,
	})
	if err != nil {
		t.Fatalf("IngestCard: %v", err)
	}

	var tx models.Transaction
	if err := db.First(&tx, "id = ?", *res.TransactionID).Error; err != nil {
		t.Fatalf("load transaction: %v", err)
	}
	if tx.Description != "Super Pharm Tel Aviv" {
		t.Fatalf("Description got=%q want=%q", tx.Description, "Super Pharm Tel Aviv")
	}
	if tx.Currency != models.ILS {
		t.Fatalf("Currency got=%s want=ILS", tx.Currency)
	}
	if tx.DebitDate == nil || !tx.DebitDate.Equal(debit) {
		t.Fatalf("DebitDate got=%v want=%v", tx.DebitDate, debit)
	}

	// A second, unrelated row gets its own charge.
	res2, err := s.IngestCard(context.Background(), ingest.CardInput{
		Source:        models.SourceIsracard,
		SourceLocalID: "isr-2",
		CardNumber:    "4580-1111",
		CurrencyToken: "שח",
		Amount:        dec("-15"),
		MerchantName:  "Cafe",
		EventDate:     date("2024-03-03"),
	})
	if err != nil {
		t.Fatalf("second IngestCard: %v", err)
	}
	if *res.ChargeID == *res2.ChargeID {
		t.Fatalf("card rows must not share a charge")
	}
}

func TestIngestCard_UnknownCardIsFatal(t *testing.T) {
	db := openTestDB(t)
	s := newService(db)

	_, err := s.IngestCard(context.Background(), ingest.CardInput{
		Source:        models.SourceAmex,
		SourceLocalID: "amex-1",
		CardNumber:    "0000",
		CurrencyToken: "USD",
		Amount:        dec("-20"),
		MerchantName:  "Store",
		EventDate:     date("2024-03-01"),
	})
	if !errors.Is(err, repository.ErrUnknownAccount) {
		t.Fatalf("err got=%v want ErrUnknownAccount", err)
	}
	if n := count(t, db, &models.CardRecord{}); n != 0 {
		t.Fatalf("card records got=%d want=0", n)
	}
}

func TestIngest_UnknownSource(t *testing.T) {
	db := openTestDB(t)
	s := newService(db)

	_, err := s.IngestChecking(context.Background(), ingest.CheckingInput{
		Source:        "mystery_bank",
		SourceLocalID: "m-1",
	})
	if !errors.Is(err, ingest.ErrUnknownSource) {
		t.Fatalf("err got=%v want ErrUnknownSource", err)
	}

	// Family mismatch is rejected the same way.
	_, err = s.IngestCard(context.Background(), ingest.CardInput{
		Source:        models.SourceILSChecking,
		SourceLocalID: "m-2",
	})
	if !errors.Is(err, ingest.ErrUnknownSource) {
		t.Fatalf("family mismatch err got=%v want ErrUnknownSource", err)
	}
}

func TestCounterAccountLabel(t *testing.T) {
	db := openTestDB(t)
	s := newService(db)
	seedCheckingAccount(t, db, uuid.New(), "12", "345", "67890")

	in := eurFeeInput("counter-1")
	in.ActivityCode = 113 // transfer out, not a fee
	in.Amount = dec("500")
	in.CounterBank = "10"
	in.CounterBranch = "800"
	in.CounterAccount = "123456"

	res, err := s.IngestChecking(context.Background(), in)
	if err != nil {
		t.Fatalf("IngestChecking: %v", err)
	}
	var tx models.Transaction
	if err := db.First(&tx, "id = ?", *res.TransactionID).Error; err != nil {
		t.Fatalf("load transaction: %v", err)
	}
	if tx.CounterAccount != "10-800-123456" {
		t.Fatalf("CounterAccount got=%q want=%q", tx.CounterAccount, "10-800-123456")
	}

	// All-zero counter account means none was reported.
	in2 := eurFeeInput("counter-2")
	in2.ActivityCode = 113
	in2.CounterBank = "10"
	in2.CounterBranch = "800"
	in2.CounterAccount = "000000"
	res2, err := s.IngestChecking(context.Background(), in2)
	if err != nil {
		t.Fatalf("IngestChecking: %v", err)
	}
	var tx2 models.Transaction
	if err := db.First(&tx2, "id = ?", *res2.TransactionID).Error; err != nil {
		t.Fatalf("load transaction: %v", err)
	}
	if tx2.CounterAccount != "" {
		t.Fatalf("CounterAccount got=%q want empty", tx2.CounterAccount)
	}
}
