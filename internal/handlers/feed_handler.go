package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"charge-ledger-backend/internal/models"
	"charge-ledger-backend/internal/services/ingest"
)

// FeedHandler is the surface the feed producers (bank scrapers, card
// importers, SWIFT parsers, deposit snapshot jobs) push raw records into.
// Each record runs the pipeline synchronously; the response reports the
// outcome per record, so a failed record never hides behind a batch status.
type FeedHandler struct {
	service *ingest.Service
}

func NewFeedHandler(s *ingest.Service) *FeedHandler {
	return &FeedHandler{service: s}
}

type feedResult struct {
	SourceLocalID     string  `json:"source_local_id"`
	TransactionID     *string `json:"transaction_id,omitempty"`
	ChargeID          *string `json:"charge_id,omitempty"`
	IsFee             bool    `json:"is_fee"`
	CurrencyDefaulted bool    `json:"currency_defaulted,omitempty"`
	Error             string  `json:"error,omitempty"`
}

func resultFor(localID string, res *ingest.Result, err error) feedResult {
	out := feedResult{SourceLocalID: localID}
	if err != nil {
		out.Error = err.Error()
		return out
	}
	if res.TransactionID != nil {
		s := res.TransactionID.String()
		out.TransactionID = &s
	}
	if res.ChargeID != nil {
		s := res.ChargeID.String()
		out.ChargeID = &s
	}
	out.IsFee = res.IsFee
	out.CurrencyDefaulted = res.CurrencyDefaulted
	return out
}

type checkingRequest struct {
	Source                   string           `json:"source"`
	SourceLocalID            string           `json:"source_local_id"`
	BankNumber               string           `json:"bank_number"`
	BranchNumber             string           `json:"branch_number"`
	AccountNumber            string           `json:"account_number"`
	Currency                 string           `json:"currency"`
	ActivityCode             int              `json:"activity_code"`
	TextCode                 int              `json:"text_code"`
	Amount                   decimal.Decimal  `json:"amount"`
	Balance                  *decimal.Decimal `json:"balance"`
	ReferenceNumber          string           `json:"reference_number"`
	CatenatedReferenceNumber string           `json:"catenated_reference_number"`
	ValueDate                string           `json:"value_date"`
	EventDate                string           `json:"event_date"`
	Description              string           `json:"description"`
	ActivityDescription      string           `json:"activity_description"`
	CounterBank              string           `json:"counter_bank"`
	CounterBranch            string           `json:"counter_branch"`
	CounterAccount           string           `json:"counter_account"`
	Raw                      json.RawMessage  `json:"raw"`
}

// PostChecking ingests a batch of checking rows.
func (h *FeedHandler) PostChecking(c *gin.Context) {
	var reqs []checkingRequest
	if err := c.BindJSON(&reqs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	results := make([]feedResult, 0, len(reqs))
	for _, req := range reqs {
		valueDate, err := parseDate(req.ValueDate)
		if err != nil {
			results = append(results, feedResult{SourceLocalID: req.SourceLocalID, Error: "invalid value_date"})
			continue
		}
		eventDate, err := parseDate(req.EventDate)
		if err != nil {
			results = append(results, feedResult{SourceLocalID: req.SourceLocalID, Error: "invalid event_date"})
			continue
		}

		res, err := h.service.IngestChecking(c.Request.Context(), ingest.CheckingInput{
			Source:                   models.SourceTag(req.Source),
			SourceLocalID:            req.SourceLocalID,
			BankNumber:               req.BankNumber,
			BranchNumber:             req.BranchNumber,
			AccountNumber:            req.AccountNumber,
			CurrencyToken:            req.Currency,
			ActivityCode:             req.ActivityCode,
			TextCode:                 req.TextCode,
			Amount:                   req.Amount,
			Balance:                  req.Balance,
			ReferenceNumber:          req.ReferenceNumber,
			CatenatedReferenceNumber: req.CatenatedReferenceNumber,
			ValueDate:                valueDate,
			EventDate:                eventDate,
			Description:              req.Description,
			ActivityDescription:      req.ActivityDescription,
			CounterBank:              req.CounterBank,
			CounterBranch:            req.CounterBranch,
			CounterAccount:           req.CounterAccount,
			Raw:                      req.Raw,
		})
		results = append(results, resultFor(req.SourceLocalID, res, err))
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

type swiftRequest struct {
	SourceLocalID    string          `json:"source_local_id"`
	BankNumber       string          `json:"bank_number"`
	BranchNumber     string          `json:"branch_number"`
	AccountNumber    string          `json:"account_number"`
	Currency         string          `json:"currency"`
	InstructedAmount decimal.Decimal `json:"instructed_amount"`
	SettledAmount    decimal.Decimal `json:"settled_amount"`
	Direction        string          `json:"direction"`
	Counterparty     string          `json:"counterparty"`
	ValueDate        string          `json:"value_date"`
	Description      string          `json:"description"`
	Raw              json.RawMessage `json:"raw"`
}

// PostSwift ingests a batch of SWIFT transfer messages.
func (h *FeedHandler) PostSwift(c *gin.Context) {
	var reqs []swiftRequest
	if err := c.BindJSON(&reqs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	results := make([]feedResult, 0, len(reqs))
	for _, req := range reqs {
		valueDate, err := parseDate(req.ValueDate)
		if err != nil {
			results = append(results, feedResult{SourceLocalID: req.SourceLocalID, Error: "invalid value_date"})
			continue
		}

		res, err := h.service.IngestSwift(c.Request.Context(), ingest.SwiftInput{
			SourceLocalID:    req.SourceLocalID,
			BankNumber:       req.BankNumber,
			BranchNumber:     req.BranchNumber,
			AccountNumber:    req.AccountNumber,
			CurrencyToken:    req.Currency,
			InstructedAmount: req.InstructedAmount,
			SettledAmount:    req.SettledAmount,
			Direction:        req.Direction,
			Counterparty:     req.Counterparty,
			ValueDate:        valueDate,
			Description:      req.Description,
			Raw:              req.Raw,
		})
		results = append(results, resultFor(req.SourceLocalID, res, err))
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

type depositRequest struct {
	SourceLocalID string          `json:"source_local_id"`
	DepositKey    string          `json:"deposit_key"`
	Currency      string          `json:"currency"`
	Amount        decimal.Decimal `json:"amount"`
	SnapshotDate  string          `json:"snapshot_date"`
	Raw           json.RawMessage `json:"raw"`
}

// PostDeposits ingests a batch of deposit snapshot movements.
func (h *FeedHandler) PostDeposits(c *gin.Context) {
	var reqs []depositRequest
	if err := c.BindJSON(&reqs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	results := make([]feedResult, 0, len(reqs))
	for _, req := range reqs {
		snapshotDate, err := parseDate(req.SnapshotDate)
		if err != nil {
			results = append(results, feedResult{SourceLocalID: req.SourceLocalID, Error: "invalid snapshot_date"})
			continue
		}

		res, err := h.service.IngestDeposit(c.Request.Context(), ingest.DepositInput{
			SourceLocalID: req.SourceLocalID,
			DepositKey:    req.DepositKey,
			CurrencyToken: req.Currency,
			Amount:        req.Amount,
			SnapshotDate:  snapshotDate,
			Raw:           req.Raw,
		})
		results = append(results, resultFor(req.SourceLocalID, res, err))
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

type cardRequest struct {
	SourceLocalID   string          `json:"source_local_id"`
	CardNumber      string          `json:"card_number"`
	Currency        string          `json:"currency"`
	Amount          decimal.Decimal `json:"amount"`
	MerchantName    string          `json:"merchant_name"`
	MerchantAddress string          `json:"merchant_address"`
	EventDate       string          `json:"event_date"`
	DebitDate       string          `json:"debit_date"`
	Raw             json.RawMessage `json:"raw"`
}

// PostCards ingests a batch of card rows for one processor (the :source
// path segment: isracard, amex, cal, max).
func (h *FeedHandler) PostCards(c *gin.Context) {
	source := models.SourceTag(c.Param("source"))

	var reqs []cardRequest
	if err := c.BindJSON(&reqs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	results := make([]feedResult, 0, len(reqs))
	for _, req := range reqs {
		eventDate, err := parseDate(req.EventDate)
		if err != nil {
			results = append(results, feedResult{SourceLocalID: req.SourceLocalID, Error: "invalid event_date"})
			continue
		}
		var debitDate *time.Time
		if req.DebitDate != "" {
			d, err := parseDate(req.DebitDate)
			if err != nil {
				results = append(results, feedResult{SourceLocalID: req.SourceLocalID, Error: "invalid debit_date"})
				continue
			}
			debitDate = &d
		}

		res, err := h.service.IngestCard(c.Request.Context(), ingest.CardInput{
			Source:          source,
			SourceLocalID:   req.SourceLocalID,
			CardNumber:      req.CardNumber,
			CurrencyToken:   req.Currency,
			Amount:          req.Amount,
			MerchantName:    req.MerchantName,
			MerchantAddress: req.MerchantAddress,
			EventDate:       eventDate,
			DebitDate:       debitDate,
			Raw:             req.Raw,
		})
		results = append(results, resultFor(req.SourceLocalID, res, err))
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
