package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"charge-ledger-backend/internal/repository"
)

// LedgerHandler exposes read-only views over charges and transactions for
// the downstream query layer.
type LedgerHandler struct {
	charges      *repository.ChargeRepository
	transactions *repository.TransactionRepository
}

func NewLedgerHandler(charges *repository.ChargeRepository, transactions *repository.TransactionRepository) *LedgerHandler {
	return &LedgerHandler{charges: charges, transactions: transactions}
}

// GetCharge returns one charge with its transactions.
func (h *LedgerHandler) GetCharge(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid charge ID"})
		return
	}

	charge, err := h.charges.GetByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "charge not found"})
		return
	}
	txs, err := h.charges.Transactions(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"charge": charge, "transactions": txs})
}

// ListAccountTransactions pages through one account's canonical
// transactions with an id cursor.
func (h *LedgerHandler) ListAccountTransactions(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account ID"})
		return
	}

	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	txs, nextCursor, hasMore, err := h.transactions.ListByAccount(accountID, c.Query("cursor"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"transactions": txs,
		"next_cursor":  nextCursor,
		"has_more":     hasMore,
	})
}
