package routes

import (
	"log"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"charge-ledger-backend/internal/config"
	handler "charge-ledger-backend/internal/handlers"
	"charge-ledger-backend/internal/repository"
	"charge-ledger-backend/internal/services/fees"
	"charge-ledger-backend/internal/services/ingest"
	"charge-ledger-backend/internal/services/matching"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	accountRepo := repository.NewAccountRepository(db)
	envelopeRepo := repository.NewEnvelopeRepository(db)
	chargeRepo := repository.NewChargeRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)

	classifier := fees.NewClassifier()
	if cfg.FeeRulesFile != "" {
		loaded, err := fees.LoadClassifier(cfg.FeeRulesFile)
		if err != nil {
			log.Fatalf("load fee rules from %s: %v", cfg.FeeRulesFile, err)
		}
		classifier = loaded
	}

	matcher := matching.NewMatcher(cfg.MatchSerialize)

	ingestService := ingest.NewService(
		db,
		accountRepo,
		envelopeRepo,
		chargeRepo,
		transactionRepo,
		matcher,
		classifier,
	)

	feedHandler := handler.NewFeedHandler(ingestService)
	ledgerHandler := handler.NewLedgerHandler(chargeRepo, transactionRepo)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Feed producer routes: one endpoint per source family
	feeds := api.Group("/feeds")
	feeds.POST("/checking", feedHandler.PostChecking)
	feeds.POST("/swift", feedHandler.PostSwift)
	feeds.POST("/deposits", feedHandler.PostDeposits)
	feeds.POST("/cards/:source", feedHandler.PostCards)

	// Ledger read routes
	api.GET("/charges/:id", ledgerHandler.GetCharge)
	api.GET("/accounts/:id/transactions", ledgerHandler.ListAccountTransactions)
}
