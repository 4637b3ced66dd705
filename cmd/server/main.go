package main

import (
	"log"
	"time"

	"charge-ledger-backend/internal/config"
	"charge-ledger-backend/internal/models"
	"charge-ledger-backend/internal/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system env")
	}

	cfg := config.Load()
	db := config.InitDB(cfg)

	db.AutoMigrate(
		&models.FinancialAccount{},
		&models.CheckingRecord{},
		&models.SwiftRecord{},
		&models.DepositRecord{},
		&models.CardRecord{},
		&models.Envelope{},
		&models.Charge{},
		&models.Transaction{},
	)

	r := gin.Default()
	// CORS config
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, db, cfg)

	r.Run(cfg.HTTPAddr)
}
