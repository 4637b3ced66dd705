package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Config struct {
	DatabaseDSN string
	HTTPAddr    string
	CORSOrigins []string

	// MatchSerialize turns on per-reference-number advisory locking in the
	// charge matcher. Postgres only; without it, concurrent legs of one
	// conversion may end up on two charges.
	MatchSerialize bool

	// FeeRulesFile optionally replaces the built-in fee rule table.
	FeeRulesFile string
}

func Load() Config {
	cfg := Config{
		DatabaseDSN:    getenv("DATABASE_DSN", "host=localhost user=postgres dbname=charge_ledger port=5432 sslmode=disable"),
		HTTPAddr:       getenv("HTTP_ADDR", ":8080"),
		CORSOrigins:    strings.Split(getenv("CORS_ORIGINS", "http://localhost:3000"), ","),
		MatchSerialize: getenv("MATCH_SERIALIZE", "false") == "true",
		FeeRulesFile:   os.Getenv("FEE_RULES_FILE"),
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// InitDB opens the Postgres connection. TranslateError is required: the
// envelope dedup path relies on gorm.ErrDuplicatedKey.
func InitDB(cfg Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		log.Fatal(fmt.Errorf("connect database: %w", err))
	}
	return db
}
