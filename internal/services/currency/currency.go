// Package currency maps source-native currency labels and direction codes to
// the canonical currency set and signed amounts.
package currency

import (
	"strings"

	"github.com/shopspring/decimal"

	"charge-ledger-backend/internal/models"
)

// tokens maps the free-text and numeric labels seen across the feeds. Bank
// feeds mix Hebrew names, English names, ISO codes and numeric ISO-4217
// codes, sometimes within one statement.
var tokens = map[string]models.Currency{
	// ISO / English
	"ILS": models.ILS, "NIS": models.ILS, "SHEKEL": models.ILS,
	"USD": models.USD, "DOLLAR": models.USD,
	"EUR": models.EUR, "EURO": models.EUR,
	"GBP": models.GBP, "POUND": models.GBP,
	"CAD": models.CAD,
	// Numeric ISO-4217
	"376": models.ILS,
	"840": models.USD,
	"978": models.EUR,
	"826": models.GBP,
	"124": models.CAD,
	// Hebrew
	"שח":        models.ILS,
	"ש\"ח":      models.ILS,
	"שקל":       models.ILS,
	"דולר":      models.USD,
	"אירו":      models.EUR,
	"יורו":      models.EUR,
	"ליש\"ט":    models.GBP,
	"לישט":      models.GBP,
	"דולר קנדי": models.CAD,
}

// Parse resolves a raw currency token. Unknown tokens resolve to the source
// default with ok=false; callers log the token but do not fail the record.
// The lossy default is deliberate — see the error-handling notes in DESIGN.md.
func Parse(token string, fallback models.Currency) (models.Currency, bool) {
	key := strings.ToUpper(strings.TrimSpace(token))
	if c, ok := tokens[key]; ok {
		return c, true
	}
	return fallback, false
}

// Signed applies a direction to an unsigned source amount. Negative means
// outflow.
func Signed(amount decimal.Decimal, sign int) decimal.Decimal {
	if sign < 0 {
		return amount.Abs().Neg()
	}
	return amount.Abs()
}
