package models

// SourceTag identifies the feed a raw record arrived from. Each tag owns a
// staging table family and a sign convention.
type SourceTag string

const (
	SourceILSChecking      SourceTag = "ils_checking"
	SourceEURChecking      SourceTag = "eur_checking"
	SourceUSDChecking      SourceTag = "usd_checking"
	SourceGBPChecking      SourceTag = "gbp_checking"
	SourceCADChecking      SourceTag = "cad_checking"
	SourceDiscountChecking SourceTag = "discount_checking"
	SourceSwift            SourceTag = "swift"
	SourceDeposit          SourceTag = "deposit"
	SourceIsracard         SourceTag = "isracard"
	SourceAmex             SourceTag = "amex"
	SourceCal              SourceTag = "cal"
	SourceMax              SourceTag = "max"
)

// Currency is the closed canonical currency set.
type Currency string

const (
	ILS Currency = "ILS"
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	CAD Currency = "CAD"
)
