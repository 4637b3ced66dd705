package ingest

import (
	"charge-ledger-backend/internal/models"
)

// Family groups sources by staging table and pipeline shape.
type Family int

const (
	FamilyChecking Family = iota
	FamilySwift
	FamilyDeposit
	FamilyCard
)

// Source is the per-source strategy record: one generic pipeline,
// parameterized by these entries, replaces one hand-written handler per
// bank/card feed.
type Source struct {
	Tag             models.SourceTag
	Family          Family
	DefaultCurrency models.Currency

	// Presigned feeds deliver signed amounts; the others need the activity
	// code sign table.
	Presigned bool

	// Codes that mark a record as one leg of a currency exchange.
	ConversionActivityCodes map[int]bool
	ConversionTextCodes     map[int]bool

	// Closed set of bank-to-bank transfer codes eligible for transfer
	// matching.
	TransferActivityCodes map[int]bool
}

var transferCodes = map[int]bool{113: true, 171: true}

var sources = map[models.SourceTag]Source{
	models.SourceILSChecking: {
		Tag:                   models.SourceILSChecking,
		Family:                FamilyChecking,
		DefaultCurrency:       models.ILS,
		ConversionTextCodes:   map[int]bool{22: true, 23: true},
		TransferActivityCodes: transferCodes,
	},
	models.SourceEURChecking: foreignChecking(models.SourceEURChecking, models.EUR),
	models.SourceUSDChecking: foreignChecking(models.SourceUSDChecking, models.USD),
	models.SourceGBPChecking: foreignChecking(models.SourceGBPChecking, models.GBP),
	models.SourceCADChecking: foreignChecking(models.SourceCADChecking, models.CAD),
	models.SourceDiscountChecking: {
		Tag:             models.SourceDiscountChecking,
		Family:          FamilyChecking,
		DefaultCurrency: models.ILS,
		Presigned:       true,
	},
	models.SourceSwift: {
		Tag:             models.SourceSwift,
		Family:          FamilySwift,
		DefaultCurrency: models.USD,
	},
	models.SourceDeposit: {
		Tag:             models.SourceDeposit,
		Family:          FamilyDeposit,
		DefaultCurrency: models.ILS,
		Presigned:       true,
	},
	models.SourceIsracard: card(models.SourceIsracard),
	models.SourceAmex:     card(models.SourceAmex),
	models.SourceCal:      card(models.SourceCal),
	models.SourceMax:      card(models.SourceMax),
}

func foreignChecking(tag models.SourceTag, cur models.Currency) Source {
	return Source{
		Tag:                     tag,
		Family:                  FamilyChecking,
		DefaultCurrency:         cur,
		ConversionActivityCodes: map[int]bool{884: true, 957: true},
		TransferActivityCodes:   transferCodes,
	}
}

func card(tag models.SourceTag) Source {
	return Source{
		Tag:             tag,
		Family:          FamilyCard,
		DefaultCurrency: models.ILS,
		Presigned:       true,
	}
}

// SourceFor returns the strategy record for a tag.
func SourceFor(tag models.SourceTag) (Source, bool) {
	s, ok := sources[tag]
	return s, ok
}

func (s Source) isConversion(activityCode, textCode int) bool {
	return s.ConversionActivityCodes[activityCode] || s.ConversionTextCodes[textCode]
}

func (s Source) isTransfer(activityCode int) bool {
	return s.TransferActivityCodes[activityCode]
}
