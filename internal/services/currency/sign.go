package currency

import (
	"errors"
	"fmt"

	"charge-ledger-backend/internal/models"
)

// ErrUnknownActivityCode means a record's activity code has no entry in its
// source's sign table. This is a hard failure: defaulting the direction can
// silently invert money flow.
var ErrUnknownActivityCode = errors.New("unknown activity code")

// Sign tables per source family. A code maps to -1 (outflow) or +1 (inflow).
var ilsSigns = map[int]int{
	1:    1,  // incoming credit
	51:   -1, // outgoing debit
	113:  -1, // outgoing bank transfer
	171:  1,  // incoming bank transfer
	452:  -1, // account commission
	473:  -1, // standing order
	1279: -1, // service fee
	1376: 1,  // interest credit
}

var foreignSigns = map[int]int{
	2:    1,  // incoming credit
	52:   -1, // outgoing debit
	113:  -1, // outgoing bank transfer
	171:  1,  // incoming bank transfer
	884:  -1, // exchange: sold leg
	957:  1,  // exchange: bought leg
	1279: -1, // service fee
}

var signTables = map[models.SourceTag]map[int]int{
	models.SourceILSChecking: ilsSigns,
	models.SourceEURChecking: foreignSigns,
	models.SourceUSDChecking: foreignSigns,
	models.SourceGBPChecking: foreignSigns,
	models.SourceCADChecking: foreignSigns,
}

// SignFor derives the direction of a checking record from its activity code.
// Sources whose feeds arrive pre-signed never call this.
func SignFor(source models.SourceTag, activityCode int) (int, error) {
	table, ok := signTables[source]
	if !ok {
		return 0, fmt.Errorf("%w: no sign table for source %q", ErrUnknownActivityCode, source)
	}
	sign, ok := table[activityCode]
	if !ok {
		return 0, fmt.Errorf("%w: source %q code %d", ErrUnknownActivityCode, source, activityCode)
	}
	return sign, nil
}

// SignForSwift derives direction from the transfer direction flag of a SWIFT
// message: "O" outgoing, "I" incoming.
func SignForSwift(direction string) (int, error) {
	switch direction {
	case "O":
		return -1, nil
	case "I":
		return 1, nil
	default:
		return 0, fmt.Errorf("%w: swift direction %q", ErrUnknownActivityCode, direction)
	}
}
