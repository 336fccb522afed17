// Package core provides amount parsing for ledger input.
//
// Amounts arrive from forms as strings with either dot or comma decimal
// separators and an optional sign. They are stored as signed float64:
// positive is income, negative is expense.
package core

import (
	"strconv"
	"strings"
)

// ParseAmount converts a decimal string to a signed amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and a
// leading sign. Returns ErrInvalidAmount for empty input, non-numeric
// input, or values that do not parse to a finite number. It never coerces
// bad input to zero.
//
// Examples:
//
//	ParseAmount("1500")    -> 1500, nil
//	ParseAmount("-12,34")  -> -12.34, nil
//	ParseAmount("abc")     -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// ParseFloat accepts "NaN" and "Inf" spellings
	if err := ValidateAmount(v); err != nil {
		return 0, err
	}
	return v, nil
}
