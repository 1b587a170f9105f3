// Package core holds the finance-planner domain: the FinanceState
// aggregate, its entity types, the closed category sets, and lenient
// amount parsing.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts free-form user input into a decimal amount.
//
// It never fails: anything that does not survive parsing coerces to
// zero. Stray characters are stripped first, keeping only digits, '.'
// and '-', so "1,234.50 INR" parses to 1234.50 while "abc" parses to 0.
//
// Examples:
//
//	ParseAmount("50000")        -> 50000
//	ParseAmount("1,234.50 INR") -> 1234.50
//	ParseAmount("abc")          -> 0
//	ParseAmount("")             -> 0
func ParseAmount(s string) decimal.Decimal {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return -1
		}
	}, strings.TrimSpace(s))
	if cleaned == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FormatAmount renders an amount for display and export, trimming
// trailing zeros ("1234.50" -> "1234.5", "1000.00" -> "1000").
func FormatAmount(d decimal.Decimal) string {
	return d.String()
}
