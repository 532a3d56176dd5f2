// Package money provides the shared numeric parsing and bounds checking used by
// every ingestion path (manual entry, tabular files, statement extraction) and by
// worksheet values. Amounts are decimal.Decimal throughout; float64 never carries
// a monetary value past a parse boundary.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxLedgerAmount is the largest magnitude a ledger record may carry.
var MaxLedgerAmount = decimal.RequireFromString("999999999.99")

// MaxStatementAmount bounds a single extracted statement row. Values at or above
// one million are treated as extraction noise (balances, account numbers).
var MaxStatementAmount = decimal.RequireFromString("1000000")

var (
	ErrEmptyAmount  = errors.New("money: empty amount")
	ErrZeroAmount   = errors.New("money: amount is zero")
	ErrAmountTooBig = errors.New("money: amount exceeds ledger maximum")
	ErrNotANumber   = errors.New("money: not a number")
)

// currencySymbols are stripped before parsing. Single-currency ledger, so the
// symbol is cosmetic and never changes the value.
var currencySymbols = []string{"$", "€", "£", "R$", "¥"}

// Parse converts a human amount string ("1,250.00", "$34.12", "(12.50)", "-5")
// to a decimal. Parentheses and a leading minus both mark negation; grouping
// commas are removed. The sign is preserved here — callers that store absolute
// values take Abs themselves.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrEmptyAmount
	}

	for _, sym := range currencySymbols {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.TrimSpace(s)

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.Trim(s, "()")
	}
	if strings.HasPrefix(s, "-") {
		negative = true
		s = strings.TrimPrefix(s, "-")
	}

	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrNotANumber, s)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// ValidateLedgerAmount applies the ledger bounds to a parsed amount: non-zero
// and magnitude within MaxLedgerAmount. Returns the absolute value — the sign
// of a ledger amount is carried by the record kind, never by the number.
func ValidateLedgerAmount(d decimal.Decimal) (decimal.Decimal, error) {
	abs := d.Abs()
	if abs.IsZero() {
		return decimal.Zero, ErrZeroAmount
	}
	if abs.GreaterThan(MaxLedgerAmount) {
		return decimal.Zero, ErrAmountTooBig
	}
	return abs, nil
}

// WithinStatementBounds reports whether an extracted row amount is plausible:
// strictly positive and strictly below MaxStatementAmount.
func WithinStatementBounds(d decimal.Decimal) bool {
	return d.IsPositive() && d.LessThan(MaxStatementAmount)
}

// Format renders a decimal with exactly two fraction digits, the fixed
// representation used by the tabular codec and the API layer.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}
