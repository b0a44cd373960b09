package core

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts user-typed text to a decimal.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted and the
// sign is preserved; callers store the magnitude. Empty text, trailing
// garbage ("12abc"), NaN and infinities are rejected with ErrInvalidAmount,
// as is anything with more than maxAmountDigits integer digits or
// maxAmountScale fractional digits ("1e400").
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("-50")   -> -50, nil
//	ParseAmount("abc")   -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") {
			return decimal.Zero, ErrInvalidAmount
		}
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !inRange(d, maxAmountDigits) {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.IsZero() {
		return decimal.Zero, nil
	}
	return d, nil
}

const (
	maxAmountDigits  = 15
	maxBalanceDigits = 18
	maxAmountScale   = 15
)

// inRange reports whether d fits in maxIntDigits integer digits and
// maxAmountScale fractional digits. It only inspects the coefficient and
// exponent, so it never expands d.
func inRange(d decimal.Decimal, maxIntDigits int64) bool {
	exp := int64(d.Exponent())
	if exp < -maxAmountScale {
		return false
	}
	if d.IsZero() {
		return exp <= maxIntDigits
	}
	digits := int64(len(new(big.Int).Abs(d.Coefficient()).String()))
	return digits+exp <= maxIntDigits
}

// FormatAmount renders d with exactly two decimals for display.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
