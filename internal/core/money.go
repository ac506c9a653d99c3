// Package core provides the domain records of a course ledger and the
// coercion rules applied to their amounts and dates.
//
// Upstream records carry amounts and dates as loosely typed text. They are
// kept verbatim and converted on demand: ParseAmount for reporting, where a
// malformed value counts as zero, and ParsePositiveAmount for writes, where it
// is rejected.
package core

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a monetary value exactly as the data source provided it.
type Amount string

// NewAmount formats d with two decimals.
func NewAmount(d decimal.Decimal) Amount {
	return Amount(d.StringFixed(2))
}

// Decimal returns the parsed value, or zero when the text is not a number.
func (a Amount) Decimal() decimal.Decimal {
	return ParseAmount(string(a))
}

// UnmarshalJSON accepts JSON strings, numbers and null. Any other value is
// kept as raw text and will read as zero.
func (a *Amount) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	switch {
	case raw == "null":
		*a = ""
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*a = Amount(raw)
			return nil
		}
		*a = Amount(s)
	default:
		*a = Amount(raw)
	}
	return nil
}

// ParseAmount is the single tolerant coercion used by every report: blank,
// non-numeric and non-finite text yields zero. A decimal comma is accepted.
func ParseAmount(s string) decimal.Decimal {
	d, err := parseDecimal(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParsePositiveAmount validates an amount about to be written. The value must
// be strictly positive and is rounded half-up to cents.
//
// Examples:
//
//	ParsePositiveAmount("12.34")  -> 12.34
//	ParsePositiveAmount("12,34")  -> 12.34
//	ParsePositiveAmount("12.345") -> 12.35
//	ParsePositiveAmount("0")      -> ErrInvalidAmount
func ParsePositiveAmount(s string) (decimal.Decimal, error) {
	d, err := ParseNonNegativeAmount(s)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseNonNegativeAmount is ParsePositiveAmount allowing zero, used for goals
// and category base amounts.
func ParseNonNegativeAmount(s string) (decimal.Decimal, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d.Round(2), nil
}

// Truncate2 drops everything past the second decimal without rounding.
func Truncate2(d decimal.Decimal) decimal.Decimal {
	return d.Truncate(2)
}

func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	return decimal.NewFromString(s)
}
