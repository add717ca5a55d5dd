// Package core holds the domain model of the expense ledger: users,
// expenses, calendar dates and fixed-point money, plus the parsing rules
// shared by every inbound path.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// Money is a fixed-point monetary value in cents. Aggregation happens on
// integer cents so repeated sums never accumulate floating-point drift.
type Money struct {
	Cents int64
}

// ParseAmountCents converts a decimal string to cents with half-up rounding
// on the third decimal place. Both dot (12.34) and comma (12,34) separators
// are accepted. Signed values are allowed: the ledger records refunds as
// negative amounts. Exponent notation is not part of the wire contract.
//
// Examples:
//
//	ParseAmountCents("12.5")   -> 1250, nil
//	ParseAmountCents("12,34")  -> 1234, nil
//	ParseAmountCents("-4.505") -> -451, nil (rounds away from zero)
//	ParseAmountCents("abc")    -> 0, ErrInvalidAmount
func ParseAmountCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")

	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	if s == "" || s == "." {
		return 0, ErrInvalidAmount
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Guard the *100 below.
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}

	// First two fractional digits are cents; half-up rounding on the third.
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}

	cents := iv*100 + fracCents
	if neg {
		cents = -cents
	}
	return cents, nil
}

// Amount returns the value as a plain float64 for wire rendering. Use cents
// for arithmetic.
func (m Money) Amount() float64 {
	return float64(m.Cents) / 100.0
}
