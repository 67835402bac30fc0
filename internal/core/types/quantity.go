// Package types provides common type aliases and utilities.
package types

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Quantity is a planned or produced amount with full decimal precision.
// Stored as NUMERIC(15,4).
type Quantity = decimal.Decimal

// QuantityScale is the number of fractional digits kept for quantities.
const QuantityScale int32 = 4

// ParseQuantity parses a decimal string. Exponent notation is rejected to
// keep parsing strict; extra fractional digits are rounded to QuantityScale.
func ParseQuantity(s string) (Quantity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty quantity")
	}
	if strings.ContainsAny(s, "eE") {
		return decimal.Zero, fmt.Errorf("parse quantity %q: exponent notation is not supported", s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse quantity %q: %w", s, err)
	}
	return NormalizeQuantity(d), nil
}

// MustQuantity parses s, panics on error.
// Use only for constants and tests.
func MustQuantity(s string) Quantity {
	q, err := ParseQuantity(s)
	if err != nil {
		panic(err)
	}
	return q
}

// NormalizeQuantity rounds q to QuantityScale fractional digits.
func NormalizeQuantity(q Quantity) Quantity {
	return q.Round(QuantityScale)
}
