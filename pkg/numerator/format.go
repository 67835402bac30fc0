// Package numerator formats and parses human-facing sequential numbers
// of the form PREFIX-000042.
package numerator

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultPadWidth is the minimum number of digits after the prefix.
const DefaultPadWidth = 6

// Format renders value as "{prefix}-{value}" left-padded with zeros to padWidth digits.
// Values wider than padWidth are rendered in full (P-1000000), never truncated.
func Format(prefix string, padWidth int, value int64) string {
	if padWidth <= 0 {
		padWidth = DefaultPadWidth
	}
	return fmt.Sprintf("%s-%0*d", prefix, padWidth, value)
}

// Parse extracts the numeric part of a number produced by Format with the given prefix.
// It accepts any digit count of at least one and rejects signs, spaces or foreign prefixes.
func Parse(prefix, formatted string) (int64, error) {
	digits, ok := strings.CutPrefix(formatted, prefix+"-")
	if !ok {
		return 0, fmt.Errorf("number %q does not start with %q", formatted, prefix+"-")
	}
	if digits == "" {
		return 0, fmt.Errorf("number %q has no digits", formatted)
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("number %q has non-digit characters", formatted)
		}
	}

	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse number %q: %w", formatted, err)
	}
	return v, nil
}
