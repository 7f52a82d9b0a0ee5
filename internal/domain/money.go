package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a decimal money string. It rejects negative values and
// values with more than 2 fraction digits. All arithmetic on the result is
// exact; truncation happens only when formatting for display.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid monetary value %q: %w", s, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("monetary value must not be negative, got %s", s)
	}
	if !d.Equal(d.Truncate(2)) {
		return decimal.Zero, fmt.Errorf("monetary values must have at most 2 decimal places, got %s", s)
	}
	return d, nil
}

// Cost returns price * quantity with exact decimal arithmetic.
func Cost(price decimal.Decimal, quantity int64) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(quantity))
}

// FormatAmount renders a monetary value truncated to two fraction digits.
// Display only, never used for comparison or state.
func FormatAmount(d decimal.Decimal) string {
	return d.Truncate(2).StringFixed(2)
}
