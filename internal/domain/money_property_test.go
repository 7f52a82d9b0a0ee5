package domain

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"pgregory.net/rapid"
)

// TestProperty_AmountRoundTrip verifies that any non-negative amount with at
// most two fraction digits survives a format/parse round trip exactly.
func TestProperty_AmountRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cents := rapid.Int64Range(0, 99_999_999_99).Draw(t, "cents")
		amount := decimal.New(cents, -2)

		parsed, err := ParseAmount(FormatAmount(amount))
		if err != nil {
			t.Fatalf("round trip of %s failed: %v", amount.String(), err)
		}
		if !parsed.Equal(amount) {
			t.Fatalf("round trip changed value: %s → %s", amount.String(), parsed.String())
		}
	})
}

// TestProperty_CostIsLinear verifies Cost(p, a+b) == Cost(p, a) + Cost(p, b)
// with exact arithmetic, i.e. splitting an order never changes total cost.
func TestProperty_CostIsLinear(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		priceCents := rapid.Int64Range(1, 100_000_00).Draw(t, "priceCents")
		price := decimal.New(priceCents, -2)
		a := rapid.Int64Range(1, 10_000).Draw(t, "a")
		b := rapid.Int64Range(1, 10_000).Draw(t, "b")

		whole := Cost(price, a+b)
		split := Cost(price, a).Add(Cost(price, b))
		if !whole.Equal(split) {
			t.Fatalf("Cost(%s, %d+%d) = %s, split sum = %s",
				price.String(), a, b, whole.String(), split.String())
		}
	})
}

// TestProperty_ParseRejectsExcessPrecision verifies that any value with a
// meaningful third fraction digit is rejected.
func TestProperty_ParseRejectsExcessPrecision(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		whole := rapid.Int64Range(0, 999_999).Draw(t, "whole")
		d1 := rapid.IntRange(0, 9).Draw(t, "d1")
		d2 := rapid.IntRange(0, 9).Draw(t, "d2")
		d3 := rapid.IntRange(1, 9).Draw(t, "d3") // must be non-zero

		s := fmt.Sprintf("%d.%d%d%d", whole, d1, d2, d3)
		if _, err := ParseAmount(s); err == nil {
			t.Fatalf("ParseAmount(%q) should reject value with >2 decimal places", s)
		}
	})
}
