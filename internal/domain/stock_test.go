package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestStockSnapshotString(t *testing.T) {
	s := StockSnapshot{
		Symbol:    "MSFT",
		Total:     150,
		Available: 140,
		Price:     decimal.RequireFromString("474.96"),
	}

	got := s.String()
	want := "MSFT -- price: 474.96 -- available: 140 -- sum: 150"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestStockSnapshot_Detached(t *testing.T) {
	s := Stock{
		Symbol:    "AAPL",
		Total:     200,
		Available: 200,
		Price:     decimal.RequireFromString("198.97"),
	}

	snap := s.Snapshot()
	snap.Available = 0
	if s.Available != 200 {
		t.Errorf("got available %d, want 200", s.Available)
	}
}
