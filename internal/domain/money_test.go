package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount_Valid(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0"},
		{"10000", "10000"},
		{"474.96", "474.96"},
		{"0.5", "0.5"},
		{"165.20", "165.2"},
		{"738193.00", "738193"},
	}

	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		if err != nil {
			t.Errorf("ParseAmount(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("ParseAmount(%q) = %s, want %s", tt.in, got.String(), tt.want)
		}
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"negative", "-1.00"},
		{"three decimals", "100.123"},
		{"not a number", "abc"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseAmount(tt.in); err == nil {
				t.Errorf("ParseAmount(%q) expected error, got nil", tt.in)
			}
		})
	}
}

func TestCost_Exact(t *testing.T) {
	price, err := ParseAmount("474.96")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := Cost(price, 10)
	want := decimal.RequireFromString("4749.60")
	if !got.Equal(want) {
		t.Errorf("Cost(474.96, 10) = %s, want %s", got.String(), want.String())
	}
}

func TestFormatAmount_Truncates(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"474.96", "474.96"},
		{"474.969", "474.96"}, // truncation, not rounding
		{"10000", "10000.00"},
		{"0.1", "0.10"},
	}

	for _, tt := range tests {
		d := decimal.RequireFromString(tt.in)
		if got := FormatAmount(d); got != tt.want {
			t.Errorf("FormatAmount(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
