package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"50000", "50000"},
		{"1234.50", "1234.5"},
		{"1,234.50", "1234.5"},
		{"1,234.50 INR", "1234.5"},
		{"₹2,500", "2500"},
		{"  42  ", "42"},
		{"-100", "-100"},
		{"abc", "0"},
		{"", "0"},
		{"--", "0"},
		{"..", "0"},
	}
	for i, tc := range cases {
		got := ParseAmount(tc.in)
		if got.String() != tc.want {
			t.Fatalf("case %d (%q): got %s, want %s", i, tc.in, got, tc.want)
		}
	}
}

func TestFormatAmountTrimsZeros(t *testing.T) {
	d, _ := decimal.NewFromString("1000.00")
	if got := FormatAmount(d); got != "1000" {
		t.Fatalf("got %q", got)
	}
}
