package core_test

import (
	"testing"
	"time"

	"erp-backend/internal/core"
)

func TestFormatInvoiceNumber(t *testing.T) {
	tests := []struct {
		date string
		seq  int64
		want string
	}{
		{"2026-08-28", 1, "INV#260828001"},
		{"2026-08-28", 42, "INV#260828042"},
		{"2026-01-05", 999, "INV#260105999"},
		// The counter keeps going past three digits; the number just widens.
		{"2026-08-28", 1000, "INV#2608281000"},
	}
	for _, tt := range tests {
		date, err := time.Parse("2006-01-02", tt.date)
		if err != nil {
			t.Fatal(err)
		}
		if got := core.FormatInvoiceNumber(date, tt.seq); got != tt.want {
			t.Errorf("FormatInvoiceNumber(%s, %d) = %q, want %q", tt.date, tt.seq, got, tt.want)
		}
	}
}
