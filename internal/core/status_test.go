package core_test

import (
	"testing"

	"erp-backend/internal/core"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestDueAmount(t *testing.T) {
	tests := []struct {
		name  string
		total string
		paid  string
		want  string
	}{
		{"nothing paid", "100.00", "0", "100.00"},
		{"partially paid", "100.00", "40.50", "59.50"},
		{"fully paid", "100.00", "100.00", "0"},
		{"overpaid clamps to zero", "100.00", "150.00", "0"},
		{"zero total", "0", "0", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := core.DueAmount(dec(tt.total), dec(tt.paid))
			if !got.Equal(dec(tt.want)) {
				t.Errorf("DueAmount(%s, %s) = %s, want %s", tt.total, tt.paid, got, tt.want)
			}
		})
	}
}

func TestInvoiceStatusFor(t *testing.T) {
	tests := []struct {
		name  string
		total string
		paid  string
		want  core.InvoiceStatus
	}{
		{"unpaid", "100.00", "0", core.InvoiceUnpaid},
		{"partially paid", "100.00", "30.00", core.InvoicePartiallyPaid},
		{"exactly paid", "100.00", "100.00", core.InvoicePaid},
		{"overpaid", "100.00", "120.00", core.InvoicePaid},
		{"zero total, nothing paid", "0", "0", core.InvoicePaid},
		// 99.999 vs 100 stays partially paid: comparisons are exact,
		// not epsilon-based.
		{"off by a fraction", "100.000", "99.999", core.InvoicePartiallyPaid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := core.InvoiceStatusFor(dec(tt.total), dec(tt.paid))
			if got != tt.want {
				t.Errorf("InvoiceStatusFor(%s, %s) = %s, want %s", tt.total, tt.paid, got, tt.want)
			}
		})
	}
}

func TestPaymentStatusFor(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		paid   string
		want   core.PaymentStatus
	}{
		{"unpaid", "500.00", "0", core.PaymentUnpaid},
		{"partially paid", "500.00", "100.00", core.PaymentPartiallyPaid},
		{"paid exactly", "500.00", "500.00", core.PaymentPaid},
		{"tiny remainder stays partial", "500.0000", "499.9999", core.PaymentPartiallyPaid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := core.PaymentStatusFor(dec(tt.amount), dec(tt.paid))
			if got != tt.want {
				t.Errorf("PaymentStatusFor(%s, %s) = %s, want %s", tt.amount, tt.paid, got, tt.want)
			}
		})
	}
}

func TestCanCancelInvoice(t *testing.T) {
	tests := []struct {
		status core.InvoiceStatus
		want   bool
	}{
		{core.InvoiceUnpaid, true},
		{core.InvoicePartiallyPaid, true},
		{core.InvoicePaid, false},
		{core.InvoiceCancelled, false},
	}
	for _, tt := range tests {
		if got := core.CanCancelInvoice(tt.status); got != tt.want {
			t.Errorf("CanCancelInvoice(%s) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestCanTransitionDelivery(t *testing.T) {
	tests := []struct {
		from core.DeliveryStatus
		to   core.DeliveryStatus
		want bool
	}{
		{core.DeliveryPending, core.DeliveryShipped, true},
		{core.DeliveryPending, core.DeliveryReceived, true},
		{core.DeliveryPending, core.DeliveryCancelled, true},
		{core.DeliveryShipped, core.DeliveryReceived, true},
		{core.DeliveryShipped, core.DeliveryCancelled, true},
		{core.DeliveryShipped, core.DeliveryPending, false},
		{core.DeliveryReceived, core.DeliveryCancelled, false},
		{core.DeliveryReceived, core.DeliveryShipped, false},
		{core.DeliveryCancelled, core.DeliveryShipped, false},
		{core.DeliveryCancelled, core.DeliveryReceived, false},
	}
	for _, tt := range tests {
		if got := core.CanTransitionDelivery(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransitionDelivery(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestReturnStatusFor(t *testing.T) {
	tests := []struct {
		name     string
		newTotal string
		paid     string
		newDue   string
		want     core.InvoiceStatus
	}{
		// Full return of an unpaid invoice: total drops to the paid amount,
		// nothing remains due.
		{"return settles invoice", "60.00", "60.00", "0", core.InvoicePaid},
		{"return leaves partial balance", "80.00", "30.00", "50.00", core.InvoicePartiallyPaid},
		{"return on untouched invoice", "80.00", "0", "80.00", core.InvoiceUnpaid},
		{"everything returned, nothing paid", "0", "0", "0", core.InvoicePaid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := core.ReturnStatusFor(dec(tt.newTotal), dec(tt.paid), dec(tt.newDue))
			if got != tt.want {
				t.Errorf("ReturnStatusFor(%s, %s, %s) = %s, want %s", tt.newTotal, tt.paid, tt.newDue, got, tt.want)
			}
		})
	}
}
