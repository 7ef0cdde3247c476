package core_test

import (
	"errors"
	"testing"

	"erp-backend/internal/core"

	"github.com/shopspring/decimal"
)

func int64Ptr(v int64) *int64 { return &v }

func TestInvoice_CreateWithCommissions(t *testing.T) {
	pool, invSvc, _, _, _, ctx := testServices(t)
	defer pool.Close()

	// 10 × Lavender Soap @ 60 = 600 for a Gold distributor. Two rules match:
	// 5% product rule (30) and the flat Gold tier rule (10).
	inv, err := invSvc.CreateInvoice(ctx, core.CreateInvoiceInput{
		DistributorID: int64Ptr(1),
		InvoiceDate:   "2026-08-01",
		Items: []core.InvoiceLineInput{
			{FinishedGoodID: 1, Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(60)},
		},
	})
	if err != nil {
		t.Fatalf("CreateInvoice failed: %v", err)
	}

	if inv.InvoiceNumber != "INV#260801001" {
		t.Errorf("Expected INV#260801001, got %s", inv.InvoiceNumber)
	}
	if !inv.TotalAmount.Equal(decimal.NewFromInt(600)) {
		t.Errorf("Expected total 600, got %s", inv.TotalAmount)
	}
	if inv.Status != core.InvoiceUnpaid {
		t.Errorf("Expected Unpaid, got %s", inv.Status)
	}
	if inv.CustomerName != "Acme Distribution" {
		t.Errorf("Expected snapshot of distributor name, got %q", inv.CustomerName)
	}

	// Stock decremented: 200 − 10 = 190
	var onHand decimal.Decimal
	if err := pool.QueryRow(ctx, "SELECT quantity FROM finished_goods WHERE id = 1").Scan(&onHand); err != nil {
		t.Fatal(err)
	}
	if !onHand.Equal(decimal.NewFromInt(190)) {
		t.Errorf("Expected on-hand 190 after sale, got %s", onHand)
	}

	commissions, err := invSvc.ListCommissionsForInvoice(ctx, inv.ID)
	if err != nil {
		t.Fatalf("ListCommissionsForInvoice failed: %v", err)
	}
	if len(commissions) != 2 {
		t.Fatalf("Expected 2 commission records, got %d", len(commissions))
	}
	total := decimal.Zero
	for _, c := range commissions {
		total = total.Add(c.CommissionAmount)
	}
	if !total.Equal(decimal.NewFromInt(40)) {
		t.Errorf("Expected stacked commission 40 (5%% of 600 + flat 10), got %s", total)
	}
}

func TestInvoice_NoDistributorSkipsCommissions(t *testing.T) {
	pool, invSvc, _, _, _, ctx := testServices(t)
	defer pool.Close()

	inv, err := invSvc.CreateInvoice(ctx, core.CreateInvoiceInput{
		CustomerName: "Walk-in Customer",
		InvoiceDate:  "2026-08-01",
		Items: []core.InvoiceLineInput{
			{FinishedGoodID: 1, Quantity: decimal.NewFromInt(5), UnitPrice: decimal.NewFromInt(60)},
		},
	})
	if err != nil {
		t.Fatalf("CreateInvoice failed: %v", err)
	}

	commissions, err := invSvc.ListCommissionsForInvoice(ctx, inv.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(commissions) != 0 {
		t.Errorf("Expected no commissions without a distributor, got %d", len(commissions))
	}
}

func TestInvoice_InsufficientStockAbortsWholeInvoice(t *testing.T) {
	pool, invSvc, _, _, _, ctx := testServices(t)
	defer pool.Close()

	// Second line asks for more Rose Lotion than the 80 on hand; the first
	// line's decrement must be rolled back too.
	_, err := invSvc.CreateInvoice(ctx, core.CreateInvoiceInput{
		DistributorID: int64Ptr(1),
		InvoiceDate:   "2026-08-01",
		Items: []core.InvoiceLineInput{
			{FinishedGoodID: 1, Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(60)},
			{FinishedGoodID: 2, Quantity: decimal.NewFromInt(500), UnitPrice: decimal.NewFromInt(90)},
		},
	})
	if !errors.Is(err, core.ErrInsufficientStock) {
		t.Fatalf("Expected ErrInsufficientStock, got %v", err)
	}

	var soapQty, lotionQty decimal.Decimal
	if err := pool.QueryRow(ctx, "SELECT quantity FROM finished_goods WHERE id = 1").Scan(&soapQty); err != nil {
		t.Fatal(err)
	}
	if err := pool.QueryRow(ctx, "SELECT quantity FROM finished_goods WHERE id = 2").Scan(&lotionQty); err != nil {
		t.Fatal(err)
	}
	if !soapQty.Equal(decimal.NewFromInt(200)) || !lotionQty.Equal(decimal.NewFromInt(80)) {
		t.Errorf("Stock changed on aborted invoice: soap=%s lotion=%s", soapQty, lotionQty)
	}

	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM invoices").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("Expected no invoice rows after abort, got %d", count)
	}
}

func TestInvoice_DailySequence(t *testing.T) {
	pool, invSvc, _, _, _, ctx := testServices(t)
	defer pool.Close()

	line := []core.InvoiceLineInput{
		{FinishedGoodID: 1, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(60)},
	}

	first, err := invSvc.CreateInvoice(ctx, core.CreateInvoiceInput{
		CustomerName: "A", InvoiceDate: "2026-08-01", Items: line,
	})
	if err != nil {
		t.Fatal(err)
	}
	second, err := invSvc.CreateInvoice(ctx, core.CreateInvoiceInput{
		CustomerName: "B", InvoiceDate: "2026-08-01", Items: line,
	})
	if err != nil {
		t.Fatal(err)
	}
	nextDay, err := invSvc.CreateInvoice(ctx, core.CreateInvoiceInput{
		CustomerName: "C", InvoiceDate: "2026-08-02", Items: line,
	})
	if err != nil {
		t.Fatal(err)
	}

	if first.InvoiceNumber != "INV#260801001" || second.InvoiceNumber != "INV#260801002" {
		t.Errorf("Same-day sequence wrong: %s, %s", first.InvoiceNumber, second.InvoiceNumber)
	}
	if nextDay.InvoiceNumber != "INV#260802001" {
		t.Errorf("Expected counter reset on new day, got %s", nextDay.InvoiceNumber)
	}
}

func TestInvoice_PaymentLifecycle(t *testing.T) {
	pool, invSvc, _, _, _, ctx := testServices(t)
	defer pool.Close()

	inv, err := invSvc.CreateInvoice(ctx, core.CreateInvoiceInput{
		CustomerName: "Walk-in",
		InvoiceDate:  "2026-08-01",
		Items: []core.InvoiceLineInput{
			{FinishedGoodID: 1, Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(60)},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	inv, err = invSvc.RecordPayment(ctx, inv.ID, decimal.NewFromInt(200))
	if err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}
	if inv.Status != core.InvoicePartiallyPaid || !inv.DueAmount.Equal(decimal.NewFromInt(400)) {
		t.Errorf("After partial payment: status=%s due=%s", inv.Status, inv.DueAmount)
	}

	inv, err = invSvc.RecordPayment(ctx, inv.ID, decimal.NewFromInt(400))
	if err != nil {
		t.Fatal(err)
	}
	if inv.Status != core.InvoicePaid || !inv.DueAmount.IsZero() {
		t.Errorf("After settling: status=%s due=%s", inv.Status, inv.DueAmount)
	}

	// Paid invoices cannot be cancelled.
	if _, err := invSvc.CancelInvoice(ctx, inv.ID); !errors.Is(err, core.ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition cancelling a paid invoice, got %v", err)
	}
}

func TestInvoice_CancelRestocksAndKeepsCommissions(t *testing.T) {
	pool, invSvc, _, _, _, ctx := testServices(t)
	defer pool.Close()

	inv, err := invSvc.CreateInvoice(ctx, core.CreateInvoiceInput{
		DistributorID: int64Ptr(1),
		InvoiceDate:   "2026-08-01",
		Items: []core.InvoiceLineInput{
			{FinishedGoodID: 1, Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(60)},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	inv, err = invSvc.CancelInvoice(ctx, inv.ID)
	if err != nil {
		t.Fatalf("CancelInvoice failed: %v", err)
	}
	if inv.Status != core.InvoiceCancelled {
		t.Errorf("Expected Cancelled, got %s", inv.Status)
	}
	if !inv.PaidAmount.IsZero() || !inv.DueAmount.IsZero() {
		t.Errorf("Cancelled invoice must have zero paid/due, got %s/%s", inv.PaidAmount, inv.DueAmount)
	}

	var onHand decimal.Decimal
	if err := pool.QueryRow(ctx, "SELECT quantity FROM finished_goods WHERE id = 1").Scan(&onHand); err != nil {
		t.Fatal(err)
	}
	if !onHand.Equal(decimal.NewFromInt(200)) {
		t.Errorf("Expected stock restored to 200, got %s", onHand)
	}

	// Commission records survive the cancellation.
	commissions, err := invSvc.ListCommissionsForInvoice(ctx, inv.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(commissions) != 2 {
		t.Errorf("Expected commission records to survive cancellation, got %d", len(commissions))
	}

	// Terminal: cancelling again fails.
	if _, err := invSvc.CancelInvoice(ctx, inv.ID); !errors.Is(err, core.ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition on double cancel, got %v", err)
	}
	if _, err := invSvc.RecordPayment(ctx, inv.ID, decimal.NewFromInt(1)); !errors.Is(err, core.ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition paying a cancelled invoice, got %v", err)
	}
}
