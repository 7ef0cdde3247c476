package core_test

import (
	"context"
	"errors"
	"testing"

	"erp-backend/internal/core"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func createTestInvoice(t *testing.T, ctx context.Context, invSvc core.InvoiceService, qty int64) *core.Invoice {
	t.Helper()
	inv, err := invSvc.CreateInvoice(ctx, core.CreateInvoiceInput{
		DistributorID: int64Ptr(1),
		InvoiceDate:   "2026-08-01",
		Items: []core.InvoiceLineInput{
			{FinishedGoodID: 1, Quantity: decimal.NewFromInt(qty), UnitPrice: decimal.NewFromInt(60)},
		},
	})
	if err != nil {
		t.Fatalf("CreateInvoice failed: %v", err)
	}
	return inv
}

func TestReturn_RestocksAndReducesInvoice(t *testing.T) {
	pool, invSvc, _, retSvc, _, ctx := testServices(t)
	defer pool.Close()

	inv := createTestInvoice(t, ctx, invSvc, 10) // total 600, unpaid

	// Return 3 units valued at the current selling price (60) = 180.
	ret, err := retSvc.ProcessReturn(ctx, core.ProcessReturnInput{
		InvoiceID:  inv.ID,
		ReturnDate: "2026-08-05",
		Reason:     "damaged in transit",
		Items: []core.ReturnLineInput{
			{FinishedGoodID: 1, Quantity: decimal.NewFromInt(3)},
		},
	})
	if err != nil {
		t.Fatalf("ProcessReturn failed: %v", err)
	}
	if !ret.Amount.Equal(decimal.NewFromInt(180)) {
		t.Errorf("Expected return amount 180, got %s", ret.Amount)
	}
	if !ret.ReturnedUnits.Equal(decimal.NewFromInt(3)) {
		t.Errorf("Expected 3 returned units, got %s", ret.ReturnedUnits)
	}

	inv, err = invSvc.GetInvoice(ctx, inv.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !inv.TotalAmount.Equal(decimal.NewFromInt(420)) {
		t.Errorf("Expected total reduced to 420, got %s", inv.TotalAmount)
	}
	if !inv.DueAmount.Equal(decimal.NewFromInt(420)) {
		t.Errorf("Expected due 420, got %s", inv.DueAmount)
	}
	if inv.Status != core.InvoiceUnpaid {
		t.Errorf("Expected Unpaid, got %s", inv.Status)
	}

	// 200 − 10 sold + 3 returned = 193
	var onHand decimal.Decimal
	if err := pool.QueryRow(ctx, "SELECT quantity FROM finished_goods WHERE id = 1").Scan(&onHand); err != nil {
		t.Fatal(err)
	}
	if !onHand.Equal(decimal.NewFromInt(193)) {
		t.Errorf("Expected on-hand 193 after return, got %s", onHand)
	}
}

func TestReturn_CannotExceedDueAmount(t *testing.T) {
	pool, invSvc, _, retSvc, _, ctx := testServices(t)
	defer pool.Close()

	inv := createTestInvoice(t, ctx, invSvc, 10) // total 600

	// Pay 500, leaving 100 due. Returning 3 units (180) would exceed it.
	if _, err := invSvc.RecordPayment(ctx, inv.ID, decimal.NewFromInt(500)); err != nil {
		t.Fatal(err)
	}

	_, err := retSvc.ProcessReturn(ctx, core.ProcessReturnInput{
		InvoiceID:  inv.ID,
		ReturnDate: "2026-08-05",
		Items: []core.ReturnLineInput{
			{FinishedGoodID: 1, Quantity: decimal.NewFromInt(3)},
		},
	})
	if !errors.Is(err, core.ErrReturnExceedsDue) {
		t.Fatalf("Expected ErrReturnExceedsDue, got %v", err)
	}

	// Nothing moved.
	var onHand decimal.Decimal
	if err := pool.QueryRow(ctx, "SELECT quantity FROM finished_goods WHERE id = 1").Scan(&onHand); err != nil {
		t.Fatal(err)
	}
	if !onHand.Equal(decimal.NewFromInt(190)) {
		t.Errorf("Stock changed on rejected return: %s", onHand)
	}
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM sales_returns").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("Expected no return records, got %d", count)
	}
}

func TestReturn_SettlesInvoiceWhenDueReachesZero(t *testing.T) {
	pool, invSvc, _, retSvc, _, ctx := testServices(t)
	defer pool.Close()

	inv := createTestInvoice(t, ctx, invSvc, 10) // total 600
	if _, err := invSvc.RecordPayment(ctx, inv.ID, decimal.NewFromInt(480)); err != nil {
		t.Fatal(err)
	}

	// Return 2 units (120): new total 480 equals paid, due drops to zero.
	if _, err := retSvc.ProcessReturn(ctx, core.ProcessReturnInput{
		InvoiceID:  inv.ID,
		ReturnDate: "2026-08-05",
		Items: []core.ReturnLineInput{
			{FinishedGoodID: 1, Quantity: decimal.NewFromInt(2)},
		},
	}); err != nil {
		t.Fatalf("ProcessReturn failed: %v", err)
	}

	inv, err := invSvc.GetInvoice(ctx, inv.ID)
	if err != nil {
		t.Fatal(err)
	}
	if inv.Status != core.InvoicePaid {
		t.Errorf("Expected Paid after return settles the balance, got %s", inv.Status)
	}
	if !inv.DueAmount.IsZero() {
		t.Errorf("Expected zero due, got %s", inv.DueAmount)
	}
}

func TestReturn_RejectsProductNotOnInvoice(t *testing.T) {
	pool, invSvc, _, retSvc, _, ctx := testServices(t)
	defer pool.Close()

	inv := createTestInvoice(t, ctx, invSvc, 10)

	_, err := retSvc.ProcessReturn(ctx, core.ProcessReturnInput{
		InvoiceID:  inv.ID,
		ReturnDate: "2026-08-05",
		Items: []core.ReturnLineInput{
			{FinishedGoodID: 2, Quantity: decimal.NewFromInt(1)},
		},
	})
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for product not on invoice, got %v", err)
	}
}

func TestReturn_InvoicePriceValuation(t *testing.T) {
	pool, invSvc, _, _, _, ctx := testServices(t)
	defer pool.Close()

	// Sold at a negotiated 50 instead of the list price 60.
	inv, err := invSvc.CreateInvoice(ctx, core.CreateInvoiceInput{
		DistributorID: int64Ptr(1),
		InvoiceDate:   "2026-08-01",
		Items: []core.InvoiceLineInput{
			{FinishedGoodID: 1, Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(50)},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	retSvc := core.NewReturnService(pool, zerolog.Nop(), core.ValueAtInvoicePrice)
	ret, err := retSvc.ProcessReturn(ctx, core.ProcessReturnInput{
		InvoiceID:  inv.ID,
		ReturnDate: "2026-08-05",
		Items: []core.ReturnLineInput{
			{FinishedGoodID: 1, Quantity: decimal.NewFromInt(2)},
		},
	})
	if err != nil {
		t.Fatalf("ProcessReturn failed: %v", err)
	}
	if !ret.Amount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected return valued at invoice price (2×50=100), got %s", ret.Amount)
	}
}
