package core_test

import (
	"errors"
	"testing"

	"erp-backend/internal/core"

	"github.com/shopspring/decimal"
)

func TestPurchase_CreateComputesAmount(t *testing.T) {
	pool, _, poSvc, _, _, ctx := testServices(t)
	defer pool.Close()

	// 2 lines: 100×12 + 10×45 = 1650; − 50 discount + 82.50 tax = 1682.50
	po, err := poSvc.CreatePurchaseOrder(ctx, core.CreatePurchaseOrderInput{
		SupplierID: 1,
		OrderDate:  "2026-08-10",
		Discount:   decimal.NewFromInt(50),
		Tax:        decimal.NewFromFloat(82.50),
		Items: []core.PurchaseLineInput{
			{RawMaterialID: 1, Quantity: decimal.NewFromInt(100), UnitCost: decimal.NewFromInt(12)},
			{RawMaterialID: 2, Quantity: decimal.NewFromInt(10), UnitCost: decimal.NewFromInt(45)},
		},
	})
	if err != nil {
		t.Fatalf("CreatePurchaseOrder failed: %v", err)
	}

	if !po.Amount.Equal(decimal.NewFromFloat(1682.50)) {
		t.Errorf("Expected amount 1682.50, got %s", po.Amount)
	}
	if po.DeliveryStatus != core.DeliveryPending {
		t.Errorf("Expected Pending, got %s", po.DeliveryStatus)
	}
	if po.PaymentStatus != core.PaymentUnpaid {
		t.Errorf("Expected Unpaid, got %s", po.PaymentStatus)
	}
	if po.SupplierName != "ChemCo" {
		t.Errorf("Expected supplier join to yield ChemCo, got %q", po.SupplierName)
	}

	// Creation never touches stock.
	var qty decimal.Decimal
	if err := pool.QueryRow(ctx, "SELECT quantity FROM raw_materials WHERE id = 1").Scan(&qty); err != nil {
		t.Fatal(err)
	}
	if !qty.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Stock moved on PO creation: got %s", qty)
	}
}

func TestPurchase_CreatePersistsSnapshotColumns(t *testing.T) {
	pool, _, poSvc, _, _, ctx := testServices(t)
	defer pool.Close()

	po, err := poSvc.CreatePurchaseOrder(ctx, core.CreatePurchaseOrderInput{
		SupplierID: 1,
		OrderDate:  "2026-08-10",
		Items: []core.PurchaseLineInput{
			{RawMaterialID: 1, Quantity: decimal.NewFromInt(10), UnitCost: decimal.NewFromInt(12)},
			{RawMaterialID: 3, Quantity: decimal.NewFromInt(200), UnitCost: decimal.NewFromFloat(0.90)},
		},
	})
	if err != nil {
		t.Fatalf("CreatePurchaseOrder failed: %v", err)
	}

	// Material names are captured per line at creation time.
	if len(po.Items) != 2 {
		t.Fatalf("Expected 2 line items, got %d", len(po.Items))
	}
	if po.Items[0].MaterialName != "Base Oil" || po.Items[1].MaterialName != "Bottle" {
		t.Errorf("Expected material name snapshots, got %q and %q",
			po.Items[0].MaterialName, po.Items[1].MaterialName)
	}

	// The supplier name snapshot is stored on the order row itself, not only
	// resolved through the join.
	var storedSupplier, storedMaterial string
	if err := pool.QueryRow(ctx,
		"SELECT supplier_name FROM purchase_orders WHERE id = $1", po.ID,
	).Scan(&storedSupplier); err != nil {
		t.Fatal(err)
	}
	if storedSupplier != "ChemCo" {
		t.Errorf("Expected stored supplier name ChemCo, got %q", storedSupplier)
	}
	if err := pool.QueryRow(ctx,
		"SELECT material_name FROM purchase_order_items WHERE order_id = $1 AND line_number = 1", po.ID,
	).Scan(&storedMaterial); err != nil {
		t.Fatal(err)
	}
	if storedMaterial != "Base Oil" {
		t.Errorf("Expected stored material name Base Oil, got %q", storedMaterial)
	}
}

func TestPurchase_ReceiveBlendsWeightedAverage(t *testing.T) {
	pool, _, poSvc, _, _, ctx := testServices(t)
	defer pool.Close()

	// Base Oil starts at 100 kg @ 10.00. Receiving 50 kg @ 16.00 blends to
	// 150 kg @ 12.00.
	po, err := poSvc.CreatePurchaseOrder(ctx, core.CreatePurchaseOrderInput{
		SupplierID: 1,
		OrderDate:  "2026-08-10",
		Items: []core.PurchaseLineInput{
			{RawMaterialID: 1, Quantity: decimal.NewFromInt(50), UnitCost: decimal.NewFromInt(16)},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	po, err = poSvc.MarkShipped(ctx, po.ID)
	if err != nil {
		t.Fatalf("MarkShipped failed: %v", err)
	}
	if po.DeliveryStatus != core.DeliveryShipped {
		t.Errorf("Expected Shipped, got %s", po.DeliveryStatus)
	}

	po, err = poSvc.ReceivePurchaseOrder(ctx, po.ID)
	if err != nil {
		t.Fatalf("ReceivePurchaseOrder failed: %v", err)
	}
	if po.DeliveryStatus != core.DeliveryReceived {
		t.Errorf("Expected Received, got %s", po.DeliveryStatus)
	}
	if po.ReceivedAt == nil {
		t.Error("Received order must carry received_at")
	}

	var qty, cost decimal.Decimal
	if err := pool.QueryRow(ctx, "SELECT quantity, unit_cost FROM raw_materials WHERE id = 1").Scan(&qty, &cost); err != nil {
		t.Fatal(err)
	}
	if !qty.Equal(decimal.NewFromInt(150)) {
		t.Errorf("Expected 150 kg after receipt, got %s", qty)
	}
	if !cost.Equal(decimal.NewFromInt(12)) {
		t.Errorf("Expected blended cost 12.00, got %s", cost)
	}

	// Received is terminal.
	if _, err := poSvc.ReceivePurchaseOrder(ctx, po.ID); !errors.Is(err, core.ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition on double receive, got %v", err)
	}
	if _, err := poSvc.CancelPurchaseOrder(ctx, po.ID); !errors.Is(err, core.ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition cancelling a received order, got %v", err)
	}
}

func TestPurchase_ReceiveDirectlyFromPending(t *testing.T) {
	pool, _, poSvc, _, _, ctx := testServices(t)
	defer pool.Close()

	po, err := poSvc.CreatePurchaseOrder(ctx, core.CreatePurchaseOrderInput{
		SupplierID: 2,
		OrderDate:  "2026-08-10",
		Items: []core.PurchaseLineInput{
			{RawMaterialID: 3, Quantity: decimal.NewFromInt(1000), UnitCost: decimal.NewFromFloat(0.90)},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	// Pending → Received without an intermediate Shipped is allowed.
	if _, err := poSvc.ReceivePurchaseOrder(ctx, po.ID); err != nil {
		t.Fatalf("Receive from Pending failed: %v", err)
	}
}

func TestPurchase_CancelLeavesStockAlone(t *testing.T) {
	pool, _, poSvc, _, _, ctx := testServices(t)
	defer pool.Close()

	po, err := poSvc.CreatePurchaseOrder(ctx, core.CreatePurchaseOrderInput{
		SupplierID: 1,
		OrderDate:  "2026-08-10",
		PaidAmount: decimal.NewFromInt(100),
		Items: []core.PurchaseLineInput{
			{RawMaterialID: 1, Quantity: decimal.NewFromInt(50), UnitCost: decimal.NewFromInt(16)},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if po.PaymentStatus != core.PaymentPartiallyPaid {
		t.Errorf("Expected Partially Paid after upfront payment, got %s", po.PaymentStatus)
	}

	po, err = poSvc.CancelPurchaseOrder(ctx, po.ID)
	if err != nil {
		t.Fatalf("CancelPurchaseOrder failed: %v", err)
	}
	if po.DeliveryStatus != core.DeliveryCancelled {
		t.Errorf("Expected Cancelled, got %s", po.DeliveryStatus)
	}
	// The payment stays on record.
	if !po.PaidAmount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected paid amount preserved, got %s", po.PaidAmount)
	}

	var qty decimal.Decimal
	if err := pool.QueryRow(ctx, "SELECT quantity FROM raw_materials WHERE id = 1").Scan(&qty); err != nil {
		t.Fatal(err)
	}
	if !qty.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Cancel must not move stock, got %s", qty)
	}
}

func TestPurchase_PaymentLifecycle(t *testing.T) {
	pool, _, poSvc, _, _, ctx := testServices(t)
	defer pool.Close()

	po, err := poSvc.CreatePurchaseOrder(ctx, core.CreatePurchaseOrderInput{
		SupplierID: 1,
		OrderDate:  "2026-08-10",
		Items: []core.PurchaseLineInput{
			{RawMaterialID: 1, Quantity: decimal.NewFromInt(100), UnitCost: decimal.NewFromInt(10)},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	po, err = poSvc.RecordPayment(ctx, po.ID, decimal.NewFromInt(400))
	if err != nil {
		t.Fatal(err)
	}
	if po.PaymentStatus != core.PaymentPartiallyPaid || !po.DueAmount.Equal(decimal.NewFromInt(600)) {
		t.Errorf("After partial payment: status=%s due=%s", po.PaymentStatus, po.DueAmount)
	}

	po, err = poSvc.RecordPayment(ctx, po.ID, decimal.NewFromInt(600))
	if err != nil {
		t.Fatal(err)
	}
	if po.PaymentStatus != core.PaymentPaid || !po.DueAmount.IsZero() {
		t.Errorf("After settling: status=%s due=%s", po.PaymentStatus, po.DueAmount)
	}
}
