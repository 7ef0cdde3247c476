package core_test

import (
	"errors"
	"testing"

	"erp-backend/internal/core"

	"github.com/shopspring/decimal"
)

func TestProduction_CompleteConsumesFormulaAndBlendsCost(t *testing.T) {
	pool, _, _, _, prodSvc, ctx := testServices(t)
	defer pool.Close()

	// Lavender Soap formula per unit: 2 kg Base Oil @10, 0.1 kg Fragrance @40,
	// 1 Bottle @1 → batch unit cost 2×10 + 0.1×40 + 1×1 = 25.
	order, err := prodSvc.CreateProductionOrder(ctx, 1, decimal.NewFromInt(20))
	if err != nil {
		t.Fatalf("CreateProductionOrder failed: %v", err)
	}
	if order.Status != core.ProductionPending {
		t.Errorf("Expected Pending, got %s", order.Status)
	}

	order, err = prodSvc.CompleteProductionOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("CompleteProductionOrder failed: %v", err)
	}
	if order.Status != core.ProductionCompleted {
		t.Errorf("Expected Completed, got %s", order.Status)
	}
	if order.BatchUnitCost == nil || !order.BatchUnitCost.Equal(decimal.NewFromInt(25)) {
		t.Errorf("Expected batch unit cost 25, got %v", order.BatchUnitCost)
	}

	// Materials consumed: Base Oil 100−40=60, Fragrance 50−2=48, Bottles 500−20=480.
	checks := []struct {
		id   int64
		want string
	}{{1, "60"}, {2, "48"}, {3, "480"}}
	for _, c := range checks {
		var qty decimal.Decimal
		if err := pool.QueryRow(ctx, "SELECT quantity FROM raw_materials WHERE id = $1", c.id).Scan(&qty); err != nil {
			t.Fatal(err)
		}
		if !qty.Equal(dec(c.want)) {
			t.Errorf("Material %d: expected %s remaining, got %s", c.id, c.want, qty)
		}
	}

	// Finished stock: 200 @ 25 plus 20 @ 25 stays at 25; quantity 220.
	var qty, cost decimal.Decimal
	if err := pool.QueryRow(ctx, "SELECT quantity, unit_cost FROM finished_goods WHERE id = 1").Scan(&qty, &cost); err != nil {
		t.Fatal(err)
	}
	if !qty.Equal(decimal.NewFromInt(220)) {
		t.Errorf("Expected 220 finished units, got %s", qty)
	}
	if !cost.Equal(decimal.NewFromInt(25)) {
		t.Errorf("Expected unit cost 25, got %s", cost)
	}

	// Completed is terminal.
	if _, err := prodSvc.CompleteProductionOrder(ctx, order.ID); !errors.Is(err, core.ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition on double completion, got %v", err)
	}
}

func TestProduction_InsufficientMaterialAborts(t *testing.T) {
	pool, _, _, _, prodSvc, ctx := testServices(t)
	defer pool.Close()

	// 60 units need 120 kg Base Oil but only 100 are on hand.
	order, err := prodSvc.CreateProductionOrder(ctx, 1, decimal.NewFromInt(60))
	if err != nil {
		t.Fatal(err)
	}
	_, err = prodSvc.CompleteProductionOrder(ctx, order.ID)
	if !errors.Is(err, core.ErrInsufficientStock) {
		t.Fatalf("Expected ErrInsufficientStock, got %v", err)
	}

	// Nothing consumed, order still pending.
	var qty decimal.Decimal
	if err := pool.QueryRow(ctx, "SELECT quantity FROM raw_materials WHERE id = 1").Scan(&qty); err != nil {
		t.Fatal(err)
	}
	if !qty.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Materials consumed on aborted completion: %s", qty)
	}
	order, err = prodSvc.GetProductionOrder(ctx, order.ID)
	if err != nil {
		t.Fatal(err)
	}
	if order.Status != core.ProductionPending {
		t.Errorf("Expected order still Pending, got %s", order.Status)
	}
}

func TestProduction_CancelPendingOnly(t *testing.T) {
	pool, _, _, _, prodSvc, ctx := testServices(t)
	defer pool.Close()

	order, err := prodSvc.CreateProductionOrder(ctx, 1, decimal.NewFromInt(5))
	if err != nil {
		t.Fatal(err)
	}
	order, err = prodSvc.CancelProductionOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("CancelProductionOrder failed: %v", err)
	}
	if order.Status != core.ProductionCancelled {
		t.Errorf("Expected Cancelled, got %s", order.Status)
	}
	if _, err := prodSvc.CompleteProductionOrder(ctx, order.ID); !errors.Is(err, core.ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition completing a cancelled order, got %v", err)
	}
}
