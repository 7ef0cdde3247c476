package core_test

import (
	"testing"

	"erp-backend/internal/core"

	"github.com/shopspring/decimal"
)

func TestWeightedAverageCost(t *testing.T) {
	tests := []struct {
		name     string
		oldQty   string
		oldCost  string
		recvQty  string
		recvCost string
		wantQty  string
		wantCost string
	}{
		{
			name:   "blend two batches",
			oldQty: "100", oldCost: "10.00",
			recvQty: "50", recvCost: "16.00",
			wantQty: "150", wantCost: "12",
		},
		{
			name:   "empty stock takes incoming cost",
			oldQty: "0", oldCost: "7.50",
			recvQty: "200", recvCost: "9.25",
			wantQty: "200", wantCost: "9.25",
		},
		{
			name:   "same cost stays put",
			oldQty: "30", oldCost: "4.00",
			recvQty: "70", recvCost: "4.00",
			wantQty: "100", wantCost: "4",
		},
		{
			name:   "fractional quantities",
			oldQty: "2.5", oldCost: "8.00",
			recvQty: "2.5", recvCost: "12.00",
			wantQty: "5", wantCost: "10",
		},
		{
			name:   "zero combined quantity keeps incoming cost",
			oldQty: "0", oldCost: "3.00",
			recvQty: "0", recvCost: "5.00",
			wantQty: "0", wantCost: "5.00",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotQty, gotCost := core.WeightedAverageCost(dec(tt.oldQty), dec(tt.oldCost), dec(tt.recvQty), dec(tt.recvCost))
			if !gotQty.Equal(dec(tt.wantQty)) {
				t.Errorf("quantity = %s, want %s", gotQty, tt.wantQty)
			}
			if !gotCost.Equal(dec(tt.wantCost)) {
				t.Errorf("unit cost = %s, want %s", gotCost, tt.wantCost)
			}
		})
	}
}

func TestWeightedAverageCost_SequentialReceipts(t *testing.T) {
	// Receiving 100@10 then 100@20 must equal one blended position of
	// 200@15, regardless of receipt order.
	qty, cost := core.WeightedAverageCost(dec("0"), dec("0"), dec("100"), dec("10"))
	qty, cost = core.WeightedAverageCost(qty, cost, dec("100"), dec("20"))
	if !qty.Equal(dec("200")) || !cost.Equal(dec("15")) {
		t.Errorf("after two receipts got %s @ %s, want 200 @ 15", qty, cost)
	}

	qty, cost = core.WeightedAverageCost(dec("0"), dec("0"), dec("100"), dec("20"))
	qty, cost = core.WeightedAverageCost(qty, cost, dec("100"), dec("10"))
	if !qty.Equal(dec("200")) || !cost.Equal(dec("15")) {
		t.Errorf("reversed order got %s @ %s, want 200 @ 15", qty, cost)
	}
}

func TestFormulaUnitCost(t *testing.T) {
	components := []core.FormulaComponent{
		{RawMaterialID: 1, QtyPerUnit: dec("2")},    // 2 × 5.00 = 10.00
		{RawMaterialID: 2, QtyPerUnit: dec("0.5")},  // 0.5 × 12.00 = 6.00
		{RawMaterialID: 3, QtyPerUnit: dec("0.25")}, // 0.25 × 4.00 = 1.00
	}
	costs := map[int64]decimal.Decimal{
		1: dec("5.00"),
		2: dec("12.00"),
		3: dec("4.00"),
	}

	got := core.FormulaUnitCost(components, costs)
	if !got.Equal(dec("17")) {
		t.Errorf("FormulaUnitCost = %s, want 17", got)
	}
}

func TestFormulaUnitCost_MissingMaterialSkipped(t *testing.T) {
	components := []core.FormulaComponent{
		{RawMaterialID: 1, QtyPerUnit: dec("3")},
		{RawMaterialID: 99, QtyPerUnit: dec("10")},
	}
	costs := map[int64]decimal.Decimal{1: dec("2.00")}

	got := core.FormulaUnitCost(components, costs)
	if !got.Equal(dec("6")) {
		t.Errorf("FormulaUnitCost = %s, want 6 (unknown material contributes nothing)", got)
	}
}

func TestFormulaUnitCost_Empty(t *testing.T) {
	got := core.FormulaUnitCost(nil, nil)
	if !got.IsZero() {
		t.Errorf("FormulaUnitCost(nil, nil) = %s, want 0", got)
	}
}
