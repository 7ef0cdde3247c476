package core

import "github.com/shopspring/decimal"

// WeightedAverageCost blends a received batch into an existing stock
// position and returns the new on-hand quantity and per-unit cost:
//
//	newCost = (oldQty×oldCost + recvQty×recvCost) / (oldQty + recvQty)
//
// When the combined quantity is zero the incoming batch cost is used as-is,
// which both avoids division by zero and resets cost history for restocked
// items.
func WeightedAverageCost(oldQty, oldCost, recvQty, recvCost decimal.Decimal) (newQty, newCost decimal.Decimal) {
	newQty = oldQty.Add(recvQty)
	if newQty.Sign() <= 0 {
		return newQty, recvCost
	}
	newCost = oldQty.Mul(oldCost).Add(recvQty.Mul(recvCost)).Div(newQty)
	return newQty, newCost
}

// FormulaUnitCost derives a finished good's unit cost from its bill of
// materials: Σ component unit cost × quantity per unit. materialCosts maps
// raw-material ID to its current weighted-average unit cost; components
// whose material is absent from the map contribute nothing (the caller is
// expected to have logged the gap).
func FormulaUnitCost(components []FormulaComponent, materialCosts map[int64]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, c := range components {
		cost, ok := materialCosts[c.RawMaterialID]
		if !ok {
			continue
		}
		total = total.Add(cost.Mul(c.QtyPerUnit))
	}
	return total
}
