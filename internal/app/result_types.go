package app

import "erp-backend/internal/core"

// InvoiceResult is returned by invoice lifecycle operations.
type InvoiceResult struct {
	Invoice *core.Invoice `json:"invoice"`
}

// InvoiceListResult is returned by ListInvoices and OverdueInvoices.
type InvoiceListResult struct {
	Invoices []core.Invoice `json:"invoices"`
}

// CommissionListResult is returned by ListInvoiceCommissions.
type CommissionListResult struct {
	Commissions []core.SalesCommission `json:"commissions"`
}

// ReturnResult is returned by ProcessReturn.
type ReturnResult struct {
	Return *core.SalesReturn `json:"return"`
}

// ReturnListResult is returned by ListReturns.
type ReturnListResult struct {
	Returns []core.SalesReturn `json:"returns"`
}

// PurchaseOrderResult is returned by purchase order lifecycle operations.
type PurchaseOrderResult struct {
	Order *core.PurchaseOrder `json:"order"`
}

// PurchaseOrderListResult is returned by ListPurchaseOrders.
type PurchaseOrderListResult struct {
	Orders []core.PurchaseOrder `json:"orders"`
}

// ProductionOrderResult is returned by production lifecycle operations.
type ProductionOrderResult struct {
	Order *core.ProductionOrder `json:"order"`
}

// ProductionOrderListResult is returned by ListProductionOrders.
type ProductionOrderListResult struct {
	Orders []core.ProductionOrder `json:"orders"`
}

// RawMaterialResult is returned by raw material operations.
type RawMaterialResult struct {
	Material *core.RawMaterial `json:"material"`
}

// RawMaterialListResult is returned by ListRawMaterials.
type RawMaterialListResult struct {
	Materials []core.RawMaterial `json:"materials"`
}

// FinishedGoodResult is returned by finished good operations.
type FinishedGoodResult struct {
	Good *core.FinishedGood `json:"good"`
}

// FinishedGoodListResult is returned by ListFinishedGoods.
type FinishedGoodListResult struct {
	Goods []core.FinishedGood `json:"goods"`
}

// DistributorResult is returned by distributor operations.
type DistributorResult struct {
	Distributor *core.Distributor `json:"distributor"`
}

// DistributorListResult is returned by ListDistributors.
type DistributorListResult struct {
	Distributors []core.Distributor `json:"distributors"`
}

// SupplierResult is returned by supplier operations.
type SupplierResult struct {
	Supplier *core.Supplier `json:"supplier"`
}

// SupplierListResult is returned by ListSuppliers.
type SupplierListResult struct {
	Suppliers []core.Supplier `json:"suppliers"`
}

// CommissionRuleResult is returned by commission rule operations.
type CommissionRuleResult struct {
	Rule *core.CommissionRule `json:"rule"`
}

// CommissionRuleListResult is returned by ListCommissionRules.
type CommissionRuleListResult struct {
	Rules []core.CommissionRule `json:"rules"`
}

// ExpenseResult is returned by RecordExpense.
type ExpenseResult struct {
	Expense *core.Expense `json:"expense"`
}

// ExpenseListResult is returned by ListExpenses.
type ExpenseListResult struct {
	Expenses []core.Expense `json:"expenses"`
}

// SalaryResult is returned by RecordSalaryPayment.
type SalaryResult struct {
	Payment *core.SalaryPayment `json:"payment"`
}

// SalaryListResult is returned by ListSalaryPayments.
type SalaryListResult struct {
	Payments []core.SalaryPayment `json:"payments"`
}

// ExpenseDraftResult is returned by InterpretExpense. The draft is not
// persisted; the caller confirms it via RecordExpense.
type ExpenseDraftResult struct {
	Draft *core.ExpenseDraft `json:"draft"`
}

// SalesSummaryResult is returned by SalesSummary.
type SalesSummaryResult struct {
	Summary *core.SalesSummary `json:"summary"`
}

// DistributorCommissionResult is returned by CommissionsByDistributor.
type DistributorCommissionResult struct {
	Summaries []core.DistributorCommissionSummary `json:"summaries"`
}

// StockValuationResult is returned by StockValuation.
type StockValuationResult struct {
	Valuation *core.StockValuation `json:"valuation"`
}

// ExpenseSummaryResult is returned by ExpenseSummary.
type ExpenseSummaryResult struct {
	Summary *core.ExpenseSummary `json:"summary"`
}
