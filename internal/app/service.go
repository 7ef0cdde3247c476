package app

import "context"

// ApplicationService is the single interface all adapters call. It decouples
// presentation from business logic: implementations contain no display logic
// and accept/return plain data types.
type ApplicationService interface {
	// Sales
	CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResult, error)
	GetInvoice(ctx context.Context, ref string) (*InvoiceResult, error)
	ListInvoices(ctx context.Context, status string) (*InvoiceListResult, error)
	RecordInvoicePayment(ctx context.Context, invoiceID int64, amount string) (*InvoiceResult, error)
	CancelInvoice(ctx context.Context, invoiceID int64) (*InvoiceResult, error)
	ListInvoiceCommissions(ctx context.Context, invoiceID int64) (*CommissionListResult, error)

	// Returns
	ProcessReturn(ctx context.Context, req ProcessReturnRequest) (*ReturnResult, error)
	ListReturns(ctx context.Context, invoiceID *int64) (*ReturnListResult, error)

	// Purchasing
	CreatePurchaseOrder(ctx context.Context, req CreatePurchaseOrderRequest) (*PurchaseOrderResult, error)
	GetPurchaseOrder(ctx context.Context, orderID int64) (*PurchaseOrderResult, error)
	ListPurchaseOrders(ctx context.Context, delivery string) (*PurchaseOrderListResult, error)
	ShipPurchaseOrder(ctx context.Context, orderID int64) (*PurchaseOrderResult, error)
	ReceivePurchaseOrder(ctx context.Context, orderID int64) (*PurchaseOrderResult, error)
	CancelPurchaseOrder(ctx context.Context, orderID int64) (*PurchaseOrderResult, error)
	RecordPurchasePayment(ctx context.Context, orderID int64, amount string) (*PurchaseOrderResult, error)

	// Production
	CreateProductionOrder(ctx context.Context, finishedGoodID int64, quantity string) (*ProductionOrderResult, error)
	CompleteProductionOrder(ctx context.Context, orderID int64) (*ProductionOrderResult, error)
	CancelProductionOrder(ctx context.Context, orderID int64) (*ProductionOrderResult, error)
	ListProductionOrders(ctx context.Context, status string) (*ProductionOrderListResult, error)

	// Master data
	ListRawMaterials(ctx context.Context) (*RawMaterialListResult, error)
	CreateRawMaterial(ctx context.Context, req CreateRawMaterialRequest) (*RawMaterialResult, error)
	AdjustRawMaterialStock(ctx context.Context, id int64, delta, reason string) (*RawMaterialResult, error)
	ListFinishedGoods(ctx context.Context) (*FinishedGoodListResult, error)
	CreateFinishedGood(ctx context.Context, req CreateFinishedGoodRequest) (*FinishedGoodResult, error)
	SetSellingPrice(ctx context.Context, id int64, price string) (*FinishedGoodResult, error)
	ListDistributors(ctx context.Context) (*DistributorListResult, error)
	CreateDistributor(ctx context.Context, req CreatePartnerRequest) (*DistributorResult, error)
	ListSuppliers(ctx context.Context) (*SupplierListResult, error)
	CreateSupplier(ctx context.Context, req CreatePartnerRequest) (*SupplierResult, error)
	ListCommissionRules(ctx context.Context, activeOnly bool) (*CommissionRuleListResult, error)
	CreateCommissionRule(ctx context.Context, req CreateCommissionRuleRequest) (*CommissionRuleResult, error)
	SetCommissionRuleActive(ctx context.Context, id int64, active bool) (*CommissionRuleResult, error)

	// Payroll and expenses
	RecordExpense(ctx context.Context, req RecordExpenseRequest) (*ExpenseResult, error)
	ListExpenses(ctx context.Context, from, to string) (*ExpenseListResult, error)
	RecordSalaryPayment(ctx context.Context, req RecordSalaryRequest) (*SalaryResult, error)
	ListSalaryPayments(ctx context.Context, from, to string) (*SalaryListResult, error)

	// InterpretExpense sends a natural-language expense description to the
	// AI agent and returns a structured draft for human confirmation.
	InterpretExpense(ctx context.Context, text string) (*ExpenseDraftResult, error)

	// Reporting
	SalesSummary(ctx context.Context, from, to string) (*SalesSummaryResult, error)
	OverdueInvoices(ctx context.Context, asOf string) (*InvoiceListResult, error)
	CommissionsByDistributor(ctx context.Context, from, to string) (*DistributorCommissionResult, error)
	StockValuation(ctx context.Context) (*StockValuationResult, error)
	ExpenseSummary(ctx context.Context, from, to string) (*ExpenseSummaryResult, error)
}
