package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"erp-backend/internal/ai"
	"erp-backend/internal/core"

	"github.com/shopspring/decimal"
)

type appService struct {
	invoices   core.InvoiceService
	purchases  core.PurchaseService
	returns    core.ReturnService
	production core.ProductionService
	materials  core.MaterialService
	partners   core.PartnerService
	payroll    core.PayrollService
	reporting  core.ReportingService
	agent      ai.AgentService
}

// NewAppService constructs an appService that satisfies ApplicationService.
// agent may be nil when no AI key is configured; InterpretExpense then
// returns an error.
func NewAppService(
	invoices core.InvoiceService,
	purchases core.PurchaseService,
	returns core.ReturnService,
	production core.ProductionService,
	materials core.MaterialService,
	partners core.PartnerService,
	payroll core.PayrollService,
	reporting core.ReportingService,
	agent ai.AgentService,
) ApplicationService {
	return &appService{
		invoices:   invoices,
		purchases:  purchases,
		returns:    returns,
		production: production,
		materials:  materials,
		partners:   partners,
		payroll:    payroll,
		reporting:  reporting,
		agent:      agent,
	}
}

// parseAmount parses a decimal string; empty means zero.
func parseAmount(field, s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", field, s, err)
	}
	return d, nil
}

// ── Sales ────────────────────────────────────────────────────────────────────

func (s *appService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResult, error) {
	paid, err := parseAmount("paid_amount", req.PaidAmount)
	if err != nil {
		return nil, err
	}
	items := make([]core.InvoiceLineInput, len(req.Items))
	for i, l := range req.Items {
		qty, err := parseAmount("quantity", l.Quantity)
		if err != nil {
			return nil, err
		}
		price, err := parseAmount("unit_price", l.UnitPrice)
		if err != nil {
			return nil, err
		}
		items[i] = core.InvoiceLineInput{
			FinishedGoodID: l.FinishedGoodID,
			Quantity:       qty,
			UnitPrice:      price,
		}
	}

	inv, err := s.invoices.CreateInvoice(ctx, core.CreateInvoiceInput{
		DistributorID: req.DistributorID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		InvoiceDate:   req.InvoiceDate,
		DueDate:       req.DueDate,
		PaidAmount:    paid,
		Items:         items,
	})
	if err != nil {
		return nil, err
	}
	return &InvoiceResult{Invoice: inv}, nil
}

// GetInvoice accepts a numeric ID or an invoice number string.
func (s *appService) GetInvoice(ctx context.Context, ref string) (*InvoiceResult, error) {
	var inv *core.Invoice
	var err error
	if id, convErr := strconv.ParseInt(ref, 10, 64); convErr == nil {
		inv, err = s.invoices.GetInvoice(ctx, id)
	} else {
		inv, err = s.invoices.GetInvoiceByNumber(ctx, ref)
	}
	if err != nil {
		return nil, err
	}
	return &InvoiceResult{Invoice: inv}, nil
}

func (s *appService) ListInvoices(ctx context.Context, status string) (*InvoiceListResult, error) {
	var filter *core.InvoiceStatus
	if status != "" {
		st := core.InvoiceStatus(status)
		filter = &st
	}
	invoices, err := s.invoices.ListInvoices(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &InvoiceListResult{Invoices: invoices}, nil
}

func (s *appService) RecordInvoicePayment(ctx context.Context, invoiceID int64, amount string) (*InvoiceResult, error) {
	amt, err := parseAmount("amount", amount)
	if err != nil {
		return nil, err
	}
	inv, err := s.invoices.RecordPayment(ctx, invoiceID, amt)
	if err != nil {
		return nil, err
	}
	return &InvoiceResult{Invoice: inv}, nil
}

func (s *appService) CancelInvoice(ctx context.Context, invoiceID int64) (*InvoiceResult, error) {
	inv, err := s.invoices.CancelInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return &InvoiceResult{Invoice: inv}, nil
}

func (s *appService) ListInvoiceCommissions(ctx context.Context, invoiceID int64) (*CommissionListResult, error) {
	commissions, err := s.invoices.ListCommissionsForInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return &CommissionListResult{Commissions: commissions}, nil
}

// ── Returns ──────────────────────────────────────────────────────────────────

func (s *appService) ProcessReturn(ctx context.Context, req ProcessReturnRequest) (*ReturnResult, error) {
	items := make([]core.ReturnLineInput, len(req.Items))
	for i, l := range req.Items {
		qty, err := parseAmount("quantity", l.Quantity)
		if err != nil {
			return nil, err
		}
		items[i] = core.ReturnLineInput{FinishedGoodID: l.FinishedGoodID, Quantity: qty}
	}
	ret, err := s.returns.ProcessReturn(ctx, core.ProcessReturnInput{
		InvoiceID:  req.InvoiceID,
		ReturnDate: req.ReturnDate,
		Reason:     req.Reason,
		Items:      items,
	})
	if err != nil {
		return nil, err
	}
	return &ReturnResult{Return: ret}, nil
}

func (s *appService) ListReturns(ctx context.Context, invoiceID *int64) (*ReturnListResult, error) {
	returns, err := s.returns.ListReturns(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return &ReturnListResult{Returns: returns}, nil
}

// ── Purchasing ───────────────────────────────────────────────────────────────

func (s *appService) CreatePurchaseOrder(ctx context.Context, req CreatePurchaseOrderRequest) (*PurchaseOrderResult, error) {
	discount, err := parseAmount("discount", req.Discount)
	if err != nil {
		return nil, err
	}
	tax, err := parseAmount("tax", req.Tax)
	if err != nil {
		return nil, err
	}
	paid, err := parseAmount("paid_amount", req.PaidAmount)
	if err != nil {
		return nil, err
	}
	items := make([]core.PurchaseLineInput, len(req.Items))
	for i, l := range req.Items {
		qty, err := parseAmount("quantity", l.Quantity)
		if err != nil {
			return nil, err
		}
		cost, err := parseAmount("unit_cost", l.UnitCost)
		if err != nil {
			return nil, err
		}
		items[i] = core.PurchaseLineInput{RawMaterialID: l.RawMaterialID, Quantity: qty, UnitCost: cost}
	}

	po, err := s.purchases.CreatePurchaseOrder(ctx, core.CreatePurchaseOrderInput{
		SupplierID: req.SupplierID,
		OrderDate:  req.OrderDate,
		Discount:   discount,
		Tax:        tax,
		PaidAmount: paid,
		Items:      items,
	})
	if err != nil {
		return nil, err
	}
	return &PurchaseOrderResult{Order: po}, nil
}

func (s *appService) GetPurchaseOrder(ctx context.Context, orderID int64) (*PurchaseOrderResult, error) {
	po, err := s.purchases.GetPurchaseOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &PurchaseOrderResult{Order: po}, nil
}

func (s *appService) ListPurchaseOrders(ctx context.Context, delivery string) (*PurchaseOrderListResult, error) {
	var filter *core.DeliveryStatus
	if delivery != "" {
		d := core.DeliveryStatus(delivery)
		filter = &d
	}
	orders, err := s.purchases.ListPurchaseOrders(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &PurchaseOrderListResult{Orders: orders}, nil
}

func (s *appService) ShipPurchaseOrder(ctx context.Context, orderID int64) (*PurchaseOrderResult, error) {
	po, err := s.purchases.MarkShipped(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &PurchaseOrderResult{Order: po}, nil
}

func (s *appService) ReceivePurchaseOrder(ctx context.Context, orderID int64) (*PurchaseOrderResult, error) {
	po, err := s.purchases.ReceivePurchaseOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &PurchaseOrderResult{Order: po}, nil
}

func (s *appService) CancelPurchaseOrder(ctx context.Context, orderID int64) (*PurchaseOrderResult, error) {
	po, err := s.purchases.CancelPurchaseOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &PurchaseOrderResult{Order: po}, nil
}

func (s *appService) RecordPurchasePayment(ctx context.Context, orderID int64, amount string) (*PurchaseOrderResult, error) {
	amt, err := parseAmount("amount", amount)
	if err != nil {
		return nil, err
	}
	po, err := s.purchases.RecordPayment(ctx, orderID, amt)
	if err != nil {
		return nil, err
	}
	return &PurchaseOrderResult{Order: po}, nil
}

// ── Production ───────────────────────────────────────────────────────────────

func (s *appService) CreateProductionOrder(ctx context.Context, finishedGoodID int64, quantity string) (*ProductionOrderResult, error) {
	qty, err := parseAmount("quantity", quantity)
	if err != nil {
		return nil, err
	}
	order, err := s.production.CreateProductionOrder(ctx, finishedGoodID, qty)
	if err != nil {
		return nil, err
	}
	return &ProductionOrderResult{Order: order}, nil
}

func (s *appService) CompleteProductionOrder(ctx context.Context, orderID int64) (*ProductionOrderResult, error) {
	order, err := s.production.CompleteProductionOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &ProductionOrderResult{Order: order}, nil
}

func (s *appService) CancelProductionOrder(ctx context.Context, orderID int64) (*ProductionOrderResult, error) {
	order, err := s.production.CancelProductionOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &ProductionOrderResult{Order: order}, nil
}

func (s *appService) ListProductionOrders(ctx context.Context, status string) (*ProductionOrderListResult, error) {
	var filter *core.ProductionStatus
	if status != "" {
		st := core.ProductionStatus(status)
		filter = &st
	}
	orders, err := s.production.ListProductionOrders(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ProductionOrderListResult{Orders: orders}, nil
}

// ── Master data ──────────────────────────────────────────────────────────────

func (s *appService) ListRawMaterials(ctx context.Context) (*RawMaterialListResult, error) {
	materials, err := s.materials.ListRawMaterials(ctx)
	if err != nil {
		return nil, err
	}
	return &RawMaterialListResult{Materials: materials}, nil
}

func (s *appService) CreateRawMaterial(ctx context.Context, req CreateRawMaterialRequest) (*RawMaterialResult, error) {
	cost, err := parseAmount("unit_cost", req.UnitCost)
	if err != nil {
		return nil, err
	}
	m, err := s.materials.CreateRawMaterial(ctx, req.Name, req.Category, req.Unit, cost)
	if err != nil {
		return nil, err
	}
	return &RawMaterialResult{Material: m}, nil
}

func (s *appService) AdjustRawMaterialStock(ctx context.Context, id int64, delta, reason string) (*RawMaterialResult, error) {
	d, err := parseAmount("delta", delta)
	if err != nil {
		return nil, err
	}
	m, err := s.materials.AdjustRawMaterialStock(ctx, id, d, reason)
	if err != nil {
		return nil, err
	}
	return &RawMaterialResult{Material: m}, nil
}

func (s *appService) ListFinishedGoods(ctx context.Context) (*FinishedGoodListResult, error) {
	goods, err := s.materials.ListFinishedGoods(ctx)
	if err != nil {
		return nil, err
	}
	return &FinishedGoodListResult{Goods: goods}, nil
}

func (s *appService) CreateFinishedGood(ctx context.Context, req CreateFinishedGoodRequest) (*FinishedGoodResult, error) {
	var sellingPrice *decimal.Decimal
	if strings.TrimSpace(req.SellingPrice) != "" {
		p, err := parseAmount("selling_price", req.SellingPrice)
		if err != nil {
			return nil, err
		}
		sellingPrice = &p
	}
	components := make([]core.FormulaComponentInput, len(req.Components))
	for i, c := range req.Components {
		qty, err := parseAmount("qty_per_unit", c.QtyPerUnit)
		if err != nil {
			return nil, err
		}
		components[i] = core.FormulaComponentInput{RawMaterialID: c.RawMaterialID, QtyPerUnit: qty}
	}
	g, err := s.materials.CreateFinishedGood(ctx, core.CreateFinishedGoodInput{
		ProductName:  req.ProductName,
		SellingPrice: sellingPrice,
		Components:   components,
	})
	if err != nil {
		return nil, err
	}
	return &FinishedGoodResult{Good: g}, nil
}

func (s *appService) SetSellingPrice(ctx context.Context, id int64, price string) (*FinishedGoodResult, error) {
	p, err := parseAmount("selling_price", price)
	if err != nil {
		return nil, err
	}
	g, err := s.materials.SetSellingPrice(ctx, id, p)
	if err != nil {
		return nil, err
	}
	return &FinishedGoodResult{Good: g}, nil
}

func (s *appService) ListDistributors(ctx context.Context) (*DistributorListResult, error) {
	distributors, err := s.partners.ListDistributors(ctx)
	if err != nil {
		return nil, err
	}
	return &DistributorListResult{Distributors: distributors}, nil
}

func (s *appService) CreateDistributor(ctx context.Context, req CreatePartnerRequest) (*DistributorResult, error) {
	d, err := s.partners.CreateDistributor(ctx, req.Name, req.Tier, req.Email, req.Phone, req.Address)
	if err != nil {
		return nil, err
	}
	return &DistributorResult{Distributor: d}, nil
}

func (s *appService) ListSuppliers(ctx context.Context) (*SupplierListResult, error) {
	suppliers, err := s.partners.ListSuppliers(ctx)
	if err != nil {
		return nil, err
	}
	return &SupplierListResult{Suppliers: suppliers}, nil
}

func (s *appService) CreateSupplier(ctx context.Context, req CreatePartnerRequest) (*SupplierResult, error) {
	sup, err := s.partners.CreateSupplier(ctx, req.Name, req.Category, req.Email, req.Phone, req.Address)
	if err != nil {
		return nil, err
	}
	return &SupplierResult{Supplier: sup}, nil
}

func (s *appService) ListCommissionRules(ctx context.Context, activeOnly bool) (*CommissionRuleListResult, error) {
	rules, err := s.partners.ListCommissionRules(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	return &CommissionRuleListResult{Rules: rules}, nil
}

func (s *appService) CreateCommissionRule(ctx context.Context, req CreateCommissionRuleRequest) (*CommissionRuleResult, error) {
	rate, err := parseAmount("rate", req.Rate)
	if err != nil {
		return nil, err
	}
	rule, err := s.partners.CreateCommissionRule(ctx, req.RuleName, req.AppliesTo, core.CommissionType(req.RuleType), rate)
	if err != nil {
		return nil, err
	}
	return &CommissionRuleResult{Rule: rule}, nil
}

func (s *appService) SetCommissionRuleActive(ctx context.Context, id int64, active bool) (*CommissionRuleResult, error) {
	rule, err := s.partners.SetCommissionRuleActive(ctx, id, active)
	if err != nil {
		return nil, err
	}
	return &CommissionRuleResult{Rule: rule}, nil
}

// ── Payroll and expenses ─────────────────────────────────────────────────────

func (s *appService) RecordExpense(ctx context.Context, req RecordExpenseRequest) (*ExpenseResult, error) {
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		return nil, err
	}
	e, err := s.payroll.RecordExpense(ctx, req.Category, req.Description, amount, req.ExpenseDate)
	if err != nil {
		return nil, err
	}
	return &ExpenseResult{Expense: e}, nil
}

func (s *appService) ListExpenses(ctx context.Context, from, to string) (*ExpenseListResult, error) {
	expenses, err := s.payroll.ListExpenses(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return &ExpenseListResult{Expenses: expenses}, nil
}

func (s *appService) RecordSalaryPayment(ctx context.Context, req RecordSalaryRequest) (*SalaryResult, error) {
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		return nil, err
	}
	p, err := s.payroll.RecordSalaryPayment(ctx, req.EmployeeName, amount, req.PayPeriod, req.PayDate)
	if err != nil {
		return nil, err
	}
	return &SalaryResult{Payment: p}, nil
}

func (s *appService) ListSalaryPayments(ctx context.Context, from, to string) (*SalaryListResult, error) {
	payments, err := s.payroll.ListSalaryPayments(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return &SalaryListResult{Payments: payments}, nil
}

func (s *appService) InterpretExpense(ctx context.Context, text string) (*ExpenseDraftResult, error) {
	if s.agent == nil {
		return nil, fmt.Errorf("AI assistant is not configured")
	}
	draft, err := s.agent.InterpretExpense(ctx, text)
	if err != nil {
		return nil, err
	}
	return &ExpenseDraftResult{Draft: draft}, nil
}

// ── Reporting ────────────────────────────────────────────────────────────────

func (s *appService) SalesSummary(ctx context.Context, from, to string) (*SalesSummaryResult, error) {
	summary, err := s.reporting.SalesSummary(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return &SalesSummaryResult{Summary: summary}, nil
}

func (s *appService) OverdueInvoices(ctx context.Context, asOf string) (*InvoiceListResult, error) {
	invoices, err := s.reporting.OverdueInvoices(ctx, asOf)
	if err != nil {
		return nil, err
	}
	return &InvoiceListResult{Invoices: invoices}, nil
}

func (s *appService) CommissionsByDistributor(ctx context.Context, from, to string) (*DistributorCommissionResult, error) {
	summaries, err := s.reporting.CommissionsByDistributor(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return &DistributorCommissionResult{Summaries: summaries}, nil
}

func (s *appService) StockValuation(ctx context.Context) (*StockValuationResult, error) {
	valuation, err := s.reporting.StockValuation(ctx)
	if err != nil {
		return nil, err
	}
	return &StockValuationResult{Valuation: valuation}, nil
}

func (s *appService) ExpenseSummary(ctx context.Context, from, to string) (*ExpenseSummaryResult, error) {
	summary, err := s.reporting.ExpenseSummary(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return &ExpenseSummaryResult{Summary: summary}, nil
}
