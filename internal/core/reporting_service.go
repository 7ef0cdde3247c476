package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// SalesSummary aggregates non-cancelled invoices in a date range.
type SalesSummary struct {
	From            string          `json:"from"`
	To              string          `json:"to"`
	InvoiceCount    int64           `json:"invoice_count"`
	TotalSales      decimal.Decimal `json:"total_sales"`
	TotalPaid       decimal.Decimal `json:"total_paid"`
	TotalDue        decimal.Decimal `json:"total_due"`
	TotalReturns    decimal.Decimal `json:"total_returns"`
	TotalCommission decimal.Decimal `json:"total_commission"`
}

// DistributorCommissionSummary aggregates commission earned per distributor.
type DistributorCommissionSummary struct {
	DistributorID   int64           `json:"distributor_id"`
	DistributorName string          `json:"distributor_name"`
	SaleCount       int64           `json:"sale_count"`
	TotalSales      decimal.Decimal `json:"total_sales"`
	TotalCommission decimal.Decimal `json:"total_commission"`
}

// StockValuation is the inventory position valued at unit cost.
type StockValuation struct {
	RawMaterialValue  decimal.Decimal `json:"raw_material_value"`
	FinishedGoodValue decimal.Decimal `json:"finished_good_value"`
	TotalValue        decimal.Decimal `json:"total_value"`
}

// ExpenseSummary aggregates operating expenses and salaries in a range.
type ExpenseSummary struct {
	From          string                     `json:"from"`
	To            string                     `json:"to"`
	ByCategory    map[string]decimal.Decimal `json:"by_category"`
	TotalExpenses decimal.Decimal            `json:"total_expenses"`
	TotalSalaries decimal.Decimal            `json:"total_salaries"`
}

// ReportingService serves read-only aggregates. Overdue is a derived view —
// an invoice is overdue when it still carries a due amount past its due
// date — so it never appears as a stored status.
type ReportingService interface {
	SalesSummary(ctx context.Context, from, to string) (*SalesSummary, error)
	OverdueInvoices(ctx context.Context, asOf string) ([]Invoice, error)
	CommissionsByDistributor(ctx context.Context, from, to string) ([]DistributorCommissionSummary, error)
	StockValuation(ctx context.Context) (*StockValuation, error)
	ExpenseSummary(ctx context.Context, from, to string) (*ExpenseSummary, error)
}

type reportingService struct {
	pool *pgxpool.Pool
}

// NewReportingService constructs a ReportingService backed by PostgreSQL.
func NewReportingService(pool *pgxpool.Pool) ReportingService {
	return &reportingService{pool: pool}
}

func (s *reportingService) SalesSummary(ctx context.Context, from, to string) (*SalesSummary, error) {
	if err := validateDateRange(from, to); err != nil {
		return nil, err
	}

	sum := &SalesSummary{From: from, To: to}
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(total_amount), 0),
		       COALESCE(SUM(paid_amount), 0),
		       COALESCE(SUM(due_amount), 0)
		FROM invoices
		WHERE status <> 'Cancelled' AND invoice_date BETWEEN $1 AND $2`,
		from, to,
	).Scan(&sum.InvoiceCount, &sum.TotalSales, &sum.TotalPaid, &sum.TotalDue)
	if err != nil {
		return nil, fmt.Errorf("aggregate invoices: %w", err)
	}

	err = s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM sales_returns WHERE return_date BETWEEN $1 AND $2`,
		from, to,
	).Scan(&sum.TotalReturns)
	if err != nil {
		return nil, fmt.Errorf("aggregate returns: %w", err)
	}

	err = s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(commission_amount), 0)
		FROM sales_commissions WHERE sale_date BETWEEN $1 AND $2`,
		from, to,
	).Scan(&sum.TotalCommission)
	if err != nil {
		return nil, fmt.Errorf("aggregate commissions: %w", err)
	}
	return sum, nil
}

func (s *reportingService) OverdueInvoices(ctx context.Context, asOf string) ([]Invoice, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, invoice_number, distributor_id, customer_name, customer_email,
		       invoice_date::text, due_date::text, total_amount, paid_amount, due_amount,
		       status, created_at, cancelled_at
		FROM invoices
		WHERE status IN ('Unpaid', 'Partially Paid')
		  AND due_amount > 0
		  AND due_date IS NOT NULL
		  AND due_date < $1
		ORDER BY due_date, id`,
		asOf,
	)
	if err != nil {
		return nil, fmt.Errorf("list overdue invoices: %w", err)
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		var inv Invoice
		if err := rows.Scan(
			&inv.ID, &inv.InvoiceNumber, &inv.DistributorID, &inv.CustomerName, &inv.CustomerEmail,
			&inv.InvoiceDate, &inv.DueDate, &inv.TotalAmount, &inv.PaidAmount, &inv.DueAmount,
			&inv.Status, &inv.CreatedAt, &inv.CancelledAt,
		); err != nil {
			return nil, fmt.Errorf("scan overdue invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func (s *reportingService) CommissionsByDistributor(ctx context.Context, from, to string) ([]DistributorCommissionSummary, error) {
	if err := validateDateRange(from, to); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `
		SELECT d.id, d.name, COUNT(sc.id),
		       COALESCE(SUM(sc.sale_amount), 0),
		       COALESCE(SUM(sc.commission_amount), 0)
		FROM sales_commissions sc
		JOIN distributors d ON d.id = sc.distributor_id
		WHERE sc.sale_date BETWEEN $1 AND $2
		GROUP BY d.id, d.name
		ORDER BY SUM(sc.commission_amount) DESC`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregate commissions by distributor: %w", err)
	}
	defer rows.Close()

	var summaries []DistributorCommissionSummary
	for rows.Next() {
		var d DistributorCommissionSummary
		if err := rows.Scan(&d.DistributorID, &d.DistributorName, &d.SaleCount, &d.TotalSales, &d.TotalCommission); err != nil {
			return nil, fmt.Errorf("scan distributor commission summary: %w", err)
		}
		summaries = append(summaries, d)
	}
	return summaries, rows.Err()
}

func (s *reportingService) StockValuation(ctx context.Context) (*StockValuation, error) {
	var v StockValuation
	err := s.pool.QueryRow(ctx,
		"SELECT COALESCE(SUM(quantity * unit_cost), 0) FROM raw_materials",
	).Scan(&v.RawMaterialValue)
	if err != nil {
		return nil, fmt.Errorf("value raw materials: %w", err)
	}
	err = s.pool.QueryRow(ctx,
		"SELECT COALESCE(SUM(quantity * unit_cost), 0) FROM finished_goods",
	).Scan(&v.FinishedGoodValue)
	if err != nil {
		return nil, fmt.Errorf("value finished goods: %w", err)
	}
	v.TotalValue = v.RawMaterialValue.Add(v.FinishedGoodValue)
	return &v, nil
}

func (s *reportingService) ExpenseSummary(ctx context.Context, from, to string) (*ExpenseSummary, error) {
	if err := validateDateRange(from, to); err != nil {
		return nil, err
	}

	sum := &ExpenseSummary{From: from, To: to, ByCategory: map[string]decimal.Decimal{}}
	rows, err := s.pool.Query(ctx, `
		SELECT category, COALESCE(SUM(amount), 0)
		FROM expenses
		WHERE expense_date BETWEEN $1 AND $2
		GROUP BY category`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregate expenses: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var category string
		var amount decimal.Decimal
		if err := rows.Scan(&category, &amount); err != nil {
			return nil, fmt.Errorf("scan expense category: %w", err)
		}
		sum.ByCategory[category] = amount
		sum.TotalExpenses = sum.TotalExpenses.Add(amount)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM salary_payments WHERE pay_date BETWEEN $1 AND $2`,
		from, to,
	).Scan(&sum.TotalSalaries)
	if err != nil {
		return nil, fmt.Errorf("aggregate salaries: %w", err)
	}
	return sum, nil
}
