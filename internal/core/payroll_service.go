package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PayrollService records operating expenses and salary payments. These are
// append-only ledgers feeding the expense summaries in reporting.
type PayrollService interface {
	RecordExpense(ctx context.Context, category, description string, amount decimal.Decimal, expenseDate string) (*Expense, error)
	ListExpenses(ctx context.Context, from, to string) ([]Expense, error)

	RecordSalaryPayment(ctx context.Context, employeeName string, amount decimal.Decimal, payPeriod, payDate string) (*SalaryPayment, error)
	ListSalaryPayments(ctx context.Context, from, to string) ([]SalaryPayment, error)
}

type payrollService struct {
	pool *pgxpool.Pool
}

// NewPayrollService constructs a PayrollService backed by PostgreSQL.
func NewPayrollService(pool *pgxpool.Pool) PayrollService {
	return &payrollService{pool: pool}
}

func (s *payrollService) RecordExpense(ctx context.Context, category, description string, amount decimal.Decimal, expenseDate string) (*Expense, error) {
	if category == "" {
		return nil, fmt.Errorf("expense category is required")
	}
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("expense amount must be positive, got %s", amount)
	}
	if _, err := time.Parse("2006-01-02", expenseDate); err != nil {
		return nil, fmt.Errorf("invalid expense date %q: %w", expenseDate, err)
	}

	var e Expense
	err := s.pool.QueryRow(ctx, `
		INSERT INTO expenses (category, description, amount, expense_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id, category, description, amount, expense_date::text, created_at`,
		category, description, amount, expenseDate,
	).Scan(&e.ID, &e.Category, &e.Description, &e.Amount, &e.ExpenseDate, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert expense: %w", err)
	}
	return &e, nil
}

func (s *payrollService) ListExpenses(ctx context.Context, from, to string) ([]Expense, error) {
	if err := validateDateRange(from, to); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, category, description, amount, expense_date::text, created_at
		FROM expenses
		WHERE expense_date BETWEEN $1 AND $2
		ORDER BY expense_date, id`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []Expense
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.Category, &e.Description, &e.Amount, &e.ExpenseDate, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (s *payrollService) RecordSalaryPayment(ctx context.Context, employeeName string, amount decimal.Decimal, payPeriod, payDate string) (*SalaryPayment, error) {
	if employeeName == "" {
		return nil, fmt.Errorf("employee name is required")
	}
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("salary amount must be positive, got %s", amount)
	}
	if _, err := time.Parse("2006-01-02", payDate); err != nil {
		return nil, fmt.Errorf("invalid pay date %q: %w", payDate, err)
	}

	var p SalaryPayment
	err := s.pool.QueryRow(ctx, `
		INSERT INTO salary_payments (employee_name, amount, pay_period, pay_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id, employee_name, amount, pay_period, pay_date::text, created_at`,
		employeeName, amount, payPeriod, payDate,
	).Scan(&p.ID, &p.EmployeeName, &p.Amount, &p.PayPeriod, &p.PayDate, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert salary payment: %w", err)
	}
	return &p, nil
}

func (s *payrollService) ListSalaryPayments(ctx context.Context, from, to string) ([]SalaryPayment, error) {
	if err := validateDateRange(from, to); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, employee_name, amount, pay_period, pay_date::text, created_at
		FROM salary_payments
		WHERE pay_date BETWEEN $1 AND $2
		ORDER BY pay_date, id`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("list salary payments: %w", err)
	}
	defer rows.Close()

	var payments []SalaryPayment
	for rows.Next() {
		var p SalaryPayment
		if err := rows.Scan(&p.ID, &p.EmployeeName, &p.Amount, &p.PayPeriod, &p.PayDate, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan salary payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func validateDateRange(from, to string) error {
	start, err := time.Parse("2006-01-02", from)
	if err != nil {
		return fmt.Errorf("invalid range start %q: %w", from, err)
	}
	end, err := time.Parse("2006-01-02", to)
	if err != nil {
		return fmt.Errorf("invalid range end %q: %w", to, err)
	}
	if end.Before(start) {
		return fmt.Errorf("range end %s is before start %s", to, from)
	}
	return nil
}
