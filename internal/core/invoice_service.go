package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// InvoiceLineInput is a single line of a new sales invoice. A zero
// UnitPrice means "use the product's selling price".
type InvoiceLineInput struct {
	FinishedGoodID int64
	Quantity       decimal.Decimal
	UnitPrice      decimal.Decimal
}

// CreateInvoiceInput carries everything needed to post a new sale.
// DistributorID may be nil for a walk-in customer; commission evaluation is
// skipped entirely in that case.
type CreateInvoiceInput struct {
	DistributorID *int64
	CustomerName  string // used only when DistributorID is nil
	CustomerEmail string
	InvoiceDate   string // YYYY-MM-DD
	DueDate       string // optional, YYYY-MM-DD
	PaidAmount    decimal.Decimal
	Items         []InvoiceLineInput
}

// InvoiceService orchestrates the sale workflow: stock-checked invoice
// creation with commission computation, payment recording, and terminal
// cancellation. Every operation's effects commit in one transaction.
type InvoiceService interface {
	// CreateInvoice validates the input, decrements finished-good stock
	// (conditionally, under row locks — a line that would drive stock
	// negative aborts the whole operation), computes commissions, assigns
	// the next daily invoice number, and persists it all atomically.
	CreateInvoice(ctx context.Context, input CreateInvoiceInput) (*Invoice, error)

	// RecordPayment adds a payment and rederives due amount and status.
	RecordPayment(ctx context.Context, invoiceID int64, amount decimal.Decimal) (*Invoice, error)

	// CancelInvoice transitions a non-Paid, non-Cancelled invoice to the
	// terminal Cancelled state, restoring stock and zeroing paid/due.
	// Commission records created for the invoice are left in place.
	CancelInvoice(ctx context.Context, invoiceID int64) (*Invoice, error)

	// Queries
	GetInvoice(ctx context.Context, invoiceID int64) (*Invoice, error)
	GetInvoiceByNumber(ctx context.Context, number string) (*Invoice, error)
	ListInvoices(ctx context.Context, status *InvoiceStatus) ([]Invoice, error)
	ListCommissionsForInvoice(ctx context.Context, invoiceID int64) ([]SalesCommission, error)
}

type invoiceService struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// NewInvoiceService constructs an InvoiceService backed by PostgreSQL.
func NewInvoiceService(pool *pgxpool.Pool, log zerolog.Logger) InvoiceService {
	return &invoiceService{pool: pool, log: log}
}

// pgxRowQuerier is satisfied by both *pgxpool.Pool and pgx.Tx, enabling
// shared query helpers.
type pgxRowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *invoiceService) CreateInvoice(ctx context.Context, input CreateInvoiceInput) (*Invoice, error) {
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("invoice must have at least one line item")
	}
	for i, item := range input.Items {
		if item.Quantity.Sign() <= 0 {
			return nil, fmt.Errorf("line %d: quantity must be positive, got %s", i+1, item.Quantity)
		}
		if item.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("line %d: unit price cannot be negative, got %s", i+1, item.UnitPrice)
		}
	}
	if input.PaidAmount.IsNegative() {
		return nil, fmt.Errorf("paid amount cannot be negative, got %s", input.PaidAmount)
	}
	invoiceDate, err := time.Parse("2006-01-02", input.InvoiceDate)
	if err != nil {
		return nil, fmt.Errorf("invalid invoice date %q: %w", input.InvoiceDate, err)
	}
	if input.DueDate != "" {
		if _, err := time.Parse("2006-01-02", input.DueDate); err != nil {
			return nil, fmt.Errorf("invalid due date %q: %w", input.DueDate, err)
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Resolve the distributor up front; its name and tier feed both the
	// customer snapshot and the commission evaluation.
	customerName := input.CustomerName
	var distributorName, distributorTier string
	if input.DistributorID != nil {
		err := tx.QueryRow(ctx,
			"SELECT name, tier FROM distributors WHERE id = $1",
			*input.DistributorID,
		).Scan(&distributorName, &distributorTier)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("distributor %d: %w", *input.DistributorID, ErrNotFound)
			}
			return nil, fmt.Errorf("resolve distributor %d: %w", *input.DistributorID, err)
		}
		customerName = distributorName
	}
	if customerName == "" {
		return nil, fmt.Errorf("invoice must name a customer or distributor")
	}

	// Lock and decrement stock for each line. The lock + check + decrement
	// all happen inside this transaction, so a concurrent sale of the same
	// product serializes on the row and cannot drive stock negative.
	type pricedLine struct {
		goodID    int64
		name      string
		quantity  decimal.Decimal
		unitPrice decimal.Decimal
		lineTotal decimal.Decimal
	}
	var lines []pricedLine
	totalAmount := decimal.Zero

	for i, item := range input.Items {
		var name string
		var onHand decimal.Decimal
		var sellingPrice *decimal.Decimal
		err := tx.QueryRow(ctx,
			"SELECT product_name, quantity, selling_price FROM finished_goods WHERE id = $1 FOR UPDATE",
			item.FinishedGoodID,
		).Scan(&name, &onHand, &sellingPrice)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("line %d: finished good %d: %w", i+1, item.FinishedGoodID, ErrNotFound)
			}
			return nil, fmt.Errorf("line %d: lock finished good %d: %w", i+1, item.FinishedGoodID, err)
		}

		if onHand.LessThan(item.Quantity) {
			return nil, fmt.Errorf("product %q has %s on hand, need %s: %w",
				name, onHand.String(), item.Quantity.String(), ErrInsufficientStock)
		}

		price := item.UnitPrice
		if price.IsZero() && sellingPrice != nil {
			price = *sellingPrice
		}
		lineTotal := item.Quantity.Mul(price)
		totalAmount = totalAmount.Add(lineTotal)

		if _, err := tx.Exec(ctx,
			"UPDATE finished_goods SET quantity = quantity - $1, updated_at = NOW() WHERE id = $2",
			item.Quantity, item.FinishedGoodID,
		); err != nil {
			return nil, fmt.Errorf("line %d: decrement stock for %q: %w", i+1, name, err)
		}

		lines = append(lines, pricedLine{
			goodID:    item.FinishedGoodID,
			name:      name,
			quantity:  item.Quantity,
			unitPrice: price,
			lineTotal: lineTotal,
		})
	}

	dueAmount := DueAmount(totalAmount, input.PaidAmount)
	status := InvoiceStatusFor(totalAmount, input.PaidAmount)

	number, err := nextInvoiceNumber(ctx, tx, invoiceDate)
	if err != nil {
		return nil, err
	}

	var dueDate *string
	if input.DueDate != "" {
		dueDate = &input.DueDate
	}

	var invoiceID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO invoices (invoice_number, distributor_id, customer_name, customer_email,
		                      invoice_date, due_date, total_amount, paid_amount, due_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		number, input.DistributorID, customerName, input.CustomerEmail,
		input.InvoiceDate, dueDate, totalAmount, input.PaidAmount, dueAmount, string(status),
	).Scan(&invoiceID)
	if err != nil {
		return nil, fmt.Errorf("insert invoice: %w", err)
	}

	itemIDs := make([]int64, len(lines))
	for i, l := range lines {
		err = tx.QueryRow(ctx, `
			INSERT INTO invoice_items (invoice_id, line_number, finished_good_id, description, quantity, unit_price, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`,
			invoiceID, i+1, l.goodID, l.name, l.quantity, l.unitPrice, l.lineTotal,
		).Scan(&itemIDs[i])
		if err != nil {
			return nil, fmt.Errorf("insert invoice line %d: %w", i+1, err)
		}
	}

	// Commission evaluation. No distributor means no commission — the sale
	// still goes through, but the skip is logged so data-entry gaps are
	// observable rather than silent.
	if input.DistributorID == nil {
		s.log.Warn().Str("invoice", number).
			Msg("no distributor on invoice, skipping commission evaluation")
	} else {
		rules, err := loadActiveCommissionRules(ctx, tx)
		if err != nil {
			return nil, err
		}
		for i, l := range lines {
			for _, rule := range MatchRules(rules, l.name, distributorName, distributorTier) {
				amount := CommissionAmount(rule, l.lineTotal)
				if _, err := tx.Exec(ctx, `
					INSERT INTO sales_commissions (invoice_id, invoice_item_id, rule_id, rule_name,
					                               commission_type, commission_rate, distributor_id,
					                               finished_good_id, sale_date, sale_amount, commission_amount)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
					invoiceID, itemIDs[i], rule.ID, rule.RuleName,
					string(rule.Type), rule.Rate, input.DistributorID,
					l.goodID, input.InvoiceDate, l.lineTotal, amount,
				); err != nil {
					return nil, fmt.Errorf("insert commission for line %d, rule %q: %w", i+1, rule.RuleName, err)
				}
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit invoice creation: %w", err)
	}

	return s.GetInvoice(ctx, invoiceID)
}

func (s *invoiceService) RecordPayment(ctx context.Context, invoiceID int64, amount decimal.Decimal) (*Invoice, error) {
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("payment amount must be positive, got %s", amount)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var total, paid decimal.Decimal
	var status string
	err = tx.QueryRow(ctx,
		"SELECT total_amount, paid_amount, status FROM invoices WHERE id = $1 FOR UPDATE",
		invoiceID,
	).Scan(&total, &paid, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("invoice %d: %w", invoiceID, ErrNotFound)
		}
		return nil, fmt.Errorf("lock invoice %d: %w", invoiceID, err)
	}
	if InvoiceStatus(status) == InvoiceCancelled {
		return nil, fmt.Errorf("invoice %d is cancelled: %w", invoiceID, ErrInvalidTransition)
	}

	newPaid := paid.Add(amount)
	newDue := DueAmount(total, newPaid)
	newStatus := InvoiceStatusFor(total, newPaid)

	if _, err := tx.Exec(ctx,
		"UPDATE invoices SET paid_amount = $1, due_amount = $2, status = $3 WHERE id = $4",
		newPaid, newDue, string(newStatus), invoiceID,
	); err != nil {
		return nil, fmt.Errorf("record payment on invoice %d: %w", invoiceID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit payment: %w", err)
	}

	return s.GetInvoice(ctx, invoiceID)
}

func (s *invoiceService) CancelInvoice(ctx context.Context, invoiceID int64) (*Invoice, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var number string
	var status string
	err = tx.QueryRow(ctx,
		"SELECT invoice_number, status FROM invoices WHERE id = $1 FOR UPDATE",
		invoiceID,
	).Scan(&number, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("invoice %d: %w", invoiceID, ErrNotFound)
		}
		return nil, fmt.Errorf("lock invoice %d: %w", invoiceID, err)
	}
	if !CanCancelInvoice(InvoiceStatus(status)) {
		return nil, fmt.Errorf("invoice %s cannot be cancelled from status %s: %w", number, status, ErrInvalidTransition)
	}

	items, err := fetchInvoiceItems(ctx, tx, invoiceID)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if _, err := tx.Exec(ctx,
			"UPDATE finished_goods SET quantity = quantity + $1, updated_at = NOW() WHERE id = $2",
			item.Quantity, item.FinishedGoodID,
		); err != nil {
			return nil, fmt.Errorf("restock %q for cancelled invoice %s: %w", item.Description, number, err)
		}
	}

	if _, err := tx.Exec(ctx, `
		UPDATE invoices
		SET status = $1, paid_amount = 0, due_amount = 0, cancelled_at = NOW()
		WHERE id = $2`,
		string(InvoiceCancelled), invoiceID,
	); err != nil {
		return nil, fmt.Errorf("cancel invoice %s: %w", number, err)
	}

	// Commission records survive cancellation. Surface the count so the
	// books can be adjusted manually where it matters.
	var commissions int
	if err := tx.QueryRow(ctx,
		"SELECT COUNT(*) FROM sales_commissions WHERE invoice_id = $1", invoiceID,
	).Scan(&commissions); err == nil && commissions > 0 {
		s.log.Warn().Str("invoice", number).Int("commissions", commissions).
			Msg("invoice cancelled; commission records are not reversed")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit cancellation: %w", err)
	}

	return s.GetInvoice(ctx, invoiceID)
}

// ── Queries ──────────────────────────────────────────────────────────────────

func (s *invoiceService) GetInvoice(ctx context.Context, invoiceID int64) (*Invoice, error) {
	return fetchInvoice(ctx, s.pool, "id = $1", invoiceID)
}

func (s *invoiceService) GetInvoiceByNumber(ctx context.Context, number string) (*Invoice, error) {
	return fetchInvoice(ctx, s.pool, "invoice_number = $1", number)
}

func fetchInvoice(ctx context.Context, q pgxRowQuerier, where string, arg any) (*Invoice, error) {
	var inv Invoice
	err := q.QueryRow(ctx, `
		SELECT id, invoice_number, distributor_id, customer_name, customer_email,
		       invoice_date::text, due_date::text, total_amount, paid_amount, due_amount,
		       status, created_at, cancelled_at
		FROM invoices
		WHERE `+where,
		arg,
	).Scan(
		&inv.ID, &inv.InvoiceNumber, &inv.DistributorID, &inv.CustomerName, &inv.CustomerEmail,
		&inv.InvoiceDate, &inv.DueDate, &inv.TotalAmount, &inv.PaidAmount, &inv.DueAmount,
		&inv.Status, &inv.CreatedAt, &inv.CancelledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("invoice %v: %w", arg, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch invoice %v: %w", arg, err)
	}

	items, err := fetchInvoiceItems(ctx, q, inv.ID)
	if err != nil {
		return nil, err
	}
	inv.Items = items
	return &inv, nil
}

func fetchInvoiceItems(ctx context.Context, q pgxRowQuerier, invoiceID int64) ([]InvoiceItem, error) {
	rows, err := q.Query(ctx, `
		SELECT id, invoice_id, line_number, finished_good_id, description, quantity, unit_price, line_total
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY line_number`,
		invoiceID,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch invoice items for %d: %w", invoiceID, err)
	}
	defer rows.Close()

	var items []InvoiceItem
	for rows.Next() {
		var it InvoiceItem
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.LineNumber, &it.FinishedGoodID,
			&it.Description, &it.Quantity, &it.UnitPrice, &it.LineTotal); err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *invoiceService) ListInvoices(ctx context.Context, status *InvoiceStatus) ([]Invoice, error) {
	query := `
		SELECT id, invoice_number, distributor_id, customer_name, customer_email,
		       invoice_date::text, due_date::text, total_amount, paid_amount, due_amount,
		       status, created_at, cancelled_at
		FROM invoices`
	var args []any
	if status != nil {
		query += " WHERE status = $1"
		args = append(args, string(*status))
	}
	query += " ORDER BY id DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
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
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func (s *invoiceService) ListCommissionsForInvoice(ctx context.Context, invoiceID int64) ([]SalesCommission, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, invoice_id, invoice_item_id, rule_id, rule_name, commission_type,
		       commission_rate, distributor_id, finished_good_id, sale_date::text,
		       sale_amount, commission_amount, created_at
		FROM sales_commissions
		WHERE invoice_id = $1
		ORDER BY id`,
		invoiceID,
	)
	if err != nil {
		return nil, fmt.Errorf("list commissions for invoice %d: %w", invoiceID, err)
	}
	defer rows.Close()

	var commissions []SalesCommission
	for rows.Next() {
		var c SalesCommission
		if err := rows.Scan(&c.ID, &c.InvoiceID, &c.InvoiceItemID, &c.RuleID, &c.RuleName,
			&c.CommissionType, &c.CommissionRate, &c.DistributorID, &c.FinishedGoodID,
			&c.SaleDate, &c.SaleAmount, &c.CommissionAmount, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan commission: %w", err)
		}
		commissions = append(commissions, c)
	}
	return commissions, rows.Err()
}

func loadActiveCommissionRules(ctx context.Context, q pgxRowQuerier) ([]CommissionRule, error) {
	rows, err := q.Query(ctx, `
		SELECT id, rule_name, applies_to, rule_type, rate, is_active, created_at
		FROM commission_rules
		WHERE is_active = true
		ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("load commission rules: %w", err)
	}
	defer rows.Close()

	var rules []CommissionRule
	for rows.Next() {
		var r CommissionRule
		if err := rows.Scan(&r.ID, &r.RuleName, &r.AppliesTo, &r.Type, &r.Rate, &r.IsActive, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan commission rule: %w", err)
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}
