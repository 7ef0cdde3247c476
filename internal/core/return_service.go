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

// ReturnValuation selects how returned units are priced.
type ReturnValuation string

const (
	// ValueAtSellingPrice prices returns at the product's current selling
	// price. This is the default policy.
	ValueAtSellingPrice ReturnValuation = "selling_price"

	// ValueAtInvoicePrice prices returns at the unit price the customer was
	// actually invoiced, so a return never re-values the original sale.
	ValueAtInvoicePrice ReturnValuation = "invoice_price"
)

// ReturnLineInput is one returned product line.
type ReturnLineInput struct {
	FinishedGoodID int64
	Quantity       decimal.Decimal
}

// ProcessReturnInput describes a customer return against an invoice.
type ProcessReturnInput struct {
	InvoiceID  int64
	ReturnDate string // YYYY-MM-DD
	Reason     string
	Items      []ReturnLineInput
}

// ReturnService processes customer returns: restocking the returned units,
// reducing the invoice total, and rederiving its status — all in one
// transaction.
type ReturnService interface {
	// ProcessReturn validates that every returned line appears on the
	// invoice, that the return value does not exceed the invoice's due
	// amount, then restocks the units, reduces the invoice total, and
	// records the return.
	ProcessReturn(ctx context.Context, input ProcessReturnInput) (*SalesReturn, error)

	GetReturn(ctx context.Context, returnID int64) (*SalesReturn, error)
	ListReturns(ctx context.Context, invoiceID *int64) ([]SalesReturn, error)
}

type returnService struct {
	pool      *pgxpool.Pool
	log       zerolog.Logger
	valuation ReturnValuation
}

// NewReturnService constructs a ReturnService. An empty valuation falls back
// to ValueAtSellingPrice.
func NewReturnService(pool *pgxpool.Pool, log zerolog.Logger, valuation ReturnValuation) ReturnService {
	if valuation == "" {
		valuation = ValueAtSellingPrice
	}
	return &returnService{pool: pool, log: log, valuation: valuation}
}

func (s *returnService) ProcessReturn(ctx context.Context, input ProcessReturnInput) (*SalesReturn, error) {
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("return must have at least one line")
	}
	for i, item := range input.Items {
		if item.Quantity.Sign() <= 0 {
			return nil, fmt.Errorf("line %d: quantity must be positive, got %s", i+1, item.Quantity)
		}
	}
	if _, err := time.Parse("2006-01-02", input.ReturnDate); err != nil {
		return nil, fmt.Errorf("invalid return date %q: %w", input.ReturnDate, err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var number, customerName string
	var status string
	var total, paid decimal.Decimal
	err = tx.QueryRow(ctx, `
		SELECT invoice_number, customer_name, status, total_amount, paid_amount
		FROM invoices WHERE id = $1 FOR UPDATE`,
		input.InvoiceID,
	).Scan(&number, &customerName, &status, &total, &paid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("invoice %d: %w", input.InvoiceID, ErrNotFound)
		}
		return nil, fmt.Errorf("lock invoice %d: %w", input.InvoiceID, err)
	}
	if InvoiceStatus(status) == InvoiceCancelled {
		return nil, fmt.Errorf("invoice %s is cancelled: %w", number, ErrInvalidTransition)
	}

	invoiceItems, err := fetchInvoiceItems(ctx, tx, input.InvoiceID)
	if err != nil {
		return nil, err
	}
	soldByGood := make(map[int64]InvoiceItem, len(invoiceItems))
	for _, it := range invoiceItems {
		soldByGood[it.FinishedGoodID] = it
	}

	// Price and validate every line before any write.
	returnAmount := decimal.Zero
	returnedUnits := decimal.Zero
	type valuedLine struct {
		goodID   int64
		name     string
		quantity decimal.Decimal
	}
	var lines []valuedLine
	for i, item := range input.Items {
		sold, ok := soldByGood[item.FinishedGoodID]
		if !ok {
			return nil, fmt.Errorf("line %d: finished good %d is not on invoice %s: %w",
				i+1, item.FinishedGoodID, number, ErrNotFound)
		}
		if item.Quantity.GreaterThan(sold.Quantity) {
			return nil, fmt.Errorf("line %d: returning %s of %q but invoice %s sold only %s",
				i+1, item.Quantity, sold.Description, number, sold.Quantity)
		}

		unitValue := sold.UnitPrice
		if s.valuation == ValueAtSellingPrice {
			var sellingPrice *decimal.Decimal
			err := tx.QueryRow(ctx,
				"SELECT selling_price FROM finished_goods WHERE id = $1",
				item.FinishedGoodID,
			).Scan(&sellingPrice)
			if err != nil {
				return nil, fmt.Errorf("line %d: resolve selling price for %q: %w", i+1, sold.Description, err)
			}
			if sellingPrice != nil {
				unitValue = *sellingPrice
			} else {
				s.log.Warn().Str("product", sold.Description).
					Msg("no selling price set, valuing return at invoice price")
			}
		}

		returnAmount = returnAmount.Add(item.Quantity.Mul(unitValue))
		returnedUnits = returnedUnits.Add(item.Quantity)
		lines = append(lines, valuedLine{goodID: item.FinishedGoodID, name: sold.Description, quantity: item.Quantity})
	}

	due := DueAmount(total, paid)
	if returnAmount.GreaterThan(due) {
		return nil, fmt.Errorf("return value %s exceeds due amount %s on invoice %s: %w",
			returnAmount, due, number, ErrReturnExceedsDue)
	}

	for _, l := range lines {
		if _, err := tx.Exec(ctx,
			"UPDATE finished_goods SET quantity = quantity + $1, updated_at = NOW() WHERE id = $2",
			l.quantity, l.goodID,
		); err != nil {
			return nil, fmt.Errorf("restock %q: %w", l.name, err)
		}
	}

	newTotal := total.Sub(returnAmount)
	newDue := DueAmount(newTotal, paid)
	newStatus := ReturnStatusFor(newTotal, paid, newDue)
	if _, err := tx.Exec(ctx,
		"UPDATE invoices SET total_amount = $1, due_amount = $2, status = $3 WHERE id = $4",
		newTotal, newDue, string(newStatus), input.InvoiceID,
	); err != nil {
		return nil, fmt.Errorf("adjust invoice %s for return: %w", number, err)
	}

	var returnID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO sales_returns (invoice_id, customer_name, return_date, amount, returned_units, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		input.InvoiceID, customerName, input.ReturnDate, returnAmount, returnedUnits, input.Reason,
	).Scan(&returnID)
	if err != nil {
		return nil, fmt.Errorf("insert return for invoice %s: %w", number, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit return: %w", err)
	}

	return s.GetReturn(ctx, returnID)
}

func (s *returnService) GetReturn(ctx context.Context, returnID int64) (*SalesReturn, error) {
	var r SalesReturn
	err := s.pool.QueryRow(ctx, `
		SELECT id, invoice_id, customer_name, return_date::text, amount, returned_units, reason, created_at
		FROM sales_returns WHERE id = $1`,
		returnID,
	).Scan(&r.ID, &r.InvoiceID, &r.CustomerName, &r.ReturnDate, &r.Amount, &r.ReturnedUnits, &r.Reason, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("return %d: %w", returnID, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch return %d: %w", returnID, err)
	}
	return &r, nil
}

func (s *returnService) ListReturns(ctx context.Context, invoiceID *int64) ([]SalesReturn, error) {
	query := `
		SELECT id, invoice_id, customer_name, return_date::text, amount, returned_units, reason, created_at
		FROM sales_returns`
	var args []any
	if invoiceID != nil {
		query += " WHERE invoice_id = $1"
		args = append(args, *invoiceID)
	}
	query += " ORDER BY id DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list returns: %w", err)
	}
	defer rows.Close()

	var returns []SalesReturn
	for rows.Next() {
		var r SalesReturn
		if err := rows.Scan(&r.ID, &r.InvoiceID, &r.CustomerName, &r.ReturnDate,
			&r.Amount, &r.ReturnedUnits, &r.Reason, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan return: %w", err)
		}
		returns = append(returns, r)
	}
	return returns, rows.Err()
}
