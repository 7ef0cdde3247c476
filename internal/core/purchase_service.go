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

// PurchaseLineInput is one raw-material line of a new purchase order.
type PurchaseLineInput struct {
	RawMaterialID int64
	Quantity      decimal.Decimal
	UnitCost      decimal.Decimal
}

// CreatePurchaseOrderInput carries everything needed to open a PO.
type CreatePurchaseOrderInput struct {
	SupplierID int64
	OrderDate  string // YYYY-MM-DD
	Discount   decimal.Decimal
	Tax        decimal.Decimal
	PaidAmount decimal.Decimal
	Items      []PurchaseLineInput
}

// PurchaseService manages the procurement workflow. Stock and costs move
// only on receipt: creating, shipping, paying, or cancelling a purchase
// order never touches raw-material inventory.
type PurchaseService interface {
	// CreatePurchaseOrder validates and persists a new order in Pending
	// delivery state. Amount = Σ(qty×cost) − discount + tax.
	CreatePurchaseOrder(ctx context.Context, input CreatePurchaseOrderInput) (*PurchaseOrder, error)

	// MarkShipped moves a Pending order to Shipped.
	MarkShipped(ctx context.Context, orderID int64) (*PurchaseOrder, error)

	// ReceivePurchaseOrder moves a Pending or Shipped order to Received and,
	// in the same transaction, folds every line into raw-material stock at
	// weighted-average cost.
	ReceivePurchaseOrder(ctx context.Context, orderID int64) (*PurchaseOrder, error)

	// CancelPurchaseOrder moves a not-yet-Received order to Cancelled.
	// Inventory is untouched; payments already made are left on record.
	CancelPurchaseOrder(ctx context.Context, orderID int64) (*PurchaseOrder, error)

	// RecordPayment adds a supplier payment and rederives the payment status.
	RecordPayment(ctx context.Context, orderID int64, amount decimal.Decimal) (*PurchaseOrder, error)

	GetPurchaseOrder(ctx context.Context, orderID int64) (*PurchaseOrder, error)
	ListPurchaseOrders(ctx context.Context, delivery *DeliveryStatus) ([]PurchaseOrder, error)
}

type purchaseService struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// NewPurchaseService constructs a PurchaseService backed by PostgreSQL.
func NewPurchaseService(pool *pgxpool.Pool, log zerolog.Logger) PurchaseService {
	return &purchaseService{pool: pool, log: log}
}

func (s *purchaseService) CreatePurchaseOrder(ctx context.Context, input CreatePurchaseOrderInput) (*PurchaseOrder, error) {
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("purchase order must have at least one line item")
	}
	for i, item := range input.Items {
		if item.Quantity.Sign() <= 0 {
			return nil, fmt.Errorf("line %d: quantity must be positive, got %s", i+1, item.Quantity)
		}
		if item.UnitCost.IsNegative() {
			return nil, fmt.Errorf("line %d: unit cost cannot be negative, got %s", i+1, item.UnitCost)
		}
	}
	if input.Discount.IsNegative() || input.Tax.IsNegative() || input.PaidAmount.IsNegative() {
		return nil, fmt.Errorf("discount, tax and paid amount cannot be negative")
	}
	if _, err := time.Parse("2006-01-02", input.OrderDate); err != nil {
		return nil, fmt.Errorf("invalid order date %q: %w", input.OrderDate, err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var supplierName string
	err = tx.QueryRow(ctx, "SELECT name FROM suppliers WHERE id = $1", input.SupplierID).Scan(&supplierName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("supplier %d: %w", input.SupplierID, ErrNotFound)
		}
		return nil, fmt.Errorf("resolve supplier %d: %w", input.SupplierID, err)
	}

	type pricedLine struct {
		materialID int64
		name       string
		quantity   decimal.Decimal
		unitCost   decimal.Decimal
		lineTotal  decimal.Decimal
	}
	var lines []pricedLine
	subtotal := decimal.Zero
	for i, item := range input.Items {
		var name string
		err := tx.QueryRow(ctx, "SELECT name FROM raw_materials WHERE id = $1", item.RawMaterialID).Scan(&name)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("line %d: raw material %d: %w", i+1, item.RawMaterialID, ErrNotFound)
			}
			return nil, fmt.Errorf("line %d: resolve raw material %d: %w", i+1, item.RawMaterialID, err)
		}
		lineTotal := item.Quantity.Mul(item.UnitCost)
		subtotal = subtotal.Add(lineTotal)
		lines = append(lines, pricedLine{
			materialID: item.RawMaterialID,
			name:       name,
			quantity:   item.Quantity,
			unitCost:   item.UnitCost,
			lineTotal:  lineTotal,
		})
	}

	amount := subtotal.Sub(input.Discount).Add(input.Tax)
	if amount.IsNegative() {
		return nil, fmt.Errorf("discount %s exceeds order subtotal %s plus tax", input.Discount, subtotal)
	}
	dueAmount := DueAmount(amount, input.PaidAmount)
	paymentStatus := PaymentStatusFor(amount, input.PaidAmount)

	var orderID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO purchase_orders (supplier_id, supplier_name, order_date, discount, tax,
		                             amount, paid_amount, due_amount, payment_status, delivery_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		input.SupplierID, supplierName, input.OrderDate, input.Discount, input.Tax,
		amount, input.PaidAmount, dueAmount, string(paymentStatus), string(DeliveryPending),
	).Scan(&orderID)
	if err != nil {
		return nil, fmt.Errorf("insert purchase order: %w", err)
	}

	for i, l := range lines {
		if _, err := tx.Exec(ctx, `
			INSERT INTO purchase_order_items (order_id, line_number, raw_material_id, material_name, quantity, unit_cost, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			orderID, i+1, l.materialID, l.name, l.quantity, l.unitCost, l.lineTotal,
		); err != nil {
			return nil, fmt.Errorf("insert purchase order line %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit purchase order creation: %w", err)
	}

	return s.GetPurchaseOrder(ctx, orderID)
}

func (s *purchaseService) MarkShipped(ctx context.Context, orderID int64) (*PurchaseOrder, error) {
	return s.transitionDelivery(ctx, orderID, DeliveryShipped)
}

func (s *purchaseService) CancelPurchaseOrder(ctx context.Context, orderID int64) (*PurchaseOrder, error) {
	return s.transitionDelivery(ctx, orderID, DeliveryCancelled)
}

// transitionDelivery handles the inventory-free delivery transitions.
// Receipt has its own path because it also moves stock.
func (s *purchaseService) transitionDelivery(ctx context.Context, orderID int64, to DeliveryStatus) (*PurchaseOrder, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	from, err := lockDeliveryStatus(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if !CanTransitionDelivery(from, to) {
		return nil, fmt.Errorf("purchase order %d cannot move from %s to %s: %w", orderID, from, to, ErrInvalidTransition)
	}

	query := "UPDATE purchase_orders SET delivery_status = $1 WHERE id = $2"
	if to == DeliveryCancelled {
		query = "UPDATE purchase_orders SET delivery_status = $1, cancelled_at = NOW() WHERE id = $2"
	}
	if _, err := tx.Exec(ctx, query, string(to), orderID); err != nil {
		return nil, fmt.Errorf("update purchase order %d delivery status: %w", orderID, err)
	}

	if to == DeliveryCancelled {
		var paid decimal.Decimal
		if err := tx.QueryRow(ctx,
			"SELECT paid_amount FROM purchase_orders WHERE id = $1", orderID,
		).Scan(&paid); err == nil && paid.Sign() > 0 {
			s.log.Warn().Int64("purchase_order", orderID).Str("paid_amount", paid.String()).
				Msg("cancelled purchase order has payments on record")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit delivery transition: %w", err)
	}

	return s.GetPurchaseOrder(ctx, orderID)
}

func (s *purchaseService) ReceivePurchaseOrder(ctx context.Context, orderID int64) (*PurchaseOrder, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	from, err := lockDeliveryStatus(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if !CanTransitionDelivery(from, DeliveryReceived) {
		return nil, fmt.Errorf("purchase order %d cannot be received from %s: %w", orderID, from, ErrInvalidTransition)
	}

	items, err := fetchPurchaseOrderItems(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	// Fold every received line into stock at weighted-average cost. The
	// material rows are locked so concurrent receipts blend sequentially.
	for _, item := range items {
		var oldQty, oldCost decimal.Decimal
		err := tx.QueryRow(ctx,
			"SELECT quantity, unit_cost FROM raw_materials WHERE id = $1 FOR UPDATE",
			item.RawMaterialID,
		).Scan(&oldQty, &oldCost)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("raw material %d on purchase order %d: %w", item.RawMaterialID, orderID, ErrNotFound)
			}
			return nil, fmt.Errorf("lock raw material %d: %w", item.RawMaterialID, err)
		}

		newQty, newCost := WeightedAverageCost(oldQty, oldCost, item.Quantity, item.UnitCost)
		if _, err := tx.Exec(ctx,
			"UPDATE raw_materials SET quantity = $1, unit_cost = $2, updated_at = NOW() WHERE id = $3",
			newQty, newCost, item.RawMaterialID,
		); err != nil {
			return nil, fmt.Errorf("restock %q from purchase order %d: %w", item.MaterialName, orderID, err)
		}
	}

	if _, err := tx.Exec(ctx,
		"UPDATE purchase_orders SET delivery_status = $1, received_at = NOW() WHERE id = $2",
		string(DeliveryReceived), orderID,
	); err != nil {
		return nil, fmt.Errorf("mark purchase order %d received: %w", orderID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit receipt: %w", err)
	}

	return s.GetPurchaseOrder(ctx, orderID)
}

func (s *purchaseService) RecordPayment(ctx context.Context, orderID int64, amount decimal.Decimal) (*PurchaseOrder, error) {
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("payment amount must be positive, got %s", amount)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var total, paid decimal.Decimal
	var delivery string
	err = tx.QueryRow(ctx,
		"SELECT amount, paid_amount, delivery_status FROM purchase_orders WHERE id = $1 FOR UPDATE",
		orderID,
	).Scan(&total, &paid, &delivery)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("purchase order %d: %w", orderID, ErrNotFound)
		}
		return nil, fmt.Errorf("lock purchase order %d: %w", orderID, err)
	}
	if DeliveryStatus(delivery) == DeliveryCancelled {
		return nil, fmt.Errorf("purchase order %d is cancelled: %w", orderID, ErrInvalidTransition)
	}

	newPaid := paid.Add(amount)
	newDue := DueAmount(total, newPaid)
	newStatus := PaymentStatusFor(total, newPaid)

	if _, err := tx.Exec(ctx,
		"UPDATE purchase_orders SET paid_amount = $1, due_amount = $2, payment_status = $3 WHERE id = $4",
		newPaid, newDue, string(newStatus), orderID,
	); err != nil {
		return nil, fmt.Errorf("record payment on purchase order %d: %w", orderID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit payment: %w", err)
	}

	return s.GetPurchaseOrder(ctx, orderID)
}

func lockDeliveryStatus(ctx context.Context, tx pgx.Tx, orderID int64) (DeliveryStatus, error) {
	var status string
	err := tx.QueryRow(ctx,
		"SELECT delivery_status FROM purchase_orders WHERE id = $1 FOR UPDATE",
		orderID,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("purchase order %d: %w", orderID, ErrNotFound)
		}
		return "", fmt.Errorf("lock purchase order %d: %w", orderID, err)
	}
	return DeliveryStatus(status), nil
}

// ── Queries ──────────────────────────────────────────────────────────────────

func (s *purchaseService) GetPurchaseOrder(ctx context.Context, orderID int64) (*PurchaseOrder, error) {
	var po PurchaseOrder
	err := s.pool.QueryRow(ctx, `
		SELECT po.id, po.supplier_id, s.name, po.order_date::text, po.discount, po.tax,
		       po.amount, po.paid_amount, po.due_amount, po.payment_status, po.delivery_status,
		       po.created_at, po.received_at, po.cancelled_at
		FROM purchase_orders po
		JOIN suppliers s ON s.id = po.supplier_id
		WHERE po.id = $1`,
		orderID,
	).Scan(
		&po.ID, &po.SupplierID, &po.SupplierName, &po.OrderDate, &po.Discount, &po.Tax,
		&po.Amount, &po.PaidAmount, &po.DueAmount, &po.PaymentStatus, &po.DeliveryStatus,
		&po.CreatedAt, &po.ReceivedAt, &po.CancelledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("purchase order %d: %w", orderID, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch purchase order %d: %w", orderID, err)
	}

	items, err := fetchPurchaseOrderItems(ctx, s.pool, orderID)
	if err != nil {
		return nil, err
	}
	po.Items = items
	return &po, nil
}

func fetchPurchaseOrderItems(ctx context.Context, q pgxRowQuerier, orderID int64) ([]PurchaseOrderItem, error) {
	rows, err := q.Query(ctx, `
		SELECT id, order_id, line_number, raw_material_id, material_name, quantity, unit_cost, line_total
		FROM purchase_order_items
		WHERE order_id = $1
		ORDER BY line_number`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch purchase order items for %d: %w", orderID, err)
	}
	defer rows.Close()

	var items []PurchaseOrderItem
	for rows.Next() {
		var it PurchaseOrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.LineNumber, &it.RawMaterialID,
			&it.MaterialName, &it.Quantity, &it.UnitCost, &it.LineTotal); err != nil {
			return nil, fmt.Errorf("scan purchase order item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *purchaseService) ListPurchaseOrders(ctx context.Context, delivery *DeliveryStatus) ([]PurchaseOrder, error) {
	query := `
		SELECT po.id, po.supplier_id, s.name, po.order_date::text, po.discount, po.tax,
		       po.amount, po.paid_amount, po.due_amount, po.payment_status, po.delivery_status,
		       po.created_at, po.received_at, po.cancelled_at
		FROM purchase_orders po
		JOIN suppliers s ON s.id = po.supplier_id`
	var args []any
	if delivery != nil {
		query += " WHERE po.delivery_status = $1"
		args = append(args, string(*delivery))
	}
	query += " ORDER BY po.id DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	defer rows.Close()

	var orders []PurchaseOrder
	for rows.Next() {
		var po PurchaseOrder
		if err := rows.Scan(
			&po.ID, &po.SupplierID, &po.SupplierName, &po.OrderDate, &po.Discount, &po.Tax,
			&po.Amount, &po.PaidAmount, &po.DueAmount, &po.PaymentStatus, &po.DeliveryStatus,
			&po.CreatedAt, &po.ReceivedAt, &po.CancelledAt,
		); err != nil {
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		orders = append(orders, po)
	}
	return orders, rows.Err()
}
