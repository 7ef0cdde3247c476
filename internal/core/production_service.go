package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ProductionService manages production orders: a Pending order reserves
// nothing; completion consumes formula materials and yields finished stock
// in one transaction.
type ProductionService interface {
	// CreateProductionOrder opens a Pending order for a finished good.
	CreateProductionOrder(ctx context.Context, finishedGoodID int64, quantity decimal.Decimal) (*ProductionOrder, error)

	// CompleteProductionOrder consumes quantity × qty-per-unit of every
	// formula component (aborting on any shortfall), prices the batch at the
	// materials' current weighted-average costs, and blends the produced
	// units into finished-good stock.
	CompleteProductionOrder(ctx context.Context, orderID int64) (*ProductionOrder, error)

	// CancelProductionOrder cancels a Pending order. Completed orders are
	// immutable.
	CancelProductionOrder(ctx context.Context, orderID int64) (*ProductionOrder, error)

	GetProductionOrder(ctx context.Context, orderID int64) (*ProductionOrder, error)
	ListProductionOrders(ctx context.Context, status *ProductionStatus) ([]ProductionOrder, error)
}

type productionService struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// NewProductionService constructs a ProductionService backed by PostgreSQL.
func NewProductionService(pool *pgxpool.Pool, log zerolog.Logger) ProductionService {
	return &productionService{pool: pool, log: log}
}

func (s *productionService) CreateProductionOrder(ctx context.Context, finishedGoodID int64, quantity decimal.Decimal) (*ProductionOrder, error) {
	if quantity.Sign() <= 0 {
		return nil, fmt.Errorf("production quantity must be positive, got %s", quantity)
	}

	var productName string
	err := s.pool.QueryRow(ctx,
		"SELECT product_name FROM finished_goods WHERE id = $1",
		finishedGoodID,
	).Scan(&productName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("finished good %d: %w", finishedGoodID, ErrNotFound)
		}
		return nil, fmt.Errorf("resolve finished good %d: %w", finishedGoodID, err)
	}

	var orderID int64
	err = s.pool.QueryRow(ctx, `
		INSERT INTO production_orders (finished_good_id, quantity, status)
		VALUES ($1, $2, $3)
		RETURNING id`,
		finishedGoodID, quantity, string(ProductionPending),
	).Scan(&orderID)
	if err != nil {
		return nil, fmt.Errorf("insert production order for %q: %w", productName, err)
	}
	return s.GetProductionOrder(ctx, orderID)
}

func (s *productionService) CompleteProductionOrder(ctx context.Context, orderID int64) (*ProductionOrder, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var goodID int64
	var quantity decimal.Decimal
	var status string
	err = tx.QueryRow(ctx,
		"SELECT finished_good_id, quantity, status FROM production_orders WHERE id = $1 FOR UPDATE",
		orderID,
	).Scan(&goodID, &quantity, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("production order %d: %w", orderID, ErrNotFound)
		}
		return nil, fmt.Errorf("lock production order %d: %w", orderID, err)
	}
	if ProductionStatus(status) != ProductionPending {
		return nil, fmt.Errorf("production order %d is %s: %w", orderID, status, ErrInvalidTransition)
	}

	rows, err := tx.Query(ctx, `
		SELECT fc.raw_material_id, rm.name, fc.qty_per_unit
		FROM formula_components fc
		JOIN raw_materials rm ON rm.id = fc.raw_material_id
		WHERE fc.finished_good_id = $1
		ORDER BY fc.position`,
		goodID,
	)
	if err != nil {
		return nil, fmt.Errorf("load formula for finished good %d: %w", goodID, err)
	}
	type componentLine struct {
		materialID int64
		name       string
		qtyPerUnit decimal.Decimal
	}
	var formula []componentLine
	for rows.Next() {
		var c componentLine
		if err := rows.Scan(&c.materialID, &c.name, &c.qtyPerUnit); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan formula component: %w", err)
		}
		formula = append(formula, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(formula) == 0 {
		return nil, fmt.Errorf("finished good %d has no formula: %w", goodID, ErrNotFound)
	}

	// Consume materials under row locks, pricing the batch at the costs in
	// effect right now. A single shortfall aborts the whole completion.
	batchUnitCost := decimal.Zero
	for _, c := range formula {
		required := c.qtyPerUnit.Mul(quantity)

		var onHand, unitCost decimal.Decimal
		err := tx.QueryRow(ctx,
			"SELECT quantity, unit_cost FROM raw_materials WHERE id = $1 FOR UPDATE",
			c.materialID,
		).Scan(&onHand, &unitCost)
		if err != nil {
			return nil, fmt.Errorf("lock raw material %q: %w", c.name, err)
		}
		if onHand.LessThan(required) {
			return nil, fmt.Errorf("material %q has %s on hand, need %s: %w",
				c.name, onHand, required, ErrInsufficientStock)
		}

		if _, err := tx.Exec(ctx,
			"UPDATE raw_materials SET quantity = quantity - $1, updated_at = NOW() WHERE id = $2",
			required, c.materialID,
		); err != nil {
			return nil, fmt.Errorf("consume %q: %w", c.name, err)
		}
		batchUnitCost = batchUnitCost.Add(c.qtyPerUnit.Mul(unitCost))
	}

	var oldQty, oldCost decimal.Decimal
	var productName string
	err = tx.QueryRow(ctx,
		"SELECT product_name, quantity, unit_cost FROM finished_goods WHERE id = $1 FOR UPDATE",
		goodID,
	).Scan(&productName, &oldQty, &oldCost)
	if err != nil {
		return nil, fmt.Errorf("lock finished good %d: %w", goodID, err)
	}

	newQty, newCost := WeightedAverageCost(oldQty, oldCost, quantity, batchUnitCost)
	if _, err := tx.Exec(ctx,
		"UPDATE finished_goods SET quantity = $1, unit_cost = $2, updated_at = NOW() WHERE id = $3",
		newQty, newCost, goodID,
	); err != nil {
		return nil, fmt.Errorf("stock produced units of %q: %w", productName, err)
	}

	if _, err := tx.Exec(ctx,
		"UPDATE production_orders SET status = $1, batch_unit_cost = $2, completed_at = NOW() WHERE id = $3",
		string(ProductionCompleted), batchUnitCost, orderID,
	); err != nil {
		return nil, fmt.Errorf("complete production order %d: %w", orderID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit production completion: %w", err)
	}

	s.log.Info().Int64("production_order", orderID).Str("product", productName).
		Str("quantity", quantity.String()).Str("batch_unit_cost", batchUnitCost.String()).
		Msg("production order completed")

	return s.GetProductionOrder(ctx, orderID)
}

func (s *productionService) CancelProductionOrder(ctx context.Context, orderID int64) (*ProductionOrder, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status string
	err = tx.QueryRow(ctx,
		"SELECT status FROM production_orders WHERE id = $1 FOR UPDATE",
		orderID,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("production order %d: %w", orderID, ErrNotFound)
		}
		return nil, fmt.Errorf("lock production order %d: %w", orderID, err)
	}
	if ProductionStatus(status) != ProductionPending {
		return nil, fmt.Errorf("production order %d is %s: %w", orderID, status, ErrInvalidTransition)
	}

	if _, err := tx.Exec(ctx,
		"UPDATE production_orders SET status = $1 WHERE id = $2",
		string(ProductionCancelled), orderID,
	); err != nil {
		return nil, fmt.Errorf("cancel production order %d: %w", orderID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit cancellation: %w", err)
	}
	return s.GetProductionOrder(ctx, orderID)
}

func (s *productionService) GetProductionOrder(ctx context.Context, orderID int64) (*ProductionOrder, error) {
	var po ProductionOrder
	err := s.pool.QueryRow(ctx, `
		SELECT po.id, po.finished_good_id, fg.product_name, po.quantity, po.batch_unit_cost,
		       po.status, po.created_at, po.completed_at
		FROM production_orders po
		JOIN finished_goods fg ON fg.id = po.finished_good_id
		WHERE po.id = $1`,
		orderID,
	).Scan(&po.ID, &po.FinishedGoodID, &po.ProductName, &po.Quantity, &po.BatchUnitCost,
		&po.Status, &po.CreatedAt, &po.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("production order %d: %w", orderID, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch production order %d: %w", orderID, err)
	}
	return &po, nil
}

func (s *productionService) ListProductionOrders(ctx context.Context, status *ProductionStatus) ([]ProductionOrder, error) {
	query := `
		SELECT po.id, po.finished_good_id, fg.product_name, po.quantity, po.batch_unit_cost,
		       po.status, po.created_at, po.completed_at
		FROM production_orders po
		JOIN finished_goods fg ON fg.id = po.finished_good_id`
	var args []any
	if status != nil {
		query += " WHERE po.status = $1"
		args = append(args, string(*status))
	}
	query += " ORDER BY po.id DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list production orders: %w", err)
	}
	defer rows.Close()

	var orders []ProductionOrder
	for rows.Next() {
		var po ProductionOrder
		if err := rows.Scan(&po.ID, &po.FinishedGoodID, &po.ProductName, &po.Quantity, &po.BatchUnitCost,
			&po.Status, &po.CreatedAt, &po.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan production order: %w", err)
		}
		orders = append(orders, po)
	}
	return orders, rows.Err()
}
