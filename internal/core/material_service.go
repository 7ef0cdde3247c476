package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// FormulaComponentInput is one raw-material line of a bill of materials.
type FormulaComponentInput struct {
	RawMaterialID int64
	QtyPerUnit    decimal.Decimal
}

// CreateFinishedGoodInput defines a new product and its formula. UnitCost is
// derived from the formula against current raw-material costs at creation
// time and is not recomputed when those costs drift later.
type CreateFinishedGoodInput struct {
	ProductName  string
	SellingPrice *decimal.Decimal
	Components   []FormulaComponentInput
}

// MaterialService manages raw materials, finished goods, and formulas.
// Quantities move only through the workflow services (purchasing, production,
// sales, returns); the mutations here are master-data edits.
type MaterialService interface {
	CreateRawMaterial(ctx context.Context, name, category, unit string, unitCost decimal.Decimal) (*RawMaterial, error)
	GetRawMaterial(ctx context.Context, id int64) (*RawMaterial, error)
	ListRawMaterials(ctx context.Context) ([]RawMaterial, error)
	AdjustRawMaterialStock(ctx context.Context, id int64, delta decimal.Decimal, reason string) (*RawMaterial, error)

	CreateFinishedGood(ctx context.Context, input CreateFinishedGoodInput) (*FinishedGood, error)
	GetFinishedGood(ctx context.Context, id int64) (*FinishedGood, error)
	GetFinishedGoodByName(ctx context.Context, name string) (*FinishedGood, error)
	ListFinishedGoods(ctx context.Context) ([]FinishedGood, error)
	SetSellingPrice(ctx context.Context, id int64, price decimal.Decimal) (*FinishedGood, error)
}

type materialService struct {
	pool *pgxpool.Pool
}

// NewMaterialService constructs a MaterialService backed by PostgreSQL.
func NewMaterialService(pool *pgxpool.Pool) MaterialService {
	return &materialService{pool: pool}
}

func (s *materialService) CreateRawMaterial(ctx context.Context, name, category, unit string, unitCost decimal.Decimal) (*RawMaterial, error) {
	if name == "" {
		return nil, fmt.Errorf("raw material name is required")
	}
	if unitCost.IsNegative() {
		return nil, fmt.Errorf("unit cost cannot be negative, got %s", unitCost)
	}

	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO raw_materials (name, category, quantity, unit, unit_cost)
		VALUES ($1, $2, 0, $3, $4)
		RETURNING id`,
		name, category, unit, unitCost,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("insert raw material %q: %w", name, err)
	}
	return s.GetRawMaterial(ctx, id)
}

func (s *materialService) GetRawMaterial(ctx context.Context, id int64) (*RawMaterial, error) {
	var m RawMaterial
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, category, quantity, unit, unit_cost, created_at, updated_at
		FROM raw_materials WHERE id = $1`,
		id,
	).Scan(&m.ID, &m.Name, &m.Category, &m.Quantity, &m.Unit, &m.UnitCost, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("raw material %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch raw material %d: %w", id, err)
	}
	return &m, nil
}

func (s *materialService) ListRawMaterials(ctx context.Context) ([]RawMaterial, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, category, quantity, unit, unit_cost, created_at, updated_at
		FROM raw_materials ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list raw materials: %w", err)
	}
	defer rows.Close()

	var materials []RawMaterial
	for rows.Next() {
		var m RawMaterial
		if err := rows.Scan(&m.ID, &m.Name, &m.Category, &m.Quantity, &m.Unit, &m.UnitCost, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan raw material: %w", err)
		}
		materials = append(materials, m)
	}
	return materials, rows.Err()
}

// AdjustRawMaterialStock applies a manual correction (stocktake, spoilage).
// The adjustment may not drive the quantity negative.
func (s *materialService) AdjustRawMaterialStock(ctx context.Context, id int64, delta decimal.Decimal, reason string) (*RawMaterial, error) {
	if reason == "" {
		return nil, fmt.Errorf("stock adjustment requires a reason")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var name string
	var quantity decimal.Decimal
	err = tx.QueryRow(ctx,
		"SELECT name, quantity FROM raw_materials WHERE id = $1 FOR UPDATE",
		id,
	).Scan(&name, &quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("raw material %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("lock raw material %d: %w", id, err)
	}

	newQty := quantity.Add(delta)
	if newQty.IsNegative() {
		return nil, fmt.Errorf("adjustment %s would drive %q below zero (have %s): %w",
			delta, name, quantity, ErrInsufficientStock)
	}
	if _, err := tx.Exec(ctx,
		"UPDATE raw_materials SET quantity = $1, updated_at = NOW() WHERE id = $2",
		newQty, id,
	); err != nil {
		return nil, fmt.Errorf("adjust stock for %q: %w", name, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit stock adjustment: %w", err)
	}
	return s.GetRawMaterial(ctx, id)
}

func (s *materialService) CreateFinishedGood(ctx context.Context, input CreateFinishedGoodInput) (*FinishedGood, error) {
	if input.ProductName == "" {
		return nil, fmt.Errorf("product name is required")
	}
	if len(input.Components) == 0 {
		return nil, fmt.Errorf("finished good %q needs at least one formula component", input.ProductName)
	}
	for i, c := range input.Components {
		if c.QtyPerUnit.Sign() <= 0 {
			return nil, fmt.Errorf("component %d: quantity per unit must be positive, got %s", i+1, c.QtyPerUnit)
		}
	}
	if input.SellingPrice != nil && input.SellingPrice.IsNegative() {
		return nil, fmt.Errorf("selling price cannot be negative, got %s", input.SellingPrice)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Resolve each component's current unit cost so the product's derived
	// unit cost can be computed once, at creation.
	components := make([]FormulaComponent, 0, len(input.Components))
	materialCosts := make(map[int64]decimal.Decimal, len(input.Components))
	for i, c := range input.Components {
		var name string
		var cost decimal.Decimal
		err := tx.QueryRow(ctx,
			"SELECT name, unit_cost FROM raw_materials WHERE id = $1",
			c.RawMaterialID,
		).Scan(&name, &cost)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("component %d: raw material %d: %w", i+1, c.RawMaterialID, ErrNotFound)
			}
			return nil, fmt.Errorf("component %d: resolve raw material %d: %w", i+1, c.RawMaterialID, err)
		}
		materialCosts[c.RawMaterialID] = cost
		components = append(components, FormulaComponent{
			RawMaterialID: c.RawMaterialID,
			MaterialName:  name,
			QtyPerUnit:    c.QtyPerUnit,
			Position:      i + 1,
		})
	}
	unitCost := FormulaUnitCost(components, materialCosts)

	var goodID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO finished_goods (product_name, quantity, unit_cost, selling_price)
		VALUES ($1, 0, $2, $3)
		RETURNING id`,
		input.ProductName, unitCost, input.SellingPrice,
	).Scan(&goodID)
	if err != nil {
		return nil, fmt.Errorf("insert finished good %q: %w", input.ProductName, err)
	}

	for _, c := range components {
		if _, err := tx.Exec(ctx, `
			INSERT INTO formula_components (finished_good_id, raw_material_id, qty_per_unit, position)
			VALUES ($1, $2, $3, $4)`,
			goodID, c.RawMaterialID, c.QtyPerUnit, c.Position,
		); err != nil {
			return nil, fmt.Errorf("insert formula component %q: %w", c.MaterialName, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit finished good creation: %w", err)
	}
	return s.GetFinishedGood(ctx, goodID)
}

func (s *materialService) GetFinishedGood(ctx context.Context, id int64) (*FinishedGood, error) {
	return fetchFinishedGood(ctx, s.pool, "fg.id = $1", id)
}

func (s *materialService) GetFinishedGoodByName(ctx context.Context, name string) (*FinishedGood, error) {
	return fetchFinishedGood(ctx, s.pool, "fg.product_name = $1", name)
}

func fetchFinishedGood(ctx context.Context, q pgxRowQuerier, where string, arg any) (*FinishedGood, error) {
	var g FinishedGood
	err := q.QueryRow(ctx, `
		SELECT fg.id, fg.product_name, fg.quantity, fg.unit_cost, fg.selling_price, fg.created_at, fg.updated_at
		FROM finished_goods fg
		WHERE `+where,
		arg,
	).Scan(&g.ID, &g.ProductName, &g.Quantity, &g.UnitCost, &g.SellingPrice, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("finished good %v: %w", arg, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch finished good %v: %w", arg, err)
	}

	rows, err := q.Query(ctx, `
		SELECT fc.id, fc.finished_good_id, fc.raw_material_id, rm.name, fc.qty_per_unit, fc.position
		FROM formula_components fc
		JOIN raw_materials rm ON rm.id = fc.raw_material_id
		WHERE fc.finished_good_id = $1
		ORDER BY fc.position`,
		g.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch formula for %q: %w", g.ProductName, err)
	}
	defer rows.Close()
	for rows.Next() {
		var c FormulaComponent
		if err := rows.Scan(&c.ID, &c.FinishedGoodID, &c.RawMaterialID, &c.MaterialName, &c.QtyPerUnit, &c.Position); err != nil {
			return nil, fmt.Errorf("scan formula component: %w", err)
		}
		g.Components = append(g.Components, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *materialService) ListFinishedGoods(ctx context.Context) ([]FinishedGood, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, product_name, quantity, unit_cost, selling_price, created_at, updated_at
		FROM finished_goods ORDER BY product_name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list finished goods: %w", err)
	}
	defer rows.Close()

	var goods []FinishedGood
	for rows.Next() {
		var g FinishedGood
		if err := rows.Scan(&g.ID, &g.ProductName, &g.Quantity, &g.UnitCost, &g.SellingPrice, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan finished good: %w", err)
		}
		goods = append(goods, g)
	}
	return goods, rows.Err()
}

func (s *materialService) SetSellingPrice(ctx context.Context, id int64, price decimal.Decimal) (*FinishedGood, error) {
	if price.IsNegative() {
		return nil, fmt.Errorf("selling price cannot be negative, got %s", price)
	}
	tag, err := s.pool.Exec(ctx,
		"UPDATE finished_goods SET selling_price = $1, updated_at = NOW() WHERE id = $2",
		price, id,
	)
	if err != nil {
		return nil, fmt.Errorf("set selling price for finished good %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("finished good %d: %w", id, ErrNotFound)
	}
	return s.GetFinishedGood(ctx, id)
}
