package core_test

import (
	"context"
	"os"
	"testing"

	"erp-backend/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE sales_commissions, sales_returns, invoice_items, invoices, invoice_sequences,
		               purchase_order_items, purchase_orders, production_orders, formula_components,
		               finished_goods, raw_materials, commission_rules, distributors, suppliers,
		               expenses, salary_payments, users
		RESTART IDENTITY CASCADE;

		INSERT INTO distributors (id, name, tier, email, phone, address) VALUES
		(1, 'Acme Distribution', 'Gold',   'orders@acme.example', '+1-555-0101', 'Springfield'),
		(2, 'Beta Traders',      'Silver', 'buy@beta.example',    '+1-555-0102', 'Shelbyville');
		SELECT setval('distributors_id_seq', 2);

		INSERT INTO suppliers (id, name, category, email, phone, address) VALUES
		(1, 'ChemCo',      'Chemicals', 'sales@chemco.example', '+1-555-0201', 'Ogdenville'),
		(2, 'PackSupply',  'Packaging', 'sales@pack.example',   '+1-555-0202', 'North Haverbrook');
		SELECT setval('suppliers_id_seq', 2);

		INSERT INTO raw_materials (id, name, category, quantity, unit, unit_cost) VALUES
		(1, 'Base Oil',  'Chemicals', 100, 'kg', 10.00),
		(2, 'Fragrance', 'Chemicals',  50, 'kg', 40.00),
		(3, 'Bottle',    'Packaging', 500, 'pc',  1.00);
		SELECT setval('raw_materials_id_seq', 3);

		INSERT INTO finished_goods (id, product_name, quantity, unit_cost, selling_price) VALUES
		(1, 'Lavender Soap', 200, 25.00, 60.00),
		(2, 'Rose Lotion',    80, 35.00, 90.00);
		SELECT setval('finished_goods_id_seq', 2);

		INSERT INTO formula_components (finished_good_id, raw_material_id, qty_per_unit, position) VALUES
		(1, 1, 2,    1),
		(1, 2, 0.1,  2),
		(1, 3, 1,    3);

		INSERT INTO commission_rules (id, rule_name, applies_to, rule_type, rate, is_active) VALUES
		(1, '5% on Lavender Soap', '{"Lavender Soap"}', 'Percentage', 5,  true),
		(2, 'Gold tier flat',      '{"Gold"}',          'Fixed',      10, true),
		(3, 'Retired rule',        '{"Lavender Soap"}', 'Percentage', 50, false);
		SELECT setval('commission_rules_id_seq', 3);
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return pool
}

func testServices(t *testing.T) (*pgxpool.Pool, core.InvoiceService, core.PurchaseService, core.ReturnService, core.ProductionService, context.Context) {
	t.Helper()
	pool := setupTestDB(t)
	log := zerolog.Nop()
	return pool,
		core.NewInvoiceService(pool, log),
		core.NewPurchaseService(pool, log),
		core.NewReturnService(pool, log, core.ValueAtSellingPrice),
		core.NewProductionService(pool, log),
		context.Background()
}
