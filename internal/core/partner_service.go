package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PartnerService manages distributors, suppliers, and commission rules —
// the master data the transactional workflows join against by ID.
type PartnerService interface {
	CreateDistributor(ctx context.Context, name, tier, email, phone, address string) (*Distributor, error)
	GetDistributor(ctx context.Context, id int64) (*Distributor, error)
	ListDistributors(ctx context.Context) ([]Distributor, error)
	UpdateDistributorTier(ctx context.Context, id int64, tier string) (*Distributor, error)

	CreateSupplier(ctx context.Context, name, category, email, phone, address string) (*Supplier, error)
	GetSupplier(ctx context.Context, id int64) (*Supplier, error)
	ListSuppliers(ctx context.Context) ([]Supplier, error)

	CreateCommissionRule(ctx context.Context, name string, appliesTo []string, ruleType CommissionType, rate decimal.Decimal) (*CommissionRule, error)
	ListCommissionRules(ctx context.Context, activeOnly bool) ([]CommissionRule, error)
	SetCommissionRuleActive(ctx context.Context, id int64, active bool) (*CommissionRule, error)
}

type partnerService struct {
	pool *pgxpool.Pool
}

// NewPartnerService constructs a PartnerService backed by PostgreSQL.
func NewPartnerService(pool *pgxpool.Pool) PartnerService {
	return &partnerService{pool: pool}
}

func (s *partnerService) CreateDistributor(ctx context.Context, name, tier, email, phone, address string) (*Distributor, error) {
	if name == "" {
		return nil, fmt.Errorf("distributor name is required")
	}
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO distributors (name, tier, email, phone, address)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		name, tier, email, phone, address,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("insert distributor %q: %w", name, err)
	}
	return s.GetDistributor(ctx, id)
}

func (s *partnerService) GetDistributor(ctx context.Context, id int64) (*Distributor, error) {
	var d Distributor
	err := s.pool.QueryRow(ctx,
		"SELECT id, name, tier, email, phone, address, created_at FROM distributors WHERE id = $1",
		id,
	).Scan(&d.ID, &d.Name, &d.Tier, &d.Email, &d.Phone, &d.Address, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("distributor %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch distributor %d: %w", id, err)
	}
	return &d, nil
}

func (s *partnerService) ListDistributors(ctx context.Context) ([]Distributor, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, name, tier, email, phone, address, created_at FROM distributors ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("list distributors: %w", err)
	}
	defer rows.Close()

	var distributors []Distributor
	for rows.Next() {
		var d Distributor
		if err := rows.Scan(&d.ID, &d.Name, &d.Tier, &d.Email, &d.Phone, &d.Address, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan distributor: %w", err)
		}
		distributors = append(distributors, d)
	}
	return distributors, rows.Err()
}

// UpdateDistributorTier changes a distributor's tier. Commission rules keyed
// on the old tier stop matching future sales; past commission records keep
// the amounts computed at sale time.
func (s *partnerService) UpdateDistributorTier(ctx context.Context, id int64, tier string) (*Distributor, error) {
	tag, err := s.pool.Exec(ctx, "UPDATE distributors SET tier = $1 WHERE id = $2", tier, id)
	if err != nil {
		return nil, fmt.Errorf("update distributor %d tier: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("distributor %d: %w", id, ErrNotFound)
	}
	return s.GetDistributor(ctx, id)
}

func (s *partnerService) CreateSupplier(ctx context.Context, name, category, email, phone, address string) (*Supplier, error) {
	if name == "" {
		return nil, fmt.Errorf("supplier name is required")
	}
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO suppliers (name, category, email, phone, address)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		name, category, email, phone, address,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("insert supplier %q: %w", name, err)
	}
	return s.GetSupplier(ctx, id)
}

func (s *partnerService) GetSupplier(ctx context.Context, id int64) (*Supplier, error) {
	var sup Supplier
	err := s.pool.QueryRow(ctx,
		"SELECT id, name, category, email, phone, address, created_at FROM suppliers WHERE id = $1",
		id,
	).Scan(&sup.ID, &sup.Name, &sup.Category, &sup.Email, &sup.Phone, &sup.Address, &sup.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("supplier %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch supplier %d: %w", id, err)
	}
	return &sup, nil
}

func (s *partnerService) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, name, category, email, phone, address, created_at FROM suppliers ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()

	var suppliers []Supplier
	for rows.Next() {
		var sup Supplier
		if err := rows.Scan(&sup.ID, &sup.Name, &sup.Category, &sup.Email, &sup.Phone, &sup.Address, &sup.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		suppliers = append(suppliers, sup)
	}
	return suppliers, rows.Err()
}

func (s *partnerService) CreateCommissionRule(ctx context.Context, name string, appliesTo []string, ruleType CommissionType, rate decimal.Decimal) (*CommissionRule, error) {
	if name == "" {
		return nil, fmt.Errorf("commission rule name is required")
	}
	if len(appliesTo) == 0 {
		return nil, fmt.Errorf("commission rule %q needs at least one applies-to token", name)
	}
	if ruleType != CommissionPercentage && ruleType != CommissionFixed {
		return nil, fmt.Errorf("unknown commission rule type %q", ruleType)
	}
	if rate.IsNegative() {
		return nil, fmt.Errorf("commission rate cannot be negative, got %s", rate)
	}

	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO commission_rules (rule_name, applies_to, rule_type, rate, is_active)
		VALUES ($1, $2, $3, $4, true)
		RETURNING id`,
		name, appliesTo, string(ruleType), rate,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("insert commission rule %q: %w", name, err)
	}
	return s.getCommissionRule(ctx, id)
}

func (s *partnerService) getCommissionRule(ctx context.Context, id int64) (*CommissionRule, error) {
	var r CommissionRule
	err := s.pool.QueryRow(ctx, `
		SELECT id, rule_name, applies_to, rule_type, rate, is_active, created_at
		FROM commission_rules WHERE id = $1`,
		id,
	).Scan(&r.ID, &r.RuleName, &r.AppliesTo, &r.Type, &r.Rate, &r.IsActive, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("commission rule %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch commission rule %d: %w", id, err)
	}
	return &r, nil
}

func (s *partnerService) ListCommissionRules(ctx context.Context, activeOnly bool) ([]CommissionRule, error) {
	query := `
		SELECT id, rule_name, applies_to, rule_type, rate, is_active, created_at
		FROM commission_rules`
	if activeOnly {
		query += " WHERE is_active = true"
	}
	query += " ORDER BY id"

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list commission rules: %w", err)
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

// SetCommissionRuleActive toggles a rule. Deactivation affects future sales
// only; commission records already written are immutable.
func (s *partnerService) SetCommissionRuleActive(ctx context.Context, id int64, active bool) (*CommissionRule, error) {
	tag, err := s.pool.Exec(ctx, "UPDATE commission_rules SET is_active = $1 WHERE id = $2", active, id)
	if err != nil {
		return nil, fmt.Errorf("toggle commission rule %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("commission rule %d: %w", id, ErrNotFound)
	}
	return s.getCommissionRule(ctx, id)
}
