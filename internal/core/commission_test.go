package core_test

import (
	"testing"

	"erp-backend/internal/core"
)

func TestRuleApplies(t *testing.T) {
	rule := core.CommissionRule{
		RuleName:  "Gold partners and Widget X",
		AppliesTo: []string{"Widget X", "Gold"},
		Type:      core.CommissionPercentage,
		Rate:      dec("5"),
		IsActive:  true,
	}

	tests := []struct {
		name        string
		product     string
		distributor string
		tier        string
		want        bool
	}{
		{"matches product name", "Widget X", "Acme Dist", "Silver", true},
		{"matches tier", "Widget Y", "Acme Dist", "Gold", true},
		{"matches distributor name", "Widget Y", "Gold", "Silver", true},
		{"no match", "Widget Y", "Acme Dist", "Silver", false},
		{"case sensitive", "widget x", "Acme Dist", "gold", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := core.RuleApplies(rule, tt.product, tt.distributor, tt.tier)
			if got != tt.want {
				t.Errorf("RuleApplies(%q, %q, %q) = %v, want %v", tt.product, tt.distributor, tt.tier, got, tt.want)
			}
		})
	}
}

func TestRuleApplies_EmptyTokensNeverMatch(t *testing.T) {
	rule := core.CommissionRule{AppliesTo: []string{""}, IsActive: true}
	if core.RuleApplies(rule, "", "", "") {
		t.Error("empty applies-to token must not match empty candidate fields")
	}
}

func TestCommissionAmount(t *testing.T) {
	tests := []struct {
		name string
		rule core.CommissionRule
		sale string
		want string
	}{
		{
			name: "percentage",
			rule: core.CommissionRule{Type: core.CommissionPercentage, Rate: dec("5")},
			sale: "1000.00",
			want: "50",
		},
		{
			name: "percentage of fractional sale",
			rule: core.CommissionRule{Type: core.CommissionPercentage, Rate: dec("2.5")},
			sale: "199.90",
			want: "4.9975",
		},
		{
			name: "fixed ignores sale amount",
			rule: core.CommissionRule{Type: core.CommissionFixed, Rate: dec("25.00")},
			sale: "99999.00",
			want: "25.00",
		},
		{
			name: "fixed on tiny sale",
			rule: core.CommissionRule{Type: core.CommissionFixed, Rate: dec("25.00")},
			sale: "1.00",
			want: "25.00",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := core.CommissionAmount(tt.rule, dec(tt.sale))
			if !got.Equal(dec(tt.want)) {
				t.Errorf("CommissionAmount = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMatchRules_Stacking(t *testing.T) {
	rules := []core.CommissionRule{
		{ID: 1, RuleName: "product", AppliesTo: []string{"Widget X"}, Type: core.CommissionPercentage, Rate: dec("5"), IsActive: true},
		{ID: 2, RuleName: "tier", AppliesTo: []string{"Gold"}, Type: core.CommissionFixed, Rate: dec("10"), IsActive: true},
		{ID: 3, RuleName: "inactive", AppliesTo: []string{"Widget X"}, Type: core.CommissionPercentage, Rate: dec("50"), IsActive: false},
		{ID: 4, RuleName: "other product", AppliesTo: []string{"Widget Y"}, Type: core.CommissionPercentage, Rate: dec("1"), IsActive: true},
	}

	matched := core.MatchRules(rules, "Widget X", "Acme Dist", "Gold")
	if len(matched) != 2 {
		t.Fatalf("matched %d rules, want 2", len(matched))
	}
	if matched[0].ID != 1 || matched[1].ID != 2 {
		t.Errorf("matched rule IDs = %d, %d; want 1, 2", matched[0].ID, matched[1].ID)
	}

	// Both matches fire independently: 5% of 1000 plus a flat 10.
	total := dec("0")
	for _, r := range matched {
		total = total.Add(core.CommissionAmount(r, dec("1000")))
	}
	if !total.Equal(dec("60")) {
		t.Errorf("stacked commission = %s, want 60", total)
	}
}

func TestMatchRules_MultiTokenRuleFiresOnce(t *testing.T) {
	rules := []core.CommissionRule{
		{ID: 1, AppliesTo: []string{"Widget X", "Gold"}, Type: core.CommissionPercentage, Rate: dec("5"), IsActive: true},
	}
	matched := core.MatchRules(rules, "Widget X", "Acme Dist", "Gold")
	if len(matched) != 1 {
		t.Errorf("rule matching on both product and tier fired %d times, want 1", len(matched))
	}
}
