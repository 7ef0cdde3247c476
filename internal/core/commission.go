package core

import "github.com/shopspring/decimal"

var oneHundred = decimal.NewFromInt(100)

// RuleApplies reports whether a commission rule matches a sale line.
// The rule's AppliesTo list is an OR over three candidate tokens: the
// product name, the distributor name, and the distributor tier — one hit is
// enough. Matching is exact (case-sensitive), mirroring how rules are
// entered against canonical entity names.
func RuleApplies(rule CommissionRule, productName, distributorName, distributorTier string) bool {
	for _, token := range rule.AppliesTo {
		if token == "" {
			continue
		}
		if token == productName || token == distributorName || token == distributorTier {
			return true
		}
	}
	return false
}

// CommissionAmount computes the commission a rule yields for a sale line.
// Percentage rules pay saleAmount × rate/100; Fixed rules pay the flat rate
// once per matching line, independent of the sale amount.
func CommissionAmount(rule CommissionRule, saleAmount decimal.Decimal) decimal.Decimal {
	if rule.Type == CommissionFixed {
		return rule.Rate
	}
	return saleAmount.Mul(rule.Rate).Div(oneHundred)
}

// MatchRules returns the subset of active rules applying to a sale line.
// All matches fire independently and their amounts stack — there is no
// precedence or mutual exclusion between rules. A rule matching on more
// than one token (say both product and tier) still fires exactly once.
func MatchRules(rules []CommissionRule, productName, distributorName, distributorTier string) []CommissionRule {
	var matched []CommissionRule
	for _, r := range rules {
		if !r.IsActive {
			continue
		}
		if RuleApplies(r, productName, distributorName, distributorTier) {
			matched = append(matched, r)
		}
	}
	return matched
}
