package service

import (
	"math"
	"sort"
	"strings"

	commissiondomain "github.com/smallbiznis/remag/internal/commission/domain"
)

type engine struct {
	tiers commissiondomain.TierTable
}

// NewEngine validates table and returns an engine over a private copy of it.
// Tier names are case-insensitive; the copy holds them lower-cased.
func NewEngine(table commissiondomain.TierTable) (commissiondomain.Engine, error) {
	tiers, err := foldTierNames(table)
	if err != nil {
		return nil, err
	}
	if err := ValidateTierTable(tiers); err != nil {
		return nil, err
	}
	return &engine{tiers: tiers}, nil
}

func foldTierNames(table commissiondomain.TierTable) (commissiondomain.TierTable, error) {
	out := make(commissiondomain.TierTable, len(table))
	for name, rule := range table {
		key := strings.ToLower(name)
		if _, dup := out[key]; dup {
			return nil, &commissiondomain.ConfigurationError{Tier: key, Reason: "declared more than once with different casing"}
		}
		out[key] = rule
	}
	return out, nil
}

// ValidateTierTable checks the invariants every table must hold before use.
func ValidateTierTable(table commissiondomain.TierTable) error {
	if _, ok := table[commissiondomain.DefaultTier]; !ok {
		return &commissiondomain.ConfigurationError{
			Reason: "missing \"" + commissiondomain.DefaultTier + "\" tier",
		}
	}

	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			return &commissiondomain.ConfigurationError{Reason: "empty tier name"}
		}
		if err := validateRule(name, table[name]); err != nil {
			return err
		}
	}
	return nil
}

func validateRule(name string, rule commissiondomain.TierRule) error {
	switch {
	case !isFinite(rule.Percentage) || rule.Percentage < 0 || rule.Percentage > 100:
		return &commissiondomain.ConfigurationError{Tier: name, Field: "percentage", Reason: "must be within [0, 100]"}
	case !isFinite(rule.MinAmount) || rule.MinAmount < 0:
		return &commissiondomain.ConfigurationError{Tier: name, Field: "minAmount", Reason: "must be a non-negative number"}
	case !isFinite(rule.MaxAmount) || rule.MaxAmount < rule.MinAmount:
		return &commissiondomain.ConfigurationError{Tier: name, Field: "maxAmount", Reason: "must not be below minAmount"}
	}
	return nil
}

func (e *engine) ComputeCommission(price float64, tier string) (float64, error) {
	if err := validatePrice(price); err != nil {
		return 0, err
	}
	_, rule := e.Rule(tier)
	commission, _ := clamp(rawCommission(price, rule), rule)
	return commission, nil
}

func (e *engine) ComputeSellerAmount(price float64, tier string) (float64, error) {
	commission, err := e.ComputeCommission(price, tier)
	if err != nil {
		return 0, err
	}
	return price - commission, nil
}

func (e *engine) Quote(price float64, tier string) (commissiondomain.Quote, error) {
	if err := validatePrice(price); err != nil {
		return commissiondomain.Quote{}, err
	}

	name, rule := e.Rule(tier)
	raw := rawCommission(price, rule)
	commission, bound := clamp(raw, rule)

	return commissiondomain.Quote{
		Price:             price,
		RequestedTier:     tier,
		Tier:              name,
		Rule:              rule,
		RawCommission:     raw,
		Commission:        commission,
		SellerAmount:      price - commission,
		Bound:             bound,
		FloorExceedsPrice: commission > price,
	}, nil
}

// Rule resolves tier to its configured name and rule, falling back to the
// default tier for unknown or empty identifiers.
func (e *engine) Rule(tier string) (string, commissiondomain.TierRule) {
	name := strings.ToLower(tier)
	if rule, ok := e.tiers[name]; ok {
		return name, rule
	}
	return commissiondomain.DefaultTier, e.tiers[commissiondomain.DefaultTier]
}

func (e *engine) Tiers() []commissiondomain.TierView {
	out := make([]commissiondomain.TierView, 0, len(e.tiers))
	for name, rule := range e.tiers {
		out = append(out, commissiondomain.TierView{Name: name, TierRule: rule})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func validatePrice(price float64) error {
	if !isFinite(price) || price < 0 {
		return commissiondomain.ErrInvalidAmount
	}
	return nil
}

func rawCommission(price float64, rule commissiondomain.TierRule) float64 {
	return price * rule.Percentage / 100
}

func clamp(raw float64, rule commissiondomain.TierRule) (float64, commissiondomain.Bound) {
	switch {
	case raw < rule.MinAmount:
		return rule.MinAmount, commissiondomain.BoundFloor
	case raw > rule.MaxAmount:
		return rule.MaxAmount, commissiondomain.BoundCeiling
	default:
		return raw, commissiondomain.BoundNone
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
