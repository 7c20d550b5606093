// Package domain holds the commission tier rules and quote types.
package domain

// DefaultTier is the tier every unknown or empty identifier resolves to.
// A TierTable without it is rejected at load time.
const DefaultTier = "default"

// TierRule is the commission policy applied to one seller tier.
// Percentage is expressed on a 0-100 scale; MinAmount and MaxAmount bound
// the commission in the same currency unit as the price.
type TierRule struct {
	Percentage float64 `json:"percentage" mapstructure:"percentage"`
	MinAmount  float64 `json:"min_amount" mapstructure:"minAmount"`
	MaxAmount  float64 `json:"max_amount" mapstructure:"maxAmount"`
}

// TierTable maps tier identifiers to their rule.
type TierTable map[string]TierRule

// Clone returns a copy that shares nothing with t.
func (t TierTable) Clone() TierTable {
	out := make(TierTable, len(t))
	for name, rule := range t {
		out[name] = rule
	}
	return out
}

// DefaultTierTable is the marketplace's built-in rate table.
func DefaultTierTable() TierTable {
	return TierTable{
		DefaultTier:  {Percentage: 15, MinAmount: 1, MaxAmount: 10000},
		"premium":    {Percentage: 10, MinAmount: 1, MaxAmount: 5000},
		"enterprise": {Percentage: 8, MinAmount: 1, MaxAmount: 3000},
	}
}

// Bound reports which side of the rule clamped the commission.
type Bound string

const (
	BoundNone    Bound = "none"
	BoundFloor   Bound = "floor"
	BoundCeiling Bound = "ceiling"
)

// Quote is the full breakdown of one commission computation.
type Quote struct {
	Price         float64  `json:"price"`
	RequestedTier string   `json:"requested_tier,omitempty"`
	Tier          string   `json:"tier"`
	Rule          TierRule `json:"rule"`
	RawCommission float64  `json:"raw_commission"`
	Commission    float64  `json:"commission"`
	SellerAmount  float64  `json:"seller_amount"`
	Bound         Bound    `json:"bound"`
	// FloorExceedsPrice is set when the floor commission is larger than the
	// price, which leaves the seller with a negative payout.
	FloorExceedsPrice bool `json:"floor_exceeds_price"`
}

// TierView is the read model of a configured tier.
type TierView struct {
	Name string `json:"name"`
	TierRule
}
