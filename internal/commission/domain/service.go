package domain

// Engine computes platform commissions and seller payouts.
// Implementations are read-only after construction and safe for concurrent use.
type Engine interface {
	ComputeCommission(price float64, tier string) (float64, error)
	ComputeSellerAmount(price float64, tier string) (float64, error)
	Quote(price float64, tier string) (Quote, error)
	Rule(tier string) (string, TierRule)
	Tiers() []TierView
}
