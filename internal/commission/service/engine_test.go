package service

import (
	"errors"
	"math"
	"sync"
	"testing"

	commissiondomain "github.com/smallbiznis/remag/internal/commission/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

func newTestEngine(t *testing.T) commissiondomain.Engine {
	t.Helper()
	e, err := NewEngine(commissiondomain.DefaultTierTable())
	require.NoError(t, err)
	return e
}

func TestComputeCommission_Scenarios(t *testing.T) {
	e := newTestEngine(t)

	cases := []struct {
		name  string
		price float64
		tier  string
		want  float64
	}{
		{"default rate", 100, "default", 15},
		{"floor applies", 5, "default", 1},
		{"ceiling applies", 100000, "default", 10000},
		{"enterprise rate", 1000, "enterprise", 80},
		{"premium rate", 1000, "premium", 100},
		{"unknown tier falls back", 100, "unknown_tier", 15},
		{"empty tier falls back", 100, "", 15},
		{"zero price still pays floor", 0, "default", 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := e.ComputeCommission(tc.price, tc.tier)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, tolerance)
		})
	}
}

func TestComputeSellerAmount(t *testing.T) {
	e := newTestEngine(t)

	got, err := e.ComputeSellerAmount(100, "default")
	require.NoError(t, err)
	assert.InDelta(t, 85, got, tolerance)

	// the floor can exceed the price; the negative payout is kept as is
	got, err = e.ComputeSellerAmount(0.5, "default")
	require.NoError(t, err)
	assert.InDelta(t, -0.5, got, tolerance)
}

func TestComputeCommission_InvalidAmount(t *testing.T) {
	e := newTestEngine(t)

	for _, price := range []float64{-0.01, -100, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := e.ComputeCommission(price, "default")
		assert.ErrorIs(t, err, commissiondomain.ErrInvalidAmount, "price %v", price)

		_, err = e.ComputeSellerAmount(price, "default")
		assert.ErrorIs(t, err, commissiondomain.ErrInvalidAmount, "price %v", price)

		_, err = e.Quote(price, "premium")
		assert.ErrorIs(t, err, commissiondomain.ErrInvalidAmount, "price %v", price)
	}
}

func TestCommissionProperties(t *testing.T) {
	e := newTestEngine(t)
	table := commissiondomain.DefaultTierTable()

	prices := []float64{0, 0.01, 0.5, 1, 5, 6.66, 7, 10, 99.99, 100, 1234.56, 20000, 33333.33, 66666.67, 1e6, 1e9}
	for name, rule := range table {
		for _, p := range prices {
			commission, err := e.ComputeCommission(p, name)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, commission, rule.MinAmount)
			assert.LessOrEqual(t, commission, rule.MaxAmount)

			seller, err := e.ComputeSellerAmount(p, name)
			require.NoError(t, err)
			assert.InDelta(t, p, commission+seller, 1e-6)
		}
	}

	for _, p := range prices {
		fallback, err := e.ComputeCommission(p, "nonexistent")
		require.NoError(t, err)
		def, err := e.ComputeCommission(p, commissiondomain.DefaultTier)
		require.NoError(t, err)
		assert.Equal(t, def, fallback)
	}
}

func TestCommissionMonotonicInUnclampedRegion(t *testing.T) {
	e := newTestEngine(t)

	// default tier: unclamped for 1/0.15 < price < 10000/0.15
	prev, err := e.ComputeCommission(10, "default")
	require.NoError(t, err)
	for p := 20.0; p < 66000; p += 997 {
		got, err := e.ComputeCommission(p, "default")
		require.NoError(t, err)
		assert.Greater(t, got, prev, "price %v", p)
		prev = got
	}
}

func TestQuote_Breakdown(t *testing.T) {
	e := newTestEngine(t)

	q, err := e.Quote(5, "")
	require.NoError(t, err)
	assert.Equal(t, commissiondomain.DefaultTier, q.Tier)
	assert.Equal(t, commissiondomain.BoundFloor, q.Bound)
	assert.InDelta(t, 0.75, q.RawCommission, tolerance)
	assert.InDelta(t, 1, q.Commission, tolerance)
	assert.InDelta(t, 4, q.SellerAmount, tolerance)
	assert.False(t, q.FloorExceedsPrice)

	q, err = e.Quote(100000, "default")
	require.NoError(t, err)
	assert.Equal(t, commissiondomain.BoundCeiling, q.Bound)
	assert.InDelta(t, 15000, q.RawCommission, tolerance)
	assert.InDelta(t, 10000, q.Commission, tolerance)

	q, err = e.Quote(1000, " enterprise")
	require.NoError(t, err)
	assert.Equal(t, " enterprise", q.RequestedTier)
	assert.Equal(t, commissiondomain.DefaultTier, q.Tier, "surrounding whitespace is not trimmed")

	q, err = e.Quote(0.2, "premium")
	require.NoError(t, err)
	assert.Equal(t, "premium", q.Tier)
	assert.True(t, q.FloorExceedsPrice)
	assert.Less(t, q.SellerAmount, 0.0)
}

func TestRule_IgnoresCase(t *testing.T) {
	e, err := NewEngine(commissiondomain.TierTable{
		"Default": {Percentage: 15, MinAmount: 1, MaxAmount: 10000},
		"VIP":     {Percentage: 5, MinAmount: 1, MaxAmount: 500},
	})
	require.NoError(t, err)

	for _, tier := range []string{"VIP", "vip", "Vip"} {
		q, err := e.Quote(100, tier)
		require.NoError(t, err)
		assert.Equal(t, "vip", q.Tier, tier)
		assert.Equal(t, tier, q.RequestedTier)
		assert.InDelta(t, 5, q.Commission, tolerance, tier)
	}

	name, _ := e.Rule("DEFAULT")
	assert.Equal(t, commissiondomain.DefaultTier, name)

	tiers := e.Tiers()
	require.Len(t, tiers, 2)
	assert.Equal(t, "default", tiers[0].Name)
	assert.Equal(t, "vip", tiers[1].Name)
}

func TestTiersSortedByName(t *testing.T) {
	e := newTestEngine(t)

	tiers := e.Tiers()
	require.Len(t, tiers, 3)
	assert.Equal(t, "default", tiers[0].Name)
	assert.Equal(t, "enterprise", tiers[1].Name)
	assert.Equal(t, "premium", tiers[2].Name)
	assert.InDelta(t, 8, tiers[1].Percentage, tolerance)
}

func TestNewEngine_RejectsInvalidTables(t *testing.T) {
	cases := []struct {
		name  string
		table commissiondomain.TierTable
		tier  string
		field string
	}{
		{
			name:  "missing default",
			table: commissiondomain.TierTable{"premium": {Percentage: 10, MinAmount: 1, MaxAmount: 5000}},
		},
		{
			name:  "empty table",
			table: commissiondomain.TierTable{},
		},
		{
			name:  "percentage above 100",
			table: commissiondomain.TierTable{"default": {Percentage: 101, MinAmount: 0, MaxAmount: 1}},
			tier:  "default",
			field: "percentage",
		},
		{
			name:  "negative percentage",
			table: commissiondomain.TierTable{"default": {Percentage: -1, MinAmount: 0, MaxAmount: 1}},
			tier:  "default",
			field: "percentage",
		},
		{
			name:  "negative floor",
			table: commissiondomain.TierTable{"default": {Percentage: 15, MinAmount: -1, MaxAmount: 1}},
			tier:  "default",
			field: "minAmount",
		},
		{
			name: "ceiling below floor",
			table: commissiondomain.TierTable{
				"default": {Percentage: 15, MinAmount: 1, MaxAmount: 10},
				"gold":    {Percentage: 5, MinAmount: 10, MaxAmount: 2},
			},
			tier:  "gold",
			field: "maxAmount",
		},
		{
			name: "same tier in two casings",
			table: commissiondomain.TierTable{
				"default": {Percentage: 15, MinAmount: 1, MaxAmount: 10},
				"gold":    {Percentage: 5, MinAmount: 1, MaxAmount: 10},
				"GOLD":    {Percentage: 6, MinAmount: 1, MaxAmount: 10},
			},
			tier: "gold",
		},
		{
			name:  "nan percentage",
			table: commissiondomain.TierTable{"default": {Percentage: math.NaN(), MinAmount: 0, MaxAmount: 1}},
			tier:  "default",
			field: "percentage",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewEngine(tc.table)
			require.Error(t, err)
			assert.ErrorIs(t, err, commissiondomain.ErrInvalidConfiguration)

			var cfgErr *commissiondomain.ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tc.tier, cfgErr.Tier)
			assert.Equal(t, tc.field, cfgErr.Field)
		})
	}
}

func TestNewEngine_CopiesTable(t *testing.T) {
	table := commissiondomain.DefaultTierTable()
	e, err := NewEngine(table)
	require.NoError(t, err)

	table["default"] = commissiondomain.TierRule{Percentage: 50, MinAmount: 0, MaxAmount: 1e9}
	delete(table, "premium")

	got, err := e.ComputeCommission(100, "default")
	require.NoError(t, err)
	assert.InDelta(t, 15, got, tolerance)

	got, err = e.ComputeCommission(1000, "premium")
	require.NoError(t, err)
	assert.InDelta(t, 100, got, tolerance)
}

func TestEngine_ConcurrentReaders(t *testing.T) {
	e := newTestEngine(t)

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			price := float64(i * 100)
			got, err := e.ComputeCommission(price, "enterprise")
			if err != nil {
				errs <- err
				return
			}
			want := math.Max(1, math.Min(price*8/100, 3000))
			if math.Abs(got-want) > tolerance {
				errs <- errors.New("unexpected commission")
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
