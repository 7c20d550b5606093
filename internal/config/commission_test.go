package config

import (
	"os"
	"path/filepath"
	"testing"

	commissiondomain "github.com/smallbiznis/remag/internal/commission/domain"
	commissionservice "github.com/smallbiznis/remag/internal/commission/service"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper(dir string) *viper.Viper {
	v := viper.New()
	v.SetConfigName("commission")
	v.SetConfigType("yml")
	v.AddConfigPath(dir)
	return v
}

func TestReadCommissionTable_FallsBackToDefaults(t *testing.T) {
	table, err := readCommissionTable(newTestViper(t.TempDir()))
	require.NoError(t, err)
	assert.Equal(t, commissiondomain.DefaultTierTable(), table)
}

func TestReadCommissionTable_FromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
commission:
  tiers:
    default:
      percentage: 12.5
      minAmount: 0.5
      maxAmount: 2500
    gold:
      percentage: 4
      minAmount: 0
      maxAmount: 900
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "commission.yml"), []byte(content), 0o600))

	table, err := readCommissionTable(newTestViper(dir))
	require.NoError(t, err)
	require.Len(t, table, 2)
	assert.Equal(t, commissiondomain.TierRule{Percentage: 12.5, MinAmount: 0.5, MaxAmount: 2500}, table["default"])
	assert.Equal(t, commissiondomain.TierRule{Percentage: 4, MinAmount: 0, MaxAmount: 900}, table["gold"])
}

func TestReadCommissionTable_EmptyTiers(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "commission.yml"), []byte("commission:\n  tiers: {}\n"), 0o600))

	_, err := readCommissionTable(newTestViper(dir))
	assert.ErrorIs(t, err, commissiondomain.ErrInvalidConfiguration)
}

func TestReadCommissionTable_RejectsUnknownRuleField(t *testing.T) {
	dir := t.TempDir()
	content := `
commission:
  tiers:
    default:
      percentage: 15
      minAmount: 1
      maxAmount: 10000
    gold:
      percentage: 5
      min_amount: 7
      maxAmount: 100
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "commission.yml"), []byte(content), 0o600))

	table, err := readCommissionTable(newTestViper(dir))
	assert.Nil(t, table)
	assert.ErrorIs(t, err, commissiondomain.ErrInvalidConfiguration)
	assert.Contains(t, err.Error(), "min_amount")
}

func TestReadCommissionTable_MixedCaseTierResolves(t *testing.T) {
	dir := t.TempDir()
	content := `
commission:
  tiers:
    default:
      percentage: 15
      minAmount: 1
      maxAmount: 10000
    VIP:
      percentage: 5
      minAmount: 1
      maxAmount: 500
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "commission.yml"), []byte(content), 0o600))

	table, err := readCommissionTable(newTestViper(dir))
	require.NoError(t, err)

	engine, err := commissionservice.NewEngine(table)
	require.NoError(t, err)

	quote, err := engine.Quote(100, "VIP")
	require.NoError(t, err)
	assert.Equal(t, "vip", quote.Tier)
	assert.InDelta(t, 5, quote.Commission, 1e-9)
}

func TestReadCommissionTable_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "commission.yml"), []byte("commission: [\n"), 0o600))

	_, err := readCommissionTable(newTestViper(dir))
	assert.Error(t, err)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_TYPE", "")
	t.Setenv("RATE_LIMIT_ENABLED", "")
	t.Setenv("SETTLEMENT_DEFAULT_CURRENCY", "")

	cfg := Load()
	assert.Equal(t, "mysql", cfg.DBType)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, "EUR", cfg.Settlement.DefaultCurrency)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "yes")
	t.Setenv("RATE_LIMIT_QUOTE_RATE", "2.5")
	t.Setenv("RATE_LIMIT_QUOTE_BURST", "not-a-number")
	t.Setenv("SETTLEMENT_DEFAULT_CURRENCY", " usd ")
	t.Setenv("ENVIRONMENT", "production")

	cfg := Load()
	assert.True(t, cfg.RateLimit.Enabled)
	assert.InDelta(t, 2.5, cfg.RateLimit.QuoteRate, 1e-9)
	assert.Equal(t, 40, cfg.RateLimit.QuoteBurst)
	assert.Equal(t, "USD", cfg.Settlement.DefaultCurrency)
	assert.True(t, cfg.IsProduction())
}
