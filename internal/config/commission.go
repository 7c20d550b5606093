package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	commissiondomain "github.com/smallbiznis/remag/internal/commission/domain"
	"github.com/spf13/viper"
)

const commissionTiersKey = "commission.tiers"

// LoadCommissionTable reads the tier table from commission.yml, falling back
// to the built-in table when no file is present. The result is validated by
// the commission engine when it is constructed.
func LoadCommissionTable() (commissiondomain.TierTable, error) {
	v := viper.New()

	v.SetConfigName("commission")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/remag/config") // Volume-mounted config
	v.AddConfigPath("/etc/remag")            // System config
	v.AddConfigPath(".")                     // Current directory (dev mode)

	v.SetEnvPrefix("REMAG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := strings.TrimSpace(v.GetString("commission.config")); path != "" {
		v.SetConfigFile(path)
	}

	return readCommissionTable(v)
}

func readCommissionTable(v *viper.Viper) (commissiondomain.TierTable, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read commission config: %w", err)
		}
		return commissiondomain.DefaultTierTable(), nil
	}

	var table commissiondomain.TierTable
	if err := v.UnmarshalKey(commissionTiersKey, &table, rejectUnknownFields); err != nil {
		return nil, &commissiondomain.ConfigurationError{
			Reason: fmt.Sprintf("decode %s: %v", commissionTiersKey, err),
		}
	}
	if len(table) == 0 {
		return nil, &commissiondomain.ConfigurationError{Reason: commissionTiersKey + " cannot be empty"}
	}

	// viper lower-cases keys; the engine folds lookups the same way.
	out := make(commissiondomain.TierTable, len(table))
	for name, rule := range table {
		out[strings.TrimSpace(name)] = rule
	}
	return out, nil
}

// rejectUnknownFields turns a misspelled rule field such as min_amount into a
// load error instead of a silent zero.
func rejectUnknownFields(c *mapstructure.DecoderConfig) {
	c.ErrorUnused = true
}
