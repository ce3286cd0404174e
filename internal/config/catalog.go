package config

import (
	"errors"
	"fmt"
	"strings"

	tierdomain "github.com/smallbiznis/entitle/internal/tier/domain"
	"github.com/spf13/viper"
)

// CatalogTier is one semi-static tier definition from tiers.yml.
type CatalogTier struct {
	ProductID   string
	Label       string
	BillingType string
	Features    tierdomain.Features
}

// CatalogConfig is the curated tier catalog seeded at startup. Products not
// listed here still get auto-created entries on first paid invoice; the
// catalog exists so the free fallback and the curated plans are present
// before the first event arrives.
type CatalogConfig struct {
	Tiers []CatalogTier
}

func DefaultCatalogConfig() CatalogConfig {
	return CatalogConfig{
		Tiers: []CatalogTier{
			{
				ProductID:   "free",
				Label:       "Free",
				BillingType: string(tierdomain.BillingTypeNone),
				Features: tierdomain.Features{
					Drive: tierdomain.DriveFeature{Enabled: true, MaxSpaceBytes: 2 << 30},
					Mail:  tierdomain.MailFeature{Enabled: true, AddressesPerUser: 1},
					Meet:  tierdomain.MeetFeature{Enabled: true, PaxPerCall: 4},
				},
			},
		},
	}
}

// LoadCatalog reads tiers.yml the same way semi-static domain config is
// loaded elsewhere: volume mount first, system config second, working
// directory for dev mode, with defaults when no file exists.
func LoadCatalog() (CatalogConfig, error) {
	v := viper.New()

	v.SetConfigName("tiers")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/entitle/config")
	v.AddConfigPath("/etc/entitle")
	v.AddConfigPath(".")

	v.SetEnvPrefix("ENTITLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return CatalogConfig{}, err
		}
		defaults := DefaultCatalogConfig()
		v.SetDefault("catalog.tiers", defaults.Tiers)
	}

	var cfg CatalogConfig
	if err := v.UnmarshalKey("catalog", &cfg); err != nil {
		return CatalogConfig{}, err
	}
	if err := validateCatalogConfig(cfg); err != nil {
		return CatalogConfig{}, err
	}
	return cfg, nil
}

func validateCatalogConfig(cfg CatalogConfig) error {
	if len(cfg.Tiers) == 0 {
		return errors.New("catalog.tiers cannot be empty")
	}

	seen := make(map[string]struct{}, len(cfg.Tiers))
	hasFree := false
	for _, tier := range cfg.Tiers {
		productID := strings.TrimSpace(tier.ProductID)
		if productID == "" {
			return errors.New("catalog tier is missing a productId")
		}
		if _, ok := seen[productID]; ok {
			return fmt.Errorf("catalog tier %q is listed twice", productID)
		}
		seen[productID] = struct{}{}

		switch tierdomain.BillingType(tier.BillingType) {
		case tierdomain.BillingTypeSubscription, tierdomain.BillingTypeLifetime:
		case tierdomain.BillingTypeNone:
			hasFree = true
		default:
			return fmt.Errorf("catalog tier %q has unknown billingType %q", productID, tier.BillingType)
		}
	}

	// Every cancellation path falls back to the free tier.
	if !hasFree {
		return errors.New("catalog must contain a tier with billingType none")
	}
	return nil
}
