package config

import (
	"testing"

	tierdomain "github.com/smallbiznis/entitle/internal/tier/domain"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogConfigIsValid(t *testing.T) {
	require.NoError(t, validateCatalogConfig(DefaultCatalogConfig()))
}

func TestValidateCatalogRejectsEmpty(t *testing.T) {
	require.Error(t, validateCatalogConfig(CatalogConfig{}))
}

func TestValidateCatalogRequiresFreeTier(t *testing.T) {
	cfg := CatalogConfig{
		Tiers: []CatalogTier{
			{ProductID: "prod_drive", Label: "Drive", BillingType: string(tierdomain.BillingTypeSubscription)},
		},
	}
	require.Error(t, validateCatalogConfig(cfg))
}

func TestValidateCatalogRejectsDuplicateProducts(t *testing.T) {
	free := DefaultCatalogConfig().Tiers[0]
	cfg := CatalogConfig{Tiers: []CatalogTier{free, free}}
	require.Error(t, validateCatalogConfig(cfg))
}

func TestValidateCatalogRejectsUnknownBillingType(t *testing.T) {
	cfg := CatalogConfig{
		Tiers: []CatalogTier{
			DefaultCatalogConfig().Tiers[0],
			{ProductID: "prod_x", Label: "X", BillingType: "trial"},
		},
	}
	require.Error(t, validateCatalogConfig(cfg))
}
