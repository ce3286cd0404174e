package seed_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/entitle/internal/config"
	"github.com/smallbiznis/entitle/internal/seed"
	tierdomain "github.com/smallbiznis/entitle/internal/tier/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSeedDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, seed.EnsureSchema(db))
	return db
}

func TestEnsureCatalogSeedsDefaults(t *testing.T) {
	db := setupSeedDB(t)

	require.NoError(t, seed.EnsureCatalog(db, config.DefaultCatalogConfig()))

	var free tierdomain.Tier
	require.NoError(t, db.Where("product_id = ?", "free").First(&free).Error)
	require.Equal(t, tierdomain.BillingTypeNone, free.BillingType)
	require.True(t, free.FeatureSet().Drive.Enabled)
	require.Equal(t, int64(2)<<30, free.FeatureSet().Drive.MaxSpaceBytes)
}

func TestEnsureCatalogIsIdempotent(t *testing.T) {
	db := setupSeedDB(t)
	catalog := config.DefaultCatalogConfig()

	require.NoError(t, seed.EnsureCatalog(db, catalog))
	require.NoError(t, seed.EnsureCatalog(db, catalog))

	var count int64
	require.NoError(t, db.Model(&tierdomain.Tier{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestEnsureCatalogKeepsExistingRows(t *testing.T) {
	db := setupSeedDB(t)

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	now := time.Now().UTC()
	existing := tierdomain.Tier{
		ID:          node.Generate(),
		ProductID:   "free",
		BillingType: tierdomain.BillingTypeNone,
		Label:       "Free (legacy)",
		Features: datatypes.NewJSONType(tierdomain.Features{
			Drive: tierdomain.DriveFeature{Enabled: true, MaxSpaceBytes: 5 << 30},
		}),
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, db.Create(&existing).Error)

	require.NoError(t, seed.EnsureCatalog(db, config.DefaultCatalogConfig()))

	var stored tierdomain.Tier
	require.NoError(t, db.Where("product_id = ?", "free").First(&stored).Error)
	require.Equal(t, "Free (legacy)", stored.Label)
	require.Equal(t, int64(5)<<30, stored.FeatureSet().Drive.MaxSpaceBytes)
}

func TestEnsureCatalogSeedsMultipleTiers(t *testing.T) {
	db := setupSeedDB(t)

	catalog := config.CatalogConfig{
		Tiers: []config.CatalogTier{
			config.DefaultCatalogConfig().Tiers[0],
			{
				ProductID:   "prod_drive_1tb",
				Label:       "Drive 1TB",
				BillingType: string(tierdomain.BillingTypeSubscription),
				Features: tierdomain.Features{
					Drive: tierdomain.DriveFeature{Enabled: true, MaxSpaceBytes: 1 << 40},
				},
			},
		},
	}
	require.NoError(t, seed.EnsureCatalog(db, catalog))

	var count int64
	require.NoError(t, db.Model(&tierdomain.Tier{}).Count(&count).Error)
	require.Equal(t, int64(2), count)
}
