// Package seed bootstraps the schema and the baseline tier catalog on
// startup so a fresh deployment can resolve entitlements immediately.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/entitle/internal/config"
	licensedomain "github.com/smallbiznis/entitle/internal/license/domain"
	tierdomain "github.com/smallbiznis/entitle/internal/tier/domain"
	userdomain "github.com/smallbiznis/entitle/internal/user/domain"
	workspacedomain "github.com/smallbiznis/entitle/internal/workspace/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EnsureSchema migrates the persistence models.
func EnsureSchema(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	return db.AutoMigrate(
		&tierdomain.Tier{},
		&userdomain.User{},
		&userdomain.UserTier{},
		&workspacedomain.Member{},
		&licensedomain.Code{},
	)
}

// EnsureCatalog seeds the curated tier catalog from tiers.yml. Rows already
// present keep their stored features; operators update catalog entries
// through migrations, not by re-running the seed. The catalog always carries
// the free tier, and every cancellation path falls back to it, so startup
// fails hard when the catalog cannot be written.
func EnsureCatalog(db *gorm.DB, catalog config.CatalogConfig) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entry := range catalog.Tiers {
			var existing tierdomain.Tier
			err := tx.WithContext(ctx).
				Where("product_id = ?", entry.ProductID).
				First(&existing).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			now := time.Now().UTC()
			tier := tierdomain.Tier{
				ID:          node.Generate(),
				ProductID:   entry.ProductID,
				BillingType: tierdomain.BillingType(entry.BillingType),
				Label:       entry.Label,
				Features:    datatypes.NewJSONType(entry.Features),
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := tx.WithContext(ctx).Create(&tier).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
