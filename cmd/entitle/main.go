package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/entitle/internal/cache"
	"github.com/smallbiznis/entitle/internal/config"
	"github.com/smallbiznis/entitle/internal/entitlement"
	"github.com/smallbiznis/entitle/internal/gateway"
	"github.com/smallbiznis/entitle/internal/license"
	"github.com/smallbiznis/entitle/internal/observability"
	"github.com/smallbiznis/entitle/internal/payment"
	"github.com/smallbiznis/entitle/internal/reconcile"
	"github.com/smallbiznis/entitle/internal/seed"
	"github.com/smallbiznis/entitle/internal/server"
	"github.com/smallbiznis/entitle/internal/tier"
	"github.com/smallbiznis/entitle/internal/user"
	"github.com/smallbiznis/entitle/internal/workspace"
	"github.com/smallbiznis/entitle/pkg/db"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		cache.Module,

		tier.Module,
		user.Module,
		workspace.Module,
		license.Module,
		entitlement.Module,
		gateway.Module,
		payment.Module,
		reconcile.Module,

		fx.Invoke(func(database *gorm.DB, catalog config.CatalogConfig) error {
			if err := seed.EnsureSchema(database); err != nil {
				return err
			}
			return seed.EnsureCatalog(database, catalog)
		}),

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
