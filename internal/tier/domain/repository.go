package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, tier *Tier) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Tier, error)
	FindByProductID(ctx context.Context, db *gorm.DB, productID string) (*Tier, error)
	FindFree(ctx context.Context, db *gorm.DB) (*Tier, error)
}
