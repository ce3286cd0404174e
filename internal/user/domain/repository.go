package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, user *User) error
	FindByUUID(ctx context.Context, db *gorm.DB, uuid string) (*User, error)
	FindByCustomerID(ctx context.Context, db *gorm.DB, customerID string) (*User, error)
	SetLifetime(ctx context.Context, db *gorm.DB, userID snowflake.ID, lifetime bool) error

	FindTier(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*UserTier, error)
	// UpsertTier replaces the user's active tier reference in a single
	// statement; document-level atomicity is what concurrent reconciliation
	// runs rely on.
	UpsertTier(ctx context.Context, db *gorm.DB, rel *UserTier) error
}
