// Package domain contains the user and user-tier persistence models.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// User links an external identity (UUID) to a payment-provider customer.
// Lifetime is a derived cache of "has ever made a lifetime purchase" and is
// kept in sync by the reconciliation engine.
type User struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	UUID       string       `gorm:"type:text;not null;uniqueIndex" json:"uuid"`
	CustomerID string       `gorm:"type:text;not null;uniqueIndex" json:"customer_id"`
	Lifetime   bool         `gorm:"not null;default:false" json:"lifetime"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// UserTier references the single currently active tier of a user. The row is
// replaced, never appended, on every reconciliation.
type UserTier struct {
	UserID    snowflake.ID `gorm:"primaryKey" json:"user_id"`
	TierID    snowflake.ID `gorm:"not null;index" json:"tier_id"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (UserTier) TableName() string { return "user_tiers" }

var (
	// ErrUserNotFound is expected-miss: reconciliation uses it to decide
	// insert-vs-update, and the collector uses it to skip stale owners.
	ErrUserNotFound = errors.New("user_not_found")

	ErrInvalidUser = errors.New("invalid_user")
)
