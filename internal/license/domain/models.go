// Package domain contains offline license code models.
package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Code maps an offline/manual license code to a billing product. Redeemed is
// written only after every side effect succeeded, so a crash mid-redemption
// leaves the code re-attemptable instead of silently burned.
type Code struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	Code       string       `gorm:"type:text;not null;uniqueIndex" json:"code"`
	ProductID  string       `gorm:"type:text;not null" json:"product_id"`
	Redeemed   bool         `gorm:"not null;default:false" json:"redeemed"`
	RedeemedBy string       `gorm:"type:text" json:"redeemed_by,omitempty"`
	RedeemedAt *time.Time   `json:"redeemed_at,omitempty"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Code) TableName() string { return "license_codes" }

type Repository interface {
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Code, error)
	Insert(ctx context.Context, db *gorm.DB, code *Code) error
	// MarkRedeemed flips the redemption flag guarded by redeemed = false;
	// it reports false when another run already consumed the code.
	MarkRedeemed(ctx context.Context, db *gorm.DB, id snowflake.ID, redeemedBy string) (bool, error)
}
