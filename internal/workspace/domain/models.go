// Package domain contains workspace membership models and the delegated
// workspace operations the reconciliation engine needs.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Member records that a user belongs to the workspace owned by OwnerUUID.
// Membership rows are written by the workspace product out-of-band; this
// service only reads them to resolve inherited tiers.
type Member struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	OwnerUUID  string       `gorm:"type:text;not null;index" json:"owner_uuid"`
	MemberUUID string       `gorm:"type:text;not null;index" json:"member_uuid"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Member) TableName() string { return "workspace_members" }

type Repository interface {
	// ListOwnersByMember returns the owner UUIDs of every workspace the user
	// belongs to as a member (the user's own workspaces excluded).
	ListOwnersByMember(ctx context.Context, db *gorm.DB, memberUUID string) ([]string, error)
	Insert(ctx context.Context, db *gorm.DB, member *Member) error
}

// Destroyer tears down a workspace when its owner's business subscription is
// canceled. The call is delegated to the workspace product.
type Destroyer interface {
	Destroy(ctx context.Context, ownerUUID string) error
}

var ErrDestroyFailed = errors.New("workspace_destroy_failed")
