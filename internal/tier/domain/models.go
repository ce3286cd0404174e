// Package domain contains the tier catalog models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// BillingType describes how a tier is sold.
type BillingType string

const (
	BillingTypeSubscription BillingType = "subscription"
	BillingTypeLifetime     BillingType = "lifetime"
	BillingTypeNone         BillingType = "none"
)

// WorkspaceFeature describes the business/workspace block of the drive service.
type WorkspaceFeature struct {
	Enabled              bool  `json:"enabled"`
	MinimumSeats         int   `json:"minimumSeats"`
	MaximumSeats         int   `json:"maximumSeats"`
	MaxSpaceBytesPerSeat int64 `json:"maxSpaceBytesPerSeat"`
}

// DriveFeature describes storage entitlements.
type DriveFeature struct {
	Enabled       bool             `json:"enabled"`
	MaxSpaceBytes int64            `json:"maxSpaceBytes"`
	Workspaces    WorkspaceFeature `json:"workspaces"`
}

// MailFeature describes mail entitlements.
type MailFeature struct {
	Enabled          bool `json:"enabled"`
	AddressesPerUser int  `json:"addressesPerUser"`
}

// MeetFeature describes meet entitlements.
type MeetFeature struct {
	Enabled    bool `json:"enabled"`
	PaxPerCall int  `json:"paxPerCall"`
}

// VPNFeature describes vpn entitlements.
type VPNFeature struct {
	Enabled   bool   `json:"enabled"`
	FeatureID string `json:"featureId"`
}

// ToggleFeature describes boolean-only entitlements.
type ToggleFeature struct {
	Enabled bool `json:"enabled"`
}

// Features is the fixed per-service feature record of a tier.
type Features struct {
	Drive     DriveFeature  `json:"drive"`
	Mail      MailFeature   `json:"mail"`
	Meet      MeetFeature   `json:"meet"`
	VPN       VPNFeature    `json:"vpn"`
	Antivirus ToggleFeature `json:"antivirus"`
	Backups   ToggleFeature `json:"backups"`
}

// Tier is an immutable catalog entry describing a feature bundle tied to a
// billing product. Changes are modeled as a new Tier plus a new user-tier
// relation, never as an in-place update.
type Tier struct {
	ID          snowflake.ID                 `gorm:"primaryKey" json:"id"`
	ProductID   string                       `gorm:"type:text;not null;uniqueIndex" json:"product_id"`
	BillingType BillingType                  `gorm:"type:text;not null" json:"billing_type"`
	Label       string                       `gorm:"type:text;not null" json:"label"`
	Features    datatypes.JSONType[Features] `gorm:"type:jsonb;not null" json:"features"`
	CreatedAt   time.Time                    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time                    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Tier) TableName() string { return "tiers" }

// FeatureSet returns the decoded feature record.
func (t Tier) FeatureSet() Features { return t.Features.Data() }

// WorkspaceCapable reports whether the tier extends drive entitlements to
// workspace members.
func (t Tier) WorkspaceCapable() bool {
	return t.FeatureSet().Drive.Workspaces.Enabled
}
