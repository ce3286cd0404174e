// Package domain contains the merged entitlement view. An Entitlement is
// ephemeral: it is recomputed on every read and never persisted.
package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	tierdomain "github.com/smallbiznis/entitle/internal/tier/domain"
)

// DriveGrant is the resolved storage entitlement. Drive is always resolved
// from exactly one tier; a mixed grant is not representable by the drive
// gateway.
type DriveGrant struct {
	Enabled              bool         `json:"enabled"`
	Workspace            bool         `json:"workspace"`
	MaxSpaceBytes        int64        `json:"maxSpaceBytes,omitempty"`
	MaxSpaceBytesPerSeat int64        `json:"maxSpaceBytesPerSeat,omitempty"`
	MinimumSeats         int          `json:"minimumSeats,omitempty"`
	MaximumSeats         int          `json:"maximumSeats,omitempty"`
	SourceTierID         snowflake.ID `json:"source_tier_id"`
}

// MailGrant is the resolved mail entitlement.
type MailGrant struct {
	Enabled          bool         `json:"enabled"`
	AddressesPerUser int          `json:"addressesPerUser,omitempty"`
	SourceTierID     snowflake.ID `json:"source_tier_id,omitempty"`
}

// MeetGrant is the resolved meet entitlement.
type MeetGrant struct {
	Enabled      bool         `json:"enabled"`
	PaxPerCall   int          `json:"paxPerCall,omitempty"`
	SourceTierID snowflake.ID `json:"source_tier_id,omitempty"`
}

// VPNGrant is the resolved vpn entitlement.
type VPNGrant struct {
	Enabled      bool         `json:"enabled"`
	FeatureID    string       `json:"featureId,omitempty"`
	SourceTierID snowflake.ID `json:"source_tier_id,omitempty"`
}

// ToggleGrant is the resolved form of a boolean-only service.
type ToggleGrant struct {
	Enabled      bool         `json:"enabled"`
	SourceTierID snowflake.ID `json:"source_tier_id,omitempty"`
}

// Entitlement is the effective feature set of a user once every applicable
// tier has been merged.
type Entitlement struct {
	Drive     DriveGrant  `json:"drive"`
	Mail      MailGrant   `json:"mail"`
	Meet      MeetGrant   `json:"meet"`
	VPN       VPNGrant    `json:"vpn"`
	Antivirus ToggleGrant `json:"antivirus"`
	Backups   ToggleGrant `json:"backups"`
}

type Service interface {
	// CollectTiers gathers the tiers applicable to a user: their own tier
	// plus workspace-capable tiers inherited from the given owners.
	CollectTiers(ctx context.Context, userUUID string, ownerUUIDs []string) ([]tierdomain.Tier, error)
	// Resolve computes the user's effective entitlement from workspace
	// memberships and the merge rules.
	Resolve(ctx context.Context, userUUID string) (Entitlement, error)
}

var ErrInvalidUUID = errors.New("invalid_uuid")
