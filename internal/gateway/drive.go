package gateway

import (
	"context"

	"github.com/smallbiznis/entitle/internal/config"
	"github.com/smallbiznis/entitle/internal/gateway/domain"
	tierdomain "github.com/smallbiznis/entitle/internal/tier/domain"
)

// DriveApplier sets and revokes storage quotas on the drive gateway.
type DriveApplier struct {
	rpc *httpClient
}

func NewDriveApplier(cfg config.Config) *DriveApplier {
	signer := newTokenSigner(cfg.Gateways.DriveSecret, "drive", cfg.Gateways.TokenTTL)
	return &DriveApplier{rpc: newHTTPClient("drive", cfg.Gateways.DriveURL, signer)}
}

func (a *DriveApplier) Name() string { return "drive" }

type driveEntitlementRequest struct {
	UUID                 string `json:"uuid"`
	TierID               string `json:"tierId"`
	MaxSpaceBytes        int64  `json:"maxSpaceBytes,omitempty"`
	MaxSpaceBytesPerSeat int64  `json:"maxSpaceBytesPerSeat,omitempty"`
	MinimumSeats         int    `json:"minimumSeats,omitempty"`
	MaximumSeats         int    `json:"maximumSeats,omitempty"`
}

func (a *DriveApplier) Apply(ctx context.Context, userUUID string, tier tierdomain.Tier) error {
	drive := tier.FeatureSet().Drive
	req := driveEntitlementRequest{
		UUID:   userUUID,
		TierID: tier.ID.String(),
	}
	if drive.Workspaces.Enabled {
		req.MaxSpaceBytesPerSeat = drive.Workspaces.MaxSpaceBytesPerSeat
		req.MinimumSeats = drive.Workspaces.MinimumSeats
		req.MaximumSeats = drive.Workspaces.MaximumSeats
	} else {
		req.MaxSpaceBytes = drive.MaxSpaceBytes
	}
	return a.rpc.postEntitlement(ctx, req)
}

func (a *DriveApplier) Revoke(ctx context.Context, userUUID string, tier tierdomain.Tier) error {
	_ = tier
	return a.rpc.deleteEntitlement(ctx, userUUID)
}

var _ domain.Applier = (*DriveApplier)(nil)
