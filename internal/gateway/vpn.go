package gateway

import (
	"context"

	"github.com/smallbiznis/entitle/internal/config"
	"github.com/smallbiznis/entitle/internal/gateway/domain"
	tierdomain "github.com/smallbiznis/entitle/internal/tier/domain"
)

// VPNApplier enables and disables vpn features on the vpn gateway. A tier
// without vpn translates to a revoke, so downgrades converge without a
// separate code path.
type VPNApplier struct {
	rpc *httpClient
}

func NewVPNApplier(cfg config.Config) *VPNApplier {
	signer := newTokenSigner(cfg.Gateways.VPNSecret, "vpn", cfg.Gateways.TokenTTL)
	return &VPNApplier{rpc: newHTTPClient("vpn", cfg.Gateways.VPNURL, signer)}
}

func (a *VPNApplier) Name() string { return "vpn" }

type vpnEntitlementRequest struct {
	UUID      string `json:"uuid"`
	TierID    string `json:"tierId"`
	FeatureID string `json:"featureId"`
}

func (a *VPNApplier) Apply(ctx context.Context, userUUID string, tier tierdomain.Tier) error {
	vpn := tier.FeatureSet().VPN
	if !vpn.Enabled {
		return a.rpc.deleteEntitlement(ctx, userUUID)
	}
	return a.rpc.postEntitlement(ctx, vpnEntitlementRequest{
		UUID:      userUUID,
		TierID:    tier.ID.String(),
		FeatureID: vpn.FeatureID,
	})
}

func (a *VPNApplier) Revoke(ctx context.Context, userUUID string, tier tierdomain.Tier) error {
	_ = tier
	return a.rpc.deleteEntitlement(ctx, userUUID)
}

var _ domain.Applier = (*VPNApplier)(nil)
