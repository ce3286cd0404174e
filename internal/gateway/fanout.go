package gateway

import (
	"context"

	"github.com/smallbiznis/entitle/internal/gateway/domain"
	"github.com/smallbiznis/entitle/internal/observability/metrics"
	tierdomain "github.com/smallbiznis/entitle/internal/tier/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Fanout invokes every feature gateway in sequence. Entitlement application
// is deliberately not atomic across gateways: a failing applier is logged
// with enough context to be manually replayed and the remaining appliers
// still run.
type Fanout struct {
	log      *zap.Logger
	metrics  *metrics.Metrics
	appliers []domain.Applier
}

type FanoutParams struct {
	fx.In

	Log     *zap.Logger
	Metrics *metrics.Metrics
	Drive   *DriveApplier
	VPN     *VPNApplier
}

func NewFanout(p FanoutParams) *Fanout {
	return &Fanout{
		log:      p.Log.Named("gateway.fanout"),
		metrics:  p.Metrics,
		appliers: []domain.Applier{p.Drive, p.VPN},
	}
}

// Apply pushes the tier to every gateway. The returned count is the number
// of appliers that failed; the caller decides whether that degrades the
// reconciliation or not (it never aborts it).
func (f *Fanout) Apply(ctx context.Context, userUUID string, tier tierdomain.Tier) int {
	failed := 0
	for _, applier := range f.appliers {
		if err := applier.Apply(ctx, userUUID, tier); err != nil {
			failed++
			f.metrics.RecordGatewayFailure(ctx, applier.Name(), "apply")
			f.log.Error("gateway apply failed",
				zap.String("gateway", applier.Name()),
				zap.String("user_uuid", userUUID),
				zap.String("tier_id", tier.ID.String()),
				zap.Error(err),
			)
		}
	}
	return failed
}

// Revoke removes the tier's entitlements from every gateway.
func (f *Fanout) Revoke(ctx context.Context, userUUID string, tier tierdomain.Tier) int {
	failed := 0
	for _, applier := range f.appliers {
		if err := applier.Revoke(ctx, userUUID, tier); err != nil {
			failed++
			f.metrics.RecordGatewayFailure(ctx, applier.Name(), "revoke")
			f.log.Error("gateway revoke failed",
				zap.String("gateway", applier.Name()),
				zap.String("user_uuid", userUUID),
				zap.String("tier_id", tier.ID.String()),
				zap.Error(err),
			)
		}
	}
	return failed
}
