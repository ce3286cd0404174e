// Package domain defines the downstream feature-gateway contract. Each
// gateway call is at-least-once and independently failable: appliers must be
// idempotent, and the reconciliation engine never rolls one back because a
// later one failed.
package domain

import (
	"context"
	"errors"

	tierdomain "github.com/smallbiznis/entitle/internal/tier/domain"
)

// Applier pushes a tier's entitlement for one feature system. Re-applying
// the same tier is a no-op on the gateway side, not an error.
type Applier interface {
	Name() string
	Apply(ctx context.Context, userUUID string, tier tierdomain.Tier) error
	Revoke(ctx context.Context, userUUID string, tier tierdomain.Tier) error
}

// ObjectStorage is the object-storage gateway. Its entitlement is driven by
// product kind, not by the tier feature record, so it sits outside the tier
// fan-out.
type ObjectStorage interface {
	Suspend(ctx context.Context, customerID string) error
	Reactivate(ctx context.Context, customerID string) error
}

var ErrGatewayRejected = errors.New("gateway_rejected")
