// Package domain defines the reconciliation engine contract: bringing the
// persisted entitlement state and the downstream gateways into agreement
// after a payment-provider event.
package domain

import (
	"context"
	"errors"

	paymentdomain "github.com/smallbiznis/entitle/internal/payment/domain"
)

// RedeemLicenseRequest applies an offline/manual license code to a user.
type RedeemLicenseRequest struct {
	Code     string
	UserUUID string
}

type Service interface {
	// OnInvoicePaid grants or replaces a user's tier after a paid invoice
	// (recurring renewal or lifetime purchase).
	OnInvoicePaid(ctx context.Context, invoice paymentdomain.Invoice) error
	// OnSubscriptionCanceled downgrades a user when a subscription ends,
	// honoring the lifetime and object-storage guards.
	OnSubscriptionCanceled(ctx context.Context, subscription paymentdomain.Subscription) error
	// RedeemLicense consumes a license code exactly once.
	RedeemLicense(ctx context.Context, req RedeemLicenseRequest) error
}

var (
	// ErrLicenseCodeNotFound is returned for unknown codes.
	ErrLicenseCodeNotFound = errors.New("license_code_not_found")
	// ErrLicenseCodeAlreadyApplied is returned on the second redemption of a
	// code; the side effects of the first one stand.
	ErrLicenseCodeAlreadyApplied = errors.New("license_code_already_applied")
)
