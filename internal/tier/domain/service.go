package domain

import (
	"context"
	"errors"
)

// EnsureTierRequest describes the tier a paid product should map to.
type EnsureTierRequest struct {
	ProductID   string
	Label       string
	BillingType BillingType
	Features    Features
}

type Service interface {
	// GetByProductID resolves the catalog entry for a billing product.
	GetByProductID(ctx context.Context, productID string) (Tier, error)
	// GetFree resolves the catalog's designated free tier.
	GetFree(ctx context.Context) (Tier, error)
	// EnsureForProduct resolves the tier for a product, creating the catalog
	// entry on first sight of the product.
	EnsureForProduct(ctx context.Context, req EnsureTierRequest) (Tier, error)
}

var (
	// ErrTierNotFound is an expected-miss error: callers use it to decide
	// fallbacks, and it is only a real failure when it is the final outcome.
	ErrTierNotFound = errors.New("tier_not_found")

	ErrInvalidProduct = errors.New("invalid_product")
)
