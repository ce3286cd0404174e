package domain

import "context"

// Client is the slice of the payment-provider API the core needs. The
// provider owns payment semantics; the core only resolves objects referenced
// by webhook payloads.
type Client interface {
	GetCustomer(ctx context.Context, customerID string) (Customer, error)
	GetProduct(ctx context.Context, productID string) (Product, error)
	GetPrice(ctx context.Context, priceID string) (Price, error)
}
