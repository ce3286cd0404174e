package gateway

import (
	"context"
	"net/url"

	"github.com/smallbiznis/entitle/internal/config"
	"github.com/smallbiznis/entitle/internal/gateway/domain"
)

// ObjectStorageClient suspends and reactivates object-storage accounts. The
// account lives on the gateway keyed by the payment-provider customer id.
type ObjectStorageClient struct {
	rpc *httpClient
}

func NewObjectStorageClient(cfg config.Config) domain.ObjectStorage {
	signer := newTokenSigner(cfg.Gateways.ObjectStorageSecret, "object-storage", cfg.Gateways.TokenTTL)
	return &ObjectStorageClient{rpc: newHTTPClient("object-storage", cfg.Gateways.ObjectStorageURL, signer)}
}

func (c *ObjectStorageClient) Suspend(ctx context.Context, customerID string) error {
	return c.rpc.do(ctx, "POST", "/accounts/"+url.PathEscape(customerID)+"/suspend", nil)
}

func (c *ObjectStorageClient) Reactivate(ctx context.Context, customerID string) error {
	return c.rpc.do(ctx, "POST", "/accounts/"+url.PathEscape(customerID)+"/reactivate", nil)
}
