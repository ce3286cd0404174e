package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/smallbiznis/entitle/internal/gateway/domain"
)

// httpClient is the shared RPC plumbing for feature gateways: authenticated
// POST /entitlement and DELETE /entitlement/{uuid}.
type httpClient struct {
	name    string
	baseURL string
	signer  *tokenSigner
	client  *http.Client
}

func newHTTPClient(name, baseURL string, signer *tokenSigner) *httpClient {
	return &httpClient{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		signer:  signer,
		client:  &http.Client{Timeout: 12 * time.Second},
	}
}

func (c *httpClient) postEntitlement(ctx context.Context, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/entitlement", payload)
}

func (c *httpClient) deleteEntitlement(ctx context.Context, uuid string) error {
	return c.do(ctx, http.MethodDelete, "/entitlement/"+url.PathEscape(uuid), nil)
}

func (c *httpClient) do(ctx context.Context, method, path string, payload []byte) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.signer.Sign()
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%w: %s %s status %d", domain.ErrGatewayRejected, c.name, path, resp.StatusCode)
	}
	return nil
}
