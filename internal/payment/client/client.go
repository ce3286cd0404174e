package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/smallbiznis/entitle/internal/payment/domain"
)

type providerErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Client resolves provider objects over the provider's REST API.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// New builds the provider API client from environment configuration.
func New() domain.Client {
	baseURL := strings.TrimRight(os.Getenv("PAYMENT_PROVIDER_API_URL"), "/")
	if baseURL == "" {
		baseURL = "https://api.payments.local"
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  strings.TrimSpace(os.Getenv("PAYMENT_PROVIDER_API_KEY")),
		client:  &http.Client{Timeout: 12 * time.Second},
	}
}

func (c *Client) GetCustomer(ctx context.Context, customerID string) (domain.Customer, error) {
	var customer domain.Customer
	if err := c.get(ctx, "/v1/customers/"+strings.TrimSpace(customerID), &customer, domain.ErrCustomerNotFound); err != nil {
		return domain.Customer{}, err
	}
	return customer, nil
}

func (c *Client) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	var product domain.Product
	if err := c.get(ctx, "/v1/products/"+strings.TrimSpace(productID), &product, domain.ErrProductNotFound); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

func (c *Client) GetPrice(ctx context.Context, priceID string) (domain.Price, error) {
	var price domain.Price
	if err := c.get(ctx, "/v1/prices/"+strings.TrimSpace(priceID), &price, domain.ErrMissingPrice); err != nil {
		return domain.Price{}, err
	}
	return price, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}, notFound error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return notFound
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var payload providerErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&payload); decodeErr == nil && payload.Error.Message != "" {
			return fmt.Errorf("provider request failed: %s", payload.Error.Message)
		}
		return fmt.Errorf("provider request failed: status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
