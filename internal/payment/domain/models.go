// Package domain contains the payment-provider object model the core reads.
// Payment semantics (charging, tax, 3DS) stay with the provider; the core
// only consumes status fields and metadata.
package domain

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// EventType is the normalized inbound event kind.
type EventType string

const (
	EventTypeInvoicePaid          EventType = "invoice.paid"
	EventTypeSubscriptionCanceled EventType = "subscription.canceled"
)

// Event is the canonical payment event parsed from a webhook payload.
type Event struct {
	ProviderEventID string
	Type            EventType
	Invoice         *Invoice
	Subscription    *Subscription
	RawPayload      []byte
}

// InvoiceStatus mirrors the provider's invoice lifecycle field.
type InvoiceStatus string

const InvoiceStatusPaid InvoiceStatus = "paid"

// Invoice is the provider invoice with its expanded line items.
type Invoice struct {
	ID         string        `json:"id"`
	CustomerID string        `json:"customer"`
	Status     InvoiceStatus `json:"status"`
	Lines      []InvoiceLine `json:"lines"`
}

// InvoiceLine carries the price of one invoice line. Providers deliver the
// price either expanded as an object or collapsed to its ID; both forms are
// accepted, and callers resolve PriceID through the client when Price is nil.
type InvoiceLine struct {
	ID      string
	PriceID string
	Price   *Price
}

func (l *InvoiceLine) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID    string          `json:"id"`
		Price json.RawMessage `json:"price"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	l.ID = raw.ID
	l.PriceID = ""
	l.Price = nil

	if len(raw.Price) == 0 || string(raw.Price) == "null" {
		return nil
	}
	if raw.Price[0] == '"' {
		return json.Unmarshal(raw.Price, &l.PriceID)
	}

	var price Price
	if err := json.Unmarshal(raw.Price, &price); err != nil {
		return err
	}
	l.Price = &price
	l.PriceID = price.ID
	return nil
}

// PriceType mirrors the provider's billing scheme for a price.
type PriceType string

const (
	PriceTypeRecurring PriceType = "recurring"
	PriceTypeOneTime   PriceType = "one_time"
)

// Price is a provider price with its raw metadata bag.
type Price struct {
	ID        string            `json:"id"`
	ProductID string            `json:"product"`
	Type      PriceType         `json:"type"`
	Metadata  map[string]string `json:"metadata"`
}

// Subscription is the provider subscription the core reads on cancellation.
type Subscription struct {
	ID         string            `json:"id"`
	CustomerID string            `json:"customer"`
	ProductID  string            `json:"product"`
	Metadata   map[string]string `json:"metadata"`
}

// Product is a provider product with its raw metadata bag.
type Product struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Metadata map[string]string `json:"metadata"`
}

// Customer is the provider customer record.
type Customer struct {
	ID      string `json:"id"`
	UUID    string `json:"uuid"`
	Email   string `json:"email"`
	Deleted bool   `json:"deleted"`
}

const (
	planTypeBusiness      = "business"
	productTypeObjStorage = "object-storage"
)

// PriceMetadata is the validated form of a price's metadata bag. Required
// keys are checked at the boundary so nothing downstream sees a zero value
// that actually means "the provider payload was malformed".
type PriceMetadata struct {
	MaxSpaceBytes int64
	PlanType      string
}

// ParsePriceMetadata validates the raw metadata bag of a price.
func ParsePriceMetadata(raw map[string]string) (PriceMetadata, error) {
	value := strings.TrimSpace(raw["maxSpaceBytes"])
	if value == "" {
		return PriceMetadata{}, ErrInvalidMetadata
	}
	maxSpaceBytes, err := strconv.ParseInt(value, 10, 64)
	if err != nil || maxSpaceBytes < 0 {
		return PriceMetadata{}, ErrInvalidMetadata
	}
	return PriceMetadata{
		MaxSpaceBytes: maxSpaceBytes,
		PlanType:      strings.TrimSpace(raw["planType"]),
	}, nil
}

// IsBusiness reports whether the price sells a workspace-capable plan.
func (m PriceMetadata) IsBusiness() bool {
	return strings.EqualFold(m.PlanType, planTypeBusiness)
}

// ProductMetadata is the validated form of a product's metadata bag.
type ProductMetadata struct {
	Type string
}

// ParseProductMetadata validates the raw metadata bag of a product.
func ParseProductMetadata(raw map[string]string) ProductMetadata {
	return ProductMetadata{Type: strings.TrimSpace(raw["type"])}
}

// IsObjectStorage reports whether the product is the object-storage kind.
func (m ProductMetadata) IsObjectStorage() bool {
	return strings.EqualFold(m.Type, productTypeObjStorage)
}

// IsBusiness reports whether the product sells workspace seats.
func (m ProductMetadata) IsBusiness() bool {
	return strings.EqualFold(m.Type, planTypeBusiness)
}

var (
	// Structural errors: the provider payload is malformed or inconsistent.
	// They are surfaced to the caller so the provider retries delivery.
	ErrInvalidPayload   = errors.New("invalid_payload")
	ErrInvalidEvent     = errors.New("invalid_event")
	ErrInvalidSignature = errors.New("invalid_signature")
	ErrInvalidMetadata  = errors.New("invalid_price_metadata")
	ErrInvoiceNotPaid   = errors.New("invoice_not_paid")
	ErrMissingPrice     = errors.New("missing_price")
	ErrCustomerDeleted  = errors.New("customer_deleted")
	ErrCustomerNotFound = errors.New("customer_not_found")
	ErrProductNotFound  = errors.New("product_not_found")

	// ErrEventIgnored marks event kinds the core does not consume.
	ErrEventIgnored = errors.New("event_ignored")
)
