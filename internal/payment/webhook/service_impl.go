package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/smallbiznis/entitle/internal/config"
	paymentdomain "github.com/smallbiznis/entitle/internal/payment/domain"
	reconciledomain "github.com/smallbiznis/entitle/internal/reconcile/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const signatureTolerance = 5 * time.Minute

// Service verifies and parses provider webhooks, then hands the normalized
// event to the reconciliation engine. An invalid signature never reaches the
// engine.
type Service struct {
	log       *zap.Logger
	secret    string
	reconcile reconciledomain.Service
}

type Params struct {
	fx.In

	Log       *zap.Logger
	Cfg       config.Config
	Reconcile reconciledomain.Service
}

func New(p Params) *Service {
	return &Service{
		log:       p.Log.Named("payment.webhook"),
		secret:    strings.TrimSpace(p.Cfg.WebhookSecret),
		reconcile: p.Reconcile,
	}
}

type webhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// Ingest processes one webhook delivery.
func (s *Service) Ingest(ctx context.Context, payload []byte, headers http.Header) error {
	if err := s.verify(payload, headers); err != nil {
		return err
	}

	event, err := parse(payload)
	if err != nil {
		if errors.Is(err, paymentdomain.ErrEventIgnored) {
			return nil
		}
		return err
	}

	s.log.Info("payment event received",
		zap.String("event_id", event.ProviderEventID),
		zap.String("event_type", string(event.Type)),
	)

	switch event.Type {
	case paymentdomain.EventTypeInvoicePaid:
		return s.reconcile.OnInvoicePaid(ctx, *event.Invoice)
	case paymentdomain.EventTypeSubscriptionCanceled:
		return s.reconcile.OnSubscriptionCanceled(ctx, *event.Subscription)
	default:
		return nil
	}
}

func (s *Service) verify(payload []byte, headers http.Header) error {
	if s.secret == "" {
		return paymentdomain.ErrInvalidSignature
	}

	sigHeader := strings.TrimSpace(headers.Get("Payment-Signature"))
	if sigHeader == "" {
		return paymentdomain.ErrInvalidSignature
	}

	timestamp, signatures, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return paymentdomain.ErrInvalidSignature
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return paymentdomain.ErrInvalidSignature
	}
	if delta := time.Since(time.Unix(ts, 0)); delta > signatureTolerance || delta < -signatureTolerance {
		return paymentdomain.ErrInvalidSignature
	}

	signedPayload := fmt.Sprintf("%s.%s", timestamp, string(payload))
	mac := hmac.New(sha256.New, []byte(s.secret))
	_, _ = mac.Write([]byte(signedPayload))
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, signature := range signatures {
		if hmac.Equal([]byte(signature), []byte(expected)) {
			return nil
		}
	}

	return paymentdomain.ErrInvalidSignature
}

func parseSignatureHeader(header string) (string, []string, error) {
	var timestamp string
	var signatures []string

	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}

	if timestamp == "" || len(signatures) == 0 {
		return "", nil, paymentdomain.ErrInvalidSignature
	}
	return timestamp, signatures, nil
}

func parse(payload []byte) (*paymentdomain.Event, error) {
	if !json.Valid(payload) {
		return nil, paymentdomain.ErrInvalidPayload
	}

	var event webhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}
	if strings.TrimSpace(event.ID) == "" {
		return nil, paymentdomain.ErrInvalidEvent
	}

	switch strings.TrimSpace(event.Type) {
	case "invoice.paid":
		var invoice paymentdomain.Invoice
		if err := json.Unmarshal(event.Data.Object, &invoice); err != nil {
			return nil, paymentdomain.ErrInvalidPayload
		}
		return &paymentdomain.Event{
			ProviderEventID: event.ID,
			Type:            paymentdomain.EventTypeInvoicePaid,
			Invoice:         &invoice,
			RawPayload:      payload,
		}, nil
	case "customer.subscription.deleted":
		var subscription paymentdomain.Subscription
		if err := json.Unmarshal(event.Data.Object, &subscription); err != nil {
			return nil, paymentdomain.ErrInvalidPayload
		}
		return &paymentdomain.Event{
			ProviderEventID: event.ID,
			Type:            paymentdomain.EventTypeSubscriptionCanceled,
			Subscription:    &subscription,
			RawPayload:      payload,
		}, nil
	default:
		return nil, paymentdomain.ErrEventIgnored
	}
}
