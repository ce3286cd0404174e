package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/entitle/internal/config"
	entitlementdomain "github.com/smallbiznis/entitle/internal/entitlement/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// SubscriptionView is the externally visible "current subscription" shape
// cached per customer.
type SubscriptionView struct {
	UserUUID    string                        `json:"user_uuid"`
	CustomerID  string                        `json:"customer_id"`
	TierID      string                        `json:"tier_id"`
	TierLabel   string                        `json:"tier_label"`
	BillingType string                        `json:"billing_type"`
	Entitlement entitlementdomain.Entitlement `json:"entitlement"`
	CachedAt    time.Time                     `json:"cached_at"`
}

// SubscriptionCache is the TTL cache of subscription views. The core only
// owns invalidation; the entries self-heal at TTL expiry.
type SubscriptionCache interface {
	Get(ctx context.Context, customerID string) (*SubscriptionView, error)
	Set(ctx context.Context, customerID string, view SubscriptionView) error
	Invalidate(ctx context.Context, customerID string) error
}

type subscriptionCache struct {
	client *redis.Client
	log    *zap.Logger
	ttl    time.Duration
}

type CacheParams struct {
	fx.In

	Client *redis.Client
	Log    *zap.Logger
	Cfg    config.Config
}

func NewSubscriptionCache(p CacheParams) SubscriptionCache {
	ttl := p.Cfg.EntitlementCacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &subscriptionCache{
		client: p.Client,
		log:    p.Log.Named("cache.subscription"),
		ttl:    ttl,
	}
}

func cacheKey(customerID string) string {
	return "entitle:subscription:" + customerID
}

func (c *subscriptionCache) Get(ctx context.Context, customerID string) (*SubscriptionView, error) {
	raw, err := c.client.Get(ctx, cacheKey(customerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var view SubscriptionView
	if err := json.Unmarshal(raw, &view); err != nil {
		// A corrupt entry behaves like a miss; the next Set repairs it.
		c.log.Warn("dropping corrupt cache entry", zap.String("customer_id", customerID))
		_ = c.client.Del(ctx, cacheKey(customerID)).Err()
		return nil, nil
	}
	return &view, nil
}

func (c *subscriptionCache) Set(ctx context.Context, customerID string, view SubscriptionView) error {
	view.CachedAt = time.Now().UTC()
	raw, err := json.Marshal(view)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(customerID), raw, c.ttl).Err()
}

func (c *subscriptionCache) Invalidate(ctx context.Context, customerID string) error {
	return c.client.Del(ctx, cacheKey(customerID)).Err()
}
