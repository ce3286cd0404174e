package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/entitle/internal/cache"
	"github.com/smallbiznis/entitle/internal/gateway"
	gatewaydomain "github.com/smallbiznis/entitle/internal/gateway/domain"
	licensedomain "github.com/smallbiznis/entitle/internal/license/domain"
	"github.com/smallbiznis/entitle/internal/observability/metrics"
	paymentdomain "github.com/smallbiznis/entitle/internal/payment/domain"
	"github.com/smallbiznis/entitle/internal/reconcile/domain"
	tierdomain "github.com/smallbiznis/entitle/internal/tier/domain"
	userdomain "github.com/smallbiznis/entitle/internal/user/domain"
	workspacedomain "github.com/smallbiznis/entitle/internal/workspace/domain"
	"github.com/smallbiznis/entitle/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	reconcileLockPrefix = "entitle:reconcile:"
	reconcileLockTTL    = 30 * time.Second
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Metrics       *metrics.Metrics
	Tiers         tierdomain.Service
	Users         userdomain.Repository
	Licenses      licensedomain.Repository
	Payment       paymentdomain.Client
	Fanout        *gateway.Fanout
	ObjectStorage gatewaydomain.ObjectStorage
	Workspaces    workspacedomain.Destroyer
	Cache         cache.SubscriptionCache
	Locker        *cache.Locker `optional:"true"`
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	metrics       *metrics.Metrics
	tiers         tierdomain.Service
	users         userdomain.Repository
	licenses      licensedomain.Repository
	payment       paymentdomain.Client
	fanout        *gateway.Fanout
	objectStorage gatewaydomain.ObjectStorage
	workspaces    workspacedomain.Destroyer
	cache         cache.SubscriptionCache
	locker        *cache.Locker
}

func New(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("reconcile.service"),
		genID:         p.GenID,
		metrics:       p.Metrics,
		tiers:         p.Tiers,
		users:         p.Users,
		licenses:      p.Licenses,
		payment:       p.Payment,
		fanout:        p.Fanout,
		objectStorage: p.ObjectStorage,
		workspaces:    p.Workspaces,
		cache:         p.Cache,
		locker:        p.Locker,
	}
}

// OnInvoicePaid validates the invoice and its price metadata before touching
// any state: a structural problem aborts with nothing written, so the
// provider's retry hits a clean slate.
func (s *Service) OnInvoicePaid(ctx context.Context, invoice paymentdomain.Invoice) error {
	if invoice.Status != paymentdomain.InvoiceStatusPaid {
		return paymentdomain.ErrInvoiceNotPaid
	}

	price, err := s.resolvePrice(ctx, invoice.Lines)
	if err != nil {
		return err
	}
	meta, err := paymentdomain.ParsePriceMetadata(price.Metadata)
	if err != nil {
		s.metrics.RecordReconcileEvent(ctx, string(paymentdomain.EventTypeInvoicePaid), "invalid_metadata")
		return err
	}

	customer, err := s.payment.GetCustomer(ctx, invoice.CustomerID)
	if err != nil {
		return err
	}
	if customer.Deleted {
		return paymentdomain.ErrCustomerDeleted
	}
	if strings.TrimSpace(customer.UUID) == "" {
		return paymentdomain.ErrCustomerNotFound
	}

	product, err := s.payment.GetProduct(ctx, price.ProductID)
	if err != nil {
		return err
	}

	unlock := s.tryLockCustomer(ctx, customer.ID)
	defer unlock()

	// Object-storage is its own account on its own gateway; paying for it
	// never touches the drive tier.
	if paymentdomain.ParseProductMetadata(product.Metadata).IsObjectStorage() {
		if err := s.objectStorage.Reactivate(ctx, customer.ID); err != nil {
			s.metrics.RecordGatewayFailure(ctx, "object-storage", "reactivate")
			s.log.Error("object storage reactivate failed",
				zap.String("customer_id", customer.ID),
				zap.Error(err),
			)
		}
		s.invalidate(ctx, customer.ID)
		s.metrics.RecordReconcileEvent(ctx, string(paymentdomain.EventTypeInvoicePaid), "object_storage_reactivated")
		return nil
	}

	tier, err := s.tiers.EnsureForProduct(ctx, tierdomain.EnsureTierRequest{
		ProductID:   product.ID,
		Label:       product.Name,
		BillingType: billingTypeOf(price.Type),
		Features:    featuresFromPrice(meta),
	})
	if err != nil {
		return err
	}

	user, err := s.ensureUser(ctx, customer)
	if err != nil {
		return err
	}

	if err := s.users.UpsertTier(ctx, s.db, &userdomain.UserTier{
		UserID:    user.ID,
		TierID:    tier.ID,
		UpdatedAt: time.Now().UTC(),
	}); err != nil {
		return err
	}

	// Only a non-business lifetime purchase may set the flag; nothing a
	// business plan does (including paying) ever clears or sets it.
	if price.Type == paymentdomain.PriceTypeOneTime && !meta.IsBusiness() && !user.Lifetime {
		if err := s.users.SetLifetime(ctx, s.db, user.ID, true); err != nil {
			return err
		}
	}

	s.fanout.Apply(ctx, user.UUID, tier)
	s.invalidate(ctx, customer.ID)

	s.metrics.RecordReconcileEvent(ctx, string(paymentdomain.EventTypeInvoicePaid), "applied")
	s.log.Info("invoice reconciled",
		zap.String("invoice_id", invoice.ID),
		zap.String("customer_id", customer.ID),
		zap.String("tier_id", tier.ID.String()),
		zap.String("billing_type", string(tier.BillingType)),
	)
	return nil
}

// OnSubscriptionCanceled walks the cancellation guards in a fixed order:
// object-storage products only suspend their own account, business plans
// tear down the workspace, lifetime owners keep their tier, and everyone
// else falls back to the free tier.
func (s *Service) OnSubscriptionCanceled(ctx context.Context, subscription paymentdomain.Subscription) error {
	product, err := s.payment.GetProduct(ctx, subscription.ProductID)
	if err != nil {
		return err
	}
	productMeta := paymentdomain.ParseProductMetadata(product.Metadata)

	unlock := s.tryLockCustomer(ctx, subscription.CustomerID)
	defer unlock()

	if productMeta.IsObjectStorage() {
		// The drive tier is untouched: object-storage is its own account.
		if err := s.objectStorage.Suspend(ctx, subscription.CustomerID); err != nil {
			s.metrics.RecordGatewayFailure(ctx, "object-storage", "suspend")
			s.log.Error("object storage suspend failed",
				zap.String("customer_id", subscription.CustomerID),
				zap.Error(err),
			)
		}
		s.invalidate(ctx, subscription.CustomerID)
		s.metrics.RecordReconcileEvent(ctx, string(paymentdomain.EventTypeSubscriptionCanceled), "object_storage_suspended")
		return nil
	}

	user, err := s.users.FindByCustomerID(ctx, s.db, subscription.CustomerID)
	if err != nil {
		return err
	}
	if user == nil {
		return userdomain.ErrUserNotFound
	}

	if productMeta.IsBusiness() {
		if err := s.workspaces.Destroy(ctx, user.UUID); err != nil {
			s.log.Error("workspace destroy failed",
				zap.String("owner_uuid", user.UUID),
				zap.Error(err),
			)
		}
		s.invalidate(ctx, subscription.CustomerID)
		s.metrics.RecordReconcileEvent(ctx, string(paymentdomain.EventTypeSubscriptionCanceled), "workspace_destroyed")
		return nil
	}

	if user.Lifetime {
		s.metrics.RecordReconcileEvent(ctx, string(paymentdomain.EventTypeSubscriptionCanceled), "lifetime_kept")
		s.log.Info("cancellation ignored for lifetime user",
			zap.String("user_uuid", user.UUID),
		)
		return nil
	}

	free, err := s.tiers.GetFree(ctx)
	if err != nil {
		// A missing free tier is a catalog misconfiguration, not a miss.
		return err
	}
	if err := s.users.UpsertTier(ctx, s.db, &userdomain.UserTier{
		UserID:    user.ID,
		TierID:    free.ID,
		UpdatedAt: time.Now().UTC(),
	}); err != nil {
		return err
	}

	s.fanout.Apply(ctx, user.UUID, free)
	s.invalidate(ctx, subscription.CustomerID)

	s.metrics.RecordReconcileEvent(ctx, string(paymentdomain.EventTypeSubscriptionCanceled), "downgraded")
	s.log.Info("subscription canceled, user downgraded",
		zap.String("user_uuid", user.UUID),
		zap.String("tier_id", free.ID.String()),
	)
	return nil
}

// RedeemLicense checks the redemption flag before any side effect and writes
// it after all of them, so a crash mid-way leaves the code retryable rather
// than consumed with nothing granted.
func (s *Service) RedeemLicense(ctx context.Context, req domain.RedeemLicenseRequest) error {
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return domain.ErrLicenseCodeNotFound
	}

	lc, err := s.licenses.FindByCode(ctx, s.db, code)
	if err != nil {
		return err
	}
	if lc == nil {
		return domain.ErrLicenseCodeNotFound
	}
	if lc.Redeemed {
		return domain.ErrLicenseCodeAlreadyApplied
	}

	user, err := s.users.FindByUUID(ctx, s.db, strings.TrimSpace(req.UserUUID))
	if err != nil {
		return err
	}
	if user == nil {
		return userdomain.ErrUserNotFound
	}

	tier, err := s.tiers.GetByProductID(ctx, lc.ProductID)
	if err != nil {
		return err
	}

	if err := s.users.UpsertTier(ctx, s.db, &userdomain.UserTier{
		UserID:    user.ID,
		TierID:    tier.ID,
		UpdatedAt: time.Now().UTC(),
	}); err != nil {
		return err
	}
	if tier.BillingType == tierdomain.BillingTypeLifetime && !tier.WorkspaceCapable() && !user.Lifetime {
		if err := s.users.SetLifetime(ctx, s.db, user.ID, true); err != nil {
			return err
		}
	}

	s.fanout.Apply(ctx, user.UUID, tier)
	s.invalidate(ctx, user.CustomerID)

	redeemed, err := s.licenses.MarkRedeemed(ctx, s.db, lc.ID, user.UUID)
	if err != nil {
		return err
	}
	if !redeemed {
		// A concurrent redemption won the flag; its side effects stand.
		return domain.ErrLicenseCodeAlreadyApplied
	}

	s.metrics.RecordReconcileEvent(ctx, "license.redeemed", "applied")
	s.log.Info("license code redeemed",
		zap.String("user_uuid", user.UUID),
		zap.String("tier_id", tier.ID.String()),
	)
	return nil
}

func (s *Service) ensureUser(ctx context.Context, customer paymentdomain.Customer) (*userdomain.User, error) {
	user, err := s.users.FindByCustomerID(ctx, s.db, customer.ID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	now := time.Now().UTC()
	created := &userdomain.User{
		ID:         s.genID.Generate(),
		UUID:       customer.UUID,
		CustomerID: customer.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.users.Insert(ctx, s.db, created); err != nil {
		// Another reconciliation run may have registered the customer first.
		if db.IsDuplicateKeyErr(err) {
			again, findErr := s.users.FindByCustomerID(ctx, s.db, customer.ID)
			if findErr == nil && again != nil {
				return again, nil
			}
		}
		return nil, err
	}
	return created, nil
}

// invalidate drops the customer's cached subscription view. Failures are
// logged and swallowed: the entry expires at TTL anyway.
func (s *Service) invalidate(ctx context.Context, customerID string) {
	if err := s.cache.Invalidate(ctx, customerID); err != nil {
		s.metrics.RecordCacheInvalidation(ctx, "error")
		s.log.Warn("cache invalidation failed",
			zap.String("customer_id", customerID),
			zap.Error(err),
		)
		return
	}
	s.metrics.RecordCacheInvalidation(ctx, "ok")
}

// tryLockCustomer serializes reconciliation per customer on a best-effort
// basis. Not holding the lock never blocks the run: the user-tier upsert and
// gateway idempotency keep concurrent runs safe, the lock just reduces
// duplicate gateway traffic.
func (s *Service) tryLockCustomer(ctx context.Context, customerID string) func() {
	if s.locker == nil || customerID == "" {
		return func() {}
	}
	key := reconcileLockPrefix + customerID
	token, ok, err := s.locker.TryLock(ctx, key, reconcileLockTTL)
	if err != nil || !ok {
		if err != nil {
			s.log.Debug("reconcile lock unavailable", zap.String("customer_id", customerID), zap.Error(err))
		}
		return func() {}
	}
	return func() {
		if err := s.locker.Release(ctx, key, token); err != nil {
			s.log.Debug("reconcile lock release failed", zap.String("customer_id", customerID), zap.Error(err))
		}
	}
}

// resolvePrice returns the first usable price on the invoice. Providers may
// collapse a line's price to its ID instead of expanding it; those are
// fetched back from the provider before reconciliation proceeds.
func (s *Service) resolvePrice(ctx context.Context, lines []paymentdomain.InvoiceLine) (*paymentdomain.Price, error) {
	for _, line := range lines {
		if line.Price != nil {
			return line.Price, nil
		}
		if line.PriceID == "" {
			continue
		}
		price, err := s.payment.GetPrice(ctx, line.PriceID)
		if err != nil {
			return nil, err
		}
		return &price, nil
	}
	return nil, paymentdomain.ErrMissingPrice
}

func billingTypeOf(priceType paymentdomain.PriceType) tierdomain.BillingType {
	if priceType == paymentdomain.PriceTypeOneTime {
		return tierdomain.BillingTypeLifetime
	}
	return tierdomain.BillingTypeSubscription
}

// featuresFromPrice derives the feature record of a tier auto-created on
// first sight of a product. The price metadata only describes storage, so
// the remaining services come up disabled until the catalog entry is curated.
func featuresFromPrice(meta paymentdomain.PriceMetadata) tierdomain.Features {
	features := tierdomain.Features{
		Drive: tierdomain.DriveFeature{
			Enabled:       true,
			MaxSpaceBytes: meta.MaxSpaceBytes,
		},
	}
	if meta.IsBusiness() {
		features.Drive.Workspaces = tierdomain.WorkspaceFeature{
			Enabled:              true,
			MaxSpaceBytesPerSeat: meta.MaxSpaceBytes,
		}
	}
	return features
}
