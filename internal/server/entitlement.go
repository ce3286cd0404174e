package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/entitle/internal/cache"
	userdomain "github.com/smallbiznis/entitle/internal/user/domain"
	"go.uber.org/zap"
)

func (s *Server) GetUserEntitlement(c *gin.Context) {
	uuid := strings.TrimSpace(c.Param("uuid"))
	view, source, err := s.subscriptionView(c.Request.Context(), uuid)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.metrics.RecordEntitlementRead(c.Request.Context(), source)
	c.JSON(http.StatusOK, gin.H{"data": view.Entitlement})
}

func (s *Server) GetUserSubscription(c *gin.Context) {
	uuid := strings.TrimSpace(c.Param("uuid"))
	view, source, err := s.subscriptionView(c.Request.Context(), uuid)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.metrics.RecordEntitlementRead(c.Request.Context(), source)
	c.JSON(http.StatusOK, gin.H{"data": view})
}

// subscriptionView serves the cached view when present and falls back to a
// live resolution on a miss. A cache that is down degrades to live reads, it
// never fails the request.
func (s *Server) subscriptionView(ctx context.Context, uuid string) (*cache.SubscriptionView, string, error) {
	if uuid == "" {
		return nil, "", ErrInvalidRequest
	}

	user, err := s.users.FindByUUID(ctx, s.db, uuid)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", userdomain.ErrUserNotFound
	}

	cached, err := s.subCache.Get(ctx, user.CustomerID)
	if err != nil {
		s.log.Warn("subscription cache read failed",
			zap.String("customer_id", user.CustomerID),
			zap.Error(err),
		)
	}
	if cached != nil {
		return cached, "cache", nil
	}

	view, err := s.resolveView(ctx, user)
	if err != nil {
		return nil, "", err
	}

	if err := s.subCache.Set(ctx, user.CustomerID, *view); err != nil {
		s.log.Warn("subscription cache write failed",
			zap.String("customer_id", user.CustomerID),
			zap.Error(err),
		)
	}
	return view, "live", nil
}

func (s *Server) resolveView(ctx context.Context, user *userdomain.User) (*cache.SubscriptionView, error) {
	entitlement, err := s.entitlementSvc.Resolve(ctx, user.UUID)
	if err != nil {
		return nil, err
	}

	view := &cache.SubscriptionView{
		UserUUID:    user.UUID,
		CustomerID:  user.CustomerID,
		Entitlement: entitlement,
	}

	rel, err := s.users.FindTier(ctx, s.db, user.ID)
	if err != nil {
		return nil, err
	}
	if rel != nil {
		tier, err := s.tiers.FindByID(ctx, s.db, rel.TierID)
		if err != nil {
			return nil, err
		}
		if tier != nil {
			view.TierID = tier.ID.String()
			view.TierLabel = tier.Label
			view.BillingType = string(tier.BillingType)
		}
	}
	return view, nil
}
