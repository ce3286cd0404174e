package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/entitle/internal/entitlement/domain"
	tierdomain "github.com/smallbiznis/entitle/internal/tier/domain"
	userdomain "github.com/smallbiznis/entitle/internal/user/domain"
	workspacedomain "github.com/smallbiznis/entitle/internal/workspace/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	UserRepo      userdomain.Repository
	TierRepo      tierdomain.Repository
	WorkspaceRepo workspacedomain.Repository
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	userRepo      userdomain.Repository
	tierRepo      tierdomain.Repository
	workspaceRepo workspacedomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("entitlement.service"),
		userRepo:      p.UserRepo,
		tierRepo:      p.TierRepo,
		workspaceRepo: p.WorkspaceRepo,
	}
}

func (s *Service) CollectTiers(ctx context.Context, userUUID string, ownerUUIDs []string) ([]tierdomain.Tier, error) {
	userUUID = strings.TrimSpace(userUUID)
	if userUUID == "" {
		return nil, domain.ErrInvalidUUID
	}

	seen := make(map[snowflake.ID]struct{})
	var tiers []tierdomain.Tier

	own, err := s.tiersOf(ctx, userUUID)
	if err != nil {
		return nil, err
	}
	for _, t := range own {
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		tiers = append(tiers, t)
	}

	for _, ownerUUID := range ownerUUIDs {
		ownerTiers, err := s.tiersOf(ctx, ownerUUID)
		if err != nil {
			// A stale membership row must not fail the whole collection.
			if errors.Is(err, userdomain.ErrUserNotFound) {
				s.log.Debug("skipping unresolvable workspace owner", zap.String("owner_uuid", ownerUUID))
				continue
			}
			return nil, err
		}
		for _, t := range ownerTiers {
			// A member inherits only workspace-capable tiers: an owner's
			// individual benefits never leak into the workspace.
			if !t.WorkspaceCapable() {
				continue
			}
			if _, ok := seen[t.ID]; ok {
				continue
			}
			seen[t.ID] = struct{}{}
			tiers = append(tiers, t)
		}
	}

	if len(tiers) == 0 {
		return nil, tierdomain.ErrTierNotFound
	}
	return tiers, nil
}

func (s *Service) Resolve(ctx context.Context, userUUID string) (domain.Entitlement, error) {
	owners, err := s.workspaceRepo.ListOwnersByMember(ctx, s.db, userUUID)
	if err != nil {
		return domain.Entitlement{}, err
	}

	tiers, err := s.CollectTiers(ctx, userUUID, owners)
	if err != nil {
		return domain.Entitlement{}, err
	}
	return Merge(tiers)
}

// tiersOf resolves a user's currently assigned tiers by uuid. A user without
// a user-tier relation contributes nothing; a missing user is reported as
// ErrUserNotFound so the caller can decide whether the miss is fatal.
func (s *Service) tiersOf(ctx context.Context, uuid string) ([]tierdomain.Tier, error) {
	user, err := s.userRepo.FindByUUID(ctx, s.db, uuid)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, userdomain.ErrUserNotFound
	}

	rel, err := s.userRepo.FindTier(ctx, s.db, user.ID)
	if err != nil {
		return nil, err
	}
	if rel == nil {
		return nil, nil
	}

	tier, err := s.tierRepo.FindByID(ctx, s.db, rel.TierID)
	if err != nil {
		return nil, err
	}
	if tier == nil {
		return nil, nil
	}
	return []tierdomain.Tier{*tier}, nil
}
