package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/entitle/internal/tier/domain"
	"github.com/smallbiznis/entitle/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("tier.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) GetByProductID(ctx context.Context, productID string) (domain.Tier, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.Tier{}, domain.ErrInvalidProduct
	}

	tier, err := s.repo.FindByProductID(ctx, s.db, productID)
	if err != nil {
		return domain.Tier{}, err
	}
	if tier == nil {
		return domain.Tier{}, domain.ErrTierNotFound
	}
	return *tier, nil
}

func (s *Service) GetFree(ctx context.Context) (domain.Tier, error) {
	tier, err := s.repo.FindFree(ctx, s.db)
	if err != nil {
		return domain.Tier{}, err
	}
	if tier == nil {
		return domain.Tier{}, domain.ErrTierNotFound
	}
	return *tier, nil
}

func (s *Service) EnsureForProduct(ctx context.Context, req domain.EnsureTierRequest) (domain.Tier, error) {
	productID := strings.TrimSpace(req.ProductID)
	if productID == "" {
		return domain.Tier{}, domain.ErrInvalidProduct
	}

	existing, err := s.repo.FindByProductID(ctx, s.db, productID)
	if err != nil {
		return domain.Tier{}, err
	}
	if existing != nil {
		return *existing, nil
	}

	now := time.Now().UTC()
	tier := domain.Tier{
		ID:          s.genID.Generate(),
		ProductID:   productID,
		BillingType: req.BillingType,
		Label:       strings.TrimSpace(req.Label),
		Features:    datatypes.NewJSONType(req.Features),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, s.db, &tier); err != nil {
		// Another reconciliation run may have seeded the same product first.
		if db.IsDuplicateKeyErr(err) {
			again, findErr := s.repo.FindByProductID(ctx, s.db, productID)
			if findErr == nil && again != nil {
				return *again, nil
			}
		}
		return domain.Tier{}, err
	}

	s.log.Info("tier created for product",
		zap.String("product_id", productID),
		zap.String("billing_type", string(req.BillingType)),
	)
	return tier, nil
}
