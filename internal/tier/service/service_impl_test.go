package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	tierdomain "github.com/smallbiznis/entitle/internal/tier/domain"
	tierrepo "github.com/smallbiznis/entitle/internal/tier/repository"
	tierservice "github.com/smallbiznis/entitle/internal/tier/service"
	"github.com/smallbiznis/entitle/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (tierdomain.Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tierdomain.Tier{}))

	node, err := snowflake.NewNode(4)
	require.NoError(t, err)

	svc := tierservice.New(tierservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  tierrepo.Provide(),
	})
	return svc, db
}

func TestEnsureForProductCreatesOnce(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	req := tierdomain.EnsureTierRequest{
		ProductID:   "prod_pro",
		Label:       "Pro",
		BillingType: tierdomain.BillingTypeSubscription,
		Features: tierdomain.Features{
			Drive: tierdomain.DriveFeature{Enabled: true, MaxSpaceBytes: 200 << 30},
		},
	}

	first, err := svc.EnsureForProduct(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "prod_pro", first.ProductID)

	second, err := svc.EnsureForProduct(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&tierdomain.Tier{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestProductIDUniquenessTripsDuplicateKey(t *testing.T) {
	_, database := setupService(t)

	node, err := snowflake.NewNode(6)
	require.NoError(t, err)

	now := time.Now().UTC()
	newTier := func() *tierdomain.Tier {
		return &tierdomain.Tier{
			ID:          node.Generate(),
			ProductID:   "prod_pro",
			BillingType: tierdomain.BillingTypeSubscription,
			Label:       "Pro",
			Features:    datatypes.NewJSONType(tierdomain.Features{}),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}

	require.NoError(t, database.Create(newTier()).Error)

	err = database.Create(newTier()).Error
	require.Error(t, err)
	assert.True(t, db.IsDuplicateKeyErr(err))
}

func TestEnsureForProductRejectsEmptyProduct(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.EnsureForProduct(context.Background(), tierdomain.EnsureTierRequest{})
	assert.ErrorIs(t, err, tierdomain.ErrInvalidProduct)
}

func TestGetByProductIDMiss(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.GetByProductID(context.Background(), "prod_unknown")
	assert.ErrorIs(t, err, tierdomain.ErrTierNotFound)
}

func TestGetFreePicksBillingTypeNone(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	node, err := snowflake.NewNode(5)
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, db.Create(&tierdomain.Tier{
		ID:          node.Generate(),
		ProductID:   "prod_paid",
		BillingType: tierdomain.BillingTypeSubscription,
		Label:       "Paid",
		Features:    datatypes.NewJSONType(tierdomain.Features{}),
		CreatedAt:   now,
		UpdatedAt:   now,
	}).Error)
	require.NoError(t, db.Create(&tierdomain.Tier{
		ID:          node.Generate(),
		ProductID:   "free",
		BillingType: tierdomain.BillingTypeNone,
		Label:       "Free",
		Features:    datatypes.NewJSONType(tierdomain.Features{}),
		CreatedAt:   now.Add(time.Second),
		UpdatedAt:   now.Add(time.Second),
	}).Error)

	free, err := svc.GetFree(ctx)
	require.NoError(t, err)
	assert.Equal(t, "free", free.ProductID)
}
