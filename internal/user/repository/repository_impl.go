package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/entitle/internal/user/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, user *domain.User) error {
	return db.WithContext(ctx).Create(user).Error
}

func (r *repo) FindByUUID(ctx context.Context, db *gorm.DB, uuid string) (*domain.User, error) {
	var user domain.User
	err := db.WithContext(ctx).
		Where("uuid = ?", uuid).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *repo) FindByCustomerID(ctx context.Context, db *gorm.DB, customerID string) (*domain.User, error) {
	var user domain.User
	err := db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *repo) SetLifetime(ctx context.Context, db *gorm.DB, userID snowflake.ID, lifetime bool) error {
	return db.WithContext(ctx).Exec(
		`UPDATE users SET lifetime = ?, updated_at = ? WHERE id = ?`,
		lifetime,
		time.Now().UTC(),
		userID,
	).Error
}

func (r *repo) FindTier(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*domain.UserTier, error) {
	var rel domain.UserTier
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&rel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rel, nil
}

func (r *repo) UpsertTier(ctx context.Context, db *gorm.DB, rel *domain.UserTier) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"tier_id", "updated_at"}),
		}).
		Create(rel).Error
}
