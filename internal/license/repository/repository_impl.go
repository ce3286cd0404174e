package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/entitle/internal/license/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Code, error) {
	var lc domain.Code
	err := db.WithContext(ctx).
		Where("code = ?", code).
		First(&lc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &lc, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, code *domain.Code) error {
	return db.WithContext(ctx).Create(code).Error
}

func (r *repo) MarkRedeemed(ctx context.Context, db *gorm.DB, id snowflake.ID, redeemedBy string) (bool, error) {
	now := time.Now().UTC()
	res := db.WithContext(ctx).Exec(
		`UPDATE license_codes SET redeemed = ?, redeemed_by = ?, redeemed_at = ? WHERE id = ? AND redeemed = ?`,
		true,
		redeemedBy,
		now,
		id,
		false,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
