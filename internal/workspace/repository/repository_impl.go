package repository

import (
	"context"

	"github.com/smallbiznis/entitle/internal/workspace/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) ListOwnersByMember(ctx context.Context, db *gorm.DB, memberUUID string) ([]string, error) {
	var owners []string
	err := db.WithContext(ctx).Raw(
		`SELECT DISTINCT owner_uuid FROM workspace_members WHERE member_uuid = ?`,
		memberUUID,
	).Scan(&owners).Error
	if err != nil {
		return nil, err
	}
	return owners, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, member *domain.Member) error {
	return db.WithContext(ctx).Create(member).Error
}
