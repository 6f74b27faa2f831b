package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/opendao/assembly/internal/activity/domain"
	"gorm.io/gorm"
)

type repository struct{}

func NewRepository() domain.Repository {
	return &repository{}
}

func (r *repository) Insert(ctx context.Context, db *gorm.DB, entry *domain.Activity) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO activities (id, org_id, actor, action, details, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.OrgID,
		entry.Actor,
		entry.Action,
		entry.Details,
		entry.CreatedAt,
	).Error
}

func (r *repository) ListByOrg(ctx context.Context, db *gorm.DB, orgID snowflake.ID, limit int) ([]domain.Activity, error) {
	var items []domain.Activity
	err := db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
