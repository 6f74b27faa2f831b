package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/opendao/assembly/internal/activity/domain"
	"github.com/opendao/assembly/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("activity.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, tx *gorm.DB, orgID snowflake.ID, actor, action, details string) error {
	action = strings.TrimSpace(action)
	if action == "" {
		return domain.ErrInvalidAction
	}
	if orgID == 0 {
		return domain.ErrInvalidOrganization
	}
	if tx == nil {
		tx = s.db
	}

	entry := domain.Activity{
		ID:        s.genID.Generate(),
		OrgID:     orgID,
		Actor:     strings.TrimSpace(actor),
		Action:    action,
		Details:   details,
		CreatedAt: s.clock.Now(),
	}

	if err := s.repo.Insert(ctx, tx, &entry); err != nil {
		s.log.Warn("failed to append activity", zap.String("action", action), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) ListByOrg(ctx context.Context, orgID string, limit int) ([]domain.Activity, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(orgID))
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	if limit <= 0 {
		limit = 50
	}
	if limit > 250 {
		limit = 250
	}

	return s.repo.ListByOrg(ctx, s.db, id, limit)
}
