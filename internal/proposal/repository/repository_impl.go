package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/opendao/assembly/internal/proposal/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, proposal domain.Proposal) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO proposals (id, org_id, proposer, title, description, action_type,
		 amount_sats, recipient, status, votes_for, votes_against, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, 0, ?, ?)`,
		proposal.ID,
		proposal.OrgID,
		proposal.Proposer,
		proposal.Title,
		proposal.Description,
		proposal.ActionType,
		proposal.AmountSats,
		proposal.Recipient,
		proposal.Status,
		proposal.CreatedAt,
		proposal.UpdatedAt,
	).Error
}

func (r *repository) Get(ctx context.Context, orgID, proposalID snowflake.ID) (*domain.Proposal, error) {
	var proposal domain.Proposal
	err := r.db.WithContext(ctx).
		First(&proposal, "id = ? AND org_id = ?", proposalID, orgID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &proposal, nil
}

func (r *repository) ListByOrg(ctx context.Context, orgID snowflake.ID) ([]domain.Proposal, error) {
	var proposals []domain.Proposal
	err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("created_at DESC, id DESC").
		Find(&proposals).Error
	if err != nil {
		return nil, err
	}
	return proposals, nil
}

func (r *repository) InsertVote(ctx context.Context, vote domain.Vote) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO votes (id, proposal_id, voter, choice, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		vote.ID,
		vote.ProposalID,
		vote.Voter,
		vote.Choice,
		vote.CreatedAt,
	).Error
}

func (r *repository) HasVoted(ctx context.Context, proposalID snowflake.ID, voter string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Vote{}).
		Where("proposal_id = ? AND voter = ?", proposalID, voter).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) IncrementTally(ctx context.Context, proposalID snowflake.ID, choice string, at time.Time) error {
	column := "votes_against"
	if choice == domain.ChoiceYes {
		column = "votes_for"
	}
	return r.db.WithContext(ctx).Exec(
		`UPDATE proposals SET `+column+` = `+column+` + 1, updated_at = ? WHERE id = ?`,
		at,
		proposalID,
	).Error
}

func (r *repository) MarkPassed(ctx context.Context, proposalID snowflake.ID, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Exec(
		`UPDATE proposals SET status = ?, executed_at = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		domain.StatusPassed,
		at,
		at,
		proposalID,
		domain.StatusActive,
	)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
