package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, proposal Proposal) error
	Get(ctx context.Context, orgID, proposalID snowflake.ID) (*Proposal, error)
	ListByOrg(ctx context.Context, orgID snowflake.ID) ([]Proposal, error)
	InsertVote(ctx context.Context, vote Vote) error
	HasVoted(ctx context.Context, proposalID snowflake.ID, voter string) (bool, error)
	IncrementTally(ctx context.Context, proposalID snowflake.ID, choice string, at time.Time) error
	// MarkPassed flips status to passed only if the row is still active,
	// returning the number of rows changed. Zero means another request
	// already performed the transition.
	MarkPassed(ctx context.Context, proposalID snowflake.ID, at time.Time) (int64, error)
}
