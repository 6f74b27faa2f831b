package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, orgID string, req CreateProposalRequest) (*ProposalResponse, error)
	GetByID(ctx context.Context, orgID, proposalID string) (*ProposalResponse, error)
	ListByOrg(ctx context.Context, orgID string) ([]ProposalResponse, error)
	Vote(ctx context.Context, orgID, proposalID string, req VoteRequest) (*VoteResponse, error)
}

type CreateProposalRequest struct {
	Proposer    string
	Title       string
	Description string
	ActionType  string
	AmountSats  int64
	Recipient   string
}

type VoteRequest struct {
	Voter  string
	Choice string
}

type ProposalResponse struct {
	ID           string     `json:"id"`
	OrgID        string     `json:"org_id"`
	Proposer     string     `json:"proposer"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	ActionType   string     `json:"action_type"`
	AmountSats   int64      `json:"amount_sats"`
	Recipient    string     `json:"recipient"`
	Status       string     `json:"status"`
	VotesFor     int        `json:"votes_for"`
	VotesAgainst int        `json:"votes_against"`
	ExecutedAt   *time.Time `json:"executed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type VoteResponse struct {
	ProposalID   string `json:"proposal_id"`
	Status       string `json:"status"`
	VotesFor     int    `json:"votes_for"`
	VotesAgainst int    `json:"votes_against"`
}

var (
	ErrInvalidTitle    = errors.New("invalid_title")
	ErrInvalidProposer = errors.New("invalid_proposer")
	ErrInvalidVoter    = errors.New("invalid_voter")
	ErrInvalidChoice   = errors.New("invalid_choice")
	ErrInvalidProposal = errors.New("invalid_proposal")
	ErrNotFound        = errors.New("proposal_not_found")
	ErrNotActive       = errors.New("proposal_not_active")
	ErrDuplicateVote   = errors.New("duplicate_vote")
	ErrNotMember       = errors.New("not_a_member")
)
