package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/opendao/assembly/internal/activity/domain"
	"github.com/opendao/assembly/internal/clock"
	"github.com/opendao/assembly/internal/events"
	"github.com/opendao/assembly/internal/observability/metrics"
	organizationdomain "github.com/opendao/assembly/internal/organization/domain"
	"github.com/opendao/assembly/internal/proposal/domain"
	dbpkg "github.com/opendao/assembly/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Repo      domain.Repository
	Orgs      organizationdomain.Repository
	Activity  activitydomain.Service
	Publisher events.Publisher
	GenID     *snowflake.Node
	Clock     clock.Clock
	Metrics   *metrics.Metrics `optional:"true"`
}

type service struct {
	db        *gorm.DB
	log       *zap.Logger
	repo      domain.Repository
	orgs      organizationdomain.Repository
	activity  activitydomain.Service
	publisher events.Publisher
	genID     *snowflake.Node
	clock     clock.Clock
	metrics   *metrics.Metrics
}

func NewService(p Params) domain.Service {
	return &service{
		db:        p.DB,
		log:       p.Log.Named("proposal.service"),
		repo:      p.Repo,
		orgs:      p.Orgs,
		activity:  p.Activity,
		publisher: p.Publisher,
		genID:     p.GenID,
		clock:     p.Clock,
		metrics:   p.Metrics,
	}
}

func (s *service) Create(ctx context.Context, orgID string, req domain.CreateProposalRequest) (*domain.ProposalResponse, error) {
	id, err := parseID(orgID, organizationdomain.ErrInvalidOrganization)
	if err != nil {
		return nil, err
	}

	proposer := strings.TrimSpace(req.Proposer)
	if proposer == "" {
		return nil, domain.ErrInvalidProposer
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrInvalidTitle
	}

	actionType := strings.TrimSpace(req.ActionType)
	if actionType == "" {
		actionType = domain.ActionGeneral
	}

	if _, err := s.orgs.GetOrganization(ctx, id); err != nil {
		return nil, err
	}

	isMember, err := s.orgs.IsMember(ctx, id, proposer)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, domain.ErrNotMember
	}

	now := s.clock.Now()
	proposal := domain.Proposal{
		ID:          s.genID.Generate(),
		OrgID:       id,
		Proposer:    proposer,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		ActionType:  actionType,
		AmountSats:  req.AmountSats,
		Recipient:   strings.TrimSpace(req.Recipient),
		Status:      domain.StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, proposal); err != nil {
			return err
		}
		if err := s.orgs.WithTx(tx).IncrementProposalCount(ctx, id); err != nil {
			return err
		}
		return s.activity.Record(ctx, tx, id, proposer, activitydomain.ActionProposed,
			fmt.Sprintf("%s proposed %q", proposer, title))
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordProposalCreated(ctx, id.String(), actionType)

	return toResponse(&proposal), nil
}

func (s *service) GetByID(ctx context.Context, orgID, proposalID string) (*domain.ProposalResponse, error) {
	oid, pid, err := parseRef(orgID, proposalID)
	if err != nil {
		return nil, err
	}

	proposal, err := s.repo.Get(ctx, oid, pid)
	if err != nil {
		return nil, err
	}
	return toResponse(proposal), nil
}

func (s *service) ListByOrg(ctx context.Context, orgID string) ([]domain.ProposalResponse, error) {
	id, err := parseID(orgID, organizationdomain.ErrInvalidOrganization)
	if err != nil {
		return nil, err
	}

	if _, err := s.orgs.GetOrganization(ctx, id); err != nil {
		return nil, err
	}

	proposals, err := s.repo.ListByOrg(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.ProposalResponse, 0, len(proposals))
	for i := range proposals {
		resp = append(resp, *toResponse(&proposals[i]))
	}
	return resp, nil
}

// Vote records one member's choice and, when the fresh tally satisfies
// quorum and threshold, transitions the proposal to passed. The vote row,
// tally increment and activity entry commit as one transaction; the
// transition is a second transaction guarded by a conditional update so
// concurrent voters cannot apply it twice.
func (s *service) Vote(ctx context.Context, orgID, proposalID string, req domain.VoteRequest) (*domain.VoteResponse, error) {
	oid, pid, err := parseRef(orgID, proposalID)
	if err != nil {
		return nil, err
	}

	voter := strings.TrimSpace(req.Voter)
	if voter == "" {
		return nil, domain.ErrInvalidVoter
	}
	choice := strings.ToLower(strings.TrimSpace(req.Choice))
	if choice != domain.ChoiceYes && choice != domain.ChoiceNo {
		return nil, domain.ErrInvalidChoice
	}

	if _, err := s.orgs.GetOrganization(ctx, oid); err != nil {
		return nil, err
	}

	isMember, err := s.orgs.IsMember(ctx, oid, voter)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, domain.ErrNotMember
	}

	proposal, err := s.repo.Get(ctx, oid, pid)
	if err != nil {
		return nil, err
	}
	if proposal.Status != domain.StatusActive {
		return nil, domain.ErrNotActive
	}

	// Optimization only: two concurrent requests can both pass this
	// check. The unique index on (proposal_id, voter) is the real guard.
	hasVoted, err := s.repo.HasVoted(ctx, pid, voter)
	if err != nil {
		return nil, err
	}
	if hasVoted {
		return nil, domain.ErrDuplicateVote
	}

	now := s.clock.Now()
	vote := domain.Vote{
		ID:         s.genID.Generate(),
		ProposalID: pid,
		Voter:      voter,
		Choice:     choice,
		CreatedAt:  now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.InsertVote(ctx, vote); err != nil {
			return err
		}
		if err := repo.IncrementTally(ctx, pid, choice, now); err != nil {
			return err
		}
		return s.activity.Record(ctx, tx, oid, voter, activitydomain.ActionVoted,
			fmt.Sprintf("%s voted %s on %q", voter, choice, proposal.Title))
	})
	if err != nil {
		if dbpkg.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateVote
		}
		return nil, err
	}

	s.metrics.RecordVoteCast(ctx, oid.String(), choice)

	updated, err := s.checkTransition(ctx, oid, pid)
	if err != nil {
		return nil, err
	}

	return &domain.VoteResponse{
		ProposalID:   pid.String(),
		Status:       updated.Status,
		VotesFor:     updated.VotesFor,
		VotesAgainst: updated.VotesAgainst,
	}, nil
}

// checkTransition re-reads fresh counters after a committed vote and
// applies the active -> passed transition when quorum and threshold are
// both satisfied.
func (s *service) checkTransition(ctx context.Context, orgID, proposalID snowflake.ID) (*domain.Proposal, error) {
	proposal, err := s.repo.Get(ctx, orgID, proposalID)
	if err != nil {
		return nil, err
	}

	org, err := s.orgs.GetOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	tally := domain.Tally{
		VotesFor:          proposal.VotesFor,
		VotesAgainst:      proposal.VotesAgainst,
		MemberCount:       org.MemberCount,
		ApprovalThreshold: org.ApprovalThreshold,
	}
	if domain.Decide(proposal.Status, tally) != domain.StatusPassed {
		return proposal, nil
	}

	now := s.clock.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := s.repo.WithTx(tx).MarkPassed(ctx, proposalID, now)
		if err != nil {
			return err
		}
		if rows == 0 {
			// Lost the race: another voter already transitioned it.
			return nil
		}

		pct := domain.ApprovalPercent(tally.VotesFor, tally.VotesFor+tally.VotesAgainst)
		if err := s.activity.Record(ctx, tx, orgID, proposal.Proposer, activitydomain.ActionPassed,
			fmt.Sprintf("proposal %q passed with %d%% approval", proposal.Title, pct)); err != nil {
			return err
		}

		if err := s.publisher.Publish(ctx, tx, events.ProposalPassedTopic, map[string]any{
			"organization_id": orgID.String(),
			"proposal_id":     proposalID.String(),
			"approval_pct":    pct,
		}); err != nil {
			return err
		}

		s.metrics.RecordProposalPassed(ctx, orgID.String())
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, orgID, proposalID)
}

func parseRef(orgID, proposalID string) (snowflake.ID, snowflake.ID, error) {
	oid, err := parseID(orgID, organizationdomain.ErrInvalidOrganization)
	if err != nil {
		return 0, 0, err
	}
	pid, err := parseID(proposalID, domain.ErrInvalidProposal)
	if err != nil {
		return 0, 0, err
	}
	return oid, pid, nil
}

func parseID(raw string, invalid error) (snowflake.ID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, invalid
	}
	id, err := snowflake.ParseString(raw)
	if err != nil || id == 0 {
		return 0, invalid
	}
	return id, nil
}

func toResponse(p *domain.Proposal) *domain.ProposalResponse {
	return &domain.ProposalResponse{
		ID:           p.ID.String(),
		OrgID:        p.OrgID.String(),
		Proposer:     p.Proposer,
		Title:        p.Title,
		Description:  p.Description,
		ActionType:   p.ActionType,
		AmountSats:   p.AmountSats,
		Recipient:    p.Recipient,
		Status:       p.Status,
		VotesFor:     p.VotesFor,
		VotesAgainst: p.VotesAgainst,
		ExecutedAt:   p.ExecutedAt,
		CreatedAt:    p.CreatedAt,
	}
}
