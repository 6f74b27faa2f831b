package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	activitydomain "github.com/opendao/assembly/internal/activity/domain"
	"github.com/opendao/assembly/internal/clock"
	"github.com/opendao/assembly/internal/events"
	"github.com/opendao/assembly/internal/observability/metrics"
	"github.com/opendao/assembly/internal/organization/domain"
	dbpkg "github.com/opendao/assembly/pkg/db"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Repo      domain.Repository
	Activity  activitydomain.Service
	Publisher events.Publisher
	GenID     *snowflake.Node
	Clock     clock.Clock
	Metrics   *metrics.Metrics `optional:"true"`
}

type service struct {
	db        *gorm.DB
	repo      domain.Repository
	activity  activitydomain.Service
	publisher events.Publisher
	genID     *snowflake.Node
	clock     clock.Clock
	metrics   *metrics.Metrics
}

func NewService(p Params) domain.Service {
	return &service{
		db:        p.DB,
		repo:      p.Repo,
		activity:  p.Activity,
		publisher: p.Publisher,
		genID:     p.GenID,
		clock:     p.Clock,
		metrics:   p.Metrics,
	}
}

func (s *service) Create(ctx context.Context, req domain.CreateOrganizationRequest) (*domain.OrganizationResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	creator := strings.TrimSpace(req.Creator)
	if creator == "" {
		return nil, domain.ErrInvalidCreator
	}

	now := s.clock.Now()
	orgID := s.genID.Generate()
	org := domain.Organization{
		ID:                orgID,
		Name:              name,
		Slug:              slug.Make(name),
		Description:       strings.TrimSpace(req.Description),
		Creator:           creator,
		ApprovalThreshold: domain.ClampThreshold(req.ApprovalThreshold),
		SpendLimitSats:    req.SpendLimitSats,
		Status:            domain.StatusActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateOrganization(ctx, org); err != nil {
			return err
		}

		member := domain.Member{
			ID:       s.genID.Generate(),
			OrgID:    orgID,
			Address:  creator,
			Role:     domain.RoleAdmin,
			JoinedAt: now,
		}
		if err := repo.AddMember(ctx, member); err != nil {
			return err
		}
		if err := repo.IncrementMemberCount(ctx, orgID); err != nil {
			return err
		}

		if err := s.activity.Record(ctx, tx, orgID, creator, activitydomain.ActionCreated,
			fmt.Sprintf("%s created DAO %q", creator, name)); err != nil {
			return err
		}

		return s.publisher.Publish(ctx, tx, events.OrganizationCreatedTopic, map[string]any{
			"organization_id": orgID.String(),
			"creator":         creator,
		})
	})
	if err != nil {
		if dbpkg.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateName
		}
		return nil, err
	}

	s.metrics.RecordOrganizationCreated(ctx)

	// member_count was incremented inside the transaction
	org.MemberCount = 1
	return toResponse(&org), nil
}

func (s *service) GetByID(ctx context.Context, id string) (*domain.OrganizationResponse, error) {
	orgID, err := parseOrgID(id)
	if err != nil {
		return nil, err
	}

	org, err := s.repo.GetOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return toResponse(org), nil
}

func (s *service) List(ctx context.Context) ([]domain.OrganizationResponse, error) {
	orgs, err := s.repo.ListOrganizations(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.OrganizationResponse, 0, len(orgs))
	for i := range orgs {
		resp = append(resp, *toResponse(&orgs[i]))
	}
	return resp, nil
}

func (s *service) InviteMember(ctx context.Context, orgID string, req domain.InviteMemberRequest) (*domain.MemberResponse, error) {
	id, err := parseOrgID(orgID)
	if err != nil {
		return nil, err
	}

	inviter := strings.TrimSpace(req.Inviter)
	address := strings.TrimSpace(req.Address)
	if inviter == "" || address == "" {
		return nil, domain.ErrInvalidAddress
	}

	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = domain.RoleMember
	}

	if _, err := s.repo.GetOrganization(ctx, id); err != nil {
		return nil, err
	}

	isAdmin, err := s.repo.IsAdmin(ctx, id, inviter)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		return nil, domain.ErrForbidden
	}

	member := domain.Member{
		ID:       s.genID.Generate(),
		OrgID:    id,
		Address:  address,
		Role:     role,
		JoinedAt: s.clock.Now(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.AddMember(ctx, member); err != nil {
			return err
		}
		if err := repo.IncrementMemberCount(ctx, id); err != nil {
			return err
		}
		return s.activity.Record(ctx, tx, id, inviter, activitydomain.ActionInvited,
			fmt.Sprintf("%s invited %s as %s", inviter, address, role))
	})
	if err != nil {
		if dbpkg.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateMember
		}
		return nil, err
	}

	return &domain.MemberResponse{
		ID:       member.ID.String(),
		OrgID:    id.String(),
		Address:  member.Address,
		Role:     member.Role,
		JoinedAt: member.JoinedAt,
	}, nil
}

func (s *service) ListMembers(ctx context.Context, orgID string) ([]domain.MemberResponse, error) {
	id, err := parseOrgID(orgID)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetOrganization(ctx, id); err != nil {
		return nil, err
	}

	members, err := s.repo.ListMembers(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.MemberResponse, 0, len(members))
	for _, member := range members {
		resp = append(resp, domain.MemberResponse{
			ID:       member.ID.String(),
			OrgID:    member.OrgID.String(),
			Address:  member.Address,
			Role:     member.Role,
			JoinedAt: member.JoinedAt,
		})
	}
	return resp, nil
}

func (s *service) FundTreasury(ctx context.Context, orgID string, req domain.FundTreasuryRequest) (*domain.OrganizationResponse, error) {
	id, err := parseOrgID(orgID)
	if err != nil {
		return nil, err
	}

	funder := strings.TrimSpace(req.Funder)
	if funder == "" {
		return nil, domain.ErrInvalidAddress
	}
	if req.AmountSats < 1 {
		return nil, domain.ErrInvalidAmount
	}

	if _, err := s.repo.GetOrganization(ctx, id); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.AddTreasury(ctx, id, req.AmountSats); err != nil {
			return err
		}
		return s.activity.Record(ctx, tx, id, funder, activitydomain.ActionFunded,
			fmt.Sprintf("%s funded treasury with %d sats", funder, req.AmountSats))
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordTreasuryFunded(ctx, id.String(), req.AmountSats)

	org, err := s.repo.GetOrganization(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(org), nil
}

func (s *service) Stats(ctx context.Context) (domain.Stats, error) {
	return s.repo.Stats(ctx)
}

func parseOrgID(raw string) (snowflake.ID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, domain.ErrInvalidOrganization
	}
	id, err := snowflake.ParseString(raw)
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidOrganization
	}
	return id, nil
}

func toResponse(org *domain.Organization) *domain.OrganizationResponse {
	return &domain.OrganizationResponse{
		ID:                org.ID.String(),
		Name:              org.Name,
		Slug:              org.Slug,
		Description:       org.Description,
		Creator:           org.Creator,
		ApprovalThreshold: org.ApprovalThreshold,
		SpendLimitSats:    org.SpendLimitSats,
		TreasurySats:      org.TreasurySats,
		MemberCount:       org.MemberCount,
		ProposalCount:     org.ProposalCount,
		Status:            org.Status,
		CreatedAt:         org.CreatedAt,
	}
}
