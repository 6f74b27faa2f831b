package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateOrganizationRequest) (*OrganizationResponse, error)
	GetByID(ctx context.Context, id string) (*OrganizationResponse, error)
	List(ctx context.Context) ([]OrganizationResponse, error)
	InviteMember(ctx context.Context, orgID string, req InviteMemberRequest) (*MemberResponse, error)
	ListMembers(ctx context.Context, orgID string) ([]MemberResponse, error)
	FundTreasury(ctx context.Context, orgID string, req FundTreasuryRequest) (*OrganizationResponse, error)
	Stats(ctx context.Context) (Stats, error)
}

type CreateOrganizationRequest struct {
	Name              string
	Description       string
	Creator           string
	ApprovalThreshold int
	SpendLimitSats    int64
}

type InviteMemberRequest struct {
	Inviter string
	Address string
	Role    string
}

type FundTreasuryRequest struct {
	Funder     string
	AmountSats int64
}

type OrganizationResponse struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Slug              string    `json:"slug"`
	Description       string    `json:"description"`
	Creator           string    `json:"creator"`
	ApprovalThreshold int       `json:"approval_threshold"`
	SpendLimitSats    int64     `json:"spend_limit_sats"`
	TreasurySats      int64     `json:"treasury_sats"`
	MemberCount       int       `json:"member_count"`
	ProposalCount     int       `json:"proposal_count"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
}

type MemberResponse struct {
	ID       string    `json:"id"`
	OrgID    string    `json:"org_id"`
	Address  string    `json:"address"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

var (
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidCreator      = errors.New("invalid_creator")
	ErrInvalidAddress      = errors.New("invalid_address")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrNotFound            = errors.New("organization_not_found")
	ErrDuplicateName       = errors.New("duplicate_name")
	ErrDuplicateMember     = errors.New("duplicate_member")
	ErrForbidden           = errors.New("forbidden")
)

// ClampThreshold normalizes an approval threshold to [1,100]; zero means
// unset and falls back to the default.
func ClampThreshold(threshold int) int {
	if threshold == 0 {
		return DefaultApprovalThreshold
	}
	if threshold < 1 {
		return 1
	}
	if threshold > 100 {
		return 100
	}
	return threshold
}
