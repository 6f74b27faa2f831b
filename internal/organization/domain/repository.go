package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Stats aggregates service-wide totals for the stats endpoint.
type Stats struct {
	Organizations int64 `json:"organizations"`
	Members       int64 `json:"members"`
	Proposals     int64 `json:"proposals"`
	Votes         int64 `json:"votes"`
	TreasurySats  int64 `json:"treasury_sats"`
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrganization(ctx context.Context, org Organization) error
	GetOrganization(ctx context.Context, orgID snowflake.ID) (*Organization, error)
	ListOrganizations(ctx context.Context) ([]Organization, error)
	AddMember(ctx context.Context, member Member) error
	ListMembers(ctx context.Context, orgID snowflake.ID) ([]Member, error)
	IsMember(ctx context.Context, orgID snowflake.ID, address string) (bool, error)
	IsAdmin(ctx context.Context, orgID snowflake.ID, address string) (bool, error)
	IncrementMemberCount(ctx context.Context, orgID snowflake.ID) error
	IncrementProposalCount(ctx context.Context, orgID snowflake.ID) error
	AddTreasury(ctx context.Context, orgID snowflake.ID, amountSats int64) error
	Stats(ctx context.Context) (Stats, error)
}
