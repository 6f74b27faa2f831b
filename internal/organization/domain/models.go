// Package domain contains persistence models for the organization service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	StatusActive = "active"

	RoleAdmin  = "admin"
	RoleMember = "member"

	// DefaultApprovalThreshold applies when a creation request leaves the
	// threshold unset.
	DefaultApprovalThreshold = 51
)

// Organization is a DAO: a named group with members, a treasury and
// governance rules. MemberCount and ProposalCount are denormalized
// accumulators; every increment shares a transaction with the row
// insertion it accounts for.
type Organization struct {
	ID                snowflake.ID `gorm:"primaryKey" json:"id"`
	Name              string       `gorm:"type:text;not null;uniqueIndex:ux_organizations_name" json:"name"`
	Slug              string       `gorm:"type:text;not null" json:"slug"`
	Description       string       `gorm:"type:text" json:"description"`
	Creator           string       `gorm:"type:text;not null" json:"creator"`
	ApprovalThreshold int          `gorm:"not null;default:51" json:"approval_threshold"`
	SpendLimitSats    int64        `gorm:"not null;default:0" json:"spend_limit_sats"`
	TreasurySats      int64        `gorm:"not null;default:0" json:"treasury_sats"`
	MemberCount       int          `gorm:"not null;default:0" json:"member_count"`
	ProposalCount     int          `gorm:"not null;default:0" json:"proposal_count"`
	Status            string       `gorm:"type:text;not null;default:active" json:"status"`
	CreatedAt         time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time    `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (Organization) TableName() string { return "organizations" }

// Member associates an address with an organization. Addresses are opaque
// caller-supplied strings; no signature verification happens anywhere.
type Member struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID    snowflake.ID `gorm:"not null;index;uniqueIndex:ux_members_org_address,priority:1" json:"org_id"`
	Address  string       `gorm:"type:text;not null;uniqueIndex:ux_members_org_address,priority:2" json:"address"`
	Role     string       `gorm:"type:text;not null" json:"role"`
	JoinedAt time.Time    `gorm:"not null" json:"joined_at"`
}

// TableName sets the database table name.
func (Member) TableName() string { return "members" }
