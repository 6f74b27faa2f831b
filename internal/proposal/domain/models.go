// Package domain contains the proposal and vote models plus the
// quorum/threshold transition rules.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Proposal statuses. StatusRejected is reserved in the schema but no code
// path produces it; readers must tolerate it.
const (
	StatusActive   = "active"
	StatusPassed   = "passed"
	StatusRejected = "rejected"
)

// Vote choices.
const (
	ChoiceYes = "yes"
	ChoiceNo  = "no"
)

// Proposal action types, informational only.
const (
	ActionGeneral    = "general"
	ActionSpending   = "spending"
	ActionMembership = "membership"
)

// Proposal is a unit of governance action subject to voting. VotesFor and
// VotesAgainst always equal the count of vote rows; each increment shares
// a transaction with its vote insertion.
type Proposal struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID        snowflake.ID `gorm:"not null;index" json:"org_id"`
	Proposer     string       `gorm:"type:text;not null" json:"proposer"`
	Title        string       `gorm:"type:text;not null" json:"title"`
	Description  string       `gorm:"type:text" json:"description"`
	ActionType   string       `gorm:"type:text;not null;default:general" json:"action_type"`
	AmountSats   int64        `gorm:"not null;default:0" json:"amount_sats"`
	Recipient    string       `gorm:"type:text" json:"recipient"`
	Status       string       `gorm:"type:text;not null;default:active" json:"status"`
	VotesFor     int          `gorm:"not null;default:0" json:"votes_for"`
	VotesAgainst int          `gorm:"not null;default:0" json:"votes_against"`
	ExecutedAt   *time.Time   `json:"executed_at,omitempty"`
	CreatedAt    time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (Proposal) TableName() string { return "proposals" }

// Vote records one member's immutable choice. The unique index on
// (proposal_id, voter) is the authoritative duplicate guard; the service
// pre-check is only an optimization.
type Vote struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	ProposalID snowflake.ID `gorm:"not null;index;uniqueIndex:ux_votes_proposal_voter,priority:1" json:"proposal_id"`
	Voter      string       `gorm:"type:text;not null;uniqueIndex:ux_votes_proposal_voter,priority:2" json:"voter"`
	Choice     string       `gorm:"type:text;not null" json:"choice"`
	CreatedAt  time.Time    `gorm:"not null" json:"created_at"`
}

// TableName sets the database table name.
func (Vote) TableName() string { return "votes" }
