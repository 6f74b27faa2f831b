// Package domain contains the append-only activity trail model.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Action tags recorded in the trail.
const (
	ActionCreated  = "created"
	ActionInvited  = "invited"
	ActionProposed = "proposed"
	ActionVoted    = "voted"
	ActionPassed   = "passed"
	ActionFunded   = "funded"
)

// Activity is one audit record. Rows are never read by decision logic and
// never updated or deleted.
type Activity struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID `gorm:"not null;index" json:"org_id"`
	Actor     string       `gorm:"type:text;not null" json:"actor"`
	Action    string       `gorm:"type:text;not null" json:"action"`
	Details   string       `gorm:"type:text" json:"details"`
	CreatedAt time.Time    `gorm:"not null;index" json:"created_at"`
}

// TableName sets the database table name.
func (Activity) TableName() string { return "activities" }

// Repository methods take the database handle so appends can join the
// caller's transaction.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *Activity) error
	ListByOrg(ctx context.Context, db *gorm.DB, orgID snowflake.ID, limit int) ([]Activity, error)
}

type Service interface {
	// Record appends one entry using tx, which is expected to be the
	// transaction of the state change being documented.
	Record(ctx context.Context, tx *gorm.DB, orgID snowflake.ID, actor, action, details string) error
	ListByOrg(ctx context.Context, orgID string, limit int) ([]Activity, error)
}

var (
	ErrInvalidAction       = errors.New("invalid_action")
	ErrInvalidOrganization = errors.New("invalid_organization")
)
