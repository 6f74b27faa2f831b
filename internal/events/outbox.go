// Package events persists governance events to a transactional outbox.
// Downstream consumers drain the table; nothing in this service reads it.
package events

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/opendao/assembly/internal/clock"
	"go.uber.org/fx"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	OrganizationCreatedTopic = "organization.created"
	ProposalPassedTopic      = "proposal.passed"
)

// GovernanceEvent is one outbox row.
type GovernanceEvent struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	EventType string            `gorm:"type:text;not null;index" json:"event_type"`
	Payload   datatypes.JSONMap `gorm:"not null" json:"payload"`
	CreatedAt time.Time         `gorm:"not null" json:"created_at"`
}

// TableName sets the database table name.
func (GovernanceEvent) TableName() string { return "governance_events" }

// Publisher appends events inside the caller's transaction so the event
// commits or rolls back with the state change it describes.
type Publisher interface {
	Publish(ctx context.Context, tx *gorm.DB, eventType string, payload map[string]any) error
}

var ErrInvalidEventType = errors.New("invalid_event_type")

type outboxPublisher struct {
	genID *snowflake.Node
	clock clock.Clock
}

func NewOutboxPublisher(genID *snowflake.Node, clk clock.Clock) Publisher {
	return &outboxPublisher{
		genID: genID,
		clock: clk,
	}
}

func (p *outboxPublisher) Publish(ctx context.Context, tx *gorm.DB, eventType string, payload map[string]any) error {
	eventType = strings.TrimSpace(eventType)
	if eventType == "" {
		return ErrInvalidEventType
	}

	event := GovernanceEvent{
		ID:        p.genID.Generate(),
		EventType: eventType,
		Payload:   datatypes.JSONMap(payload),
		CreatedAt: p.clock.Now(),
	}
	return tx.WithContext(ctx).Create(&event).Error
}

var Module = fx.Module("events.outbox",
	fx.Provide(NewOutboxPublisher),
)
