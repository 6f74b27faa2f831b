package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	activitydomain "github.com/opendao/assembly/internal/activity/domain"
	activityrepository "github.com/opendao/assembly/internal/activity/repository"
	activityservice "github.com/opendao/assembly/internal/activity/service"
	"github.com/opendao/assembly/internal/clock"
	"github.com/opendao/assembly/internal/events"
	"github.com/opendao/assembly/internal/organization/domain"
	"github.com/opendao/assembly/internal/organization/repository"
	proposaldomain "github.com/opendao/assembly/internal/proposal/domain"
	dbpkg "github.com/opendao/assembly/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	db, err := dbpkg.NewTest()
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Organization{},
		&domain.Member{},
		&proposaldomain.Proposal{},
		&proposaldomain.Vote{},
		&activitydomain.Activity{},
		&events.GovernanceEvent{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	activitySvc := activityservice.NewService(activityservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Repo:  activityrepository.NewRepository(),
	})

	svc := NewService(Params{
		DB:        db,
		Repo:      repository.NewRepository(db),
		Activity:  activitySvc,
		Publisher: events.NewOutboxPublisher(node, clk),
		GenID:     node,
		Clock:     clk,
	})
	return svc, db
}

func TestCreate(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	org, err := svc.Create(ctx, domain.CreateOrganizationRequest{
		Name:    "Lightning Builders",
		Creator: "alice",
	})
	require.NoError(t, err)
	assert.Equal(t, "Lightning Builders", org.Name)
	assert.Equal(t, "lightning-builders", org.Slug)
	assert.Equal(t, domain.DefaultApprovalThreshold, org.ApprovalThreshold)
	assert.Equal(t, domain.StatusActive, org.Status)
	assert.Equal(t, 1, org.MemberCount)

	// The creator is the first member, and an admin.
	members, err := svc.ListMembers(ctx, org.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "alice", members[0].Address)
	assert.Equal(t, domain.RoleAdmin, members[0].Role)

	var activities int64
	require.NoError(t, db.Model(&activitydomain.Activity{}).
		Where("action = ?", activitydomain.ActionCreated).Count(&activities).Error)
	assert.EqualValues(t, 1, activities)

	var outbox int64
	require.NoError(t, db.Model(&events.GovernanceEvent{}).
		Where("event_type = ?", events.OrganizationCreatedTopic).Count(&outbox).Error)
	assert.EqualValues(t, 1, outbox)
}

func TestCreate_ThresholdClamping(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		threshold int
		want      int
	}{
		{"zero falls back to default", 0, 51},
		{"over 100 clamps down", 150, 100},
		{"negative clamps up", -5, 1},
		{"in range kept", 67, 67},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			org, err := svc.Create(ctx, domain.CreateOrganizationRequest{
				Name:              tc.name,
				Creator:           "alice",
				ApprovalThreshold: tc.threshold,
			})
			require.NoError(t, err)
			assert.Equal(t, tc.want, org.ApprovalThreshold)
		})
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateOrganizationRequest{Creator: "alice"})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateOrganizationRequest{Name: "No Creator"})
	assert.ErrorIs(t, err, domain.ErrInvalidCreator)
}

func TestCreate_DuplicateName(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateOrganizationRequest{Name: "Taken", Creator: "alice"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreateOrganizationRequest{Name: "Taken", Creator: "bob"})
	assert.ErrorIs(t, err, domain.ErrDuplicateName)

	// The failed create left no partial rows behind.
	var orgs, members int64
	require.NoError(t, db.Model(&domain.Organization{}).Count(&orgs).Error)
	require.NoError(t, db.Model(&domain.Member{}).Count(&members).Error)
	assert.EqualValues(t, 1, orgs)
	assert.EqualValues(t, 1, members)
}

func TestInviteMember(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	org, err := svc.Create(ctx, domain.CreateOrganizationRequest{Name: "Invites", Creator: "alice"})
	require.NoError(t, err)

	member, err := svc.InviteMember(ctx, org.ID, domain.InviteMemberRequest{
		Inviter: "alice",
		Address: "bob",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleMember, member.Role)

	updated, err := svc.GetByID(ctx, org.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.MemberCount)
}

func TestInviteMember_NonAdminForbidden(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	org, err := svc.Create(ctx, domain.CreateOrganizationRequest{Name: "Gated", Creator: "alice"})
	require.NoError(t, err)

	_, err = svc.InviteMember(ctx, org.ID, domain.InviteMemberRequest{Inviter: "alice", Address: "bob"})
	require.NoError(t, err)

	// bob holds the plain member role and cannot invite.
	_, err = svc.InviteMember(ctx, org.ID, domain.InviteMemberRequest{Inviter: "bob", Address: "carol"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// Neither can a complete outsider.
	_, err = svc.InviteMember(ctx, org.ID, domain.InviteMemberRequest{Inviter: "mallory", Address: "carol"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	updated, err := svc.GetByID(ctx, org.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.MemberCount)
}

func TestInviteMember_Duplicate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	org, err := svc.Create(ctx, domain.CreateOrganizationRequest{Name: "Unique", Creator: "alice"})
	require.NoError(t, err)

	_, err = svc.InviteMember(ctx, org.ID, domain.InviteMemberRequest{Inviter: "alice", Address: "bob"})
	require.NoError(t, err)

	_, err = svc.InviteMember(ctx, org.ID, domain.InviteMemberRequest{Inviter: "alice", Address: "bob"})
	assert.ErrorIs(t, err, domain.ErrDuplicateMember)

	// Re-inviting the creator conflicts too.
	_, err = svc.InviteMember(ctx, org.ID, domain.InviteMemberRequest{Inviter: "alice", Address: "alice"})
	assert.ErrorIs(t, err, domain.ErrDuplicateMember)

	updated, err := svc.GetByID(ctx, org.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.MemberCount)
}

func TestInviteMember_CustomRole(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	org, err := svc.Create(ctx, domain.CreateOrganizationRequest{Name: "Roles", Creator: "alice"})
	require.NoError(t, err)

	member, err := svc.InviteMember(ctx, org.ID, domain.InviteMemberRequest{
		Inviter: "alice",
		Address: "bob",
		Role:    domain.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, member.Role)

	// A second admin can invite as well.
	_, err = svc.InviteMember(ctx, org.ID, domain.InviteMemberRequest{Inviter: "bob", Address: "carol"})
	require.NoError(t, err)
}

func TestFundTreasury(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	org, err := svc.Create(ctx, domain.CreateOrganizationRequest{Name: "Treasury", Creator: "alice"})
	require.NoError(t, err)

	updated, err := svc.FundTreasury(ctx, org.ID, domain.FundTreasuryRequest{Funder: "alice", AmountSats: 1000})
	require.NoError(t, err)
	assert.EqualValues(t, 1000, updated.TreasurySats)

	updated, err = svc.FundTreasury(ctx, org.ID, domain.FundTreasuryRequest{Funder: "bob", AmountSats: 500})
	require.NoError(t, err)
	assert.EqualValues(t, 1500, updated.TreasurySats)

	for _, amount := range []int64{0, -100} {
		_, err = svc.FundTreasury(ctx, org.ID, domain.FundTreasuryRequest{Funder: "alice", AmountSats: amount})
		assert.ErrorIs(t, err, domain.ErrInvalidAmount, "amount %d", amount)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetByID(ctx, "999999999999")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetByID(ctx, "not-a-snowflake")
	assert.ErrorIs(t, err, domain.ErrInvalidOrganization)
}

func TestStats(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, domain.CreateOrganizationRequest{Name: "First", Creator: "alice"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreateOrganizationRequest{Name: "Second", Creator: "bob"})
	require.NoError(t, err)

	_, err = svc.InviteMember(ctx, first.ID, domain.InviteMemberRequest{Inviter: "alice", Address: "carol"})
	require.NoError(t, err)
	_, err = svc.FundTreasury(ctx, first.ID, domain.FundTreasuryRequest{Funder: "alice", AmountSats: 2500})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.Organizations)
	assert.EqualValues(t, 3, stats.Members)
	assert.EqualValues(t, 0, stats.Proposals)
	assert.EqualValues(t, 2500, stats.TreasurySats)
}
