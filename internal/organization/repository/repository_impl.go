package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/opendao/assembly/internal/organization/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) CreateOrganization(ctx context.Context, org domain.Organization) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO organizations (id, name, slug, description, creator, approval_threshold,
		 spend_limit_sats, treasury_sats, member_count, proposal_count, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 0, 0, 0, ?, ?, ?)`,
		org.ID,
		org.Name,
		org.Slug,
		org.Description,
		org.Creator,
		org.ApprovalThreshold,
		org.SpendLimitSats,
		org.Status,
		org.CreatedAt,
		org.UpdatedAt,
	).Error
}

func (r *repository) GetOrganization(ctx context.Context, orgID snowflake.ID) (*domain.Organization, error) {
	var org domain.Organization
	err := r.db.WithContext(ctx).First(&org, "id = ?", orgID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &org, nil
}

func (r *repository) ListOrganizations(ctx context.Context) ([]domain.Organization, error) {
	var orgs []domain.Organization
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Find(&orgs).Error
	if err != nil {
		return nil, err
	}
	return orgs, nil
}

func (r *repository) AddMember(ctx context.Context, member domain.Member) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO members (id, org_id, address, role, joined_at)
		 VALUES (?, ?, ?, ?, ?)`,
		member.ID,
		member.OrgID,
		member.Address,
		member.Role,
		member.JoinedAt,
	).Error
}

func (r *repository) ListMembers(ctx context.Context, orgID snowflake.ID) ([]domain.Member, error) {
	var members []domain.Member
	err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("joined_at ASC, id ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *repository) IsMember(ctx context.Context, orgID snowflake.ID, address string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Member{}).
		Where("org_id = ? AND address = ?", orgID, address).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) IsAdmin(ctx context.Context, orgID snowflake.ID, address string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Member{}).
		Where("org_id = ? AND address = ? AND role = ?", orgID, address, domain.RoleAdmin).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) IncrementMemberCount(ctx context.Context, orgID snowflake.ID) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE organizations SET member_count = member_count + 1 WHERE id = ?`,
		orgID,
	).Error
}

func (r *repository) IncrementProposalCount(ctx context.Context, orgID snowflake.ID) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE organizations SET proposal_count = proposal_count + 1 WHERE id = ?`,
		orgID,
	).Error
}

func (r *repository) AddTreasury(ctx context.Context, orgID snowflake.ID, amountSats int64) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE organizations SET treasury_sats = treasury_sats + ? WHERE id = ?`,
		amountSats,
		orgID,
	).Error
}

func (r *repository) Stats(ctx context.Context) (domain.Stats, error) {
	var stats domain.Stats
	err := r.db.WithContext(ctx).Raw(
		`SELECT
		   (SELECT COUNT(*) FROM organizations) AS organizations,
		   (SELECT COUNT(*) FROM members) AS members,
		   (SELECT COUNT(*) FROM proposals) AS proposals,
		   (SELECT COUNT(*) FROM votes) AS votes,
		   (SELECT COALESCE(SUM(treasury_sats), 0) FROM organizations) AS treasury_sats`,
	).Scan(&stats).Error
	if err != nil {
		return domain.Stats{}, err
	}
	return stats, nil
}
