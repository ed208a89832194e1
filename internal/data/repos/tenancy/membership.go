package tenancy

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/bloom-backend/internal/domain"
	"github.com/yungbote/bloom-backend/internal/platform/dbctx"
	"github.com/yungbote/bloom-backend/internal/platform/logger"
)

type TeamMembershipRepo interface {
	Create(dbc dbctx.Context, memberships []*types.TeamMembership) ([]*types.TeamMembership, error)
	ListActiveByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.TeamMembership, error)
	// PrimaryTeam returns the team the user joined first among active memberships in the company,
	// or nil when the user has none.
	PrimaryTeam(dbc dbctx.Context, userID, companyID uuid.UUID) (*types.Team, error)
	ActiveTeamIDs(dbc dbctx.Context, userID, companyID uuid.UUID) ([]uuid.UUID, error)
	Leave(dbc dbctx.Context, teamID, userID uuid.UUID, at time.Time) error
}

type teamMembershipRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTeamMembershipRepo(db *gorm.DB, baseLog *logger.Logger) TeamMembershipRepo {
	return &teamMembershipRepo{db: db, log: baseLog.With("repo", "TeamMembershipRepo")}
}

func (r *teamMembershipRepo) Create(dbc dbctx.Context, memberships []*types.TeamMembership) ([]*types.TeamMembership, error) {
	if len(memberships) == 0 {
		return []*types.TeamMembership{}, nil
	}
	if err := dbc.DB(r.db).Create(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

func (r *teamMembershipRepo) ListActiveByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.TeamMembership, error) {
	var out []*types.TeamMembership
	if err := dbc.DB(r.db).
		Where("user_id = ? AND left_at IS NULL", userID).
		Order("joined_at ASC, team_id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *teamMembershipRepo) PrimaryTeam(dbc dbctx.Context, userID, companyID uuid.UUID) (*types.Team, error) {
	var t types.Team
	err := dbc.DB(r.db).
		Model(&types.Team{}).
		Select("team.*").
		Joins("JOIN team_membership tm ON tm.team_id = team.id").
		Where("tm.user_id = ? AND tm.left_at IS NULL AND team.company_id = ?", userID, companyID).
		Order("tm.joined_at ASC, team.id ASC").
		Limit(1).
		Find(&t).Error
	if err != nil {
		return nil, err
	}
	if t.ID == uuid.Nil {
		return nil, nil
	}
	return &t, nil
}

func (r *teamMembershipRepo) ActiveTeamIDs(dbc dbctx.Context, userID, companyID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := dbc.DB(r.db).
		Model(&types.TeamMembership{}).
		Joins("JOIN team ON team.id = team_membership.team_id AND team.deleted_at IS NULL").
		Where("team_membership.user_id = ? AND team_membership.left_at IS NULL AND team.company_id = ?", userID, companyID).
		Order("team_membership.joined_at ASC").
		Pluck("team_membership.team_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *teamMembershipRepo) Leave(dbc dbctx.Context, teamID, userID uuid.UUID, at time.Time) error {
	return dbc.DB(r.db).
		Model(&types.TeamMembership{}).
		Where("team_id = ? AND user_id = ? AND left_at IS NULL", teamID, userID).
		Update("left_at", at.UTC()).Error
}
