package tenancy

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/bloom-backend/internal/domain"
	"github.com/yungbote/bloom-backend/internal/platform/dbctx"
	"github.com/yungbote/bloom-backend/internal/platform/logger"
)

type TeamRepo interface {
	Create(dbc dbctx.Context, teams []*types.Team) ([]*types.Team, error)
	GetByID(dbc dbctx.Context, companyID, teamID uuid.UUID) (*types.Team, error)
	ListByCompany(dbc dbctx.Context, companyID uuid.UUID) ([]*types.Team, error)
	GetByName(dbc dbctx.Context, companyID uuid.UUID, name string) (*types.Team, error)
}

type teamRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTeamRepo(db *gorm.DB, baseLog *logger.Logger) TeamRepo {
	return &teamRepo{db: db, log: baseLog.With("repo", "TeamRepo")}
}

func (r *teamRepo) Create(dbc dbctx.Context, teams []*types.Team) ([]*types.Team, error) {
	if len(teams) == 0 {
		return []*types.Team{}, nil
	}
	if err := dbc.DB(r.db).Create(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

// GetByID is scoped to the company so a team id from another tenant resolves to nil.
func (r *teamRepo) GetByID(dbc dbctx.Context, companyID, teamID uuid.UUID) (*types.Team, error) {
	var t types.Team
	err := dbc.DB(r.db).
		Where("id = ? AND company_id = ?", teamID, companyID).
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

func (r *teamRepo) ListByCompany(dbc dbctx.Context, companyID uuid.UUID) ([]*types.Team, error) {
	var out []*types.Team
	if err := dbc.DB(r.db).
		Where("company_id = ?", companyID).
		Order("name ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *teamRepo) GetByName(dbc dbctx.Context, companyID uuid.UUID, name string) (*types.Team, error) {
	var t types.Team
	err := dbc.DB(r.db).
		Where("company_id = ? AND name = ?", companyID, name).
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
