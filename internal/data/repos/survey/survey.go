package survey

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/bloom-backend/internal/domain"
	surveydomain "github.com/yungbote/bloom-backend/internal/domain/survey"
	"github.com/yungbote/bloom-backend/internal/platform/dbctx"
	"github.com/yungbote/bloom-backend/internal/platform/logger"
)

type SurveyRepo interface {
	Create(dbc dbctx.Context, survey *types.Survey, teamIDs []uuid.UUID) error
	GetByID(dbc dbctx.Context, companyID, surveyID uuid.UUID) (*types.Survey, error)
	// ListVisible returns active company surveys that are global or scoped to one of teamIDs.
	// When all is true every company survey is returned regardless of status.
	ListVisible(dbc dbctx.Context, companyID uuid.UUID, teamIDs []uuid.UUID, all bool) ([]*types.Survey, error)
	TeamIDs(dbc dbctx.Context, surveyID uuid.UUID) ([]uuid.UUID, error)
}

type surveyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSurveyRepo(db *gorm.DB, baseLog *logger.Logger) SurveyRepo {
	return &surveyRepo{db: db, log: baseLog.With("repo", "SurveyRepo")}
}

func (r *surveyRepo) Create(dbc dbctx.Context, survey *types.Survey, teamIDs []uuid.UUID) error {
	if survey == nil {
		return nil
	}
	t := dbc.DB(r.db)
	if err := t.Create(survey).Error; err != nil {
		return err
	}
	if len(teamIDs) == 0 {
		return nil
	}
	rows := make([]*types.SurveyTeam, 0, len(teamIDs))
	for _, id := range teamIDs {
		rows = append(rows, &types.SurveyTeam{SurveyID: survey.ID, TeamID: id})
	}
	return t.Create(&rows).Error
}

func (r *surveyRepo) GetByID(dbc dbctx.Context, companyID, surveyID uuid.UUID) (*types.Survey, error) {
	var s types.Survey
	if err := dbc.DB(r.db).
		Where("id = ? AND company_id = ?", surveyID, companyID).
		Limit(1).
		Find(&s).Error; err != nil {
		return nil, err
	}
	if s.ID == uuid.Nil {
		return nil, nil
	}
	return &s, nil
}

func (r *surveyRepo) ListVisible(dbc dbctx.Context, companyID uuid.UUID, teamIDs []uuid.UUID, all bool) ([]*types.Survey, error) {
	t := dbc.DB(r.db)
	q := t.Where("company_id = ?", companyID)
	if !all {
		q = q.Where("status = ?", surveydomain.StatusActive)
		if len(teamIDs) == 0 {
			q = q.Where("is_global = ?", true)
		} else {
			scoped := t.Model(&types.SurveyTeam{}).Select("survey_id").Where("team_id IN ?", teamIDs)
			q = q.Where("is_global = ? OR id IN (?)", true, scoped)
		}
	}
	var out []*types.Survey
	if err := q.Order("created_at DESC, id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *surveyRepo) TeamIDs(dbc dbctx.Context, surveyID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := dbc.DB(r.db).
		Model(&types.SurveyTeam{}).
		Where("survey_id = ?", surveyID).
		Pluck("team_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
