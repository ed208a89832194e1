package survey

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/bloom-backend/internal/domain"
	"github.com/yungbote/bloom-backend/internal/platform/dbctx"
	"github.com/yungbote/bloom-backend/internal/platform/logger"
)

type ResponseRepo interface {
	Create(dbc dbctx.Context, resp *types.SurveyResponse, answers []*types.SurveyAnswer) error
	CountBySurvey(dbc dbctx.Context, surveyID uuid.UUID) (int64, error)
	// CountByTeam counts responses per team. Responses without a team are not included.
	CountByTeam(dbc dbctx.Context, surveyID uuid.UUID) (map[uuid.UUID]int, error)
	AnswersBySurvey(dbc dbctx.Context, surveyID uuid.UUID) ([]*types.SurveyAnswer, error)
}

type responseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewResponseRepo(db *gorm.DB, baseLog *logger.Logger) ResponseRepo {
	return &responseRepo{db: db, log: baseLog.With("repo", "SurveyResponseRepo")}
}

func (r *responseRepo) Create(dbc dbctx.Context, resp *types.SurveyResponse, answers []*types.SurveyAnswer) error {
	if resp == nil {
		return nil
	}
	t := dbc.DB(r.db)
	if err := t.Create(resp).Error; err != nil {
		return err
	}
	if len(answers) == 0 {
		return nil
	}
	for _, a := range answers {
		a.ResponseID = resp.ID
	}
	return t.Create(&answers).Error
}

func (r *responseRepo) CountBySurvey(dbc dbctx.Context, surveyID uuid.UUID) (int64, error) {
	var n int64
	err := dbc.DB(r.db).
		Model(&types.SurveyResponse{}).
		Where("survey_id = ?", surveyID).
		Count(&n).Error
	return n, err
}

type teamCountRow struct {
	TeamID uuid.UUID
	N      int
}

func (r *responseRepo) CountByTeam(dbc dbctx.Context, surveyID uuid.UUID) (map[uuid.UUID]int, error) {
	var rows []teamCountRow
	if err := dbc.DB(r.db).
		Model(&types.SurveyResponse{}).
		Select("team_id AS team_id, COUNT(*) AS n").
		Where("survey_id = ? AND team_id IS NOT NULL", surveyID).
		Group("team_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		out[row.TeamID] = row.N
	}
	return out, nil
}

func (r *responseRepo) AnswersBySurvey(dbc dbctx.Context, surveyID uuid.UUID) ([]*types.SurveyAnswer, error) {
	var out []*types.SurveyAnswer
	if err := dbc.DB(r.db).
		Joins("JOIN survey_response ON survey_response.id = survey_answer.response_id").
		Where("survey_response.survey_id = ?", surveyID).
		Order("survey_response.submitted_at ASC, survey_answer.id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
