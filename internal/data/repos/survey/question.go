package survey

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/bloom-backend/internal/domain"
	"github.com/yungbote/bloom-backend/internal/platform/dbctx"
	"github.com/yungbote/bloom-backend/internal/platform/logger"
)

type QuestionRepo interface {
	Create(dbc dbctx.Context, questions []*types.SurveyQuestion) ([]*types.SurveyQuestion, error)
	ListBySurvey(dbc dbctx.Context, surveyID uuid.UUID) ([]*types.SurveyQuestion, error)
}

type questionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
	return &questionRepo{db: db, log: baseLog.With("repo", "SurveyQuestionRepo")}
}

func (r *questionRepo) Create(dbc dbctx.Context, questions []*types.SurveyQuestion) ([]*types.SurveyQuestion, error) {
	if len(questions) == 0 {
		return []*types.SurveyQuestion{}, nil
	}
	if err := dbc.DB(r.db).Create(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepo) ListBySurvey(dbc dbctx.Context, surveyID uuid.UUID) ([]*types.SurveyQuestion, error) {
	var out []*types.SurveyQuestion
	if err := dbc.DB(r.db).
		Where("survey_id = ?", surveyID).
		Order("position ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
