package repos

import (
	"github.com/yungbote/bloom-backend/internal/data/repos/happiness"
	"github.com/yungbote/bloom-backend/internal/data/repos/survey"
	"github.com/yungbote/bloom-backend/internal/data/repos/tenancy"
	"github.com/yungbote/bloom-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type CompanyRepo = tenancy.CompanyRepo
type TeamRepo = tenancy.TeamRepo
type TeamMembershipRepo = tenancy.TeamMembershipRepo
type UserRepo = tenancy.UserRepo

type HappinessSubmissionRepo = happiness.SubmissionRepo
type HappinessScoreRepo = happiness.ScoreRepo

type SurveyRepo = survey.SurveyRepo
type SurveyQuestionRepo = survey.QuestionRepo
type SurveyResponseRepo = survey.ResponseRepo

func NewCompanyRepo(db *gorm.DB, baseLog *logger.Logger) CompanyRepo {
	return tenancy.NewCompanyRepo(db, baseLog)
}

func NewTeamRepo(db *gorm.DB, baseLog *logger.Logger) TeamRepo {
	return tenancy.NewTeamRepo(db, baseLog)
}

func NewTeamMembershipRepo(db *gorm.DB, baseLog *logger.Logger) TeamMembershipRepo {
	return tenancy.NewTeamMembershipRepo(db, baseLog)
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return tenancy.NewUserRepo(db, baseLog)
}

func NewHappinessSubmissionRepo(db *gorm.DB, baseLog *logger.Logger) HappinessSubmissionRepo {
	return happiness.NewSubmissionRepo(db, baseLog)
}

func NewHappinessScoreRepo(db *gorm.DB, baseLog *logger.Logger) HappinessScoreRepo {
	return happiness.NewScoreRepo(db, baseLog)
}

func NewSurveyRepo(db *gorm.DB, baseLog *logger.Logger) SurveyRepo {
	return survey.NewSurveyRepo(db, baseLog)
}

func NewSurveyQuestionRepo(db *gorm.DB, baseLog *logger.Logger) SurveyQuestionRepo {
	return survey.NewQuestionRepo(db, baseLog)
}

func NewSurveyResponseRepo(db *gorm.DB, baseLog *logger.Logger) SurveyResponseRepo {
	return survey.NewResponseRepo(db, baseLog)
}
