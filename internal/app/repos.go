package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/bloom-backend/internal/data/repos"
	"github.com/yungbote/bloom-backend/internal/platform/logger"
)

type Repos struct {
	Company        repos.CompanyRepo
	Team           repos.TeamRepo
	TeamMembership repos.TeamMembershipRepo
	User           repos.UserRepo

	HappinessSubmission repos.HappinessSubmissionRepo
	HappinessScore      repos.HappinessScoreRepo

	Survey         repos.SurveyRepo
	SurveyQuestion repos.SurveyQuestionRepo
	SurveyResponse repos.SurveyResponseRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Company:        repos.NewCompanyRepo(db, log),
		Team:           repos.NewTeamRepo(db, log),
		TeamMembership: repos.NewTeamMembershipRepo(db, log),
		User:           repos.NewUserRepo(db, log),

		HappinessSubmission: repos.NewHappinessSubmissionRepo(db, log),
		HappinessScore:      repos.NewHappinessScoreRepo(db, log),

		Survey:         repos.NewSurveyRepo(db, log),
		SurveyQuestion: repos.NewSurveyQuestionRepo(db, log),
		SurveyResponse: repos.NewSurveyResponseRepo(db, log),
	}
}
