package domain

import (
	"github.com/yungbote/bloom-backend/internal/domain/happiness"
	"github.com/yungbote/bloom-backend/internal/domain/survey"
	"github.com/yungbote/bloom-backend/internal/domain/tenancy"
)

const (
	RoleMember = tenancy.RoleMember
	RoleAdmin  = tenancy.RoleAdmin
)

type Company = tenancy.Company
type Team = tenancy.Team
type TeamMembership = tenancy.TeamMembership
type User = tenancy.User

type HappinessScoreSubmission = happiness.HappinessScoreSubmission
type HappinessScore = happiness.HappinessScore

type Survey = survey.Survey
type SurveyTeam = survey.SurveyTeam
type SurveyQuestion = survey.SurveyQuestion
type SurveyResponse = survey.SurveyResponse
type SurveyAnswer = survey.SurveyAnswer

// Models lists every persisted model in migration order.
func Models() []any {
	return []any{
		&Company{},
		&Team{},
		&User{},
		&TeamMembership{},

		&HappinessScoreSubmission{},
		&HappinessScore{},

		&Survey{},
		&SurveyTeam{},
		&SurveyQuestion{},
		&SurveyResponse{},
		&SurveyAnswer{},
	}
}
