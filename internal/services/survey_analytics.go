package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/bloom-backend/internal/data/repos"
	types "github.com/yungbote/bloom-backend/internal/domain"
	"github.com/yungbote/bloom-backend/internal/domain/survey"
	"github.com/yungbote/bloom-backend/internal/platform/apierr"
	"github.com/yungbote/bloom-backend/internal/platform/dbctx"
	"github.com/yungbote/bloom-backend/internal/platform/logger"
)

type ChoiceCount struct {
	Choice string `json:"choice"`
	Count  int    `json:"count"`
}

type QuestionAnalytics struct {
	QuestionID   uuid.UUID            `json:"question_id"`
	Prompt       string               `json:"prompt"`
	Kind         string               `json:"kind"`
	AnswerCount  int                  `json:"answer_count"`
	Average      *float64             `json:"average,omitempty"`
	Distribution *survey.Distribution `json:"distribution,omitempty"`
	Choices      []ChoiceCount        `json:"choices,omitempty"`
}

type TeamResponseCount struct {
	TeamID   uuid.UUID `json:"team_id"`
	TeamName string    `json:"team_name"`
	Count    int       `json:"count"`
}

type SurveyAnalytics struct {
	SurveyID        uuid.UUID           `json:"survey_id"`
	Title           string              `json:"title"`
	TotalResponses  int                 `json:"total_responses"`
	ResponsesByTeam []TeamResponseCount `json:"responses_by_team"`
	Questions       []QuestionAnalytics `json:"questions"`
}

type SurveyService interface {
	ListVisibleSurveys(ctx context.Context, companyID, userID uuid.UUID, isAdmin bool) ([]*types.Survey, error)
	GetSurveyAnalytics(ctx context.Context, companyID, surveyID uuid.UUID) (*SurveyAnalytics, error)
}

type surveyService struct {
	db          *gorm.DB
	log         *logger.Logger
	surveys     repos.SurveyRepo
	questions   repos.SurveyQuestionRepo
	responses   repos.SurveyResponseRepo
	teams       repos.TeamRepo
	memberships repos.TeamMembershipRepo
}

func NewSurveyService(
	db *gorm.DB,
	log *logger.Logger,
	surveys repos.SurveyRepo,
	questions repos.SurveyQuestionRepo,
	responses repos.SurveyResponseRepo,
	teams repos.TeamRepo,
	memberships repos.TeamMembershipRepo,
) SurveyService {
	return &surveyService{
		db:          db,
		log:         log.With("service", "SurveyService"),
		surveys:     surveys,
		questions:   questions,
		responses:   responses,
		teams:       teams,
		memberships: memberships,
	}
}

func (s *surveyService) ListVisibleSurveys(ctx context.Context, companyID, userID uuid.UUID, isAdmin bool) ([]*types.Survey, error) {
	dbc := dbctx.Context{Ctx: ctx}
	var teamIDs []uuid.UUID
	if !isAdmin {
		ids, err := s.memberships.ActiveTeamIDs(dbc, userID, companyID)
		if err != nil {
			return nil, fmt.Errorf("list active teams: %w", err)
		}
		teamIDs = ids
	}
	list, err := s.surveys.ListVisible(dbc, companyID, teamIDs, isAdmin)
	if err != nil {
		return nil, fmt.Errorf("list surveys: %w", err)
	}
	return list, nil
}

func (s *surveyService) GetSurveyAnalytics(ctx context.Context, companyID, surveyID uuid.UUID) (*SurveyAnalytics, error) {
	var out *SurveyAnalytics
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		sv, err := s.surveys.GetByID(dbc, companyID, surveyID)
		if err != nil {
			return fmt.Errorf("load survey: %w", err)
		}
		if sv == nil {
			return apierr.NotFound("survey_not_found", fmt.Errorf("survey %s not found", surveyID))
		}
		questions, err := s.questions.ListBySurvey(dbc, surveyID)
		if err != nil {
			return fmt.Errorf("list questions: %w", err)
		}
		answers, err := s.responses.AnswersBySurvey(dbc, surveyID)
		if err != nil {
			return fmt.Errorf("list answers: %w", err)
		}
		byTeam, err := s.responses.CountByTeam(dbc, surveyID)
		if err != nil {
			return fmt.Errorf("count responses by team: %w", err)
		}
		total, err := s.responses.CountBySurvey(dbc, surveyID)
		if err != nil {
			return fmt.Errorf("count responses: %w", err)
		}
		teams, err := s.teams.ListByCompany(dbc, companyID)
		if err != nil {
			return fmt.Errorf("list teams: %w", err)
		}

		out, err = buildSurveyAnalytics(sv, questions, answers, byTeam, teams)
		if err != nil {
			return err
		}
		out.TotalResponses = int(total)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func buildSurveyAnalytics(sv *types.Survey, questions []*types.SurveyQuestion, answers []*types.SurveyAnswer, byTeam map[uuid.UUID]int, teams []*types.Team) (*SurveyAnalytics, error) {
	grouped := make(map[uuid.UUID][]*types.SurveyAnswer, len(questions))
	for _, a := range answers {
		grouped[a.QuestionID] = append(grouped[a.QuestionID], a)
	}

	out := &SurveyAnalytics{
		SurveyID:        sv.ID,
		Title:           sv.Title,
		ResponsesByTeam: make([]TeamResponseCount, 0, len(byTeam)),
		Questions:       make([]QuestionAnalytics, 0, len(questions)),
	}
	for _, t := range teams {
		if n, ok := byTeam[t.ID]; ok {
			out.ResponsesByTeam = append(out.ResponsesByTeam, TeamResponseCount{TeamID: t.ID, TeamName: t.Name, Count: n})
		}
	}

	for _, q := range questions {
		qa := QuestionAnalytics{QuestionID: q.ID, Prompt: q.Prompt, Kind: q.Kind}
		list := grouped[q.ID]
		switch q.Kind {
		case survey.QuestionRating:
			ratings := make([]int, 0, len(list))
			for _, a := range list {
				if a.Rating != nil {
					ratings = append(ratings, *a.Rating)
				}
			}
			dist := survey.CalculateDistribution(ratings)
			avg := survey.CalculateAverage(ratings)
			qa.AnswerCount = dist.Total
			qa.Distribution = &dist
			qa.Average = &avg
		case survey.QuestionChoice:
			choices, err := countChoices(q, list)
			if err != nil {
				return nil, err
			}
			qa.Choices = choices
			for _, c := range qa.Choices {
				qa.AnswerCount += c.Count
			}
		default:
			for _, a := range list {
				if a.Text != "" {
					qa.AnswerCount++
				}
			}
		}
		out.Questions = append(out.Questions, qa)
	}
	return out, nil
}

// countChoices lists the question's declared options first, then any unknown answers in first-seen order.
func countChoices(q *types.SurveyQuestion, answers []*types.SurveyAnswer) ([]ChoiceCount, error) {
	var options []string
	if len(q.Options) > 0 {
		if err := json.Unmarshal(q.Options, &options); err != nil {
			return nil, fmt.Errorf("decode options for question %s: %w", q.ID, err)
		}
	}
	out := make([]ChoiceCount, 0, len(options))
	index := make(map[string]int, len(options))
	for _, o := range options {
		if _, dup := index[o]; dup {
			continue
		}
		index[o] = len(out)
		out = append(out, ChoiceCount{Choice: o})
	}
	for _, a := range answers {
		if a.Choice == "" {
			continue
		}
		i, ok := index[a.Choice]
		if !ok {
			i = len(out)
			index[a.Choice] = i
			out = append(out, ChoiceCount{Choice: a.Choice})
		}
		out[i].Count++
	}
	return out, nil
}
