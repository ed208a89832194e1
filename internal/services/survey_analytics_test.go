package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/yungbote/bloom-backend/internal/data/repos"
	"github.com/yungbote/bloom-backend/internal/data/repos/testutil"
	types "github.com/yungbote/bloom-backend/internal/domain"
	"github.com/yungbote/bloom-backend/internal/domain/survey"
	"github.com/yungbote/bloom-backend/internal/platform/apierr"
	"github.com/yungbote/bloom-backend/internal/platform/dbctx"
)

func newSurveyService(t *testing.T) (SurveyService, repos.SurveyResponseRepo, *happinessEnv) {
	t.Helper()
	env := newHappinessEnv(t)
	logg := testutil.Logger(t)
	responses := repos.NewSurveyResponseRepo(env.db, logg)
	svc := NewSurveyService(
		env.db,
		logg,
		repos.NewSurveyRepo(env.db, logg),
		repos.NewSurveyQuestionRepo(env.db, logg),
		responses,
		repos.NewTeamRepo(env.db, logg),
		repos.NewTeamMembershipRepo(env.db, logg),
	)
	return svc, responses, env
}

func TestGetSurveyAnalytics(t *testing.T) {
	svc, responses, env := newSurveyService(t)
	ctx := context.Background()

	sv := testutil.SeedSurvey(t, ctx, env.db, env.company.ID, "Pulse", true)
	rating := testutil.SeedQuestion(t, ctx, env.db, sv.ID, 1, survey.QuestionRating, "How was your week?")
	choice := testutil.SeedQuestion(t, ctx, env.db, sv.ID, 2, survey.QuestionChoice, "Preferred offsite?")
	require.NoError(t, env.db.Model(choice).Update("options", datatypes.JSON(`["beach","mountains"]`)).Error)
	text := testutil.SeedQuestion(t, ctx, env.db, sv.ID, 3, survey.QuestionText, "Anything else?")

	testutil.SeedRatingResponses(t, ctx, env.db, sv.ID, rating.ID, 5, 4, 5, 3, 5, 4, 5, 4, 5, 3)

	submit := func(teamID *uuid.UUID, answers ...*types.SurveyAnswer) {
		resp := &types.SurveyResponse{SurveyID: sv.ID, TeamID: teamID, SubmittedAt: time.Now().UTC()}
		require.NoError(t, responses.Create(dbctx.Context{Ctx: ctx}, resp, answers))
	}
	submit(&env.eng.ID,
		&types.SurveyAnswer{QuestionID: choice.ID, Choice: "mountains"},
		&types.SurveyAnswer{QuestionID: text.ID, Text: "more coffee"},
	)
	submit(&env.eng.ID,
		&types.SurveyAnswer{QuestionID: choice.ID, Choice: "city"},
		&types.SurveyAnswer{QuestionID: text.ID},
	)
	submit(&env.ops.ID, &types.SurveyAnswer{QuestionID: choice.ID, Choice: "mountains"})

	out, err := svc.GetSurveyAnalytics(ctx, env.company.ID, sv.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pulse", out.Title)
	assert.Equal(t, 13, out.TotalResponses)
	assert.Equal(t, []TeamResponseCount{
		{TeamID: env.eng.ID, TeamName: "Eng", Count: 2},
		{TeamID: env.ops.ID, TeamName: "Ops", Count: 1},
	}, out.ResponsesByTeam)

	require.Len(t, out.Questions, 3)

	rq := out.Questions[0]
	assert.Equal(t, rating.ID, rq.QuestionID)
	assert.Equal(t, 10, rq.AnswerCount)
	require.NotNil(t, rq.Average)
	assert.Equal(t, 4.3, *rq.Average)
	require.NotNil(t, rq.Distribution)
	assert.Equal(t, 20.0, rq.Distribution.Percentage(3))
	assert.Equal(t, 30.0, rq.Distribution.Percentage(4))
	assert.Equal(t, 50.0, rq.Distribution.Percentage(5))

	cq := out.Questions[1]
	assert.Equal(t, []ChoiceCount{
		{Choice: "beach", Count: 0},
		{Choice: "mountains", Count: 2},
		{Choice: "city", Count: 1},
	}, cq.Choices)
	assert.Equal(t, 3, cq.AnswerCount)
	assert.Nil(t, cq.Distribution)

	tq := out.Questions[2]
	assert.Equal(t, 1, tq.AnswerCount)
	assert.Nil(t, tq.Average)
}

func TestGetSurveyAnalyticsScopedToCompany(t *testing.T) {
	svc, _, env := newSurveyService(t)
	ctx := context.Background()

	other := testutil.SeedCompany(t, ctx, env.db, "globex")
	sv := testutil.SeedSurvey(t, ctx, env.db, other.ID, "Theirs", true)

	_, err := svc.GetSurveyAnalytics(ctx, env.company.ID, sv.ID)
	requireAPIErr(t, err, http.StatusNotFound, "survey_not_found")

	_, err = svc.GetSurveyAnalytics(ctx, env.company.ID, uuid.New())
	requireAPIErr(t, err, http.StatusNotFound, "survey_not_found")
}

func TestGetSurveyAnalyticsWithoutResponses(t *testing.T) {
	svc, _, env := newSurveyService(t)
	ctx := context.Background()

	sv := testutil.SeedSurvey(t, ctx, env.db, env.company.ID, "Quiet", false, env.ops.ID)
	testutil.SeedQuestion(t, ctx, env.db, sv.ID, 1, survey.QuestionRating, "Rate it")

	out, err := svc.GetSurveyAnalytics(ctx, env.company.ID, sv.ID)
	require.NoError(t, err)
	assert.Zero(t, out.TotalResponses)
	assert.Empty(t, out.ResponsesByTeam)
	require.Len(t, out.Questions, 1)
	assert.Equal(t, 0.0, *out.Questions[0].Average)
	assert.Len(t, out.Questions[0].Distribution.Buckets, 5)
}

func TestGetSurveyAnalyticsSkipsOutOfRangeRatings(t *testing.T) {
	svc, _, env := newSurveyService(t)
	ctx := context.Background()

	sv := testutil.SeedSurvey(t, ctx, env.db, env.company.ID, "Legacy", true)
	q := testutil.SeedQuestion(t, ctx, env.db, sv.ID, 1, survey.QuestionRating, "Rate it")
	testutil.SeedRatingResponses(t, ctx, env.db, sv.ID, q.ID, 5, 0, 9)

	out, err := svc.GetSurveyAnalytics(ctx, env.company.ID, sv.ID)
	require.NoError(t, err)
	require.Len(t, out.Questions, 1)
	rq := out.Questions[0]
	assert.Equal(t, 1, rq.AnswerCount)
	assert.Equal(t, 5.0, *rq.Average)
	assert.Equal(t, 1, rq.Distribution.Total)
	assert.Equal(t, 100.0, rq.Distribution.Percentage(5))
}

func TestGetSurveyAnalyticsRejectsMalformedOptions(t *testing.T) {
	svc, responses, env := newSurveyService(t)
	ctx := context.Background()

	sv := testutil.SeedSurvey(t, ctx, env.db, env.company.ID, "Broken", true)
	q := testutil.SeedQuestion(t, ctx, env.db, sv.ID, 1, survey.QuestionChoice, "Pick one")
	require.NoError(t, env.db.Model(q).Update("options", datatypes.JSON(`{"beach":true}`)).Error)
	resp := &types.SurveyResponse{SurveyID: sv.ID, SubmittedAt: time.Now().UTC()}
	require.NoError(t, responses.Create(dbctx.Context{Ctx: ctx}, resp, []*types.SurveyAnswer{{QuestionID: q.ID, Choice: "beach"}}))

	out, err := svc.GetSurveyAnalytics(ctx, env.company.ID, sv.ID)
	require.Error(t, err)
	assert.Nil(t, out)
	assert.Contains(t, err.Error(), q.ID.String())
	var ae *apierr.Error
	assert.False(t, errors.As(err, &ae), "decode failures are internal errors")
}

func TestListVisibleSurveys(t *testing.T) {
	svc, _, env := newSurveyService(t)
	ctx := context.Background()

	global := testutil.SeedSurvey(t, ctx, env.db, env.company.ID, "All hands", true)
	eng := testutil.SeedSurvey(t, ctx, env.db, env.company.ID, "Eng retro", false, env.eng.ID)
	ops := testutil.SeedSurvey(t, ctx, env.db, env.company.ID, "Ops retro", false, env.ops.ID)

	ids := func(list []*types.Survey) []uuid.UUID {
		out := make([]uuid.UUID, 0, len(list))
		for _, s := range list {
			out = append(out, s.ID)
		}
		return out
	}

	member, err := svc.ListVisibleSurveys(ctx, env.company.ID, env.member.ID, false)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{global.ID, eng.ID}, ids(member))

	loner, err := svc.ListVisibleSurveys(ctx, env.company.ID, env.loner.ID, false)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{global.ID}, ids(loner))

	admin, err := svc.ListVisibleSurveys(ctx, env.company.ID, env.loner.ID, true)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{global.ID, eng.ID, ops.ID}, ids(admin))
}
