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
	"gorm.io/gorm"

	"github.com/yungbote/bloom-backend/internal/data/aggregates"
	"github.com/yungbote/bloom-backend/internal/data/repos"
	"github.com/yungbote/bloom-backend/internal/data/repos/testutil"
	types "github.com/yungbote/bloom-backend/internal/domain"
	domainagg "github.com/yungbote/bloom-backend/internal/domain/aggregates"
	"github.com/yungbote/bloom-backend/internal/domain/happiness"
	"github.com/yungbote/bloom-backend/internal/observability"
	"github.com/yungbote/bloom-backend/internal/platform/apierr"
	"github.com/yungbote/bloom-backend/internal/platform/dbctx"
)

var testNow = time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)

type happinessEnv struct {
	db      *gorm.DB
	svc     HappinessService
	company *types.Company
	eng     *types.Team
	ops     *types.Team
	member  *types.User
	loner   *types.User
	now     time.Time
}

type happinessEnvOption func(*happinessEnvConfig)

type happinessEnvConfig struct {
	aggregate  domainagg.HappinessSubmissionAggregate
	wrapScores func(env *happinessEnv, inner repos.HappinessScoreRepo) repos.HappinessScoreRepo
}

func withAggregate(agg domainagg.HappinessSubmissionAggregate) happinessEnvOption {
	return func(c *happinessEnvConfig) { c.aggregate = agg }
}

// withScoreRepo lets a test interpose on the reads the analytics path makes.
func withScoreRepo(wrap func(env *happinessEnv, inner repos.HappinessScoreRepo) repos.HappinessScoreRepo) happinessEnvOption {
	return func(c *happinessEnvConfig) { c.wrapScores = wrap }
}

func newHappinessEnv(t *testing.T, opts ...happinessEnvOption) *happinessEnv {
	t.Helper()
	var cfg happinessEnvConfig
	for _, o := range opts {
		o(&cfg)
	}
	db := testutil.DB(t)
	ctx := context.Background()
	logg := testutil.Logger(t)

	env := &happinessEnv{db: db, now: testNow}
	env.company = testutil.SeedCompany(t, ctx, db, "acme")
	env.eng = testutil.SeedTeam(t, ctx, db, env.company.ID, "Eng")
	env.ops = testutil.SeedTeam(t, ctx, db, env.company.ID, "Ops")
	env.member = testutil.SeedUser(t, ctx, db, env.company.ID, "dev@acme.test", types.RoleMember)
	env.loner = testutil.SeedUser(t, ctx, db, env.company.ID, "loner@acme.test", types.RoleMember)
	testutil.SeedMembership(t, ctx, db, env.eng.ID, env.member.ID, testNow.AddDate(-1, 0, 0))

	submissions := repos.NewHappinessSubmissionRepo(db, logg)
	scores := repos.NewHappinessScoreRepo(db, logg)
	agg := cfg.aggregate
	if agg == nil {
		agg = aggregates.NewHappinessSubmissionAggregate(aggregates.HappinessSubmissionAggregateDeps{
			Base:        aggregates.BaseDeps{DB: db, Log: logg},
			Submissions: submissions,
			Scores:      scores,
		})
	}
	analyticsScores := scores
	if cfg.wrapScores != nil {
		analyticsScores = cfg.wrapScores(env, scores)
	}
	env.svc = NewHappinessService(HappinessServiceDeps{
		DB:          db,
		Log:         logg,
		Aggregate:   agg,
		Submissions: submissions,
		Scores:      analyticsScores,
		Teams:       repos.NewTeamRepo(db, logg),
		Memberships: repos.NewTeamMembershipRepo(db, logg),
		Cache:       NewMemoryAnalyticsCache(64, time.Minute),
		Metrics:     observability.NewMetrics(time.Minute),
		Location:    time.UTC,
		Now:         func() time.Time { return env.now },
	})
	return env
}

func (e *happinessEnv) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Count(&n).Error)
	return n
}

func requireAPIErr(t *testing.T, err error, status int, code string) {
	t.Helper()
	require.Error(t, err)
	var ae *apierr.Error
	require.True(t, errors.As(err, &ae), "expected *apierr.Error, got %T: %v", err, err)
	assert.Equal(t, status, ae.Status)
	assert.Equal(t, code, ae.Code)
}

func TestSubmitHappinessScore(t *testing.T) {
	env := newHappinessEnv(t)
	ctx := context.Background()

	done, err := env.svc.HasUserSubmittedThisWeek(ctx, env.member.ID)
	require.NoError(t, err)
	assert.False(t, done)

	sub, err := env.svc.SubmitHappinessScore(ctx, env.member.ID, env.company.ID, 3.5)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), sub.WeekStart)

	done, err = env.svc.HasUserSubmittedThisWeek(ctx, env.member.ID)
	require.NoError(t, err)
	assert.True(t, done)

	var score types.HappinessScore
	require.NoError(t, env.db.First(&score).Error)
	assert.Equal(t, 7, score.Score)
	assert.Equal(t, env.eng.ID, score.TeamID)

	_, err = env.svc.SubmitHappinessScore(ctx, env.member.ID, env.company.ID, 5)
	requireAPIErr(t, err, http.StatusConflict, "already_submitted")
	assert.EqualValues(t, 1, env.count(t, &types.HappinessScore{}))

	// A new week opens a new slot.
	env.now = testNow.AddDate(0, 0, 6)
	done, err = env.svc.HasUserSubmittedThisWeek(ctx, env.member.ID)
	require.NoError(t, err)
	assert.False(t, done)
	_, err = env.svc.SubmitHappinessScore(ctx, env.member.ID, env.company.ID, 5)
	require.NoError(t, err)
	assert.EqualValues(t, 2, env.count(t, &types.HappinessScore{}))
}

func TestSubmitHappinessScoreRejectsInvalidScores(t *testing.T) {
	env := newHappinessEnv(t)
	for _, s := range []float64{0, 0.3, 5.25, 5.5, -1} {
		_, err := env.svc.SubmitHappinessScore(context.Background(), env.member.ID, env.company.ID, s)
		requireAPIErr(t, err, http.StatusBadRequest, "invalid_score")
	}
	assert.EqualValues(t, 0, env.count(t, &types.HappinessScoreSubmission{}))
}

func TestSubmitHappinessScoreRoundsOffStepScores(t *testing.T) {
	env := newHappinessEnv(t)
	_, err := env.svc.SubmitHappinessScore(context.Background(), env.member.ID, env.company.ID, 3.3)
	require.NoError(t, err)

	var score types.HappinessScore
	require.NoError(t, env.db.First(&score).Error)
	assert.Equal(t, 7, score.Score)
}

type stubAggregate struct {
	err error
}

func (stubAggregate) Contract() domainagg.Contract { return domainagg.HappinessSubmissionContract }

func (a stubAggregate) Submit(context.Context, domainagg.SubmitHappinessInput) (domainagg.SubmitHappinessResult, error) {
	return domainagg.SubmitHappinessResult{}, a.err
}

func TestSubmitHappinessScoreMapsAggregateValidation(t *testing.T) {
	scoreErr := aggregates.MapError("submit", errors.Join(aggregates.ErrValidation, happiness.ErrInvalidScore))
	env := newHappinessEnv(t, withAggregate(stubAggregate{err: scoreErr}))
	_, err := env.svc.SubmitHappinessScore(context.Background(), env.member.ID, env.company.ID, 4)
	requireAPIErr(t, err, http.StatusBadRequest, "invalid_score")

	internalErr := aggregates.MapError("submit", aggregates.ValidationError("team id is required"))
	env = newHappinessEnv(t, withAggregate(stubAggregate{err: internalErr}))
	_, err = env.svc.SubmitHappinessScore(context.Background(), env.member.ID, env.company.ID, 4)
	require.Error(t, err)
	var ae *apierr.Error
	assert.False(t, errors.As(err, &ae), "internal validation failure must not reach the caller as %v", ae)
	assert.True(t, domainagg.IsCode(err, domainagg.CodeValidation))
}

func TestSubmitHappinessScoreWithoutTeam(t *testing.T) {
	env := newHappinessEnv(t)
	_, err := env.svc.SubmitHappinessScore(context.Background(), env.loner.ID, env.company.ID, 4)
	requireAPIErr(t, err, http.StatusBadRequest, "no_team")
	assert.EqualValues(t, 0, env.count(t, &types.HappinessScoreSubmission{}))
	assert.EqualValues(t, 0, env.count(t, &types.HappinessScore{}))
}

func TestWeeklyAnalyticsScopes(t *testing.T) {
	env := newHappinessEnv(t)
	ctx := context.Background()
	week := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	prev := week.AddDate(0, 0, -7)

	for _, s := range []int{4, 5, 3, 5, 4} {
		testutil.SeedScore(t, ctx, env.db, env.company.ID, env.eng.ID, s, week)
	}
	for _, s := range []int{10, 9, 10, 9, 10} {
		testutil.SeedScore(t, ctx, env.db, env.company.ID, env.ops.ID, s, prev)
	}

	data, err := env.svc.GetWeeklyHappinessAnalytics(ctx, env.company.ID, WeeklyAnalyticsOptions{CompanyLevel: true})
	require.NoError(t, err)
	require.Len(t, data, DefaultAnalyticsWeeks)
	last := data[len(data)-1]
	assert.Equal(t, "2025-03-10", last.Period)
	require.Len(t, last.Teams, 2)
	assert.InDelta(t, 2.1, last.Teams[0].Average, 0.1)
	assert.Equal(t, "Eng", last.Teams[0].TeamName)
	assert.Zero(t, last.Teams[1].Average)
	assert.InDelta(t, 4.8, data[len(data)-2].Teams[1].Average, 0.1)
	assert.Zero(t, data[0].CompanyAverage)

	// Default scope is the caller's primary team.
	data, err = env.svc.GetWeeklyHappinessAnalytics(ctx, env.company.ID, WeeklyAnalyticsOptions{UserID: env.member.ID, Weeks: 4})
	require.NoError(t, err)
	require.Len(t, data, 4)
	require.Len(t, data[3].Teams, 1)
	assert.Equal(t, env.eng.ID, data[3].Teams[0].TeamID)

	data, err = env.svc.GetWeeklyHappinessAnalytics(ctx, env.company.ID, WeeklyAnalyticsOptions{TeamID: &env.ops.ID, Weeks: 4, ViewType: happiness.ViewMonthly})
	require.NoError(t, err)
	require.Len(t, data, 2)
	assert.Equal(t, "2025-03", data[1].Period)
	assert.InDelta(t, 4.8, data[1].Teams[0].Average, 0.1)

	foreign := uuid.New()
	_, err = env.svc.GetWeeklyHappinessAnalytics(ctx, env.company.ID, WeeklyAnalyticsOptions{TeamID: &foreign})
	requireAPIErr(t, err, http.StatusNotFound, "team_not_found")

	_, err = env.svc.GetWeeklyHappinessAnalytics(ctx, env.company.ID, WeeklyAnalyticsOptions{Weeks: 53})
	requireAPIErr(t, err, http.StatusBadRequest, "invalid_request")
}

func TestAnalyticsCacheInvalidatedOnSubmit(t *testing.T) {
	env := newHappinessEnv(t)
	ctx := context.Background()
	opts := WeeklyAnalyticsOptions{CompanyLevel: true, Weeks: 2}

	before, err := env.svc.GetWeeklyHappinessAnalytics(ctx, env.company.ID, opts)
	require.NoError(t, err)
	assert.Zero(t, before[len(before)-1].ResponseCount)

	_, err = env.svc.SubmitHappinessScore(ctx, env.member.ID, env.company.ID, 4.5)
	require.NoError(t, err)

	after, err := env.svc.GetWeeklyHappinessAnalytics(ctx, env.company.ID, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, after[len(after)-1].ResponseCount)
	assert.Equal(t, 4.5, after[len(after)-1].CompanyAverage)
}

// submitDuringLoad commits a submission right after the analytics read has loaded its rows,
// before the result is written to the cache.
type submitDuringLoad struct {
	repos.HappinessScoreRepo
	submit func()
}

func (r *submitDuringLoad) ListByCompanySince(dbc dbctx.Context, companyID uuid.UUID, since time.Time, teamIDs []uuid.UUID) ([]*types.HappinessScore, error) {
	rows, err := r.HappinessScoreRepo.ListByCompanySince(dbc, companyID, since, teamIDs)
	if f := r.submit; f != nil {
		r.submit = nil
		f()
	}
	return rows, err
}

func TestAnalyticsLoadedBeforeSubmitIsNotCached(t *testing.T) {
	ctx := context.Background()
	env := newHappinessEnv(t, withScoreRepo(func(env *happinessEnv, inner repos.HappinessScoreRepo) repos.HappinessScoreRepo {
		return &submitDuringLoad{HappinessScoreRepo: inner, submit: func() {
			_, err := env.svc.SubmitHappinessScore(ctx, env.member.ID, env.company.ID, 4)
			require.NoError(t, err)
		}}
	}))
	opts := WeeklyAnalyticsOptions{CompanyLevel: true, Weeks: 2}

	first, err := env.svc.GetWeeklyHappinessAnalytics(ctx, env.company.ID, opts)
	require.NoError(t, err)
	assert.Zero(t, first[len(first)-1].ResponseCount)

	next, err := env.svc.GetWeeklyHappinessAnalytics(ctx, env.company.ID, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, next[len(next)-1].ResponseCount)
	assert.Equal(t, 4.0, next[len(next)-1].CompanyAverage)
}

func TestGetHappinessAnalyticsByWeekAndTeam(t *testing.T) {
	env := newHappinessEnv(t)
	ctx := context.Background()
	week := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	for _, s := range []int{2, 3, 2, 4, 3} {
		testutil.SeedScore(t, ctx, env.db, env.company.ID, env.ops.ID, s, week)
	}
	testutil.SeedScore(t, ctx, env.db, env.company.ID, env.eng.ID, 8, week.AddDate(0, 0, -7))
	testutil.SeedScore(t, ctx, env.db, env.company.ID, env.eng.ID, 8, week.AddDate(0, 0, -140))

	rows, err := env.svc.GetHappinessAnalytics(ctx, env.company.ID, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "2025-03-03", rows[0].Week)
	assert.Equal(t, "Eng", rows[0].TeamName)
	assert.Equal(t, 4.0, rows[0].Average)

	assert.Equal(t, "Ops", rows[1].TeamName)
	assert.Equal(t, 14, rows[1].Sum)
	assert.Equal(t, 5, rows[1].Count)
	assert.InDelta(t, 1.4, rows[1].Average, 0.1)
}
