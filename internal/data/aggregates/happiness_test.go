package aggregates_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/bloom-backend/internal/data/aggregates"
	aggtest "github.com/yungbote/bloom-backend/internal/data/aggregates/testutil"
	"github.com/yungbote/bloom-backend/internal/data/repos"
	repotest "github.com/yungbote/bloom-backend/internal/data/repos/testutil"
	types "github.com/yungbote/bloom-backend/internal/domain"
	domainagg "github.com/yungbote/bloom-backend/internal/domain/aggregates"
	"github.com/yungbote/bloom-backend/internal/domain/happiness"
)

const submitOp = "Happiness.SubmissionAggregate.Submit"

type fixture struct {
	db      *gorm.DB
	agg     domainagg.HappinessSubmissionAggregate
	hooks   *aggtest.HooksRecorder
	company *types.Company
	team    *types.Team
	user    *types.User
}

func newFixture(t *testing.T, runner aggregates.TxRunner) fixture {
	t.Helper()
	db := repotest.DB(t)
	ctx := context.Background()
	logg := repotest.Logger(t)

	co := repotest.SeedCompany(t, ctx, db, "acme")
	team := repotest.SeedTeam(t, ctx, db, co.ID, "Eng")
	u := repotest.SeedUser(t, ctx, db, co.ID, "dev@acme.test", types.RoleMember)

	hooks := &aggtest.HooksRecorder{}
	if runner == nil {
		runner = aggregates.NewGormTxRunner(db)
	}
	agg := aggregates.NewHappinessSubmissionAggregate(aggregates.HappinessSubmissionAggregateDeps{
		Base:        aggregates.BaseDeps{DB: db, Log: logg, Runner: runner, Hooks: hooks},
		Submissions: repos.NewHappinessSubmissionRepo(db, logg),
		Scores:      repos.NewHappinessScoreRepo(db, logg),
	})
	return fixture{db: db, agg: agg, hooks: hooks, company: co, team: team, user: u}
}

func (f fixture) input(score int, week time.Time) domainagg.SubmitHappinessInput {
	return domainagg.SubmitHappinessInput{
		UserID:      f.user.ID,
		CompanyID:   f.company.ID,
		TeamID:      f.team.ID,
		Score:       score,
		WeekStart:   week,
		SubmittedAt: week.Add(10 * time.Hour),
	}
}

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

var week = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func TestSubmitPersistsMarkerAndAnonymousScore(t *testing.T) {
	f := newFixture(t, nil)

	res, err := f.agg.Submit(context.Background(), f.input(7, week))
	require.NoError(t, err)
	assert.True(t, res.WeekStart.Equal(week))

	var sub types.HappinessScoreSubmission
	require.NoError(t, f.db.First(&sub).Error)
	assert.Equal(t, f.user.ID, sub.UserID)

	var score types.HappinessScore
	require.NoError(t, f.db.First(&score).Error)
	assert.Equal(t, 7, score.Score)
	assert.Equal(t, f.team.ID, score.TeamID)
	assert.Equal(t, f.company.ID, score.CompanyID)

	assert.Equal(t, []string{"success"}, f.hooks.Statuses(submitOp))
	assert.Equal(t, domainagg.HappinessSubmissionContract, f.agg.Contract())
}

func TestSubmitTwiceSameWeekConflicts(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.agg.Submit(ctx, f.input(8, week))
	require.NoError(t, err)

	_, err = f.agg.Submit(ctx, f.input(2, week))
	require.Error(t, err)
	assert.True(t, domainagg.IsCode(err, domainagg.CodeConflict), "%v", err)

	assert.EqualValues(t, 1, count(t, f.db, &types.HappinessScoreSubmission{}))
	assert.EqualValues(t, 1, count(t, f.db, &types.HappinessScore{}))
	assert.Equal(t, []string{submitOp}, f.hooks.Conflicts)

	_, err = f.agg.Submit(ctx, f.input(5, week.AddDate(0, 0, 7)))
	require.NoError(t, err)
	assert.EqualValues(t, 2, count(t, f.db, &types.HappinessScore{}))
}

func TestSubmitValidation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	for _, score := range []int{0, 11, -3} {
		_, err := f.agg.Submit(ctx, f.input(score, week))
		assert.True(t, domainagg.IsCode(err, domainagg.CodeValidation), "score %d: %v", score, err)
		assert.ErrorIs(t, err, happiness.ErrInvalidScore, "score %d", score)
	}

	in := f.input(5, week)
	in.TeamID = uuid.Nil
	_, err := f.agg.Submit(ctx, in)
	assert.True(t, domainagg.IsCode(err, domainagg.CodeValidation))
	assert.NotErrorIs(t, err, happiness.ErrInvalidScore)

	in = f.input(5, time.Time{})
	_, err = f.agg.Submit(ctx, in)
	assert.True(t, domainagg.IsCode(err, domainagg.CodeValidation))

	assert.EqualValues(t, 0, count(t, f.db, &types.HappinessScoreSubmission{}))
}

func TestSubmitCommitFailureLeavesNothing(t *testing.T) {
	runner := &aggtest.InjectedTxRunner{FailCommit: errors.New("connection reset")}
	f := newFixture(t, runner)
	runner.DB = f.db

	_, err := f.agg.Submit(context.Background(), f.input(6, week))
	require.Error(t, err)
	assert.True(t, domainagg.IsCode(err, domainagg.CodeInternal))

	assert.EqualValues(t, 0, count(t, f.db, &types.HappinessScoreSubmission{}))
	assert.EqualValues(t, 0, count(t, f.db, &types.HappinessScore{}))
	assert.Equal(t, 1, runner.RollbackCalls)
}

func TestConcurrentSubmitsAcceptExactlyOne(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	const n = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(score int) {
			defer wg.Done()
			_, err := f.agg.Submit(ctx, f.input(score, week))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case domainagg.IsCode(err, domainagg.CodeConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i%10 + 1)
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflicts)
	assert.EqualValues(t, 1, count(t, f.db, &types.HappinessScore{}))
}
