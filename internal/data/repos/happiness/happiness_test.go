package happiness

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/bloom-backend/internal/data/repos/testutil"
	types "github.com/yungbote/bloom-backend/internal/domain"
	"github.com/yungbote/bloom-backend/internal/platform/dbctx"
)

func TestSubmissionRepoInsertIfAbsent(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewSubmissionRepo(db, testutil.Logger(t))
	userID := uuid.New()
	week := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	ok, err := repo.Exists(dbc, userID, week)
	require.NoError(t, err)
	assert.False(t, ok)

	inserted, err := repo.InsertIfAbsent(dbc, &types.HappinessScoreSubmission{UserID: userID, WeekStartDate: week, SubmittedAt: week.Add(time.Hour)})
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.InsertIfAbsent(dbc, &types.HappinessScoreSubmission{UserID: userID, WeekStartDate: week, SubmittedAt: week.Add(2 * time.Hour)})
	require.NoError(t, err)
	assert.False(t, inserted)

	ok, err = repo.Exists(dbc, userID, week)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(dbc, userID, week.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.False(t, ok)

	var n int64
	require.NoError(t, tx.Model(&types.HappinessScoreSubmission{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestScoreRepoListByCompanySince(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewScoreRepo(db, testutil.Logger(t))
	co := testutil.SeedCompany(t, ctx, tx, "acme")
	other := testutil.SeedCompany(t, ctx, tx, "globex")
	a := testutil.SeedTeam(t, ctx, tx, co.ID, "A")
	b := testutil.SeedTeam(t, ctx, tx, co.ID, "B")
	x := testutil.SeedTeam(t, ctx, tx, other.ID, "X")

	w1 := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	w2 := w1.AddDate(0, 0, 7)
	old := w1.AddDate(0, 0, -70)

	require.NoError(t, repo.Create(dbc, &types.HappinessScore{CompanyID: co.ID, TeamID: a.ID, Score: 8, WeekStartDate: w1}))
	require.NoError(t, repo.Create(dbc, &types.HappinessScore{CompanyID: co.ID, TeamID: b.ID, Score: 6, WeekStartDate: w2}))
	require.NoError(t, repo.Create(dbc, &types.HappinessScore{CompanyID: co.ID, TeamID: a.ID, Score: 2, WeekStartDate: old}))
	require.NoError(t, repo.Create(dbc, &types.HappinessScore{CompanyID: other.ID, TeamID: x.ID, Score: 10, WeekStartDate: w1}))

	all, err := repo.ListByCompanySince(dbc, co.ID, w1.AddDate(0, 0, -1), nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 8, all[0].Score)
	assert.Equal(t, 6, all[1].Score)

	onlyB, err := repo.ListByCompanySince(dbc, co.ID, old, []uuid.UUID{b.ID})
	require.NoError(t, err)
	require.Len(t, onlyB, 1)
	assert.Equal(t, b.ID, onlyB[0].TeamID)
}

func TestScoreRangeConstraint(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	repo := NewScoreRepo(db, testutil.Logger(t))
	co := testutil.SeedCompany(t, ctx, tx, "acme")
	team := testutil.SeedTeam(t, ctx, tx, co.ID, "A")

	err := repo.Create(dbctx.Context{Ctx: ctx, Tx: tx}, &types.HappinessScore{
		CompanyID:     co.ID,
		TeamID:        team.ID,
		Score:         11,
		WeekStartDate: time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
	})
	require.Error(t, err)
}
