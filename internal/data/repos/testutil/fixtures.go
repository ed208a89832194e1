package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	types "github.com/yungbote/bloom-backend/internal/domain"
	"gorm.io/gorm"
)

func SeedCompany(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Company {
	tb.Helper()
	c := &types.Company{
		ID:   uuid.New(),
		Name: name,
		Slug: name + "-" + uuid.NewString()[:8],
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed company: %v", err)
	}
	return c
}

func SeedTeam(tb testing.TB, ctx context.Context, tx *gorm.DB, companyID uuid.UUID, name string) *types.Team {
	tb.Helper()
	t := &types.Team{
		ID:        uuid.New(),
		CompanyID: companyID,
		Name:      name,
	}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed team: %v", err)
	}
	return t
}

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, companyID uuid.UUID, email, role string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:        uuid.New(),
		CompanyID: companyID,
		Email:     email,
		FirstName: "A",
		LastName:  "B",
		Role:      role,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedMembership(tb testing.TB, ctx context.Context, tx *gorm.DB, teamID, userID uuid.UUID, joinedAt time.Time) *types.TeamMembership {
	tb.Helper()
	m := &types.TeamMembership{
		ID:       uuid.New(),
		TeamID:   teamID,
		UserID:   userID,
		Role:     types.RoleMember,
		JoinedAt: joinedAt.UTC(),
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed membership: %v", err)
	}
	return m
}

func SeedScore(tb testing.TB, ctx context.Context, tx *gorm.DB, companyID, teamID uuid.UUID, score int, weekStart time.Time) *types.HappinessScore {
	tb.Helper()
	s := &types.HappinessScore{
		ID:            uuid.New(),
		TeamID:        teamID,
		CompanyID:     companyID,
		Score:         score,
		WeekStartDate: weekStart.UTC(),
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed score: %v", err)
	}
	return s
}

func SeedSurvey(tb testing.TB, ctx context.Context, tx *gorm.DB, companyID uuid.UUID, title string, global bool, teamIDs ...uuid.UUID) *types.Survey {
	tb.Helper()
	s := &types.Survey{
		ID:        uuid.New(),
		CompanyID: companyID,
		Title:     title,
		IsGlobal:  global,
		Status:    "active",
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed survey: %v", err)
	}
	for _, teamID := range teamIDs {
		if err := tx.WithContext(ctx).Create(&types.SurveyTeam{SurveyID: s.ID, TeamID: teamID}).Error; err != nil {
			tb.Fatalf("seed survey team: %v", err)
		}
	}
	return s
}

func SeedQuestion(tb testing.TB, ctx context.Context, tx *gorm.DB, surveyID uuid.UUID, position int, kind, prompt string) *types.SurveyQuestion {
	tb.Helper()
	q := &types.SurveyQuestion{
		ID:       uuid.New(),
		SurveyID: surveyID,
		Position: position,
		Kind:     kind,
		Prompt:   prompt,
	}
	if err := tx.WithContext(ctx).Create(q).Error; err != nil {
		tb.Fatalf("seed question: %v", err)
	}
	return q
}

// SeedRatingResponses stores one response per rating, each answering questionID.
func SeedRatingResponses(tb testing.TB, ctx context.Context, tx *gorm.DB, surveyID, questionID uuid.UUID, ratings ...int) {
	tb.Helper()
	for _, r := range ratings {
		rating := r
		resp := &types.SurveyResponse{ID: uuid.New(), SurveyID: surveyID, SubmittedAt: time.Now().UTC()}
		if err := tx.WithContext(ctx).Create(resp).Error; err != nil {
			tb.Fatalf("seed response: %v", err)
		}
		ans := &types.SurveyAnswer{ID: uuid.New(), ResponseID: resp.ID, QuestionID: questionID, Rating: &rating}
		if err := tx.WithContext(ctx).Create(ans).Error; err != nil {
			tb.Fatalf("seed answer: %v", err)
		}
	}
}
