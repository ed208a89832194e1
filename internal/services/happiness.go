package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/bloom-backend/internal/data/repos"
	types "github.com/yungbote/bloom-backend/internal/domain"
	domainagg "github.com/yungbote/bloom-backend/internal/domain/aggregates"
	"github.com/yungbote/bloom-backend/internal/domain/happiness"
	"github.com/yungbote/bloom-backend/internal/observability"
	"github.com/yungbote/bloom-backend/internal/platform/apierr"
	"github.com/yungbote/bloom-backend/internal/platform/dbctx"
	"github.com/yungbote/bloom-backend/internal/platform/logger"
)

const (
	DefaultAnalyticsWeeks = 12
	MaxAnalyticsWeeks     = 52
)

var (
	ErrNoTeam           = errors.New("user is not an active member of any team")
	ErrAlreadySubmitted = errors.New("happiness score already submitted this week")
)

type Submission struct {
	WeekStart   time.Time `json:"week_start"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type WeeklyAnalyticsOptions struct {
	Weeks        int
	TeamID       *uuid.UUID
	CompanyLevel bool
	ViewType     happiness.ViewType
	// UserID resolves the primary team when neither TeamID nor CompanyLevel is set.
	UserID uuid.UUID
}

type HappinessService interface {
	CurrentWeekStart() time.Time
	HasUserSubmittedThisWeek(ctx context.Context, userID uuid.UUID) (bool, error)
	SubmitHappinessScore(ctx context.Context, userID, companyID uuid.UUID, score float64) (*Submission, error)
	GetWeeklyHappinessAnalytics(ctx context.Context, companyID uuid.UUID, opts WeeklyAnalyticsOptions) ([]happiness.WeeklyHappinessData, error)
	GetHappinessAnalytics(ctx context.Context, companyID uuid.UUID, weeks int) ([]happiness.TeamWeekAggregate, error)
}

type HappinessServiceDeps struct {
	DB          *gorm.DB
	Log         *logger.Logger
	Aggregate   domainagg.HappinessSubmissionAggregate
	Submissions repos.HappinessSubmissionRepo
	Scores      repos.HappinessScoreRepo
	Teams       repos.TeamRepo
	Memberships repos.TeamMembershipRepo
	Cache       AnalyticsCache
	Metrics     *observability.Metrics
	Location    *time.Location
	Now         func() time.Time
}

type happinessService struct {
	db          *gorm.DB
	log         *logger.Logger
	aggregate   domainagg.HappinessSubmissionAggregate
	submissions repos.HappinessSubmissionRepo
	scores      repos.HappinessScoreRepo
	teams       repos.TeamRepo
	memberships repos.TeamMembershipRepo
	cache       AnalyticsCache
	metrics     *observability.Metrics
	loc         *time.Location
	now         func() time.Time
}

func NewHappinessService(deps HappinessServiceDeps) HappinessService {
	s := &happinessService{
		db:          deps.DB,
		log:         deps.Log.With("service", "HappinessService"),
		aggregate:   deps.Aggregate,
		submissions: deps.Submissions,
		scores:      deps.Scores,
		teams:       deps.Teams,
		memberships: deps.Memberships,
		cache:       deps.Cache,
		metrics:     deps.Metrics,
		loc:         deps.Location,
		now:         deps.Now,
	}
	if s.cache == nil {
		s.cache = NewNoopAnalyticsCache()
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *happinessService) CurrentWeekStart() time.Time {
	return happiness.WeekStartIn(s.now(), s.loc)
}

func (s *happinessService) HasUserSubmittedThisWeek(ctx context.Context, userID uuid.UUID) (bool, error) {
	ok, err := s.submissions.Exists(dbctx.Context{Ctx: ctx}, userID, s.CurrentWeekStart())
	if err != nil {
		return false, fmt.Errorf("check weekly submission: %w", err)
	}
	return ok, nil
}

func (s *happinessService) SubmitHappinessScore(ctx context.Context, userID, companyID uuid.UUID, score float64) (*Submission, error) {
	stored, err := happiness.ToStored(score)
	if err != nil {
		s.metrics.IncHappinessSubmission("invalid")
		return nil, apierr.BadRequest("invalid_score", err)
	}

	team, err := s.memberships.PrimaryTeam(dbctx.Context{Ctx: ctx}, userID, companyID)
	if err != nil {
		s.metrics.IncHappinessSubmission("error")
		return nil, fmt.Errorf("resolve primary team: %w", err)
	}
	if team == nil {
		s.metrics.IncHappinessSubmission("no_team")
		return nil, apierr.BadRequest("no_team", ErrNoTeam)
	}

	now := s.now()
	res, err := s.aggregate.Submit(ctx, domainagg.SubmitHappinessInput{
		UserID:      userID,
		CompanyID:   companyID,
		TeamID:      team.ID,
		Score:       stored,
		WeekStart:   happiness.WeekStartIn(now, s.loc),
		SubmittedAt: now,
	})
	if err != nil {
		switch domainagg.CodeOf(err) {
		case domainagg.CodeConflict:
			s.metrics.IncHappinessSubmission("already_submitted")
			return nil, apierr.Conflict("already_submitted", ErrAlreadySubmitted)
		case domainagg.CodeValidation:
			// Only the score is caller input; any other validation failure is ours.
			if errors.Is(err, happiness.ErrInvalidScore) {
				s.metrics.IncHappinessSubmission("invalid")
				return nil, apierr.BadRequest("invalid_score", err)
			}
		}
		s.metrics.IncHappinessSubmission("error")
		return nil, err
	}
	s.metrics.IncHappinessSubmission("accepted")

	if err := s.cache.Invalidate(ctx, companyID); err != nil {
		s.log.Warn("analytics cache invalidation failed", "company_id", companyID, "error", err)
	}
	return &Submission{WeekStart: res.WeekStart.In(s.loc), SubmittedAt: res.SubmittedAt}, nil
}

func normalizeWeeks(weeks int) (int, error) {
	if weeks == 0 {
		return DefaultAnalyticsWeeks, nil
	}
	if weeks < 1 || weeks > MaxAnalyticsWeeks {
		return 0, apierr.BadRequest("invalid_request", fmt.Errorf("weeks must be between 1 and %d", MaxAnalyticsWeeks))
	}
	return weeks, nil
}

// scopeTeams resolves which teams get a TeamAverage series.
func (s *happinessService) scopeTeams(ctx context.Context, companyID uuid.UUID, opts WeeklyAnalyticsOptions) ([]happiness.TeamRef, error) {
	dbc := dbctx.Context{Ctx: ctx}
	switch {
	case opts.TeamID != nil:
		team, err := s.teams.GetByID(dbc, companyID, *opts.TeamID)
		if err != nil {
			return nil, fmt.Errorf("load team: %w", err)
		}
		if team == nil {
			return nil, apierr.NotFound("team_not_found", fmt.Errorf("team %s not found", *opts.TeamID))
		}
		return []happiness.TeamRef{{ID: team.ID, Name: team.Name}}, nil
	case opts.CompanyLevel:
		teams, err := s.teams.ListByCompany(dbc, companyID)
		if err != nil {
			return nil, fmt.Errorf("list teams: %w", err)
		}
		return teamRefs(teams), nil
	default:
		team, err := s.memberships.PrimaryTeam(dbc, opts.UserID, companyID)
		if err != nil {
			return nil, fmt.Errorf("resolve primary team: %w", err)
		}
		if team == nil {
			return []happiness.TeamRef{}, nil
		}
		return []happiness.TeamRef{{ID: team.ID, Name: team.Name}}, nil
	}
}

func (s *happinessService) GetWeeklyHappinessAnalytics(ctx context.Context, companyID uuid.UUID, opts WeeklyAnalyticsOptions) ([]happiness.WeeklyHappinessData, error) {
	weeks, err := normalizeWeeks(opts.Weeks)
	if err != nil {
		return nil, err
	}
	view := opts.ViewType
	if view == "" {
		view = happiness.ViewWeekly
	}

	teams, err := s.scopeTeams(ctx, companyID, opts)
	if err != nil {
		return nil, err
	}

	now := s.now()
	cacheKey := fmt.Sprintf("weekly:%s:%d:%s:%s", happiness.WeekStartIn(now, s.loc).Format("2006-01-02"), weeks, view, teamKey(teams))
	var out []happiness.WeeklyHappinessData
	version, hit := s.cacheGet(ctx, companyID, cacheKey, &out)
	if hit {
		return out, nil
	}

	points, err := s.loadPoints(ctx, companyID, happiness.WindowStart(now, weeks))
	if err != nil {
		return nil, err
	}
	buckets := happiness.WindowBuckets(now, s.loc, weeks, view)
	out = happiness.AggregateWeekly(points, buckets, teams, s.loc, view)

	s.cacheSet(ctx, companyID, version, cacheKey, out)
	return out, nil
}

func (s *happinessService) GetHappinessAnalytics(ctx context.Context, companyID uuid.UUID, weeks int) ([]happiness.TeamWeekAggregate, error) {
	weeks, err := normalizeWeeks(weeks)
	if err != nil {
		return nil, err
	}
	now := s.now()
	cacheKey := fmt.Sprintf("team_week:%s:%d", happiness.WeekStartIn(now, s.loc).Format("2006-01-02"), weeks)
	var out []happiness.TeamWeekAggregate
	version, hit := s.cacheGet(ctx, companyID, cacheKey, &out)
	if hit {
		return out, nil
	}

	teams, err := s.teams.ListByCompany(dbctx.Context{Ctx: ctx}, companyID)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	names := make(map[uuid.UUID]string, len(teams))
	for _, t := range teams {
		names[t.ID] = t.Name
	}

	points, err := s.loadPoints(ctx, companyID, happiness.WindowStart(now, weeks))
	if err != nil {
		return nil, err
	}
	out = happiness.AggregateByWeekAndTeam(points, names, s.loc)

	s.cacheSet(ctx, companyID, version, cacheKey, out)
	return out, nil
}

func (s *happinessService) loadPoints(ctx context.Context, companyID uuid.UUID, since time.Time) ([]happiness.ScorePoint, error) {
	rows, err := s.scores.ListByCompanySince(dbctx.Context{Ctx: ctx}, companyID, since, nil)
	if err != nil {
		return nil, fmt.Errorf("list happiness scores: %w", err)
	}
	points := make([]happiness.ScorePoint, 0, len(rows))
	for _, r := range rows {
		points = append(points, happiness.ScorePoint{TeamID: r.TeamID, Score: r.Score, WeekStartDate: r.WeekStartDate})
	}
	return points, nil
}

// cacheGet returns the cache version read before any data is loaded, and whether dst was filled.
// A negative version means the cache is unavailable and the result must not be stored.
func (s *happinessService) cacheGet(ctx context.Context, companyID uuid.UUID, key string, dst any) (int64, bool) {
	raw, version, ok, err := s.cache.Get(ctx, companyID, key)
	if err != nil {
		s.metrics.IncAnalyticsCache("error")
		s.log.Warn("analytics cache read failed", "key", key, "error", err)
		return -1, false
	}
	if !ok {
		s.metrics.IncAnalyticsCache("miss")
		return version, false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.metrics.IncAnalyticsCache("error")
		s.log.Warn("analytics cache payload unreadable", "key", key, "error", err)
		return version, false
	}
	s.metrics.IncAnalyticsCache("hit")
	return version, true
}

func (s *happinessService) cacheSet(ctx context.Context, companyID uuid.UUID, version int64, key string, v any) {
	if version < 0 {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, companyID, version, key, raw); err != nil {
		s.log.Warn("analytics cache write failed", "key", key, "error", err)
	}
}

func teamRefs(teams []*types.Team) []happiness.TeamRef {
	out := make([]happiness.TeamRef, 0, len(teams))
	for _, t := range teams {
		out = append(out, happiness.TeamRef{ID: t.ID, Name: t.Name})
	}
	return out
}

func teamKey(teams []happiness.TeamRef) string {
	if len(teams) == 0 {
		return "none"
	}
	h := uuid.Nil
	for _, t := range teams {
		h = uuid.NewSHA1(h, t.ID[:])
	}
	return fmt.Sprintf("%d-%s", len(teams), h)
}
