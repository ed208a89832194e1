package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/bloom-backend/internal/data/repos"
	types "github.com/yungbote/bloom-backend/internal/domain"
	"github.com/yungbote/bloom-backend/internal/domain/happiness"
	"github.com/yungbote/bloom-backend/internal/domain/survey"
	"github.com/yungbote/bloom-backend/internal/platform/dbctx"
	"github.com/yungbote/bloom-backend/internal/platform/logger"
)

type Summary struct {
	Companies       int
	SkippedExisting int
	Teams           int
	Users           int
	Surveys         int
	Scores          int
}

type Seeder struct {
	db  *gorm.DB
	log *logger.Logger
	loc *time.Location
	now func() time.Time

	companies   repos.CompanyRepo
	teams       repos.TeamRepo
	users       repos.UserRepo
	memberships repos.TeamMembershipRepo
	surveys     repos.SurveyRepo
	questions   repos.SurveyQuestionRepo
	scores      repos.HappinessScoreRepo
}

func NewSeeder(db *gorm.DB, log *logger.Logger, loc *time.Location) *Seeder {
	if loc == nil {
		loc = time.UTC
	}
	return &Seeder{
		db:          db,
		log:         log.With("service", "Seeder"),
		loc:         loc,
		now:         time.Now,
		companies:   repos.NewCompanyRepo(db, log),
		teams:       repos.NewTeamRepo(db, log),
		users:       repos.NewUserRepo(db, log),
		memberships: repos.NewTeamMembershipRepo(db, log),
		surveys:     repos.NewSurveyRepo(db, log),
		questions:   repos.NewSurveyQuestionRepo(db, log),
		scores:      repos.NewHappinessScoreRepo(db, log),
	}
}

// Apply writes the fixtures in one transaction. Companies whose slug already exists are skipped whole.
func (s *Seeder) Apply(ctx context.Context, fx *Fixtures) (Summary, error) {
	var sum Summary
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		for _, c := range fx.Companies {
			existing, err := s.companies.GetBySlug(dbc, c.Slug)
			if err != nil {
				return fmt.Errorf("lookup company %q: %w", c.Slug, err)
			}
			if existing != nil {
				s.log.Info("company exists, skipping", "slug", c.Slug)
				sum.SkippedExisting++
				continue
			}
			if err := s.applyCompany(dbc, c, &sum); err != nil {
				return fmt.Errorf("seed company %q: %w", c.Slug, err)
			}
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}
	s.log.Info("seed complete",
		"companies", sum.Companies,
		"skipped", sum.SkippedExisting,
		"teams", sum.Teams,
		"users", sum.Users,
		"surveys", sum.Surveys,
		"scores", sum.Scores,
	)
	return sum, nil
}

func (s *Seeder) applyCompany(dbc dbctx.Context, c CompanyFixture, sum *Summary) error {
	created, err := s.companies.Create(dbc, []*types.Company{{Name: c.Name, Slug: c.Slug}})
	if err != nil {
		return err
	}
	company := created[0]
	sum.Companies++

	teamIDs := map[string]*types.Team{}
	if len(c.Teams) > 0 {
		rows := make([]*types.Team, 0, len(c.Teams))
		for _, name := range c.Teams {
			rows = append(rows, &types.Team{CompanyID: company.ID, Name: name})
		}
		teams, err := s.teams.Create(dbc, rows)
		if err != nil {
			return fmt.Errorf("teams: %w", err)
		}
		for _, t := range teams {
			teamIDs[t.Name] = t
		}
		sum.Teams += len(teams)
	}

	now := s.now().UTC()
	for _, u := range c.Users {
		created, err := s.users.Create(dbc, []*types.User{{
			CompanyID: company.ID,
			Email:     u.Email,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Role:      strings.ToLower(strings.TrimSpace(u.Role)),
		}})
		if err != nil {
			return fmt.Errorf("user %s: %w", u.Email, err)
		}
		sum.Users++
		joined := now
		if u.JoinedAt != nil {
			joined = u.JoinedAt.UTC()
		}
		memberships := make([]*types.TeamMembership, 0, len(u.Teams))
		for i, name := range u.Teams {
			// Listed order decides the primary team.
			memberships = append(memberships, &types.TeamMembership{
				TeamID:   teamIDs[name].ID,
				UserID:   created[0].ID,
				JoinedAt: joined.Add(time.Duration(i) * time.Second),
			})
		}
		if len(memberships) > 0 {
			if _, err := s.memberships.Create(dbc, memberships); err != nil {
				return fmt.Errorf("memberships for %s: %w", u.Email, err)
			}
		}
	}

	for _, sv := range c.Surveys {
		status := sv.Status
		if status == "" {
			status = survey.StatusActive
		}
		row := &types.Survey{
			CompanyID:   company.ID,
			Title:       sv.Title,
			Description: sv.Description,
			IsGlobal:    sv.Global,
			Status:      status,
		}
		scoped := make([]uuid.UUID, 0, len(sv.Teams))
		for _, name := range sv.Teams {
			scoped = append(scoped, teamIDs[name].ID)
		}
		if err := s.surveys.Create(dbc, row, scoped); err != nil {
			return fmt.Errorf("survey %q: %w", sv.Title, err)
		}
		if len(sv.Questions) > 0 {
			questions := make([]*types.SurveyQuestion, 0, len(sv.Questions))
			for i, q := range sv.Questions {
				sq := &types.SurveyQuestion{SurveyID: row.ID, Position: i + 1, Kind: q.Kind, Prompt: q.Prompt}
				if len(q.Options) > 0 {
					raw, err := json.Marshal(q.Options)
					if err != nil {
						return err
					}
					sq.Options = datatypes.JSON(raw)
				}
				questions = append(questions, sq)
			}
			if _, err := s.questions.Create(dbc, questions); err != nil {
				return fmt.Errorf("questions for %q: %w", sv.Title, err)
			}
		}
		sum.Surveys++
	}

	current := happiness.WeekStartIn(now, s.loc)
	for _, h := range c.History {
		week := current.AddDate(0, 0, -7*h.WeeksAgo).UTC()
		for _, score := range h.Scores {
			if err := s.scores.Create(dbc, &types.HappinessScore{
				CompanyID:     company.ID,
				TeamID:        teamIDs[h.Team].ID,
				Score:         score,
				WeekStartDate: week,
			}); err != nil {
				return fmt.Errorf("history for %q: %w", h.Team, err)
			}
			sum.Scores++
		}
	}
	return nil
}
