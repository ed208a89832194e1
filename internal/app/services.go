package app

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/bloom-backend/internal/data/aggregates"
	domainagg "github.com/yungbote/bloom-backend/internal/domain/aggregates"
	"github.com/yungbote/bloom-backend/internal/observability"
	"github.com/yungbote/bloom-backend/internal/platform/logger"
	"github.com/yungbote/bloom-backend/internal/platform/session"
	"github.com/yungbote/bloom-backend/internal/services"
)

type Services struct {
	Sessions           *session.Manager
	HappinessAggregate domainagg.HappinessSubmissionAggregate
	Happiness          services.HappinessService
	Survey             services.SurveyService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg *Config, repos Repos, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	sessions, err := session.NewManager(cfg.SessionSecret(), cfg.Session.TTL)
	if err != nil {
		return Services{}, fmt.Errorf("init sessions: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return Services{}, err
	}

	agg := aggregates.NewHappinessSubmissionAggregate(aggregates.HappinessSubmissionAggregateDeps{
		Base: aggregates.BaseDeps{
			DB:     db,
			Log:    log,
			Runner: aggregates.NewGormTxRunner(db),
			Hooks:  aggregates.NewObservabilityHooks(metrics),
		},
		Submissions: repos.HappinessSubmission,
		Scores:      repos.HappinessScore,
	})

	happiness := services.NewHappinessService(services.HappinessServiceDeps{
		DB:          db,
		Log:         log,
		Aggregate:   agg,
		Submissions: repos.HappinessSubmission,
		Scores:      repos.HappinessScore,
		Teams:       repos.Team,
		Memberships: repos.TeamMembership,
		Cache:       clients.AnalyticsCache,
		Metrics:     metrics,
		Location:    loc,
		Now:         time.Now,
	})

	survey := services.NewSurveyService(
		db,
		log,
		repos.Survey,
		repos.SurveyQuestion,
		repos.SurveyResponse,
		repos.Team,
		repos.TeamMembership,
	)

	return Services{
		Sessions:           sessions,
		HappinessAggregate: agg,
		Happiness:          happiness,
		Survey:             survey,
	}, nil
}
