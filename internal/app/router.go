package app

import (
	bloomhttp "github.com/yungbote/bloom-backend/internal/http"
	"github.com/yungbote/bloom-backend/internal/observability"
	"github.com/yungbote/bloom-backend/internal/platform/logger"
)

func wireServer(cfg *Config, log *logger.Logger, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *bloomhttp.Server {
	return bloomhttp.NewServer(cfg.Addr(), bloomhttp.RouterConfig{
		Log:              log,
		Metrics:          metrics,
		ServiceName:      cfg.Otel.ServiceName,
		TracingEnabled:   cfg.Otel.Enabled,
		CORSOrigins:      cfg.CORS.Origins,
		AuthMiddleware:   middleware.Auth,
		HealthHandler:    handlers.Health,
		HappinessHandler: handlers.Happiness,
		SurveyHandler:    handlers.Survey,
	})
}
