package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/bloom-backend/internal/http/handlers"
	httpMW "github.com/yungbote/bloom-backend/internal/http/middleware"
	"github.com/yungbote/bloom-backend/internal/observability"
	"github.com/yungbote/bloom-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	TracingEnabled bool
	CORSOrigins    []string

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler    *httpH.HealthHandler
	HappinessHandler *httpH.HappinessHandler
	SurveyHandler    *httpH.SurveyHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingEnabled {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	protected := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}

	// Happiness
	if cfg.HappinessHandler != nil {
		protected.GET("/happiness/status", cfg.HappinessHandler.Status)
		protected.POST("/happiness", cfg.HappinessHandler.Submit)
		protected.GET("/happiness/analytics", cfg.HappinessHandler.Analytics)
	}

	// Surveys
	if cfg.SurveyHandler != nil {
		protected.GET("/surveys", cfg.SurveyHandler.List)
	}

	admin := protected.Group("/")
	if cfg.AuthMiddleware != nil {
		admin.Use(cfg.AuthMiddleware.RequireAdmin())
	}
	if cfg.HappinessHandler != nil {
		admin.GET("/admin/happiness/analytics", cfg.HappinessHandler.AdminAnalytics)
	}
	if cfg.SurveyHandler != nil {
		admin.GET("/surveys/:id/analytics", cfg.SurveyHandler.Analytics)
	}

	return r
}
