package app

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/bloom-backend/internal/data/db"
	bloomhttp "github.com/yungbote/bloom-backend/internal/http"
	"github.com/yungbote/bloom-backend/internal/observability"
	"github.com/yungbote/bloom-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	Cfg      *Config
	DB       *gorm.DB
	Metrics  *observability.Metrics
	Clients  Clients
	Repos    Repos
	Services Services
	Server   *bloomhttp.Server

	dbService    *db.Service
	otelShutdown func(context.Context) error
}

// New connects every dependency and builds the HTTP server. Close releases what New opened.
func New(ctx context.Context, cfg *Config) (*App, error) {
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a := &App{Log: log, Cfg: cfg}
	if err := a.wire(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) wire(ctx context.Context) error {
	cfg, log := a.Cfg, a.Log

	a.otelShutdown = observability.InitOTel(ctx, log, cfg.Tracing())

	dbService, err := db.NewService(cfg.Database(), log)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	a.dbService = dbService
	a.DB = dbService.DB()
	if cfg.DB.AutoMigrate || dbService.Driver() == db.DriverSQLite {
		if err := db.AutoMigrateAll(a.DB); err != nil {
			return fmt.Errorf("automigrate: %w", err)
		}
	}

	if cfg.Metrics.Enabled {
		a.Metrics = observability.NewMetrics(cfg.Metrics.ScrapeInterval)
	}

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		return err
	}
	a.Clients = clients
	a.Repos = wireRepos(a.DB, log)

	services, err := wireServices(a.DB, log, cfg, a.Repos, a.Clients, a.Metrics)
	if err != nil {
		return err
	}
	a.Services = services

	handlers := wireHandlers(a.DB, log, services)
	middleware := wireMiddleware(log, services)
	a.Server = wireServer(cfg, log, a.Metrics, handlers, middleware)
	return nil
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests within the shutdown timeout.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return errors.New("app not initialized")
	}
	a.Metrics.StartDBCollector(ctx, a.Log, a.DB)
	if a.Clients.Redis != nil {
		a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.Redis.Client())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Log.Info("HTTP server listening", "addr", a.Cfg.Addr())
		return a.Server.Run()
	})
	g.Go(func() error {
		<-gctx.Done()
		a.Log.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Cfg.Server.ShutdownTimeout)
		defer cancel()
		return a.Server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if err := a.Clients.Close(); err != nil {
		a.Log.Warn("close redis", "error", err)
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(context.Background()); err != nil {
			a.Log.Warn("otel shutdown", "error", err)
		}
	}
	if err := a.dbService.Close(); err != nil {
		a.Log.Warn("close database", "error", err)
	}
	a.Log.Sync()
}
