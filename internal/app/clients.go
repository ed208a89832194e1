package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/bloom-backend/internal/clients/redis"
	"github.com/yungbote/bloom-backend/internal/platform/logger"
	"github.com/yungbote/bloom-backend/internal/services"
)

type Clients struct {
	// Redis is nil when no redis addr is configured.
	Redis          *redis.AnalyticsCache
	AnalyticsCache services.AnalyticsCache
}

func wireClients(ctx context.Context, log *logger.Logger, cfg *Config) (Clients, error) {
	log.Info("Wiring clients...")

	if strings.TrimSpace(cfg.Redis.Addr) == "" {
		log.Info("redis not configured, using in-process analytics cache", "size", cfg.Happiness.CacheSize)
		return Clients{
			AnalyticsCache: services.NewMemoryAnalyticsCache(cfg.Happiness.CacheSize, cfg.Happiness.CacheTTL),
		}, nil
	}

	rc := cfg.RedisCache()
	if rc.TTL == 0 {
		rc.TTL = cfg.Happiness.CacheTTL
	}
	cache, err := redis.NewAnalyticsCache(ctx, log, rc)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis analytics cache: %w", err)
	}
	return Clients{Redis: cache, AnalyticsCache: cache}, nil
}

func (c Clients) Close() error {
	if c.Redis == nil {
		return nil
	}
	return c.Redis.Close()
}
