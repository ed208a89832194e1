package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/bloom-backend/internal/platform/logger"
)

type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// AnalyticsCache stores serialized analytics payloads per company. Each company has a
// version counter that is part of every data key, so invalidation is a single INCR and
// stale entries simply age out.
type AnalyticsCache struct {
	log    *logger.Logger
	rdb    goredis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewAnalyticsCache(ctx context.Context, log *logger.Logger, cfg Config) (*AnalyticsCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewAnalyticsCacheWithClient(log, rdb, cfg), nil
}

func NewAnalyticsCacheWithClient(log *logger.Logger, rdb goredis.UniversalClient, cfg Config) *AnalyticsCache {
	prefix := strings.TrimSpace(cfg.Prefix)
	if prefix == "" {
		prefix = "bloom:analytics"
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &AnalyticsCache{
		log:    log.With("service", "RedisAnalyticsCache"),
		rdb:    rdb,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (c *AnalyticsCache) Client() goredis.UniversalClient { return c.rdb }

func (c *AnalyticsCache) versionKey(companyID uuid.UUID) string {
	return fmt.Sprintf("%s:%s:v", c.prefix, companyID)
}

func (c *AnalyticsCache) dataKey(companyID uuid.UUID, version int64, key string) string {
	return fmt.Sprintf("%s:%s:%d:%s", c.prefix, companyID, version, key)
}

func (c *AnalyticsCache) version(ctx context.Context, companyID uuid.UUID) (int64, error) {
	v, err := c.rdb.Get(ctx, c.versionKey(companyID)).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	return v, err
}

// Get returns the company's current version alongside the payload; pass it back to Set.
func (c *AnalyticsCache) Get(ctx context.Context, companyID uuid.UUID, key string) ([]byte, int64, bool, error) {
	v, err := c.version(ctx, companyID)
	if err != nil {
		return nil, 0, false, err
	}
	raw, err := c.rdb.Get(ctx, c.dataKey(companyID, v, key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, v, false, nil
	}
	if err != nil {
		return nil, v, false, err
	}
	return raw, v, true, nil
}

// Set stores payload under version. After an Invalidate that key is never read again.
func (c *AnalyticsCache) Set(ctx context.Context, companyID uuid.UUID, version int64, key string, payload []byte) error {
	return c.rdb.Set(ctx, c.dataKey(companyID, version, key), payload, c.ttl).Err()
}

func (c *AnalyticsCache) Invalidate(ctx context.Context, companyID uuid.UUID) error {
	return c.rdb.Incr(ctx, c.versionKey(companyID)).Err()
}

func (c *AnalyticsCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
