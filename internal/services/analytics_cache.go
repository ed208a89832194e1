package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// AnalyticsCache stores serialized analytics per company. Get reports the company's cache
// version even on a miss; a payload computed after that Get must be stored with Set under the
// same version, so a result loaded before an Invalidate is never visible afterwards.
type AnalyticsCache interface {
	Get(ctx context.Context, companyID uuid.UUID, key string) (payload []byte, version int64, ok bool, err error)
	Set(ctx context.Context, companyID uuid.UUID, version int64, key string, payload []byte) error
	Invalidate(ctx context.Context, companyID uuid.UUID) error
}

type noopAnalyticsCache struct{}

func NewNoopAnalyticsCache() AnalyticsCache { return noopAnalyticsCache{} }

func (noopAnalyticsCache) Get(context.Context, uuid.UUID, string) ([]byte, int64, bool, error) {
	return nil, 0, false, nil
}
func (noopAnalyticsCache) Set(context.Context, uuid.UUID, int64, string, []byte) error { return nil }
func (noopAnalyticsCache) Invalidate(context.Context, uuid.UUID) error                  { return nil }

// memoryAnalyticsCache is the in-process cache used when redis is not configured.
type memoryAnalyticsCache struct {
	mu       sync.Mutex
	versions map[uuid.UUID]int64
	entries  *expirable.LRU[string, []byte]
}

func NewMemoryAnalyticsCache(size int, ttl time.Duration) AnalyticsCache {
	if size <= 0 {
		size = 1024
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &memoryAnalyticsCache{
		versions: map[uuid.UUID]int64{},
		entries:  expirable.NewLRU[string, []byte](size, nil, ttl),
	}
}

func (c *memoryAnalyticsCache) version(companyID uuid.UUID) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[companyID]
}

func entryKey(companyID uuid.UUID, version int64, key string) string {
	return fmt.Sprintf("%s:%d:%s", companyID, version, key)
}

func (c *memoryAnalyticsCache) Get(_ context.Context, companyID uuid.UUID, key string) ([]byte, int64, bool, error) {
	v := c.version(companyID)
	raw, ok := c.entries.Get(entryKey(companyID, v, key))
	return raw, v, ok, nil
}

func (c *memoryAnalyticsCache) Set(_ context.Context, companyID uuid.UUID, version int64, key string, payload []byte) error {
	if version != c.version(companyID) {
		return nil
	}
	c.entries.Add(entryKey(companyID, version, key), payload)
	return nil
}

func (c *memoryAnalyticsCache) Invalidate(_ context.Context, companyID uuid.UUID) error {
	c.mu.Lock()
	c.versions[companyID]++
	c.mu.Unlock()
	return nil
}
