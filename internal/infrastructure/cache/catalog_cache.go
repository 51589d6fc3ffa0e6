package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/higiplas/backend/internal/domain/catalog"
	"go.uber.org/zap"
)

// CatalogCache holds one catalog snapshot per tenant in front of a
// catalog.Source. Load is idempotent within the snapshot lifetime; the
// product CRUD layer must call Invalidate after any product change for
// that tenant, otherwise matches run against stale data. That contract is
// correctness-relevant, not an optimization detail.
//
// Load and Invalidate are goroutine-safe. The returned entry slice is a
// shared snapshot: callers must treat it as read-only.
type CatalogCache struct {
	source    catalog.Source
	snapshots sync.Map // map[uuid.UUID]*snapshot
	ttl       time.Duration
	logger    *zap.Logger

	// Stats for monitoring
	hits   int64
	misses int64
}

// snapshot wraps a cached catalog with its load time.
type snapshot struct {
	entries  []catalog.Entry
	loadedAt time.Time
}

func (s *snapshot) expired(ttl time.Duration) bool {
	return ttl > 0 && time.Since(s.loadedAt) > ttl
}

// CatalogCacheOption is a functional option for configuring the cache.
type CatalogCacheOption func(*CatalogCache)

// WithCacheLogger sets the logger for the cache.
func WithCacheLogger(logger *zap.Logger) CatalogCacheOption {
	return func(c *CatalogCache) {
		c.logger = logger
	}
}

// WithCacheTTL bounds snapshot age. Zero (the default) means snapshots
// live until explicitly invalidated.
func WithCacheTTL(ttl time.Duration) CatalogCacheOption {
	return func(c *CatalogCache) {
		c.ttl = ttl
	}
}

// NewCatalogCache creates a catalog cache over the given source.
func NewCatalogCache(source catalog.Source, opts ...CatalogCacheOption) *CatalogCache {
	c := &CatalogCache{
		source: source,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load returns the tenant's catalog snapshot, fetching from the source on
// the first call (or after invalidation/expiry). Fetch failures propagate
// wrapped in catalog.ErrCatalogUnavailable by the source; nothing is
// cached on failure.
func (c *CatalogCache) Load(ctx context.Context, tenantID uuid.UUID) ([]catalog.Entry, error) {
	if value, ok := c.snapshots.Load(tenantID); ok {
		snap := value.(*snapshot)
		if !snap.expired(c.ttl) {
			atomic.AddInt64(&c.hits, 1)
			c.logger.Debug("catalog cache hit",
				zap.String("tenant_id", tenantID.String()),
				zap.Int("entries", len(snap.entries)))
			return snap.entries, nil
		}
		c.snapshots.Delete(tenantID)
	}

	atomic.AddInt64(&c.misses, 1)
	entries, err := c.source.FetchAll(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	c.snapshots.Store(tenantID, &snapshot{entries: entries, loadedAt: time.Now()})
	c.logger.Debug("catalog snapshot loaded",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("entries", len(entries)))
	return entries, nil
}

// Invalidate drops the tenant's snapshot; the next Load re-fetches.
func (c *CatalogCache) Invalidate(tenantID uuid.UUID) {
	c.snapshots.Delete(tenantID)
	c.logger.Debug("catalog snapshot invalidated",
		zap.String("tenant_id", tenantID.String()))
}

// InvalidateAll drops every tenant snapshot.
func (c *CatalogCache) InvalidateAll() {
	c.snapshots.Range(func(key, _ any) bool {
		c.snapshots.Delete(key)
		return true
	})
	c.logger.Info("all catalog snapshots invalidated")
}

// Stats returns cache hit/miss counters.
func (c *CatalogCache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Count returns the number of cached tenant snapshots.
func (c *CatalogCache) Count() int {
	count := 0
	c.snapshots.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}
