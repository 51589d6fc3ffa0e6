package cache

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/higiplas/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSource counts fetches and optionally fails.
type stubSource struct {
	fetches int64
	entries []catalog.Entry
	err     error
}

func (s *stubSource) FetchAll(ctx context.Context, tenantID uuid.UUID) ([]catalog.Entry, error) {
	atomic.AddInt64(&s.fetches, 1)
	if s.err != nil {
		return nil, s.err
	}
	return s.entries, nil
}

func newStubSource(names ...string) *stubSource {
	entries := make([]catalog.Entry, 0, len(names))
	for _, name := range names {
		entries = append(entries, catalog.NewEntry(uuid.New(), "", name, decimal.Zero))
	}
	return &stubSource{entries: entries}
}

func TestCatalogCacheLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("repeated loads hit the cache", func(t *testing.T) {
		source := newStubSource("Alcool 96% 1L", "Esponja Dupla Face")
		c := NewCatalogCache(source)
		tenantID := uuid.New()

		first, err := c.Load(ctx, tenantID)
		require.NoError(t, err)
		second, err := c.Load(ctx, tenantID)
		require.NoError(t, err)

		assert.Equal(t, int64(1), atomic.LoadInt64(&source.fetches))
		assert.Len(t, first, 2)
		assert.Equal(t, first, second)

		hits, misses := c.Stats()
		assert.Equal(t, int64(1), hits)
		assert.Equal(t, int64(1), misses)
	})

	t.Run("tenants get separate snapshots", func(t *testing.T) {
		source := newStubSource("Alcool 96% 1L")
		c := NewCatalogCache(source)

		_, err := c.Load(ctx, uuid.New())
		require.NoError(t, err)
		_, err = c.Load(ctx, uuid.New())
		require.NoError(t, err)

		assert.Equal(t, int64(2), atomic.LoadInt64(&source.fetches))
		assert.Equal(t, 2, c.Count())
	})

	t.Run("source failures propagate and nothing is cached", func(t *testing.T) {
		source := &stubSource{err: fmt.Errorf("%w: connection refused", catalog.ErrCatalogUnavailable)}
		c := NewCatalogCache(source)
		tenantID := uuid.New()

		_, err := c.Load(ctx, tenantID)
		require.ErrorIs(t, err, catalog.ErrCatalogUnavailable)
		assert.Equal(t, 0, c.Count())

		// Next load retries the source
		_, err = c.Load(ctx, tenantID)
		require.Error(t, err)
		assert.Equal(t, int64(2), atomic.LoadInt64(&source.fetches))
	})
}

func TestCatalogCacheInvalidate(t *testing.T) {
	ctx := context.Background()

	t.Run("invalidate forces a re-fetch", func(t *testing.T) {
		source := newStubSource("Alcool 96% 1L")
		c := NewCatalogCache(source)
		tenantID := uuid.New()

		_, err := c.Load(ctx, tenantID)
		require.NoError(t, err)
		c.Invalidate(tenantID)
		_, err = c.Load(ctx, tenantID)
		require.NoError(t, err)

		assert.Equal(t, int64(2), atomic.LoadInt64(&source.fetches))
	})

	t.Run("invalidate only affects the given tenant", func(t *testing.T) {
		source := newStubSource("Alcool 96% 1L")
		c := NewCatalogCache(source)
		tenantA, tenantB := uuid.New(), uuid.New()

		_, _ = c.Load(ctx, tenantA)
		_, _ = c.Load(ctx, tenantB)
		c.Invalidate(tenantA)

		assert.Equal(t, 1, c.Count())
	})

	t.Run("invalidate all drops every snapshot", func(t *testing.T) {
		source := newStubSource("Alcool 96% 1L")
		c := NewCatalogCache(source)

		_, _ = c.Load(ctx, uuid.New())
		_, _ = c.Load(ctx, uuid.New())
		c.InvalidateAll()

		assert.Equal(t, 0, c.Count())
	})
}

func TestCatalogCacheTTL(t *testing.T) {
	ctx := context.Background()
	source := newStubSource("Alcool 96% 1L")
	c := NewCatalogCache(source, WithCacheTTL(10*time.Millisecond))
	tenantID := uuid.New()

	_, err := c.Load(ctx, tenantID)
	require.NoError(t, err)

	time.Sleep(25 * time.Millisecond)

	_, err = c.Load(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), atomic.LoadInt64(&source.fetches))
}
