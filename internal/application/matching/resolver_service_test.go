package matching

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/higiplas/backend/internal/domain/catalog"
	"github.com/higiplas/backend/internal/domain/matching"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLoader is an in-memory CatalogLoader recording calls.
type fakeLoader struct {
	entries     []catalog.Entry
	err         error
	loads       int
	invalidated []uuid.UUID
}

func (l *fakeLoader) Load(ctx context.Context, tenantID uuid.UUID) ([]catalog.Entry, error) {
	l.loads++
	if l.err != nil {
		return nil, l.err
	}
	return l.entries, nil
}

func (l *fakeLoader) Invalidate(tenantID uuid.UUID) {
	l.invalidated = append(l.invalidated, tenantID)
}

func newFixtureLoader() *fakeLoader {
	return &fakeLoader{entries: []catalog.Entry{
		catalog.NewEntry(uuid.New(), "ALC001", "Alcool 96% 1L", decimal.NewFromInt(12)),
		catalog.NewEntry(uuid.New(), "ESP010", "Esponja Dupla Face", decimal.Zero),
	}}
}

func TestResolverServiceResolve(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("resolves by code", func(t *testing.T) {
		loader := newFixtureLoader()
		svc := NewResolverService(loader, matching.NewMatcher())

		result, err := svc.Resolve(ctx, tenantID, "ALC001", "ALCOOL DIFERENTE", matching.DefaultThreshold)

		require.NoError(t, err)
		require.True(t, result.Matched())
		assert.Equal(t, matching.MethodCode, result.Method)
		assert.Equal(t, 100.0, result.Score)
	})

	t.Run("propagates catalog failures", func(t *testing.T) {
		loader := &fakeLoader{err: fmt.Errorf("%w: down", catalog.ErrCatalogUnavailable)}
		svc := NewResolverService(loader, matching.NewMatcher())

		_, err := svc.Resolve(ctx, tenantID, "ALC001", "", matching.DefaultThreshold)

		require.ErrorIs(t, err, catalog.ErrCatalogUnavailable)
	})
}

func TestResolverServiceResolveByName(t *testing.T) {
	ctx := context.Background()
	loader := newFixtureLoader()
	svc := NewResolverService(loader, matching.NewMatcher())

	results, err := svc.ResolveByName(ctx, uuid.New(), "ESPONJA DUPLA FACE GRANDE", 60, 3)

	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, matching.MethodName, results[0].Method)
	assert.Equal(t, "Esponja Dupla Face", results[0].Entry.Name)
}

func TestResolverServiceResolveBatch(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("loads the catalog once per batch", func(t *testing.T) {
		loader := newFixtureLoader()
		svc := NewResolverService(loader, matching.NewMatcher())

		descriptions := []string{
			"ESPONJA DUPLA FACE",
			"ALCOOL 96 1L",
			"PARAFUSO SEXTAVADO",
		}
		results, err := svc.ResolveBatch(ctx, tenantID, descriptions, 60, 1)

		require.NoError(t, err)
		assert.Equal(t, 1, loader.loads)
		assert.Len(t, results, 3)
	})

	t.Run("identical descriptions resolve identically", func(t *testing.T) {
		loader := newFixtureLoader()
		svc := NewResolverService(loader, matching.NewMatcher())

		results, err := svc.ResolveBatch(ctx, tenantID,
			[]string{"ESPONJA DUPLA FACE", "ESPONJA DUPLA FACE"}, 60, 2)

		require.NoError(t, err)
		require.Len(t, results, 1)
		matches := results["ESPONJA DUPLA FACE"]
		require.NotEmpty(t, matches)
		assert.Equal(t, 100.0, matches[0].Score)
	})

	t.Run("unmatched inputs still get an entry", func(t *testing.T) {
		loader := newFixtureLoader()
		svc := NewResolverService(loader, matching.NewMatcher())

		results, err := svc.ResolveBatch(ctx, tenantID,
			[]string{"PARAFUSO SEXTAVADO", ""}, 60, 1)

		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Empty(t, results["PARAFUSO SEXTAVADO"])
		assert.Empty(t, results[""])
	})

	t.Run("propagates catalog failures", func(t *testing.T) {
		loader := &fakeLoader{err: fmt.Errorf("%w: down", catalog.ErrCatalogUnavailable)}
		svc := NewResolverService(loader, matching.NewMatcher())

		_, err := svc.ResolveBatch(ctx, tenantID, []string{"ESPONJA"}, 60, 1)

		require.ErrorIs(t, err, catalog.ErrCatalogUnavailable)
	})
}

func TestResolverServiceInvalidate(t *testing.T) {
	loader := newFixtureLoader()
	svc := NewResolverService(loader, matching.NewMatcher())
	tenantID := uuid.New()

	svc.Invalidate(tenantID)

	require.Len(t, loader.invalidated, 1)
	assert.Equal(t, tenantID, loader.invalidated[0])
}
