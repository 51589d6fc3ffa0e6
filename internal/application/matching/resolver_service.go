package matching

import (
	"context"

	"github.com/google/uuid"
	"github.com/higiplas/backend/internal/domain/catalog"
	"github.com/higiplas/backend/internal/domain/matching"
	"go.uber.org/zap"
)

// CatalogLoader provides per-tenant catalog snapshots with explicit
// invalidation. Satisfied by cache.CatalogCache.
type CatalogLoader interface {
	Load(ctx context.Context, tenantID uuid.UUID) ([]catalog.Entry, error)
	Invalidate(tenantID uuid.UUID)
}

// ResolverService orchestrates catalog loading and matching for callers
// reconciling invoice lines, quotation items, and manual entries. Only
// catalog-fetch failures surface as errors; unmatched or malformed input
// yields MethodNone results so ingestion pipelines keep moving.
type ResolverService struct {
	catalogs CatalogLoader
	matcher  *matching.Matcher
	logger   *zap.Logger
}

// ResolverServiceOption is a functional option for configuring the service.
type ResolverServiceOption func(*ResolverService)

// WithServiceLogger sets the logger for the service.
func WithServiceLogger(logger *zap.Logger) ResolverServiceOption {
	return func(s *ResolverService) {
		s.logger = logger
	}
}

// NewResolverService creates a new ResolverService.
func NewResolverService(catalogs CatalogLoader, matcher *matching.Matcher, opts ...ResolverServiceOption) *ResolverService {
	s := &ResolverService{
		catalogs: catalogs,
		matcher:  matcher,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve resolves one query, code-first, to at most one catalog entry.
func (s *ResolverService) Resolve(ctx context.Context, tenantID uuid.UUID, code, description string, threshold float64) (matching.MatchResult, error) {
	entries, err := s.catalogs.Load(ctx, tenantID)
	if err != nil {
		return matching.NoMatch(), err
	}
	return s.matcher.Resolve(code, description, entries, threshold), nil
}

// ResolveByName returns up to limit fuzzy matches for the description,
// sorted by score descending.
func (s *ResolverService) ResolveByName(ctx context.Context, tenantID uuid.UUID, description string, threshold float64, limit int) ([]matching.MatchResult, error) {
	entries, err := s.catalogs.Load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return s.matcher.TopMatches(description, entries, threshold, limit), nil
}

// ResolveBatch resolves many descriptions against one catalog snapshot,
// returning ranked matches keyed by the original description. Every input
// gets an entry even when unmatched; items never consume catalog entries,
// so identical descriptions resolve identically and are scored only once.
func (s *ResolverService) ResolveBatch(ctx context.Context, tenantID uuid.UUID, descriptions []string, threshold float64, limitPerItem int) (map[string][]matching.MatchResult, error) {
	entries, err := s.catalogs.Load(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	results := make(map[string][]matching.MatchResult, len(descriptions))
	for _, description := range descriptions {
		if _, done := results[description]; done {
			continue
		}
		matches := s.matcher.TopMatches(description, entries, threshold, limitPerItem)
		if matches == nil {
			matches = []matching.MatchResult{}
		}
		results[description] = matches
	}

	s.logger.Debug("batch resolution complete",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("inputs", len(descriptions)),
		zap.Int("distinct", len(results)))

	return results, nil
}

// Invalidate drops the tenant's cached catalog snapshot. The product CRUD
// layer must call this after any product create, update, or delete.
func (s *ResolverService) Invalidate(tenantID uuid.UUID) {
	s.catalogs.Invalidate(tenantID)
}
