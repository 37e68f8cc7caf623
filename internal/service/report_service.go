package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Lixing-Zhang/sales-dashboard/backend/internal/models"
)

// ReportRepository runs the month-filtered aggregate queries
type ReportRepository interface {
	Statistics(ctx context.Context, month string) (*models.Statistics, error)
	PriceRanges(ctx context.Context, month string) ([]models.PriceRangeCount, error)
	Categories(ctx context.Context, month string) ([]models.CategoryCount, error)
}

// Cache is the cache-aside store for report responses
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
}

// loadTimeout bounds a shared report query, which outlives the request
// that started it
const loadTimeout = 30 * time.Second

// ReportService handles business logic for the monthly reports.
// Month arguments are two-digit month numbers ("01".."12").
type ReportService struct {
	repo   ReportRepository
	cache  Cache
	group  singleflight.Group
	logger *slog.Logger

	// generation is part of every cache key. Bumping it orphans entries
	// written by loads that started before the data changed.
	generation atomic.Uint64
}

// NewReportService creates a new report service. cache may be nil.
func NewReportService(repo ReportRepository, cache Cache, logger *slog.Logger) *ReportService {
	return &ReportService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// Statistics returns total sale amount and sold/unsold counts for a month
func (s *ReportService) Statistics(ctx context.Context, month string) (*models.Statistics, error) {
	return cached(ctx, s, "statistics:"+month, func(ctx context.Context) (*models.Statistics, error) {
		return s.repo.Statistics(ctx, month)
	})
}

// BarChart returns the price-range histogram for a month
func (s *ReportService) BarChart(ctx context.Context, month string) ([]models.PriceRangeCount, error) {
	return cached(ctx, s, "bar-chart:"+month, func(ctx context.Context) ([]models.PriceRangeCount, error) {
		return s.repo.PriceRanges(ctx, month)
	})
}

// PieChart returns the per-category item counts for a month
func (s *ReportService) PieChart(ctx context.Context, month string) ([]models.CategoryCount, error) {
	return cached(ctx, s, "pie-chart:"+month, func(ctx context.Context) ([]models.CategoryCount, error) {
		return s.repo.Categories(ctx, month)
	})
}

// InvalidateAll starts a new cache generation and clears the backing
// cache when it supports invalidation. Called after the data changes.
func (s *ReportService) InvalidateAll(ctx context.Context) error {
	s.generation.Add(1)

	if inv, ok := s.cache.(CacheInvalidator); ok {
		return inv.InvalidateAll(ctx)
	}
	return nil
}

// cached reads key from the cache, falling back to load on a miss or cache
// error. Concurrent misses for one key share a single load, which runs
// detached from the first caller's cancellation.
func cached[T any](ctx context.Context, s *ReportService, key string, load func(context.Context) (T, error)) (T, error) {
	key = fmt.Sprintf("g%d:%s", s.generation.Load(), key)

	if s.cache != nil {
		var hit T
		found, err := s.cache.Get(ctx, key, &hit)
		if err != nil {
			s.logger.Warn("report cache read failed", "key", key, "error", err)
		}
		if found {
			return hit, nil
		}
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		result, err := load(loadCtx)
		if err != nil {
			return nil, err
		}

		if s.cache != nil {
			if err := s.cache.Set(loadCtx, key, result); err != nil {
				s.logger.Warn("report cache write failed", "key", key, "error", err)
			}
		}
		return result, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return v.(T), nil
}
