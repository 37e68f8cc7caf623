package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cast"

	"github.com/Lixing-Zhang/sales-dashboard/backend/internal/feed"
	"github.com/Lixing-Zhang/sales-dashboard/backend/internal/models"
)

var (
	ErrInvalidRecord = errors.New("invalid feed record")
)

// FeedFetcher downloads the raw seed records
type FeedFetcher interface {
	URL() string
	Fetch(ctx context.Context) ([]feed.Record, error)
}

// ProductStore persists seeded products
type ProductStore interface {
	InsertAll(ctx context.Context, products []models.Product) error
	Count(ctx context.Context) (int64, error)
}

// CacheInvalidator drops cached reports after the data changes
type CacheInvalidator interface {
	InvalidateAll(ctx context.Context) error
}

// SeedService loads the product feed into the store
type SeedService struct {
	fetcher     FeedFetcher
	store       ProductStore
	invalidator CacheInvalidator
	logger      *slog.Logger
}

// NewSeedService creates a new seed service. invalidator may be nil.
func NewSeedService(fetcher FeedFetcher, store ProductStore, invalidator CacheInvalidator, logger *slog.Logger) *SeedService {
	return &SeedService{
		fetcher:     fetcher,
		store:       store,
		invalidator: invalidator,
		logger:      logger,
	}
}

// Seed fetches the feed and inserts every record in one transaction.
// A second call against a seeded store fails on the first duplicate id.
func (s *SeedService) Seed(ctx context.Context) (*models.SeedResult, error) {
	runID := generateRunID()
	s.logger.Info("seeding database", "run_id", runID, "feed_url", s.fetcher.URL())

	records, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch seed data: %w", err)
	}

	products := make([]models.Product, 0, len(records))
	for i, record := range records {
		product, err := productFromRecord(record)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		products = append(products, product)
	}

	if err := s.store.InsertAll(ctx, products); err != nil {
		return nil, err
	}

	if s.invalidator != nil {
		if err := s.invalidator.InvalidateAll(ctx); err != nil {
			s.logger.Warn("failed to invalidate report cache", "run_id", runID, "error", err)
		}
	}

	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("database seeded", "run_id", runID, "inserted", len(products), "total", total)

	return &models.SeedResult{
		Message:       "Database initialized successfully",
		RunID:         runID,
		Inserted:      len(products),
		TotalProducts: total,
	}, nil
}

// productFromRecord coerces a raw feed object into a Product.
// Numeric ids and prices may arrive as JSON numbers or strings.
func productFromRecord(record feed.Record) (models.Product, error) {
	rawID, ok := record["id"]
	if !ok {
		return models.Product{}, fmt.Errorf("%w: missing id", ErrInvalidRecord)
	}

	id, err := cast.ToInt64E(rawID)
	if err != nil {
		return models.Product{}, fmt.Errorf("%w: id: %v", ErrInvalidRecord, err)
	}

	price, err := cast.ToFloat64E(valueOr(record, "price", 0))
	if err != nil {
		return models.Product{}, fmt.Errorf("%w: price of %d: %v", ErrInvalidRecord, id, err)
	}

	sold, err := cast.ToBoolE(valueOr(record, "sold", false))
	if err != nil {
		return models.Product{}, fmt.Errorf("%w: sold of %d: %v", ErrInvalidRecord, id, err)
	}

	return models.Product{
		ID:          id,
		Title:       cast.ToString(record["title"]),
		Price:       price,
		Description: cast.ToString(record["description"]),
		Category:    cast.ToString(record["category"]),
		Image:       cast.ToString(record["image"]),
		Sold:        sold,
		DateOfSale:  cast.ToString(record["dateOfSale"]),
	}, nil
}

func valueOr(record feed.Record, key string, fallback any) any {
	if v, ok := record[key]; ok && v != nil {
		return v
	}
	return fallback
}

// generateRunID generates a unique identifier for one seed run
func generateRunID() string {
	return uuid.New().String()
}
