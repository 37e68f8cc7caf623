package repository

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Lixing-Zhang/sales-dashboard/backend/internal/models"
)

// setupTestDB creates a file-backed SQLite database in a temp dir for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "products.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&models.Product{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

func sampleProducts() []models.Product {
	return []models.Product{
		{ID: 1, Title: "Backpack", Price: 109.95, Category: "men's clothing", Sold: true, DateOfSale: "2021-03-27T20:29:54+05:30"},
		{ID: 2, Title: "T-Shirt", Price: 22.3, Category: "men's clothing", Sold: false, DateOfSale: "2021-03-12T20:29:54+05:30"},
		{ID: 3, Title: "Ring", Price: 100, Category: "jewelery", Sold: true, DateOfSale: "2022-03-01T10:00:00+05:30"},
		{ID: 4, Title: "Monitor", Price: 999.99, Category: "electronics", Sold: false, DateOfSale: "2021-03-05T10:00:00+05:30"},
		{ID: 5, Title: "SSD", Price: 100.5, Category: "electronics", Sold: true, DateOfSale: "2021-03-15T10:00:00+05:30"},
		{ID: 6, Title: "Jacket", Price: 56.99, Category: "women's clothing", Sold: true, DateOfSale: "2021-07-27T20:29:54+05:30"},
		{ID: 7, Title: "Bracelet", Price: 695, Category: "jewelery", Sold: false, DateOfSale: "2021-12-24T20:29:54+05:30"},
	}
}

func TestGormProductRepository_InsertAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	if err := repo.InsertAll(ctx, sampleProducts()); err != nil {
		t.Fatalf("InsertAll() error = %v", err)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != int64(len(sampleProducts())) {
		t.Errorf("expected %d products, got %d", len(sampleProducts()), count)
	}

	var found models.Product
	if err := db.First(&found, "id = ?", 5).Error; err != nil {
		t.Fatalf("failed to find inserted product: %v", err)
	}
	if found.Title != "SSD" || !found.Sold || found.DateOfSale != "2021-03-15T10:00:00+05:30" {
		t.Errorf("unexpected stored product: %+v", found)
	}
}

func TestGormProductRepository_InsertAll_DuplicateRollsBack(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	t.Run("second seed fails and keeps the first", func(t *testing.T) {
		if err := repo.InsertAll(ctx, sampleProducts()); err != nil {
			t.Fatalf("first InsertAll() error = %v", err)
		}

		err := repo.InsertAll(ctx, sampleProducts())
		if !errors.Is(err, ErrDuplicateProduct) {
			t.Fatalf("expected ErrDuplicateProduct, got %v", err)
		}
		if !strings.Contains(err.Error(), "id 1") {
			t.Errorf("error should name the first duplicate id, got %q", err.Error())
		}

		count, _ := repo.Count(ctx)
		if count != int64(len(sampleProducts())) {
			t.Errorf("row count changed after failed seed: got %d", count)
		}
	})

	t.Run("duplicate late in the batch rolls back earlier inserts", func(t *testing.T) {
		batch := []models.Product{
			{ID: 100, Title: "new one", DateOfSale: "2021-01-01"},
			{ID: 101, Title: "new two", DateOfSale: "2021-01-02"},
			{ID: 3, Title: "already there", DateOfSale: "2021-01-03"},
		}

		err := repo.InsertAll(ctx, batch)
		if !errors.Is(err, ErrDuplicateProduct) {
			t.Fatalf("expected ErrDuplicateProduct, got %v", err)
		}
		if !strings.Contains(err.Error(), "id 3") {
			t.Errorf("error should name id 3, got %q", err.Error())
		}

		var leaked int64
		db.Model(&models.Product{}).Where("id IN ?", []int64{100, 101}).Count(&leaked)
		if leaked != 0 {
			t.Errorf("expected no partial inserts, found %d", leaked)
		}
	})

	t.Run("duplicate inside one batch", func(t *testing.T) {
		batch := []models.Product{
			{ID: 200, Title: "first", DateOfSale: "2021-01-01"},
			{ID: 200, Title: "again", DateOfSale: "2021-01-01"},
		}

		if err := repo.InsertAll(ctx, batch); !errors.Is(err, ErrDuplicateProduct) {
			t.Fatalf("expected ErrDuplicateProduct, got %v", err)
		}
	})
}

func TestGormProductRepository_Statistics(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	if err := repo.InsertAll(ctx, sampleProducts()); err != nil {
		t.Fatalf("InsertAll() error = %v", err)
	}

	tests := []struct {
		month   string
		total   float64
		sold    int64
		notSold int64
	}{
		{"03", 109.95 + 22.3 + 100 + 999.99 + 100.5, 3, 2},
		{"07", 56.99, 1, 0},
		{"12", 695, 0, 1},
		{"01", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.month, func(t *testing.T) {
			stats, err := repo.Statistics(ctx, tt.month)
			if err != nil {
				t.Fatalf("Statistics() error = %v", err)
			}

			if diff := stats.TotalSaleAmount - tt.total; diff > 1e-6 || diff < -1e-6 {
				t.Errorf("TotalSaleAmount = %v, want %v", stats.TotalSaleAmount, tt.total)
			}
			if stats.TotalSoldItems != tt.sold {
				t.Errorf("TotalSoldItems = %d, want %d", stats.TotalSoldItems, tt.sold)
			}
			if stats.TotalNotSoldItems != tt.notSold {
				t.Errorf("TotalNotSoldItems = %d, want %d", stats.TotalNotSoldItems, tt.notSold)
			}
		})
	}
}

func TestGormProductRepository_PriceRanges(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	if err := repo.InsertAll(ctx, sampleProducts()); err != nil {
		t.Fatalf("InsertAll() error = %v", err)
	}

	ranges, err := repo.PriceRanges(ctx, "03")
	if err != nil {
		t.Fatalf("PriceRanges() error = %v", err)
	}

	// 22.3 and 100 -> 0-100, 100.5 and 109.95 -> 101-200, 999.99 -> 901+
	want := []models.PriceRangeCount{
		{PriceRange: "0-100", ItemCount: 2},
		{PriceRange: "101-200", ItemCount: 2},
		{PriceRange: "901+", ItemCount: 1},
	}

	if len(ranges) != len(want) {
		t.Fatalf("expected %d ranges, got %d: %+v", len(want), len(ranges), ranges)
	}
	for i := range want {
		if ranges[i] != want[i] {
			t.Errorf("ranges[%d] = %+v, want %+v", i, ranges[i], want[i])
		}
	}

	t.Run("empty month", func(t *testing.T) {
		ranges, err := repo.PriceRanges(ctx, "02")
		if err != nil {
			t.Fatalf("PriceRanges() error = %v", err)
		}
		if ranges == nil || len(ranges) != 0 {
			t.Errorf("expected empty non-nil slice, got %#v", ranges)
		}
	})
}

func TestGormProductRepository_Categories(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	if err := repo.InsertAll(ctx, sampleProducts()); err != nil {
		t.Fatalf("InsertAll() error = %v", err)
	}

	categories, err := repo.Categories(ctx, "03")
	if err != nil {
		t.Fatalf("Categories() error = %v", err)
	}

	want := []models.CategoryCount{
		{Category: "electronics", ItemCount: 2},
		{Category: "jewelery", ItemCount: 1},
		{Category: "men's clothing", ItemCount: 2},
	}

	if len(categories) != len(want) {
		t.Fatalf("expected %d categories, got %d: %+v", len(want), len(categories), categories)
	}
	for i := range want {
		if categories[i] != want[i] {
			t.Errorf("categories[%d] = %+v, want %+v", i, categories[i], want[i])
		}
	}
}

func TestBuildPriceRangeExpr(t *testing.T) {
	expr := buildPriceRangeExpr()

	if !strings.HasPrefix(expr, "CASE WHEN price <= 100 THEN '0-100'") {
		t.Errorf("unexpected expression start: %s", expr)
	}
	if !strings.HasSuffix(expr, "ELSE '901+' END") {
		t.Errorf("unexpected expression end: %s", expr)
	}
	if got := strings.Count(expr, "WHEN"); got != 9 {
		t.Errorf("expected 9 WHEN clauses, got %d", got)
	}
}
