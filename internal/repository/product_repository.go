package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/Lixing-Zhang/sales-dashboard/backend/internal/models"
)

var (
	ErrDuplicateProduct = errors.New("product already exists")
)

// monthFilter matches rows whose dateOfSale (YYYY-MM-DD...) falls in the
// given two-digit month. substr is available in both SQLite and PostgreSQL.
const monthFilter = `substr("dateOfSale", 6, 2) = ?`

// priceBand is an inclusive upper bound and its histogram label
type priceBand struct {
	max   float64
	label string
}

var priceBands = []priceBand{
	{100, "0-100"},
	{200, "101-200"},
	{300, "201-300"},
	{400, "301-400"},
	{500, "401-500"},
	{600, "501-600"},
	{700, "601-700"},
	{800, "701-800"},
	{900, "801-900"},
}

const openPriceBand = "901+"

// priceRangeExpr is a CASE expression assigning every price to exactly one band.
var priceRangeExpr = buildPriceRangeExpr()

func buildPriceRangeExpr() string {
	var b strings.Builder
	b.WriteString("CASE")
	for _, band := range priceBands {
		fmt.Fprintf(&b, " WHEN price <= %s THEN '%s'", strconv.FormatFloat(band.max, 'f', -1, 64), band.label)
	}
	fmt.Fprintf(&b, " ELSE '%s' END", openPriceBand)
	return b.String()
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	InsertAll(ctx context.Context, products []models.Product) error
	Count(ctx context.Context) (int64, error)
	Statistics(ctx context.Context, month string) (*models.Statistics, error)
	PriceRanges(ctx context.Context, month string) ([]models.PriceRangeCount, error)
	Categories(ctx context.Context, month string) ([]models.CategoryCount, error)
}

// GormProductRepository implements ProductRepository on top of GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GORM-backed product repository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func inMonth(month string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(monthFilter, month)
	}
}

// InsertAll inserts every product in a single transaction. Each id is looked
// up before insertion; the first id already present aborts and rolls back
// the whole batch.
func (r *GormProductRepository) InsertAll(ctx context.Context, products []models.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range products {
			id := products[i].ID

			var existing int64
			if err := tx.Model(&models.Product{}).Where("id = ?", id).Count(&existing).Error; err != nil {
				return fmt.Errorf("failed to look up product %d: %w", id, err)
			}
			if existing > 0 {
				return fmt.Errorf("%w: id %d", ErrDuplicateProduct, id)
			}

			if err := tx.Create(&products[i]).Error; err != nil {
				return fmt.Errorf("failed to insert product %d: %w", id, err)
			}
		}
		return nil
	})
}

// Count returns the total number of stored products
func (r *GormProductRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// Statistics runs the three month-filtered aggregates independently
func (r *GormProductRepository) Statistics(ctx context.Context, month string) (*models.Statistics, error) {
	db := r.db.WithContext(ctx)
	stats := &models.Statistics{}

	row := db.Model(&models.Product{}).Scopes(inMonth(month)).
		Select("COALESCE(SUM(price), 0)").Row()
	if err := row.Scan(&stats.TotalSaleAmount); err != nil {
		return nil, fmt.Errorf("failed to sum sales: %w", err)
	}

	if err := db.Model(&models.Product{}).Scopes(inMonth(month)).
		Where("sold = ?", true).Count(&stats.TotalSoldItems).Error; err != nil {
		return nil, fmt.Errorf("failed to count sold items: %w", err)
	}

	if err := db.Model(&models.Product{}).Scopes(inMonth(month)).
		Where("sold = ?", false).Count(&stats.TotalNotSoldItems).Error; err != nil {
		return nil, fmt.Errorf("failed to count unsold items: %w", err)
	}

	return stats, nil
}

// PriceRanges counts the month's products per price band, skipping empty bands
func (r *GormProductRepository) PriceRanges(ctx context.Context, month string) ([]models.PriceRangeCount, error) {
	ranges := make([]models.PriceRangeCount, 0, len(priceBands)+1)
	err := r.db.WithContext(ctx).Model(&models.Product{}).Scopes(inMonth(month)).
		Select(priceRangeExpr + " AS price_range, COUNT(*) AS item_count").
		Group("price_range").
		Order("MIN(price)").
		Scan(&ranges).Error
	if err != nil {
		return nil, fmt.Errorf("failed to group by price range: %w", err)
	}
	if ranges == nil {
		ranges = []models.PriceRangeCount{}
	}
	return ranges, nil
}

// Categories counts the month's products per category
func (r *GormProductRepository) Categories(ctx context.Context, month string) ([]models.CategoryCount, error) {
	categories := make([]models.CategoryCount, 0)
	err := r.db.WithContext(ctx).Model(&models.Product{}).Scopes(inMonth(month)).
		Select("category, COUNT(*) AS item_count").
		Group("category").
		Order("category").
		Scan(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to group by category: %w", err)
	}
	if categories == nil {
		categories = []models.CategoryCount{}
	}
	return categories, nil
}
