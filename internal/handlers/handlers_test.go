package handlers

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Lixing-Zhang/sales-dashboard/backend/internal/middleware"
	"github.com/Lixing-Zhang/sales-dashboard/backend/internal/models"
	"github.com/Lixing-Zhang/sales-dashboard/backend/internal/repository"
	"github.com/Lixing-Zhang/sales-dashboard/backend/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupReportRouter seeds a temp SQLite database and mounts the report
// endpoints the same way the server does.
func setupReportRouter(t *testing.T) (chi.Router, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "handlers.db")), &gorm.Config{
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

	repo := repository.NewGormProductRepository(db)
	if err := repo.InsertAll(context.Background(), []models.Product{
		{ID: 1, Title: "Backpack", Price: 109.95, Category: "men's clothing", Sold: true, DateOfSale: "2021-01-27T20:29:54+05:30"},
		{ID: 2, Title: "T-Shirt", Price: 22.3, Category: "men's clothing", Sold: false, DateOfSale: "2021-01-12T20:29:54+05:30"},
		{ID: 3, Title: "Monitor", Price: 999.99, Category: "electronics", Sold: true, DateOfSale: "2022-01-05T10:00:00+05:30"},
		{ID: 4, Title: "Ring", Price: 168, Category: "jewelery", Sold: false, DateOfSale: "2021-02-05T10:00:00+05:30"},
	}); err != nil {
		t.Fatalf("failed to seed test database: %v", err)
	}

	log := discardLogger()
	h := NewReportHandler(service.NewReportService(repo, nil, log), log)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireMonth)
		r.Get("/statistics", h.Statistics)
		r.Get("/bar-chart", h.BarChart)
		r.Get("/pie-chart", h.PieChart)
	})

	return r, db
}
