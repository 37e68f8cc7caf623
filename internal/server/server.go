// Package server assembles the HTTP router and owns the listener lifecycle.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"gorm.io/gorm"

	"github.com/Lixing-Zhang/sales-dashboard/backend/internal/cache"
	"github.com/Lixing-Zhang/sales-dashboard/backend/internal/config"
	"github.com/Lixing-Zhang/sales-dashboard/backend/internal/feed"
	"github.com/Lixing-Zhang/sales-dashboard/backend/internal/handlers"
	"github.com/Lixing-Zhang/sales-dashboard/backend/internal/middleware"
	"github.com/Lixing-Zhang/sales-dashboard/backend/internal/repository"
	"github.com/Lixing-Zhang/sales-dashboard/backend/internal/service"
)

// Server wires repositories, services and handlers behind a chi router
type Server struct {
	cfg    *config.Config
	logger *slog.Logger
	router chi.Router
	http   *http.Server
}

// New builds the server. reportCache may be nil, which disables caching.
func New(cfg *config.Config, log *slog.Logger, db *gorm.DB, reportCache *cache.Cache) (*Server, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// Initialize repositories
	productRepo := repository.NewGormProductRepository(db)

	// Initialize services. The cache interface stays nil unless Redis is
	// configured so the report service sees a true nil.
	var reportStore service.Cache
	if reportCache != nil {
		reportStore = reportCache
	}
	reportService := service.NewReportService(productRepo, reportStore, log)

	feedClient := feed.NewClient(cfg.Seed.URL, cfg.Seed.Timeout)
	seedService := service.NewSeedService(feedClient, productRepo, reportService, log)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(sqlDB, log)
	seedHandler := handlers.NewSeedHandler(seedService, cfg.Seed.Timeout, log)
	reportHandler := handlers.NewReportHandler(reportService, log)
	combinedHandler := handlers.NewCombinedHandler(cfg.Combined.BaseURL, cfg.Combined.Timeout, log)

	r := chi.NewRouter()

	// Apply middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "api_key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", healthHandler.ServeHTTP)

	r.With(middleware.APIKeyAuth(cfg.Auth)).Get("/initialize-database", seedHandler.InitializeDatabase)

	// Month-filtered reports
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireMonth)
		r.Get("/statistics", reportHandler.Statistics)
		r.Get("/bar-chart", reportHandler.BarChart)
		r.Get("/pie-chart", reportHandler.PieChart)
		r.Get("/combined-data", combinedHandler.CombinedData)
	})

	if reportCache != nil {
		r.Get("/cache/stats", handlers.NewCacheHandler(reportCache, log).GetStats)
	}

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	return &Server{
		cfg:    cfg,
		logger: log,
		router: r,
		http: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		},
	}, nil
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.http.Addr
}

// ListenAndServe blocks until the server stops. A graceful Shutdown is not
// reported as an error.
func (s *Server) ListenAndServe() error {
	s.logger.Info("server listening", "address", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
