package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Lixing-Zhang/sales-dashboard/backend/internal/cache"
	"github.com/Lixing-Zhang/sales-dashboard/backend/internal/config"
	"github.com/Lixing-Zhang/sales-dashboard/backend/internal/database"
	"github.com/Lixing-Zhang/sales-dashboard/backend/internal/server"
	"github.com/Lixing-Zhang/sales-dashboard/backend/pkg/logger"
)

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

// run owns every resource so deferred closes happen before the process exits
func run(cfg *config.Config, log *slog.Logger) error {
	log.Info("starting sales dashboard api server",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"db_driver", cfg.Database.Driver,
		"log_level", cfg.LogLevel,
	)

	db, err := database.Open(cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Error("failed to close database", "error", err)
		}
	}()

	ctx := context.Background()
	if err := database.EnsureSchema(ctx, db); err != nil {
		return fmt.Errorf("failed to prepare schema: %w", err)
	}

	// Report cache is optional
	var reportCache *cache.Cache
	if cfg.Cache.Enabled() {
		reportCache, err = cache.Connect(ctx, cfg.Cache.RedisAddr, cfg.Cache.Prefix, cfg.Cache.TTL)
		if err != nil {
			return err
		}
		defer reportCache.Close()
		log.Info("report cache enabled", "addr", cfg.Cache.RedisAddr, "ttl", cfg.Cache.TTL)
	}

	srv, err := server.New(cfg, log, db, reportCache)
	if err != nil {
		return fmt.Errorf("failed to build server: %w", err)
	}

	// Start server in a goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	case <-quit:
	}

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}
