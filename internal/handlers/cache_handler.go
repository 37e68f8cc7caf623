package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/sales-dashboard/backend/internal/cache"
)

// cacheStats is the interface for reading cache counters
type cacheStats interface {
	GetStats() cache.StatsSnapshot
}

// CacheHandler exposes report cache statistics
type CacheHandler struct {
	cache  cacheStats
	logger *slog.Logger
}

// NewCacheHandler creates a new CacheHandler
func NewCacheHandler(cache cacheStats, logger *slog.Logger) *CacheHandler {
	return &CacheHandler{
		cache:  cache,
		logger: logger,
	}
}

// GetStats handles GET /cache/stats (for debugging/monitoring)
func (h *CacheHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.cache.GetStats(), h.logger)
}
