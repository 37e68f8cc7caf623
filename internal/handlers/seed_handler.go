package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Lixing-Zhang/sales-dashboard/backend/internal/models"
)

// seeder is the interface for loading the seed feed
type seeder interface {
	Seed(ctx context.Context) (*models.SeedResult, error)
}

// SeedHandler handles database initialization
type SeedHandler struct {
	seeder  seeder
	timeout time.Duration
	logger  *slog.Logger
}

// NewSeedHandler creates a new SeedHandler. timeout bounds the fetch and insert.
func NewSeedHandler(seeder seeder, timeout time.Duration, logger *slog.Logger) *SeedHandler {
	return &SeedHandler{
		seeder:  seeder,
		timeout: timeout,
		logger:  logger,
	}
}

// InitializeDatabase handles GET /initialize-database.
// Failures are reported with their message, including the duplicate id
// when the store was already seeded.
func (h *SeedHandler) InitializeDatabase(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	result, err := h.seeder.Seed(ctx)
	if err != nil {
		h.logger.Error("failed to initialize database", "error", err)
		WriteError(w, http.StatusInternalServerError, err.Error(), h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, result, h.logger)
}
