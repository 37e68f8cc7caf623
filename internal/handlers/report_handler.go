package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/sales-dashboard/backend/internal/service"
)

// ReportHandler serves the month-filtered aggregate reports.
// Routes must be wrapped in middleware.RequireMonth.
type ReportHandler struct {
	service *service.ReportService
	logger  *slog.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(service *service.ReportService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger,
	}
}

// Statistics handles GET /statistics?month=<Name>
func (h *ReportHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	month, ok := monthOrReject(w, r, h.logger)
	if !ok {
		return
	}

	stats, err := h.service.Statistics(r.Context(), month.Number)
	if err != nil {
		h.logger.Error("failed to compute statistics", "month", month.Name, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, stats, h.logger)
}

// BarChart handles GET /bar-chart?month=<Name>
func (h *ReportHandler) BarChart(w http.ResponseWriter, r *http.Request) {
	month, ok := monthOrReject(w, r, h.logger)
	if !ok {
		return
	}

	ranges, err := h.service.BarChart(r.Context(), month.Number)
	if err != nil {
		h.logger.Error("failed to compute bar chart", "month", month.Name, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, ranges, h.logger)
}

// PieChart handles GET /pie-chart?month=<Name>
func (h *ReportHandler) PieChart(w http.ResponseWriter, r *http.Request) {
	month, ok := monthOrReject(w, r, h.logger)
	if !ok {
		return
	}

	categories, err := h.service.PieChart(r.Context(), month.Number)
	if err != nil {
		h.logger.Error("failed to compute pie chart", "month", month.Name, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, categories, h.logger)
}
