package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/sales-dashboard/backend/internal/middleware"
)

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes an error response in JSON format
func WriteError(w http.ResponseWriter, status int, message string, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]string{"error": message}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("failed to encode error response", "error", err)
	}
}

// monthOrReject returns the validated month, answering 400 when the route
// was mounted without the month middleware
func monthOrReject(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (middleware.Month, bool) {
	month, ok := middleware.MonthFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusBadRequest, "Month parameter is required", logger)
	}
	return month, ok
}
