package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Lixing-Zhang/sales-dashboard/backend/internal/models"
)

// CombinedHandler merges the three reports by calling their endpoints
type CombinedHandler struct {
	client  *http.Client
	baseURL string
	logger  *slog.Logger
}

// NewCombinedHandler creates a new combined handler. baseURL is the fixed
// address of this server; the request's Host header is never consulted.
func NewCombinedHandler(baseURL string, timeout time.Duration, logger *slog.Logger) *CombinedHandler {
	return &CombinedHandler{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		logger:  logger,
	}
}

// CombinedData handles GET /combined-data?month=<Name>
func (h *CombinedHandler) CombinedData(w http.ResponseWriter, r *http.Request) {
	month, ok := monthOrReject(w, r, h.logger)
	if !ok {
		return
	}

	var combined models.CombinedData
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		return h.fetch(ctx, h.baseURL, "/statistics", month.Name, &combined.Statistics)
	})
	g.Go(func() error {
		return h.fetch(ctx, h.baseURL, "/bar-chart", month.Name, &combined.BarChart)
	})
	g.Go(func() error {
		return h.fetch(ctx, h.baseURL, "/pie-chart", month.Name, &combined.PieChart)
	})

	if err := g.Wait(); err != nil {
		h.logger.Error("failed to fetch combined data", "month", month.Name, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to fetch combined data", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, combined, h.logger)
}

// fetch GETs path?month=name and stores the raw JSON body in dest
func (h *CombinedHandler) fetch(ctx context.Context, base, path, monthName string, dest *json.RawMessage) error {
	target := base + path + "?" + url.Values{"month": {monthName}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", path, err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", path, err)
	}

	body = bytes.TrimSpace(body)
	if !json.Valid(body) {
		return fmt.Errorf("%s returned invalid JSON", path)
	}

	*dest = body
	return nil
}
