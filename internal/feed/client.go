// Package feed downloads the product seed feed.
package feed

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	ErrEmptyURL = errors.New("feed URL is empty")
)

// Record is one raw product object exactly as it appears in the feed.
// Field values are coerced later by the seed service.
type Record map[string]any

// Client fetches a JSON array of product records from a URL
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a feed client with the given request timeout
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// URL returns the feed location
func (c *Client) URL() string {
	return c.url
}

// Fetch downloads and decodes the feed. URLs ending in .gz are
// decompressed before decoding.
func (c *Client) Fetch(ctx context.Context) ([]Record, error) {
	if c.url == "" {
		return nil, ErrEmptyURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if strings.HasSuffix(c.url, ".gz") {
		gzReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzReader.Close()
		body = gzReader
	}

	return decodeRecords(body)
}

// decodeRecords parses a JSON array of objects
func decodeRecords(r io.Reader) ([]Record, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode feed: %w", err)
	}
	return records, nil
}
