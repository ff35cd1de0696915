// Package publish sends harvested articles to an article backend's batch
// import endpoint.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pevans/blogscrape"
	"github.com/pevans/blogscrape/store"
)

// importPath is relative to the backend base URL.
const importPath = "/api/articles/import/batch"

// Client posts article batches to a backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new publish client. A nil httpClient means
// http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d, body: %s", e.StatusCode, e.Body)
}

// Publish sends records to the backend in a single batch and returns the
// backend's import summary.
func (c *Client) Publish(ctx context.Context, records []blogscrape.ArticleRecord) (*store.ImportResult, error) {
	req := store.ImportBatchRequest{
		Articles: make([]store.ArticleInput, 0, len(records)),
	}
	for _, record := range records {
		req.Articles = append(req.Articles, store.InputFromRecord(record))
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := c.baseURL + importPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var result store.ImportBatchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if result.ImportResult == nil {
		result.ImportResult = &store.ImportResult{}
	}

	return result.ImportResult, nil
}
