package discovery

import (
	"context"
	"fmt"
	"net/http"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/blogscrape/scraper"
)

// HTTPError is returned when a page responds with anything but 200 OK.
type HTTPError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error fetching %s: %s", e.URL, e.Status)
}

// Fetcher retrieves pages and parses them into goquery documents.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// NewFetcher creates a fetcher from the site configuration. A zero Timeout
// leaves the client without a timeout.
func NewFetcher(cfg *scraper.SiteConfig) *Fetcher {
	return NewFetcherWithClient(&http.Client{Timeout: cfg.Timeout}, cfg.UserAgent)
}

// NewFetcherWithClient creates a fetcher around an existing HTTP client. A
// nil client means http.DefaultClient.
func NewFetcherWithClient(client *http.Client, userAgent string) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{
		client:    client,
		userAgent: userAgent,
	}
}

// FetchHTML fetches the given URL and parses the body as HTML.
func (f *Fetcher) FetchHTML(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Only identify ourselves when asked to; otherwise send client defaults
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return doc, nil
}
