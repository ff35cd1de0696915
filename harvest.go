package blogscrape

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/pevans/blogscrape/discovery"
	"github.com/pevans/blogscrape/extract"
	"github.com/pevans/blogscrape/scraper"
)

// titleLogLength caps how much of a title appears in progress lines.
const titleLogLength = 50

// Harvester walks a blog's listing, picks the target articles, and extracts
// them one at a time.
type Harvester struct {
	config  *scraper.SiteConfig
	fetcher *discovery.Fetcher
	logger  *log.Logger
	pause   func(ctx context.Context, d time.Duration) error
}

// NewHarvester creates a harvester. A nil fetcher is built from the config,
// and a nil logger means log.Default().
func NewHarvester(config *scraper.SiteConfig, fetcher *discovery.Fetcher, logger *log.Logger) *Harvester {
	if config == nil {
		config = scraper.DefaultSiteConfig()
	}
	if fetcher == nil {
		fetcher = discovery.NewFetcher(config)
	}
	if logger == nil {
		logger = log.Default()
	}

	return &Harvester{
		config:  config,
		fetcher: fetcher,
		logger:  logger,
		pause:   sleepContext,
	}
}

// Run discovers the target articles and harvests each of them. Failing to
// fetch a listing page (or the feed) aborts the run; failing on a single
// article only drops that article.
func (h *Harvester) Run(ctx context.Context) ([]ArticleRecord, error) {
	targets, err := h.DiscoverTargets(ctx)
	if err != nil {
		return nil, err
	}

	return h.HarvestArticles(ctx, targets)
}

// DiscoverTargets returns the article URLs to harvest, using the configured
// discovery mode.
func (h *Harvester) DiscoverTargets(ctx context.Context) ([]string, error) {
	if h.config.DiscoveryMode == scraper.DiscoveryFeed {
		return h.discoverFromFeed(ctx)
	}
	return h.discoverFromListing(ctx)
}

// discoverFromListing fetches the listing root to find the last page, then
// collects article links from that page.
func (h *Harvester) discoverFromListing(ctx context.Context) ([]string, error) {
	rootURL := h.config.ListingURL()
	h.logger.Printf("INFO: Fetching blog page: %s", rootURL)
	rootDoc, err := h.fetcher.FetchHTML(ctx, rootURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing page %s: %w", rootURL, err)
	}

	lastPage := discovery.ResolveLastPage(rootDoc, h.config)
	h.logger.Printf("INFO: Found last page: %d", lastPage)

	lastPageURL := h.config.PageURL(lastPage)
	h.logger.Printf("INFO: Fetching last page: %s", lastPageURL)
	lastDoc, err := h.fetcher.FetchHTML(ctx, lastPageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing page %s: %w", lastPageURL, err)
	}

	targets := discovery.CollectArticleLinks(lastDoc, h.config)
	h.logger.Printf("INFO: Found %d articles on last page", len(targets))

	return targets, nil
}

func (h *Harvester) discoverFromFeed(ctx context.Context) ([]string, error) {
	feedURL := h.config.FeedURL()
	h.logger.Printf("INFO: Fetching feed: %s", feedURL)
	feed, err := h.fetcher.FetchFeed(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed %s: %w", feedURL, err)
	}

	targets := discovery.CollectFeedLinks(feed, h.config)
	h.logger.Printf("INFO: Found %d articles in feed", len(targets))

	return targets, nil
}

// HarvestArticles extracts every target in order. Each target yields at most
// one record; failed targets yield none and are logged. The configured delay
// separates a successful extraction from the next target. The returned error
// is non-nil only when ctx ends the run early, in which case the records
// gathered so far are returned with it.
func (h *Harvester) HarvestArticles(ctx context.Context, targets []string) ([]ArticleRecord, error) {
	results := make([]*ArticleRecord, len(targets))

	for i, url := range targets {
		if err := ctx.Err(); err != nil {
			return compact(results), err
		}

		h.logger.Printf("INFO: Scraping article %d/%d: %s", i+1, len(targets), url)
		record, err := h.HarvestArticle(ctx, url)
		if err != nil {
			h.logger.Printf("ERROR: Error scraping %s: %v", url, err)
			continue
		}
		results[i] = record
		h.logger.Printf("INFO: Successfully scraped: %s", truncate(record.Title, titleLogLength))

		if i < len(targets)-1 {
			if err := h.pause(ctx, h.config.Delay); err != nil {
				return compact(results), err
			}
		}
	}

	return compact(results), nil
}

// HarvestArticle fetches one article page and extracts its record.
func (h *Harvester) HarvestArticle(ctx context.Context, url string) (*ArticleRecord, error) {
	doc, err := h.fetcher.FetchHTML(ctx, url)
	if err != nil {
		return nil, err
	}

	return &ArticleRecord{
		Title:             extract.Title(doc),
		Content:           extract.Content(doc, h.config.MinTextLength),
		OriginalSourceURL: url,
	}, nil
}

// compact drops the empty slots left by failed targets.
func compact(results []*ArticleRecord) []ArticleRecord {
	records := make([]ArticleRecord, 0, len(results))
	for _, r := range results {
		if r != nil {
			records = append(records, *r)
		}
	}
	return records
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// truncate shortens s to at most n characters, marking the cut with "...".
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
