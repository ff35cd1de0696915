package scraper

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Discovery modes for SiteConfig.DiscoveryMode.
const (
	DiscoveryListing = "listing"
	DiscoveryFeed    = "feed"
)

// Default values for SiteConfig.
const (
	DefaultSiteURL       = "https://beyondchats.com"
	DefaultListingPath   = "/blogs"
	DefaultMaxArticles   = 5
	DefaultDelay         = 1 * time.Second
	DefaultMinTextLength = 20
	DefaultOutputPath    = "scraped_articles.json"
	DefaultFeedPath      = "/feed/"
)

// paginationMarker is the path fragment that identifies listing pagination
// links.
const paginationMarker = "/page/"

// SiteConfig defines which site to harvest and how.
type SiteConfig struct {
	// SiteURL is the origin of the site, e.g. https://beyondchats.com.
	SiteURL     string `json:"site_url"`
	ListingPath string `json:"listing_path"`
	MaxArticles int    `json:"max_articles"`
	// Delay is the pause after each successful article extraction.
	Delay time.Duration `json:"delay"`
	// Text fragments must be strictly longer than MinTextLength characters.
	MinTextLength int    `json:"min_text_length"`
	OutputPath    string `json:"output_path"`
	DiscoveryMode string `json:"discovery_mode"`
	FeedPath      string `json:"feed_path,omitempty"`
	UserAgent     string `json:"user_agent,omitempty"`
	// Timeout bounds each HTTP request. Zero leaves the client default (no
	// timeout).
	Timeout time.Duration `json:"timeout,omitempty"`
}

// DefaultSiteConfig returns the configuration for the BeyondChats blog with
// the fixed harvesting constants.
func DefaultSiteConfig() *SiteConfig {
	return &SiteConfig{
		SiteURL:       DefaultSiteURL,
		ListingPath:   DefaultListingPath,
		MaxArticles:   DefaultMaxArticles,
		Delay:         DefaultDelay,
		MinTextLength: DefaultMinTextLength,
		OutputPath:    DefaultOutputPath,
		DiscoveryMode: DiscoveryListing,
		FeedPath:      DefaultFeedPath,
	}
}

// Validate checks that the configuration can drive a harvest.
func (c *SiteConfig) Validate() error {
	if c.SiteURL == "" {
		return errors.New("site_url is required")
	}
	u, err := url.Parse(c.SiteURL)
	if err != nil {
		return fmt.Errorf("invalid site_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("site_url must use http or https scheme")
	}
	if u.Host == "" {
		return errors.New("site_url must include a host")
	}
	if !strings.HasPrefix(c.ListingPath, "/") {
		return errors.New("listing_path must start with /")
	}
	if c.MaxArticles <= 0 {
		return fmt.Errorf("max_articles must be positive, got %d", c.MaxArticles)
	}
	if c.Delay < 0 {
		return fmt.Errorf("delay must not be negative, got %s", c.Delay)
	}
	if c.MinTextLength < 0 {
		return fmt.Errorf("min_text_length must not be negative, got %d", c.MinTextLength)
	}
	switch c.DiscoveryMode {
	case DiscoveryListing:
	case DiscoveryFeed:
		if c.FeedPath == "" {
			return errors.New("feed_path is required for feed discovery")
		}
	default:
		return fmt.Errorf("discovery_mode must be %q or %q, got %q",
			DiscoveryListing, DiscoveryFeed, c.DiscoveryMode)
	}
	return nil
}

// Origin returns the site URL without any trailing slash.
func (c *SiteConfig) Origin() string {
	return strings.TrimRight(c.SiteURL, "/")
}

// ListingURL returns the absolute URL of the listing root, e.g.
// https://beyondchats.com/blogs.
func (c *SiteConfig) ListingURL() string {
	return c.Origin() + strings.TrimRight(c.ListingPath, "/")
}

// PageURL returns the absolute URL of listing page n.
func (c *SiteConfig) PageURL(n int) string {
	return fmt.Sprintf("%s%s%d/", c.ListingURL(), paginationMarker, n)
}

// FeedURL returns the absolute URL of the site's syndication feed.
func (c *SiteConfig) FeedURL() string {
	return c.Origin() + c.FeedPath
}

// ArticlePrefix is the path fragment every article link must contain, e.g.
// "/blogs/".
func (c *SiteConfig) ArticlePrefix() string {
	return strings.TrimRight(c.ListingPath, "/") + "/"
}

// PaginationPrefix is the path fragment every pagination link must contain,
// e.g. "/blogs/page/".
func (c *SiteConfig) PaginationPrefix() string {
	return strings.TrimRight(c.ListingPath, "/") + paginationMarker
}

// PaginationMarker returns the fragment that separates a listing path from
// its page number.
func (c *SiteConfig) PaginationMarker() string {
	return paginationMarker
}
