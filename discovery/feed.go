package discovery

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/pevans/blogscrape/scraper"
)

// FetchFeed fetches and parses an RSS, Atom, or JSON feed. gofeed detects
// the format itself.
func (f *Fetcher) FetchFeed(ctx context.Context, url string) (*gofeed.Feed, error) {
	fp := gofeed.NewParser()
	fp.Client = f.client
	if f.userAgent != "" {
		fp.UserAgent = f.userAgent
	}

	feed, err := fp.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}
	return feed, nil
}

// CollectFeedLinks returns up to cfg.MaxArticles article URLs from a feed,
// oldest first. Items without a date keep their feed order after the dated
// ones. The same article filter as the listing walk applies.
func CollectFeedLinks(feed *gofeed.Feed, cfg *scraper.SiteConfig) []string {
	items := slices.Clone(feed.Items)
	slices.SortStableFunc(items, func(a, b *gofeed.Item) int {
		ta, tb := itemTime(a), itemTime(b)
		switch {
		case ta == nil && tb == nil:
			return 0
		case ta == nil:
			return 1
		case tb == nil:
			return -1
		default:
			return ta.Compare(*tb)
		}
	})

	hrefs := make([]string, 0, len(items))
	for _, item := range items {
		hrefs = append(hrefs, item.Link)
	}

	return SelectArticleLinks(hrefs, cfg)
}

// itemTime prefers the published date and falls back to the updated date.
func itemTime(item *gofeed.Item) *time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed
	}
	return item.UpdatedParsed
}
