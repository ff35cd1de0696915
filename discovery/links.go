package discovery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/blogscrape/scraper"
)

// CollectArticleLinks returns up to cfg.MaxArticles absolute article URLs
// linked from a listing page, in the order they first appear.
func CollectArticleLinks(doc *goquery.Document, cfg *scraper.SiteConfig) []string {
	var hrefs []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		hrefs = append(hrefs, href)
	})

	return SelectArticleLinks(hrefs, cfg)
}

// SelectArticleLinks filters raw hrefs down to article links, resolves them
// to absolute URLs, drops duplicates while keeping first-seen order, and
// truncates to cfg.MaxArticles.
func SelectArticleLinks(hrefs []string, cfg *scraper.SiteConfig) []string {
	links := []string{}
	seen := make(map[string]bool)

	for _, href := range hrefs {
		if !IsArticleLink(href, cfg) {
			continue
		}

		absolute := AbsoluteURL(href, cfg)
		if seen[absolute] {
			continue
		}
		seen[absolute] = true
		links = append(links, absolute)
	}

	if len(links) > cfg.MaxArticles {
		links = links[:cfg.MaxArticles]
	}

	return links
}

// IsArticleLink reports whether href points at an article under the listing
// path. Pagination controls and the listing root itself are excluded.
//
// Any href containing the pagination marker is rejected, which also drops an
// article whose slug happens to contain "/page/".
func IsArticleLink(href string, cfg *scraper.SiteConfig) bool {
	prefix := cfg.ArticlePrefix()
	if !strings.Contains(href, prefix) {
		return false
	}
	if strings.Contains(href, cfg.PaginationMarker()) {
		return false
	}
	if href == prefix || href == cfg.ListingURL()+"/" {
		return false
	}
	return true
}

// AbsoluteURL prefixes relative hrefs with the site origin. Hrefs that
// already carry an http or https scheme are returned unchanged.
func AbsoluteURL(href string, cfg *scraper.SiteConfig) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return cfg.Origin() + href
}
