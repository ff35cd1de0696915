package discovery

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/blogscrape/scraper"
)

// ResolveLastPage returns the highest page number linked from a listing
// page. Anchors whose number does not parse are ignored. A listing without
// pagination controls is its own last page, so the minimum result is 1.
func ResolveLastPage(doc *goquery.Document, cfg *scraper.SiteConfig) int {
	lastPage := 1
	prefix := cfg.PaginationPrefix()

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if !strings.Contains(href, prefix) {
			return
		}

		page, ok := ParsePageNumber(href, cfg.PaginationMarker())
		if ok && page > lastPage {
			lastPage = page
		}
	})

	return lastPage
}

// ParsePageNumber extracts the page number that follows the last occurrence
// of marker in href, e.g. 3 from "/blogs/page/3/".
func ParsePageNumber(href, marker string) (int, bool) {
	idx := strings.LastIndex(href, marker)
	if idx < 0 {
		return 0, false
	}

	segment := strings.Trim(href[idx+len(marker):], "/")
	page, err := strconv.Atoi(strings.TrimSpace(segment))
	if err != nil {
		return 0, false
	}

	return page, true
}
