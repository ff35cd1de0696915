package discovery

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/blogscrape/scraper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper: parse an HTML fixture
func parseHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

// TestResolveLastPage_PicksMaximum verifies pages 2 and 3 resolve to 3
func TestResolveLastPage_PicksMaximum(t *testing.T) {
	doc := parseHTML(t, `<html><body>
		<a href="/blogs/page/2/">2</a>
		<a href="/blogs/page/3/">3</a>
	</body></html>`)

	assert.Equal(t, 3, ResolveLastPage(doc, scraper.DefaultSiteConfig()))
}

// TestResolveLastPage_OrderIndependent verifies the maximum wins wherever
// it appears
func TestResolveLastPage_OrderIndependent(t *testing.T) {
	doc := parseHTML(t, `<html><body>
		<a href="https://beyondchats.com/blogs/page/15/">Last</a>
		<a href="/blogs/page/2/">2</a>
		<a href="/blogs/page/14/">14</a>
	</body></html>`)

	assert.Equal(t, 15, ResolveLastPage(doc, scraper.DefaultSiteConfig()))
}

// TestResolveLastPage_NoPagination verifies the root is its own last page
func TestResolveLastPage_NoPagination(t *testing.T) {
	doc := parseHTML(t, `<html><body>
		<a href="/blogs/post-a/">Post A</a>
		<a href="/about/">About</a>
	</body></html>`)

	assert.Equal(t, 1, ResolveLastPage(doc, scraper.DefaultSiteConfig()))
}

// TestResolveLastPage_MalformedNumbers verifies unparsable segments are
// skipped rather than failing resolution
func TestResolveLastPage_MalformedNumbers(t *testing.T) {
	doc := parseHTML(t, `<html><body>
		<a href="/blogs/page/next/">Next</a>
		<a href="/blogs/page/4/?ref=nav">4</a>
		<a href="/blogs/page/2/">2</a>
	</body></html>`)

	assert.Equal(t, 2, ResolveLastPage(doc, scraper.DefaultSiteConfig()))
}

// TestResolveLastPage_AllMalformed verifies fallback to 1 when nothing parses
func TestResolveLastPage_AllMalformed(t *testing.T) {
	doc := parseHTML(t, `<html><body>
		<a href="/blogs/page/">Pages</a>
		<a href="/blogs/page/last/">Last</a>
	</body></html>`)

	assert.Equal(t, 1, ResolveLastPage(doc, scraper.DefaultSiteConfig()))
}

// TestResolveLastPage_IgnoresOtherPageLinks verifies only listing pagination
// counts
func TestResolveLastPage_IgnoresOtherPageLinks(t *testing.T) {
	doc := parseHTML(t, `<html><body>
		<a href="/docs/page/99/">Docs</a>
		<a href="/blogs/page/3/">3</a>
	</body></html>`)

	assert.Equal(t, 3, ResolveLastPage(doc, scraper.DefaultSiteConfig()))
}

// TestParsePageNumber verifies segment extraction after the last marker
func TestParsePageNumber(t *testing.T) {
	tests := []struct {
		name   string
		href   string
		want   int
		wantOK bool
	}{
		{name: "trailing slash", href: "/blogs/page/3/", want: 3, wantOK: true},
		{name: "no trailing slash", href: "/blogs/page/7", want: 7, wantOK: true},
		{name: "absolute", href: "https://beyondchats.com/blogs/page/12/", want: 12, wantOK: true},
		{name: "last marker wins", href: "/page/1/blogs/page/9/", want: 9, wantOK: true},
		{name: "not a number", href: "/blogs/page/next/", wantOK: false},
		{name: "empty segment", href: "/blogs/page/", wantOK: false},
		{name: "no marker", href: "/blogs/post-a/", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePageNumber(tt.href, "/page/")
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
