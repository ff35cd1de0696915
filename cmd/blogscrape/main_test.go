package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pevans/blogscrape"
	"github.com/pevans/blogscrape/scraper"
	"github.com/pevans/blogscrape/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Test helper: serve a two-page listing with two articles
func newTestBlog(t *testing.T) *httptest.Server {
	t.Helper()
	pages := map[string]string{
		"/blogs": `<html><body>
			<a href="/blogs/page/2/">2</a>
		</body></html>`,
		"/blogs/page/2/": `<html><body>
			<a href="/blogs/post-a/">A</a>
			<a href="/blogs/post-b/">B</a>
		</body></html>`,
		"/blogs/post-a/": `<html><body><h1>Post A</h1>
			<article><p>This paragraph is long enough to keep.</p></article>
		</body></html>`,
		"/blogs/post-b/": `<html><body><h1>Post B</h1>
			<article><p>Another paragraph that is long enough.</p></article>
		</body></html>`,
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

// Test helper: resolve a run config for the test blog with no config file
func testRunConfig(t *testing.T, siteURL string) *runConfig {
	t.Helper()
	rc, err := resolveConfig(&options{
		configPath: filepath.Join(t.TempDir(), "missing.yaml"),
		site:       siteURL,
		output:     filepath.Join(t.TempDir(), "scraped_articles.json"),
		delay:      "0s",
	})
	require.NoError(t, err)
	return rc
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestParseFlags(t *testing.T) {
	t.Setenv("BLOGSCRAPE_MODE", "feed")

	opts, err := parseFlags([]string{"-output", "out.json", "-max", "3", "-db", "a.db"})
	require.NoError(t, err)

	assert.Equal(t, "out.json", opts.output)
	assert.Equal(t, "3", opts.maxArticles)
	assert.Equal(t, "a.db", opts.dbPath)
	assert.Equal(t, "feed", opts.mode, "environment should supply defaults")

	_, err = parseFlags([]string{"stray"})
	assert.Error(t, err)
}

func TestResolveConfig_Defaults(t *testing.T) {
	rc, err := resolveConfig(&options{configPath: filepath.Join(t.TempDir(), "missing.yaml")})
	require.NoError(t, err)

	assert.Equal(t, scraper.DefaultSiteConfig(), rc.site)
	assert.Empty(t, rc.dbPath)
	assert.Empty(t, rc.publishURL)
}

func TestResolveConfig_FlagsOverrideFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`site:
  url: "https://file.example.com"
  max_articles: 9
  delay: "3s"
storage:
  dsn: "file.db"
publish:
  backend_url: "http://backend.example.com"
`), 0o600))

	rc, err := resolveConfig(&options{
		configPath:  configPath,
		site:        "https://flag.example.com",
		maxArticles: "2",
		dbPath:      "flag.db",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://flag.example.com", rc.site.SiteURL)
	assert.Equal(t, 2, rc.site.MaxArticles)
	assert.Equal(t, 3*time.Second, rc.site.Delay, "file value should apply when no flag is set")
	assert.Equal(t, "flag.db", rc.dbPath)
	assert.Equal(t, "http://backend.example.com", rc.publishURL)
}

func TestResolveConfig_Invalid(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	tests := []struct {
		name string
		opts options
	}{
		{name: "bad max", opts: options{maxArticles: "zero"}},
		{name: "negative max", opts: options{maxArticles: "-1"}},
		{name: "bad delay", opts: options{delay: "later"}},
		{name: "bad timeout", opts: options{timeout: "10"}},
		{name: "bad mode", opts: options{mode: "sitemap"}},
		{name: "bad site", opts: options{site: "ftp://example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			opts.configPath = missing
			_, err := resolveConfig(&opts)
			assert.Error(t, err)
		})
	}
}

func TestRun_WritesOutput(t *testing.T) {
	blog := newTestBlog(t)
	rc := testRunConfig(t, blog.URL)

	var stdout bytes.Buffer
	require.NoError(t, run(context.Background(), rc, &stdout, discardLogger()))

	records, err := blogscrape.ReadArticles(rc.site.OutputPath)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Post A", records[0].Title)
	assert.Equal(t, blog.URL+"/blogs/post-a/", records[0].OriginalSourceURL)
	assert.Equal(t, "This paragraph is long enough to keep.", records[0].Content)

	assert.Contains(t, stdout.String(), "Successfully scraped 2 articles!")
	assert.Contains(t, stdout.String(), "Saved to "+rc.site.OutputPath)
}

func TestRun_ListingFailureWritesNothing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer server.Close()
	rc := testRunConfig(t, server.URL)

	err := run(context.Background(), rc, io.Discard, discardLogger())

	require.Error(t, err)
	_, statErr := os.Stat(rc.site.OutputPath)
	assert.True(t, os.IsNotExist(statErr), "output file should not be written")
}

func TestRun_ImportsIntoStore(t *testing.T) {
	blog := newTestBlog(t)
	rc := testRunConfig(t, blog.URL)
	rc.dbPath = filepath.Join(t.TempDir(), "articles.db")

	var stdout bytes.Buffer
	require.NoError(t, run(context.Background(), rc, &stdout, discardLogger()))
	assert.Contains(t, stdout.String(), "2 imported, 0 failed")

	articleStore, err := store.NewArticleStore(rc.dbPath)
	require.NoError(t, err)
	defer articleStore.Close()

	articles, err := articleStore.ListArticles()
	require.NoError(t, err)
	assert.Len(t, articles, 2)
}

func TestRun_Publishes(t *testing.T) {
	blog := newTestBlog(t)

	backendStore, err := store.NewArticleStore(filepath.Join(t.TempDir(), "backend.db"))
	require.NoError(t, err)
	defer backendStore.Close()
	backend := httptest.NewServer(store.NewArticleAPIServer(backendStore).SetupRouter())
	defer backend.Close()

	rc := testRunConfig(t, blog.URL)
	rc.publishURL = backend.URL

	var stdout bytes.Buffer
	require.NoError(t, run(context.Background(), rc, &stdout, discardLogger()))
	assert.Contains(t, stdout.String(), "Published to "+backend.URL+": 2 imported, 0 failed")

	articles, err := backendStore.ListArticles()
	require.NoError(t, err)
	assert.Len(t, articles, 2)
}

func TestRun_PublishFailureKeepsFile(t *testing.T) {
	blog := newTestBlog(t)
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer backend.Close()

	rc := testRunConfig(t, blog.URL)
	rc.publishURL = backend.URL

	err := run(context.Background(), rc, io.Discard, discardLogger())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to publish articles")
	_, statErr := os.Stat(rc.site.OutputPath)
	assert.NoError(t, statErr, "output file should already be written")
}

func TestRun_FromFileImportsWithoutHarvesting(t *testing.T) {
	fromPath := filepath.Join(t.TempDir(), "scraped_articles.json")
	require.NoError(t, blogscrape.WriteArticles(fromPath, []blogscrape.ArticleRecord{
		{Title: "Saved Earlier", Content: "Body", OriginalSourceURL: "https://beyondchats.com/blogs/saved-earlier/"},
	}))

	rc, err := resolveConfig(&options{
		configPath: filepath.Join(t.TempDir(), "missing.yaml"),
		site:       "http://127.0.0.1:1",
		output:     filepath.Join(t.TempDir(), "unused.json"),
		fromPath:   fromPath,
		dbPath:     filepath.Join(t.TempDir(), "articles.db"),
	})
	require.NoError(t, err)

	var stdout bytes.Buffer
	require.NoError(t, run(context.Background(), rc, &stdout, discardLogger()))
	assert.Contains(t, stdout.String(), "Loaded 1 articles from "+fromPath)
	assert.NotContains(t, stdout.String(), "Successfully scraped")

	_, statErr := os.Stat(rc.site.OutputPath)
	assert.True(t, os.IsNotExist(statErr), "no output file should be written")

	articleStore, err := store.NewArticleStore(rc.dbPath)
	require.NoError(t, err)
	defer articleStore.Close()
	articles, err := articleStore.ListArticles()
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "saved-earlier", articles[0].Slug)
}

func TestRun_FromMissingFile(t *testing.T) {
	rc := testRunConfig(t, "http://127.0.0.1:1")
	rc.fromPath = filepath.Join(t.TempDir(), "nope.json")
	rc.dbPath = filepath.Join(t.TempDir(), "articles.db")

	assert.Error(t, run(context.Background(), rc, io.Discard, discardLogger()))
}

func TestResolveConfig_FromNeedsTarget(t *testing.T) {
	_, err := resolveConfig(&options{
		configPath: filepath.Join(t.TempDir(), "missing.yaml"),
		fromPath:   "scraped_articles.json",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "-from")
}
