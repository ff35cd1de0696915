package discovery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pevans/blogscrape/scraper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFetchHTML_Success verifies a page is fetched and parsed
func TestFetchHTML_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><head><title>Hello</title></head><body><h1>World</h1></body></html>`)
	}))
	defer server.Close()

	fetcher := NewFetcher(scraper.DefaultSiteConfig())
	doc, err := fetcher.FetchHTML(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, "World", doc.Find("h1").Text())
}

// TestFetchHTML_UserAgent verifies the configured User-Agent is sent
func TestFetchHTML_UserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		fmt.Fprint(w, `<html></html>`)
	}))
	defer server.Close()

	cfg := scraper.DefaultSiteConfig()
	cfg.UserAgent = "blogscrape-test/1.0"
	_, err := NewFetcher(cfg).FetchHTML(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, "blogscrape-test/1.0", gotUA)
}

// TestFetchHTML_DefaultUserAgent verifies no custom header is set by default
func TestFetchHTML_DefaultUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		fmt.Fprint(w, `<html></html>`)
	}))
	defer server.Close()

	_, err := NewFetcher(scraper.DefaultSiteConfig()).FetchHTML(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Contains(t, gotUA, "Go-http-client", "should send the client default")
}

// TestFetchHTML_HTTPError verifies non-200 responses become HTTPError
func TestFetchHTML_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := NewFetcher(scraper.DefaultSiteConfig()).FetchHTML(context.Background(), server.URL)

	require.Error(t, err)
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.Equal(t, server.URL, httpErr.URL)
}

// TestFetchHTML_NetworkError verifies connection failures are reported
func TestFetchHTML_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewFetcher(scraper.DefaultSiteConfig()).FetchHTML(context.Background(), url)

	assert.Error(t, err)
}

// TestFetchHTML_Timeout verifies a configured timeout is honored
func TestFetchHTML_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	cfg := scraper.DefaultSiteConfig()
	cfg.Timeout = 50 * time.Millisecond
	_, err := NewFetcher(cfg).FetchHTML(context.Background(), server.URL)

	assert.Error(t, err)
}

// TestFetchHTML_CancelledContext verifies a cancelled context aborts the
// request
func TestFetchHTML_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html></html>`)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFetcherWithClient(nil, "").FetchHTML(ctx, server.URL)

	assert.ErrorIs(t, err, context.Canceled)
}
