package helpers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/pflanzencrawler/pkg/errors"
)

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Check that headers are set
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		assert.NotEmpty(t, r.Header.Get("Accept"))
		assert.Contains(t, r.Header.Get("Accept-Language"), "de-DE")
		assert.NotEmpty(t, r.Header.Get("Referer"))

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html><body>Grünlilie ab € 12,50</body></html>"))
	}))
	defer server.Close()

	body, err := NewHTTPFetcher(5*time.Second).Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Grünlilie ab € 12,50")
}

func TestFetchNonUTF8(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		w.WriteHeader(http.StatusOK)
		// "Grünlilie" with ü encoded as 0xFC
		w.Write([]byte("<html><body>Gr\xfcnlilie</body></html>"))
	}))
	defer server.Close()

	body, err := NewHTTPFetcher(5*time.Second).Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Grünlilie")
}

func TestFetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewHTTPFetcher(5*time.Second).Fetch(context.Background(), server.URL)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code: 500")
	assert.True(t, errors.IsType(err, errors.ErrorTypeNetwork))

	// Test with rate limiting
	serverRateLimited := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer serverRateLimited.Close()

	_, err = NewHTTPFetcher(5*time.Second).Fetch(context.Background(), serverRateLimited.URL)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
	assert.True(t, errors.IsType(err, errors.ErrorTypeRateLimit))
}

func TestFetchTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	_, err := NewHTTPFetcher(20*time.Millisecond).Fetch(context.Background(), server.URL)
	assert.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNetwork))
}

func TestFetchInvalidURL(t *testing.T) {
	_, err := NewHTTPFetcher(time.Second).Fetch(context.Background(), "http://invalid.url.that.does.not.exist")
	assert.Error(t, err)
}

func TestFetchOversizedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body>" + strings.Repeat("x", 64) + "</body></html>"))
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(5 * time.Second)
	fetcher.maxBody = 32

	_, err := fetcher.Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNetwork))
	assert.Contains(t, err.Error(), "exceeds 32 bytes")

	// exactly at the limit is still accepted
	fetcher.maxBody = int64(len("<html><body>" + strings.Repeat("x", 64) + "</body></html>"))
	body, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Len(t, body, int(fetcher.maxBody))
}
