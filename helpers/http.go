package helpers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	mathrand "math/rand"
	"net/http"
	"slices"
	"sync"
	"time"

	"golang.org/x/net/html/charset"

	"sjsage522/pflanzencrawler/logger"
	"sjsage522/pflanzencrawler/pkg/errors"
)

// HTTP header configurations
var (
	userAgents = []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
		"Mozilla/5.0 (X11; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0",
	}

	referers = []string{
		"https://www.google.de/",
		"https://www.bing.com/",
		"https://duckduckgo.com/",
	}
)

// maxBodyBytes caps a single page download
const maxBodyBytes = 8 << 20

// HTTPFetcher issues GET requests with browser-like headers and returns UTF-8 bodies
type HTTPFetcher struct {
	client  *http.Client
	log     *logger.Logger
	maxBody int64

	mu  sync.Mutex
	rnd *mathrand.Rand
}

// NewHTTPFetcher creates a fetcher whose requests are bounded by timeout
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client:  &http.Client{Timeout: timeout},
		log:     logger.ForFetcher(),
		maxBody: maxBodyBytes,
		rnd:     mathrand.New(mathrand.NewSource(time.Now().UnixNano())),
	}
}

// Fetch sends an HTTP GET request with randomized headers and returns the
// response body converted to UTF-8 (if needed).
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.NewFetch(url, "failed to create request", err)
	}

	f.mu.Lock()
	ua := userAgents[f.rnd.Intn(len(userAgents))]
	ref := referers[f.rnd.Intn(len(referers))]
	f.mu.Unlock()

	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "de-DE,de;q=0.9,en-US;q=0.8,en;q=0.7")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Referer", ref)
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.NewFetch(url, "failed to fetch URL", err)
	}
	defer resp.Body.Close()

	// Check for rate limiting
	if slices.Contains([]int{http.StatusTooManyRequests, 430}, resp.StatusCode) {
		return nil, errors.NewRateLimit(url, resp.Header.Get("Retry-After"))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.NewHTTPStatus(url, resp.StatusCode)
	}

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return nil, errors.NewFetch(url, "failed to read response body", err)
	}
	if int64(len(bodyBytes)) > f.maxBody {
		return nil, errors.NewFetch(url, fmt.Sprintf("response body exceeds %d bytes", f.maxBody), nil)
	}

	f.log.Debug().
		Str("url", url).
		Int("status", resp.StatusCode).
		Int("bytes", len(bodyBytes)).
		Msg("Page fetched")

	return toUTF8(bodyBytes, resp.Header.Get("Content-Type"))
}

// toUTF8 determines the encoding from the Content-Type header and body content
// and converts the body when it is not already UTF-8.
func toUTF8(body []byte, contentType string) ([]byte, error) {
	encoding, name, _ := charset.DetermineEncoding(body, contentType)
	if name == "utf-8" || name == "UTF-8" {
		return body, nil
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, encoding.NewDecoder().Reader(bytes.NewReader(body))); err != nil {
		return nil, fmt.Errorf("failed to read converted UTF-8 body: %w", err)
	}
	return buf.Bytes(), nil
}
