package crawler

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"sjsage522/pflanzencrawler/logger"
	"sjsage522/pflanzencrawler/pkg/errors"
	"sjsage522/pflanzencrawler/services/cache"
)

// CachedFetcher wraps a Fetcher with a page-body cache and a per-host
// rate-limit block. Cache failures never fail a fetch.
type CachedFetcher struct {
	next      Fetcher
	cacheSvc  cache.CacheService
	ttl       time.Duration
	blockTime time.Duration
	log       *logger.Logger
}

// NewCachedFetcher creates a caching fetcher. A zero ttl disables body caching;
// a zero blockTime disables the rate-limit block.
func NewCachedFetcher(next Fetcher, cacheSvc cache.CacheService, ttl, blockTime time.Duration) *CachedFetcher {
	return &CachedFetcher{
		next:      next,
		cacheSvc:  cacheSvc,
		ttl:       ttl,
		blockTime: blockTime,
		log:       logger.ForCache(),
	}
}

// Fetch serves the page from cache when possible and fetches it otherwise
func (c *CachedFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	host := hostOf(rawURL)

	// Check if the host is rate limited
	if c.blockTime > 0 {
		if _, err := c.cacheSvc.Get(cache.BlockKey(host)); err == nil {
			return nil, errors.New(errors.ErrorTypeRateLimit, rawURL,
				fmt.Sprintf("%s blocked for up to %s after rate limiting", host, c.blockTime), nil)
		}
	}

	key := cache.PageKey(rawURL)
	if c.ttl > 0 {
		body, err := c.cacheSvc.Get(key)
		if err == nil {
			c.log.Debug().Str("url", rawURL).Msg("Page served from cache")
			return body, nil
		}
		if !stderrors.Is(err, cache.ErrCacheMiss) {
			c.log.Debug().Err(err).Str("url", rawURL).Msg("Cache lookup failed")
		}
	}

	body, err := c.next.Fetch(ctx, rawURL)
	if err != nil {
		if c.blockTime > 0 && errors.IsType(err, errors.ErrorTypeRateLimit) {
			if setErr := c.cacheSvc.Set(cache.BlockKey(host), []byte(c.blockTime.String()), c.blockTime); setErr != nil {
				c.log.Warn().Err(setErr).Str("host", host).Msg("Failed to set rate limit block")
			}
		}
		return nil, err
	}

	if c.ttl > 0 {
		if setErr := c.cacheSvc.Set(key, body, c.ttl); setErr != nil {
			c.log.Debug().Err(errors.NewCache(rawURL, "page not cached", setErr)).Msg("Cache store failed")
		}
	}

	return body, nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return strings.ToLower(u.Host)
}
