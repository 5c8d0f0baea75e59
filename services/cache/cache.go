package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when the key is not present
var ErrCacheMiss = errors.New("cache: miss")

// CacheService represents a generic cache service
type CacheService interface {
	// Get retrieves a value from the cache
	Get(key string) ([]byte, error)

	// Set stores a value in the cache with an expiration time
	Set(key string, value []byte, expiration time.Duration) error

	// Delete removes a value from the cache
	Delete(key string) error
}

// PageKey builds a cache key for a page body. URLs may exceed the memcache key
// limit or contain bytes it rejects, so the URL is hashed.
func PageKey(url string) string {
	sum := sha1.Sum([]byte(url))
	return "page:" + hex.EncodeToString(sum[:])
}

// BlockKey is the key marking a host as rate limited
func BlockKey(host string) string {
	return "rate_limited:" + host
}
