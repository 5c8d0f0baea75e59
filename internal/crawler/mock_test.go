package crawler

import (
	"context"
	"sync"
	"time"

	"sjsage522/pflanzencrawler/pkg/errors"
	"sjsage522/pflanzencrawler/services/cache"
)

// MockCacheService implements a simple in-memory cache for testing
type MockCacheService struct {
	cache map[string][]byte
}

// Ensure MockCacheService implements cache.CacheService
var _ cache.CacheService = (*MockCacheService)(nil)

func NewMockCacheService() *MockCacheService {
	return &MockCacheService{
		cache: make(map[string][]byte),
	}
}

func (m *MockCacheService) Get(key string) ([]byte, error) {
	if val, ok := m.cache[key]; ok {
		return val, nil
	}
	return nil, cache.ErrCacheMiss
}

func (m *MockCacheService) Set(key string, value []byte, expiration time.Duration) error {
	m.cache[key] = value
	return nil
}

func (m *MockCacheService) Delete(key string) error {
	delete(m.cache, key)
	return nil
}

// MockFetcher serves canned pages and records every requested URL
type MockFetcher struct {
	mu     sync.Mutex
	pages  map[string]string
	errs   map[string]error
	called []string
}

// Ensure MockFetcher implements Fetcher
var _ Fetcher = (*MockFetcher)(nil)

func NewMockFetcher(pages map[string]string) *MockFetcher {
	return &MockFetcher{
		pages: pages,
		errs:  make(map[string]error),
	}
}

func (m *MockFetcher) Fail(url string, err error) {
	m.errs[url] = err
}

func (m *MockFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.called = append(m.called, url)

	if err, ok := m.errs[url]; ok {
		return nil, err
	}
	body, ok := m.pages[url]
	if !ok {
		return nil, errors.NewHTTPStatus(url, 404)
	}
	return []byte(body), nil
}

func (m *MockFetcher) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.called...)
}
