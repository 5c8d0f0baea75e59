package config

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"sjsage522/pflanzencrawler/pkg/errors"
)

// DefaultStartURL is the category root crawled when START_URL is not set
const DefaultStartURL = "https://www.floristonlineshop.de/pflanzenonlineshop"

// Config represents the application configuration
type Config struct {
	// Crawl target
	StartURL        string
	BaseURL         string
	CategorySegment string

	// Crawler behaviour
	ProductDelay         time.Duration
	ListingDelay         time.Duration
	RequestTimeout       time.Duration
	MaxProducts          int
	SkipFailedListings   bool
	FallbackNameFromLink bool

	// Export
	OutputPath string

	// Memcache configuration (empty address disables the page cache)
	MemcacheAddr   string
	PageCacheTTL   time.Duration
	RateLimitBlock time.Duration

	// Redis configuration (empty address disables publishing)
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamMaxLength int

	// Environment
	Environment string

	// invalid lists the variables whose values could not be parsed
	invalid []string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	startURL := getEnv("START_URL", DefaultStartURL)

	var invalid []string
	intEnv := func(key, defaultValue string) int {
		n, err := strconv.Atoi(getEnv(key, defaultValue))
		if err != nil {
			invalid = append(invalid, key)
		}
		return n
	}
	boolEnv := func(key string) bool {
		b, err := strconv.ParseBool(getEnv(key, "false"))
		if err != nil {
			invalid = append(invalid, key)
		}
		return b
	}

	redisDB := intEnv("REDIS_DB", "0")
	redisStreamMaxLength := intEnv("REDIS_STREAM_MAX_LENGTH", "1000")
	productDelay := intEnv("PRODUCT_DELAY_MS", "300")
	listingDelay := intEnv("LISTING_DELAY_MS", "300")
	requestTimeout := intEnv("REQUEST_TIMEOUT_SECONDS", "30")
	maxProducts := intEnv("MAX_PRODUCTS", "0")
	pageCacheTTL := intEnv("PAGE_CACHE_TTL_SECONDS", "3600")
	rateLimitBlock := intEnv("RATE_LIMIT_BLOCK_SECONDS", "300")
	skipFailedListings := boolEnv("SKIP_FAILED_LISTINGS")
	fallbackNameFromLink := boolEnv("FALLBACK_NAME_FROM_LINK")

	return &Config{
		StartURL:             startURL,
		BaseURL:              getEnv("BASE_URL", deriveBaseURL(startURL)),
		CategorySegment:      getEnv("CATEGORY_SEGMENT", deriveCategorySegment(startURL)),
		ProductDelay:         time.Duration(productDelay) * time.Millisecond,
		ListingDelay:         time.Duration(listingDelay) * time.Millisecond,
		RequestTimeout:       time.Duration(requestTimeout) * time.Second,
		MaxProducts:          maxProducts,
		SkipFailedListings:   skipFailedListings,
		FallbackNameFromLink: fallbackNameFromLink,
		OutputPath:           getEnv("OUTPUT_PATH", "pflanzen.csv"),
		MemcacheAddr:         os.Getenv("MEMCACHE_ADDR"),
		PageCacheTTL:         time.Duration(pageCacheTTL) * time.Second,
		RateLimitBlock:       time.Duration(rateLimitBlock) * time.Second,
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "pflanzen:products"),
		RedisStreamMaxLength: redisStreamMaxLength,
		Environment:          getEnv("PFLANZEN_ENVIRONMENT", "development"),
		invalid:              invalid,
	}
}

// Validate checks that the configuration can drive a crawl
func (c *Config) Validate() error {
	if len(c.invalid) > 0 {
		return errors.NewConfiguration("invalid value for "+strings.Join(c.invalid, ", "), nil)
	}
	u, err := url.Parse(c.StartURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.NewConfiguration(fmt.Sprintf("START_URL must be an absolute http(s) URL, got %q", c.StartURL), err)
	}
	if _, err := url.Parse(c.BaseURL); err != nil || c.BaseURL == "" {
		return errors.NewConfiguration(fmt.Sprintf("invalid BASE_URL %q", c.BaseURL), err)
	}
	if strings.TrimSpace(c.CategorySegment) == "" {
		return errors.NewConfiguration("CATEGORY_SEGMENT must not be empty", nil)
	}
	if c.ProductDelay < 0 || c.ListingDelay < 0 {
		return errors.NewConfiguration("crawl delays must not be negative", nil)
	}
	if c.RequestTimeout <= 0 {
		return errors.NewConfiguration("REQUEST_TIMEOUT_SECONDS must be positive", nil)
	}
	if c.MaxProducts < 0 {
		return errors.NewConfiguration("MAX_PRODUCTS must not be negative", nil)
	}
	if c.OutputPath == "" {
		return errors.NewConfiguration("OUTPUT_PATH must not be empty", nil)
	}
	return nil
}

// deriveBaseURL returns scheme://host of the start URL
func deriveBaseURL(startURL string) string {
	u, err := url.Parse(startURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// deriveCategorySegment returns the last path segment of the start URL
func deriveCategorySegment(startURL string) string {
	u, err := url.Parse(startURL)
	if err != nil {
		return ""
	}
	seg := path.Base(strings.TrimSuffix(u.Path, "/"))
	if seg == "." || seg == "/" {
		return ""
	}
	return seg
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
