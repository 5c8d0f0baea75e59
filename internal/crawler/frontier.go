package crawler

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"sjsage522/pflanzencrawler/logger"
	"sjsage522/pflanzencrawler/pkg/errors"
)

// Options configures a crawl
type Options struct {
	// StartURL is the category root
	StartURL string
	// BaseURL resolves relative product links
	BaseURL string
	// CategorySegment must appear in the path of every followed listing URL
	CategorySegment string

	ListingDelay time.Duration
	ProductDelay time.Duration

	// MaxProducts stops the crawl after that many records (0 = unlimited)
	MaxProducts int
	// SkipFailedListings logs and skips a listing page that cannot be fetched
	// instead of aborting the crawl
	SkipFailedListings bool
	// FallbackNameFromLink names failed products after their listing anchor text
	FallbackNameFromLink bool
}

// CrawlStats summarizes a finished crawl
type CrawlStats struct {
	ListingsVisited int
	ListingsFailed  int
	Products        int
	ProductsFailed  int
	Duration        time.Duration
}

// CrawlState is the traversal state of one crawl
type CrawlState struct {
	visited      map[string]struct{}
	queued       map[string]struct{}
	pending      []string
	seenProducts map[string]struct{}
}

func newCrawlState() *CrawlState {
	return &CrawlState{
		visited:      make(map[string]struct{}),
		queued:       make(map[string]struct{}),
		seenProducts: make(map[string]struct{}),
	}
}

// enqueue adds a listing URL unless it was visited or is already pending
func (s *CrawlState) enqueue(rawURL string) bool {
	key := listingKey(rawURL)
	if _, ok := s.visited[key]; ok {
		return false
	}
	if _, ok := s.queued[key]; ok {
		return false
	}
	s.queued[key] = struct{}{}
	s.pending = append(s.pending, rawURL)
	return true
}

// next pops the oldest pending listing URL
func (s *CrawlState) next() (string, bool) {
	if len(s.pending) == 0 {
		return "", false
	}
	u := s.pending[0]
	s.pending = s.pending[1:]
	delete(s.queued, listingKey(u))
	return u, true
}

// markVisited transitions a listing URL to visited; false if it already was
func (s *CrawlState) markVisited(rawURL string) bool {
	key := listingKey(rawURL)
	if _, ok := s.visited[key]; ok {
		return false
	}
	s.visited[key] = struct{}{}
	return true
}

// markProductSeen records a product path; false if it was seen before
func (s *CrawlState) markProductSeen(path string) bool {
	if _, ok := s.seenProducts[path]; ok {
		return false
	}
	s.seenProducts[path] = struct{}{}
	return true
}

// listingKey identifies a listing page by host, path and page number. Other
// query parameters, fragments, letter case of the host and a trailing slash
// do not make a different page.
func listingKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	path := strings.TrimRight(u.Path, "/")
	if path == "" {
		path = "/"
	}
	key := strings.ToLower(u.Host) + path
	if page := strings.TrimSpace(u.Query().Get("page")); page != "" {
		if n, err := strconv.Atoi(page); err != nil || n > 1 {
			key += "?page=" + page
		}
	}
	return key
}

// Frontier drives the breadth-first traversal of a category's listing pages
type Frontier struct {
	fetcher Fetcher
	opts    Options
	base    *url.URL
	log     *logger.Logger

	listingPacer *rate.Limiter
	productPacer *rate.Limiter
}

// NewFrontier creates a frontier for the given options
func NewFrontier(fetcher Fetcher, opts Options) (*Frontier, error) {
	start, err := url.Parse(opts.StartURL)
	if err != nil || start.Host == "" {
		return nil, errors.NewConfiguration(fmt.Sprintf("invalid start URL %q", opts.StartURL), err)
	}

	base := start
	if opts.BaseURL != "" {
		if base, err = url.Parse(opts.BaseURL); err != nil {
			return nil, errors.NewConfiguration(fmt.Sprintf("invalid base URL %q", opts.BaseURL), err)
		}
	}

	return &Frontier{
		fetcher:      fetcher,
		opts:         opts,
		base:         base,
		log:          logger.ForCrawler(opts.CategorySegment),
		listingPacer: newPacer(opts.ListingDelay),
		productPacer: newPacer(opts.ProductDelay),
	}, nil
}

// newPacer allows one event immediately and then one per delay
func newPacer(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}

// Crawl traverses the category and returns the product records in discovery
// order. A listing page that cannot be fetched aborts the crawl (unless
// SkipFailedListings is set); a product that fails becomes a fallback record.
// Cancellation, or a politeness wait that would outlast the context deadline,
// aborts the crawl with an error.
func (f *Frontier) Crawl(ctx context.Context) ([]ProductRecord, CrawlStats, error) {
	start := time.Now()
	state := newCrawlState()
	state.enqueue(f.opts.StartURL)

	var records []ProductRecord
	var stats CrawlStats
	finish := func(err error) ([]ProductRecord, CrawlStats, error) {
		stats.Products = len(records)
		stats.Duration = time.Since(start)
		return records, stats, err
	}

	for {
		listingURL, ok := state.next()
		if !ok {
			break
		}
		if !state.markVisited(listingURL) {
			continue
		}

		if err := f.listingPacer.Wait(ctx); err != nil {
			return finish(fmt.Errorf("waiting for listing %s: %w", listingURL, err))
		}

		links, nextPages, err := f.visitListing(ctx, listingURL)
		if err != nil {
			if ctx.Err() != nil {
				return finish(ctx.Err())
			}
			if f.opts.SkipFailedListings {
				stats.ListingsFailed++
				f.log.Warn().Err(err).Str("url", listingURL).Msg("Skipping listing page")
				continue
			}
			return finish(fmt.Errorf("listing %s: %w", listingURL, err))
		}
		stats.ListingsVisited++

		queued := 0
		for _, u := range nextPages {
			if state.enqueue(u) {
				queued++
			}
		}

		f.log.Info().
			Str("url", listingURL).
			Int("products", len(links)).
			Int("new_listings", queued).
			Msg("Listing page processed")

		for _, link := range links {
			if f.opts.MaxProducts > 0 && len(records) >= f.opts.MaxProducts {
				f.log.Info().Int("max_products", f.opts.MaxProducts).Msg("Product limit reached")
				return finish(nil)
			}
			if !state.markProductSeen(link.Path) {
				continue
			}

			if err := f.productPacer.Wait(ctx); err != nil {
				return finish(fmt.Errorf("waiting for product %s: %w", link.URL, err))
			}

			result := f.scrapeProduct(ctx, link)
			if ctx.Err() != nil {
				return finish(ctx.Err())
			}
			if !result.OK() {
				stats.ProductsFailed++
				f.log.Warn().
					Err(result.Err).
					Str("url", link.URL).
					Bool("retryable", errors.Retryable(result.Err)).
					Msg("Product failed, using fallback record")
			}
			records = append(records, result.RecordOr(f.fallbackFor(link)))
		}
	}

	f.log.Info().
		Int("listings", stats.ListingsVisited).
		Int("products", len(records)).
		Int("failed_products", stats.ProductsFailed).
		Msg("Crawl finished")

	return finish(nil)
}

// visitListing fetches a listing page and returns its product links and pagination URLs
func (f *Frontier) visitListing(ctx context.Context, listingURL string) ([]ProductLink, []string, error) {
	current, err := url.Parse(listingURL)
	if err != nil {
		return nil, nil, errors.NewParsing(listingURL, "invalid listing URL", err)
	}

	body, err := f.fetcher.Fetch(ctx, listingURL)
	if err != nil {
		return nil, nil, err
	}

	links, err := HarvestProductLinks(string(body), f.base)
	if err != nil {
		return nil, nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, nil, errors.NewParsing(listingURL, "listing HTML parsing failed", err)
	}

	return links, DiscoverPagination(doc, current, f.opts.CategorySegment), nil
}

// scrapeProduct runs fetch, parse and extraction for one product link
func (f *Frontier) scrapeProduct(ctx context.Context, link ProductLink) ProductResult {
	body, err := f.fetcher.Fetch(ctx, link.URL)
	if err != nil {
		return Failed(link.URL, err)
	}

	page, err := NewProductPage(link.URL, body)
	if err != nil {
		return Failed(link.URL, err)
	}

	record := ExtractProduct(page)
	f.log.Debug().
		Str("url", link.URL).
		Str("name", record.Name).
		Str("price_from", record.PriceFrom).
		Msg("Product extracted")
	return Succeeded(link.URL, record)
}

// fallbackFor is the record emitted for a product whose pipeline failed
func (f *Frontier) fallbackFor(link ProductLink) ProductRecord {
	record := FallbackRecord()
	if f.opts.FallbackNameFromLink {
		if name := stripPriceLabel(link.Text); name != "" {
			record.Name = name
		}
	}
	return record
}
