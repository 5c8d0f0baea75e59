package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"sjsage522/pflanzencrawler/config"
	"sjsage522/pflanzencrawler/exporter"
	"sjsage522/pflanzencrawler/helpers"
	"sjsage522/pflanzencrawler/internal/crawler"
	"sjsage522/pflanzencrawler/logger"
	"sjsage522/pflanzencrawler/pkg/errors"
	"sjsage522/pflanzencrawler/services/cache"
	"sjsage522/pflanzencrawler/services/publisher"
	"sjsage522/pflanzencrawler/services/worker"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("start_url", cfg.StartURL).
		Str("output", cfg.OutputPath).
		Msg("Starting crawl")

	// Cancel the crawl on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize services
	services := initializeServices(ctx, cfg)
	defer services.Cleanup()

	w, err := newWorker(cfg, services)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create worker")
	}

	if err := w.Run(ctx); err != nil {
		if ctx.Err() != nil {
			log.Warn().Msg("Crawl interrupted, export not written")
		} else {
			log.Error().Err(err).Msg("Crawl failed")
		}
		services.Cleanup()
		os.Exit(1)
	}

	log.Info().Str("output", cfg.OutputPath).Msg("Done")
}

// Services holds the optional backing services
type Services struct {
	Cache     cache.CacheService
	Publisher publisher.Publisher
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
		s.Publisher = nil
	}
}

// initializeServices connects to memcache and Redis when they are configured.
// An unreachable service is logged and left out; the crawl runs without it.
func initializeServices(ctx context.Context, cfg *config.Config) *Services {
	services := &Services{}

	if cfg.MemcacheAddr != "" {
		cacheService := cache.NewMemcacheService(cfg.MemcacheAddr, "pflanzen:")
		if err := cacheService.Ping(); err != nil {
			logger.LogError("cache", errors.NewCache(cfg.MemcacheAddr, "memcache unreachable", err), "Page cache disabled")
		} else {
			services.Cache = cacheService
			logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
		}
	}

	if cfg.RedisAddr != "" {
		redisPublisher := publisher.NewRedisPublisher(
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.RedisStream,
			cfg.RedisStreamMaxLength,
		)
		if err := redisPublisher.Ping(ctx); err != nil {
			redisPublisher.Close()
			logger.LogError("publisher", errors.NewPublisher(cfg.RedisAddr, "redis unreachable", err), "Publishing disabled")
		} else {
			services.Publisher = redisPublisher
			logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
				cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
		}
	}

	return services
}

// newWorker wires fetcher, frontier, exporter and publisher for one crawl
func newWorker(cfg *config.Config, services *Services) (*worker.Worker, error) {
	var fetcher crawler.Fetcher = helpers.NewHTTPFetcher(cfg.RequestTimeout)
	if services.Cache != nil {
		fetcher = crawler.NewCachedFetcher(fetcher, services.Cache, cfg.PageCacheTTL, cfg.RateLimitBlock)
	}

	frontier, err := crawler.NewFrontier(fetcher, crawler.Options{
		StartURL:             cfg.StartURL,
		BaseURL:              cfg.BaseURL,
		CategorySegment:      cfg.CategorySegment,
		ListingDelay:         cfg.ListingDelay,
		ProductDelay:         cfg.ProductDelay,
		MaxProducts:          cfg.MaxProducts,
		SkipFailedListings:   cfg.SkipFailedListings,
		FallbackNameFromLink: cfg.FallbackNameFromLink,
	})
	if err != nil {
		return nil, err
	}

	return worker.NewWorker(frontier, exporter.NewFileExporter(cfg.OutputPath), services.Publisher), nil
}
