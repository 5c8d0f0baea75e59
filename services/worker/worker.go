package worker

import (
	"context"
	"encoding/json"
	"time"

	"sjsage522/pflanzencrawler/internal/crawler"
	"sjsage522/pflanzencrawler/logger"
	"sjsage522/pflanzencrawler/pkg/errors"
	"sjsage522/pflanzencrawler/services/publisher"
)

// PublishKey is the stream field each published record is stored under
const PublishKey = "product"

// Crawler produces the product records of one category
type Crawler interface {
	Crawl(ctx context.Context) ([]crawler.ProductRecord, crawler.CrawlStats, error)
}

// Exporter persists the records of a finished crawl
type Exporter interface {
	Export(records []crawler.ProductRecord) error
}

// Worker runs one crawl, writes the export and publishes the records
type Worker struct {
	crawler   Crawler
	exporter  Exporter
	publisher publisher.Publisher
	log       *logger.Logger
}

// NewWorker creates a new worker; pub may be nil to skip publishing
func NewWorker(c Crawler, exp Exporter, pub publisher.Publisher) *Worker {
	return &Worker{
		crawler:   c,
		exporter:  exp,
		publisher: pub,
		log:       logger.ForWorker(),
	}
}

// Run crawls the category once. A crawl error leaves the previous export
// untouched; publish failures are logged and do not fail the run.
func (w *Worker) Run(ctx context.Context) error {
	start := time.Now()

	records, stats, err := w.crawler.Crawl(ctx)
	if err != nil {
		return err
	}

	if err := w.exporter.Export(records); err != nil {
		return err
	}

	published := w.publish(ctx, records)

	w.log.Info().
		Int("listings", stats.ListingsVisited).
		Int("listings_failed", stats.ListingsFailed).
		Int("products", stats.Products).
		Int("products_failed", stats.ProductsFailed).
		Int("published", published).
		Dur("elapsed", time.Since(start)).
		Msg("Crawl run completed")
	return nil
}

// publish sends every numbered record and returns how many were accepted
func (w *Worker) publish(ctx context.Context, records []crawler.ProductRecord) int {
	if w.publisher == nil {
		return 0
	}

	published := 0
	for i, record := range crawler.Number(records) {
		data, err := json.Marshal(record)
		if err != nil {
			logger.LogError("worker", errors.NewPublisher(record.Name, "failed to encode record", err), "record %d", record.ID)
			continue
		}

		if err := w.publisher.Publish(ctx, PublishKey, data); err != nil {
			w.log.Error().Err(errors.NewPublisher(record.Name, "publish failed", err)).Int("id", record.ID).Msg("Failed to publish record")
			if ctx.Err() != nil {
				return published
			}
			continue
		}
		published++

		if i == 0 {
			w.log.Debug().RawJSON("record", data).Msg("First record published")
		}
	}
	return published
}
