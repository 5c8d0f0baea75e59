package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/pflanzencrawler/internal/crawler"
	"sjsage522/pflanzencrawler/services/publisher"
)

// MockCrawler returns canned records
type MockCrawler struct {
	records []crawler.ProductRecord
	err     error
}

// Ensure MockCrawler implements Crawler
var _ Crawler = (*MockCrawler)(nil)

func (m *MockCrawler) Crawl(ctx context.Context) ([]crawler.ProductRecord, crawler.CrawlStats, error) {
	return m.records, crawler.CrawlStats{Products: len(m.records)}, m.err
}

// MockExporter keeps the last export in memory
type MockExporter struct {
	calls    int
	exported []crawler.ProductRecord
	err      error
}

// Ensure MockExporter implements Exporter
var _ Exporter = (*MockExporter)(nil)

func (m *MockExporter) Export(records []crawler.ProductRecord) error {
	m.calls++
	m.exported = records
	return m.err
}

// MockPublisher implements the publisher.Publisher interface for testing
type MockPublisher struct {
	mu       sync.Mutex
	keys     []string
	messages [][]byte
	failOn   int
}

// Ensure MockPublisher implements publisher.Publisher
var _ publisher.Publisher = (*MockPublisher)(nil)

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{failOn: -1}
}

func (m *MockPublisher) Publish(_ context.Context, key string, message []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.keys)
	m.keys = append(m.keys, key)
	if n == m.failOn {
		return errors.New("stream unavailable")
	}

	// Copy the message to ensure thread safety
	messageCopy := make([]byte, len(message))
	copy(messageCopy, message)
	m.messages = append(m.messages, messageCopy)
	return nil
}

func (m *MockPublisher) Close() error {
	return nil
}

func testRecords() []crawler.ProductRecord {
	return []crawler.ProductRecord{
		{Type: crawler.ProductType, Name: "Monstera", About: "Große Blätter", PriceFrom: "12.50"},
		crawler.FallbackRecord(),
	}
}

func TestWorkerRun(t *testing.T) {
	exp := &MockExporter{}
	pub := NewMockPublisher()
	w := NewWorker(&MockCrawler{records: testRecords()}, exp, pub)

	require.NoError(t, w.Run(context.Background()))
	assert.Equal(t, 1, exp.calls)
	assert.Equal(t, testRecords(), exp.exported)

	require.Len(t, pub.messages, 2)
	assert.Equal(t, []string{PublishKey, PublishKey}, pub.keys)

	var first crawler.NumberedRecord
	require.NoError(t, json.Unmarshal(pub.messages[0], &first))
	assert.Equal(t, 1, first.ID)
	assert.Equal(t, "Monstera", first.Name)
	assert.Equal(t, "12.50", first.PriceFrom)

	var second map[string]interface{}
	require.NoError(t, json.Unmarshal(pub.messages[1], &second))
	assert.Equal(t, float64(2), second["id"])
	assert.Equal(t, "Unbekannt", second["name"])
	assert.Equal(t, "0.00", second["price_from"])
}

func TestWorkerRunWithoutPublisher(t *testing.T) {
	exp := &MockExporter{}
	w := NewWorker(&MockCrawler{records: testRecords()}, exp, nil)

	require.NoError(t, w.Run(context.Background()))
	assert.Equal(t, 1, exp.calls)
}

func TestWorkerCrawlErrorSkipsExport(t *testing.T) {
	exp := &MockExporter{}
	pub := NewMockPublisher()
	crawlErr := errors.New("listing failed")
	w := NewWorker(&MockCrawler{err: crawlErr}, exp, pub)

	err := w.Run(context.Background())
	assert.ErrorIs(t, err, crawlErr)
	assert.Equal(t, 0, exp.calls)
	assert.Empty(t, pub.keys)
}

func TestWorkerExportErrorSkipsPublish(t *testing.T) {
	exportErr := errors.New("disk full")
	pub := NewMockPublisher()
	w := NewWorker(&MockCrawler{records: testRecords()}, &MockExporter{err: exportErr}, pub)

	assert.ErrorIs(t, w.Run(context.Background()), exportErr)
	assert.Empty(t, pub.keys)
}

func TestWorkerPublishFailureIsNotFatal(t *testing.T) {
	pub := NewMockPublisher()
	pub.failOn = 0
	w := NewWorker(&MockCrawler{records: testRecords()}, &MockExporter{}, pub)

	require.NoError(t, w.Run(context.Background()))
	assert.Len(t, pub.keys, 2)
	assert.Len(t, pub.messages, 1)
	assert.Equal(t, 2, w.publish(context.Background(), testRecords()))
}
