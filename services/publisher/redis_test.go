package publisher

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/pflanzencrawler/pkg/errors"
)

func TestRedisPublisher(t *testing.T) {
	ctx := context.Background()
	publisher := NewRedisPublisher("localhost:6379", 0, "test_stream_pflanzen", 100)
	defer publisher.Close()

	// Test if Redis is available
	if err := publisher.Ping(ctx); err != nil {
		t.Skip("Redis is not available, skipping test")
	}

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   0,
	})
	defer client.Close()
	defer client.Del(ctx, "test_stream_pflanzen")

	err := publisher.Publish(ctx, "product", []byte("test_message"))
	require.NoError(t, err)

	messages, err := client.XRange(ctx, "test_stream_pflanzen", "-", "+").Result()
	require.NoError(t, err)
	require.NotEmpty(t, messages)

	// The message should be base64 encoded
	last := messages[len(messages)-1]
	assert.Equal(t, "dGVzdF9tZXNzYWdl", last.Values["product"]) // base64 of "test_message"
}

func TestRedisPublisherUnreachable(t *testing.T) {
	publisher := NewRedisPublisher("127.0.0.1:1", 0, "test_stream_pflanzen", 0)
	defer publisher.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := publisher.Publish(ctx, "product", []byte("{}"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypePublisher))
}
