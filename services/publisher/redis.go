package publisher

import (
	"context"
	"encoding/base64"

	"github.com/redis/go-redis/v9"

	"sjsage522/pflanzencrawler/logger"
	"sjsage522/pflanzencrawler/pkg/errors"
)

// RedisPublisher implements Publisher using a Redis stream
type RedisPublisher struct {
	client          *redis.Client
	stream          string
	streamMaxLength int64
	log             *logger.Logger
}

// NewRedisPublisher creates a new Redis publisher
func NewRedisPublisher(addr string, db int, stream string, streamMaxLength int) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &RedisPublisher{
		client:          client,
		stream:          stream,
		streamMaxLength: int64(streamMaxLength),
		log:             logger.ForPublisher(),
	}
}

// Ping checks that the Redis server is reachable
func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Publish appends a message to the Redis stream.
// The message is base64 encoded before publishing and the stream is
// trimmed approximately to the configured maximum length.
func (p *RedisPublisher) Publish(ctx context.Context, key string, message []byte) error {
	encodedMessage := base64.StdEncoding.EncodeToString(message)

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			key: encodedMessage,
		},
	}
	if p.streamMaxLength > 0 {
		args.MaxLen = p.streamMaxLength
		args.Approx = true
	}

	id, err := p.client.XAdd(ctx, args).Result()
	if err != nil {
		return errors.NewPublisher(p.stream, "XADD failed", err)
	}
	p.log.Debug().Str("stream", p.stream).Str("id", id).Msg("Record published")
	return nil
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
