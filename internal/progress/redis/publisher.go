package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"filewise/internal/config"
	"filewise/internal/logger"
	"filewise/internal/port"
)

const subscriberBuffer = 64

// Publisher fans batch progress events out over a Redis pub/sub channel so
// every API instance can stream them, whichever instance runs the batch.
type Publisher struct {
	rdb     *goredis.Client
	channel string
	log     *logger.Logger
}

// NewPublisher connects to Redis and verifies the connection.
func NewPublisher(cfg *config.RedisConfig, log *logger.Logger) (*Publisher, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewPublisherWithClient(rdb, cfg.Channel, log), nil
}

// NewPublisherWithClient wraps an existing client.
func NewPublisherWithClient(rdb *goredis.Client, channel string, log *logger.Logger) *Publisher {
	return &Publisher{
		rdb:     rdb,
		channel: channel,
		log:     log.With("component", "redisProgress"),
	}
}

func (p *Publisher) Publish(ctx context.Context, event port.BatchProgressEvent) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding progress event: %w", err)
	}
	if err := p.rdb.Publish(ctx, p.channel, raw).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Subscribe forwards decoded events until ctx is done. Slow consumers lose
// events rather than stall the subscription.
func (p *Publisher) Subscribe(ctx context.Context) (<-chan port.BatchProgressEvent, error) {
	sub := p.rdb.Subscribe(ctx, p.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}

	out := make(chan port.BatchProgressEvent, subscriberBuffer)
	go func() {
		defer close(out)
		defer func() { _ = sub.Close() }()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok || m == nil {
					return
				}
				var event port.BatchProgressEvent
				if err := json.Unmarshal([]byte(m.Payload), &event); err != nil {
					p.log.Warn("redisProgress.Subscribe: bad payload", "error", err)
					continue
				}
				select {
				case out <- event:
				default:
					p.log.Debug("redisProgress.Subscribe: subscriber behind, dropping event", "batch_id", event.BatchID)
				}
			}
		}
	}()
	return out, nil
}

// Ping reports whether Redis is reachable.
func (p *Publisher) Ping(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}

// Close releases the Redis connection pool.
func (p *Publisher) Close() error {
	return p.rdb.Close()
}
