package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Shivanand-hulikatti/event-registration/internal/config"
	goredis "github.com/redis/go-redis/v9"
)

// RedisPublisher publishes JSON-encoded notices on a Redis pub/sub channel.
type RedisPublisher struct {
	rdb     goredis.UniversalClient
	channel string
}

// NewRedisPublisher connects to cfg.Addr and verifies the connection.
func NewRedisPublisher(ctx context.Context, cfg config.RedisConfig) (*RedisPublisher, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis: missing addr")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisPublisherWithClient(rdb, cfg.Channel), nil
}

// NewRedisPublisherWithClient wraps an existing client.
func NewRedisPublisherWithClient(rdb goredis.UniversalClient, channel string) *RedisPublisher {
	if channel == "" {
		channel = "registrations"
	}
	return &RedisPublisher{rdb: rdb, channel: channel}
}

// Publish encodes n and sends it on the configured channel.
func (p *RedisPublisher) Publish(ctx context.Context, n Notice) error {
	raw, err := Encode(n)
	if err != nil {
		return err
	}
	if err := p.rdb.Publish(ctx, p.channel, raw).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Subscribe streams decoded notices from the channel until ctx is done.
func (p *RedisPublisher) Subscribe(ctx context.Context, onNotice func(Notice)) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe: %w", err)
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			n, err := Decode([]byte(msg.Payload))
			if err != nil {
				continue
			}
			onNotice(n)
		}
	}
}

// Close releases the Redis client.
func (p *RedisPublisher) Close() error {
	return p.rdb.Close()
}

// Encode serialises a notice for the wire.
func Encode(n Notice) ([]byte, error) {
	raw, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("encode notice: %w", err)
	}
	return raw, nil
}

// Decode parses a notice produced by Encode.
func Decode(raw []byte) (Notice, error) {
	var n Notice
	if err := json.Unmarshal(raw, &n); err != nil {
		return Notice{}, fmt.Errorf("decode notice: %w", err)
	}
	if n.Type == "" || n.EventID == "" {
		return Notice{}, fmt.Errorf("decode notice: missing type or event_id")
	}
	return n, nil
}
