package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	contractsv1 "wishpact/contracts/gen/events/v1"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "wishpact.events."

// NewRedisClient accepts either a redis:// URL or a host:port address.
func NewRedisClient(addr string) (*redis.Client, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		opt, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: addr}), nil
}

func Channel(topic string) string {
	return channelPrefix + topic
}

// RedisPublisher publishes envelopes on Redis pub/sub so every API process
// receives them.
type RedisPublisher struct {
	client redis.UniversalClient
}

func NewRedisPublisher(client redis.UniversalClient) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, topic string, event contractsv1.Envelope) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.EventID, err)
	}
	if err := p.client.Publish(ctx, Channel(topic), payload).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", topic, err)
	}
	return nil
}

// RedisBridge forwards events from Redis pub/sub into a local publisher.
type RedisBridge struct {
	Client redis.UniversalClient
	Local  Publisher
	Logger *slog.Logger
}

// Run blocks until ctx is cancelled.
func (b RedisBridge) Run(ctx context.Context) error {
	logger := b.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sub := b.Client.PSubscribe(ctx, channelPrefix+"*")
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe: %w", err)
	}
	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			var event contractsv1.Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				logger.Warn("redis event decode failed",
					"event", "redis_bridge_decode_failed",
					"module", "internal/platform/messaging",
					"layer", "platform",
					"channel", msg.Channel,
					"error", err.Error(),
				)
				continue
			}
			topic := strings.TrimPrefix(msg.Channel, channelPrefix)
			if err := b.Local.Publish(ctx, topic, event); err != nil {
				logger.Warn("redis event forward failed",
					"event", "redis_bridge_forward_failed",
					"module", "internal/platform/messaging",
					"layer", "platform",
					"topic", topic,
					"error", err.Error(),
				)
			}
		}
	}
}
