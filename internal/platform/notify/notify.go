package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	userListPrefix = "wishpact:notifications:"
	channel        = "wishpact.notifications"
	maxPerUser     = 100
)

// LogNotifier writes notifications to the structured log.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(ctx context.Context, userID string, kind string, message string) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "notification",
		"event", "notification_sent",
		"module", "internal/platform/notify",
		"layer", "platform",
		"user_id", userID,
		"kind", kind,
		"message", message,
	)
	return nil
}

type Notification struct {
	UserID    string    `json:"user_id"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// RedisNotifier keeps the latest notifications per user in a capped list and
// announces each one on a pub/sub channel.
type RedisNotifier struct {
	client redis.UniversalClient
	now    func() time.Time
}

func NewRedisNotifier(client redis.UniversalClient) *RedisNotifier {
	return &RedisNotifier{client: client, now: time.Now}
}

func UserListKey(userID string) string {
	return userListPrefix + strings.TrimSpace(userID)
}

func (n *RedisNotifier) Notify(ctx context.Context, userID string, kind string, message string) error {
	payload, err := json.Marshal(Notification{
		UserID:    strings.TrimSpace(userID),
		Kind:      kind,
		Message:   message,
		CreatedAt: n.now().UTC(),
	})
	if err != nil {
		return err
	}
	key := UserListKey(userID)
	_, err = n.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, payload)
		pipe.LTrim(ctx, key, 0, maxPerUser-1)
		pipe.Publish(ctx, channel, payload)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis notify %s: %w", kind, err)
	}
	return nil
}
