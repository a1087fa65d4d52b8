package notify

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestLogNotifierWritesStructuredRecord(t *testing.T) {
	var buf bytes.Buffer
	notifier := LogNotifier{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}

	require.NoError(t, notifier.Notify(context.Background(), "user_1", "wish_verified", "Your wish was verified"))
	require.Contains(t, buf.String(), `"user_id":"user_1"`)
	require.Contains(t, buf.String(), `"kind":"wish_verified"`)
}

func TestRedisNotifierReportsUnavailableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	err := NewRedisNotifier(client).Notify(context.Background(), "user_1", "vote_cast", "A vote was cast")
	require.ErrorContains(t, err, "redis notify vote_cast")
	require.Equal(t, "wishpact:notifications:user_1", UserListKey(" user_1 "))
}
