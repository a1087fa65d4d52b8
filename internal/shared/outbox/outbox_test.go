package outbox

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	contractsv1 "wishpact/contracts/gen/events/v1"
	"wishpact/internal/platform/db"

	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	failAt int
	calls  int
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, _ contractsv1.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.failAt > 0 && p.calls == p.failAt {
		return errors.New("bus unavailable")
	}
	p.topics = append(p.topics, topic)
	return nil
}

func envelope(t *testing.T, id string, eventType string, at time.Time) contractsv1.Envelope {
	t.Helper()
	env, err := contractsv1.NewEnvelope(id, eventType, "test", "wish_id", "wish_1", at, map[string]any{"id": id})
	require.NoError(t, err)
	return env
}

func stores(t *testing.T) map[string]Store {
	t.Helper()
	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "outbox.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, database.Migrate(context.Background(), Models()...))
	return map[string]Store{
		"memory": NewMemoryStore(),
		"gorm":   NewGormStore(database.DB, nil),
	}
}

func TestAppendIsIdempotentPerEventID(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			now := time.Now().UTC()
			first := envelope(t, "evt_1", contractsv1.EventVoteCast, now)

			require.NoError(t, store.AppendOutbox(ctx, first))
			require.NoError(t, store.AppendOutbox(ctx, first))

			changed := envelope(t, "evt_1", contractsv1.EventWishResolved, now)
			require.ErrorIs(t, store.AppendOutbox(ctx, changed), ErrIdempotencyConflict)

			pending, err := store.ListPendingOutbox(ctx, 10)
			require.NoError(t, err)
			require.Len(t, pending, 1)
			require.Equal(t, contractsv1.EventVoteCast, pending[0].EventType)
		})
	}
}

func TestRelayPublishesInOrderAndRetriesFromFailure(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Now().UTC()
			require.NoError(t, store.AppendOutbox(ctx, envelope(t, "evt_a", contractsv1.EventProofSubmitted, base)))
			require.NoError(t, store.AppendOutbox(ctx, envelope(t, "evt_b", contractsv1.EventVoteCast, base.Add(time.Second))))
			require.NoError(t, store.AppendOutbox(ctx, envelope(t, "evt_c", contractsv1.EventWishResolved, base.Add(2*time.Second))))

			publisher := &recordingPublisher{failAt: 2}
			relay := Relay{Store: store, Publisher: publisher, BatchSize: 10}

			published, err := relay.RunOnce(ctx)
			require.Error(t, err)
			require.Equal(t, 1, published)

			pending, err := store.ListPendingOutbox(ctx, 10)
			require.NoError(t, err)
			require.Len(t, pending, 2)
			require.Equal(t, "evt_b", pending[0].ID)
			require.Equal(t, 1, pending[0].Attempts)

			published, err = relay.RunOnce(ctx)
			require.NoError(t, err)
			require.Equal(t, 2, published)
			require.Equal(t, []string{
				contractsv1.EventProofSubmitted,
				contractsv1.EventVoteCast,
				contractsv1.EventWishResolved,
			}, publisher.topics)

			published, err = relay.RunOnce(ctx)
			require.NoError(t, err)
			require.Zero(t, published)
		})
	}
}
