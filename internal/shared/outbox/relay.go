package outbox

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	contractsv1 "wishpact/contracts/gen/events/v1"
)

// Relay publishes pending outbox messages to the event bus.
type Relay struct {
	Store     Store
	Publisher Publisher
	BatchSize int
	Now       func() time.Time
	Logger    *slog.Logger
}

// RunOnce publishes a bounded batch in append order and marks each message
// published only after the publish succeeded. It stops at the first failure
// so the next cycle retries from that message.
func (r Relay) RunOnce(ctx context.Context) (int, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Store.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("outbox list failed",
			"event", "outbox_relay_list_failed",
			"module", "internal/shared/outbox",
			"layer", "worker",
			"error", err.Error(),
		)
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	published := 0
	for _, message := range pending {
		var envelope contractsv1.Envelope
		if err := json.Unmarshal(message.Payload, &envelope); err != nil {
			logger.Error("outbox decode failed",
				"event", "outbox_relay_decode_failed",
				"module", "internal/shared/outbox",
				"layer", "worker",
				"outbox_id", message.ID,
				"error", err.Error(),
			)
			return published, err
		}
		topic := envelope.EventType
		if topic == "" {
			topic = message.EventType
		}
		if err := r.Publisher.Publish(ctx, topic, envelope); err != nil {
			logger.Error("outbox publish failed",
				"event", "outbox_relay_publish_failed",
				"module", "internal/shared/outbox",
				"layer", "worker",
				"outbox_id", message.ID,
				"event_type", envelope.EventType,
				"attempts", message.Attempts+1,
				"error", err.Error(),
			)
			if markErr := r.Store.MarkOutboxAttempt(ctx, message.ID); markErr != nil {
				return published, markErr
			}
			return published, err
		}
		if err := r.Store.MarkOutboxPublished(ctx, message.ID, r.now()); err != nil {
			return published, err
		}
		published++
	}

	logger.Info("outbox relay cycle completed",
		"event", "outbox_relay_completed",
		"module", "internal/shared/outbox",
		"layer", "worker",
		"published_count", published,
	)
	return published, nil
}

func (r Relay) now() time.Time {
	if r.Now == nil {
		return time.Now().UTC()
	}
	return r.Now().UTC()
}
