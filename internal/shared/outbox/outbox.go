// Package outbox stores event envelopes written by the services and relays
// them to the event bus. Every context's OutboxWriter port is satisfied by
// the stores in this package.
package outbox

import (
	"context"
	"time"

	"wishpact/contracts/apperrors"
	contractsv1 "wishpact/contracts/gen/events/v1"
)

const (
	StatusPending   = "pending"
	StatusPublished = "published"
)

// ErrIdempotencyConflict reports an event id reused with a different payload.
var ErrIdempotencyConflict = apperrors.New(apperrors.KindConflict, "outbox event id reused with different payload")

// Message is one persisted envelope awaiting publication.
type Message struct {
	ID           string
	EventType    string
	PartitionKey string
	Payload      []byte
	Status       string
	Attempts     int
	CreatedAt    time.Time
	PublishedAt  *time.Time
}

type Store interface {
	AppendOutbox(ctx context.Context, envelope contractsv1.Envelope) error
	ListPendingOutbox(ctx context.Context, limit int) ([]Message, error)
	MarkOutboxPublished(ctx context.Context, id string, publishedAt time.Time) error
	MarkOutboxAttempt(ctx context.Context, id string) error
}

type Publisher interface {
	Publish(ctx context.Context, topic string, envelope contractsv1.Envelope) error
}
