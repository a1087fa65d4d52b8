package outbox

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	contractsv1 "wishpact/contracts/gen/events/v1"

	"github.com/google/uuid"
)

type MemoryStore struct {
	mu       sync.Mutex
	messages map[string]Message
	seq      map[string]int
	next     int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		messages: make(map[string]Message),
		seq:      make(map[string]int),
	}
}

func (s *MemoryStore) AppendOutbox(_ context.Context, envelope contractsv1.Envelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	id := strings.TrimSpace(envelope.EventID)
	if id == "" {
		id = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.messages[id]; ok {
		if !bytes.Equal(existing.Payload, payload) {
			return ErrIdempotencyConflict
		}
		return nil
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	s.messages[id] = Message{
		ID:           id,
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       StatusPending,
		CreatedAt:    createdAt,
	}
	s.next++
	s.seq[id] = s.next
	return nil
}

// ListPendingOutbox returns pending messages in append order.
func (s *MemoryStore) ListPendingOutbox(_ context.Context, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 100
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]Message, 0)
	for _, message := range s.messages {
		if message.Status == StatusPending {
			items = append(items, message)
		}
	}
	sort.Slice(items, func(i, j int) bool { return s.seq[items[i].ID] < s.seq[items[j].ID] })
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *MemoryStore) MarkOutboxPublished(_ context.Context, id string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	message, ok := s.messages[strings.TrimSpace(id)]
	if !ok {
		return nil
	}
	at := publishedAt.UTC()
	message.Status = StatusPublished
	message.PublishedAt = &at
	s.messages[message.ID] = message
	return nil
}

func (s *MemoryStore) MarkOutboxAttempt(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	message, ok := s.messages[strings.TrimSpace(id)]
	if !ok {
		return nil
	}
	message.Attempts++
	s.messages[message.ID] = message
	return nil
}

// Pending reports how many messages still await publication.
func (s *MemoryStore) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, message := range s.messages {
		if message.Status == StatusPending {
			count++
		}
	}
	return count
}

var _ Store = (*MemoryStore)(nil)
