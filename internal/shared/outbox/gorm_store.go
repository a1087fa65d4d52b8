package outbox

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	contractsv1 "wishpact/contracts/gen/events/v1"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormStore struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewGormStore(db *gorm.DB, logger *slog.Logger) *GormStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &GormStore{db: db, logger: logger}
}

func Models() []any {
	return []any{&messageModel{}}
}

func (s *GormStore) AppendOutbox(ctx context.Context, envelope contractsv1.Envelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return s.logError("outbox_append_marshal_failed", err,
			"event_id", strings.TrimSpace(envelope.EventID),
			"event_type", strings.TrimSpace(envelope.EventType),
		)
	}
	row := messageModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       StatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	create := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return s.logError("outbox_append_insert_failed", create.Error, "outbox_id", row.OutboxID)
	}
	if create.RowsAffected > 0 {
		return nil
	}

	var existing messageModel
	if err := s.db.WithContext(ctx).
		Select("payload").
		Where("outbox_id = ?", row.OutboxID).
		First(&existing).Error; err != nil {
		return s.logError("outbox_append_load_existing_failed", err, "outbox_id", row.OutboxID)
	}
	if !bytes.Equal(existing.Payload, row.Payload) {
		return ErrIdempotencyConflict
	}
	return nil
}

func (s *GormStore) ListPendingOutbox(ctx context.Context, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []messageModel
	if err := s.db.WithContext(ctx).
		Where("status = ?", StatusPending).
		Order("created_at ASC").
		Order("outbox_id ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, s.logError("outbox_list_pending_failed", err, "limit", limit)
	}
	items := make([]Message, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toMessage())
	}
	return items, nil
}

func (s *GormStore) MarkOutboxPublished(ctx context.Context, id string, publishedAt time.Time) error {
	result := s.db.WithContext(ctx).
		Model(&messageModel{}).
		Where("outbox_id = ?", strings.TrimSpace(id)).
		Updates(map[string]any{
			"status":       StatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return s.logError("outbox_mark_published_failed", result.Error, "outbox_id", strings.TrimSpace(id))
	}
	return nil
}

func (s *GormStore) MarkOutboxAttempt(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).
		Model(&messageModel{}).
		Where("outbox_id = ?", strings.TrimSpace(id)).
		Update("attempts", gorm.Expr("attempts + 1"))
	if result.Error != nil {
		return s.logError("outbox_mark_attempt_failed", result.Error, "outbox_id", strings.TrimSpace(id))
	}
	return nil
}

func (s *GormStore) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "internal/shared/outbox",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	s.logger.Error("outbox operation failed", fields...)
	return err
}

type messageModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type;index"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status;index"`
	Attempts     int        `gorm:"column:attempts"`
	CreatedAt    time.Time  `gorm:"column:created_at;index"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (messageModel) TableName() string {
	return "event_outbox"
}

func (m messageModel) toMessage() Message {
	var publishedAt *time.Time
	if m.PublishedAt != nil {
		at := m.PublishedAt.UTC()
		publishedAt = &at
	}
	return Message{
		ID:           m.OutboxID,
		EventType:    m.EventType,
		PartitionKey: m.PartitionKey,
		Payload:      append([]byte(nil), m.Payload...),
		Status:       m.Status,
		Attempts:     m.Attempts,
		CreatedAt:    m.CreatedAt.UTC(),
		PublishedAt:  publishedAt,
	}
}

var _ Store = (*GormStore)(nil)
