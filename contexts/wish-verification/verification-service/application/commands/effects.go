package commands

import (
	"context"
	"log/slog"
	"time"

	application "wishpact/contexts/wish-verification/verification-service/application"
	"wishpact/contexts/wish-verification/verification-service/ports"
	contractsv1 "wishpact/contracts/gen/events/v1"
)

const (
	moduleName    = "wish-verification/verification-service"
	sourceService = "verification-service"

	defaultExternalCallTimeout = 5 * time.Second
)

// collaborators bundles the best-effort side channels. None of them may fail
// a state transition that already happened in storage.
type collaborators struct {
	outbox   ports.OutboxWriter
	monitor  ports.Monitor
	notifier ports.Notifier
	idGen    ports.IDGenerator
	timeout  time.Duration
	logger   *slog.Logger
}

func (c collaborators) emit(ctx context.Context, eventType string, wishID string, occurredAt time.Time, data map[string]any) {
	// Outbox is optional for pure read/test wiring, so nil is treated as no-op.
	if c.outbox == nil || c.idGen == nil {
		return
	}
	eventID, err := c.idGen.NewID(ctx)
	if err == nil {
		var envelope ports.EventEnvelope
		envelope, err = contractsv1.NewEnvelope(eventID, eventType, sourceService, "wish_id", wishID, occurredAt, data)
		if err == nil {
			err = c.outbox.AppendOutbox(ctx, envelope)
		}
	}
	if err != nil {
		c.reportError(ctx, "outbox append failed", err, map[string]any{
			"event_type": eventType,
			"wish_id":    wishID,
		})
	}
}

func (c collaborators) audit(ctx context.Context, event string, data map[string]any) {
	if c.monitor == nil {
		return
	}
	c.monitor.Audit(ctx, event, data)
}

func (c collaborators) reportError(ctx context.Context, message string, err error, data map[string]any) {
	fields := []any{
		"event", "verification_side_effect_failed",
		"module", moduleName,
		"layer", "application",
		"error", err.Error(),
	}
	for key, value := range data {
		fields = append(fields, key, value)
	}
	application.ResolveLogger(c.logger).Warn(message, fields...)
	if c.monitor != nil {
		c.monitor.Error(ctx, message, err, data)
	}
}

func (c collaborators) notify(ctx context.Context, userID string, kind string, message string) {
	if c.notifier == nil || userID == "" {
		return
	}
	callCtx, cancel := c.external(ctx)
	defer cancel()
	if err := c.notifier.Notify(callCtx, userID, kind, message); err != nil {
		c.reportError(ctx, "notification failed", err, map[string]any{
			"user_id": userID,
			"kind":    kind,
		})
	}
}

// external bounds a collaborator call by the configured timeout. Caller
// cancellation does not propagate into it.
func (c collaborators) external(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := c.timeout
	if timeout <= 0 {
		timeout = defaultExternalCallTimeout
	}
	return context.WithTimeout(context.WithoutCancel(ctx), timeout)
}
