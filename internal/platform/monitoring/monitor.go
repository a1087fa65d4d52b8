package monitoring

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Monitor records audit events and collaborator failures as structured logs
// and Prometheus counters.
type Monitor struct {
	audits *prometheus.CounterVec
	errors *prometheus.CounterVec
	logger *slog.Logger
}

func New(registerer prometheus.Registerer, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	factory := promauto.With(registerer)
	return &Monitor{
		audits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wishpact_audit_events_total",
			Help: "audit events recorded per event name",
		}, []string{"event"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wishpact_monitored_errors_total",
			Help: "collaborator and side effect failures",
		}, []string{"message"}),
		logger: logger,
	}
}

func (m *Monitor) Audit(ctx context.Context, event string, data map[string]any) {
	m.audits.WithLabelValues(event).Inc()
	m.logger.InfoContext(ctx, "audit",
		"event", event,
		"module", "internal/platform/monitoring",
		"layer", "platform",
		"data", data,
	)
}

func (m *Monitor) Error(ctx context.Context, message string, err error, data map[string]any) {
	m.errors.WithLabelValues(message).Inc()
	errText := ""
	if err != nil {
		errText = err.Error()
	}
	m.logger.ErrorContext(ctx, message,
		"event", "monitored_error",
		"module", "internal/platform/monitoring",
		"layer", "platform",
		"error", errText,
		"data", data,
	)
}

func (m *Monitor) AuditCount(event string) prometheus.Counter {
	return m.audits.WithLabelValues(event)
}

func (m *Monitor) ErrorCount(message string) prometheus.Counter {
	return m.errors.WithLabelValues(message)
}
