package messaging

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts bus traffic per topic. A nil *Metrics records nothing.
type Metrics struct {
	Published     *prometheus.CounterVec
	Dropped       *prometheus.CounterVec
	ConsumeFailed *prometheus.CounterVec
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		Published: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wishpact_bus_published_total",
			Help: "events published on the event bus",
		}, []string{"topic"}),
		Dropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wishpact_bus_dropped_total",
			Help: "events dropped for slow subscribers",
		}, []string{"topic"}),
		ConsumeFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wishpact_bus_consume_failed_total",
			Help: "subscriber handler failures",
		}, []string{"topic"}),
	}
}

func (m *Metrics) published(topic string) {
	if m != nil {
		m.Published.WithLabelValues(topic).Inc()
	}
}

func (m *Metrics) dropped(topic string) {
	if m != nil {
		m.Dropped.WithLabelValues(topic).Inc()
	}
}

func (m *Metrics) consumeFailed(topic string) {
	if m != nil {
		m.ConsumeFailed.WithLabelValues(topic).Inc()
	}
}
