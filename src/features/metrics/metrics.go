package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "sigwatch"

// Metrics exposes Prometheus collectors that report watch and broadcast
// activity. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry           *prometheus.Registry
	notices            *prometheus.CounterVec
	updates            prometheus.Counter
	commandRuns        prometheus.Counter
	subscribers        prometheus.Gauge
	subscribersAdded   prometheus.Counter
	subscribersDropped prometheus.Counter
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		notices: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notices_total",
			Help:      "Filesystem notices received, by kind.",
		}, []string{"kind"}),
		updates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_total",
			Help:      "Updates dispatched after an actionable change.",
		}),
		commandRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "command_runs_total",
			Help:      "Times the configured command was run to completion.",
		}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "broadcast",
			Name:      "subscribers",
			Help:      "Subscribers kept after the latest broadcast or registration.",
		}),
		subscribersAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "broadcast",
			Name:      "subscribers_registered_total",
			Help:      "Accepted event stream connections.",
		}),
		subscribersDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "broadcast",
			Name:      "subscribers_dropped_total",
			Help:      "Subscribers removed because their session had ended.",
		}),
	}
	m.registry.MustRegister(
		m.notices,
		m.updates,
		m.commandRuns,
		m.subscribers,
		m.subscribersAdded,
		m.subscribersDropped,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry returns the registry backing the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveNotice counts one notice of the given kind.
func (m *Metrics) ObserveNotice(kind string) {
	if m == nil {
		return
	}
	m.notices.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncUpdate() {
	if m == nil {
		return
	}
	m.updates.Inc()
}

func (m *Metrics) IncCommandRun() {
	if m == nil {
		return
	}
	m.commandRuns.Inc()
}

// SubscriberRegistered records a newly accepted subscriber and the registry size.
func (m *Metrics) SubscriberRegistered(live int) {
	if m == nil {
		return
	}
	m.subscribersAdded.Inc()
	m.subscribers.Set(float64(live))
}

// SubscribersCompacted records the outcome of a broadcast.
func (m *Metrics) SubscribersCompacted(live, dropped int) {
	if m == nil {
		return
	}
	m.subscribers.Set(float64(live))
	m.subscribersDropped.Add(float64(dropped))
}
