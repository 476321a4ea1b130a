// Package metrics exposes the bot's Prometheus instrumentation and the
// small admin HTTP surface (/metrics, /healthz).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	registry *prometheus.Registry

	// UpdatesTotal counts handled updates by source kind
	// ("message" or "callback").
	UpdatesTotal *prometheus.CounterVec
	// HandlerErrors counts updates whose handler returned an error.
	HandlerErrors prometheus.Counter
}

// New registers the bot's collectors on a fresh registry. The
// sessionCount func, when non-nil, backs an active-conversations gauge.
func New(sessionCount func() float64) *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		UpdatesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "habitbot",
			Name:      "updates_total",
			Help:      "Handled Telegram updates by kind.",
		}, []string{"kind"}),
		HandlerErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "habitbot",
			Name:      "handler_errors_total",
			Help:      "Updates whose handler failed.",
		}),
	}
	reg.MustRegister(m.UpdatesTotal, m.HandlerErrors)

	if sessionCount != nil {
		reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "habitbot",
			Name:      "active_sessions",
			Help:      "Conversation flows currently in progress.",
		}, sessionCount))
	}

	return m
}
