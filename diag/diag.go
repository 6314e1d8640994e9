// Package diag subscribes to plocktrace events and exposes them as
// Prometheus metrics, the way the pack's own observability-heavy repos
// (agilira-iris, agilira-balios) wire a metrics sink onto an otherwise
// silent hot path. It is entirely opt-in: importing the package does
// nothing until Register is called, and Register itself does nothing
// until a caller also passes the returned Metrics' Handler() to
// plocktrace.SetHandler (or calls diag.Install, which does both).
package diag

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dijkstracula/plock/plocktrace"
)

// Metrics bundles the counters and histogram Register produces. Holding
// onto a distinct Metrics value (rather than package globals) lets a
// process run more than one instrumented registry, e.g. in tests.
type Metrics struct {
	acquisitions *prometheus.CounterVec
	contended    *prometheus.CounterVec
	waitSeconds  *prometheus.HistogramVec
}

// Register creates and registers the plock metrics family on reg.
func Register(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		acquisitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "plock",
			Name:      "acquisitions_total",
			Help:      "Total number of completed lock acquisitions, by operation.",
		}, []string{"op"}),
		contended: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "plock",
			Name:      "contended_acquisitions_total",
			Help:      "Acquisitions that had to retry at least once before succeeding.",
		}, []string{"op"}),
		waitSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "plock",
			Name:      "acquire_wait_seconds",
			Help:      "Time spent retrying before an acquisition succeeded.",
			Buckets:   prometheus.ExponentialBuckets(1e-7, 4, 12),
		}, []string{"op"}),
	}

	reg.MustRegister(m.acquisitions, m.contended, m.waitSeconds)
	return m
}

// Handler returns a plocktrace.Handler that feeds m. Pass it to
// plocktrace.SetHandler to start collecting.
func (m *Metrics) Handler() plocktrace.Handler {
	return func(ev plocktrace.Event) {
		op := string(ev.Op)
		m.acquisitions.WithLabelValues(op).Inc()
		if ev.Blocked {
			m.contended.WithLabelValues(op).Inc()
			m.waitSeconds.WithLabelValues(op).Observe(ev.Wait.Seconds())
		}
	}
}

// Install registers m's metrics on reg and wires plocktrace to report
// into it in one call, for callers that don't need the two steps split.
func Install(reg prometheus.Registerer) *Metrics {
	m := Register(reg)
	plocktrace.SetHandler(m.Handler())
	return m
}
