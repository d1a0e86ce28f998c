// Package metrics counts synchronization outcomes of the session store.
//
// Counters live on a private registry so several stores (and tests) can
// coexist in one process. A nil *Metrics is valid and records nothing.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the session store's counters.
type Metrics struct {
	Registry *prometheus.Registry

	syncFailures    *prometheus.CounterVec
	eventsSubmitted prometheus.Counter
	pointsAwarded   prometheus.Counter
	selfHeals       prometheus.Counter
}

// New creates counters registered on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		syncFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sugarwarrior",
			Name:      "sync_failures_total",
			Help:      "Backend calls that failed after local state was already applied.",
		}, []string{"op"}),
		eventsSubmitted: f.NewCounter(prometheus.CounterOpts{
			Namespace: "sugarwarrior",
			Name:      "events_submitted_total",
			Help:      "Events confirmed by the backend.",
		}),
		pointsAwarded: f.NewCounter(prometheus.CounterOpts{
			Namespace: "sugarwarrior",
			Name:      "points_awarded_total",
			Help:      "Points reported by the backend for submitted events.",
		}),
		selfHeals: f.NewCounter(prometheus.CounterOpts{
			Namespace: "sugarwarrior",
			Name:      "identity_self_heals_total",
			Help:      "Resets triggered by the backend not knowing the stored identity.",
		}),
	}
}

// SyncFailed counts a failed backend call for op.
func (m *Metrics) SyncFailed(op string) {
	if m == nil {
		return
	}
	m.syncFailures.WithLabelValues(op).Inc()
}

// EventSubmitted counts a confirmed submission and the points it earned.
func (m *Metrics) EventSubmitted(points int) {
	if m == nil {
		return
	}
	m.eventsSubmitted.Inc()
	if points > 0 {
		m.pointsAwarded.Add(float64(points))
	}
}

// SelfHealed counts an identity-invalidation reset.
func (m *Metrics) SelfHealed() {
	if m == nil {
		return
	}
	m.selfHeals.Inc()
}

// WriteFile writes every counter to path in the Prometheus text format,
// replacing the file atomically.
func (m *Metrics) WriteFile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
