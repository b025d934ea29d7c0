// Package metrics records health-engine observability data with
// Prometheus, mirroring the counters/gauges shape a Prometheus-backed stack
// exposes for its own subsystems, scaled down to what the engine needs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder is the observability sink the engine drives on every verdict
// transition and status_ver bump. A nil *Recorder is valid and records
// nothing, so wiring metrics is opt-in.
type Recorder struct {
	transitions *prometheus.CounterVec
	statusVer   *prometheus.GaugeVec
	targets     prometheus.Gauge
}

// New registers relayhealth's metrics on reg and returns a Recorder. If
// reg is nil, prometheus.DefaultRegisterer is used.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	r := &Recorder{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "relayhealth",
			Name:      "target_transitions_total",
			Help:      "Number of internal health state transitions, labeled by the state entered.",
		}, []string{"state"}),
		statusVer: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "relayhealth",
			Name:      "target_status_version",
			Help:      "The worker-wide status_ver, recorded under the target whose healthy/unhealthy flip last bumped it.",
		}, []string{"ip", "port", "hostname"}),
		targets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "relayhealth",
			Name:      "targets_registered",
			Help:      "Number of targets currently present in the per-worker index.",
		}),
	}

	reg.MustRegister(r.transitions, r.statusVer, r.targets)
	return r
}

// RecordTransition increments the transition counter for the state a
// target just entered.
func (r *Recorder) RecordTransition(state string) {
	if r == nil {
		return
	}
	r.transitions.WithLabelValues(state).Inc()
}

// SetStatusVer records the worker-wide status_ver under a target's
// labels.
func (r *Recorder) SetStatusVer(ip, port, hostname string, ver uint64) {
	if r == nil {
		return
	}
	r.statusVer.WithLabelValues(ip, port, hostname).Set(float64(ver))
}

// SetTargetCount reports the size of the per-worker index.
func (r *Recorder) SetTargetCount(n int) {
	if r == nil {
		return
	}
	r.targets.Set(float64(n))
}
