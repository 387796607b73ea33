// Package metrics registers the Prometheus gauges the web UI exposes at
// /metrics alongside its websocket push, grounded on
// miretskiy-rollingstone's cmd/server/prometheus.go.
package metrics

import (
	"github.com/jbodctl/jbodctl/internal/model"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the gauges updated after every plan run.
type Metrics struct {
	volumeUsedRatio *prometheus.GaugeVec
	pendingFiles    prometheus.Gauge
	pendingBytes    prometheus.Gauge
	skippedFiles    prometheus.Gauge
	planStep        prometheus.Gauge
}

// New creates the gauge set and registers it against reg. Passing
// prometheus.NewRegistry() (rather than the global DefaultRegisterer)
// keeps repeated test construction from panicking on double-registration.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		volumeUsedRatio: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "jbodctl_volume_used_ratio",
			Help: "Fraction of a volume's capacity currently in use",
		}, []string{"volume"}),
		pendingFiles: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jbodctl_plan_pending_files",
			Help: "Number of files the current plan has yet to move",
		}),
		pendingBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jbodctl_plan_pending_bytes",
			Help: "Number of bytes the current plan has yet to move",
		}),
		skippedFiles: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jbodctl_plan_skipped_files",
			Help: "Number of files the current plan could not place",
		}),
		planStep: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jbodctl_plan_step",
			Help: "Audit trail step the web UI is currently replaying",
		}),
	}
	reg.MustRegister(m.volumeUsedRatio, m.pendingFiles, m.pendingBytes, m.skippedFiles, m.planStep)
	return m
}

// ObserveSnapshot updates the volume gauges and the current step from an
// audit trail snapshot.
func (m *Metrics) ObserveSnapshot(snap model.Snapshot) {
	for _, v := range snap.World.Volumes {
		m.volumeUsedRatio.WithLabelValues(v.Path).Set(v.UsedRatio())
	}
	m.planStep.Set(float64(snap.Step))
}

// ObservePlan updates the plan-level gauges from a materialized Plan.
func (m *Metrics) ObservePlan(plan model.Plan) {
	m.pendingFiles.Set(float64(plan.Summary.TotalFiles))
	m.pendingBytes.Set(float64(plan.Summary.TotalBytes))

	var skipped int
	for _, mv := range plan.Moves {
		if mv.Status == model.StatusSkipped {
			skipped++
		}
	}
	m.skippedFiles.Set(float64(skipped))
}
