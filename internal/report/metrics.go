package report

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Metrics are boring counters only, on a private registry so that a
// one-shot run can dump them to a node_exporter textfile.
type Metrics struct {
	registry *prometheus.Registry

	runs     *prometheus.CounterVec
	steps    *prometheus.CounterVec
	probes   prometheus.Counter
	lastWait prometheus.Gauge
}

// NewMetrics creates and registers the run counters
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "symlink_cleaner_runs_total",
			Help: "Runs by terminal outcome",
		}, []string{"outcome"}),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "symlink_cleaner_steps_total",
			Help: "Pipeline steps by result",
		}, []string{"step", "result"}),
		probes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "symlink_cleaner_probes_total",
			Help: "Liveness probes made while waiting",
		}),
		lastWait: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "symlink_cleaner_last_run_duration_seconds",
			Help: "Wall time of the last run",
		}),
	}
	m.registry.MustRegister(m.runs, m.steps, m.probes, m.lastWait)
	return m
}

// RecordProbe counts one liveness probe
func (m *Metrics) RecordProbe() {
	m.probes.Inc()
}

// RecordResult updates the counters from a finished result.
// This is the ONLY way to update run counters.
func (m *Metrics) RecordResult(r *Result) {
	m.runs.WithLabelValues(string(r.Outcome)).Inc()
	if r.Teardown.Attempted {
		m.steps.WithLabelValues("teardown", r.Teardown.Status()).Inc()
	}
	if r.Restore.Attempted {
		m.steps.WithLabelValues("restore", r.Restore.Status()).Inc()
	}
	m.lastWait.Set(r.Duration.Seconds())
}

// WriteText renders all metrics in the Prometheus text format
func (m *Metrics) WriteText(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}

// WriteTextfile atomically writes the metrics for the textfile collector
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
