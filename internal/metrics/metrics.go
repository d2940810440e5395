// Package metrics records generation runs as Prometheus metrics and writes
// them in the node-exporter textfile format, since runs are batch jobs with
// no long-lived endpoint to scrape.
package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "docpress"

// Recorder holds the run metrics. A nil *Recorder is a no-op.
type Recorder struct {
	reg          *prom.Registry
	tasks        *prom.CounterVec
	taskDuration *prom.HistogramVec
	runDuration  prom.Gauge
	lastRun      prom.Gauge
	entries      prom.Gauge
	available    prom.Gauge
	scanWarnings prom.Counter
	hardFailures prom.Gauge
}

// New constructs and registers the metrics on a fresh registry.
func New() *Recorder {
	r := &Recorder{reg: prom.NewRegistry()}
	r.tasks = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_total",
		Help:      "Generation tasks by outcome and route",
	}, []string{"outcome", "route"})
	r.taskDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "task_duration_seconds",
		Help:      "Duration of dispatched tasks by route",
		Buckets:   prom.DefBuckets,
	}, []string{"route"})
	r.runDuration = prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Duration of the last run",
	})
	r.lastRun = prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time the last run finished",
	})
	r.entries = prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "registry_entries",
		Help:      "Registry entries written by the last run",
	})
	r.available = prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "registry_available",
		Help:      "Registry entries whose artifact exists",
	})
	r.scanWarnings = prom.NewCounter(prom.CounterOpts{
		Namespace: namespace,
		Name:      "scan_warnings_total",
		Help:      "Discovery warnings (duplicates, bad front matter)",
	})
	r.hardFailures = prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "hard_failures",
		Help:      "Tasks of the last run for which every route failed",
	})
	r.reg.MustRegister(r.tasks, r.taskDuration, r.runDuration, r.lastRun,
		r.entries, r.available, r.scanWarnings, r.hardFailures)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prom.Registry {
	if r == nil {
		return nil
	}
	return r.reg
}

// ObserveTask counts one task outcome. route is empty for tasks that never
// reached dispatch.
func (r *Recorder) ObserveTask(outcome, route string, d time.Duration) {
	if r == nil {
		return
	}
	r.tasks.WithLabelValues(outcome, route).Inc()
	if route != "" {
		r.taskDuration.WithLabelValues(route).Observe(d.Seconds())
	}
}

// AddScanWarnings counts discovery warnings.
func (r *Recorder) AddScanWarnings(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.scanWarnings.Add(float64(n))
}

// ObserveRun records the end of a run.
func (r *Recorder) ObserveRun(d time.Duration, finished time.Time, entries, available, hardFailures int) {
	if r == nil {
		return
	}
	r.runDuration.Set(d.Seconds())
	r.lastRun.Set(float64(finished.Unix()))
	r.entries.Set(float64(entries))
	r.available.Set(float64(available))
	r.hardFailures.Set(float64(hardFailures))
}

// WriteTextfile writes the current values to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prom.WriteToTextfile(path, r.reg)
}
