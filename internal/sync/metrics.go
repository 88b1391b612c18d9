package sync

import (
	stdsync "sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   stdsync.Once
)

// Metrics holds Prometheus metrics for the synchronizer. They are served
// by the HTTP surface's /metrics endpoint.
type Metrics struct {
	RunsTotal     *prometheus.CounterVec
	IssuesTotal   *prometheus.CounterVec
	RunDuration   prometheus.Histogram
	LastRunUnix   prometheus.Gauge
	LastRunIssues prometheus.Gauge
}

// NewMetrics creates and registers the synchronizer metrics.
//
// Registration happens once per process; subsequent calls return the same
// instance, preventing duplicate-collector panics.
//
// Metrics:
//   - notesync_runs_total{outcome} - runs by outcome ("ok" or "failed")
//   - notesync_issues_total{outcome} - issues by reconcile outcome
//   - notesync_run_duration_seconds - histogram of run durations
//   - notesync_last_run_timestamp_seconds - unix time of the last run
//   - notesync_last_run_issues - issues seen by the last run
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			RunsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "notesync_runs_total",
					Help: "Total synchronization runs by outcome",
				},
				[]string{"outcome"}, // "ok" or "failed"
			),
			IssuesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "notesync_issues_total",
					Help: "Total issues processed by reconcile outcome",
				},
				[]string{"outcome"}, // "created", "updated", "skipped", "failed"
			),
			RunDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "notesync_run_duration_seconds",
					Help:    "Synchronization run duration in seconds",
					Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
				},
			),
			LastRunUnix: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "notesync_last_run_timestamp_seconds",
					Help: "Unix timestamp of the most recent run",
				},
			),
			LastRunIssues: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "notesync_last_run_issues",
					Help: "Issues seen by the most recent run",
				},
			),
		}
	})
	return globalMetrics
}

// ObserveRun records one finished run.
func (m *Metrics) ObserveRun(res *Result) {
	outcome := "ok"
	if res.Created == 0 && res.Updated == 0 && res.Skipped == 0 && res.Failed > 0 {
		outcome = "failed"
	}
	m.RunsTotal.WithLabelValues(outcome).Inc()
	m.IssuesTotal.WithLabelValues("created").Add(float64(res.Created))
	m.IssuesTotal.WithLabelValues("updated").Add(float64(res.Updated))
	m.IssuesTotal.WithLabelValues("skipped").Add(float64(res.Skipped))
	m.IssuesTotal.WithLabelValues("failed").Add(float64(res.Failed))
	m.RunDuration.Observe(res.Duration.Seconds())
	m.LastRunUnix.Set(float64(res.Started.Unix()))
	m.LastRunIssues.Set(float64(res.Issues))
}
