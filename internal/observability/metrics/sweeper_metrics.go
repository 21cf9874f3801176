package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SweeperMetrics tracks background sweep job outcomes.
type SweeperMetrics struct {
	jobRuns     *prometheus.CounterVec
	jobErrors   *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec
	itemsSwept  *prometheus.CounterVec
	rowsReset   *prometheus.CounterVec
	runLoopLag  prometheus.Histogram
}

var (
	sweeperOnce    sync.Once
	sweeperMetrics *SweeperMetrics
)

// Sweeper returns the process-wide sweeper metrics, registering collectors
// on first use.
func Sweeper() *SweeperMetrics {
	sweeperOnce.Do(func() {
		sweeperMetrics = newSweeperMetrics(prometheus.DefaultRegisterer)
	})
	return sweeperMetrics
}

func newSweeperMetrics(reg prometheus.Registerer) *SweeperMetrics {
	m := &SweeperMetrics{
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sweeper_job_runs_total",
			Help: "Sweep job executions by job name.",
		}, []string{"job"}),
		jobErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sweeper_job_errors_total",
			Help: "Sweep job failures by job name.",
		}, []string{"job"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sweeper_job_duration_seconds",
			Help:    "Sweep job wall time by job name.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),
		itemsSwept: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sweeper_items_swept_total",
			Help: "Individual rows transitioned by a sweep job.",
		}, []string{"job"}),
		rowsReset: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sweeper_rows_reset_total",
			Help: "Tracker rows zeroed by a counter-reset job.",
		}, []string{"job"}),
		runLoopLag: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sweeper_run_loop_lag_seconds",
			Help:    "Delay between the scheduled and actual start of a run.",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
		}),
	}
	if reg != nil {
		reg.MustRegister(m.jobRuns, m.jobErrors, m.jobDuration, m.itemsSwept, m.rowsReset, m.runLoopLag)
	}
	return m
}

func (m *SweeperMetrics) IncJobRun(job string) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job).Inc()
}

func (m *SweeperMetrics) IncJobError(job string) {
	if m == nil {
		return
	}
	m.jobErrors.WithLabelValues(job).Inc()
}

func (m *SweeperMetrics) ObserveJobDuration(job string, d time.Duration) {
	if m == nil {
		return
	}
	m.jobDuration.WithLabelValues(job).Observe(d.Seconds())
}

func (m *SweeperMetrics) AddItemsSwept(job string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.itemsSwept.WithLabelValues(job).Add(float64(count))
}

func (m *SweeperMetrics) AddRowsReset(job string, count int64) {
	if m == nil || count <= 0 {
		return
	}
	m.rowsReset.WithLabelValues(job).Add(float64(count))
}

func (m *SweeperMetrics) ObserveRunLoopLag(lag time.Duration) {
	if m == nil || lag <= 0 {
		return
	}
	m.runLoopLag.Observe(lag.Seconds())
}
