package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// JobMetrics tracks scheduled housekeeping jobs.
type JobMetrics struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	removed  *prometheus.CounterVec
}

func NewJobMetrics(reg prometheus.Registerer) *JobMetrics {
	if reg == nil {
		return &JobMetrics{}
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "job_runs_total",
		Help:      "Housekeeping job runs by outcome.",
	}, []string{"job", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "job_duration_seconds",
		Help:      "Housekeeping job duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"job"})
	removed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "job_rows_removed_total",
		Help:      "Rows removed by retention jobs.",
	}, []string{"job"})
	reg.MustRegister(runs, duration, removed)
	return &JobMetrics{runs: runs, duration: duration, removed: removed}
}

// Observe records one run of job.
func (m *JobMetrics) Observe(job string, elapsed time.Duration, err error) {
	if m == nil || m.runs == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	label := normalizeLabel(job)
	m.runs.WithLabelValues(label, outcome).Inc()
	m.duration.WithLabelValues(label).Observe(elapsed.Seconds())
}

func (m *JobMetrics) AddRemoved(job string, rows int64) {
	if m == nil || m.removed == nil || rows <= 0 {
		return
	}
	m.removed.WithLabelValues(normalizeLabel(job)).Add(float64(rows))
}
