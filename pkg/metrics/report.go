package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ReportMetrics records the outcome of seller report runs.
type ReportMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	skipped  *prometheus.CounterVec
}

// NewReportMetrics registers the report metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewReportMetrics(reg prometheus.Registerer) *ReportMetrics {
	if reg == nil {
		return &ReportMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "report_run_duration_seconds",
		Help:    "Duration of seller report runs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "report_run_success",
		Help: "Successful seller report runs.",
	}, []string{"source"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "report_run_failure",
		Help: "Failed seller report runs by error code.",
	}, []string{"source", "code"})
	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "report_records_skipped",
		Help: "Purchase records dropped by lenient report runs.",
	}, []string{"source"})
	reg.MustRegister(duration, success, failure, skipped)
	return &ReportMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		skipped:  skipped,
	}
}

// ObserveDuration records how long a run took.
func (m *ReportMetrics) ObserveDuration(source string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(source)).Observe(duration.Seconds())
}

func (m *ReportMetrics) IncSuccess(source string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeLabel(source)).Inc()
}

func (m *ReportMetrics) IncFailure(source, code string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(source), normalizeLabel(code)).Inc()
}

// AddSkipped counts records dropped in lenient mode.
func (m *ReportMetrics) AddSkipped(source string, n int) {
	if m == nil || m.skipped == nil || n <= 0 {
		return
	}
	m.skipped.WithLabelValues(normalizeLabel(source)).Add(float64(n))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
