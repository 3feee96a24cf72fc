package mediaio

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the prometheus collectors for the engine. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	transports  *prometheus.CounterVec
	uploads     *prometheus.CounterVec
	polls       *prometheus.CounterVec
	errors      *prometheus.CounterVec
	opDuration  *prometheus.HistogramVec
	jobDuration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on reg. A nil reg
// leaves them unregistered.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transport_selections_total",
			Help:      "Payloads sent to the backend, by transport (inline, upload, reference)",
		}, []string{"transport"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Completed uploads by final state",
		}, []string{"state"}),
		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_waits_total",
			Help:      "Poll waits by target (upload, job)",
		}, []string{"target"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classified_errors_total",
			Help:      "Errors surfaced to callers by kind",
		}, []string{"kind"}),
		opDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Facade operation latency",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 12),
		}, []string{"operation", "outcome"}),
		jobDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Submission to terminal state for generation jobs",
			Buckets:   prometheus.ExponentialBuckets(5, 2, 10),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.transports, m.uploads, m.polls, m.errors, m.opDuration, m.jobDuration)
	}
	return m
}

func (m *Metrics) transport(kind string) {
	if m == nil {
		return
	}
	m.transports.WithLabelValues(kind).Inc()
}

func (m *Metrics) upload(state UploadState) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(state.String()).Inc()
}

func (m *Metrics) pollWait(target string) {
	if m == nil {
		return
	}
	m.polls.WithLabelValues(target).Inc()
}

func (m *Metrics) classified(err error) {
	if m == nil || err == nil {
		return
	}
	kind := KindOf(err)
	if kind == "" {
		kind = "unclassified"
	}
	m.errors.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) observeOp(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.opDuration.WithLabelValues(op, outcome).Observe(time.Since(start).Seconds())
}

func (m *Metrics) observeJob(d time.Duration) {
	if m == nil {
		return
	}
	m.jobDuration.Observe(d.Seconds())
}
