package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "tidyslot"

// Assignment outcomes recorded per job.
const (
	OutcomeAssigned   = "assigned"
	OutcomeUnassigned = "unassigned"
	OutcomeFailed     = "failed"
)

// Metrics exposes counters/histograms for scheduling and assignment flows.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	assignmentsTotal *prometheus.CounterVec
	batchDuration    *prometheus.HistogramVec
	sideEffectErrors *prometheus.CounterVec
	kafkaLatency     *prometheus.HistogramVec
	httpRequests     *prometheus.CounterVec
	httpLatency      *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		assignmentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assignment",
			Name:      "jobs_total",
			Help:      "Jobs processed by auto-assignment batches, by outcome",
		}, []string{"strategy", "outcome"}),
		batchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "assignment",
			Name:      "batch_duration_seconds",
			Help:      "Wall time of one auto-assignment batch",
			Buckets:   prometheus.DefBuckets,
		}, []string{"strategy"}),
		sideEffectErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assignment",
			Name:      "side_effect_errors_total",
			Help:      "Notification or audit failures after a committed assignment",
		}, []string{"kind"}),
		kafkaLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "kafka",
			Name:      "operation_duration_seconds",
			Help:      "Latency of Kafka publish and consume handlers",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "topic", "status"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests served",
		}, []string{"method", "code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.assignmentsTotal,
		m.batchDuration,
		m.sideEffectErrors,
		m.kafkaLatency,
		m.httpRequests,
		m.httpLatency,
	)
	return m
}

func (m *Metrics) ObserveAssignments(strategy, outcome string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.assignmentsTotal.WithLabelValues(strategy, outcome).Add(float64(count))
}

func (m *Metrics) ObserveBatch(strategy string, duration time.Duration) {
	if m == nil {
		return
	}
	m.batchDuration.WithLabelValues(strategy).Observe(duration.Seconds())
}

func (m *Metrics) ObserveSideEffectError(kind string) {
	if m == nil {
		return
	}
	m.sideEffectErrors.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObservePublish(topic string, duration time.Duration, err error) {
	m.observeKafka("publish", topic, duration, err)
}

func (m *Metrics) ObserveConsume(topic string, duration time.Duration, err error) {
	m.observeKafka("consume", topic, duration, err)
}

func (m *Metrics) observeKafka(operation, topic string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.kafkaLatency.WithLabelValues(operation, topic, status).Observe(duration.Seconds())
}

func (m *Metrics) ObserveHTTP(method string, code int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, strconv.Itoa(code)).Inc()
	m.httpLatency.WithLabelValues(method).Observe(duration.Seconds())
}

// NewRegistry returns a registry carrying the Go runtime and process
// collectors, ready to pass to New and to serve on /metrics.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}
