// Package observability wires Prometheus metrics for the simulation service.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"

	"heritax/internal/domain"
)

// Compute error reasons used as metric labels.
const (
	ReasonInvalidCategory     = "invalid_category"
	ReasonInvalidTransmission = "invalid_transmission"
	ReasonInvalidAmount       = "invalid_amount"
	ReasonInternal            = "internal"
)

// Email outcome labels.
const (
	EmailSent     = "sent"
	EmailFailed   = "failed"
	EmailRejected = "rejected"
)

var errorReasons = []string{
	ReasonInvalidCategory,
	ReasonInvalidTransmission,
	ReasonInvalidAmount,
	ReasonInternal,
}

// Metrics holds all Prometheus metrics for the simulation service.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	simulationsTotal *prometheus.CounterVec
	computeErrors    *prometheus.CounterVec
	emailsTotal      *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	wsSessions       prometheus.Gauge
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		simulationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "heritax_simulations_total",
				Help: "Completed tax simulations by category and transmission type.",
			},
			[]string{"category", "transmission"},
		),
		computeErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "heritax_compute_errors_total",
				Help: "Rejected computations by reason.",
			},
			[]string{"reason"},
		),
		emailsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "heritax_summary_emails_total",
				Help: "Summary email attempts by outcome.",
			},
			[]string{"status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "heritax_operation_duration_seconds",
				Help:    "Duration of operations by name.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		wsSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "heritax_live_sessions",
				Help: "Open live-recompute WebSocket sessions.",
			},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// RecordSimulation counts one completed simulation.
func (m *Metrics) RecordSimulation(category domain.RelationshipCategory, t domain.TransmissionType) {
	m.simulationsTotal.WithLabelValues(string(category), string(t)).Inc()
}

// IncrComputeError counts one rejected computation.
func (m *Metrics) IncrComputeError(reason string) {
	m.computeErrors.WithLabelValues(reason).Inc()
}

// IncrEmail counts one summary email attempt.
func (m *Metrics) IncrEmail(status string) {
	m.emailsTotal.WithLabelValues(status).Inc()
}

// RecordDuration records how long an operation took.
func (m *Metrics) RecordDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// LiveSessionStarted increments the open session gauge.
func (m *Metrics) LiveSessionStarted() {
	m.wsSessions.Inc()
}

// LiveSessionEnded decrements the open session gauge.
func (m *Metrics) LiveSessionEnded() {
	m.wsSessions.Dec()
}

// StatsSnapshot aggregates the counters for the GET /api/v1/stats endpoint.
type StatsSnapshot struct {
	SimulationsTotal int64            `json:"simulations_total"`
	ByCategory       map[string]int64 `json:"by_category"`
	ComputeErrors    int64            `json:"compute_errors"`
	ErrorRate        float64          `json:"error_rate"`
	EmailsSent       int64            `json:"emails_sent"`
	EmailsFailed     int64            `json:"emails_failed"`
	Period           string           `json:"period"`
}

// Snapshot reads the current counter values. Prometheus counters are
// cumulative, so the snapshot covers the process lifetime.
func (m *Metrics) Snapshot() *StatsSnapshot {
	byCategory := make(map[string]int64, len(domain.Categories()))
	var simulations float64
	for _, c := range domain.Categories() {
		var perCategory float64
		for _, t := range domain.TransmissionTypes() {
			perCategory += getCounterValue(m.simulationsTotal, string(c), string(t))
		}
		byCategory[string(c)] = int64(perCategory)
		simulations += perCategory
	}

	var errs float64
	for _, reason := range errorReasons {
		errs += getCounterValue(m.computeErrors, reason)
	}

	errorRate := float64(0)
	if simulations+errs > 0 {
		errorRate = errs / (simulations + errs)
	}

	return &StatsSnapshot{
		SimulationsTotal: int64(simulations),
		ByCategory:       byCategory,
		ComputeErrors:    int64(errs),
		ErrorRate:        errorRate,
		EmailsSent:       int64(getCounterValue(m.emailsTotal, EmailSent)),
		EmailsFailed:     int64(getCounterValue(m.emailsTotal, EmailFailed)),
		Period:           "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a
// given label set.
func getCounterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	counter := cv.WithLabelValues(labels...)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
