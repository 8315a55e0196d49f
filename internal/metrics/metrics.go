package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gadai"

type Metrics struct {
	// HTTP
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Loan lifecycle
	TransactionsCreated prometheus.Counter
	PaymentsRecorded    *prometheus.CounterVec
	LoanErrors          *prometheus.CounterVec
	NumberCollisions    prometheus.Counter

	// Reporting
	StatsCacheResults *prometheus.CounterVec
}

// New registers every collector on reg. Tests pass a fresh registry so
// repeated construction does not collide.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestsInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Number of HTTP requests currently being served",
			},
		),
		TransactionsCreated: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transactions_created_total",
				Help:      "Total number of pawn transactions created",
			},
		),
		PaymentsRecorded: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payments_recorded_total",
				Help:      "Total number of payments recorded, by payment type",
			},
			[]string{"type"},
		),
		LoanErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "loan_errors_total",
				Help:      "Total number of failed loan operations, by operation and error code",
			},
			[]string{"operation", "code"},
		),
		NumberCollisions: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "number_collisions_total",
				Help:      "Generated transaction or payment numbers that were already taken",
			},
		),
		StatsCacheResults: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stats_cache_results_total",
				Help:      "Dashboard stats cache lookups, by result",
			},
			[]string{"result"},
		),
	}
}

// The recording methods are nil-safe so services can run without metrics.

func (m *Metrics) RecordHTTPRequest(method, path, statusCode string, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path, statusCode).Observe(duration.Seconds())
}

func (m *Metrics) RecordTransactionCreated() {
	if m == nil {
		return
	}
	m.TransactionsCreated.Inc()
}

func (m *Metrics) RecordPayment(paymentType string) {
	if m == nil {
		return
	}
	m.PaymentsRecorded.WithLabelValues(paymentType).Inc()
}

func (m *Metrics) RecordLoanError(operation, code string) {
	if m == nil {
		return
	}
	m.LoanErrors.WithLabelValues(operation, code).Inc()
}

func (m *Metrics) RecordNumberCollision() {
	if m == nil {
		return
	}
	m.NumberCollisions.Inc()
}

func (m *Metrics) RecordStatsCache(result string) {
	if m == nil {
		return
	}
	m.StatsCacheResults.WithLabelValues(result).Inc()
}
