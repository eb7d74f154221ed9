package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics контейнер prometheus-метрик сервиса
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueriesTotal  *prometheus.CounterVec
	DBQueryDuration *prometheus.HistogramVec
	DBConnsOpen     *prometheus.GaugeVec
	DBConnsInUse    *prometheus.GaugeVec

	BookingDecisionsTotal    *prometheus.CounterVec
	SlotLockWaitDuration     *prometheus.HistogramVec
	InvariantViolationsTotal *prometheus.CounterVec
}

// New создает и регистрирует метрики в default registry
func New(serviceName string) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "path", "status"}),

		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		}, []string{"method", "path"}),

		DBQueriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_queries_total",
			Help:        "Total number of database queries",
			ConstLabels: constLabels,
		}, []string{"operation", "status"}),

		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration in seconds",
			Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			ConstLabels: constLabels,
		}, []string{"operation"}),

		DBConnsOpen: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_connections_open",
			Help:        "Number of open database connections",
			ConstLabels: constLabels,
		}, []string{"state"}),

		DBConnsInUse: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_connections_in_use",
			Help:        "Number of database connections currently in use",
			ConstLabels: constLabels,
		}, []string{"state"}),

		BookingDecisionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "booking_decisions_total",
			Help:        "Booking request decisions by outcome",
			ConstLabels: constLabels,
		}, []string{"outcome"}),

		SlotLockWaitDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "slot_lock_wait_seconds",
			Help:        "Time spent waiting for a slot serialization lock",
			Buckets:     []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5},
			ConstLabels: constLabels,
		}, []string{"operation"}),

		InvariantViolationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "booking_invariant_violations_total",
			Help:        "Ledger invariant violations detected, by component",
			ConstLabels: constLabels,
		}, []string{"component"}),
	}
}

// ObserveBookingDecision увеличивает счетчик решений по бронированию
func (m *Metrics) ObserveBookingDecision(outcome string) {
	if m == nil {
		return
	}
	m.BookingDecisionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveSlotLockWait записывает время ожидания блокировки слота
func (m *Metrics) ObserveSlotLockWait(operation string, seconds float64) {
	if m == nil {
		return
	}
	m.SlotLockWaitDuration.WithLabelValues(operation).Observe(seconds)
}

// ObserveInvariantViolation увеличивает счетчик нарушений инвариантов
func (m *Metrics) ObserveInvariantViolation(component string) {
	if m == nil {
		return
	}
	m.InvariantViolationsTotal.WithLabelValues(component).Inc()
}
