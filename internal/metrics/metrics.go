package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/andresuchdata/kitchenops/internal/domain"
	"github.com/andresuchdata/kitchenops/internal/repository/postgres"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "kitchenops"

const (
	ReasonValidation           = "validation"
	ReasonNotFound             = "not_found"
	ReasonUniqueViolation      = "unique_violation"
	ReasonSerializationFailure = "serialization_failure"
	ReasonDBLockTimeout        = "db_lock_timeout"
	ReasonDeadlineExceeded     = "deadline_exceeded"
	ReasonUnknown              = "unknown"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	ledgerTxns       *prometheus.CounterVec
	dailyCloses      *prometheus.CounterVec
	ordersRegistered *prometheus.CounterVec
	operationErrors  *prometheus.CounterVec
	forecastDuration prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ledgerTxns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_txns_total",
			Help:      "Inventory ledger entries written, by type.",
		}, []string{"type"}),
		dailyCloses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "daily_close_total",
			Help:      "Daily close attempts, by result status.",
		}, []string{"status"}),
		ordersRegistered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_registered_total",
			Help:      "Live order registrations, by result status.",
		}, []string{"status"}),
		operationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_errors_total",
			Help:      "Failed operations, by operation and classified reason.",
		}, []string{"operation", "reason"}),
		forecastDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "forecast_duration_seconds",
			Help:      "Time spent generating a demand forecast.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.ledgerTxns, m.dailyCloses, m.ordersRegistered, m.operationErrors, m.forecastDuration)
	}
	return m
}

func (m *Metrics) LedgerTxn(txnType domain.TxnType, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ledgerTxns.WithLabelValues(string(txnType)).Add(float64(n))
}

func (m *Metrics) DailyClose(status string) {
	if m == nil {
		return
	}
	m.dailyCloses.WithLabelValues(status).Inc()
}

func (m *Metrics) OrderRegistered(status string) {
	if m == nil {
		return
	}
	m.ordersRegistered.WithLabelValues(status).Inc()
}

func (m *Metrics) OperationError(operation string, err error) {
	if m == nil || err == nil {
		return
	}
	m.operationErrors.WithLabelValues(operation, ClassifyError(err)).Inc()
}

func (m *Metrics) ObserveForecast(d time.Duration) {
	if m == nil {
		return
	}
	m.forecastDuration.Observe(d.Seconds())
}

// ClassifyError maps an operation error to a low-cardinality reason label.
func ClassifyError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonDeadlineExceeded
	case errors.Is(err, domain.ErrValidation):
		return ReasonValidation
	case errors.Is(err, domain.ErrNotFound):
		return ReasonNotFound
	}

	switch postgres.SQLState(err) {
	case "23505":
		return ReasonUniqueViolation
	case "40001", "40P01":
		return ReasonSerializationFailure
	case "55P03":
		return ReasonDBLockTimeout
	}
	if errors.Is(err, domain.ErrIntegrity) {
		return ReasonUniqueViolation
	}
	return ReasonUnknown
}
