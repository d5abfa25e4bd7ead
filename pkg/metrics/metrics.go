package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Store metrics
	TablesTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "driftstore_tables_total",
			Help: "Total number of user tables in the loaded store",
		},
	)

	RowsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "driftstore_rows_total",
			Help: "Total number of rows per table",
		},
		[]string{"table"},
	)

	StoreVersion = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "driftstore_store_version",
			Help: "Current metadata version of the loaded store",
		},
	)

	// Integrity metrics
	IntegrityCheckDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "driftstore_integrity_check_duration_seconds",
			Help:    "Time taken to run a full integrity check (serialize + deserialize round trip)",
			Buckets: prometheus.DefBuckets,
		},
	)

	IntegrityCheckFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "driftstore_integrity_check_failures_total",
			Help: "Total number of failed integrity checks by failure kind",
		},
		[]string{"kind"},
	)

	ConstraintViolationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "driftstore_constraint_violations_total",
			Help: "Total number of constraint violations by table and constraint kind",
		},
		[]string{"table", "kind"},
	)

	// Reconciliation metrics
	PushTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "driftstore_push_total",
			Help: "Total number of push attempts by outcome reason",
		},
		[]string{"reason"},
	)

	PullTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "driftstore_pull_total",
			Help: "Total number of pull attempts by outcome reason",
		},
		[]string{"reason"},
	)

	PushDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "driftstore_push_duration_seconds",
			Help:    "Time taken for a push attempt, including the integrity check",
			Buckets: prometheus.DefBuckets,
		},
	)

	PullDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "driftstore_pull_duration_seconds",
			Help:    "Time taken for a pull attempt",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Backend metrics
	BackendOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "driftstore_backend_operations_total",
			Help: "Total number of backend SaveData/LoadData calls by scheme, operation, and result",
		},
		[]string{"scheme", "op", "result"},
	)

	BackendOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "driftstore_backend_operation_duration_seconds",
			Help:    "Backend operation duration in seconds by scheme and operation",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"scheme", "op"},
	)

	// Transaction metrics
	TransactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "driftstore_transactions_total",
			Help: "Total number of transaction scopes completed by flavor and outcome",
		},
		[]string{"flavor", "outcome"},
	)

	TransactionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "driftstore_transaction_duration_seconds",
			Help:    "Transaction scope duration in seconds by flavor",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"flavor"},
	)

	// Tenant lifecycle metrics
	TenantTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "driftstore_tenant_transitions_total",
			Help: "Total number of tenant lifecycle transitions by target state",
		},
		[]string{"state"},
	)

	TenantProvisioningCallbackDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "driftstore_tenant_provisioning_callback_duration_seconds",
			Help:    "Time taken for a single tenant provisioning callback invocation",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(TablesTotal)
	prometheus.MustRegister(RowsTotal)
	prometheus.MustRegister(StoreVersion)

	prometheus.MustRegister(IntegrityCheckDuration)
	prometheus.MustRegister(IntegrityCheckFailuresTotal)
	prometheus.MustRegister(ConstraintViolationsTotal)

	prometheus.MustRegister(PushTotal)
	prometheus.MustRegister(PullTotal)
	prometheus.MustRegister(PushDuration)
	prometheus.MustRegister(PullDuration)

	prometheus.MustRegister(BackendOperationsTotal)
	prometheus.MustRegister(BackendOperationDuration)

	prometheus.MustRegister(TransactionsTotal)
	prometheus.MustRegister(TransactionDuration)

	prometheus.MustRegister(TenantTransitionsTotal)
	prometheus.MustRegister(TenantProvisioningCallbackDuration)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
