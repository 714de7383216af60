package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Payment metrics
	PaymentsCreated *prometheus.CounterVec
	PaymentsUpdated prometheus.Counter
	PaymentsDeleted prometheus.Counter
	PaymentDuration prometheus.Histogram
	PaymentAmount   *prometheus.HistogramVec
	PaymentErrors   *prometheus.CounterVec

	// Transfer metrics
	TransfersCreated prometheus.Counter
	TransferDuration prometheus.Histogram
	TransferErrors   *prometheus.CounterVec

	// Account metrics
	AccountsCreated   prometheus.Counter
	AccountBalance    *prometheus.GaugeVec
	AccountOperations *prometheus.CounterVec

	// Exchange rate metrics
	RatesRecorded   *prometheus.CounterVec
	RateLookups     *prometheus.CounterVec
	RateUnavailable *prometheus.CounterVec

	// Reporting metrics
	ReportsGenerated *prometheus.CounterVec
	ReportDuration   *prometheus.HistogramVec

	// Consistency metrics
	ConsistencyChecks prometheus.Counter
	ConsistencyDrift  *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBQueries     *prometheus.CounterVec
	DBDuration    *prometheus.HistogramVec
	DBConnections prometheus.Gauge
	DBErrors      *prometheus.CounterVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisDuration   *prometheus.HistogramVec
	RedisErrors     *prometheus.CounterVec

	// Outbox metrics
	OutboxPublished prometheus.Counter
	OutboxErrors    prometheus.Counter
	OutboxLag       prometheus.Gauge

	// Audit metrics
	AuditLogsCreated *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Payment metrics
		PaymentsCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kasa_payments_created_total",
				Help: "Total number of payments created by type",
			},
			[]string{"direction", "category"},
		),
		PaymentsUpdated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kasa_payments_updated_total",
			Help: "Total number of payments updated",
		}),
		PaymentsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kasa_payments_deleted_total",
			Help: "Total number of payments deleted",
		}),
		PaymentDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "kasa_payment_duration_seconds",
			Help:    "Duration of payment operations",
			Buckets: prometheus.DefBuckets,
		}),
		PaymentAmount: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kasa_payment_amount",
				Help:    "Payment amounts by currency",
				Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
			},
			[]string{"currency"},
		),
		PaymentErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kasa_payment_errors_total",
				Help: "Total number of payment errors by type",
			},
			[]string{"error_type"},
		),

		// Transfer metrics
		TransfersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kasa_transfers_created_total",
			Help: "Total number of transfers created",
		}),
		TransferDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "kasa_transfer_duration_seconds",
			Help:    "Duration of transfer operations",
			Buckets: prometheus.DefBuckets,
		}),
		TransferErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kasa_transfer_errors_total",
				Help: "Total number of transfer errors by type",
			},
			[]string{"error_type"},
		),

		// Account metrics
		AccountsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kasa_accounts_created_total",
			Help: "Total number of accounts created",
		}),
		AccountBalance: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "kasa_account_balance",
				Help: "Current account balance",
			},
			[]string{"account_id", "currency"},
		),
		AccountOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kasa_account_operations_total",
				Help: "Total account operations by type",
			},
			[]string{"operation"},
		),

		// Exchange rate metrics
		RatesRecorded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kasa_rates_recorded_total",
				Help: "Total exchange rates recorded by currency",
			},
			[]string{"currency"},
		),
		RateLookups: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kasa_rate_lookups_total",
				Help: "Total exchange rate lookups by result",
			},
			[]string{"result"},
		),
		RateUnavailable: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kasa_rate_unavailable_total",
				Help: "Total operations rejected for missing exchange rates",
			},
			[]string{"currency"},
		),

		// Reporting metrics
		ReportsGenerated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kasa_reports_generated_total",
				Help: "Total reports generated by kind",
			},
			[]string{"kind"},
		),
		ReportDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kasa_report_duration_seconds",
				Help:    "Report generation duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),

		// Consistency metrics
		ConsistencyChecks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kasa_consistency_checks_total",
			Help: "Total ledger consistency checks run",
		}),
		ConsistencyDrift: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kasa_consistency_drift_total",
				Help: "Total accounts found with balance drift",
			},
			[]string{"currency"},
		),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kasa_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kasa_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Database metrics
		DBQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kasa_db_queries_total",
				Help: "Total database queries",
			},
			[]string{"operation", "table"},
		),
		DBDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kasa_db_query_duration_seconds",
				Help:    "Database query duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "table"},
		),
		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "kasa_db_connections",
			Help: "Current number of database connections",
		}),
		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kasa_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		// Redis metrics
		RedisOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kasa_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kasa_redis_duration_seconds",
				Help:    "Redis operation duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		RedisErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kasa_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		// Outbox metrics
		OutboxPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kasa_outbox_published_total",
			Help: "Total outbox events published",
		}),
		OutboxErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kasa_outbox_errors_total",
			Help: "Total outbox publish errors",
		}),
		OutboxLag: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "kasa_outbox_unpublished",
			Help: "Number of unpublished outbox events at last poll",
		}),

		// Audit metrics
		AuditLogsCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kasa_audit_logs_total",
				Help: "Total audit logs created",
			},
			[]string{"action", "status"},
		),
	}
}
